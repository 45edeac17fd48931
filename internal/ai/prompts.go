package ai

const articleSystemPrompt = `Generate a comprehensive, high-quality long-form news report.
The article must be approximately 1000 words long, written in a sophisticated journalistic style (like The Economist or NYT).
Structure it with multiple sections separated by blank lines. Include a catchy headline and a 2-sentence summary.
After the English content, provide a full professional Chinese translation of the article.`

const topicPrompt = `Topic: %s`

const headlinePrompt = `Based on this specific news headline: "%s" from %s.
Analyze the context, implications, and broader story behind this headline.`

const excerptPrompt = `

Excerpt from the original report:
%s`

const summaryPrompt = `

Summary from the news feed:
%s`

const headlinesPrompt = `Find the top %d trending news headlines from CNN and BBC for today. Return them as a list with title, source, and URL.`

const wordPrompt = `Provide linguistic details for the English word: "%s".
Return details in JSON format including:
- partOfSpeech: Common abbreviation like n., v., adj., adv., etc.
- chinese: Precise Chinese translation
- english: Clear English definition
- example: A natural example sentence
- phrases: List of 3 common collocations or phrases
- deformations: List of word forms (plural, tense, etc.)`

const narrationPrompt = `Read this long-form news report formally, clearly and at a steady pace: `
