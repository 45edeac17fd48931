package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/matheuskafuri/lexis/internal/store"
	"github.com/matheuskafuri/lexis/internal/vocab"
)

type fieldKind int

const (
	stringField fieldKind = iota
	listField
)

type field struct {
	name string
	kind fieldKind
	hint string
}

// contract is the JSON shape a response must have. Every field is required.
type contract struct {
	list   bool
	fields []field
}

var articleContract = contract{fields: []field{
	{"title", stringField, "catchy headline"},
	{"content", stringField, "full English article"},
	{"summary", stringField, "2-sentence summary"},
	{"translation", stringField, "full Chinese translation"},
}}

var headlineContract = contract{list: true, fields: []field{
	{"title", stringField, "headline"},
	{"source", stringField, "outlet name"},
	{"url", stringField, "article URL"},
}}

var wordContract = contract{fields: []field{
	{"partOfSpeech", stringField, "n., v., adj., ..."},
	{"chinese", stringField, "Chinese translation"},
	{"english", stringField, "English definition"},
	{"example", stringField, "example sentence"},
	{"phrases", listField, "collocation"},
	{"deformations", listField, "word form"},
}}

// describe renders the contract as instructions for providers without
// native structured output.
func (c contract) describe() string {
	var sb strings.Builder
	sb.WriteString("Output as JSON only, no other text:\n")
	indent := "  "
	if c.list {
		sb.WriteString("[\n  {\n")
		indent = "    "
	} else {
		sb.WriteString("{\n")
	}
	for i, f := range c.fields {
		sb.WriteString(indent)
		if f.kind == listField {
			fmt.Fprintf(&sb, "%q: [%q, ...]", f.name, f.hint)
		} else {
			fmt.Fprintf(&sb, "%q: %q", f.name, f.hint)
		}
		if i < len(c.fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	if c.list {
		sb.WriteString("  }\n]")
	} else {
		sb.WriteString("}")
	}
	return sb.String()
}

func cleanJSONResponse(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	// Some model responses include extra prose around JSON.
	start := strings.IndexAny(content, "{[")
	if start < 0 {
		return content
	}
	closer := "}"
	if content[start] == '[' {
		closer = "]"
	}
	end := strings.LastIndex(content, closer)
	if end > start {
		content = content[start : end+1]
	}
	return content
}

type articleFields struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	Summary     string `json:"summary"`
	Translation string `json:"translation"`
}

func parseArticle(text string) (articleFields, error) {
	var f articleFields
	content := cleanJSONResponse(text)
	if err := json.Unmarshal([]byte(content), &f); err != nil {
		return articleFields{}, fmt.Errorf("failed to parse article: %w", err)
	}
	var missing []string
	for i, v := range []string{f.Title, f.Content, f.Summary, f.Translation} {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, articleContract.fields[i].name)
		}
	}
	if len(missing) > 0 {
		return articleFields{}, fmt.Errorf("article response missing %s", strings.Join(missing, ", "))
	}
	return f, nil
}

func parseHeadlines(text string) ([]store.Headline, error) {
	var raw []store.Headline
	content := cleanJSONResponse(text)
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse headlines: %w", err)
	}
	out := make([]store.Headline, 0, len(raw))
	for _, h := range raw {
		h.Title = strings.TrimSpace(h.Title)
		if h.Title == "" {
			continue
		}
		out = append(out, h)
	}
	return out, nil
}

// unparsedWord is returned when a lookup response cannot be decoded.
var unparsedWord = vocab.Details{
	PartOfSpeech: "",
	Translation:  "解析失败",
	Definition:   "Definition could not be parsed.",
	Example:      "",
	Phrases:      []string{},
	Forms:        []string{},
}

func parseWord(text string) (vocab.Details, error) {
	var w struct {
		PartOfSpeech string   `json:"partOfSpeech"`
		Chinese      string   `json:"chinese"`
		English      string   `json:"english"`
		Example      string   `json:"example"`
		Phrases      []string `json:"phrases"`
		Deformations []string `json:"deformations"`
	}
	content := cleanJSONResponse(text)
	if err := json.Unmarshal([]byte(content), &w); err != nil {
		return vocab.Details{}, err
	}
	return vocab.Details{
		PartOfSpeech: w.PartOfSpeech,
		Translation:  w.Chinese,
		Definition:   w.English,
		Example:      w.Example,
		Phrases:      w.Phrases,
		Forms:        w.Deformations,
	}, nil
}
