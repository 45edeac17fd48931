package vocab

import "testing"

func TestHighlight(t *testing.T) {
	spans := Highlight("Tariffs and tariff policy shape trade.", []string{"tariff", "trade"})
	var known []string
	for _, s := range spans {
		if s.Known {
			known = append(known, s.Text)
		}
	}
	if len(known) != 2 || known[0] != "tariff" || known[1] != "trade" {
		t.Errorf("unexpected known spans %v", known)
	}

	var joined string
	for _, s := range spans {
		joined += s.Text
	}
	if joined != "Tariffs and tariff policy shape trade." {
		t.Errorf("spans do not reassemble the text: %q", joined)
	}
}

func TestHighlightPrefersLongerTerms(t *testing.T) {
	spans := Highlight("The supply chain broke.", []string{"supply", "supply chain"})
	for _, s := range spans {
		if s.Known && s.Text != "supply chain" {
			t.Errorf("expected longest match, got %q", s.Text)
		}
	}
}

func TestHighlightCaseInsensitive(t *testing.T) {
	spans := Highlight("RESILIENT systems", []string{"resilient"})
	if len(spans) == 0 || !spans[0].Known || spans[0].Text != "RESILIENT" {
		t.Errorf("expected case-insensitive match, got %+v", spans)
	}
}

func TestHighlightNoTerms(t *testing.T) {
	spans := Highlight("plain text", nil)
	if len(spans) != 1 || spans[0].Known {
		t.Errorf("expected single unknown span, got %+v", spans)
	}
	if Highlight("", []string{"x"}) != nil {
		t.Error("expected nil spans for empty text")
	}
}

func TestHighlightEscapesMeta(t *testing.T) {
	spans := Highlight("Learn C++ today", []string{"a.b", "(x"})
	if len(spans) != 1 || spans[0].Known {
		t.Errorf("metacharacters should be literal, got %+v", spans)
	}
}
