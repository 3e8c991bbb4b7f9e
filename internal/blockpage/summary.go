package blockpage

import (
	"strings"
	"unicode/utf8"
)

// MaxSummaryRunes caps the summary shown in the overlay and page header.
const MaxSummaryRunes = 60

// markers map reason codes emitted by the analysis service to fixed phrases.
var markers = []struct {
	code   string
	phrase string
}{
	{"GSB_", "Listed by Google Safe Browsing"},
	{"MALWARE", "Known malware distribution site"},
	{"GEMINI_HIGH_RISK", "AI analysis found a high phishing risk"},
	{"GLOBAL_DB_BLOCK", "On the global block list"},
	{"USER_REPORTED", "Reported by users as phishing"},
}

// Summarize shortens a reason for display: a known reason code maps to a
// fixed phrase, otherwise the first sentence is used, capped at
// MaxSummaryRunes.
func Summarize(reason string) string {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ""
	}
	upper := strings.ToUpper(reason)
	for _, m := range markers {
		if strings.Contains(upper, m.code) {
			return m.phrase
		}
	}

	summary := firstSentence(reason)
	if utf8.RuneCountInString(summary) <= MaxSummaryRunes {
		return summary
	}
	runes := []rune(summary)
	return strings.TrimSpace(string(runes[:MaxSummaryRunes-1])) + "…"
}

func firstSentence(s string) string {
	cut := len(s)
	for _, sep := range []string{". ", "! ", "? ", "。", "\n"} {
		if i := strings.Index(s, sep); i >= 0 && i < cut {
			cut = i
			if sep != "\n" {
				cut += len(strings.TrimRight(sep, " "))
			}
		}
	}
	return strings.TrimSpace(s[:cut])
}
