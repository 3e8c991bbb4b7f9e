package blockpage

import (
	"embed"
	"fmt"
	"html"
	"html/template"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

//go:embed templates/blocked.html
var templates embed.FS

var (
	page   = template.Must(template.ParseFS(templates, "templates/blocked.html"))
	strict = bluemonday.StrictPolicy()
)

// view is the template input. Every field is plain text.
type view struct {
	Summary     string
	Reason      string
	URL         string
	Score       string
	OfficialURL string
	OfficialOK  bool
}

// Render writes the block page for s.
func Render(w io.Writer, s State) error {
	v := view{
		Reason: plain(s.Reason),
		URL:    plain(s.URL),
	}
	v.Summary = Summarize(v.Reason)
	if s.Score != nil {
		v.Score = strconv.FormatFloat(*s.Score, 'f', 0, 64)
	}
	if official := plain(s.Official); isWebURL(official) {
		v.OfficialURL = official
		v.OfficialOK = true
	}

	if err := page.Execute(w, v); err != nil {
		return fmt.Errorf("render block page: %w", err)
	}
	return nil
}

// plain strips every tag and returns unescaped text; html/template escapes
// it again on output.
func plain(s string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

func isWebURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
