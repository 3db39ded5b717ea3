package application

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/dfryer1193/blogwire/blog/domain"
)

var headingMarkerRegex = regexp.MustCompile(`(?i)^(#\s*|title:\s*)`)

// structuredDraft matches the record shape the generator is prompted for.
// Both title/content and heading/body key pairs are accepted, since models
// are not reliable about which pair they emit.
type structuredDraft struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Heading string `json:"heading"`
	Body    string `json:"body"`
}

// ParseDraft converts raw generator output into a draft. It first tries to
// read the whole text as a JSON record with heading and body fields; when
// that fails, it falls back to treating the first line as the heading
// (stripping a leading "#" or "Title:" marker) and the rest as the body.
//
// ParseDraft never fails: either field may come back empty, and rejecting an
// empty draft is the publish step's job.
func ParseDraft(raw string) domain.Draft {
	var structured structuredDraft
	if err := json.Unmarshal([]byte(raw), &structured); err == nil {
		heading := structured.Heading
		if heading == "" {
			heading = structured.Title
		}
		body := structured.Body
		if body == "" {
			body = structured.Content
		}
		return domain.Draft{Heading: heading, Body: body}
	}

	lines := strings.Split(raw, "\n")
	heading := strings.TrimSpace(headingMarkerRegex.ReplaceAllString(strings.TrimSpace(lines[0]), ""))
	body := strings.TrimSpace(strings.Join(lines[1:], "\n"))

	return domain.Draft{Heading: heading, Body: body}
}
