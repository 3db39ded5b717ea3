package domain

import "strings"

// Draft is an unpersisted candidate post. It exists only in client memory (or
// in a generate response) until a publish action turns it into a Post.
type Draft struct {
	Heading string `json:"heading"`
	Body    string `json:"body"`
}

// Complete reports whether the draft has both fields filled in. Publishing an
// incomplete draft is rejected at the validation boundary, not here.
func (d Draft) Complete() bool {
	return strings.TrimSpace(d.Heading) != "" && strings.TrimSpace(d.Body) != ""
}
