package application

import "context"

// DraftGenerator produces raw candidate text for a blog post about a topic.
// The text is handed to ParseDraft as-is; implementations make no promises
// about its shape.
type DraftGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
