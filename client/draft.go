package client

import (
	"sync"

	"github.com/dfryer1193/blogwire/blog/domain"
)

// ConfirmFunc asks the user whether an unpublished draft may be discarded.
// It returns true to discard and proceed, false to stay put.
type ConfirmFunc func() bool

// DraftTracker holds the draft being composed and the unsaved-changes flag.
// The flag is set on every field change and cleared on publish; navigation
// while the flag is set has to go through TryNavigate.
type DraftTracker struct {
	mu      sync.Mutex
	draft   domain.Draft
	dirty   bool
	confirm ConfirmFunc
}

func NewDraftTracker(confirm ConfirmFunc) *DraftTracker {
	return &DraftTracker{
		confirm: confirm,
	}
}

func (t *DraftTracker) SetHeading(heading string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.draft.Heading = heading
	t.dirty = true
}

func (t *DraftTracker) SetBody(body string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.draft.Body = body
	t.dirty = true
}

// SetDraft replaces both fields at once, as when generated content is pasted
// into the editor.
func (t *DraftTracker) SetDraft(draft domain.Draft) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.draft = draft
	t.dirty = true
}

func (t *DraftTracker) Draft() domain.Draft {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.draft
}

func (t *DraftTracker) Dirty() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dirty
}

// MarkPublished clears the flag and resets the draft after a successful
// publish.
func (t *DraftTracker) MarkPublished() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.draft = domain.Draft{}
	t.dirty = false
}

// TryNavigate reports whether navigation away may proceed. A clean tracker
// always allows it; a dirty one routes through the confirm callback and
// discards the draft only when the user agrees.
func (t *DraftTracker) TryNavigate() bool {
	t.mu.Lock()
	if !t.dirty {
		t.mu.Unlock()
		return true
	}
	confirm := t.confirm
	t.mu.Unlock()

	if confirm == nil || !confirm() {
		return false
	}

	t.mu.Lock()
	t.draft = domain.Draft{}
	t.dirty = false
	t.mu.Unlock()
	return true
}
