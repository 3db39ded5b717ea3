package realtime

import "github.com/dfryer1193/blogwire/blog/domain"

type EventType string

const (
	EventCreated EventType = "created"
	EventUpdated EventType = "updated"
	EventDeleted EventType = "deleted"
)

// ChangeEvent is the wire form of a mutation notification. Created and
// updated events carry the full post; deleted events carry only the
// identifier.
type ChangeEvent struct {
	Type   EventType    `json:"type"`
	Post   *domain.Post `json:"post,omitempty"`
	PostID string       `json:"postId,omitempty"`
}

func CreatedEvent(post *domain.Post) ChangeEvent {
	return ChangeEvent{Type: EventCreated, Post: post, PostID: post.ID}
}

func UpdatedEvent(post *domain.Post) ChangeEvent {
	return ChangeEvent{Type: EventUpdated, Post: post, PostID: post.ID}
}

func DeletedEvent(postID string) ChangeEvent {
	return ChangeEvent{Type: EventDeleted, PostID: postID}
}
