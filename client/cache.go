// Package client is a Go client for the blogwire API. It keeps a local
// mirror of the server's posts, reconciled from REST snapshots plus the live
// change stream, and carries the unsaved-draft guard used while composing.
package client

import (
	"sync"

	"github.com/dfryer1193/blogwire/blog/domain"
	"github.com/dfryer1193/blogwire/internal/realtime"
)

// ListCache mirrors the server's posts as two newest-first lists: the
// current user's posts ("mine") and everyone's ("all"). Snapshots replace a
// list wholesale; change events are merged in one at a time.
//
// The cache applies events optimistically and never consults timestamps, so
// a stale update that arrives after a newer one wins. That matches the
// server's at-least-once, unordered-across-writers delivery.
type ListCache struct {
	mu     sync.RWMutex
	userID string
	mine   []*domain.Post
	all    []*domain.Post
}

// NewListCache builds a cache for the given viewer. userID decides which
// created events also land in the "mine" list; it may be empty for an
// anonymous viewer.
func NewListCache(userID string) *ListCache {
	return &ListCache{
		userID: userID,
	}
}

// SetAll replaces the "all" list with a fresh snapshot.
func (c *ListCache) SetAll(posts []*domain.Post) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.all = clonePosts(posts)
}

// SetMine replaces the "mine" list with a fresh snapshot.
func (c *ListCache) SetMine(posts []*domain.Post) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mine = clonePosts(posts)
}

// All returns a copy of the "all" list, newest first.
func (c *ListCache) All() []*domain.Post {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return clonePosts(c.all)
}

// Mine returns a copy of the "mine" list, newest first.
func (c *ListCache) Mine() []*domain.Post {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return clonePosts(c.mine)
}

// Apply merges one change event into both lists:
//
//   - created prepends the post, unless its ID is already present. That makes
//     replays and events for posts already in the snapshot idempotent.
//   - updated replaces the matching entry in place, keeping its position, and
//     is a no-op when the post is absent.
//   - deleted removes the matching entry and is a no-op when absent.
func (c *ListCache) Apply(evt realtime.ChangeEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch evt.Type {
	case realtime.EventCreated:
		if evt.Post == nil {
			return
		}
		c.all = prependIfAbsent(c.all, evt.Post)
		if c.userID != "" && evt.Post.AuthorID == c.userID {
			c.mine = prependIfAbsent(c.mine, evt.Post)
		}
	case realtime.EventUpdated:
		if evt.Post == nil {
			return
		}
		c.all = replaceInPlace(c.all, evt.Post)
		c.mine = replaceInPlace(c.mine, evt.Post)
	case realtime.EventDeleted:
		c.all = removeByID(c.all, evt.PostID)
		c.mine = removeByID(c.mine, evt.PostID)
	}
}

func prependIfAbsent(list []*domain.Post, post *domain.Post) []*domain.Post {
	for _, existing := range list {
		if existing.ID == post.ID {
			return list
		}
	}

	cp := *post
	out := make([]*domain.Post, 0, len(list)+1)
	out = append(out, &cp)
	return append(out, list...)
}

func replaceInPlace(list []*domain.Post, post *domain.Post) []*domain.Post {
	for i, existing := range list {
		if existing.ID == post.ID {
			cp := *post
			list[i] = &cp
			return list
		}
	}
	return list
}

func removeByID(list []*domain.Post, id string) []*domain.Post {
	for i, existing := range list {
		if existing.ID == id {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

func clonePosts(posts []*domain.Post) []*domain.Post {
	out := make([]*domain.Post, len(posts))
	for i, p := range posts {
		cp := *p
		out[i] = &cp
	}
	return out
}
