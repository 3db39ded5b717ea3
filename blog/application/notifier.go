package application

import "github.com/dfryer1193/blogwire/blog/domain"

// ChangeNotifier receives fire-and-forget announcements after a mutation has
// been persisted. Implementations must never fail the caller: a mutation's
// success does not depend on anyone hearing about it.
type ChangeNotifier interface {
	AnnounceCreated(post *domain.Post)
	AnnounceUpdated(post *domain.Post)
	AnnounceDeleted(postID string)
}
