package realtime

import (
	"github.com/dfryer1193/blogwire/blog/domain"
	"github.com/rs/zerolog/log"
)

// Broadcaster is the mutation-side facade over the hub. It has two states:
// before the channel layer exists (nil receiver or nil hub) announcements are
// logged and dropped, and once constructed around a hub it stays ready for
// the life of the process. Announcing never fails the caller.
type Broadcaster struct {
	hub *Hub
}

func NewBroadcaster(hub *Hub) *Broadcaster {
	return &Broadcaster{hub: hub}
}

func (b *Broadcaster) AnnounceCreated(post *domain.Post) {
	b.publish(CreatedEvent(post))
}

func (b *Broadcaster) AnnounceUpdated(post *domain.Post) {
	b.publish(UpdatedEvent(post))
}

func (b *Broadcaster) AnnounceDeleted(postID string) {
	b.publish(DeletedEvent(postID))
}

func (b *Broadcaster) publish(evt ChangeEvent) {
	if b == nil || b.hub == nil {
		log.Error().Str("event", string(evt.Type)).Msg("Realtime layer is not initialized; dropping event")
		return
	}
	b.hub.Broadcast(evt)
}
