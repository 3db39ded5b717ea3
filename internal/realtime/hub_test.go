package realtime

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dfryer1193/blogwire/blog/domain"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

func newTestServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/ws", Handler(hub, ""))

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func dialTestServer(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to dial websocket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("Timed out waiting for %d clients, have %d", want, hub.ClientCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func readEvent(t *testing.T, conn *websocket.Conn) ChangeEvent {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read event: %v", err)
	}

	var evt ChangeEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		t.Fatalf("Failed to decode event %q: %v", payload, err)
	}
	return evt
}

func TestBroadcastReachesEveryClient(t *testing.T) {
	hub := NewHub()
	srv := newTestServer(t, hub)

	first := dialTestServer(t, srv)
	second := dialTestServer(t, srv)
	waitForClients(t, hub, 2)

	post := &domain.Post{ID: "p1", AuthorID: "u1", Heading: "Hello", Body: "World"}
	NewBroadcaster(hub).AnnounceCreated(post)

	for i, conn := range []*websocket.Conn{first, second} {
		evt := readEvent(t, conn)
		if evt.Type != EventCreated {
			t.Errorf("conn %d: event type = %q, want created", i, evt.Type)
		}
		if evt.Post == nil || evt.Post.ID != "p1" || evt.Post.Heading != "Hello" {
			t.Errorf("conn %d: event post = %+v", i, evt.Post)
		}
	}
}

func TestBroadcastOrderMatchesAnnouncementOrder(t *testing.T) {
	hub := NewHub()
	srv := newTestServer(t, hub)
	conn := dialTestServer(t, srv)
	waitForClients(t, hub, 1)

	b := NewBroadcaster(hub)
	b.AnnounceCreated(&domain.Post{ID: "a"})
	b.AnnounceUpdated(&domain.Post{ID: "a"})
	b.AnnounceDeleted("a")

	want := []EventType{EventCreated, EventUpdated, EventDeleted}
	for i, wantType := range want {
		evt := readEvent(t, conn)
		if evt.Type != wantType {
			t.Errorf("event %d: type = %q, want %q", i, evt.Type, wantType)
		}
	}
}

func TestDeletedEventCarriesOnlyIdentifier(t *testing.T) {
	hub := NewHub()
	srv := newTestServer(t, hub)
	conn := dialTestServer(t, srv)
	waitForClients(t, hub, 1)

	NewBroadcaster(hub).AnnounceDeleted("p9")

	evt := readEvent(t, conn)
	if evt.Type != EventDeleted {
		t.Errorf("event type = %q, want deleted", evt.Type)
	}
	if evt.PostID != "p9" {
		t.Errorf("PostID = %q, want p9", evt.PostID)
	}
	if evt.Post != nil {
		t.Errorf("Deleted event should not carry a post, got %+v", evt.Post)
	}
}

func TestDisconnectedClientIsRemoved(t *testing.T) {
	hub := NewHub()
	srv := newTestServer(t, hub)

	gone := dialTestServer(t, srv)
	stays := dialTestServer(t, srv)
	waitForClients(t, hub, 2)

	gone.Close()
	waitForClients(t, hub, 1)

	// The surviving client still receives events; the closed one simply
	// misses them permanently.
	NewBroadcaster(hub).AnnounceCreated(&domain.Post{ID: "p1"})
	evt := readEvent(t, stays)
	if evt.Type != EventCreated {
		t.Errorf("event type = %q, want created", evt.Type)
	}
}

func TestAnnounceWithoutChannelLayerIsANoOp(t *testing.T) {
	post := &domain.Post{ID: "p1"}

	// Neither a nil broadcaster nor one built before the hub exists may
	// panic or fail; the mutation already succeeded by the time these run.
	var uninitialized *Broadcaster
	uninitialized.AnnounceCreated(post)
	uninitialized.AnnounceUpdated(post)
	uninitialized.AnnounceDeleted("p1")

	NewBroadcaster(nil).AnnounceCreated(post)
	NewBroadcaster(nil).AnnounceDeleted("p1")
}

func TestBroadcastWithNoClients(t *testing.T) {
	hub := NewHub()
	NewBroadcaster(hub).AnnounceCreated(&domain.Post{ID: "p1"})

	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount = %d, want 0", hub.ClientCount())
	}
}
