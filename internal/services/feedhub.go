// Package services provides business logic services
package services

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/blogflow/backend/internal/models"
)

// FeedMessage is the envelope sent to subscribed clients. Every mutation of
// the post collection produces a fresh full snapshot, so subscribers never
// apply deltas.
type FeedMessage struct {
	Type  string        `json:"type"` // posts, pong, error
	Posts []models.Post `json:"posts,omitempty"`
	Error string        `json:"error,omitempty"`
}

// FeedHub fans the live post listing out to WebSocket clients. A client
// receives the current snapshot on registration and a re-sorted snapshot
// after every create/update/delete by anyone.
type FeedHub struct {
	posts *PostService

	clients   map[*FeedClient]bool
	clientsMu sync.RWMutex

	register   chan *FeedClient
	unregister chan *FeedClient
	refresh    chan struct{}
}

func NewFeedHub(posts *PostService) *FeedHub {
	return &FeedHub{
		posts:      posts,
		clients:    make(map[*FeedClient]bool),
		register:   make(chan *FeedClient),
		unregister: make(chan *FeedClient),
		refresh:    make(chan struct{}, 1),
	}
}

// Register adds a client to the hub.
func (h *FeedHub) Register(client *FeedClient) {
	h.register <- client
}

// Unregister removes a client; its send channel is closed by the hub loop.
func (h *FeedHub) Unregister(client *FeedClient) {
	h.unregister <- client
}

// NotifyChanged schedules a snapshot rebroadcast. Coalesces when one is
// already pending.
func (h *FeedHub) NotifyChanged() {
	select {
	case h.refresh <- struct{}{}:
	default:
	}
}

// Run starts the hub's main loop.
func (h *FeedHub) Run() {
	log.Println("post feed hub started")

	for {
		select {
		case client := <-h.register:
			h.clientsMu.Lock()
			h.clients[client] = true
			h.clientsMu.Unlock()
			log.Printf("feed client connected: %s", client.remoteAddr)

			if msg, err := h.snapshot(); err == nil {
				client.enqueue(msg)
			} else {
				log.Printf("feed snapshot failed: %v", err)
				client.sendError("unable to load posts, try again")
			}

		case client := <-h.unregister:
			h.clientsMu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.clientsMu.Unlock()
			log.Printf("feed client disconnected: %s", client.remoteAddr)

		case <-h.refresh:
			msg, err := h.snapshot()
			if err != nil {
				log.Printf("feed snapshot failed: %v", err)
				continue
			}
			h.clientsMu.RLock()
			for client := range h.clients {
				client.enqueue(msg)
			}
			h.clientsMu.RUnlock()
		}
	}
}

func (h *FeedHub) snapshot() ([]byte, error) {
	posts, err := h.posts.List()
	if err != nil {
		return nil, err
	}
	return json.Marshal(FeedMessage{Type: "posts", Posts: posts})
}

// ClientCount reports the number of connected subscribers.
func (h *FeedHub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}
