// Package sse pushes reload notifications to open pages over Server-Sent Events.
package sse

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/debemdeboas/blog-studio/internal/config"
	"github.com/rs/zerolog"
)

var sseLogger = zerolog.Nop()

func SetLogger(l zerolog.Logger) {
	sseLogger = l
}

// ReloadMessage tells a page to refetch its content.
const ReloadMessage = "reload"

// Client is one open page subscribed to a topic, usually its URL path.
type Client struct {
	Msg   chan string
	Topic string
}

type Clients struct {
	clients map[*Client]bool
	mu      sync.RWMutex
}

func NewClients() *Clients {
	return &Clients{
		clients: make(map[*Client]bool),
	}
}

func (s *Clients) Add(client *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[client] = true
}

func (s *Clients) Delete(client *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[client]; !ok {
		return
	}
	delete(s.clients, client)
	close(client.Msg)
}

func (s *Clients) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Broadcast sends msg to every client on topic. Slow clients miss the
// message instead of blocking the sender. It returns how many received it.
func (s *Clients) Broadcast(topic, msg string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sent := 0
	for client := range s.clients {
		if client.Topic != topic {
			continue
		}
		select {
		case client.Msg <- msg:
			sent++
		default:
		}
	}
	return sent
}

// Reload broadcasts ReloadMessage on topic.
func (s *Clients) Reload(topic string) {
	n := s.Broadcast(topic, ReloadMessage)
	sseLogger.Debug().Str("topic", topic).Int("clients", n).Msg("Reload sent")
}

// ServeHTTP streams messages for the topic named in the query string.
func (s *Clients) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	topic := r.URL.Query().Get("topic")
	if topic == "" {
		http.Error(w, "topic parameter required", http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set(config.HCType, "text/event-stream")
	w.Header().Set(config.HCacheControl, "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Del("X-Content-Type-Options")

	fmt.Fprintf(w, "event: connected\ndata: SSE connection established\n\n")
	flusher.Flush()

	client := &Client{
		Msg:   make(chan string, 1),
		Topic: topic,
	}
	s.Add(client)
	sseLogger.Debug().Str("topic", topic).Msg("SSE client connected")

	defer func() {
		s.Delete(client)
		sseLogger.Debug().Str("topic", topic).Msg("SSE client disconnected")
	}()

	done := r.Context().Done()
	for {
		select {
		case msg := <-client.Msg:
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		case <-done:
			return
		}
	}
}
