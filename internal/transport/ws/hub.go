package ws

import (
	"encoding/json"
	"log"
	"sync/atomic"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	MsgSnapshot MessageType = "snapshot"
	MsgPing     MessageType = "ping"
	MsgPong     MessageType = "pong"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Client is one subscribed listener. The send channel is a bounded mailbox;
// a listener that cannot keep up loses messages rather than stalling the
// broadcast.
type Client struct {
	Send chan []byte
}

// NewClient creates a client with the standard mailbox size.
func NewClient() *Client {
	return &Client{Send: make(chan []byte, 256)}
}

// Hub fans broadcast messages out to every current subscriber. There is a
// single broadcast domain: all sessions share one topic and listeners filter
// on payload fields. Delivery is fire-and-forget; a client joining late
// misses prior broadcasts.
type Hub struct {
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	// dropped counts malformed inbound payloads discarded by the relay.
	dropped atomic.Int64
}

// NewHub creates a new hub and starts its coordination loop.
func NewHub() *Hub {
	h := &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true

		case c := <-h.unregister:
			// Repeated unregisters for the same client are no-ops.
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.Send)
			}

		case data := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.Send <- data:
				default:
					// Mailbox full, drop for this listener.
				}
			}
		}
	}
}

// Register adds a subscriber.
func (h *Hub) Register(c *Client) {
	h.register <- c
}

// Unregister removes a subscriber. Safe to call more than once and safe
// concurrently with an in-flight broadcast.
func (h *Hub) Unregister(c *Client) {
	h.unregister <- c
}

// Broadcast fans a message out to every currently subscribed client.
func (h *Hub) Broadcast(msgType MessageType, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("broadcast marshal error: %v", err)
		return
	}
	env, err := json.Marshal(&Message{Type: msgType, Payload: data})
	if err != nil {
		log.Printf("broadcast marshal error: %v", err)
		return
	}
	h.broadcast <- env
}

// NoteDropped records one discarded malformed payload.
func (h *Hub) NoteDropped() {
	h.dropped.Add(1)
}

// Dropped reports how many malformed payloads the relay has discarded.
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}
