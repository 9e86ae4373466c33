package server

import (
	"encoding/json"
	"sync"
)

// Event is the payload published to a player's SSE stream.
type Event struct {
	Type        string `json:"type"`
	ChallengeID string `json:"challengeId,omitempty"`
	FromUserID  string `json:"fromUserId,omitempty"`
	FromName    string `json:"fromName,omitempty"`
	LevelID     string `json:"levelId,omitempty"`
	WinnerID    string `json:"winnerId,omitempty"`
}

// Event types pushed over /api/events.
const (
	EventChallengeReceived = "challenge_received"
	EventChallengeResolved = "challenge_resolved"
	EventChallengeDeclined = "challenge_declined"
	EventFriendRequest     = "friend_request"
)

// Broker is an in-process pub/sub for SSE events, keyed by user ID.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[chan []byte]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string]map[chan []byte]struct{}),
	}
}

// Subscribe returns a channel that receives JSON-encoded events for the given user.
func (b *Broker) Subscribe(userID string) chan []byte {
	ch := make(chan []byte, 16)
	b.mu.Lock()
	if b.subs[userID] == nil {
		b.subs[userID] = make(map[chan []byte]struct{})
	}
	b.subs[userID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a channel from the user's subscribers.
func (b *Broker) Unsubscribe(userID string, ch chan []byte) {
	b.mu.Lock()
	delete(b.subs[userID], ch)
	if len(b.subs[userID]) == 0 {
		delete(b.subs, userID)
	}
	b.mu.Unlock()
}

// Publish sends an event to all subscribers of the given user.
func (b *Broker) Publish(userID string, event Event) {
	data, _ := json.Marshal(event)
	b.mu.RLock()
	for ch := range b.subs[userID] {
		select {
		case ch <- data:
		default:
			// Drop if subscriber is slow.
		}
	}
	b.mu.RUnlock()
}
