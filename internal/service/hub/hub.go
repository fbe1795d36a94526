// Package hub fans broadcast messages out to every connected subscriber.
// The registry is the platform's shared mutable state: it is owned here,
// guarded by a mutex, and injected into whoever needs to publish. One
// subscriber failing never blocks delivery to the rest.
package hub

import (
	"context"
	"sync"

	"sacred_computing/internal/model"
	"sacred_computing/internal/packet"
	"sacred_computing/internal/sacred"
	"sacred_computing/internal/utils/log"

	"go.uber.org/zap"
)

type (
	// Subscriber is a live connection handle. Send must be safe to call
	// from concurrent publishes.
	Subscriber interface {
		ID() string
		Send(msg *model.BroadcastMessage) error
	}

	Hub struct {
		mu   sync.RWMutex
		subs map[string]Subscriber

		codec   *packet.Codec
		history *History
	}
)

// New builds a hub around the packet codec. history may be nil, which
// disables replay of recent broadcasts to new subscribers.
func New(codec *packet.Codec, history *History) *Hub {
	return &Hub{
		subs:    make(map[string]Subscriber),
		codec:   codec,
		history: history,
	}
}

// Subscribe registers the handle and immediately greets it with a SYSTEM
// welcome, followed by the recent broadcast history when available.
func (h *Hub) Subscribe(ctx context.Context, sub Subscriber) {
	h.mu.Lock()
	h.subs[sub.ID()] = sub
	h.mu.Unlock()

	welcome := model.NewBroadcast(model.TypeSystem, &model.SystemData{
		Message: "Connected to Sacred Computing Platform",
	})
	if err := sub.Send(welcome); err != nil {
		log.Error("send welcome failed", zap.String("subscriber", sub.ID()), zap.Error(err))
		h.Unsubscribe(sub.ID())
		return
	}

	if h.history == nil {
		return
	}
	recent, err := h.history.Recent(ctx)
	if err != nil {
		log.Warn("load broadcast history failed", zap.Error(err))
		return
	}
	for _, msg := range recent {
		if err := sub.Send(msg); err != nil {
			log.Error("replay history failed", zap.String("subscriber", sub.ID()), zap.Error(err))
			h.Unsubscribe(sub.ID())
			return
		}
	}
}

// Unsubscribe removes the handle. Removing an absent handle is a no-op.
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	delete(h.subs, id)
	h.mu.Unlock()
}

// Count returns the number of live subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Publish delivers msg to a snapshot of the current registry. Intention
// messages get a transport envelope attached first, best-effort. Delivery
// is at-most-once per subscriber with no cross-subscriber ordering; a
// failing subscriber is evicted and fan-out continues.
func (h *Hub) Publish(ctx context.Context, msg *model.BroadcastMessage) {
	h.mu.RLock()
	if len(h.subs) == 0 {
		h.mu.RUnlock()
		return
	}
	snapshot := make([]Subscriber, 0, len(h.subs))
	for _, sub := range h.subs {
		snapshot = append(snapshot, sub)
	}
	h.mu.RUnlock()

	h.attachPacket(msg)

	if h.history != nil {
		h.history.Record(ctx, msg)
	}

	for _, sub := range snapshot {
		if err := sub.Send(msg); err != nil {
			log.Error("deliver broadcast failed", zap.String("subscriber", sub.ID()), zap.Error(err))
			h.Unsubscribe(sub.ID())
		}
	}
}

func (h *Hub) attachPacket(msg *model.BroadcastMessage) {
	if msg.Type != model.TypeIntention {
		return
	}
	data, ok := msg.Data.(*model.IntentionData)
	if !ok || data.Intention == "" {
		return
	}

	frequency := data.Frequency
	if frequency <= 0 {
		frequency = sacred.SchumannResonance
	}

	encoded, err := h.codec.BuildEncoded(data.Intention, frequency, string(sacred.FieldTorus), "broadcast")
	if err != nil {
		// Broadcast proceeds without the envelope.
		log.Error("embed intention in network packet failed", zap.Error(err))
		return
	}
	msg.PacketData = &encoded
}
