package server

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"sacred_computing/internal/model"
	"sacred_computing/internal/sacred"
	"sacred_computing/internal/service/hub"
	"sacred_computing/internal/utils/log"

	"go.uber.org/zap"
)

type (
	// wsConn is the slice of the websocket connection the processor needs;
	// tests substitute a scripted fake.
	wsConn interface {
		ReadMessage() (int, []byte, error)
		Close() error
	}

	// Processor drives one connection: subscribe, loop over inbound
	// messages, dispatch, and unconditionally unsubscribe on the way out.
	// A failure handling one message is reported back to this connection
	// only and never closes it.
	Processor struct {
		hub    *hub.Hub
		engine *sacred.Engine
		sub    hub.Subscriber
		conn   wsConn
		pacing time.Duration
	}
)

func NewProcessor(h *hub.Hub, engine *sacred.Engine, sub hub.Subscriber, conn wsConn, pacing time.Duration) *Processor {
	return &Processor{
		hub:    h,
		engine: engine,
		sub:    sub,
		conn:   conn,
		pacing: pacing,
	}
}

func (p *Processor) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p.hub.Subscribe(ctx, p.sub)
	defer p.hub.Unsubscribe(p.sub.ID())
	defer p.conn.Close()

	for {
		_, data, err := p.conn.ReadMessage()
		if err != nil {
			log.Debug("subscriber web socket closed", zap.String("subscriber", p.sub.ID()), zap.Error(err))
			return
		}

		var msg model.InboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Error("unmarshal inbound message failed", zap.Error(err))
			p.replyError("Invalid message format")
			continue
		}

		if err := p.dispatch(ctx, &msg); err != nil {
			log.Error("process message failed", zap.String("type", msg.Type), zap.Error(err))
			p.replyError("Error processing message")
		}
	}
}

func (p *Processor) dispatch(ctx context.Context, msg *model.InboundMessage) error {
	data := msg.Data

	switch msg.Type {
	case model.TypeIntention:
		return p.handleIntention(ctx, data)

	case model.TypeMerkaba:
		merkaba, err := p.engine.Merkaba(data.Intention, frequencyOrDefault(data.Frequency))
		if err != nil {
			return err
		}
		p.hub.Publish(ctx, model.NewBroadcast(model.TypeMerkaba, merkaba))

	case model.TypeMetatron:
		metatron, err := p.engine.Metatron(data.Intention, data.Boost)
		if err != nil {
			return err
		}
		p.hub.Publish(ctx, model.NewBroadcast(model.TypeMetatron, metatron))

	case model.TypeSriYantra:
		yantra, err := p.engine.SriYantra(data.Intention)
		if err != nil {
			return err
		}
		p.hub.Publish(ctx, model.NewBroadcast(model.TypeSriYantra, yantra))

	case model.TypeFlowerOfLife:
		duration := data.Duration
		if duration == 0 {
			duration = 60
		}
		flower, err := p.engine.FlowerOfLife(data.Intention, duration)
		if err != nil {
			return err
		}
		p.hub.Publish(ctx, model.NewBroadcast(model.TypeFlowerOfLife, flower))

	default:
		// Unknown types are dropped without a reply.
		log.Debug("unrecognized message type dropped", zap.String("type", msg.Type))
	}

	return nil
}

// handleIntention echoes the intention to everyone, then broadcasts the
// torus field and, when boosted, the divine amplification. The pauses
// between steps pace the presentation; they abort when the connection's
// context dies.
func (p *Processor) handleIntention(ctx context.Context, data model.InboundData) error {
	frequency := frequencyOrDefault(data.Frequency)
	multiplier := data.Multiplier
	if multiplier == 0 {
		multiplier = 1
	}

	p.hub.Publish(ctx, model.NewBroadcast(model.TypeIntention, &model.IntentionData{
		Message:    fmt.Sprintf("Intention '%s' processed", data.Intention),
		Intention:  data.Intention,
		Frequency:  frequency,
		Boost:      data.Boost,
		Multiplier: multiplier,
	}))

	if data.Intention == "" {
		return nil
	}

	if err := p.pause(ctx); err != nil {
		return nil
	}
	torus, err := p.engine.Torus(data.Intention, frequency)
	if err != nil {
		return err
	}
	p.hub.Publish(ctx, model.NewBroadcast(model.TypeTorusField, torus))

	if !data.Boost {
		return nil
	}

	if err := p.pause(ctx); err != nil {
		return nil
	}
	amplified, err := p.engine.DivineAmplify(data.Intention, multiplier)
	if err != nil {
		return err
	}
	p.hub.Publish(ctx, model.NewBroadcast(model.TypeIntention, &model.AmplifiedData{
		Message:             fmt.Sprintf("Divine amplification applied. Fibonacci multiplier: %d.", amplified.FibonacciMultiplier),
		DivineAmplification: amplified,
	}))

	return nil
}

// replyError sends a SYSTEM error to this connection only, never broadcast.
func (p *Processor) replyError(message string) {
	reply := model.NewBroadcast(model.TypeSystem, &model.SystemData{Error: message})
	if err := p.sub.Send(reply); err != nil {
		log.Error("send error reply failed", zap.String("subscriber", p.sub.ID()), zap.Error(err))
	}
}

func (p *Processor) pause(ctx context.Context) error {
	if p.pacing <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(p.pacing)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func frequencyOrDefault(hz float64) float64 {
	if hz == 0 {
		return sacred.SchumannResonance
	}
	return hz
}
