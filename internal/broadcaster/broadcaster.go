// Package broadcaster implements the one-shot pipeline behind the CLI
// broadcast and calculate modes: build a transport envelope, derive the
// requested field geometry, optionally amplify, and verify the envelope
// round-trips.
package broadcaster

import (
	"fmt"

	"sacred_computing/internal/packet"
	"sacred_computing/internal/sacred"
	"sacred_computing/internal/utils/log"

	"go.uber.org/zap"
)

type (
	Broadcaster struct {
		codec  *packet.Codec
		engine *sacred.Engine
	}

	Result struct {
		Intention     string                      `json:"intention"`
		Frequency     float64                     `json:"frequency"`
		FieldType     sacred.FieldType            `json:"field_type"`
		PacketBase64  string                      `json:"packet_base64"`
		GeometryData  any                         `json:"geometry_data,omitempty"`
		AmplifiedData *sacred.DivineAmplification `json:"amplified_data,omitempty"`
	}
)

func New(codec *packet.Codec, engine *sacred.Engine) *Broadcaster {
	return &Broadcaster{
		codec:  codec,
		engine: engine,
	}
}

// Broadcast embeds the intention in a network packet, derives the field
// geometry, and verifies the packet by extracting the intention back out.
func (b *Broadcaster) Broadcast(intention string, frequency float64, fieldType sacred.FieldType, amplify bool, multiplier float64) (*Result, error) {
	log.Info("broadcasting intention", zap.String("intention", intention), zap.Float64("frequency", frequency))

	encoded, err := b.codec.BuildEncoded(intention, frequency, string(fieldType), "broadcast")
	if err != nil {
		return nil, fmt.Errorf("build packet: %w", err)
	}

	geometry, err := b.Calculate(intention, fieldType, frequency, amplify, 60)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Intention:    intention,
		Frequency:    frequency,
		FieldType:    fieldType,
		PacketBase64: encoded,
		GeometryData: geometry,
	}

	if amplify {
		amplified, err := b.engine.DivineAmplify(intention, multiplier)
		if err != nil {
			return nil, err
		}
		log.Info("divine amplification applied", zap.Int("fibonacci_multiplier", amplified.FibonacciMultiplier))
		result.AmplifiedData = amplified
	}

	extracted, ok := b.codec.ExtractIntention(encoded)
	if !ok || extracted != intention {
		return nil, fmt.Errorf("packet verification failed")
	}
	log.Info("intention broadcast complete", zap.String("field_type", string(fieldType)))

	return result, nil
}

// Calculate derives the descriptor for one field type.
func (b *Broadcaster) Calculate(intention string, fieldType sacred.FieldType, frequency float64, boost bool, duration int) (any, error) {
	switch fieldType {
	case sacred.FieldTorus:
		return b.engine.Torus(intention, frequency)
	case sacred.FieldMerkaba:
		return b.engine.Merkaba(intention, frequency)
	case sacred.FieldMetatron:
		return b.engine.Metatron(intention, boost)
	case sacred.FieldSriYantra:
		return b.engine.SriYantra(intention)
	case sacred.FieldFlowerOfLife:
		return b.engine.FlowerOfLife(intention, duration)
	default:
		return nil, fmt.Errorf("unknown field type: %s", fieldType)
	}
}
