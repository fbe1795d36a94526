// Package packet implements the self-describing transport envelope for
// intention broadcasts: a versioned header with sequence number and
// truncated SHA-256 checksum, a payload carrying the intention and its
// freshly generated energy tokens, and base64-of-JSON transport encoding.
//
// The checksum is an integrity marker only. It is computed at build time
// and never verified on decode.
package packet

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	"sacred_computing/internal/utils/log"

	"go.uber.org/zap"
)

// Type enumerates the wire packet types.
type Type int

const (
	TypeData Type = iota
	TypeIntention
	TypeSacredGeometry
	TypeFieldHarmonics
	TypeQuantumResonance
)

const (
	// Version is the only envelope version in existence.
	Version = 1

	sacredEncoding = "merkaba-torus-fibonacci"
)

type (
	Header struct {
		Version    int    `json:"version"`
		Type       Type   `json:"type"`
		Length     int    `json:"length"`
		SequenceID uint64 `json:"sequenceId"`
		Timestamp  int64  `json:"timestamp"`
		Checksum   string `json:"checksum"`
	}

	Payload struct {
		Intention              string  `json:"intention"`
		Frequency              float64 `json:"frequency"`
		FieldType              string  `json:"field_type"`
		EnergySignature        string  `json:"energy_signature"`
		QuantumEntanglementKey string  `json:"quantum_entanglement_key"`
	}

	Metadata struct {
		SourceDevice      string  `json:"source_device"`
		TargetDevice      string  `json:"target_device"`
		IntentionStrength float64 `json:"intention_strength"`
		SacredEncoding    string  `json:"sacred_encoding"`
	}

	// IntentionPacket is immutable once built.
	IntentionPacket struct {
		Header   Header   `json:"header"`
		Payload  Payload  `json:"payload"`
		Metadata Metadata `json:"metadata"`
	}

	// Codec builds and encodes intention packets. It owns no state beyond
	// the injected sequence source and the device name stamped into
	// packet metadata.
	Codec struct {
		seq          *Sequence
		sourceDevice string
	}
)

func NewCodec(seq *Sequence, sourceDevice string) *Codec {
	return &Codec{
		seq:          seq,
		sourceDevice: sourceDevice,
	}
}

// Build constructs a packet around the intention. The energy signature and
// quantum entanglement key come fresh from the system CSPRNG on every call
// and are never reused. Build does not validate the intention or frequency;
// that is the caller's concern.
func (c *Codec) Build(intention string, frequency float64, fieldType, targetDevice string) (*IntentionPacket, error) {
	energySignature, err := tokenHex(8)
	if err != nil {
		return nil, err
	}
	quantumKey, err := tokenHex(16)
	if err != nil {
		return nil, err
	}

	payload := Payload{
		Intention:              intention,
		Frequency:              frequency,
		FieldType:              fieldType,
		EnergySignature:        energySignature,
		QuantumEntanglementKey: quantumKey,
	}

	payloadBytes, err := json.Marshal(&payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	strength := float64(utf8.RuneCountInString(intention)) * frequency / 100
	if strength > 100 {
		strength = 100
	}

	return &IntentionPacket{
		Header: Header{
			Version:    Version,
			Type:       TypeIntention,
			Length:     len(payloadBytes),
			SequenceID: c.seq.NextID(),
			Timestamp:  time.Now().UnixMilli(),
			Checksum:   Checksum(payloadBytes),
		},
		Payload: payload,
		Metadata: Metadata{
			SourceDevice:      c.sourceDevice,
			TargetDevice:      targetDevice,
			IntentionStrength: strength,
			SacredEncoding:    sacredEncoding,
		},
	}, nil
}

// Serialize encodes the packet as base64 over UTF-8 JSON for transport.
func (c *Codec) Serialize(p *IntentionPacket) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("marshal packet: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// BuildEncoded is Build followed by Serialize.
func (c *Codec) BuildEncoded(intention string, frequency float64, fieldType, targetDevice string) (string, error) {
	p, err := c.Build(intention, frequency, fieldType, targetDevice)
	if err != nil {
		return "", err
	}
	return c.Serialize(p)
}

// ExtractIntention reverses the transport encoding and pulls the intention
// out of the payload. Decode failures are logged and reported as absence,
// never propagated: a malformed envelope must not break a broadcast path.
func (c *Codec) ExtractIntention(encoded string) (string, bool) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		log.Error("decode packet base64 failed", zap.Error(err))
		return "", false
	}

	var envelope struct {
		Payload struct {
			Intention *string `json:"intention"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		log.Error("unmarshal packet failed", zap.Error(err))
		return "", false
	}

	if envelope.Payload.Intention == nil {
		log.Error("packet payload carries no intention")
		return "", false
	}
	return *envelope.Payload.Intention, true
}

// Checksum returns the first 16 hex characters of SHA-256 over the
// serialized payload bytes.
func Checksum(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])[:16]
}

func tokenHex(nbytes int) (string, error) {
	buf := make([]byte, nbytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("rand.Read token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
