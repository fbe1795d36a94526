package model

import (
	"time"

	"sacred_computing/internal/sacred"
)

// Broadcast message type tags. Dispatch is a closed set: inbound messages
// with any other tag are dropped.
const (
	TypeIntention     = "INTENTION"
	TypeTorusField    = "TORUS_FIELD"
	TypeMerkaba       = "MERKABA"
	TypeMetatron      = "METATRON"
	TypeSriYantra     = "SRI_YANTRA"
	TypeFlowerOfLife  = "FLOWER_OF_LIFE"
	TypeNetworkPacket = "NETWORK_PACKET"
	TypeSystem        = "SYSTEM"
)

type (
	// BroadcastMessage is the outbound frame fanned out to subscribers.
	// PacketData carries the transport envelope and is only set on
	// intention messages.
	BroadcastMessage struct {
		Type       string  `json:"type"`
		Data       any     `json:"data"`
		Timestamp  string  `json:"timestamp"`
		PacketData *string `json:"packetData"`
	}

	// IntentionData is the data body of an INTENTION broadcast.
	IntentionData struct {
		Message    string  `json:"message"`
		Intention  string  `json:"intention"`
		Frequency  float64 `json:"frequency"`
		Boost      bool    `json:"boost"`
		Multiplier float64 `json:"multiplier"`
	}

	// AmplifiedData is the data body of the divine amplification follow-up.
	AmplifiedData struct {
		Message string `json:"message"`
		*sacred.DivineAmplification
	}

	// SystemData is the data body of SYSTEM messages. Exactly one of
	// Message or Error is set.
	SystemData struct {
		Message string `json:"message,omitempty"`
		Error   string `json:"error,omitempty"`
	}

	// InboundMessage is a client request received over the socket.
	InboundMessage struct {
		Type string      `json:"type"`
		Data InboundData `json:"data"`
	}

	InboundData struct {
		Intention  string  `json:"intention"`
		Frequency  float64 `json:"frequency"`
		Boost      bool    `json:"boost"`
		Multiplier float64 `json:"multiplier"`
		Duration   int     `json:"duration"`
	}
)

func NewBroadcast(msgType string, data any) *BroadcastMessage {
	return &BroadcastMessage{
		Type:      msgType,
		Data:      data,
		Timestamp: time.Now().Format(time.RFC3339Nano),
	}
}
