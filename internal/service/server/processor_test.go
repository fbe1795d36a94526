package server

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"

	"sacred_computing/internal/model"
	"sacred_computing/internal/packet"
	"sacred_computing/internal/sacred"
	"sacred_computing/internal/service/hub"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConn hands out a scripted sequence of frames, then reports the
// connection closed.
type fakeConn struct {
	frames [][]byte
	closed bool
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	if len(c.frames) == 0 {
		return 0, nil, io.EOF
	}
	frame := c.frames[0]
	c.frames = c.frames[1:]
	return websocket.TextMessage, frame, nil
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

type recordingSub struct {
	id string

	mu   sync.Mutex
	msgs []*model.BroadcastMessage
}

func (s *recordingSub) ID() string {
	return s.id
}

func (s *recordingSub) Send(msg *model.BroadcastMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
	return nil
}

func (s *recordingSub) messages() []*model.BroadcastMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*model.BroadcastMessage(nil), s.msgs...)
}

func frame(t *testing.T, msg model.InboundMessage) []byte {
	t.Helper()
	data, err := json.Marshal(msg)
	require.NoError(t, err)
	return data
}

func runProcessor(t *testing.T, frames ...[]byte) (*recordingSub, *fakeConn, *hub.Hub) {
	t.Helper()
	h := hub.New(packet.NewCodec(packet.NewSequence(), "sacred-test-device"), nil)
	sub := &recordingSub{id: "a"}
	conn := &fakeConn{frames: frames}
	// Zero pacing keeps the presentation pauses out of the tests.
	NewProcessor(h, sacred.NewEngine(), sub, conn, 0).Run(context.Background())
	return sub, conn, h
}

func TestProcessorIntentionWithBoost(t *testing.T) {
	sub, conn, h := runProcessor(t, frame(t, model.InboundMessage{
		Type: model.TypeIntention,
		Data: model.InboundData{Intention: "peace", Frequency: 528, Boost: true, Multiplier: 7},
	}))

	msgs := sub.messages()
	require.Len(t, msgs, 4)

	assert.Equal(t, model.TypeSystem, msgs[0].Type)

	echo := msgs[1]
	assert.Equal(t, model.TypeIntention, echo.Type)
	data, ok := echo.Data.(*model.IntentionData)
	require.True(t, ok)
	assert.Equal(t, "Intention 'peace' processed", data.Message)
	assert.Equal(t, 528.0, data.Frequency)
	assert.Equal(t, 7.0, data.Multiplier)
	require.NotNil(t, echo.PacketData)
	codec := packet.NewCodec(packet.NewSequence(), "sacred-test-device")
	intention, ok := codec.ExtractIntention(*echo.PacketData)
	require.True(t, ok)
	assert.Equal(t, "peace", intention)

	assert.Equal(t, model.TypeTorusField, msgs[2].Type)
	_, ok = msgs[2].Data.(*sacred.TorusField)
	assert.True(t, ok)

	amplified := msgs[3]
	assert.Equal(t, model.TypeIntention, amplified.Type)
	assert.Nil(t, amplified.PacketData)
	amp, ok := amplified.Data.(*model.AmplifiedData)
	require.True(t, ok)
	assert.Contains(t, amp.Message, "Divine amplification applied")
	assert.NotEmpty(t, amp.PhiAmplified)

	assert.True(t, conn.closed)
	assert.Equal(t, 0, h.Count())
}

func TestProcessorIntentionWithoutBoost(t *testing.T) {
	sub, _, _ := runProcessor(t, frame(t, model.InboundMessage{
		Type: model.TypeIntention,
		Data: model.InboundData{Intention: "peace"},
	}))

	msgs := sub.messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, model.TypeIntention, msgs[1].Type)
	assert.Equal(t, model.TypeTorusField, msgs[2].Type)

	// Frequency falls back to the Schumann resonance.
	data, ok := msgs[1].Data.(*model.IntentionData)
	require.True(t, ok)
	assert.Equal(t, sacred.SchumannResonance, data.Frequency)
}

func TestProcessorEmptyIntentionEchoesOnly(t *testing.T) {
	sub, _, _ := runProcessor(t, frame(t, model.InboundMessage{
		Type: model.TypeIntention,
		Data: model.InboundData{Boost: true},
	}))

	msgs := sub.messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, model.TypeIntention, msgs[1].Type)
	assert.Nil(t, msgs[1].PacketData)
}

func TestProcessorGeometryRequests(t *testing.T) {
	tests := []struct {
		name    string
		msgType string
	}{
		{"merkaba", model.TypeMerkaba},
		{"metatron", model.TypeMetatron},
		{"sri yantra", model.TypeSriYantra},
		{"flower of life", model.TypeFlowerOfLife},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub, _, _ := runProcessor(t, frame(t, model.InboundMessage{
				Type: tt.msgType,
				Data: model.InboundData{Intention: "healing"},
			}))

			msgs := sub.messages()
			require.Len(t, msgs, 2)
			assert.Equal(t, tt.msgType, msgs[1].Type)
		})
	}
}

func TestProcessorInvalidJSON(t *testing.T) {
	sub, _, _ := runProcessor(t, []byte("{not json"))

	msgs := sub.messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, model.TypeSystem, msgs[1].Type)
	data, ok := msgs[1].Data.(*model.SystemData)
	require.True(t, ok)
	assert.Equal(t, "Invalid message format", data.Error)
}

func TestProcessorDispatchError(t *testing.T) {
	// MERKABA with no intention makes the engine reject the request; the
	// error goes back to this connection only.
	sub, _, _ := runProcessor(t, frame(t, model.InboundMessage{
		Type: model.TypeMerkaba,
		Data: model.InboundData{},
	}))

	msgs := sub.messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, model.TypeSystem, msgs[1].Type)
	data, ok := msgs[1].Data.(*model.SystemData)
	require.True(t, ok)
	assert.Equal(t, "Error processing message", data.Error)
}

func TestProcessorUnknownTypeDropped(t *testing.T) {
	sub, _, _ := runProcessor(t, frame(t, model.InboundMessage{
		Type: "QUANTUM_LEAP",
		Data: model.InboundData{Intention: "peace"},
	}))

	// Only the welcome, no error reply.
	require.Len(t, sub.messages(), 1)
}
