package hub

import (
	"context"
	"errors"
	"sync"
	"testing"

	"sacred_computing/internal/model"
	"sacred_computing/internal/packet"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeSub struct {
	id   string
	fail bool

	mu   sync.Mutex
	msgs []*model.BroadcastMessage
}

func (s *fakeSub) ID() string {
	return s.id
}

func (s *fakeSub) Send(msg *model.BroadcastMessage) error {
	if s.fail {
		return errors.New("connection reset")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
	return nil
}

func (s *fakeSub) messages() []*model.BroadcastMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*model.BroadcastMessage(nil), s.msgs...)
}

func newTestHub() *Hub {
	codec := packet.NewCodec(packet.NewSequence(), "sacred-test-device")
	return New(codec, nil)
}

func TestSubscribeSendsWelcome(t *testing.T) {
	h := newTestHub()
	sub := &fakeSub{id: "a"}

	h.Subscribe(context.Background(), sub)

	require.Equal(t, 1, h.Count())
	msgs := sub.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, model.TypeSystem, msgs[0].Type)

	data, ok := msgs[0].Data.(*model.SystemData)
	require.True(t, ok)
	assert.Contains(t, data.Message, "Connected")
}

func TestSubscribeFailingWelcomeEvicts(t *testing.T) {
	h := newTestHub()
	h.Subscribe(context.Background(), &fakeSub{id: "a", fail: true})
	assert.Equal(t, 0, h.Count())
}

func TestUnsubscribeIdempotent(t *testing.T) {
	h := newTestHub()
	sub := &fakeSub{id: "a"}
	h.Subscribe(context.Background(), sub)

	h.Unsubscribe("a")
	assert.Equal(t, 0, h.Count())
	// Removing an absent handle is a no-op.
	h.Unsubscribe("a")
	h.Unsubscribe("never-existed")
	assert.Equal(t, 0, h.Count())
}

func TestPublishEmptyRegistry(t *testing.T) {
	h := newTestHub()
	// Must return immediately without error.
	h.Publish(context.Background(), model.NewBroadcast(model.TypeSystem, &model.SystemData{Message: "hello"}))
}

func TestPublishFanoutIsolation(t *testing.T) {
	h := newTestHub()
	ctx := context.Background()

	good1 := &fakeSub{id: "good-1"}
	bad := &fakeSub{id: "bad", fail: true}
	good2 := &fakeSub{id: "good-2"}
	h.Subscribe(ctx, good1)
	h.Subscribe(ctx, good2)

	// Register the failing subscriber directly: Subscribe would already
	// evict it on the failed welcome.
	h.mu.Lock()
	h.subs[bad.ID()] = bad
	h.mu.Unlock()
	require.Equal(t, 3, h.Count())

	h.Publish(ctx, model.NewBroadcast(model.TypeMerkaba, map[string]any{"x": 1}))

	// Both healthy subscribers got the broadcast (welcome + publish).
	assert.Len(t, good1.messages(), 2)
	assert.Len(t, good2.messages(), 2)
	// The failing one is gone.
	assert.Equal(t, 2, h.Count())
}

func TestPublishAttachesPacketToIntention(t *testing.T) {
	h := newTestHub()
	ctx := context.Background()

	sub := &fakeSub{id: "a"}
	h.Subscribe(ctx, sub)

	h.Publish(ctx, model.NewBroadcast(model.TypeIntention, &model.IntentionData{
		Message:   "Intention 'peace' processed",
		Intention: "peace",
		Frequency: 7.83,
	}))

	msgs := sub.messages()
	require.Len(t, msgs, 2)
	broadcast := msgs[1]
	require.NotNil(t, broadcast.PacketData)

	codec := packet.NewCodec(packet.NewSequence(), "sacred-test-device")
	intention, ok := codec.ExtractIntention(*broadcast.PacketData)
	require.True(t, ok)
	assert.Equal(t, "peace", intention)
}

func TestPublishDefaultsFrequency(t *testing.T) {
	h := newTestHub()
	ctx := context.Background()

	sub := &fakeSub{id: "a"}
	h.Subscribe(ctx, sub)

	// Zero frequency still produces an envelope at the Schumann default.
	h.Publish(ctx, model.NewBroadcast(model.TypeIntention, &model.IntentionData{
		Intention: "peace",
	}))

	msgs := sub.messages()
	require.Len(t, msgs, 2)
	assert.NotNil(t, msgs[1].PacketData)
}

func TestPublishSkipsPacketForOtherTypes(t *testing.T) {
	h := newTestHub()
	ctx := context.Background()

	sub := &fakeSub{id: "a"}
	h.Subscribe(ctx, sub)

	h.Publish(ctx, model.NewBroadcast(model.TypeTorusField, map[string]any{"intention": "peace"}))
	h.Publish(ctx, model.NewBroadcast(model.TypeIntention, &model.IntentionData{Message: "no intention set"}))

	msgs := sub.messages()
	require.Len(t, msgs, 3)
	assert.Nil(t, msgs[1].PacketData)
	assert.Nil(t, msgs[2].PacketData)
}
