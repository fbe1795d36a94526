package packet

import (
	"encoding/base64"
	"encoding/json"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hexRe = regexp.MustCompile(`^[0-9a-f]+$`)

func newTestCodec() *Codec {
	return NewCodec(NewSequence(), "sacred-test-device")
}

func TestBuild(t *testing.T) {
	c := newTestCodec()

	t.Run("example packet", func(t *testing.T) {
		p, err := c.Build("Healing and peace", 7.83, "torus", "broadcast")
		require.NoError(t, err)

		assert.Equal(t, 1, p.Header.Version)
		assert.Equal(t, TypeIntention, p.Header.Type)
		assert.NotZero(t, p.Header.Timestamp)

		assert.Len(t, p.Payload.EnergySignature, 16)
		assert.Regexp(t, hexRe, p.Payload.EnergySignature)
		assert.Len(t, p.Payload.QuantumEntanglementKey, 32)
		assert.Regexp(t, hexRe, p.Payload.QuantumEntanglementKey)

		// 17 characters at 7.83 Hz.
		assert.InDelta(t, 17*7.83/100, p.Metadata.IntentionStrength, 1e-9)
		assert.Equal(t, "sacred-test-device", p.Metadata.SourceDevice)
		assert.Equal(t, "broadcast", p.Metadata.TargetDevice)
		assert.Equal(t, "merkaba-torus-fibonacci", p.Metadata.SacredEncoding)
	})

	t.Run("intention strength caps at 100", func(t *testing.T) {
		long := make([]byte, 3000)
		for i := range long {
			long[i] = 'a'
		}
		p, err := c.Build(string(long), 7.83, "torus", "broadcast")
		require.NoError(t, err)
		assert.Equal(t, 100.0, p.Metadata.IntentionStrength)
	})

	t.Run("tokens are fresh per packet", func(t *testing.T) {
		a, err := c.Build("peace", 7.83, "torus", "broadcast")
		require.NoError(t, err)
		b, err := c.Build("peace", 7.83, "torus", "broadcast")
		require.NoError(t, err)

		assert.NotEqual(t, a.Payload.EnergySignature, b.Payload.EnergySignature)
		assert.NotEqual(t, a.Payload.QuantumEntanglementKey, b.Payload.QuantumEntanglementKey)
		assert.NotEqual(t, a.Header.SequenceID, b.Header.SequenceID)
	})
}

func TestChecksum(t *testing.T) {
	c := newTestCodec()

	p, err := c.Build("Healing and peace", 7.83, "torus", "broadcast")
	require.NoError(t, err)

	payloadBytes, err := json.Marshal(&p.Payload)
	require.NoError(t, err)

	assert.Len(t, p.Header.Checksum, 16)
	assert.Regexp(t, hexRe, p.Header.Checksum)
	assert.Equal(t, Checksum(payloadBytes), p.Header.Checksum)
	assert.Equal(t, len(payloadBytes), p.Header.Length)
}

func TestRoundTrip(t *testing.T) {
	c := newTestCodec()

	intentions := []string{
		"Healing and peace",
		"Δ unicode ❤",
		"a",
	}
	for _, intention := range intentions {
		encoded, err := c.BuildEncoded(intention, 7.83, "torus", "broadcast")
		require.NoError(t, err)

		got, ok := c.ExtractIntention(encoded)
		require.True(t, ok)
		assert.Equal(t, intention, got)
	}
}

func TestSerializeEnvelope(t *testing.T) {
	c := newTestCodec()

	p, err := c.Build("peace", 7.83, "merkaba", "device-7")
	require.NoError(t, err)
	encoded, err := c.Serialize(p)
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)

	var decoded IntentionPacket
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, *p, decoded)

	// Checksum recomputed over the decoded payload still matches.
	payloadBytes, err := json.Marshal(&decoded.Payload)
	require.NoError(t, err)
	assert.Equal(t, decoded.Header.Checksum, Checksum(payloadBytes))
}

func TestExtractIntentionFailures(t *testing.T) {
	c := newTestCodec()

	t.Run("not base64", func(t *testing.T) {
		_, ok := c.ExtractIntention("!!! not base64 !!!")
		assert.False(t, ok)
	})

	t.Run("not json", func(t *testing.T) {
		encoded := base64.StdEncoding.EncodeToString([]byte("definitely not json"))
		_, ok := c.ExtractIntention(encoded)
		assert.False(t, ok)
	})

	t.Run("missing intention", func(t *testing.T) {
		encoded := base64.StdEncoding.EncodeToString([]byte(`{"payload":{"frequency":7.83}}`))
		_, ok := c.ExtractIntention(encoded)
		assert.False(t, ok)
	})
}

func TestSequenceConcurrentUniqueness(t *testing.T) {
	seq := NewSequence()

	const workers = 50
	const perWorker = 200

	var (
		mu   sync.Mutex
		seen = make(map[uint64]struct{}, workers*perWorker)
		wg   sync.WaitGroup
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids := make([]uint64, 0, perWorker)
			for j := 0; j < perWorker; j++ {
				ids = append(ids, seq.NextID())
			}
			mu.Lock()
			for _, id := range ids {
				seen[id] = struct{}{}
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*perWorker)
}
