package nats_test

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	natsgo "github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/warehouse-tracker/internal/domain/entity"
	"github.com/jhoicas/warehouse-tracker/internal/infrastructure/nats"
)

var rec = entity.LogRecord{
	Timestamp:      time.Date(2024, 5, 1, 10, 0, 0, 0, time.FixedZone("COT", -5*3600)),
	PartRef:        "A1",
	Delta:          -2,
	QuantityBefore: 5,
	QuantityAfter:  3,
	User:           "bob",
}

func TestNewAdjustmentEvent(t *testing.T) {
	ev := nats.NewAdjustmentEvent(rec)
	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, nats.EventType, ev.Type)
	assert.Equal(t, time.UTC, ev.Timestamp.Location())

	raw, err := json.Marshal(ev)
	require.NoError(t, err)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(raw, &payload))
	assert.Equal(t, "A1", payload["partRef"])
	assert.Equal(t, float64(-2), payload["delta"])
	assert.Equal(t, "2024-05-01T15:00:00Z", payload["timestamp"])

	assert.NotEqual(t, ev.ID, nats.NewAdjustmentEvent(rec).ID)
}

// Requiere un servidor con JetStream: TEST_NATS_URL=nats://127.0.0.1:4222
func TestPublisher_PublicaEnJetStream(t *testing.T) {
	url := os.Getenv("TEST_NATS_URL")
	if url == "" {
		t.Skip("TEST_NATS_URL no definido")
	}
	subject := "test.inventory.adjusted"
	pub, err := nats.NewPublisher(url, "TEST_INVENTORY", subject)
	require.NoError(t, err)
	defer pub.Close()

	nc, err := natsgo.Connect(url)
	require.NoError(t, err)
	defer nc.Close()
	sub, err := nc.SubscribeSync(subject)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, pub.Record(ctx, rec))

	msg, err := sub.NextMsg(5 * time.Second)
	require.NoError(t, err)
	var ev nats.AdjustmentEvent
	require.NoError(t, json.Unmarshal(msg.Data, &ev))
	assert.Equal(t, "A1", ev.PartRef)
	assert.Equal(t, int64(3), ev.QuantityAfter)
}
