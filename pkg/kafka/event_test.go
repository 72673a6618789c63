package kafka

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	payload := map[string]string{"order_id": "o1"}
	e, err := NewEvent("checkout.order.created", "o1", "order", "checkout", payload)
	require.NoError(t, err)

	assert.NotEmpty(t, e.EventID)
	assert.Equal(t, "checkout.order.created", e.EventType)
	assert.Equal(t, "o1", e.AggregateID)
	assert.Equal(t, "order", e.AggregateType)
	assert.Equal(t, 1, e.Version)
	assert.False(t, e.Timestamp.IsZero())

	var got map[string]string
	require.NoError(t, e.UnmarshalData(&got))
	assert.Equal(t, payload, got)
}

func TestNewEvent_UnmarshalableData(t *testing.T) {
	_, err := NewEvent("x", "a", "order", "checkout", make(chan int))
	require.Error(t, err)
}

func TestEvent_Builders(t *testing.T) {
	e, err := NewEvent("checkout.order.paid", "o2", "order", "checkout", nil)
	require.NoError(t, err)

	e.WithCorrelationID("corr-1").WithMetadata("actor", "u1")
	assert.Equal(t, "corr-1", e.CorrelationID)
	assert.Equal(t, "u1", e.Metadata["actor"])
}

func TestEvent_MarshalRoundTrip(t *testing.T) {
	e, err := NewEvent("checkout.cart.cleared", "u1", "cart", "checkout", map[string]int{"rows": 3})
	require.NoError(t, err)

	raw, err := e.Marshal()
	require.NoError(t, err)

	var decoded Event
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, e.EventID, decoded.EventID)
	assert.Equal(t, e.EventType, decoded.EventType)
}
