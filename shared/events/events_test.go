package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// After transport the envelope's Data field comes back as a generic
// map[string]any. DecodeData must still recover the typed payload.
func TestDecodeDataAfterTransport(t *testing.T) {
	original := Event{
		ID:        uuid.NewString(),
		Type:      CustomerDeleted,
		Timestamp: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Data:      DeletedPayload{ID: 42},
	}

	raw, err := json.Marshal(original)
	require.NoError(t, err)

	var transported Event
	require.NoError(t, json.Unmarshal(raw, &transported))

	var payload DeletedPayload
	require.NoError(t, transported.DecodeData(&payload))
	assert.Equal(t, int64(42), payload.ID)
}

func TestDecodeDataMismatchedPayload(t *testing.T) {
	event := Event{
		Type: AccountDeleted,
		Data: map[string]any{"id": "not-a-number"},
	}

	var payload DeletedPayload
	err := event.DecodeData(&payload)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), AccountDeleted)
}
