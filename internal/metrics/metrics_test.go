package metrics

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	event := NewEvent(OpUserRegister)

	assert.Len(t, event.ID, 8)
	assert.Equal(t, "users", event.Service)
	assert.Equal(t, OpUserRegister, event.Operation)
	assert.WithinDuration(t, time.Now().UTC(), event.Date, 5*time.Second)

	other := NewEvent(OpUserRegister)
	assert.NotEqual(t, event.ID, other.ID)
}

func TestEventWireFormat(t *testing.T) {
	body, err := json.Marshal(NewEvent(OpUserBlocked))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Contains(t, decoded, "id")
	assert.Contains(t, decoded, "date")
	assert.Equal(t, "users", decoded["service"])
	assert.Equal(t, "user-blocked", decoded["operation"])
}
