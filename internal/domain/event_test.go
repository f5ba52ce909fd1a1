package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrawPayloadValidate(t *testing.T) {
	for _, tool := range []string{ToolPen, ToolEraser, ToolRect, ToolCircle, ToolLine} {
		p := DrawPayload{Tool: tool}
		assert.NoError(t, p.Validate(), tool)
	}

	text := DrawPayload{Tool: ToolText, Text: "hi"}
	assert.NoError(t, text.Validate())

	emptyText := DrawPayload{Tool: ToolText}
	assert.Error(t, emptyText.Validate())

	unknown := DrawPayload{Tool: "spraycan"}
	assert.Error(t, unknown.Validate())
}

func TestEnvelopeRoundTrip(t *testing.T) {
	payload, err := json.Marshal(JoinPayload{Room: "demo", Username: "alice"})
	require.NoError(t, err)

	raw, err := json.Marshal(Envelope{Type: EventJoin, Data: payload})
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.Equal(t, EventJoin, env.Type)

	var join JoinPayload
	require.NoError(t, json.Unmarshal(env.Data, &join))
	assert.Equal(t, "demo", join.Room)
	assert.Equal(t, "alice", join.Username)
}
