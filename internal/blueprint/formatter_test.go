package blueprint

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTextEmptyPlan(t *testing.T) {
	var buf bytes.Buffer
	FormatText(&buf, &Plan{}, true)
	assert.Contains(t, buf.String(), "No changes.")
}

func TestFormatTextNoColor(t *testing.T) {
	plan := &Plan{Operations: []Operation{
		{Action: ActionAdd, URN: "urn::A:database/DB", Data: map[string]any{"name": "DB"}},
		{Action: ActionChange, URN: "urn::A:warehouse/W", Data: map[string]any{"auto_suspend": 300}},
		{Action: ActionRemove, URN: "urn::A:role/OLD", Data: map[string]any{"name": "OLD"}},
	}}

	var buf bytes.Buffer
	FormatText(&buf, plan, true)
	out := buf.String()

	assert.NotContains(t, out, "\033[")
	assert.Contains(t, out, "# urn::A:database/DB")
	assert.Contains(t, out, "will be created")
	assert.Contains(t, out, "auto_suspend: 300")
	assert.Contains(t, out, "will be removed")
	assert.Contains(t, out, "Plan: 1 to add, 1 to change, 1 to remove.")
}

func TestFormatTextColorCodes(t *testing.T) {
	plan := &Plan{Operations: []Operation{
		{Action: ActionAdd, URN: "urn::A:database/DB", Data: map[string]any{"name": "DB"}},
	}}
	var buf bytes.Buffer
	FormatText(&buf, plan, false)
	assert.True(t, strings.Contains(buf.String(), colorGreen))
}

func TestFormatJSON(t *testing.T) {
	plan := &Plan{Operations: []Operation{
		{Action: ActionAdd, URN: "urn::A:database/DB", Data: map[string]any{"name": "DB"}},
	}}

	var buf bytes.Buffer
	require.NoError(t, FormatJSON(&buf, plan))

	var decoded struct {
		Operations []Operation `json:"operations"`
		Add        int         `json:"add"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded.Operations, 1)
	assert.Equal(t, ActionAdd, decoded.Operations[0].Action)
	assert.Equal(t, 1, decoded.Add)
}
