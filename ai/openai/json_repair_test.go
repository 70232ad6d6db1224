package openai

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepairJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"valid input untouched", `{"document_type": "CONTRACT"}`, `{"document_type": "CONTRACT"}`},
		{"missing opening quote", `{document_type": "CONTRACT"}`, `{"document_type": "CONTRACT"}`},
		{"missing quote after comma", `{"fields": {"a": "1", b": "2"}}`, `{"fields": {"a": "1", "b": "2"}}`},
		{"trailing comma in object", `{"fields": {"a": "1",}}`, `{"fields": {"a": "1"}}`},
		{"trailing comma in array", `[1, 2, ]`, `[1, 2 ]`},
		{"comma inside string kept", `{"a": "x,}"}`, `{"a": "x,}"}`},
		{"bare literal untouched", `[1, true]`, `[1, true]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, repairJSON(tt.in))
		})
	}
}

func TestRepairJSON_ProducesParseableOutput(t *testing.T) {
	var out extraction
	require.NoError(t, json.Unmarshal([]byte(repairJSON(`{fields": {"passport_number": "YA1234567",},}`)), &out))
	assert.Equal(t, "YA1234567", out.Fields["passport_number"])
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence("```\n{\"a\":1}```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence(`  {"a":1} `))
}

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "abc", truncateText("  abc  ", 10))
	assert.Equal(t, "àè", truncateText("àèì", 2))
}
