package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripFences("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripFences(`{"a":1}`))
	assert.Equal(t, `{"a":1}`, StripFences("  {\"a\":1}  "))
}

func TestParseJSONRepairsMalformedOutput(t *testing.T) {
	var out struct {
		Score int    `json:"score"`
		Word  string `json:"word"`
	}
	// trailing comma and single quotes, typical model sloppiness
	err := ParseJSON("```json\n{'score': 85, 'word': 'chai',}\n```", &out)
	require.NoError(t, err)
	assert.Equal(t, 85, out.Score)
	assert.Equal(t, "chai", out.Word)
}

func TestParseJSONRejectsNonJSON(t *testing.T) {
	var out map[string]any
	assert.Error(t, ParseJSON("I am sorry, I cannot do that.", &out))
}

func TestExtractObject(t *testing.T) {
	assert.Equal(t, `{"score": 40}`, ExtractObject(`noise {"score": 40} trailing`))
	assert.Equal(t, "", ExtractObject("no object here"))
}
