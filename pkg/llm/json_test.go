package llm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSON(t *testing.T) {
	type payload struct {
		Section string `json:"section"`
		Draft   string `json:"draft"`
	}

	tests := []struct {
		name string
		raw  string
		want payload
	}{
		{"plain object", `{"section":"A","draft":"text"}`, payload{"A", "text"}},
		{"fenced object", "```json\n{\"section\":\"A\",\"draft\":\"text\"}\n```", payload{"A", "text"}},
		{"prose around object", "Here you go:\n{\"section\":\"A\",\"draft\":\"t\"}\nThanks", payload{"A", "t"}},
		{"trailing comma", "{\"section\":\"A\",\"draft\":\"t\",\n}", payload{"A", "t"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got payload
			require.NoError(t, ParseJSON(tt.raw, &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseJSON_NullQuestion(t *testing.T) {
	var got struct {
		Question *struct {
			Section string `json:"section"`
		} `json:"question"`
	}
	require.NoError(t, ParseJSON(`{"question": null,}`, &got))
	assert.Nil(t, got.Question)
}

func TestParseJSON_Malformed(t *testing.T) {
	for _, raw := range []string{"", "no json here", "{broken", `{"a": }`} {
		var v map[string]interface{}
		err := ParseJSON(raw, &v)

		var malformed *MalformedResponseError
		require.True(t, errors.As(err, &malformed), raw)
		assert.Equal(t, raw, malformed.Raw)
	}
}

func TestParseJSON_CommasInsideStrings(t *testing.T) {
	var got struct {
		Draft string `json:"draft"`
	}

	require.NoError(t, ParseJSON(`{"draft": "Items: a, ] b,\n} c"}`, &got))
	assert.Equal(t, "Items: a, ] b,\n} c", got.Draft)

	require.NoError(t, ParseJSON(`{"draft": "keep \"quoted, ]\" text",}`, &got))
	assert.Equal(t, `keep "quoted, ]" text`, got.Draft)
}

func TestStripTrailingCommas(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"a": [1, 2,], }`, `{"a": [1, 2] }`},
		{`{"a": "x, }",}`, `{"a": "x, }"}`},
		{`{"a": "esc \\", "b": 1,}`, `{"a": "esc \\", "b": 1}`},
		{`{"a": 1}`, `{"a": 1}`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, stripTrailingCommas(tt.in), tt.in)
	}
}
