package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripCodeFences(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"bare fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"no fence", `{"a": 1}`, `{"a": 1}`},
		{"whitespace only", "  \n{\"a\": 1}\n  ", `{"a": 1}`},
		{"unclosed fence", "```json\n{\"a\": 1}", `{"a": 1}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StripCodeFences(tc.in))
		})
	}
}

func TestExtractJSONFenced(t *testing.T) {
	got, err := ExtractJSON("```json\n{\"topic\": \"fractions\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, `{"topic": "fractions"}`, got)
}

func TestExtractJSONSurroundingProse(t *testing.T) {
	got, err := ExtractJSON(`Here is the unit you asked for: {"topic": "fractions", "items": [1, 2]} Hope it helps!`)
	require.NoError(t, err)
	assert.Equal(t, `{"topic": "fractions", "items": [1, 2]}`, got)
}

func TestExtractJSONBracesInsideStrings(t *testing.T) {
	in := `{"overview": "use {braces} and \"quotes\" freely"}`
	got, err := ExtractJSON(in)
	require.NoError(t, err)
	assert.Equal(t, in, got)
}

func TestExtractJSONArray(t *testing.T) {
	got, err := ExtractJSON("The list: [1, 2, 3] as requested")
	require.NoError(t, err)
	assert.Equal(t, `[1, 2, 3]`, got)
}

func TestExtractJSONNoJSON(t *testing.T) {
	for _, in := range []string{"", "I could not generate that.", "{\"truncated\": "} {
		_, err := ExtractJSON(in)
		assert.True(t, errors.Is(err, ErrNoJSONFound), "input=%q", in)
	}
}

func TestExtractJSONTo(t *testing.T) {
	var out struct {
		Topic string `json:"topic"`
	}
	err := ExtractJSONTo("```json\n{\"topic\": \"algebra\"}\n```", &out)
	require.NoError(t, err)
	assert.Equal(t, "algebra", out.Topic)
}
