package groq

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodePayload(t *testing.T, raw string) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))
	return payload
}

func TestExtractFirstFallsThroughEmptyFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr error
	}{
		{name: "direct text", raw: `{"text":"hello"}`, want: "hello"},
		{
			name: "empty text falls through to results",
			raw:  `{"text":"","results":[{"text":"hi"}]}`,
			want: "hi",
		},
		{
			name: "empty transcription falls through to transcript",
			raw:  `{"transcription":"","transcript":"bonjour"}`,
			want: "bonjour",
		},
		{name: "all shapes empty is an empty transcript", raw: `{"text":""}`, want: ""},
		{name: "no known shape", raw: `{"status":"ok"}`, wantErr: ErrUnexpectedResponse},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := extractFirst(decodePayload(t, tt.raw), transcriptionExtractors)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractFirstCompletionEmptyContentFallsThrough(t *testing.T) {
	t.Parallel()

	payload := decodePayload(t, `{"choices":[{"message":{"content":""},"text":"from text field"}]}`)
	got, err := extractFirst(payload, completionExtractors)
	require.NoError(t, err)
	assert.Equal(t, "from text field", got)
}
