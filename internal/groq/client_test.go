package groq

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxgate/voxgate/internal/rotation"
)

func newTestClient(t *testing.T, handler http.Handler, keys ...string) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	runner := rotation.NewRunner(rotation.NewRotator(keys), nil)
	client := NewClient(nil, runner, 5*time.Second, "openai/gpt-oss-120b")
	client.SetBaseURL(server.URL)
	return client
}

func writeAudioFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.mp3")
	require.NoError(t, os.WriteFile(path, []byte("not really audio"), 0o600))
	return path
}

func TestTranscribeSendsMultipartForm(t *testing.T) {
	t.Parallel()

	var gotModel, gotLanguage, gotAuth string
	var gotFile []byte
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/audio/transcriptions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotModel = r.FormValue("model")
		gotLanguage = r.FormValue("language")
		file, _, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		gotFile = make([]byte, 16)
		n, _ := file.Read(gotFile)
		gotFile = gotFile[:n]
		w.Write([]byte(`{"text":"hello world"}`))
	})

	client := newTestClient(t, handler, "key-1")
	text, err := client.Transcribe(context.Background(), writeAudioFixture(t), "en")
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)
	assert.Equal(t, "Bearer key-1", gotAuth)
	assert.Equal(t, TranscriptionModel, gotModel)
	assert.Equal(t, "en", gotLanguage)
	assert.Equal(t, "not really audio", string(gotFile))
}

func TestTranscribeOmitsLanguageWhenAutoDetect(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, present := r.MultipartForm.Value["language"]
		assert.False(t, present, "auto-detect must not send a language field")
		w.Write([]byte(`{"transcript":"salut"}`))
	})

	client := newTestClient(t, handler, "key-1")
	text, err := client.Transcribe(context.Background(), writeAudioFixture(t), "")
	require.NoError(t, err)
	assert.Equal(t, "salut", text)
}

func TestTranscribeRotatesOnServerError(t *testing.T) {
	t.Parallel()

	var keysSeen []string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("Authorization")
		keysSeen = append(keysSeen, key)
		if key == "Bearer bad" {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"results":[{"text":"recovered"}]}`))
	})

	client := newTestClient(t, handler, "bad", "good")
	text, err := client.Transcribe(context.Background(), writeAudioFixture(t), "")
	require.NoError(t, err)
	assert.Equal(t, "recovered", text)
	assert.Equal(t, []string{"Bearer bad", "Bearer good"}, keysSeen)
}

func TestTranscribeExhaustsPool(t *testing.T) {
	t.Parallel()

	calls := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "down", http.StatusBadGateway)
	})

	client := newTestClient(t, handler, "a", "b")
	_, err := client.Transcribe(context.Background(), writeAudioFixture(t), "")
	require.Error(t, err)
	assert.ErrorContains(t, err, "status 502")
	assert.Equal(t, 3, calls, "expected pool-size+1 attempts")
}

func TestTranscribeNoCredentials(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.NotFoundHandler())
	_, err := client.Transcribe(context.Background(), writeAudioFixture(t), "")
	assert.ErrorIs(t, err, rotation.ErrNoCredentials)
}

func TestCompleteRequestAndShapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		response string
		want     string
		wantErr  error
	}{
		{name: "message content", response: `{"choices":[{"message":{"content":"hello"}}]}`, want: "hello"},
		{name: "choice text", response: `{"choices":[{"text":"hi"}]}`, want: "hi"},
		{
			name:     "output parts",
			response: `{"output":[{"content":[{"text":"first"},{"text":"second"}]},{"content":[{"text":"third"}]}]}`,
			want:     "first second third",
		},
		{name: "unknown shape", response: `{"status":"ok"}`, wantErr: ErrUnexpectedResponse},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var gotBody map[string]any
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, "/chat/completions", r.URL.Path)
				require.NoError(t, jsonDecode(r, &gotBody))
				w.Write([]byte(tt.response))
			})
			client := newTestClient(t, handler, "key-1")

			text, err := client.Complete(context.Background(), "the transcript", "summarize it")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, text)

			assert.Equal(t, "openai/gpt-oss-120b", gotBody["model"])
			assert.Equal(t, float64(completionMaxTokens), gotBody["max_tokens"])
			assert.Equal(t, completionTemperature, gotBody["temperature"])
			messages := gotBody["messages"].([]any)
			require.Len(t, messages, 2)
			system := messages[0].(map[string]any)
			assert.Equal(t, "system", system["role"])
			assert.Equal(t, "summarize it", system["content"])
			user := messages[1].(map[string]any)
			assert.Equal(t, "user", user["role"])
			assert.Equal(t, "the transcript", user["content"])
		})
	}
}

func TestCompleteNonJSONSuccessIsError(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	})
	client := newTestClient(t, handler, "only")
	_, err := client.Complete(context.Background(), "text", "instr")
	require.Error(t, err)
	assert.ErrorContains(t, err, "all credentials exhausted")
}

func jsonDecode(r *http.Request, into *map[string]any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(into)
}
