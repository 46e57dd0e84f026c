// Package groq calls the Groq transcription and chat-completion APIs through
// the credential rotation runner.
package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/voxgate/voxgate/internal/rotation"
)

const (
	// DefaultBaseURL is the Groq OpenAI-compatible API root.
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	// TranscriptionModel is the fixed speech-to-text model.
	TranscriptionModel = "whisper-large-v3"

	completionMaxTokens   = 2000
	completionTemperature = 0.2
)

// Client performs single transcription or completion calls. Each call runs
// through the rotation runner, so a transport failure or non-2xx status moves
// on to the next credential.
type Client struct {
	httpClient *http.Client
	runner     *rotation.Runner
	baseURL    string
	textModel  string
	logger     *slog.Logger
}

// NewClient builds a Client. The request timeout applies to every upstream
// call, transcription uploads included.
func NewClient(log *slog.Logger, runner *rotation.Runner, timeout time.Duration, textModel string) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		runner:     runner,
		baseURL:    DefaultBaseURL,
		textModel:  textModel,
		logger:     log.With(slog.String("component", "groq")),
	}
}

// SetBaseURL overrides the API root. Used by tests to point at a fake server.
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// Transcribe uploads the audio file at filePath and returns the recognized
// text. An empty language means auto-detect.
func (c *Client) Transcribe(ctx context.Context, filePath, language string) (string, error) {
	return c.runner.Execute(ctx, func(ctx context.Context, key string) (string, error) {
		return c.transcribeOnce(ctx, key, filePath, language)
	})
}

func (c *Client) transcribeOnce(ctx context.Context, key, filePath, language string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("open audio file: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(filePath))
	if err != nil {
		return "", fmt.Errorf("build multipart form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("copy audio into form: %w", err)
	}
	if err := writer.WriteField("model", TranscriptionModel); err != nil {
		return "", fmt.Errorf("build multipart form: %w", err)
	}
	if language != "" {
		if err := writer.WriteField("language", language); err != nil {
			return "", fmt.Errorf("build multipart form: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("build multipart form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/transcriptions", &body)
	if err != nil {
		return "", fmt.Errorf("build transcription request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+key)

	payload, err := c.do(req)
	if err != nil {
		return "", err
	}
	return extractFirst(payload, transcriptionExtractors)
}

// Complete sends text as the user turn with the given system instruction and
// returns the model's reply.
func (c *Client) Complete(ctx context.Context, text, instruction string) (string, error) {
	return c.runner.Execute(ctx, func(ctx context.Context, key string) (string, error) {
		return c.completeOnce(ctx, key, text, instruction)
	})
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

func (c *Client) completeOnce(ctx context.Context, key, text, instruction string) (string, error) {
	payload := completionRequest{
		Model: c.textModel,
		Messages: []chatMessage{
			{Role: "system", Content: instruction},
			{Role: "user", Content: text},
		},
		MaxTokens:   completionMaxTokens,
		Temperature: completionTemperature,
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("build completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+key)

	response, err := c.do(req)
	if err != nil {
		return "", err
	}
	return extractFirst(response, completionExtractors)
}

// do executes the request and decodes the JSON body of a 2xx response.
// Non-2xx statuses and decode failures are upstream errors that trigger
// credential rotation in the caller.
func (c *Client) do(req *http.Request) (map[string]any, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstream request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read upstream response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("upstream status %d: %s", resp.StatusCode, previewBody(body))
	}
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode upstream response: %w", err)
	}
	return payload, nil
}

func previewBody(body []byte) string {
	const limit = 200
	if len(body) > limit {
		body = body[:limit]
	}
	return string(body)
}
