package groq

import (
	"errors"
	"strings"
)

// ErrUnexpectedResponse indicates a 2xx upstream response that none of the
// known extraction shapes could read.
var ErrUnexpectedResponse = errors.New("unexpected upstream response shape")

// extractor reads one known response shape, reporting false when the payload
// does not carry that shape. New shapes are added by appending to the
// extractor lists below, not by branching in the client.
type extractor func(payload map[string]any) (string, bool)

// transcriptionExtractors are tried in order against a transcription
// response: a direct text field, the transcription/transcript variants, then
// a results list whose first element carries the text.
var transcriptionExtractors = []extractor{
	stringField("text"),
	stringField("transcription"),
	stringField("transcript"),
	firstResultField("text"),
	firstResultField("transcript"),
}

// completionExtractors are tried in order against a chat-completion
// response: the first choice's message content, its text field, then a
// generic output list of content parts joined with spaces.
var completionExtractors = []extractor{
	firstChoiceMessageContent,
	firstChoiceField("text"),
	outputContentParts,
}

// extractFirst returns the first non-empty extractor value. An empty value
// falls through to the later shapes; when every matching shape is empty the
// result is an empty transcript, not an error. ErrUnexpectedResponse is
// reserved for payloads no shape could read at all.
func extractFirst(payload map[string]any, extractors []extractor) (string, error) {
	matched := false
	for _, extract := range extractors {
		text, ok := extract(payload)
		if !ok {
			continue
		}
		if text != "" {
			return text, nil
		}
		matched = true
	}
	if matched {
		return "", nil
	}
	return "", ErrUnexpectedResponse
}

func stringField(name string) extractor {
	return func(payload map[string]any) (string, bool) {
		text, ok := payload[name].(string)
		return text, ok
	}
}

func firstResultField(name string) extractor {
	return func(payload map[string]any) (string, bool) {
		results, ok := payload["results"].([]any)
		if !ok || len(results) == 0 {
			return "", false
		}
		first, ok := results[0].(map[string]any)
		if !ok {
			return "", false
		}
		text, ok := first[name].(string)
		return text, ok
	}
}

func firstChoice(payload map[string]any) (map[string]any, bool) {
	choices, ok := payload["choices"].([]any)
	if !ok || len(choices) == 0 {
		return nil, false
	}
	first, ok := choices[0].(map[string]any)
	return first, ok
}

func firstChoiceMessageContent(payload map[string]any) (string, bool) {
	choice, ok := firstChoice(payload)
	if !ok {
		return "", false
	}
	message, ok := choice["message"].(map[string]any)
	if !ok {
		return "", false
	}
	content, ok := message["content"].(string)
	return content, ok
}

func firstChoiceField(name string) extractor {
	return func(payload map[string]any) (string, bool) {
		choice, ok := firstChoice(payload)
		if !ok {
			return "", false
		}
		text, ok := choice[name].(string)
		return text, ok
	}
}

// outputContentParts joins the text parts of a generic output list, the shape
// some response formats use instead of choices.
func outputContentParts(payload map[string]any) (string, bool) {
	output, ok := payload["output"].([]any)
	if !ok {
		return "", false
	}
	var parts []string
	for _, item := range output {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		contents, ok := entry["content"].([]any)
		if !ok {
			continue
		}
		for _, content := range contents {
			piece, ok := content.(map[string]any)
			if !ok {
				continue
			}
			if text, ok := piece["text"].(string); ok && text != "" {
				parts = append(parts, text)
			}
		}
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, " "), true
}
