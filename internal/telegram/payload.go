package telegram

import (
	"os"
	"strings"
)

// callbackPayload is the decoded form of a callback query's data field,
// which carries "action|param1|param2|...".
type callbackPayload struct {
	action string
	args   []string
}

// parseCallbackData splits callback data into its action and parameters.
// The second return is false for empty data.
func parseCallbackData(data string) (callbackPayload, bool) {
	if data == "" {
		return callbackPayload{}, false
	}
	parts := strings.Split(data, "|")
	return callbackPayload{action: parts[0], args: parts[1:]}, true
}

func removeFile(path string) error {
	err := os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
