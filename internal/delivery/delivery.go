// Package delivery returns transcript text to a conversation, splitting or
// filing it when it exceeds the outbound message size limit.
package delivery

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/voxgate/voxgate/internal/state"
)

// ChunkLimit is the maximum length of a single outbound text message.
const ChunkLimit = 4095

// fileCaption is the fixed caption attached to text-file deliveries.
const fileCaption = "Open this file and copy the text inside 👍"

// Sender is the outbound half of the chat platform: it sends one message and
// returns the sent message's identity.
type Sender interface {
	SendText(chatID int64, text string, replyTo int) (int, error)
	SendDocument(chatID int64, filePath, caption string, replyTo int) (int, error)
}

// Deliverer sends transcript text according to the user's delivery
// preference.
type Deliverer struct {
	sender       Sender
	store        state.Store
	downloadsDir string
	logger       *slog.Logger
}

// NewDeliverer builds a Deliverer. Transient text files are written under
// downloadsDir.
func NewDeliverer(log *slog.Logger, sender Sender, store state.Store, downloadsDir string) *Deliverer {
	if log == nil {
		log = slog.Default()
	}
	return &Deliverer{
		sender:       sender,
		store:        store,
		downloadsDir: downloadsDir,
		logger:       log.With(slog.String("component", "delivery")),
	}
}

// Deliver sends text to the chat, reply-chained to replyTo, and returns the
// identity of the message that anchors later summarization actions. Text over
// the chunk limit is split into ordered reply-chained messages (the last
// chunk's identity is the anchor) or sent as one document attachment,
// depending on the user's preference.
func (d *Deliverer) Deliver(chatID int64, text string, replyTo int, userID int64, label string) (int, error) {
	if len(text) <= ChunkLimit {
		return d.sender.SendText(chatID, text, replyTo)
	}

	if d.store.Mode(userID) == state.ModeTextFile {
		return d.deliverAsFile(chatID, text, replyTo, label)
	}

	lastID := 0
	for _, chunk := range SplitText(text, ChunkLimit) {
		id, err := d.sender.SendText(chatID, chunk, replyTo)
		if err != nil {
			return 0, fmt.Errorf("send chunk: %w", err)
		}
		lastID = id
	}
	return lastID, nil
}

// deliverAsFile writes the full text to a transient file and sends it as a
// document. The file is removed whatever the send outcome. Each delivery
// writes into its own directory so overlapping deliveries never share a
// path; the label only names the file the user sees.
func (d *Deliverer) deliverAsFile(chatID int64, text string, replyTo int, label string) (int, error) {
	name := filepath.Base(label)
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "Transcript"
	}
	dir := filepath.Join(d.downloadsDir, uuid.NewString())
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return 0, fmt.Errorf("create transcript dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			d.logger.Warn("remove transcript dir failed", slog.String("path", dir), slog.Any("error", err))
		}
	}()
	path := filepath.Join(dir, name+".txt")
	if err := os.WriteFile(path, []byte(text), 0o600); err != nil {
		return 0, fmt.Errorf("write transcript file: %w", err)
	}
	id, err := d.sender.SendDocument(chatID, path, fileCaption, replyTo)
	if err != nil {
		return 0, fmt.Errorf("send transcript file: %w", err)
	}
	return id, nil
}

// SplitText cuts text into consecutive chunks of at most limit bytes, never
// splitting a UTF-8 rune. Concatenating the chunks reproduces the input
// exactly.
func SplitText(text string, limit int) []string {
	if limit <= 0 || len(text) <= limit {
		return []string{text}
	}
	chunks := make([]string, 0, len(text)/limit+1)
	for len(text) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		if cut == 0 {
			cut = limit
		}
		chunks = append(chunks, text[:cut])
		text = text[cut:]
	}
	return append(chunks, text)
}
