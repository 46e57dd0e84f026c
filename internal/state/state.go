// Package state holds per-conversation ephemeral state: delivery-mode
// preferences, selected transcription languages, and delivered transcripts
// kept for later summarization.
package state

import "sync"

// DeliveryMode selects how transcripts longer than one message are returned.
type DeliveryMode string

const (
	// ModeSplitMessages sends long transcripts as consecutive reply-chained
	// messages. This is the default for users who never picked a mode.
	ModeSplitMessages DeliveryMode = "Split messages"
	// ModeTextFile sends long transcripts as a single text-file attachment.
	ModeTextFile DeliveryMode = "Text File"
)

// ParseDeliveryMode maps a mode label to a DeliveryMode, falling back to
// ModeSplitMessages for anything unrecognized.
func ParseDeliveryMode(label string) DeliveryMode {
	if label == string(ModeTextFile) {
		return ModeTextFile
	}
	return ModeSplitMessages
}

// TranscriptRecord associates a delivered transcript message with its source
// text and the media message it originated from.
type TranscriptRecord struct {
	Text            string
	OriginMessageID int
}

// Store is the per-conversation state surface. Implementations must be safe
// for concurrent use across simultaneously handled conversations.
type Store interface {
	Mode(userID int64) DeliveryMode
	SetMode(userID int64, mode DeliveryMode)
	Language(chatID int64) string
	SetLanguage(chatID int64, code string)
	PutTranscript(chatID int64, messageID int, rec TranscriptRecord)
	Transcript(chatID int64, messageID int) (TranscriptRecord, bool)
}

type transcriptKey struct {
	chatID    int64
	messageID int
}

// MemoryStore is the in-process Store. Transcript records are kept for the
// life of the process with no eviction; a restart drops everything.
type MemoryStore struct {
	mu          sync.RWMutex
	modes       map[int64]DeliveryMode
	languages   map[int64]string
	transcripts map[transcriptKey]TranscriptRecord
}

// NewMemoryStore builds an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		modes:       make(map[int64]DeliveryMode),
		languages:   make(map[int64]string),
		transcripts: make(map[transcriptKey]TranscriptRecord),
	}
}

// Mode returns the user's delivery preference, ModeSplitMessages when unset.
func (s *MemoryStore) Mode(userID int64) DeliveryMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if mode, ok := s.modes[userID]; ok {
		return mode
	}
	return ModeSplitMessages
}

// SetMode records the user's delivery preference.
func (s *MemoryStore) SetMode(userID int64, mode DeliveryMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modes[userID] = mode
}

// Language returns the chat's selected source language, "" for auto-detect.
func (s *MemoryStore) Language(chatID int64) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.languages[chatID]
}

// SetLanguage records the chat's selected source language. An empty code
// means auto-detect.
func (s *MemoryStore) SetLanguage(chatID int64, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.languages[chatID] = code
}

// PutTranscript records a delivered transcript keyed by the message that
// carried it to the user.
func (s *MemoryStore) PutTranscript(chatID int64, messageID int, rec TranscriptRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcripts[transcriptKey{chatID: chatID, messageID: messageID}] = rec
}

// Transcript looks up a delivered transcript by chat and message identity.
func (s *MemoryStore) Transcript(chatID int64, messageID int) (TranscriptRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.transcripts[transcriptKey{chatID: chatID, messageID: messageID}]
	return rec, ok
}
