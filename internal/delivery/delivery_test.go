package delivery

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxgate/voxgate/internal/state"
)

type sentMessage struct {
	chatID  int64
	text    string
	replyTo int
}

type fakeSender struct {
	mu          sync.Mutex
	nextID      int
	messages    []sentMessage
	documents   []string
	captions    []string
	docExists   []bool
	docContents []string
	sendErr     error
	docErr      error
}

func (f *fakeSender) SendText(chatID int64, text string, replyTo int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return 0, f.sendErr
	}
	f.nextID++
	f.messages = append(f.messages, sentMessage{chatID: chatID, text: text, replyTo: replyTo})
	return f.nextID, nil
}

func (f *fakeSender) SendDocument(_ int64, filePath, caption string, _ int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.documents = append(f.documents, filePath)
	f.captions = append(f.captions, caption)
	_, statErr := os.Stat(filePath)
	f.docExists = append(f.docExists, statErr == nil)
	content, _ := os.ReadFile(filePath)
	f.docContents = append(f.docContents, string(content))
	if f.docErr != nil {
		return 0, f.docErr
	}
	f.nextID++
	return f.nextID, nil
}

func TestDeliverShortTextSingleMessage(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	deliverer := NewDeliverer(nil, sender, state.NewMemoryStore(), t.TempDir())

	id, err := deliverer.Deliver(5, "hello", 99, 1, "Transcript")
	require.NoError(t, err)
	assert.Equal(t, 1, id)
	require.Len(t, sender.messages, 1)
	assert.Equal(t, sentMessage{chatID: 5, text: "hello", replyTo: 99}, sender.messages[0])
}

func TestDeliverSplitMode(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	deliverer := NewDeliverer(nil, sender, state.NewMemoryStore(), t.TempDir())

	text := strings.Repeat("a", ChunkLimit*2+100)
	id, err := deliverer.Deliver(5, text, 99, 1, "Transcript")
	require.NoError(t, err)
	require.Len(t, sender.messages, 3)

	var rebuilt strings.Builder
	for _, msg := range sender.messages {
		assert.LessOrEqual(t, len(msg.text), ChunkLimit)
		assert.Equal(t, 99, msg.replyTo, "every chunk replies to the origin")
		rebuilt.WriteString(msg.text)
	}
	assert.Equal(t, text, rebuilt.String())
	assert.Equal(t, sender.nextID, id, "anchor is the last sent chunk")
}

func TestDeliverFileMode(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	sender := &fakeSender{}
	store := state.NewMemoryStore()
	store.SetMode(7, state.ModeTextFile)
	deliverer := NewDeliverer(nil, sender, store, dir)

	text := strings.Repeat("b", ChunkLimit+1)
	id, err := deliverer.Deliver(5, text, 99, 7, "Summarize (Short)")
	require.NoError(t, err)
	assert.Equal(t, 1, id)
	assert.Empty(t, sender.messages)
	require.Len(t, sender.documents, 1)
	assert.True(t, sender.docExists[0], "file must exist while sending")
	assert.Contains(t, sender.documents[0], "Summarize (Short).txt")
	assert.Equal(t, fileCaption, sender.captions[0])

	_, statErr := os.Stat(sender.documents[0])
	assert.True(t, os.IsNotExist(statErr), "transient file removed after send")
}

func TestDeliverFileModeRemovesFileOnSendFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	sender := &fakeSender{docErr: fmt.Errorf("network down")}
	store := state.NewMemoryStore()
	store.SetMode(7, state.ModeTextFile)
	deliverer := NewDeliverer(nil, sender, store, dir)

	_, err := deliverer.Deliver(5, strings.Repeat("c", ChunkLimit+1), 99, 7, "")
	require.Error(t, err)
	require.Len(t, sender.documents, 1)
	_, statErr := os.Stat(sender.documents[0])
	assert.True(t, os.IsNotExist(statErr), "transient file removed on failure too")
}

func TestDeliverFileModeConcurrentSameLabel(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	sender := &fakeSender{}
	store := state.NewMemoryStore()
	store.SetMode(7, state.ModeTextFile)
	store.SetMode(8, state.ModeTextFile)
	deliverer := NewDeliverer(nil, sender, store, dir)

	textA := strings.Repeat("a", ChunkLimit+1)
	textB := strings.Repeat("b", ChunkLimit+1)

	var wg sync.WaitGroup
	for _, job := range []struct {
		userID int64
		text   string
	}{{7, textA}, {8, textB}} {
		wg.Add(1)
		go func(userID int64, text string) {
			defer wg.Done()
			_, err := deliverer.Deliver(5, text, 99, userID, "Transcript")
			assert.NoError(t, err)
		}(job.userID, job.text)
	}
	wg.Wait()

	require.Len(t, sender.documents, 2)
	assert.NotEqual(t, sender.documents[0], sender.documents[1], "overlapping deliveries must not share a path")
	assert.ElementsMatch(t, []string{textA, textB}, sender.docContents, "each document carries its own full text")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "transient directories removed after both sends")
}

func TestDeliverFileModeLabelCannotEscapeDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	sender := &fakeSender{}
	store := state.NewMemoryStore()
	store.SetMode(7, state.ModeTextFile)
	deliverer := NewDeliverer(nil, sender, store, dir)

	_, err := deliverer.Deliver(5, strings.Repeat("e", ChunkLimit+1), 99, 7, "Summarize (../../../escaped)")
	require.NoError(t, err)
	require.Len(t, sender.documents, 1)

	sent := sender.documents[0]
	rel, err := filepath.Rel(dir, sent)
	require.NoError(t, err)
	assert.False(t, strings.HasPrefix(rel, ".."), "file %q written outside the downloads dir", sent)
	assert.Equal(t, "escaped).txt", filepath.Base(sent))

	_, statErr := os.Stat(filepath.Join(filepath.Dir(dir), "escaped).txt"))
	assert.True(t, os.IsNotExist(statErr), "nothing may be written beside the downloads dir")
}

func TestDeliverSplitModeAbortsOnSendFailure(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{sendErr: fmt.Errorf("blocked")}
	deliverer := NewDeliverer(nil, sender, state.NewMemoryStore(), t.TempDir())

	_, err := deliverer.Deliver(5, strings.Repeat("d", ChunkLimit*2), 99, 1, "")
	assert.Error(t, err)
}

func TestSplitTextChunkCounts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		length int
		want   int
	}{
		{length: 1, want: 1},
		{length: ChunkLimit, want: 1},
		{length: ChunkLimit + 1, want: 2},
		{length: ChunkLimit * 3, want: 3},
		{length: ChunkLimit*3 + 1, want: 4},
	}
	for _, tt := range tests {
		text := strings.Repeat("x", tt.length)
		chunks := SplitText(text, ChunkLimit)
		assert.Len(t, chunks, tt.want, "length %d", tt.length)
		assert.Equal(t, text, strings.Join(chunks, ""))
	}
}

func TestSplitTextPreservesRunes(t *testing.T) {
	t.Parallel()

	// Multi-byte runes must not be cut at chunk boundaries.
	text := strings.Repeat("héllo wörld ", 600)
	chunks := SplitText(text, ChunkLimit)
	for i, chunk := range chunks {
		assert.True(t, utf8.ValidString(chunk), "chunk %d splits a rune", i)
		assert.LessOrEqual(t, len(chunk), ChunkLimit)
	}
	assert.Equal(t, text, strings.Join(chunks, ""))
}
