package internal

import (
	"fmt"
	"sync"
	"time"
)

// WidgetWelcomeText opens an empty widget log
const WidgetWelcomeText = "Hello, I am your AI assistant. Select a document to start chatting."

// WidgetHistory is the single cross-document message log kept under
// chatHistory by the document list widget.
type WidgetHistory struct {
	mu  sync.Mutex
	kv  KeyValueStore
	now func() time.Time
}

// NewWidgetHistory creates a widget log over kv
func NewWidgetHistory(kv KeyValueStore, opts ...StoreOption) *WidgetHistory {
	return &WidgetHistory{kv: kv, now: buildStoreOptions(opts).now}
}

// Load returns the stored log, or a single welcome message when there is none.
// A corrupt log is removed and reported with ErrCorruptState.
func (h *WidgetHistory) Load() (Transcript, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.loadLocked()
}

// Append adds message to the log
func (h *WidgetHistory) Append(message ChatMessage) error {
	if !message.Sender.Valid() {
		return &ValidationError{Field: "message.sender", Reason: fmt.Sprintf("unknown sender %q", message.Sender)}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	log, err := h.loadLocked()
	if log == nil {
		return err
	}
	now := h.clock()
	if message.Timestamp.IsZero() {
		message.Timestamp = now
	}
	message.Timestamp = message.Timestamp.Truncate(time.Millisecond).UTC()
	message.ID = nextMessageID(log, message.ID, now)
	log = append(log, message)

	value, err := encodeJSON(log)
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}
	if err := h.kv.Set(HistoryKey, value); err != nil {
		return &StorageError{Key: HistoryKey, Op: "set", Err: err}
	}
	return nil
}

// SelectDocument records that name was picked in the widget
func (h *WidgetHistory) SelectDocument(documentID, name string) error {
	if err := validateDocumentID(documentID); err != nil {
		return err
	}
	if name == "" {
		name = documentID
	}
	return h.Append(ChatMessage{
		Text:       "Document selected: " + name,
		Sender:     SenderBot,
		DocumentID: documentID,
	})
}

// Clear removes the stored log and returns the "history cleared" message
// the widget shows in its place
func (h *WidgetHistory) Clear() (Transcript, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.kv.Remove(HistoryKey); err != nil {
		return nil, &StorageError{Key: HistoryKey, Op: "remove", Err: err}
	}
	return h.fresh(ClearedText), nil
}

func (h *WidgetHistory) loadLocked() (Transcript, error) {
	value, found, err := h.kv.Get(HistoryKey)
	if err != nil {
		return nil, &StorageError{Key: HistoryKey, Op: "get", Err: err}
	}
	if !found || value == "" {
		return h.fresh(WidgetWelcomeText), nil
	}

	log, err := ParseTranscript(HistoryKey, value)
	if err != nil {
		LogWarn("Discarding corrupt widget history: %v", err)
		if rerr := h.kv.Remove(HistoryKey); rerr != nil {
			return nil, &StorageError{Key: HistoryKey, Op: "remove", Err: rerr}
		}
		return h.fresh(WidgetWelcomeText), err
	}
	if len(log) == 0 {
		return h.fresh(WidgetWelcomeText), nil
	}
	return log, nil
}

func (h *WidgetHistory) fresh(text string) Transcript {
	now := h.clock()
	return Transcript{{ID: now.UnixMilli(), Text: text, Sender: SenderBot, Timestamp: now}}
}

func (h *WidgetHistory) clock() time.Time {
	return h.now().Truncate(time.Millisecond).UTC()
}
