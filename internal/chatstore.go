package internal

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Synthesized bot texts
const (
	WelcomeText  = "Hello, I am your AI assistant. How can I help you with your project?"
	ClearedText  = "History cleared. I am your AI assistant. How can I help you with your project?"
	DefaultTitle = "Document"
)

// ChatSessionStore keeps one transcript per document in a KeyValueStore,
// together with the session index (allChatSessions) that maps each
// document to its single live session.
//
// Methods that recover from corrupt persisted data return the recovered
// value together with an error matching ErrCorruptState.
type ChatSessionStore struct {
	mu        sync.Mutex
	kv        KeyValueStore
	now       func() time.Time
	docs      map[string]*docState
	filenames map[string]string
}

// docState is the in-memory transcript of one document
type docState struct {
	sessionID  string // "" until first persist
	transcript Transcript
}

// StoreOption configures a ChatSessionStore or WidgetHistory
type StoreOption func(*storeOptions)

type storeOptions struct {
	now func() time.Time
}

// WithClock overrides the time source
func WithClock(now func() time.Time) StoreOption {
	return func(o *storeOptions) {
		o.now = now
	}
}

func buildStoreOptions(opts []StoreOption) storeOptions {
	o := storeOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewChatSessionStore creates a store over kv
func NewChatSessionStore(kv KeyValueStore, opts ...StoreOption) *ChatSessionStore {
	return &ChatSessionStore{
		kv:        kv,
		now:       buildStoreOptions(opts).now,
		docs:      make(map[string]*docState),
		filenames: make(map[string]string),
	}
}

// OpenSession loads the transcript of documentID, or returns a fresh
// welcome transcript when the document has no session yet.
func (s *ChatSessionStore) OpenSession(documentID string) (Transcript, error) {
	if err := validateDocumentID(documentID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.openLocked(documentID)
	if state == nil {
		return nil, err
	}
	return state.transcript.Clone(), err
}

// AppendMessage appends message to the transcript of documentID and
// persists both the transcript and the updated index entry.
func (s *ChatSessionStore) AppendMessage(documentID string, message ChatMessage) error {
	if err := validateDocumentID(documentID); err != nil {
		return err
	}
	if message.DocumentID != documentID {
		return &ValidationError{
			Field:  "message.documentId",
			Reason: fmt.Sprintf("%q does not match document %q", message.DocumentID, documentID),
		}
	}
	if !message.Sender.Valid() {
		return &ValidationError{Field: "message.sender", Reason: fmt.Sprintf("unknown sender %q", message.Sender)}
	}
	if message.Sender == SenderUser && strings.TrimSpace(message.Text) == "" {
		return &ValidationError{Field: "message.text", Reason: "must not be empty"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.stateLocked(documentID)
	if err != nil {
		return err
	}

	index, err := s.loadIndexLocked()
	if err != nil && !errors.Is(err, ErrCorruptState) {
		return err
	}

	existing, found := findByDocument(index, documentID)
	if found && state.sessionID != existing.ID {
		// the persisted session is not the one in memory; extend what is stored
		transcript, err := s.loadTranscriptLocked(existing.ID, documentID)
		switch {
		case err == nil:
			state = &docState{sessionID: existing.ID, transcript: transcript}
		case errors.Is(err, ErrCorruptState):
			LogWarn("Discarding session %s of document %s: %v", existing.ID, documentID, err)
			if derr := s.discardLocked(index, existing.ID); derr != nil {
				return derr
			}
			index = withoutSession(index, existing.ID)
			found = false
		default:
			return err
		}
	}

	now := s.clock()
	if message.Timestamp.IsZero() {
		message.Timestamp = now
	}
	message.Timestamp = message.Timestamp.Truncate(time.Millisecond).UTC()
	message.ID = nextMessageID(state.transcript, message.ID, now)

	sessionID := state.sessionID
	if found {
		sessionID = existing.ID
	}
	if sessionID == "" {
		if sessionID, err = s.newSessionIDLocked(index, now); err != nil {
			return err
		}
	}

	updated := append(state.transcript.Clone(), message)

	filename := s.filenames[documentID]
	if filename == "" && found {
		filename = existing.Filename
	}
	title := filename
	if title == "" {
		title = updated.FirstUserText()
	}
	if title == "" {
		title = DefaultTitle
	}

	entry := ChatSession{
		ID:           sessionID,
		DocumentID:   documentID,
		FirstMessage: title,
		Timestamp:    now,
		MessageCount: len(updated),
		Filename:     filename,
	}
	newIndex := make([]ChatSession, 0, len(index)+1)
	newIndex = append(newIndex, entry)
	for _, session := range index {
		if session.DocumentID != documentID {
			newIndex = append(newIndex, session)
		}
	}

	transcriptValue, err := encodeJSON(updated)
	if err != nil {
		return fmt.Errorf("failed to encode transcript: %w", err)
	}
	indexValue, err := encodeJSON(newIndex)
	if err != nil {
		return fmt.Errorf("failed to encode index: %w", err)
	}
	if err := setAll(s.kv, []KeyValuePair{
		{Key: TranscriptKey(sessionID), Value: transcriptValue},
		{Key: IndexKey, Value: indexValue},
	}); err != nil {
		return err
	}

	state.transcript = updated
	state.sessionID = sessionID
	s.docs[documentID] = state
	LogDebug("Appended %s message to session %s (document %s, %d messages)", message.Sender, sessionID, documentID, len(updated))
	return nil
}

// ListSessions returns the session index, most recently updated first
func (s *ChatSessionStore) ListSessions() ([]ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadIndexLocked()
}

// ResumeSession loads the transcript addressed by session.ID and binds the
// session's document to it. Nothing is fabricated when the transcript is
// absent or unreadable.
func (s *ChatSessionStore) ResumeSession(session ChatSession) (Transcript, error) {
	if session.ID == "" {
		return nil, &ValidationError{Field: "session.id", Reason: "must not be empty"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	index, err := s.loadIndexLocked()
	if err != nil && !errors.Is(err, ErrCorruptState) {
		return nil, err
	}
	documentID := session.DocumentID
	if documentID == "" {
		for _, entry := range index {
			if entry.ID == session.ID {
				documentID = entry.DocumentID
				break
			}
		}
	}
	if documentID == "" {
		return nil, &ValidationError{Field: "session.documentId", Reason: "unknown session " + session.ID}
	}

	transcript, err := s.loadTranscriptLocked(session.ID, documentID)
	if err != nil {
		if errors.Is(err, ErrCorruptState) {
			LogWarn("Discarding session %s: %v", session.ID, err)
			if derr := s.discardLocked(index, session.ID); derr != nil {
				LogWarn("Failed to discard session %s: %v", session.ID, derr)
			}
		}
		return nil, err
	}

	s.docs[documentID] = &docState{sessionID: session.ID, transcript: transcript}
	if session.Filename != "" && s.filenames[documentID] == "" {
		s.filenames[documentID] = session.Filename
	}
	return transcript.Clone(), nil
}

// DeleteSession removes a session's transcript and index entry. A document
// loaded in memory under that session is reset to an empty, unbound
// transcript; no welcome message is synthesized.
func (s *ChatSessionStore) DeleteSession(sessionID, documentID string) error {
	if sessionID == "" {
		return &ValidationError{Field: "sessionId", Reason: "must not be empty"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	index, err := s.loadIndexLocked()
	if err != nil && !errors.Is(err, ErrCorruptState) {
		return err
	}
	if err := s.discardLocked(index, sessionID); err != nil {
		return err
	}

	s.resetBoundLocked(sessionID)
	LogDebug("Deleted session %s (document %s)", sessionID, documentID)
	return nil
}

// ClearCurrentSession removes the bound session of documentID and returns a
// fresh "history cleared" transcript that stays unbound until the next
// AppendMessage. With an empty sessionID nothing is removed and the current
// transcript is returned unchanged. If documentID is bound to another
// session, sessionID is still removed but documentID keeps its transcript.
func (s *ChatSessionStore) ClearCurrentSession(documentID, sessionID string) (Transcript, error) {
	if err := validateDocumentID(documentID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if sessionID == "" {
		if state, ok := s.docs[documentID]; ok {
			return state.transcript.Clone(), nil
		}
		return nil, nil
	}

	index, err := s.loadIndexLocked()
	if err != nil && !errors.Is(err, ErrCorruptState) {
		return nil, err
	}
	if err := s.discardLocked(index, sessionID); err != nil {
		return nil, err
	}
	state, loaded := s.docs[documentID]
	bound := loaded && state.sessionID != "" && state.sessionID != sessionID
	s.resetBoundLocked(sessionID)
	if bound {
		// documentID continues in its own session
		return state.transcript.Clone(), nil
	}

	fresh := s.freshTranscript(documentID, ClearedText)
	s.docs[documentID] = &docState{transcript: fresh}
	return fresh.Clone(), nil
}

// SetFilename caches the display name used as the title of documentID's session
func (s *ChatSessionStore) SetFilename(documentID, filename string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.filenames[documentID] = filename
}

// SessionID returns the session bound to documentID, or "" when unbound
func (s *ChatSessionStore) SessionID(documentID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if state, ok := s.docs[documentID]; ok {
		return state.sessionID
	}
	return ""
}

// Transcript returns the in-memory transcript of documentID, nil if not loaded
func (s *ChatSessionStore) Transcript(documentID string) Transcript {
	s.mu.Lock()
	defer s.mu.Unlock()

	if state, ok := s.docs[documentID]; ok {
		return state.transcript.Clone()
	}
	return nil
}

// Records returns every indexed session with its transcript. Sessions whose
// transcript cannot be read are skipped.
func (s *ChatSessionStore) Records() ([]SessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index, err := s.loadIndexLocked()
	if err != nil && !errors.Is(err, ErrCorruptState) {
		return nil, err
	}

	records := make([]SessionRecord, 0, len(index))
	for _, entry := range index {
		transcript, err := s.loadTranscriptLocked(entry.ID, entry.DocumentID)
		if err != nil {
			LogWarn("Skipping session %s: %v", entry.ID, err)
			continue
		}
		records = append(records, SessionRecord{Session: entry, Messages: transcript})
	}
	return records, nil
}

// PruneOrphans removes transcripts that no index entry refers to. It needs a
// store implementing KeyLister.
func (s *ChatSessionStore) PruneOrphans() (int, error) {
	lister, ok := s.kv.(KeyLister)
	if !ok {
		return 0, fmt.Errorf("store does not support listing keys")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	index, err := s.loadIndexLocked()
	if err != nil && !errors.Is(err, ErrCorruptState) {
		return 0, err
	}
	live := make(map[string]bool, len(index))
	for _, entry := range index {
		live[TranscriptKey(entry.ID)] = true
	}
	for _, state := range s.docs {
		if state.sessionID != "" {
			live[TranscriptKey(state.sessionID)] = true
		}
	}

	keys, err := lister.Keys(transcriptKeyPrefix)
	if err != nil {
		return 0, &StorageError{Key: transcriptKeyPrefix + "*", Op: "list", Err: err}
	}
	removed := 0
	for _, key := range keys {
		if live[key] {
			continue
		}
		if err := s.kv.Remove(key); err != nil {
			return removed, &StorageError{Key: key, Op: "remove", Err: err}
		}
		removed++
	}
	return removed, nil
}

// stateLocked returns the in-memory state of documentID, opening it if needed
func (s *ChatSessionStore) stateLocked(documentID string) (*docState, error) {
	if state, ok := s.docs[documentID]; ok {
		return state, nil
	}
	state, err := s.openLocked(documentID)
	if state == nil {
		return nil, err
	}
	if err != nil {
		LogWarn("Recovered document %s with a fresh transcript: %v", documentID, err)
	}
	return state, nil
}

func (s *ChatSessionStore) openLocked(documentID string) (*docState, error) {
	index, corrupt := s.loadIndexLocked()
	if corrupt != nil && !errors.Is(corrupt, ErrCorruptState) {
		return nil, corrupt
	}

	if entry, ok := findByDocument(index, documentID); ok {
		transcript, err := s.loadTranscriptLocked(entry.ID, documentID)
		switch {
		case err == nil:
			state := &docState{sessionID: entry.ID, transcript: transcript}
			s.docs[documentID] = state
			if entry.Filename != "" && s.filenames[documentID] == "" {
				s.filenames[documentID] = entry.Filename
			}
			return state, nil
		case errors.Is(err, ErrCorruptState):
			LogWarn("Discarding session %s of document %s: %v", entry.ID, documentID, err)
			if derr := s.discardLocked(index, entry.ID); derr != nil {
				return nil, derr
			}
			corrupt = err
		default:
			return nil, err
		}
	}

	state := &docState{transcript: s.freshTranscript(documentID, WelcomeText)}
	s.docs[documentID] = state
	return state, corrupt
}

// loadIndexLocked reads the session index. A corrupt index is removed and
// reported alongside an empty index.
func (s *ChatSessionStore) loadIndexLocked() ([]ChatSession, error) {
	value, found, err := s.kv.Get(IndexKey)
	if err != nil {
		return nil, &StorageError{Key: IndexKey, Op: "get", Err: err}
	}
	if !found || value == "" {
		return []ChatSession{}, nil
	}

	index, err := ParseSessionIndex(value)
	if err != nil {
		LogWarn("Discarding corrupt session index: %v", err)
		if rerr := s.kv.Remove(IndexKey); rerr != nil {
			return nil, &StorageError{Key: IndexKey, Op: "remove", Err: rerr}
		}
		return []ChatSession{}, err
	}
	return index, nil
}

// loadTranscriptLocked reads a transcript and checks every message belongs to documentID
func (s *ChatSessionStore) loadTranscriptLocked(sessionID, documentID string) (Transcript, error) {
	key := TranscriptKey(sessionID)
	value, found, err := s.kv.Get(key)
	if err != nil {
		return nil, &StorageError{Key: key, Op: "get", Err: err}
	}
	if !found {
		return nil, &ParseError{Source: "transcript", Key: key, Err: ErrSessionNotFound}
	}

	transcript, err := ParseTranscript(key, value)
	if err != nil {
		return nil, err
	}
	for i := range transcript {
		switch transcript[i].DocumentID {
		case documentID:
		case "":
			transcript[i].DocumentID = documentID
		default:
			return nil, &ParseError{
				Source: "transcript",
				Key:    key,
				Err:    fmt.Errorf("message %d belongs to document %q, not %q", transcript[i].ID, transcript[i].DocumentID, documentID),
			}
		}
	}
	if transcript == nil {
		transcript = Transcript{}
	}
	return transcript, nil
}

// discardLocked removes a session's transcript and its index entry
func (s *ChatSessionStore) discardLocked(index []ChatSession, sessionID string) error {
	key := TranscriptKey(sessionID)
	if err := s.kv.Remove(key); err != nil {
		return &StorageError{Key: key, Op: "remove", Err: err}
	}

	kept := withoutSession(index, sessionID)
	if len(kept) == len(index) {
		return nil
	}
	value, err := encodeJSON(kept)
	if err != nil {
		return fmt.Errorf("failed to encode index: %w", err)
	}
	if err := s.kv.Set(IndexKey, value); err != nil {
		return &StorageError{Key: IndexKey, Op: "set", Err: err}
	}
	return nil
}

// resetBoundLocked empties the in-memory state of documents bound to sessionID
func (s *ChatSessionStore) resetBoundLocked(sessionID string) {
	for docID, state := range s.docs {
		if state.sessionID == sessionID {
			s.docs[docID] = &docState{}
		}
	}
}

func withoutSession(index []ChatSession, sessionID string) []ChatSession {
	kept := make([]ChatSession, 0, len(index))
	for _, entry := range index {
		if entry.ID != sessionID {
			kept = append(kept, entry)
		}
	}
	return kept
}

// newSessionIDLocked derives an id from now that no index entry or stored
// transcript uses yet
func (s *ChatSessionStore) newSessionIDLocked(index []ChatSession, now time.Time) (string, error) {
	taken := make(map[string]bool, len(index))
	for _, entry := range index {
		taken[entry.ID] = true
	}
	for _, state := range s.docs {
		if state.sessionID != "" {
			taken[state.sessionID] = true
		}
	}

	candidate := now.UnixMilli()
	for {
		id := strconv.FormatInt(candidate, 10)
		if !taken[id] {
			_, found, err := s.kv.Get(TranscriptKey(id))
			if err != nil {
				return "", &StorageError{Key: TranscriptKey(id), Op: "get", Err: err}
			}
			if !found {
				return id, nil
			}
		}
		candidate++
	}
}

func (s *ChatSessionStore) freshTranscript(documentID, text string) Transcript {
	now := s.clock()
	return Transcript{{
		ID:         now.UnixMilli(),
		Text:       text,
		Sender:     SenderBot,
		Timestamp:  now,
		DocumentID: documentID,
	}}
}

// clock returns the current instant at the precision it is persisted with
func (s *ChatSessionStore) clock() time.Time {
	return s.now().Truncate(time.Millisecond).UTC()
}

// nextMessageID keeps ids strictly increasing within a transcript
func nextMessageID(transcript Transcript, requested int64, now time.Time) int64 {
	id := requested
	if id == 0 {
		id = now.UnixMilli()
	}
	if n := len(transcript); n > 0 && id <= transcript[n-1].ID {
		id = transcript[n-1].ID + 1
	}
	return id
}

func findByDocument(index []ChatSession, documentID string) (ChatSession, bool) {
	for _, entry := range index {
		if entry.DocumentID == documentID {
			return entry, true
		}
	}
	return ChatSession{}, false
}

func validateDocumentID(documentID string) error {
	if strings.TrimSpace(documentID) == "" {
		return &ValidationError{Field: "documentId", Reason: "must not be empty"}
	}
	return nil
}
