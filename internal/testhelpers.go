package internal

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// FakeKV is a map-backed KeyValueStore for tests. Setting FailWrites makes
// every Set, SetMany and Remove fail with that error.
type FakeKV struct {
	mu         sync.Mutex
	data       map[string]string
	FailWrites error
	Writes     int
}

// NewFakeKV creates a FakeKV seeded with initial
func NewFakeKV(initial map[string]string) *FakeKV {
	data := make(map[string]string, len(initial))
	for k, v := range initial {
		data[k] = v
	}
	return &FakeKV{data: data}
}

func (f *FakeKV) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *FakeKV) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWrites != nil {
		return f.FailWrites
	}
	f.Writes++
	f.data[key] = value
	return nil
}

func (f *FakeKV) SetMany(pairs []KeyValuePair) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWrites != nil {
		return f.FailWrites
	}
	for _, p := range pairs {
		f.Writes++
		f.data[p.Key] = p.Value
	}
	return nil
}

func (f *FakeKV) Remove(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWrites != nil {
		return f.FailWrites
	}
	f.Writes++
	delete(f.data, key)
	return nil
}

func (f *FakeKV) Keys(prefix string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for k := range f.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Raw returns the stored value of key, "" if absent
func (f *FakeKV) Raw(key string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.data[key]
}

// Has reports whether key is stored
func (f *FakeKV) Has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.data[key]
	return ok
}

// TestClock returns a clock that advances by step on every call, starting at start
func TestClock(start time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	current := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := current
		current = current.Add(step)
		return now
	}
}

// CreateTestMessage creates a message for documentID
func CreateTestMessage(documentID string, sender Sender, text string) ChatMessage {
	return ChatMessage{
		Text:       text,
		Sender:     sender,
		DocumentID: documentID,
	}
}

// CreateTestRecord builds a session record whose messages alternate
// user/bot starting with the user, timestamped one second apart
func CreateTestRecord(sessionID, documentID string, texts ...string) *SessionRecord {
	start := time.Date(2024, 3, 15, 9, 30, 45, 0, time.UTC)
	messages := make(Transcript, 0, len(texts))
	for i, text := range texts {
		sender := SenderUser
		if i%2 == 1 {
			sender = SenderBot
		}
		ts := start.Add(time.Duration(i) * time.Second)
		messages = append(messages, ChatMessage{
			ID:         ts.UnixMilli(),
			Text:       text,
			Sender:     sender,
			Timestamp:  ts,
			DocumentID: documentID,
		})
	}

	title := DefaultTitle
	if first := messages.FirstUserText(); first != "" {
		title = first
	}
	return &SessionRecord{
		Session: ChatSession{
			ID:           sessionID,
			DocumentID:   documentID,
			FirstMessage: title,
			Timestamp:    start.Add(time.Duration(len(texts)) * time.Second),
			MessageCount: len(messages),
		},
		Messages: messages,
	}
}
