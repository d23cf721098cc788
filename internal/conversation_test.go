package internal

import (
	"context"
	"errors"
	"testing"
)

type fakeAsker struct {
	answer  *Answer
	err     error
	calls   int
	started chan struct{}
	release chan struct{}
}

func (f *fakeAsker) Ask(ctx context.Context, documentID, question string) (*Answer, error) {
	f.calls++
	if f.started != nil {
		close(f.started)
	}
	if f.release != nil {
		<-f.release
	}
	return f.answer, f.err
}

func TestConversation_Ask(t *testing.T) {
	tests := []struct {
		name      string
		answer    *Answer
		askErr    error
		wantText  string
		wantError bool
	}{
		{
			name:     "answer recorded",
			answer:   &Answer{Text: "X is a variable.", DocumentTitle: "report.pdf"},
			wantText: "X is a variable.",
		},
		{
			name:     "empty answer",
			answer:   &Answer{Text: "  "},
			wantText: NoAnswerText,
		},
		{
			name:      "network failure",
			askErr:    &NetworkError{Op: "ask", URL: "http://localhost:8000/ask/", Err: errors.New("connection refused")},
			wantText:  AnswerErrorText,
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(NewFakeKV(nil))
			conv := NewConversation(store, &fakeAsker{answer: tt.answer, err: tt.askErr})
			if _, err := conv.Switch("doc1"); err != nil {
				t.Fatalf("Switch() error = %v", err)
			}

			reply, err := conv.Ask(context.Background(), "doc1", "What is X?")
			if tt.wantError {
				if !errors.Is(err, ErrNetworkFailure) {
					t.Errorf("Ask() error = %v, want ErrNetworkFailure", err)
				}
			} else if err != nil {
				t.Fatalf("Ask() error = %v", err)
			}
			if reply.Text != tt.wantText || reply.Sender != SenderBot {
				t.Errorf("reply = %+v, want bot %q", reply, tt.wantText)
			}

			transcript := store.Transcript("doc1")
			if len(transcript) != 3 {
				t.Fatalf("expected welcome, question and reply, got %d messages", len(transcript))
			}
			if transcript[1].Text != "What is X?" || transcript[2].Text != tt.wantText {
				t.Errorf("unexpected transcript: %+v", transcript)
			}
		})
	}
}

func TestConversation_AskValidation(t *testing.T) {
	tests := []struct {
		name       string
		documentID string
		question   string
	}{
		{name: "no document", documentID: "", question: "What is X?"},
		{name: "blank question", documentID: "doc1", question: " \n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := NewFakeKV(nil)
			asker := &fakeAsker{answer: &Answer{Text: "unused"}}
			conv := NewConversation(newTestStore(kv), asker)

			_, err := conv.Ask(context.Background(), tt.documentID, tt.question)
			if !errors.Is(err, ErrValidation) {
				t.Errorf("Ask() error = %v, want ErrValidation", err)
			}
			if asker.calls != 0 || kv.Writes != 0 {
				t.Errorf("invalid question reached the backend or store: %d calls, %d writes", asker.calls, kv.Writes)
			}
		})
	}
}

func TestConversation_AnswerFollowsOriginatingDocument(t *testing.T) {
	kv := NewFakeKV(nil)
	store := newTestStore(kv)
	asker := &fakeAsker{
		answer:  &Answer{Text: "Answer about A"},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	conv := NewConversation(store, asker)
	if _, err := conv.Switch("docA"); err != nil {
		t.Fatalf("Switch(docA) error = %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := conv.Ask(context.Background(), "docA", "Question on A")
		done <- err
	}()

	<-asker.started
	if _, err := conv.Switch("docB"); err != nil {
		t.Fatalf("Switch(docB) error = %v", err)
	}
	close(asker.release)
	if err := <-done; err != nil {
		t.Fatalf("Ask() error = %v", err)
	}

	if conv.Active() != "docB" {
		t.Errorf("Active() = %q, want docB", conv.Active())
	}

	reloaded := newTestStore(kv)
	a, err := reloaded.OpenSession("docA")
	if err != nil {
		t.Fatalf("OpenSession(docA) error = %v", err)
	}
	if last := a[len(a)-1]; last.Text != "Answer about A" || last.DocumentID != "docA" {
		t.Errorf("docA last message = %+v, want the answer", last)
	}
	b, err := reloaded.OpenSession("docB")
	if err != nil {
		t.Fatalf("OpenSession(docB) error = %v", err)
	}
	for _, msg := range b {
		if msg.Text == "Answer about A" {
			t.Error("answer leaked into docB's transcript")
		}
	}
}

func TestConversation_QuestionNotRecordedWhenStoreFails(t *testing.T) {
	kv := NewFakeKV(nil)
	kv.FailWrites = errors.New("read-only")
	asker := &fakeAsker{answer: &Answer{Text: "unused"}}
	conv := NewConversation(newTestStore(kv), asker)

	if _, err := conv.Ask(context.Background(), "doc1", "What is X?"); err == nil {
		t.Fatal("expected an error when the question cannot be stored")
	}
	if asker.calls != 0 {
		t.Errorf("backend should not be asked, got %d calls", asker.calls)
	}
}
