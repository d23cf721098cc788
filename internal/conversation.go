package internal

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Fallback bot texts
const (
	AnswerErrorText = "Sorry, something went wrong while looking for an answer."
	NoAnswerText    = "I could not find an answer."
)

// Answer is the backend's reply to a question
type Answer struct {
	Text          string
	DocumentTitle string
	Confidence    *float64
}

// Asker sends a question about a document to the backend
type Asker interface {
	Ask(ctx context.Context, documentID, question string) (*Answer, error)
}

// Conversation runs the question/answer flow on top of a ChatSessionStore
// and tracks which document is currently active.
type Conversation struct {
	store *ChatSessionStore
	asker Asker

	mu     sync.Mutex
	active string
}

// NewConversation creates a conversation over store and asker
func NewConversation(store *ChatSessionStore, asker Asker) *Conversation {
	return &Conversation{store: store, asker: asker}
}

// Store returns the underlying session store
func (c *Conversation) Store() *ChatSessionStore {
	return c.store
}

// Switch makes documentID the active document and returns its transcript.
// In-flight questions on the previous document are not affected.
func (c *Conversation) Switch(documentID string) (Transcript, error) {
	transcript, err := c.store.OpenSession(documentID)
	if transcript == nil {
		return nil, err
	}

	c.mu.Lock()
	c.active = documentID
	c.mu.Unlock()
	return transcript, err
}

// Active returns the active document, "" if none
func (c *Conversation) Active() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Ask records question on documentID's transcript, asks the backend and
// records the reply on the same transcript, whichever document is active
// by the time the answer arrives. On a backend failure the fallback reply
// is recorded and returned together with the error.
func (c *Conversation) Ask(ctx context.Context, documentID, question string) (ChatMessage, error) {
	if err := validateDocumentID(documentID); err != nil {
		return ChatMessage{}, err
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return ChatMessage{}, &ValidationError{Field: "question", Reason: "must not be empty"}
	}

	if err := c.store.AppendMessage(documentID, ChatMessage{
		Text:       question,
		Sender:     SenderUser,
		DocumentID: documentID,
	}); err != nil {
		return ChatMessage{}, fmt.Errorf("failed to record question: %w", err)
	}

	reply := ChatMessage{Sender: SenderBot, DocumentID: documentID}
	answer, askErr := c.asker.Ask(ctx, documentID, question)
	switch {
	case askErr != nil:
		LogWarn("Question on document %s failed: %v", documentID, askErr)
		reply.Text = AnswerErrorText
	case answer == nil || strings.TrimSpace(answer.Text) == "":
		reply.Text = NoAnswerText
	default:
		reply.Text = answer.Text
	}

	if err := c.store.AppendMessage(documentID, reply); err != nil {
		return reply, fmt.Errorf("failed to record answer: %w", err)
	}
	if transcript := c.store.Transcript(documentID); len(transcript) > 0 {
		reply = transcript[len(transcript)-1]
	}
	return reply, askErr
}
