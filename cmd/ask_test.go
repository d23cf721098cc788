package cmd

import (
	"strings"
	"testing"

	"github.com/iksnae/docchat/internal"
)

func TestAskCommand(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "ask", "doc1", "What", "is", "X?")
	if err != nil {
		t.Fatalf("ask error = %v", err)
	}
	if !strings.Contains(out, "Answer to: What is X?") {
		t.Errorf("answer not printed:\n%s", out)
	}

	out, err = env.run(t, "sessions", "list")
	if err != nil {
		t.Fatalf("sessions list error = %v", err)
	}
	for _, want := range []string{"Found 1 conversation(s)", "doc1", "report.pdf"} {
		if !strings.Contains(out, want) {
			t.Errorf("sessions list missing %q:\n%s", want, out)
		}
	}

	out, err = env.run(t, "sessions", "show", "doc1")
	if err != nil {
		t.Fatalf("sessions show error = %v", err)
	}
	for _, want := range []string{internal.WelcomeText, "What is X?", "Answer to: What is X?"} {
		if !strings.Contains(out, want) {
			t.Errorf("transcript missing %q:\n%s", want, out)
		}
	}
}

func TestAskCommand_BackendUnreachable(t *testing.T) {
	env := newTestEnv(t)
	env.stopBackend()

	out, err := env.run(t, "ask", "doc1", "What is X?")
	if err != nil {
		t.Fatalf("ask should recover from a network failure, got %v", err)
	}
	if !strings.Contains(out, internal.AnswerErrorText) {
		t.Errorf("fallback answer not printed:\n%s", out)
	}
}

func TestAskCommand_RequiresQuestion(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.run(t, "ask", "doc1"); err == nil {
		t.Fatal("expected an error without a question")
	}
}
