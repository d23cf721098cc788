package cmd

import (
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/iksnae/docchat/internal"
	"github.com/iksnae/docchat/testutil"
)

func TestSessionsList(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)

	out, err := env.run(t, "sessions", "list")
	if err != nil {
		t.Fatalf("sessions list error = %v", err)
	}
	for _, want := range []string{"Found 2 conversation(s)", "1710495045123", "report.pdf", "What is the budget?"} {
		if !strings.Contains(out, want) {
			t.Errorf("sessions list missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "1710495045123") > strings.Index(out, "1710400000000") {
		t.Errorf("sessions not listed in index order:\n%s", out)
	}
}

func TestSessionsShow_Unknown(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)

	if _, err := env.run(t, "sessions", "show", "doc9"); err == nil {
		t.Fatal("expected an error for a document without a conversation")
	}
}

func TestSessionsDelete(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)

	out, err := env.run(t, "sessions", "delete", "1710400000000")
	if err != nil {
		t.Fatalf("sessions delete error = %v", err)
	}
	if !strings.Contains(out, "Deleted session 1710400000000") {
		t.Errorf("unexpected output:\n%s", out)
	}

	out, err = env.run(t, "sessions", "list")
	if err != nil {
		t.Fatalf("sessions list error = %v", err)
	}
	if strings.Contains(out, "1710400000000") || !strings.Contains(out, "1710495045123") {
		t.Errorf("wrong sessions after delete:\n%s", out)
	}

	_, err = env.run(t, "sessions", "delete", "1710400000000")
	if !errors.Is(err, internal.ErrSessionNotFound) {
		t.Errorf("second delete error = %v, want ErrSessionNotFound", err)
	}
}

func TestSessionsClear(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)

	out, err := env.run(t, "sessions", "clear", "doc1")
	if err != nil {
		t.Fatalf("sessions clear error = %v", err)
	}
	if !strings.Contains(out, internal.ClearedText) {
		t.Errorf("cleared message not shown:\n%s", out)
	}

	out, err = env.run(t, "sessions", "list")
	if err != nil {
		t.Fatalf("sessions list error = %v", err)
	}
	if strings.Contains(out, "1710495045123") {
		t.Errorf("cleared session still listed:\n%s", out)
	}

	out, err = env.run(t, "sessions", "clear", "doc9")
	if err != nil {
		t.Fatalf("clearing an unknown document error = %v", err)
	}
	if !strings.Contains(out, "Nothing to clear") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestSessionsPrune(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)

	db, err := sql.Open("sqlite", env.dsn)
	if err != nil {
		t.Fatalf("failed to open fixture: %v", err)
	}
	testutil.InsertKV(t, db, internal.TranscriptKey("999"), testutil.SampleTranscriptDoc2JSON)
	_ = db.Close()

	out, err := env.run(t, "sessions", "prune")
	if err != nil {
		t.Fatalf("sessions prune error = %v", err)
	}
	if !strings.Contains(out, "Removed 1 orphaned transcript(s)") {
		t.Errorf("unexpected output:\n%s", out)
	}

	out, err = env.run(t, "sessions", "list")
	if err != nil {
		t.Fatalf("sessions list error = %v", err)
	}
	if !strings.Contains(out, "Found 2 conversation(s)") {
		t.Errorf("prune removed indexed sessions:\n%s", out)
	}
}
