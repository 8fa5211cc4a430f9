package tuitest

import (
	"bytes"
	"context"
	"testing"
	"time"
)

func TestRunRequiresCommand(t *testing.T) {
	if _, err := Run(context.Background(), Config{}); err == nil {
		t.Fatal("expected an error without a command")
	}
}

func TestTerminalEnvKeepsExplicitTerm(t *testing.T) {
	env := terminalEnv([]string{"TERM=dumb"})
	if last := env[len(env)-1]; last != "TERM=dumb" {
		t.Fatalf("TERM should not be appended when already set, last entry %q", last)
	}
}

func TestOrDefault(t *testing.T) {
	if got := orDefault(0, defaultCols); got != defaultCols {
		t.Fatalf("expected %d, got %d", defaultCols, got)
	}
	if got := orDefault(3*time.Second, defaultTimeout); got != 3*time.Second {
		t.Fatalf("expected 3s, got %s", got)
	}
}

func TestResponderAnswersProbesInOrder(t *testing.T) {
	var replies bytes.Buffer
	tr := newTerminalResponder(&replies)
	tr.Process([]byte("draw\x1b]11;?\x07more\x1b["))
	tr.Process([]byte("6nrest"))
	want := "\x1b]11;rgb:0000/0000/0000\x07\x1b[1;1R"
	if replies.String() != want {
		t.Fatalf("expected %q, got %q", want, replies.String())
	}
}
