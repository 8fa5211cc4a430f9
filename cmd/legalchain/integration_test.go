package main

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/csheth/legalchain/internal/tuitest"
)

func TestLegalchainFormRendersAndValidates(t *testing.T) {
	t.Parallel()

	cmdDir := moduleDir(t)
	binary := buildBinary(t, cmdDir)
	work := t.TempDir()
	configPath := filepath.Join(work, "config.toml")
	if err := os.WriteFile(configPath, nil, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	rec, err := tuitest.Run(context.Background(), tuitest.Config{
		Command: []string{binary, "--no-alt-screen", "--config", configPath, "--out", work},
		Dir:     work,
		Env:     []string{"LEGALCHAIN_LOG_FILE=" + filepath.Join(work, "legalchain.log")},
		Width:   100,
		Height:  40,
		Steps: []tuitest.Step{
			tuitest.Wait(time.Second),
			tuitest.Type("Google"),
			tuitest.Press(tuitest.KeyCtrlS, 200*time.Millisecond),
			tuitest.Wait(500 * time.Millisecond),
			tuitest.Press(tuitest.KeyCtrlC, 0),
		},
		Timeout:        8 * time.Second,
		AllowInterrupt: true,
	})
	if err != nil {
		t.Fatalf("run CLI: %v", err)
	}

	if _, ok := rec.FirstFrameContaining("NDA Generator", "Party One Name", "Generate NDA"); !ok {
		t.Fatalf("form never rendered; raw output:\n%s", rec.Raw)
	}
	frame, ok := rec.FinalFrame()
	if !ok {
		t.Fatal("no frames captured")
	}
	if !frame.Contains("Party Two Name is required") {
		t.Fatalf("validation message missing from final frame:\n%s", frame.Plain)
	}
	if strings.Contains(frame.Plain, "Generating") {
		t.Fatalf("invalid form should not start a request:\n%s", frame.Plain)
	}
	if _, err := os.Stat(filepath.Join(work, "nda.txt")); !os.IsNotExist(err) {
		t.Fatalf("no export expected, stat err=%v", err)
	}
}

func moduleDir(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime caller unavailable")
	}
	return filepath.Dir(file)
}

func buildBinary(t *testing.T, cmdDir string) string {
	t.Helper()
	tmp := t.TempDir()
	name := "legalchain-integration"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	binPath := filepath.Join(tmp, name)
	cmd := exec.Command("go", "build", "-o", binPath, ".")
	cmd.Dir = cmdDir
	if output, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("build CLI: %v\n%s", err, output)
	}
	return binPath
}
