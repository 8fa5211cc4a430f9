// Package tuitest drives the legalchain binary inside a pseudo terminal and
// records what it draws.
package tuitest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/creack/pty"
)

const (
	defaultCols    = 120
	defaultRows    = 32
	defaultTimeout = 5 * time.Second
)

// Key sequences as a raw-mode terminal delivers them.
var (
	KeyCtrlC = []byte{3}
	KeyCtrlS = []byte{19}
)

// Step is one scripted write to the terminal, made after Delay.
type Step struct {
	Delay time.Duration
	Input []byte
}

func Type(text string) Step { return Step{Input: []byte(text)} }

func Press(key []byte, delay time.Duration) Step { return Step{Delay: delay, Input: key} }

func Wait(d time.Duration) Step { return Step{Delay: d} }

// Config describes the program under test and the script fed to it.
type Config struct {
	Command []string
	Dir     string
	Env     []string
	Width   int
	Height  int
	Steps   []Step
	Timeout time.Duration
	// AllowInterrupt accepts an exit caused by SIGINT, which is how a
	// bubbletea program ends after Ctrl+C.
	AllowInterrupt bool
}

// Recording is the raw terminal stream and the frames parsed from it.
type Recording struct {
	Raw    []byte
	Frames []Frame
}

// session owns one running program and everything it has written so far.
type session struct {
	cmd     *exec.Cmd
	ptmx    *os.File
	output  bytes.Buffer
	drained chan struct{}
}

// Run starts cfg.Command in a PTY, replays the script and returns what the
// program drew once it has exited.
func Run(ctx context.Context, cfg Config) (*Recording, error) {
	if len(cfg.Command) == 0 {
		return nil, errors.New("tuitest: command is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, orDefault(cfg.Timeout, defaultTimeout))
	defer cancel()

	s, err := start(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer func() { _ = s.ptmx.Close() }()

	if err := s.replay(ctx, cfg.Steps); err != nil {
		return nil, err
	}
	if err := s.wait(ctx, cfg.AllowInterrupt); err != nil {
		return nil, err
	}

	// Closing the PTY ends the reader once it has drained.
	_ = s.ptmx.Close()
	<-s.drained
	raw := s.output.Bytes()
	return &Recording{Raw: raw, Frames: parseFrames(raw)}, nil
}

func start(ctx context.Context, cfg Config) (*session, error) {
	cmd := exec.CommandContext(ctx, cfg.Command[0], cfg.Command[1:]...)
	cmd.Dir = cfg.Dir
	cmd.Env = terminalEnv(cfg.Env)

	size := &pty.Winsize{
		Rows: uint16(orDefault(cfg.Height, defaultRows)),
		Cols: uint16(orDefault(cfg.Width, defaultCols)),
	}
	ptmx, err := pty.StartWithSize(cmd, size)
	if err != nil {
		return nil, fmt.Errorf("tuitest: start program: %w", err)
	}
	s := &session{cmd: cmd, ptmx: ptmx, drained: make(chan struct{})}
	go s.capture()
	return s, nil
}

// capture copies program output into the buffer, answering terminal probes
// along the way.
func (s *session) capture() {
	defer close(s.drained)
	responder := newTerminalResponder(s.ptmx)
	buf := make([]byte, 4096)
	for {
		n, err := s.ptmx.Read(buf)
		if n > 0 {
			responder.Process(buf[:n])
			s.output.Write(buf[:n])
		}
		if err != nil {
			return
		}
	}
}

func (s *session) replay(ctx context.Context, steps []Step) error {
	for i, step := range steps {
		if step.Delay > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("tuitest: step %d: %w", i, ctx.Err())
			case <-time.After(step.Delay):
			}
		}
		if len(step.Input) == 0 {
			continue
		}
		if _, err := s.ptmx.Write(step.Input); err != nil {
			return fmt.Errorf("tuitest: step %d: write input: %w", i, err)
		}
	}
	return nil
}

func (s *session) wait(ctx context.Context, allowInterrupt bool) error {
	exited := make(chan error, 1)
	go func() { exited <- s.cmd.Wait() }()

	select {
	case err := <-exited:
		if err == nil || (allowInterrupt && strings.Contains(err.Error(), "signal: interrupt")) {
			return nil
		}
		return fmt.Errorf("tuitest: program exited with error: %w", err)
	case <-ctx.Done():
		return fmt.Errorf("tuitest: program did not exit: %w", ctx.Err())
	}
}

func terminalEnv(extra []string) []string {
	env := append(os.Environ(), extra...)
	for _, entry := range env {
		if strings.HasPrefix(entry, "TERM=") {
			return env
		}
	}
	return append(env, "TERM=xterm-256color")
}

func orDefault[T int | time.Duration](v, fallback T) T {
	if v <= 0 {
		return fallback
	}
	return v
}
