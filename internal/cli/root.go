// Package cli wires configuration, the submission controller and the export
// engine into the legalchain commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/csheth/legalchain/internal/backend"
	"github.com/csheth/legalchain/internal/config"
	"github.com/csheth/legalchain/internal/submit"
	"github.com/csheth/legalchain/internal/tui"
)

// version is overridden at build time with -ldflags "-X".
var version = "dev"

type rootOptions struct {
	configPath  string
	endpoint    string
	outDir      string
	noAltScreen bool
}

// NewRootCmd builds the command tree. Each call returns fresh flag state.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "legalchain",
		Short: "Generate mutual NDAs and export them as text or PDF",
		Long: `Generate a mutual non-disclosure agreement from five parameters.

Without a subcommand legalchain opens the interactive form.

Controls:
  Tab/Shift+Tab - Move between fields
  Ctrl+S        - Generate
  Ctrl+T        - Save nda.txt
  Ctrl+P        - Save Generated_NDA.pdf
  Esc           - Close dialog / back to form
  Ctrl+C        - Quit`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, opts)
		},
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config.toml (default: $LEGALCHAIN_CONFIG or the user config dir)")
	cmd.PersistentFlags().StringVar(&opts.endpoint, "endpoint", "", "generation endpoint URL")
	cmd.PersistentFlags().StringVar(&opts.outDir, "out", "", "directory for exported files")
	cmd.Flags().BoolVar(&opts.noAltScreen, "no-alt-screen", false, "disable the alternate screen buffer")

	cmd.AddCommand(newGenerateCmd(opts))
	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newInspectCmd())
	cmd.AddCommand(newConfigCmd(opts))
	return cmd
}

// Execute runs the CLI with os.Args.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// loadConfig resolves the config file and layers command-line flags on top.
func loadConfig(opts *rootOptions) (config.Config, error) {
	cfg, info, err := config.Load(opts.configPath)
	if err != nil {
		return cfg, err
	}
	if info.Found {
		log.Printf("[config] loaded %s", info.Path)
	}
	if opts.endpoint != "" {
		cfg.Backend.Endpoint = opts.endpoint
	}
	if opts.outDir != "" {
		cfg.Export.OutDir = opts.outDir
	}
	return cfg, nil
}

func newController(cfg config.Config) (*submit.Controller, backend.Client) {
	client := backend.NewFromEnv(backend.Config{Endpoint: cfg.Backend.Endpoint})
	return submit.New(submit.Config{
		Backend: client,
		Timeout: cfg.Backend.Timeout.Duration,
	}), client
}

func runTUI(cmd *cobra.Command, opts *rootOptions) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("tui panic: %v", r)
		}
	}()

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	// The TUI owns the terminal, so diagnostics go to a file.
	closeLog := redirectLog(cfg.Log.File)
	defer closeLog()

	layout, err := cfg.Layout()
	if err != nil {
		return err
	}
	ctrl, client := newController(cfg)
	log.Printf("[tui] starting against %s", client.Name())

	programOpts := []tea.ProgramOption{tea.WithContext(cmd.Context())}
	if !opts.noAltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}
	program := tea.NewProgram(tui.New(tui.Config{
		Controller: ctrl,
		Layout:     layout,
		OutDir:     cfg.Export.OutDir,
		Endpoint:   cfg.Backend.Endpoint,
		Context:    cmd.Context(),
	}), programOpts...)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("program error: %w", err)
	}
	return nil
}

func redirectLog(path string) func() {
	if path == "" {
		log.SetOutput(io.Discard)
		return func() { log.SetOutput(os.Stderr) }
	}
	f, err := tea.LogToFile(path, "legalchain")
	if err != nil {
		log.SetOutput(io.Discard)
		return func() { log.SetOutput(os.Stderr) }
	}
	return func() {
		_ = f.Close()
		log.SetOutput(os.Stderr)
	}
}
