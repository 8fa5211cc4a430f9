package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/csheth/legalchain/internal/config"
	"github.com/csheth/legalchain/internal/export"
)

func newInspectCmd() *cobra.Command {
	var pagesOnly bool
	cmd := &cobra.Command{
		Use:   "inspect [file.pdf]",
		Short: "Print the page count and text of an exported PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := export.Inspect(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Pages: %d\n", report.Pages)
			if !pagesOnly {
				fmt.Fprintln(out)
				fmt.Fprintln(out, report.Text)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&pagesOnly, "pages-only", false, "print only the page count")
	return cmd
}

func newConfigCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(root)
			if err != nil {
				return err
			}
			data, err := cfg.Encode()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if path := config.DefaultPath(); root.configPath == "" && path != "" {
				fmt.Fprintf(out, "# default location: %s\n", path)
			}
			_, err = out.Write(data)
			return err
		},
	}
}
