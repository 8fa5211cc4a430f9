package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/csheth/legalchain/internal/export"
	"github.com/csheth/legalchain/internal/nda"
	"github.com/csheth/legalchain/internal/submit"
)

// ErrAborted is returned when the user cancels an interactive prompt.
var ErrAborted = errors.New("generate: aborted")

// stdinIsTerminal decides whether missing fields may be prompted for.
var stdinIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

type generateOptions struct {
	partyOne      string
	partyTwo      string
	effectiveDate string
	description   string
	term          string
	format        string
}

func newGenerateCmd(root *rootOptions) *cobra.Command {
	opts := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate an NDA without the interactive form",
		Long: `Generate an NDA from flags and write it to the output directory.

Fields missing from the flags are asked for interactively when stdin is a
terminal; otherwise the command fails and lists them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd, root, opts)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.partyOne, "party-one", "", "first party name")
	flags.StringVar(&opts.partyTwo, "party-two", "", "second party name")
	flags.StringVar(&opts.effectiveDate, "effective-date", "", "effective date (YYYY-MM-DD)")
	flags.StringVar(&opts.description, "description", "", "description of the confidential information")
	flags.StringVar(&opts.term, "term", "", "term length in years")
	flags.StringVarP(&opts.format, "format", "f", "both", "export format: txt, pdf or both")
	return cmd
}

func exportFormats(raw string) ([]export.Format, error) {
	if strings.EqualFold(strings.TrimSpace(raw), "both") {
		return []export.Format{export.FormatText, export.FormatPDF}, nil
	}
	f, err := export.ParseFormat(raw)
	if err != nil {
		return nil, err
	}
	return []export.Format{f}, nil
}

func runGenerate(cmd *cobra.Command, root *rootOptions, opts *generateOptions) error {
	formats, err := exportFormats(opts.format)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	layout, err := cfg.Layout()
	if err != nil {
		return err
	}

	input, err := opts.formInput()
	if err != nil {
		var verr *nda.ValidationError
		if !errors.As(err, &verr) || !stdinIsTerminal() {
			return err
		}
		if err := promptMissing(cmd.Context(), opts, verr); err != nil {
			return err
		}
		if input, err = opts.formInput(); err != nil {
			return err
		}
	}

	ctrl, client := newController(cfg)
	fmt.Fprintf(cmd.ErrOrStderr(), "Generating NDA via %s…\n", client.Name())
	snap, err := ctrl.Submit(cmd.Context(), input)
	if err != nil {
		return err
	}
	if snap.Status == submit.StatusFailed {
		log.Printf("[generate] %s failed: %v", snap.AttemptID, snap.Cause)
		return errors.New(snap.Message)
	}

	out := cmd.OutOrStdout()
	for _, format := range formats {
		path, artifact, err := export.Save(cfg.Export.OutDir, format, snap.Document, layout)
		if errors.Is(err, export.ErrNothingToExport) {
			fmt.Fprintln(cmd.ErrOrStderr(), export.EmptyDocumentNotice)
			return nil
		}
		if err != nil {
			return fmt.Errorf("export %s: %w", format, err)
		}
		if format == export.FormatPDF {
			fmt.Fprintf(out, "Wrote %s (%d page(s), %d line(s))\n", path, artifact.Stats.Pages, artifact.Stats.Lines)
		} else {
			fmt.Fprintf(out, "Wrote %s\n", path)
		}
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Done in %s.\n", snap.Duration().Round(100*time.Millisecond))
	return nil
}

func (o *generateOptions) formInput() (nda.FormInput, error) {
	input := nda.FormInput{
		PartyOne:      strings.TrimSpace(o.partyOne),
		PartyTwo:      strings.TrimSpace(o.partyTwo),
		EffectiveDate: strings.TrimSpace(o.effectiveDate),
		Description:   strings.TrimSpace(o.description),
	}
	termLength, termErr := nda.ParseTermLength(o.term)
	input.TermLength = termLength
	if err := input.Validate(); err != nil {
		return input, err
	}
	if termErr != nil {
		return input, &nda.ValidationError{Problems: []nda.FieldProblem{{Field: nda.FieldTermLength, Reason: "must be a whole number"}}}
	}
	return input, nil
}

// promptMissing asks only for the fields named in verr.
func promptMissing(ctx context.Context, opts *generateOptions, verr *nda.ValidationError) error {
	targets := map[string]*string{
		nda.FieldPartyOne:      &opts.partyOne,
		nda.FieldPartyTwo:      &opts.partyTwo,
		nda.FieldEffectiveDate: &opts.effectiveDate,
		nda.FieldDescription:   &opts.description,
		nda.FieldTermLength:    &opts.term,
	}
	order := []string{nda.FieldPartyOne, nda.FieldPartyTwo, nda.FieldEffectiveDate, nda.FieldDescription, nda.FieldTermLength}
	for _, field := range order {
		if !verr.Has(field) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		var prompt survey.Prompt
		label := nda.FieldLabels[field]
		switch field {
		case nda.FieldDescription:
			prompt = &survey.Multiline{Message: label}
		case nda.FieldEffectiveDate:
			prompt = &survey.Input{Message: label, Default: time.Now().Format(nda.DateLayout), Help: "YYYY-MM-DD"}
		default:
			prompt = &survey.Input{Message: label}
		}
		var answer string
		if err := survey.AskOne(prompt, &answer, survey.WithValidator(fieldValidator(field))); err != nil {
			return translateSurveyErr(err)
		}
		*targets[field] = answer
	}
	return nil
}

func fieldValidator(field string) survey.Validator {
	return func(ans interface{}) error {
		value, _ := ans.(string)
		value = strings.TrimSpace(value)
		if value == "" {
			return fmt.Errorf("%s is required", nda.FieldLabels[field])
		}
		switch field {
		case nda.FieldEffectiveDate:
			if _, err := time.Parse(nda.DateLayout, value); err != nil {
				return errors.New("use YYYY-MM-DD")
			}
		case nda.FieldTermLength:
			n, err := nda.ParseTermLength(value)
			if err != nil || n <= 0 {
				return errors.New("enter a positive whole number of years")
			}
		}
		return nil
	}
}

func translateSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}
