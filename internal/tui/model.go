package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/legalchain/internal/export"
	"github.com/csheth/legalchain/internal/nda"
	"github.com/csheth/legalchain/internal/submit"
)

// Config wires runtime options into the TUI program.
type Config struct {
	Controller *submit.Controller
	Layout     export.Layout
	OutDir     string
	// Endpoint is shown in the status bar only.
	Endpoint string
	Context  context.Context
}

// New returns a tea.Model ready to be mounted into a Program.
func New(config Config) tea.Model {
	if config.Controller == nil {
		config.Controller = submit.New(submit.Config{})
	}
	if config.Layout.PageWidth == 0 {
		config.Layout = export.DefaultLayout()
	}

	m := &model{
		config:   config,
		stage:    stageForm,
		jobs:     newJobBus(config.Context),
		jobState: jobTracker{},
		layout:   newPageLayout(),
		invalid:  map[field]bool{},
	}
	for f := field(0); f < fieldCount; f++ {
		if f == fieldDescription {
			continue
		}
		input := textinput.New()
		input.Placeholder = fieldPlaceholders[f]
		input.Width = inputWidth
		input.CharLimit = 200
		m.inputs[f] = input
	}
	m.inputs[fieldEffectiveDate].CharLimit = len(nda.DateLayout)
	m.inputs[fieldTermLength].CharLimit = 3

	desc := textarea.New()
	desc.Placeholder = fieldPlaceholders[fieldDescription]
	desc.ShowLineNumbers = false
	desc.SetWidth(inputWidth)
	desc.SetHeight(descriptionHeight)
	desc.CharLimit = 2000
	m.description = desc

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	m.spinner = spin

	vp := viewport.New(80, 12)
	vp.MouseWheelEnabled = true
	m.viewport = vp

	m.focusField(fieldPartyOne)
	m.infoMessage = "Fill in every field, then press Ctrl+S to generate."
	return m
}

type model struct {
	config Config
	stage  stage

	inputs      [fieldCount]textinput.Model // fieldDescription uses the textarea
	description textarea.Model
	focus       field
	invalid     map[field]bool

	spinner  spinner.Model
	viewport viewport.Model
	layout   pageLayout

	jobs     *jobBus
	jobState jobTracker

	document      string
	hasDocument   bool
	documentDirty bool

	modal        string
	infoMessage  string
	errorMessage string
	lastExport   string
}

func (m *model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.stage == stageSubmitting || m.jobState.running() > 0 {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.layout.Update(msg.Width, msg.Height)
		m.viewport.Width = m.layout.viewportWidth
		m.viewport.Height = m.layout.viewportHeight
		m.documentDirty = true
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		if m.stage == stageDocument {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		return m, nil
	case jobSignalMsg:
		m.jobState.record(msg.Snapshot)
		return m, nil
	case jobResultEnvelope:
		m.jobState.record(msg.Snapshot)
		if msg.Payload == nil {
			return m, nil
		}
		return m.Update(msg.Payload)
	case generateResultMsg:
		return m.applyResult(msg.snapshot), nil
	case exportResultMsg:
		if msg.err != nil {
			if isSilentExportError(msg.err) {
				return m, nil
			}
			m.errorMessage = fmt.Sprintf("Export failed: %v", msg.err)
			return m, nil
		}
		m.errorMessage = ""
		m.lastExport = msg.path
		if msg.format == export.FormatPDF {
			m.infoMessage = fmt.Sprintf("Saved %s (%d page(s)).", msg.path, msg.pages)
		} else {
			m.infoMessage = fmt.Sprintf("Saved %s.", msg.path)
		}
		return m, nil
	}
	return m, nil
}

func (m *model) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if m.modal != "" {
		switch key.Type {
		case tea.KeyEsc, tea.KeyEnter:
			m.modal = ""
			return m, m.focusField(m.focus)
		}
		return m, nil
	}

	switch key.Type {
	case tea.KeyCtrlS:
		return m, m.submit()
	case tea.KeyCtrlT:
		return m, m.exportCmd(export.FormatText)
	case tea.KeyCtrlP:
		return m, m.exportCmd(export.FormatPDF)
	}

	switch m.stage {
	case stageSubmitting:
		return m, nil
	case stageDocument:
		return m.handleDocumentKey(key)
	default:
		return m.handleFormKey(key)
	}
}

func (m *model) handleFormKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.Type {
	case tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyTab:
		if m.focus == fieldCount-1 && m.hasDocument {
			m.enterDocument()
			return m, nil
		}
		return m, m.focusField((m.focus + 1) % fieldCount)
	case tea.KeyShiftTab:
		return m, m.focusField((m.focus + fieldCount - 1) % fieldCount)
	case tea.KeyEnter:
		if m.focus == fieldDescription {
			break
		}
		if m.focus == fieldCount-1 {
			return m, m.submit()
		}
		return m, m.focusField(m.focus + 1)
	}

	var cmd tea.Cmd
	if m.focus == fieldDescription {
		m.description, cmd = m.description.Update(key)
	} else {
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(key)
	}
	if m.invalid[m.focus] {
		delete(m.invalid, m.focus)
	}
	return m, cmd
}

func (m *model) handleDocumentKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "esc", "tab", "i":
		m.stage = stageForm
		return m, m.focusField(m.focus)
	case "shift+tab":
		m.stage = stageForm
		return m, m.focusField(fieldCount - 1)
	case "g", "home":
		m.viewport.GotoTop()
		return m, nil
	case "G", "end":
		m.viewport.GotoBottom()
		return m, nil
	case "q":
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(key)
	return m, cmd
}

func (m *model) focusField(f field) tea.Cmd {
	m.focus = f
	m.description.Blur()
	for idx := range m.inputs {
		m.inputs[idx].Blur()
	}
	if f == fieldDescription {
		return m.description.Focus()
	}
	return m.inputs[f].Focus()
}

func (m *model) blurAll() {
	m.description.Blur()
	for idx := range m.inputs {
		m.inputs[idx].Blur()
	}
}

func (m *model) enterDocument() {
	m.blurAll()
	m.stage = stageDocument
}

func (m *model) value(f field) string {
	if f == fieldDescription {
		return strings.TrimSpace(m.description.Value())
	}
	return strings.TrimSpace(m.inputs[f].Value())
}

func (m *model) formInput() (nda.FormInput, error) {
	input := nda.FormInput{
		PartyOne:      m.value(fieldPartyOne),
		PartyTwo:      m.value(fieldPartyTwo),
		EffectiveDate: m.value(fieldEffectiveDate),
		Description:   m.value(fieldDescription),
	}
	term, termErr := nda.ParseTermLength(m.value(fieldTermLength))
	input.TermLength = term
	err := input.Validate()
	if termErr != nil && err == nil {
		err = &nda.ValidationError{Problems: []nda.FieldProblem{{Field: nda.FieldTermLength, Reason: "must be a whole number"}}}
	}
	return input, err
}

// submit validates the form and starts a generation attempt. A rejected
// attempt leaves the controller untouched.
func (m *model) submit() tea.Cmd {
	input, err := m.formInput()
	if err != nil {
		m.markInvalid(err)
		m.errorMessage = err.Error()
		return nil
	}
	attempt, err := m.config.Controller.Begin(input)
	if errors.Is(err, submit.ErrInFlight) {
		m.infoMessage = "A draft is already being generated."
		return nil
	}
	if err != nil {
		m.errorMessage = err.Error()
		return nil
	}

	m.invalid = map[field]bool{}
	m.errorMessage = ""
	m.modal = ""
	m.document = ""
	m.hasDocument = false
	m.documentDirty = true
	m.lastExport = ""
	m.stage = stageSubmitting
	m.blurAll()
	m.infoMessage = "Generating NDA…"
	return tea.Batch(m.spinner.Tick, m.jobs.Start(jobKindGenerate, generateJob(attempt)))
}

func (m *model) markInvalid(err error) {
	m.invalid = map[field]bool{}
	var verr *nda.ValidationError
	if !errors.As(err, &verr) {
		return
	}
	first := fieldCount
	for _, p := range verr.Problems {
		if f, ok := fieldForKey(p.Field); ok {
			m.invalid[f] = true
			if f < first {
				first = f
			}
		}
	}
	if first < fieldCount {
		m.focusField(first)
	}
}

func (m *model) applyResult(snap submit.Snapshot) tea.Model {
	current := m.config.Controller.Snapshot()
	if current.AttemptID != snap.AttemptID {
		return m
	}
	switch snap.Status {
	case submit.StatusSucceeded:
		m.document = snap.Document
		m.hasDocument = true
		m.documentDirty = true
		m.viewport.GotoTop()
		m.infoMessage = "Draft ready. Ctrl+T saves nda.txt, Ctrl+P saves the PDF."
		if snap.Document == "" {
			m.infoMessage = export.EmptyDocumentNotice
		}
		m.enterDocument()
	case submit.StatusFailed:
		m.modal = snap.Message
		m.infoMessage = ""
		m.stage = stageForm
	}
	return m
}

// exportCmd is a no-op until a document exists. A generation that succeeded
// with empty text explains itself instead.
func (m *model) exportCmd(format export.Format) tea.Cmd {
	doc, ok := m.config.Controller.Document()
	if !ok {
		return nil
	}
	if doc == "" {
		m.errorMessage = ""
		m.infoMessage = export.EmptyDocumentNotice
		return nil
	}
	kind := jobKindExportText
	if format == export.FormatPDF {
		kind = jobKindExportPDF
	}
	return tea.Batch(m.spinner.Tick, m.jobs.Start(kind, exportJob(m.config.OutDir, format, doc, m.config.Layout)))
}
