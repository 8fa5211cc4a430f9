package tui

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/legalchain/internal/export"
	"github.com/csheth/legalchain/internal/nda"
	"github.com/csheth/legalchain/internal/submit"
)

type fakeBackend struct {
	text string
	err  error
}

func (f fakeBackend) Generate(ctx context.Context, input nda.FormInput) (string, error) {
	return f.text, f.err
}

func newTestModel(t *testing.T, backend submit.Generator) *model {
	t.Helper()
	ctrl := submit.New(submit.Config{Backend: backend})
	teaModel, ok := New(Config{Controller: ctrl, OutDir: t.TempDir()}).(*model)
	if !ok {
		t.Fatalf("expected *model, got %T", teaModel)
	}
	return teaModel
}

func fillForm(m *model) {
	m.inputs[fieldPartyOne].SetValue("Google")
	m.inputs[fieldPartyTwo].SetValue("Apple")
	m.inputs[fieldEffectiveDate].SetValue("2024-05-01")
	m.description.SetValue("Unreleased hardware roadmaps")
	m.inputs[fieldTermLength].SetValue("3")
}

func sampleInput() nda.FormInput {
	return nda.FormInput{
		PartyOne:      "Google",
		PartyTwo:      "Apple",
		EffectiveDate: "2024-05-01",
		Description:   "Unreleased hardware roadmaps",
		TermLength:    3,
	}
}

func TestSubmitRejectsIncompleteForm(t *testing.T) {
	m := newTestModel(t, fakeBackend{text: "unused"})
	m.inputs[fieldPartyOne].SetValue("Google")
	m.inputs[fieldTermLength].SetValue("two")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if cmd != nil {
		t.Fatalf("invalid form should not start a job, got %T", cmd)
	}
	if got := m.config.Controller.Snapshot().Status; got != submit.StatusIdle {
		t.Fatalf("controller should stay idle, got %s", got)
	}
	for _, f := range []field{fieldPartyTwo, fieldEffectiveDate, fieldDescription, fieldTermLength} {
		if !m.invalid[f] {
			t.Fatalf("expected %s to be flagged", f.label())
		}
	}
	if m.invalid[fieldPartyOne] {
		t.Fatal("party one was filled and should not be flagged")
	}
	if m.focus != fieldPartyTwo {
		t.Fatalf("focus should jump to the first invalid field, got %v", m.focus)
	}
	if m.errorMessage == "" {
		t.Fatal("validation message missing")
	}
}

func TestSubmitEntersPendingOnce(t *testing.T) {
	m := newTestModel(t, fakeBackend{text: "unused"})
	fillForm(m)

	cmd := m.submit()
	if cmd == nil {
		t.Fatal("submit should return the generate job")
	}
	if m.stage != stageSubmitting {
		t.Fatalf("stage not updated, got %v", m.stage)
	}
	snap := m.config.Controller.Snapshot()
	if snap.Status != submit.StatusPending {
		t.Fatalf("controller should be pending, got %s", snap.Status)
	}
	if snap.Input != sampleInput() {
		t.Fatalf("unexpected input: %+v", snap.Input)
	}

	if cmd := m.submit(); cmd != nil {
		t.Fatal("second submit while pending must not start another job")
	}
	if !strings.Contains(m.infoMessage, "already") {
		t.Fatalf("expected in-flight notice, got %q", m.infoMessage)
	}
	if m.config.Controller.Snapshot().AttemptID != snap.AttemptID {
		t.Fatal("in-flight attempt was replaced")
	}
}

func TestEnterOnLastFieldSubmits(t *testing.T) {
	m := newTestModel(t, fakeBackend{text: "unused"})
	fillForm(m)
	m.focusField(fieldTermLength)

	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd == nil {
		t.Fatal("enter on the last field should submit")
	}
	if !m.config.Controller.Pending() {
		t.Fatal("controller should be pending after enter")
	}
}

func TestTabCyclesFocus(t *testing.T) {
	m := newTestModel(t, nil)
	for want := fieldPartyTwo; want < fieldCount; want++ {
		m.Update(tea.KeyMsg{Type: tea.KeyTab})
		if m.focus != want {
			t.Fatalf("focus mismatch: got %v want %v", m.focus, want)
		}
	}
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.focus != fieldPartyOne {
		t.Fatalf("tab should wrap without a document, got %v", m.focus)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.focus != fieldTermLength {
		t.Fatalf("shift+tab should wrap backwards, got %v", m.focus)
	}
}

func TestGenerateJobSuccessShowsDocument(t *testing.T) {
	const text = "CONFIDENTIALITY AGREEMENT\n\nThis Agreement is made between Google and Apple."
	m := newTestModel(t, fakeBackend{text: text})

	attempt, err := m.config.Controller.Begin(sampleInput())
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	msg, err := generateJob(attempt)(context.Background())
	if err != nil {
		t.Fatalf("job reported error: %v", err)
	}
	m.Update(jobResultEnvelope{Snapshot: jobSnapshot{Kind: jobKindGenerate, Status: jobStatusSucceeded}, Payload: msg})

	if !m.hasDocument || m.document != text {
		t.Fatalf("document not stored verbatim: %q", m.document)
	}
	if m.stage != stageDocument {
		t.Fatalf("expected document stage, got %v", m.stage)
	}
	view := m.View()
	if !strings.Contains(view, "Generated NDA") || !strings.Contains(view, "CONFIDENTIALITY AGREEMENT") {
		t.Fatalf("document not rendered:\n%s", view)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.stage != stageForm {
		t.Fatalf("esc should return to the form, got %v", m.stage)
	}
}

func TestGenerateFailureShowsModal(t *testing.T) {
	m := newTestModel(t, fakeBackend{err: errors.New("backend error: 500 Internal Server Error")})

	snap, err := m.config.Controller.Submit(context.Background(), sampleInput())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	m.Update(generateResultMsg{snapshot: snap})

	if m.modal != submit.FailureMessage {
		t.Fatalf("unexpected modal text %q", m.modal)
	}
	view := m.View()
	if !strings.Contains(view, submit.FailureMessage) {
		t.Fatalf("modal not rendered:\n%s", view)
	}
	if strings.Contains(view, "Internal Server Error") {
		t.Fatal("cause must not reach the user")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.modal != "" {
		t.Fatal("esc should close the modal")
	}
	if m.stage != stageForm {
		t.Fatalf("expected form stage after failure, got %v", m.stage)
	}
}

func TestStaleResultIgnored(t *testing.T) {
	m := newTestModel(t, fakeBackend{text: "current"})
	if _, err := m.config.Controller.Submit(context.Background(), sampleInput()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	m.Update(generateResultMsg{snapshot: submit.Snapshot{Status: submit.StatusSucceeded, AttemptID: "old", Document: "stale"}})
	if m.hasDocument {
		t.Fatal("result from a superseded attempt should be dropped")
	}
}

func TestExportWithoutDocumentIsNoop(t *testing.T) {
	m := newTestModel(t, fakeBackend{text: "unused"})
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlP}); cmd != nil {
		t.Fatal("pdf export without a document should do nothing")
	}
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlT}); cmd != nil {
		t.Fatal("text export without a document should do nothing")
	}
	m.Update(exportResultMsg{format: export.FormatText, err: export.ErrNothingToExport})
	if m.errorMessage != "" {
		t.Fatalf("empty export should stay silent, got %q", m.errorMessage)
	}
}

func TestExportJobWritesArtifact(t *testing.T) {
	m := newTestModel(t, fakeBackend{text: "Line one\nLine two"})
	if _, err := m.config.Controller.Submit(context.Background(), sampleInput()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if cmd := m.exportCmd(export.FormatText); cmd == nil {
		t.Fatal("export should start once a document exists")
	}

	msg, err := exportJob(m.config.OutDir, export.FormatText, "Line one\nLine two", export.DefaultLayout())(context.Background())
	if err != nil {
		t.Fatalf("export job: %v", err)
	}
	m.Update(msg)
	if !strings.Contains(m.infoMessage, "nda.txt") {
		t.Fatalf("expected saved notice, got %q", m.infoMessage)
	}
	data, err := os.ReadFile(m.lastExport)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if string(data) != "Line one\nLine two" {
		t.Fatalf("text export altered the document: %q", data)
	}
}

func TestExportOfEmptyDocumentExplainsItself(t *testing.T) {
	m := newTestModel(t, fakeBackend{text: ""})
	snap, err := m.config.Controller.Submit(context.Background(), sampleInput())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if snap.Status != submit.StatusSucceeded {
		t.Fatalf("expected succeeded, got %s", snap.Status)
	}
	m.Update(generateResultMsg{snapshot: snap})
	if m.infoMessage != export.EmptyDocumentNotice {
		t.Fatalf("expected empty document notice after generation, got %q", m.infoMessage)
	}

	m.infoMessage = ""
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlP}); cmd != nil {
		t.Fatal("nothing should be exported for an empty document")
	}
	if m.infoMessage != export.EmptyDocumentNotice {
		t.Fatalf("expected empty document notice on export, got %q", m.infoMessage)
	}
	entries, err := os.ReadDir(m.config.OutDir)
	if err != nil {
		t.Fatalf("read out dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no artifacts, found %d", len(entries))
	}
}
