package tuitest

import (
	"bytes"
	"io"
)

// terminalQuery pairs a capability probe emitted by the program with the
// reply a real terminal would send back.
type terminalQuery struct {
	probe []byte
	reply []byte
}

// Replies describe a dark 256-color terminal with the cursor at the origin.
var terminalQueries = []terminalQuery{
	{probe: []byte("\x1b[6n"), reply: []byte("\x1b[1;1R")},
	{probe: []byte("\x1b]10;?\x07"), reply: []byte("\x1b]10;rgb:cccc/cccc/cccc\x07")},
	{probe: []byte("\x1b]10;?\x1b\\"), reply: []byte("\x1b]10;rgb:cccc/cccc/cccc\x1b\\")},
	{probe: []byte("\x1b]11;?\x07"), reply: []byte("\x1b]11;rgb:0000/0000/0000\x07")},
	{probe: []byte("\x1b]11;?\x1b\\"), reply: []byte("\x1b]11;rgb:0000/0000/0000\x1b\\")},
}

// responderTail is how much unmatched output is kept between reads so a probe
// split across two reads is still seen.
const (
	responderLimit = 256
	responderTail  = 64
)

type terminalResponder struct {
	w   io.Writer
	buf []byte
}

func newTerminalResponder(w io.Writer) *terminalResponder {
	return &terminalResponder{w: w, buf: make([]byte, 0, 2*responderLimit)}
}

func (tr *terminalResponder) Process(chunk []byte) {
	tr.buf = append(tr.buf, chunk...)
	for tr.answerEarliest() {
	}
	if len(tr.buf) > responderLimit {
		tr.buf = append(tr.buf[:0], tr.buf[len(tr.buf)-responderTail:]...)
	}
}

// answerEarliest replies to the first probe in the buffer, so replies are
// written in the order the program asked.
func (tr *terminalResponder) answerEarliest() bool {
	best, bestIdx := -1, -1
	for i, q := range terminalQueries {
		idx := bytes.Index(tr.buf, q.probe)
		if idx >= 0 && (bestIdx < 0 || idx < bestIdx) {
			best, bestIdx = i, idx
		}
	}
	if best < 0 {
		return false
	}
	q := terminalQueries[best]
	tr.buf = tr.buf[bestIdx+len(q.probe):]
	_, _ = tr.w.Write(q.reply)
	return true
}
