package output

import (
	"io"
	"sync"

	"github.com/tidwall/sjson"
)

// JSONSink writes one JSON object per event (newline-delimited JSON).
//
// Line events:
//
//	{"index":1,"stream":"stdout","line":"hello"}
//
// Exit events:
//
//	{"index":1,"event":"exit","code":124,"timed_out":true,"canceled":false}
type JSONSink struct {
	mu  sync.Mutex
	out io.Writer
}

// NewJSONSink creates a JSON sink writing to w.
func NewJSONSink(w io.Writer) *JSONSink {
	if w == nil {
		w = io.Discard
	}
	return &JSONSink{out: w}
}

// HandleLine implements Sink.
func (s *JSONSink) HandleLine(ev Event) {
	doc, _ := sjson.Set("", "index", ev.Label())
	doc, _ = sjson.Set(doc, "stream", ev.Stream.String())
	doc, _ = sjson.Set(doc, "line", ev.Line)
	s.write(doc)
}

// HandleExit implements Sink.
func (s *JSONSink) HandleExit(out ExitOutcome) {
	doc, _ := sjson.Set("", "index", out.Label())
	doc, _ = sjson.Set(doc, "event", "exit")
	doc, _ = sjson.Set(doc, "code", out.Code)
	doc, _ = sjson.Set(doc, "timed_out", out.TimedOut)
	doc, _ = sjson.Set(doc, "canceled", out.Canceled)
	if out.Err != nil {
		doc, _ = sjson.Set(doc, "error", out.Err.Error())
	}
	s.write(doc)
}

func (s *JSONSink) write(doc string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = io.WriteString(s.out, doc+"\n")
}
