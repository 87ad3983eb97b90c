package logkit

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/valyala/fastjson"
)

// remoteQueueSize bounds the sink's submission queue. A full queue drops
// the record with a local warning instead of blocking the caller.
const remoteQueueSize = 1024

// remotePayload is the wire shape shipped to the collector, one POST per
// record.
type remotePayload struct {
	Time      string `json:"time"`
	Level     string `json:"level"`
	Message   string `json:"message"`
	File      string `json:"file"`
	Line      int    `json:"line"`
	Function  string `json:"function"`
	RequestID string `json:"request_id"`
}

// remoteSink ships error-and-above records to an HTTP collector from a
// fixed pool of workers. Delivery is best-effort: failures are demoted to
// a single local warning, never retried, never surfaced to the caller.
type remoteSink struct {
	url    string
	client *http.Client
	queue  chan remotePayload
	wg     sync.WaitGroup

	// mu serializes enqueue against Close so a record emitted during a
	// timed-out shutdown drain cannot hit a closed queue.
	mu     sync.RWMutex
	closed bool

	// warn emits a local warning record; it must log below error severity
	// or the warning would be shipped through this sink again.
	warn func() LogEvent
	// text resolves catalog messages in the configured language.
	text func(msgKey) string

	parsers   fastjson.ParserPool
	closeOnce sync.Once
}

func newRemoteSink(url string, workers int, timeout time.Duration, warn func() LogEvent, text func(msgKey) string) *remoteSink {
	r := &remoteSink{
		url:    url,
		client: &http.Client{Timeout: timeout},
		queue:  make(chan remotePayload, remoteQueueSize),
		warn:   warn,
		text:   text,
	}
	for i := 0; i < workers; i++ {
		r.wg.Add(1)
		go r.run()
	}
	return r
}

// Write satisfies io.Writer for records emitted without a level; those are
// never shipped.
func (r *remoteSink) Write(p []byte) (int, error) {
	return len(p), nil
}

// WriteLevel enqueues error-and-above records. The byte slice is owned by
// the engine and reused after return, so the payload is extracted
// synchronously; only the enqueue and the POST happen off the calling
// goroutine.
func (r *remoteSink) WriteLevel(l zerolog.Level, p []byte) (int, error) {
	if l < zerolog.ErrorLevel {
		return len(p), nil
	}

	payload, ok := r.extract(p)
	if !ok {
		return len(p), nil
	}

	r.mu.RLock()
	if r.closed {
		r.mu.RUnlock()
		return len(p), nil
	}
	select {
	case r.queue <- payload:
		r.mu.RUnlock()
	default:
		r.mu.RUnlock()
		r.warn().Msg(r.text(msgRemoteQueueFull))
	}
	return len(p), nil
}

// extract pulls the payload fields out of an emitted JSON record line.
func (r *remoteSink) extract(p []byte) (remotePayload, bool) {
	parser := r.parsers.Get()
	defer r.parsers.Put(parser)

	v, err := parser.ParseBytes(p)
	if err != nil {
		return remotePayload{}, false
	}

	payload := remotePayload{
		Time:      string(v.GetStringBytes(zerolog.TimestampFieldName)),
		Level:     string(v.GetStringBytes(zerolog.LevelFieldName)),
		Message:   string(v.GetStringBytes(zerolog.MessageFieldName)),
		Function:  string(v.GetStringBytes("function")),
		RequestID: string(v.GetStringBytes(RequestIDField)),
	}
	if payload.RequestID == emptyString {
		payload.RequestID = DefaultRequestID
	}

	// Caller is "path/to/file.go:123"; ship the basename and line apart.
	caller := string(v.GetStringBytes(zerolog.CallerFieldName))
	if i := strings.LastIndex(caller, ":"); i > 0 {
		if line, err := strconv.Atoi(caller[i+1:]); err == nil {
			payload.Line = line
		}
		caller = caller[:i]
	}
	if i := strings.LastIndexByte(caller, '/'); i >= 0 {
		caller = caller[i+1:]
	}
	payload.File = caller

	return payload, true
}

func (r *remoteSink) run() {
	defer r.wg.Done()
	for payload := range r.queue {
		r.send(payload)
	}
}

// send performs one POST. Any network failure or non-2xx response results
// in exactly one warning-level local record.
func (r *remoteSink) send(payload remotePayload) {
	body, err := json.Marshal(payload)
	if err != nil {
		r.warn().AnErr("send_error", err).Msg(r.text(msgRemoteSendFailed))
		return
	}

	req, err := http.NewRequest(http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		r.warn().AnErr("send_error", err).Msg(r.text(msgRemoteSendFailed))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		r.warn().AnErr("send_error", err).Msg(r.text(msgRemoteSendFailed))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		r.warn().Int("status", resp.StatusCode).Msg(r.text(msgRemoteSendFailed))
	}
}

// Close stops accepting submissions and waits for the workers to finish
// the queue. In-flight sends run to completion or failure; there is no
// cancellation.
func (r *remoteSink) Close() {
	r.closeOnce.Do(func() {
		r.mu.Lock()
		r.closed = true
		close(r.queue)
		r.mu.Unlock()
	})
	r.wg.Wait()
}
