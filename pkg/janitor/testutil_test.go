package janitor_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
)

// testLogHandler captures log records for testing.
type testLogHandler struct {
	mu    sync.Mutex
	buf   *bytes.Buffer
	level slog.Level
}

func newTestLogHandler() *testLogHandler {
	return &testLogHandler{
		buf:   &bytes.Buffer{},
		level: slog.LevelDebug,
	}
}

func (h *testLogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *testLogHandler) Handle(_ context.Context, r slog.Record) error {
	data := map[string]any{
		"level": r.Level.String(),
		"msg":   r.Message,
	}
	r.Attrs(func(a slog.Attr) bool {
		data[a.Key] = a.Value.Any()
		return true
	})
	h.mu.Lock()
	defer h.mu.Unlock()
	enc := json.NewEncoder(h.buf)
	return enc.Encode(data)
}

func (h *testLogHandler) WithAttrs(_ []slog.Attr) slog.Handler {
	return h
}

func (h *testLogHandler) WithGroup(_ string) slog.Handler {
	return h
}

func (h *testLogHandler) getRecords() []map[string]any {
	h.mu.Lock()
	defer h.mu.Unlock()

	var records []map[string]any
	lines := bytes.Split(h.buf.Bytes(), []byte("\n"))
	for _, line := range lines {
		if len(line) > 0 {
			var m map[string]any
			if err := json.Unmarshal(line, &m); err == nil {
				records = append(records, m)
			}
		}
	}
	return records
}

// fakeConn is a subscription handle disposed via Disconnect.
type fakeConn struct {
	disconnects atomic.Int32
}

func (c *fakeConn) Disconnect() {
	c.disconnects.Add(1)
}

// fakeSub is a subscription handle disposed via Unsubscribe.
type fakeSub struct {
	unsubscribes atomic.Int32
}

func (s *fakeSub) Unsubscribe() {
	s.unsubscribes.Add(1)
}

// fakeTimer is a cancellable execution handle. Cancel is a counted no-op
// even after "completion", matching the handle contract.
type fakeTimer struct {
	cancels atomic.Int32
}

func (t *fakeTimer) Cancel() {
	t.cancels.Add(1)
}

// fakeResource is an object with an explicit Destroy teardown.
type fakeResource struct {
	destroys atomic.Int32
}

func (r *fakeResource) Destroy() {
	r.destroys.Add(1)
}

// fakeCloser is an io.Closer-shaped teardown object.
type fakeCloser struct {
	closes atomic.Int32
	err    error
}

func (c *fakeCloser) Close() error {
	c.closes.Add(1)
	return c.err
}

// destroyableFunc is a named function type that also carries a Destroy
// method, for dispatch precedence tests: the function must win.
type destroyableFunc func()

var destroyableFuncDestroys atomic.Int32

func (destroyableFunc) Destroy() {
	destroyableFuncDestroys.Add(1)
}
