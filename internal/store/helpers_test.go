package store

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/expense-share/client/internal/api"
	"github.com/expense-share/client/internal/notify"
)

// fakeNotifications records subscriptions and lets tests emit events.
type fakeNotifications struct {
	mu       sync.Mutex
	handlers map[string][]notify.Handler
	calls    map[string]int
	removed  int
}

func newFakeNotifications() *fakeNotifications {
	return &fakeNotifications{
		handlers: make(map[string][]notify.Handler),
		calls:    make(map[string]int),
	}
}

func (f *fakeNotifications) Subscribe(eventType string, h notify.Handler) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[eventType] = append(f.handlers[eventType], h)
	f.calls[eventType]++
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.removed++
	}
}

func (f *fakeNotifications) subscriptions(eventType string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[eventType]
}

func (f *fakeNotifications) emit(eventType, data string) {
	f.mu.Lock()
	handlers := append([]notify.Handler(nil), f.handlers[eventType]...)
	f.mu.Unlock()

	env := notify.Envelope{Type: eventType}
	if data != "" {
		env.Data = json.RawMessage(data)
	}
	for _, h := range handlers {
		h(env.Data, env)
	}
}

// jsonHandler replies with status and body.
func jsonHandler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}
}

// hits counts requests per route pattern.
type hits struct {
	mu sync.Mutex
	n  map[string]int
}

func (h *hits) wrap(pattern string, next http.HandlerFunc) (string, http.HandlerFunc) {
	return pattern, func(w http.ResponseWriter, r *http.Request) {
		h.mu.Lock()
		if h.n == nil {
			h.n = make(map[string]int)
		}
		h.n[pattern]++
		h.mu.Unlock()
		next(w, r)
	}
}

func (h *hits) count(pattern string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.n[pattern]
}

func newTestApp(t *testing.T, mux *http.ServeMux, notifications Subscriber) *App {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client, err := api.New(api.Config{BaseURL: srv.URL})
	require.NoError(t, err)

	opts := Options{Client: client}
	if notifications != nil {
		opts.Notifications = notifications
	}
	app, err := NewApp(opts)
	require.NoError(t, err)
	t.Cleanup(func() { app.Close() })
	return app
}
