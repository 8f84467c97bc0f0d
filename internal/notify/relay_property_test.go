package notify

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Subscribing and unsubscribing in any order leaves exactly the channels that
// still have handlers, with the right handler counts.
func TestRelaySubscriptionBookkeepingProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	types := []string{"invite", "categories_changed", "expenses_changed", "settlement_update"}

	properties.Property("channels mirror live subscriptions", prop.ForAll(
		func(ops []int) bool {
			r := NewRelay(Config{URL: "ws://example.test/ws/notifications", Dialer: &fakeDialer{}})
			defer r.Close()

			type live struct {
				eventType   string
				unsubscribe func()
			}
			var subs []live
			want := make(map[string]int)

			for _, op := range ops {
				if op%3 == 2 && len(subs) > 0 {
					idx := op % len(subs)
					subs[idx].unsubscribe()
					want[subs[idx].eventType]--
					subs = append(subs[:idx], subs[idx+1:]...)
					continue
				}
				eventType := types[op%len(types)]
				subs = append(subs, live{eventType, r.Subscribe(eventType, func(json.RawMessage, Envelope) {})})
				want[eventType]++
			}

			var wantChannels []string
			for _, eventType := range types {
				if r.HandlerCount(eventType) != want[eventType] {
					return false
				}
				if want[eventType] > 0 {
					wantChannels = append(wantChannels, eventType)
				}
			}
			got := r.Channels()
			if len(got) != len(wantChannels) {
				return false
			}
			for _, c := range wantChannels {
				found := false
				for _, g := range got {
					found = found || g == c
				}
				if !found {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 50)),
	))

	properties.TestingRun(t)
}

// notificationServer upgrades every request and lets the test push frames
// to, or drop, the current connection.
type notificationServer struct {
	*httptest.Server

	mu      sync.Mutex
	conns   []*websocket.Conn
	cookies []string
}

func newNotificationServer(t *testing.T) *notificationServer {
	t.Helper()
	s := &notificationServer{}
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != NotificationsPath {
			http.NotFound(w, r)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		s.mu.Lock()
		s.conns = append(s.conns, conn)
		s.cookies = append(s.cookies, r.Header.Get("Cookie"))
		s.mu.Unlock()
		// Drain until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *notificationServer) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

func (s *notificationServer) cookie(i int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cookies[i]
}

func (s *notificationServer) current() *websocket.Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conns[len(s.conns)-1]
}

func TestRelay_WithWebSocketServer(t *testing.T) {
	srv := newNotificationServer(t)

	wsURL, err := NotificationsURL(srv.URL)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(wsURL, "ws://"))

	header := http.Header{}
	header.Set("Cookie", "session=abc")
	r := NewRelay(Config{URL: wsURL, ReconnectDelay: 20 * time.Millisecond, Header: header})
	defer r.Close()

	got := make(chan json.RawMessage, 4)
	r.Subscribe("categories_changed", func(data json.RawMessage, _ Envelope) { got <- data })

	require.Eventually(t, func() bool { return srv.count() == 1 && r.Connected() }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "session=abc", srv.cookie(0))

	require.NoError(t, srv.current().WriteMessage(websocket.TextMessage, []byte(`{"type":"categories_changed","data":{"group_id":4}}`)))
	select {
	case data := <-got:
		assert.JSONEq(t, `{"group_id":4}`, string(data))
	case <-time.After(2 * time.Second):
		t.Fatal("notification not delivered")
	}

	// Server drops the socket; the relay comes back on its own.
	srv.current().Close()
	require.Eventually(t, func() bool { return srv.count() == 2 && r.Connected() }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, srv.current().WriteMessage(websocket.TextMessage, []byte(`{"type":"categories_changed","data":{"group_id":5}}`)))
	select {
	case data := <-got:
		assert.JSONEq(t, `{"group_id":5}`, string(data))
	case <-time.After(2 * time.Second):
		t.Fatal("notification not delivered after reconnect")
	}
}
