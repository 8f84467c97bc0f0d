package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receiveWithTimeout(t *testing.T, client *Client, timeout time.Duration) []byte {
	t.Helper()
	select {
	case data := <-client.SendChan():
		return data
	case <-time.After(timeout):
		t.Fatal("timeout waiting for message")
		return nil
	}
}

func TestHub_PublishAddressesUsers(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Close()

	alice1 := NewClient(nil, 1)
	alice2 := NewClient(nil, 1)
	bob := NewClient(nil, 2)
	hub.Register(alice1)
	hub.Register(alice2)
	hub.Register(bob)
	assert.Equal(t, 2, hub.ClientCount(1))

	hub.Publish([]int64{1}, "categories_changed", map[string]int64{"group_id": 3})

	want := `{"type":"categories_changed","data":{"group_id":3}}`
	assert.JSONEq(t, want, string(receiveWithTimeout(t, alice1, 100*time.Millisecond)))
	assert.JSONEq(t, want, string(receiveWithTimeout(t, alice2, 100*time.Millisecond)))
	assert.Empty(t, bob.SendChan())
}

func TestHub_Unregister(t *testing.T) {
	hub := NewHub(nil)

	client := NewClient(nil, 7)
	hub.Register(client)
	hub.Unregister(client)

	assert.Equal(t, 0, hub.ClientCount(7))
	assert.True(t, client.IsClosed())

	// Publishing to a user without sockets is a no-op.
	hub.Publish([]int64{7}, "invite", nil)
}

func TestClient_FullBufferClosesClient(t *testing.T) {
	hub := NewHub(nil)
	client := NewClient(nil, 1)
	hub.Register(client)

	for i := 0; i < sendBuffer+1; i++ {
		hub.Publish([]int64{1}, "expenses_changed", nil)
	}
	assert.True(t, client.IsClosed())

	// Sending to a closed client must not panic.
	client.Send([]byte("late"))
}

func TestHandler_DeliversOverWebSocket(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Close()
	handler := NewHandler(hub, nil)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler.HandleConnection(w, r, 5)
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount(5) == 1 }, time.Second, 5*time.Millisecond)

	hub.Publish([]int64{5}, "settlement_update", map[string]int64{"group_id": 9})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"settlement_update","data":{"group_id":9}}`, string(msg))

	conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount(5) == 0 }, time.Second, 5*time.Millisecond)
}

func TestHandler_RejectsUnknownOrigin(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Close()
	handler := NewHandler(hub, nil, "http://localhost:5173")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler.HandleConnection(w, r, 5)
	}))
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"http://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"http://localhost:5173"}})
	require.NoError(t, err)
	conn.Close()

	conn, _, err = websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err, "non-browser clients send no Origin")
	conn.Close()
}
