package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
)

// NotificationsPath is the server endpoint that pushes change events.
const NotificationsPath = "/ws/notifications"

const handshakeTimeout = 10 * time.Second

// Conn is the read side of an open notification socket.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
}

// Dialer opens notification sockets.
type Dialer interface {
	DialContext(ctx context.Context, urlStr string, header http.Header) (Conn, error)
}

type wsDialer struct {
	dialer *websocket.Dialer
}

// NewWebSocketDialer returns a Dialer backed by gorilla/websocket. The jar is
// shared with the REST client so the session cookie travels with the upgrade
// request; it may be nil.
func NewWebSocketDialer(jar http.CookieJar) Dialer {
	return &wsDialer{
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: handshakeTimeout,
			Jar:              jar,
		},
	}
}

func (d *wsDialer) DialContext(ctx context.Context, urlStr string, header http.Header) (Conn, error) {
	conn, _, err := d.dialer.DialContext(ctx, urlStr, header)
	if err != nil {
		return nil, fmt.Errorf("websocket dial: %w", err)
	}
	return conn, nil
}

// NotificationsURL derives the notification socket URL from the API base URL:
// https becomes wss, http becomes ws, and the path is replaced with
// NotificationsPath. An empty base URL yields an empty string, meaning there
// is no socket environment.
func NotificationsURL(baseURL string) (string, error) {
	if baseURL == "" {
		return "", nil
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("base url %q has no host", baseURL)
	}

	switch u.Scheme {
	case "https", "wss":
		u.Scheme = "wss"
	case "http", "ws":
		u.Scheme = "ws"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	u.Path = NotificationsPath
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	u.User = nil
	return u.String(), nil
}
