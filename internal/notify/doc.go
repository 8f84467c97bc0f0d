// Package notify provides the client side of the /ws/notifications channel.
//
// The package implements:
//   - Relay: one shared WebSocket multiplexed into named event channels
//   - Envelope: the {"type": ..., "data": ...} message pushed by the server
//   - Dialer/Conn: the transport seam, backed by gorilla/websocket
//
// Key behaviour:
//   - The socket is opened lazily by the first Subscribe call
//   - Each message's data is handed to every handler registered for its type
//   - A panicking handler is recovered and never tears down the socket
//   - Malformed payloads are ignored
//   - When the socket closes and subscriptions remain, it is reopened after a
//     fixed delay; there is no backoff
//   - Unsubscribing never closes the socket
//   - A relay without a URL has no socket environment: Subscribe is a no-op
package notify
