// Package ws pushes notification envelopes to browser and CLI clients over
// WebSocket.
//
// A Hub tracks the open sockets of each user; Publish encodes
// {"type": ..., "data": ...} once and queues it on every socket of the
// addressed users. Handler upgrades requests and runs the read and write
// pumps that keep each socket alive with pings.
package ws
