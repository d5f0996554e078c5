// Package hub fans published payloads out to websocket viewers. The frame
// loop publishes; each viewer gets its own bounded queue.
package hub

import "github.com/gofiber/websocket/v2"

// Kind selects the websocket frame a Message goes out as.
type Kind int

const (
	Text   Kind = iota // annotation JSON
	Binary             // JPEG frames
)

func (k Kind) opcode() int {
	if k == Binary {
		return websocket.BinaryMessage
	}
	return websocket.TextMessage
}

// Message is one broadcast payload. Seq is stamped by the hub in
// broadcast order, starting at 1.
type Message struct {
	Kind Kind
	Seq  uint64
	Data []byte
}
