package plugin

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
)

// MaxMessageSize bounds both directions of the RPC envelope (spec.md §4.4
// "maximum message size (both directions)").
const MaxMessageSize = 16 * 1024 * 1024 // 16MB

// Request is one capability call sent to a plugin subprocess.
type Request struct {
	Capability string          `json:"capability"`
	Params     json.RawMessage `json:"params"`
}

// Response is a plugin subprocess's reply to a Request.
type Response struct {
	OK     bool            `json:"ok"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// writeFrame writes a 4-byte big-endian length prefix followed by the JSON
// encoding of v (spec.md §4.4 "length-prefixed request/response protocol").
func writeFrame(w io.Writer, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("plugin: marshal frame: %w", err)
	}
	if len(data) > MaxMessageSize {
		return fmt.Errorf("plugin: frame exceeds max message size (%d > %d)", len(data), MaxMessageSize)
	}
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(data)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return fmt.Errorf("plugin: write frame length: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("plugin: write frame body: %w", err)
	}
	return nil
}

// readFrame reads a length-prefixed frame and unmarshals it into v.
func readFrame(r io.Reader, v interface{}) error {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return fmt.Errorf("plugin: read frame length: %w", err)
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	if n > MaxMessageSize {
		return fmt.Errorf("plugin: frame exceeds max message size (%d > %d)", n, MaxMessageSize)
	}
	data := make([]byte, n)
	if _, err := io.ReadFull(r, data); err != nil {
		return fmt.Errorf("plugin: read frame body: %w", err)
	}
	return json.Unmarshal(data, v)
}
