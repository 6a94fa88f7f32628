package proto

import (
	"io"

	"github.com/pkg/errors"
)

// Conn pairs a FrameReader with the underlying writer, giving both sides of
// the internal protocol a single type to read and write frames through.
type Conn struct {
	w  io.Writer
	fr *FrameReader
}

func NewConn(rw io.ReadWriter) *Conn {
	return &Conn{w: rw, fr: NewFrameReader(rw)}
}

func (c *Conn) ReadValue() (Value, error) {
	return c.fr.ReadValue()
}

func (c *Conn) WriteValue(v Value) error {
	data, err := Encode(v)
	if err != nil {
		return err
	}
	if _, err := c.w.Write(data); err != nil {
		return errors.Wrap(err, "proto: write frame")
	}
	return nil
}

// Talk writes v and waits for the peer's next frame — the request/response
// pattern every 2PC phase and the handshake exchange reduce to.
func (c *Conn) Talk(v Value) (Value, error) {
	if err := c.WriteValue(v); err != nil {
		return Value{}, err
	}
	return c.ReadValue()
}
