package proto

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/pkg/errors"
)

// ErrIncomplete mirrors resp.ErrIncomplete: buf holds only a JSON prefix,
// not yet a complete frame.
var ErrIncomplete = errors.New("proto: incomplete frame")

// Decode reads as much of buf as it needs, and returns the first complete
// Value together with the number of bytes it occupies. A JSON prefix (or an
// empty buffer) is reported as ErrIncomplete so the caller can read more and
// retry.
//
// Malformed JSON that cannot simply be a truncated prefix is still reported
// as ErrIncomplete: a conservative choice that leaves disconnection-on-timeout
// to the caller rather than guessing at recovery.
func Decode(buf []byte) (Value, int, error) {
	if len(buf) == 0 {
		return Value{}, 0, ErrIncomplete
	}

	dec := json.NewDecoder(bytes.NewReader(buf))
	var v Value
	if err := dec.Decode(&v); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return Value{}, 0, ErrIncomplete
		}
		if _, ok := err.(*json.SyntaxError); ok {
			return Value{}, 0, ErrIncomplete
		}
		return Value{}, 0, ErrIncomplete
	}

	return v, int(dec.InputOffset()), nil
}

// Encode serializes a Value as a single JSON object. Frames are simply
// concatenated on the wire; no length prefix or delimiter is needed because
// JSON objects are self-delimiting.
func Encode(v Value) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "proto: encode")
	}
	return data, nil
}

// FrameReader decodes a stream of Values off an io.Reader, growing its
// buffer only as far as a partial frame requires — mirrors resp.FrameReader.
type FrameReader struct {
	r   io.Reader
	buf []byte
}

func NewFrameReader(r io.Reader) *FrameReader {
	return &FrameReader{r: r}
}

func (fr *FrameReader) ReadValue() (Value, error) {
	for {
		v, n, err := Decode(fr.buf)
		if err == nil {
			fr.buf = fr.buf[n:]
			return v, nil
		}
		if !errors.Is(err, ErrIncomplete) {
			return Value{}, err
		}

		chunk := make([]byte, 4096)
		n2, rerr := fr.r.Read(chunk)
		if n2 > 0 {
			fr.buf = append(fr.buf, chunk[:n2]...)
		}
		if rerr != nil {
			if n2 > 0 {
				continue
			}
			return Value{}, rerr
		}
	}
}
