package resp

import (
	"bytes"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// ErrIncomplete is returned by Decode when buf does not yet hold a complete
// value. Callers read more bytes and retry rather than treating this as a
// hard failure — the codec never consumes bytes on an incomplete parse.
var ErrIncomplete = errors.New("resp: incomplete frame")

// word finds the byte slice up to the next \r, requiring a following \n:
// a line is whatever comes before \r, and \r must be immediately followed
// by \n.
func word(buf []byte) (line []byte, consumed int, err error) {
	idx := bytes.IndexByte(buf, '\r')
	if idx == -1 {
		return nil, 0, ErrIncomplete
	}
	if idx+1 >= len(buf) {
		return nil, 0, ErrIncomplete
	}
	if buf[idx+1] != '\n' {
		return nil, 0, errors.New("resp: expected \\n after \\r")
	}
	return buf[:idx], idx + 2, nil
}

func readInt(buf []byte) (n int64, consumed int, err error) {
	line, consumed, err := word(buf)
	if err != nil {
		return 0, 0, err
	}
	n, perr := strconv.ParseInt(string(line), 10, 64)
	if perr != nil {
		return 0, 0, errors.Wrap(perr, "resp: invalid integer")
	}
	return n, consumed, nil
}

// toText preserves bytes byte-for-byte where possible; invalid UTF-8 is
// lossily repaired with replacement characters rather than rejected, the
// "acceptable approximation" the protocol calls for.
func toText(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	return strings.ToValidUTF8(string(b), string(utf8.RuneError))
}

// Decode attempts to parse exactly one Value from the front of buf. It
// returns the value and the number of bytes it consumed. If buf does not
// contain a complete value, it returns ErrIncomplete and consumes nothing —
// callers should grow their buffer and retry, never treating this as a
// protocol error. Any other non-nil error is a hard framing failure.
func Decode(buf []byte) (Value, int, error) {
	if len(buf) == 0 {
		return Value{}, 0, ErrIncomplete
	}

	lead := buf[0]
	rest := buf[1:]

	var v Value
	var n int
	var err error

	switch lead {
	case '+':
		v, n, err = decodeSimpleString(rest)
	case '-':
		v, n, err = decodeError(rest)
	case ':':
		v, n, err = decodeInteger(rest)
	case '$':
		v, n, err = decodeBulkString(rest)
	case '*':
		v, n, err = decodeArray(rest)
	default:
		// Unknown leading byte: treated as "not yet available" rather than a
		// hard error, so spurious bytes don't poison the stream framer.
		// Higher layers may choose to disconnect.
		return Value{}, 0, ErrIncomplete
	}
	if err != nil {
		return Value{}, 0, err
	}
	return v, n + 1, nil
}

func decodeSimpleString(buf []byte) (Value, int, error) {
	line, n, err := word(buf)
	if err != nil {
		return Value{}, 0, err
	}
	return NewSimpleString(toText(line)), n, nil
}

func decodeError(buf []byte) (Value, int, error) {
	line, n, err := word(buf)
	if err != nil {
		return Value{}, 0, err
	}
	return NewError(toText(line)), n, nil
}

func decodeInteger(buf []byte) (Value, int, error) {
	i, n, err := readInt(buf)
	if err != nil {
		return Value{}, 0, err
	}
	return NewInteger(i), n, nil
}

// decodeBulkString accepts non-negative lengths only; a negative length is
// treated as a framing error rather than the RESP2 null convention, since
// this RESP1 subset has no client-facing null type to map it to.
func decodeBulkString(buf []byte) (Value, int, error) {
	length, posLen, err := readInt(buf)
	if err != nil {
		return Value{}, 0, err
	}
	if length < 0 {
		return Value{}, 0, errors.Errorf("resp: negative bulk length %d", length)
	}

	remaining := buf[posLen:]
	need := int(length) + 2 // payload + trailing \r\n
	if len(remaining) < need {
		return Value{}, 0, ErrIncomplete
	}
	data := remaining[:length]
	if remaining[length] != '\r' || remaining[length+1] != '\n' {
		return Value{}, 0, errors.New("resp: bulk string missing trailing CRLF")
	}

	return NewBulkString(toText(data)), posLen + need, nil
}

func decodeArray(buf []byte) (Value, int, error) {
	length, posLen, err := readInt(buf)
	if err != nil {
		return Value{}, 0, err
	}
	if length < 0 {
		return Value{}, 0, errors.Errorf("resp: negative array length %d", length)
	}

	total := posLen
	remaining := buf[posLen:]
	var items []Value
	if length > 0 {
		items = make([]Value, 0, length)
	}

	for i := int64(0); i < length; i++ {
		item, n, err := Decode(remaining)
		if err != nil {
			return Value{}, 0, err
		}
		items = append(items, item)
		remaining = remaining[n:]
		total += n
	}

	return Value{Kind: Array, Items: items}, total, nil
}

// Encode is the direct inverse of Decode: every header and bulk payload is
// followed by \r\n.
func Encode(v Value) []byte {
	var buf bytes.Buffer
	encodeInto(&buf, v)
	return buf.Bytes()
}

func encodeInto(buf *bytes.Buffer, v Value) {
	switch v.Kind {
	case SimpleString:
		buf.WriteByte('+')
		buf.WriteString(v.Str)
		buf.WriteString("\r\n")
	case Error:
		buf.WriteByte('-')
		buf.WriteString(v.Str)
		buf.WriteString("\r\n")
	case Integer:
		buf.WriteByte(':')
		buf.WriteString(strconv.FormatInt(v.Int, 10))
		buf.WriteString("\r\n")
	case BulkString:
		buf.WriteByte('$')
		buf.WriteString(strconv.Itoa(len(v.Str)))
		buf.WriteString("\r\n")
		buf.WriteString(v.Str)
		buf.WriteString("\r\n")
	case Array:
		buf.WriteByte('*')
		buf.WriteString(strconv.Itoa(len(v.Items)))
		buf.WriteString("\r\n")
		for _, item := range v.Items {
			encodeInto(buf, item)
		}
	}
}

// FrameReader decodes a stream of Values off an io.Reader, growing its
// internal buffer only as far as a partial frame requires rather than
// reading in fixed-size records.
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
