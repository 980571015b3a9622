package services

import (
	"io"
	"unicode/utf8"
)

const streamReadSize = 4096

// Stream incrementally decodes a plain-text response body. A network chunk
// may end mid-codepoint, so the trailing bytes of an incomplete UTF-8
// sequence are carried over and prepended to the next chunk.
type Stream struct {
	body io.ReadCloser
	buf  []byte
	tail []byte
	err  error
}

// NewStream wraps a response body for chunked text decoding.
func NewStream(body io.ReadCloser) *Stream {
	return &Stream{
		body: body,
		buf:  make([]byte, streamReadSize),
	}
}

// Next returns the next decoded text chunk. It returns io.EOF after the
// stream is exhausted; any carried-over bytes are flushed before EOF is
// reported, so the concatenation of all chunks equals the full response.
func (s *Stream) Next() (string, error) {
	for {
		if s.err != nil {
			// Flush the carry-over before surfacing the stored error.
			if len(s.tail) > 0 {
				text := string(s.tail)
				s.tail = nil
				return text, nil
			}
			return "", s.err
		}

		n, err := s.body.Read(s.buf)
		if err != nil {
			s.err = err
		}
		if n == 0 {
			continue
		}

		chunk := make([]byte, 0, len(s.tail)+n)
		chunk = append(chunk, s.tail...)
		chunk = append(chunk, s.buf[:n]...)

		complete, tail := splitIncompleteRune(chunk)
		s.tail = tail

		if len(complete) == 0 {
			continue
		}
		return string(complete), nil
	}
}

// Close releases the underlying response body.
func (s *Stream) Close() error {
	return s.body.Close()
}

// splitIncompleteRune splits b so that complete ends on a codepoint boundary.
// tail holds the leading bytes of a UTF-8 sequence whose continuation has not
// arrived yet. Bytes that cannot begin a valid sequence are passed through
// unmodified rather than held back forever.
func splitIncompleteRune(b []byte) (complete, tail []byte) {
	for i := 1; i <= utf8.UTFMax && i <= len(b); i++ {
		c := b[len(b)-i]
		if !utf8.RuneStart(c) {
			continue
		}
		if utf8.FullRune(b[len(b)-i:]) {
			return b, nil
		}
		return b[:len(b)-i], b[len(b)-i:]
	}
	return b, nil
}
