package utils

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

// ErrDecode is returned when a file is neither valid UTF-8 nor UTF-16.
var ErrDecode = errors.New("undecodable text")

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// ReadText reads path and returns its content as UTF-8.
func ReadText(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return DecodeText(raw)
}

// DecodeText tries UTF-8 first and falls back to UTF-16. A UTF-16 byte order
// mark selects UTF-16 directly; without one little-endian is assumed.
// NUL bytes never occur in the text exports, so their presence also selects
// UTF-16. A leading UTF-8 BOM is dropped.
func DecodeText(raw []byte) ([]byte, error) {
	if !looksUTF16(raw) && utf8.Valid(raw) {
		return bytes.TrimPrefix(raw, bomUTF8), nil
	}
	if len(raw)%2 != 0 {
		return nil, fmt.Errorf("%w: odd byte count for utf-16", ErrDecode)
	}
	if err := checkSurrogates(raw); err != nil {
		return nil, err
	}
	dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	out, err := dec.Bytes(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return out, nil
}

func looksUTF16(raw []byte) bool {
	if bytes.HasPrefix(raw, bomUTF16LE) || bytes.HasPrefix(raw, bomUTF16BE) {
		return true
	}
	return bytes.IndexByte(raw, 0) >= 0
}

// checkSurrogates rejects UTF-16 input holding an unpaired surrogate, which
// the x/text decoder would otherwise replace with U+FFFD.
func checkSurrogates(raw []byte) error {
	var order binary.ByteOrder = binary.LittleEndian
	if bytes.HasPrefix(raw, bomUTF16BE) {
		order = binary.BigEndian
	}
	high := false
	for i := 0; i+1 < len(raw); i += 2 {
		u := order.Uint16(raw[i:])
		switch {
		case u >= 0xD800 && u <= 0xDBFF:
			if high {
				return fmt.Errorf("%w: unpaired surrogate at byte %d", ErrDecode, i-2)
			}
			high = true
		case u >= 0xDC00 && u <= 0xDFFF:
			if !high {
				return fmt.Errorf("%w: unpaired surrogate at byte %d", ErrDecode, i)
			}
			high = false
		default:
			if high {
				return fmt.Errorf("%w: unpaired surrogate at byte %d", ErrDecode, i-2)
			}
		}
	}
	if high {
		return fmt.Errorf("%w: unpaired surrogate at byte %d", ErrDecode, len(raw)-2)
	}
	return nil
}

// SplitLines splits on \n and drops a trailing \r from each line. A final
// newline does not produce an extra empty line.
func SplitLines(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.TrimSuffix(s, "\n")
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
