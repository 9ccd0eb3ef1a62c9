package id3v2

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Encoding is the text encoding of a frame.
type Encoding byte

const (
	// EncodingDefault resolves to UTF-16 on ID3v2.2 and ID3v2.3 and to
	// UTF-8 on ID3v2.4.
	EncodingDefault Encoding = iota
	Latin1
	UTF16 // with byte order mark
	UTF16BE
	UTF8
)

var (
	nul    = []byte{0}
	nulnul = []byte{0, 0}
)

func (e Encoding) String() string {
	switch e {
	case EncodingDefault:
		return "default"
	case Latin1:
		return "ISO-8859-1"
	case UTF16:
		return "UTF-16"
	case UTF16BE:
		return "UTF-16BE"
	case UTF8:
		return "UTF-8"
	}
	return "unknown"
}

func encodingFromByte(b byte) (Encoding, error) {
	switch b {
	case 0:
		return Latin1, nil
	case 1:
		return UTF16, nil
	case 2:
		return UTF16BE, nil
	case 3:
		return UTF8, nil
	}
	return 0, newError(ErrParsing, "unknown text encoding %d", b)
}

// wireByte returns the encoding selector written in front of text.
func (e Encoding) wireByte() byte {
	switch e {
	case UTF16:
		return 1
	case UTF16BE:
		return 2
	case UTF8:
		return 3
	}
	return 0
}

// resolve maps e to an encoding that v can represent.
func (e Encoding) resolve(v Version) Encoding {
	switch v.base() {
	case Version22, Version23:
		switch e {
		case Latin1, UTF16:
			return e
		}
		return UTF16
	}
	if e == EncodingDefault {
		return UTF8
	}
	return e
}

func (e Encoding) delim() []byte {
	if e == UTF16 || e == UTF16BE {
		return nulnul
	}
	return nul
}

func (e Encoding) decode(b []byte) (string, error) {
	var dec *encoding.Decoder
	switch e {
	case UTF8:
		if !utf8.Valid(b) {
			i := 0
			for i < len(b) {
				r, size := utf8.DecodeRune(b[i:])
				if r == utf8.RuneError && size <= 1 {
					break
				}
				i += size
			}
			return "", &Error{
				Kind:        ErrStringDecoding,
				Description: "data is not valid UTF-8",
				Bytes:       append([]byte(nil), b[i:]...),
			}
		}
		return string(b), nil
	case UTF16:
		// ID3v2 allows UTF-16 with a BOM or as big endian, so text
		// without a BOM is read as big endian.
		dec = unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
	case UTF16BE:
		dec = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
	default:
		dec = charmap.ISO8859_1.NewDecoder()
	}

	out, err := dec.Bytes(b)
	if err != nil {
		return "", &Error{
			Kind:        ErrStringDecoding,
			Description: "data is not valid " + e.String(),
			Bytes:       append([]byte(nil), b...),
			Err:         err,
		}
	}
	return string(out), nil
}

func (e Encoding) encode(s string) []byte {
	var enc *encoding.Encoder
	switch e {
	case UTF8, EncodingDefault:
		return []byte(s)
	case UTF16:
		enc = unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	case UTF16BE:
		enc = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewEncoder()
	default:
		// Runes outside of Latin-1 become the substitute character.
		enc = encoding.ReplaceUnsupported(charmap.ISO8859_1.NewEncoder())
	}

	out, err := enc.Bytes([]byte(s))
	if err != nil {
		// The encoders above replace what they cannot represent
		// and never fail on valid input.
		Logging.Println("encoding", e, "failed:", err)
		return nil
	}
	return out
}

// findDelim returns the index of the first delimiter for e in data.
// For the UTF-16 forms only even offsets are considered.
func findDelim(e Encoding, data []byte) int {
	if e != UTF16 && e != UTF16BE {
		return bytes.IndexByte(data, 0)
	}
	for i := 0; i+1 < len(data); i += 2 {
		if data[i] == 0 && data[i+1] == 0 {
			return i
		}
	}
	return -1
}

// findClosingDelim returns the index of the delimiter that terminates
// data, skipping any delimiters that separate values in front of it.
// It returns -1 if data does not end in a delimiter.
func findClosingDelim(e Encoding, data []byte) int {
	if e != UTF16 && e != UTF16BE {
		i := len(data)
		for i > 0 && data[i-1] == 0 {
			i--
		}
		if i == len(data) {
			return -1
		}
		return i
	}

	i := len(data) - len(data)%2
	for i >= 2 && data[i-2] == 0 && data[i-1] == 0 {
		i -= 2
	}
	if i == len(data)-len(data)%2 {
		return -1
	}
	return i
}
