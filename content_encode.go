package id3v2

import (
	"bytes"
	"encoding/binary"
	"strings"
)

// contentEncoder accumulates the payload of a single frame.
type contentEncoder struct {
	buf      bytes.Buffer
	version  Version
	encoding Encoding
	opts     frameOptions
}

func (e *contentEncoder) byte(b byte) {
	e.buf.WriteByte(b)
}

func (e *contentEncoder) uint16(i uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], i)
	e.buf.Write(b[:])
}

func (e *contentEncoder) uint24(i uint32) {
	e.buf.Write([]byte{byte(i >> 16), byte(i >> 8), byte(i)})
}

func (e *contentEncoder) uint32(i uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], i)
	e.buf.Write(b[:])
}

func (e *contentEncoder) delim() {
	e.buf.Write(e.encoding.delim())
}

func (e *contentEncoder) string(s string) {
	e.buf.Write(e.encoding.encode(s))
}

// latin1 writes s as ISO-8859-1 followed by a single NUL.
func (e *contentEncoder) latin1(s string) {
	e.buf.Write(Latin1.encode(s))
	e.buf.WriteByte(0)
}

func (e *contentEncoder) encodingByte() {
	e.byte(e.encoding.wireByte())
}

func (e *contentEncoder) language(lang string) {
	e.buf.Write(language(lang))
}

// encodeContent returns the payload of c. enc must already be resolved
// for v.
func encodeContent(c Content, v Version, enc Encoding, opts frameOptions) ([]byte, error) {
	e := &contentEncoder{version: v, encoding: enc, opts: opts}

	var err error
	switch c := c.(type) {
	case Text:
		e.text(c)
	case ExtendedText:
		e.encodingByte()
		e.string(c.Description)
		e.delim()
		e.string(c.Value)
	case Link:
		e.buf.Write(Latin1.encode(c.URL))
	case ExtendedLink:
		e.encodingByte()
		e.string(c.Description)
		e.delim()
		e.buf.Write(Latin1.encode(c.URL))
	case EncapsulatedObject:
		e.encodingByte()
		e.latin1(c.MIMEType)
		e.string(c.Filename)
		e.delim()
		e.string(c.Description)
		e.delim()
		e.buf.Write(c.Data)
	case Comment:
		e.commentLike(c.Language, c.Description, c.Text)
	case Lyrics:
		e.commentLike(c.Language, c.Description, c.Text)
	case SynchronisedLyrics:
		err = e.synchronisedLyrics(c)
	case Popularimeter:
		e.latin1(c.User)
		e.byte(c.Rating)
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], c.Counter)
		e.buf.Write(bytes.TrimLeft(b[:], "\x00"))
	case Picture:
		err = e.picture(c)
	case Chapter:
		e.latin1(c.ElementID)
		e.uint32(c.StartTime)
		e.uint32(c.EndTime)
		e.uint32(c.StartOffset)
		e.uint32(c.EndOffset)
		err = e.frames(c.Frames)
	case TableOfContents:
		err = e.tableOfContents(c)
	case MpegLocationLookupTable:
		err = e.mpegLocationLookupTable(c)
	case Private:
		e.latin1(c.Owner)
		e.buf.Write(c.Data)
	case Unknown:
		e.buf.Write(c.Data)
	default:
		return nil, newError(ErrInvalidInput, "unsupported content %T", c)
	}
	if err != nil {
		return nil, err
	}
	return e.buf.Bytes(), nil
}

func (e *contentEncoder) text(c Text) {
	e.encodingByte()
	if e.version.Major() < 4 {
		e.string(strings.ReplaceAll(c.Text, "\x00", "/"))
		return
	}
	if e.encoding != UTF16 {
		e.string(c.Text)
		return
	}
	// Every value gets its own byte order mark.
	for i, v := range c.Values() {
		if i > 0 {
			e.delim()
		}
		e.string(v)
	}
}

func (e *contentEncoder) commentLike(lang, desc, text string) {
	e.encodingByte()
	e.language(lang)
	e.string(desc)
	e.delim()
	e.string(text)
}

func (e *contentEncoder) synchronisedLyrics(c SynchronisedLyrics) error {
	if c.TimestampFormat != TimestampMPEGFrames && c.TimestampFormat != TimestampMilliseconds {
		return newError(ErrInvalidInput, "invalid SYLT timestamp format %d", c.TimestampFormat)
	}
	if c.ContentType > LyricsTrivia {
		return newError(ErrInvalidInput, "invalid SYLT content type %d", c.ContentType)
	}

	// SYLT only knows Latin-1 and UTF-16.
	if e.encoding != Latin1 {
		e.encoding = UTF16
	}
	e.encodingByte()
	e.language(c.Language)
	e.byte(byte(c.TimestampFormat))
	e.byte(byte(c.ContentType))
	e.string(c.Description)
	e.delim()
	for _, t := range c.Content {
		e.string(t.Text)
		e.delim()
		e.uint32(t.Timestamp)
	}
	e.byte(0)
	return nil
}

func (e *contentEncoder) picture(c Picture) error {
	e.encodingByte()
	if e.version.Major() == 2 {
		format, err := pictureFormat(c.MIMEType)
		if err != nil {
			return err
		}
		e.buf.WriteString(format)
	} else {
		e.latin1(c.MIMEType)
	}
	e.byte(byte(c.PictureType))
	e.string(c.Description)
	e.delim()
	e.buf.Write(c.Data)
	return nil
}

func (e *contentEncoder) tableOfContents(c TableOfContents) error {
	if len(c.Elements) > 0xFF {
		return newError(ErrInvalidInput, "table of contents has %d entries, at most 255 are allowed", len(c.Elements))
	}
	e.latin1(c.ElementID)
	var flags byte
	if c.TopLevel {
		flags |= 2
	}
	if c.Ordered {
		flags |= 1
	}
	e.byte(flags)
	e.byte(byte(len(c.Elements)))
	for _, el := range c.Elements {
		e.latin1(el)
	}
	return e.frames(c.Frames)
}

// frames writes the sub-frames of a CHAP or CTOC frame. They are never
// unsynchronised on their own.
func (e *contentEncoder) frames(frames []Frame) error {
	if e.opts.depth >= MaxNestingDepth {
		return newError(ErrInvalidInput, "frames nested deeper than %d levels", MaxNestingDepth)
	}
	opts := frameOptions{depth: e.opts.depth + 1}
	for _, f := range frames {
		b, err := encodeFrame(f, e.version, opts)
		if err != nil {
			return wrapFrame(f.ID, err)
		}
		e.buf.Write(b)
	}
	return nil
}

func (e *contentEncoder) mpegLocationLookupTable(c MpegLocationLookupTable) error {
	if err := c.validate(); err != nil {
		return err
	}

	e.uint16(c.FramesBetweenReference)
	e.uint24(c.BytesBetweenReference)
	e.uint24(c.MillisBetweenReference)
	e.byte(c.BitsForBytes)
	e.byte(c.BitsForMillis)

	var w bitWriter
	for _, r := range c.References {
		w.put(uint64(r.DeviateBytes), uint(c.BitsForBytes))
		w.put(uint64(r.DeviateMillis), uint(c.BitsForMillis))
	}
	e.buf.Write(w.flush())
	return nil
}

// bitWriter packs big endian bit fields through a 64 bit accumulator.
// Fewer than 8 bits are pending between calls.
type bitWriter struct {
	out   []byte
	carry uint64
	n     uint
}

// put appends the low bits of v in chunks of at most 32 bits.
func (w *bitWriter) put(v uint64, bits uint) {
	for bits > 0 {
		k := bits
		if k > 32 {
			k = 32
		}
		bits -= k
		chunk := (v >> bits) & (1<<k - 1)
		w.carry |= chunk << (64 - k - w.n)
		w.n += k
		for w.n >= 8 {
			w.out = append(w.out, byte(w.carry>>56))
			w.carry <<= 8
			w.n -= 8
		}
	}
}

// flush returns the packed bytes, padding the last one with zero
// bits.
func (w *bitWriter) flush() []byte {
	if w.n > 0 {
		w.out = append(w.out, byte(w.carry>>56))
		w.carry, w.n = 0, 0
	}
	return w.out
}
