package id3v2

import (
	"bytes"
	"encoding/binary"
	"strings"
)

// contentDecoder consumes the payload of a single frame.
type contentDecoder struct {
	r       []byte
	version Version
	depth   int
}

func (d *contentDecoder) bytes(n int) ([]byte, error) {
	if n > len(d.r) {
		return nil, newError(ErrParsing, "insufficient data to decode bytes")
	}
	b := d.r[:n]
	d.r = d.r[n:]
	return b, nil
}

func (d *contentDecoder) byte() (byte, error) {
	b, err := d.bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *contentDecoder) uint16() (uint16, error) {
	b, err := d.bytes(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (d *contentDecoder) uint24() (uint32, error) {
	b, err := d.bytes(3)
	if err != nil {
		return 0, err
	}
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2]), nil
}

func (d *contentDecoder) uint32() (uint32, error) {
	b, err := d.bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (d *contentDecoder) encoding() (Encoding, error) {
	b, err := d.byte()
	if err != nil {
		return 0, err
	}
	return encodingFromByte(b)
}

// stringUntilEOF decodes the rest of the payload. A single trailing
// delimiter, as written by most taggers, is not part of the string,
// and neither is a lone zero byte after UTF-16 text.
func (d *contentDecoder) stringUntilEOF(e Encoding) (string, error) {
	b := d.r
	d.r = nil
	if (e == UTF16 || e == UTF16BE) && len(b)%2 == 1 && b[len(b)-1] == 0 {
		b = b[:len(b)-1]
	}
	if dl := e.delim(); bytes.HasSuffix(b, dl) {
		b = b[:len(b)-len(dl)]
	}
	return e.decode(b)
}

func (d *contentDecoder) stringDelimited(e Encoding) (string, error) {
	i := findDelim(e, d.r)
	if i < 0 {
		return "", newError(ErrParsing, "delimiter not found")
	}
	b := d.r[:i]
	d.r = d.r[i+len(e.delim()):]
	// Some taggers write an extra zero byte between the delimiter and
	// the byte order mark of the next string.
	if e == UTF16 && len(d.r) >= 3 && d.r[0] == 0 && isBOM(d.r[1:3]) {
		d.r = d.r[1:]
	}
	return e.decode(b)
}

func isBOM(b []byte) bool {
	return (b[0] == 0xFE && b[1] == 0xFF) || (b[0] == 0xFF && b[1] == 0xFE)
}

func (d *contentDecoder) stringFixed(n int) (string, error) {
	b, err := d.bytes(n)
	if err != nil {
		return "", err
	}
	return Latin1.decode(b)
}

func (d *contentDecoder) rest() []byte {
	b := append([]byte(nil), d.r...)
	d.r = nil
	return b
}

// decodeContent decodes the payload of a frame with the given id. The
// returned encoding is the text encoding found in the payload, or
// EncodingDefault for frames without one.
func decodeContent(id string, data []byte, v Version, depth int) (Content, Encoding, error) {
	d := &contentDecoder{r: data, version: v, depth: depth}

	var (
		c   Content
		enc Encoding
		err error
	)
	switch kindForID(id) {
	case kindPicture:
		if !decodePictures {
			return Unknown{Data: append([]byte(nil), data...), Version: v}, EncodingDefault, nil
		}
		if id == "PIC" {
			c, enc, err = d.pictureV2()
		} else {
			c, enc, err = d.pictureV3()
		}
	case kindExtendedText:
		c, enc, err = d.extendedText()
	case kindExtendedLink:
		c, enc, err = d.extendedLink()
	case kindComment:
		c, enc, err = d.comment()
	case kindPopularimeter:
		c, err = d.popularimeter()
	case kindLyrics:
		c, enc, err = d.lyrics()
	case kindSynchronisedLyrics:
		c, enc, err = d.synchronisedLyrics()
	case kindEncapsulatedObject:
		c, enc, err = d.encapsulatedObject()
	case kindText:
		c, enc, err = d.text()
	case kindLink:
		c, err = d.link()
	case kindChapter:
		c, err = d.chapter()
	case kindMpegLocationLookupTable:
		c, err = d.mpegLocationLookupTable()
	case kindPrivate:
		c, err = d.private()
	case kindTableOfContents:
		c, err = d.tableOfContents()
	default:
		Logging.Println("keeping frame", id, "opaque")
		return Unknown{Data: append([]byte(nil), data...), Version: v}, EncodingDefault, nil
	}
	return c, enc, err
}

func (d *contentDecoder) text() (Content, Encoding, error) {
	enc, err := d.encoding()
	if err != nil {
		return nil, 0, err
	}

	if d.version.Major() == 4 {
		end := findClosingDelim(enc, d.r)
		if end < 0 {
			end = len(d.r)
		}
		s, err := decodeValues(enc, d.r[:end])
		if err != nil {
			return nil, 0, err
		}
		return Text{Text: s}, enc, nil
	}

	end := findDelim(enc, d.r)
	if end < 0 {
		end = len(d.r)
	}
	s, err := enc.decode(d.r[:end])
	if err != nil {
		return nil, 0, err
	}
	return Text{Text: strings.ReplaceAll(s, "/", "\x00")}, enc, nil
}

// decodeValues decodes NUL separated values. Every UTF-16 value
// carries its own byte order mark, so they are decoded one by one.
func decodeValues(enc Encoding, b []byte) (string, error) {
	if enc != UTF16 {
		return enc.decode(b)
	}

	var values []string
	for {
		i := findDelim(enc, b)
		if i < 0 {
			break
		}
		s, err := enc.decode(b[:i])
		if err != nil {
			return "", err
		}
		values = append(values, s)
		b = b[i+2:]
	}
	s, err := enc.decode(b)
	if err != nil {
		return "", err
	}
	values = append(values, s)
	return strings.Join(values, "\x00"), nil
}

func (d *contentDecoder) link() (Content, error) {
	s, err := Latin1.decode(trimNUL(d.rest()))
	if err != nil {
		return nil, err
	}
	return Link{URL: s}, nil
}

func (d *contentDecoder) extendedText() (Content, Encoding, error) {
	enc, err := d.encoding()
	if err != nil {
		return nil, 0, err
	}
	desc, err := d.stringDelimited(enc)
	if err != nil {
		return nil, 0, err
	}
	value, err := d.stringUntilEOF(enc)
	if err != nil {
		return nil, 0, err
	}
	return ExtendedText{Description: desc, Value: value}, enc, nil
}

func (d *contentDecoder) extendedLink() (Content, Encoding, error) {
	enc, err := d.encoding()
	if err != nil {
		return nil, 0, err
	}
	desc, err := d.stringDelimited(enc)
	if err != nil {
		return nil, 0, err
	}
	url, err := Latin1.decode(trimNUL(d.rest()))
	if err != nil {
		return nil, 0, err
	}
	return ExtendedLink{Description: desc, URL: url}, enc, nil
}

// commentLike decodes the layout shared by COMM and USLT.
func (d *contentDecoder) commentLike() (lang, desc, text string, enc Encoding, err error) {
	if enc, err = d.encoding(); err != nil {
		return
	}
	if lang, err = d.stringFixed(3); err != nil {
		return
	}
	if desc, err = d.stringDelimited(enc); err != nil {
		return
	}
	text, err = d.stringUntilEOF(enc)
	return
}

func (d *contentDecoder) comment() (Content, Encoding, error) {
	lang, desc, text, enc, err := d.commentLike()
	if err != nil {
		return nil, 0, err
	}
	return Comment{Language: lang, Description: desc, Text: text}, enc, nil
}

func (d *contentDecoder) lyrics() (Content, Encoding, error) {
	lang, desc, text, enc, err := d.commentLike()
	if err != nil {
		return nil, 0, err
	}
	return Lyrics{Language: lang, Description: desc, Text: text}, enc, nil
}

func (d *contentDecoder) popularimeter() (Content, error) {
	user, err := d.stringDelimited(Latin1)
	if err != nil {
		return nil, err
	}
	rating, err := d.byte()
	if err != nil {
		return nil, err
	}
	r := d.rest()
	if len(r) > 8 {
		r = r[:8]
	}
	var bin [8]byte
	copy(bin[8-len(r):], r)
	return Popularimeter{User: user, Rating: rating, Counter: binary.BigEndian.Uint64(bin[:])}, nil
}

func (d *contentDecoder) synchronisedLyrics() (Content, Encoding, error) {
	b, err := d.byte()
	if err != nil {
		return nil, 0, err
	}
	var enc Encoding
	switch b {
	case 0:
		enc = Latin1
	case 1:
		enc = UTF16
	default:
		return nil, 0, newError(ErrParsing, "invalid SYLT encoding %d", b)
	}

	lang, err := d.stringFixed(3)
	if err != nil {
		return nil, 0, err
	}
	format, err := d.byte()
	if err != nil {
		return nil, 0, err
	}
	if format != byte(TimestampMPEGFrames) && format != byte(TimestampMilliseconds) {
		return nil, 0, newError(ErrParsing, "invalid SYLT timestamp format %d", format)
	}
	typ, err := d.byte()
	if err != nil {
		return nil, 0, err
	}
	if typ > byte(LyricsTrivia) {
		return nil, 0, newError(ErrParsing, "invalid SYLT content type %d", typ)
	}

	c := SynchronisedLyrics{
		Language:        lang,
		TimestampFormat: TimestampFormat(format),
		ContentType:     SynchronisedLyricsType(typ),
	}
	first := true
	// A single zero byte terminates the list.
	for len(d.r) > 1 {
		i := findDelim(enc, d.r)
		if i < 0 {
			break
		}
		text, err := enc.decode(d.r[:i])
		if err != nil {
			return nil, 0, err
		}
		d.r = d.r[i+len(enc.delim()):]

		if first {
			c.Description = text
			first = false
			continue
		}
		ts, err := d.uint32()
		if err != nil {
			return nil, 0, err
		}
		c.Content = append(c.Content, SyncedText{Timestamp: ts, Text: text})
	}
	return c, enc, nil
}

func (d *contentDecoder) encapsulatedObject() (Content, Encoding, error) {
	enc, err := d.encoding()
	if err != nil {
		return nil, 0, err
	}
	mime, err := d.stringDelimited(Latin1)
	if err != nil {
		return nil, 0, err
	}
	filename, err := d.stringDelimited(enc)
	if err != nil {
		return nil, 0, err
	}
	desc, err := d.stringDelimited(enc)
	if err != nil {
		return nil, 0, err
	}
	return EncapsulatedObject{
		MIMEType:    mime,
		Filename:    filename,
		Description: desc,
		Data:        d.rest(),
	}, enc, nil
}

func (d *contentDecoder) pictureV2() (Content, Encoding, error) {
	enc, err := d.encoding()
	if err != nil {
		return nil, 0, err
	}
	format, err := d.stringFixed(3)
	if err != nil {
		return nil, 0, err
	}
	var mime string
	switch format {
	case "PNG":
		mime = "image/png"
	case "JPG":
		mime = "image/jpeg"
	default:
		return nil, 0, newError(ErrUnsupportedFeature, "can't determine MIME type for image format %q", format)
	}
	return d.pictureTail(enc, mime)
}

func (d *contentDecoder) pictureV3() (Content, Encoding, error) {
	enc, err := d.encoding()
	if err != nil {
		return nil, 0, err
	}
	mime, err := d.stringDelimited(Latin1)
	if err != nil {
		return nil, 0, err
	}
	return d.pictureTail(enc, mime)
}

func (d *contentDecoder) pictureTail(enc Encoding, mime string) (Content, Encoding, error) {
	typ, err := d.byte()
	if err != nil {
		return nil, 0, err
	}
	desc, err := d.stringDelimited(enc)
	if err != nil {
		return nil, 0, err
	}
	return Picture{
		MIMEType:    mime,
		PictureType: PictureType(typ),
		Description: desc,
		Data:        d.rest(),
	}, enc, nil
}

func (d *contentDecoder) chapter() (Content, error) {
	var (
		c   Chapter
		err error
	)
	if c.ElementID, err = d.stringDelimited(Latin1); err != nil {
		return nil, err
	}
	for _, p := range []*uint32{&c.StartTime, &c.EndTime, &c.StartOffset, &c.EndOffset} {
		if *p, err = d.uint32(); err != nil {
			return nil, err
		}
	}
	if c.Frames, err = d.frames(); err != nil {
		return nil, err
	}
	return c, nil
}

func (d *contentDecoder) tableOfContents() (Content, error) {
	var (
		c   TableOfContents
		err error
	)
	if c.ElementID, err = d.stringDelimited(Latin1); err != nil {
		return nil, err
	}
	flags, err := d.byte()
	if err != nil {
		return nil, err
	}
	c.TopLevel = flags&2 != 0
	c.Ordered = flags&1 != 0
	n, err := d.byte()
	if err != nil {
		return nil, err
	}
	for i := 0; i < int(n); i++ {
		e, err := d.stringDelimited(Latin1)
		if err != nil {
			return nil, err
		}
		c.Elements = append(c.Elements, e)
	}
	if c.Frames, err = d.frames(); err != nil {
		return nil, err
	}
	return c, nil
}

// frames decodes the sub-frames that fill the rest of a CHAP or CTOC
// payload.
func (d *contentDecoder) frames() ([]Frame, error) {
	r := bytes.NewReader(d.rest())
	var frames []Frame
	for {
		f, err := readFrame(r, int64(r.Len()), d.version, d.depth+1)
		if err != nil {
			if err == errEndOfFrames {
				return frames, nil
			}
			return nil, err
		}
		frames = append(frames, f)
	}
}

func (d *contentDecoder) mpegLocationLookupTable() (Content, error) {
	var (
		c   MpegLocationLookupTable
		err error
	)
	if c.FramesBetweenReference, err = d.uint16(); err != nil {
		return nil, err
	}
	if c.BytesBetweenReference, err = d.uint24(); err != nil {
		return nil, err
	}
	if c.MillisBetweenReference, err = d.uint24(); err != nil {
		return nil, err
	}
	if c.BitsForBytes, err = d.byte(); err != nil {
		return nil, err
	}
	if c.BitsForMillis, err = d.byte(); err != nil {
		return nil, err
	}
	if c.BitsForBytes == 0 {
		return nil, newError(ErrInvalidInput, "MLLT bits for bytes must be > 0")
	}
	if c.BitsForMillis == 0 {
		return nil, newError(ErrInvalidInput, "MLLT bits for millis must be > 0")
	}

	br := bitReader{data: d.rest()}
	bb, bm := uint(c.BitsForBytes), uint(c.BitsForMillis)
	for {
		// Fewer bits than one reference, or only zero bits, after
		// the last byte are the padding of the final byte. A zero
		// reference in the last byte is therefore read as padding.
		if len(br.data) == 0 && (br.n < bb+bm || br.carry == 0) {
			break
		}
		db, ok := br.get(bb)
		if !ok {
			return nil, newError(ErrInvalidInput, "MLLT not enough bits left for reference: %d<%d", br.n, bb)
		}
		dm, ok := br.get(bm)
		if !ok {
			return nil, newError(ErrInvalidInput, "MLLT not enough bits left for reference: %d<%d", br.n, bm)
		}
		if db > 0xFFFFFFFF || dm > 0xFFFFFFFF {
			return nil, newError(ErrParsing, "MLLT deviation does not fit in 32 bits")
		}
		c.References = append(c.References, MpegLocationLookupTableReference{
			DeviateBytes:  uint32(db),
			DeviateMillis: uint32(dm),
		})
	}
	return c, nil
}

func (d *contentDecoder) private() (Content, error) {
	owner, err := d.stringDelimited(Latin1)
	if err != nil {
		return nil, err
	}
	return Private{Owner: owner, Data: d.rest()}, nil
}

// bitReader reads big endian bit fields from a byte slice through a 64
// bit accumulator. The next unread bit is the top bit of carry.
type bitReader struct {
	data  []byte
	carry uint64
	n     uint
}

// get reads a field of up to 64 bits in chunks of at most 32 bits.
func (r *bitReader) get(bits uint) (uint64, bool) {
	var v uint64
	for bits > 0 {
		k := bits
		if k > 32 {
			k = 32
		}
		for r.n < k && len(r.data) > 0 {
			r.carry |= uint64(r.data[0]) << (56 - r.n)
			r.n += 8
			r.data = r.data[1:]
		}
		if r.n < k {
			return 0, false
		}
		v = v<<k | r.carry>>(64-k)
		r.carry <<= k
		r.n -= k
		bits -= k
	}
	return v, true
}
