package id3v2

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"io"

	"github.com/klauspost/compress/zlib"
)

// errEndOfFrames signals padding or the end of the frame region.
var errEndOfFrames = errors.New("end of frames")

// frameFlagBits maps the format and status flags of a frame to their
// bits in a version's frame header.
type frameFlagBits struct {
	tagAlter, fileAlter     uint16
	grouping                uint16
	compression, encryption uint16
	unsync, dataLength      uint16
}

var (
	v23FrameFlags = frameFlagBits{
		tagAlter:    0x8000,
		fileAlter:   0x4000,
		compression: 0x0080,
		encryption:  0x0040,
		grouping:    0x0020,
	}
	v24FrameFlags = frameFlagBits{
		tagAlter:    0x4000,
		fileAlter:   0x2000,
		grouping:    0x0040,
		compression: 0x0008,
		encryption:  0x0004,
		unsync:      0x0002,
		dataLength:  0x0001,
	}
)

func frameHeaderSize(v Version) int {
	if v.Major() == 2 {
		return 6
	}
	return 10
}

type Decoder struct {
	r io.Reader
	h TagHeader

	region *io.LimitedReader
	frames io.Reader
	done   bool
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

// Decode reads a complete tag from r. On success r is positioned
// after the tag, its padding and its footer.
func Decode(r io.Reader) (*Tag, error) {
	return NewDecoder(r).Parse()
}

// Check reports whether the data buffered in r starts with an ID3v2
// header. It doesn't consume any data.
func Check(r *bufio.Reader) (bool, error) {
	b, err := r.Peek(len(Magic))
	if err != nil {
		if err == io.EOF {
			return false, nil
		}
		return false, err
	}
	return bytes.Equal(b, Magic[:]), nil
}

// ParseHeader parses only the ID3 header and the extended header, if
// there is one.
func (d *Decoder) ParseHeader() (TagHeader, error) {
	if d.region != nil {
		return d.h, nil
	}

	header, err := readHeader(d.r)
	if err != nil {
		return TagHeader{}, err
	}
	if header.hasExtendedHeader() {
		if err := readExtendedHeader(d.r, &header); err != nil {
			return TagHeader{}, err
		}
	}

	d.h = header
	d.region = &io.LimitedReader{R: d.r, N: int64(header.FrameSize())}
	d.frames = d.region
	if header.Version.Major() < 4 && header.Flags.Unsynchronisation() {
		d.frames = newUnsynchReader(d.region)
	}

	return header, nil
}

// Parse parses a tag.
//
// When a frame fails to decode, Parse returns the frames decoded
// before it together with the error. The same tag is available from
// the error through PartialTag.
func (d *Decoder) Parse() (*Tag, error) {
	header, err := d.ParseHeader()
	if err != nil {
		return nil, err
	}

	tag := &Tag{Version: header.Version, size: header.Size}
	for {
		frame, err := d.ParseFrame()
		if err != nil {
			if err == io.EOF {
				break
			}

			return tag, withTag(err, tag)
		}
		tag.Frames = append(tag.Frames, frame)
	}

	return tag, nil
}

// ParseFrame reads the next frame. When it reaches padding or the end
// of the tag, it will discard the rest of the tag and return io.EOF.
// This leaves the reader immediately before the audio data.
func (d *Decoder) ParseFrame() (Frame, error) {
	if _, err := d.ParseHeader(); err != nil {
		return Frame{}, err
	}
	if d.done {
		return Frame{}, io.EOF
	}

	frame, err := readFrame(d.frames, d.region.N, d.h.Version, 0)
	if err == errEndOfFrames {
		d.done = true
		if err := d.finish(); err != nil {
			return Frame{}, err
		}
		return Frame{}, io.EOF
	}
	return frame, err
}

// finish discards padding and the footer.
func (d *Decoder) finish() error {
	n, err := io.Copy(io.Discard, d.region)
	if err != nil {
		return &Error{Description: "skipping padding", Err: err}
	}
	if n > 0 {
		Logging.Printf("skipped %d bytes of padding", n)
	}
	if d.h.hasFooter() {
		if _, err := io.CopyN(io.Discard, d.r, footerSize); err != nil {
			return &Error{Description: "reading footer", Err: unexpected(err)}
		}
	}
	return nil
}

// readFrame reads one frame from r, which holds at most remaining
// bytes of the frame region.
func readFrame(r io.Reader, remaining int64, v Version, depth int) (Frame, error) {
	n := frameHeaderSize(v)
	if remaining < int64(n) {
		if remaining > 0 {
			Logging.Printf("ignoring %d trailing bytes in frame region", remaining)
		}
		return Frame{}, errEndOfFrames
	}

	hdr := make([]byte, n)
	if _, err := io.ReadFull(r, hdr); err != nil {
		return Frame{}, &Error{Description: "reading frame header", Err: unexpected(err)}
	}
	if hdr[0] == 0 {
		return Frame{}, errEndOfFrames
	}

	var (
		id    []byte
		size  uint32
		flags uint16
	)
	switch v.Major() {
	case 2:
		id = hdr[:3]
		size = uint32(hdr[3])<<16 | uint32(hdr[4])<<8 | uint32(hdr[5])
	case 3:
		id = hdr[:4]
		size = binary.BigEndian.Uint32(hdr[4:8])
		flags = binary.BigEndian.Uint16(hdr[8:10])
	default:
		id = hdr[:4]
		size = desynchsafe([4]byte{hdr[4], hdr[5], hdr[6], hdr[7]})
		flags = binary.BigEndian.Uint16(hdr[8:10])
	}
	if !validID(id) {
		return Frame{}, &Error{Kind: ErrParsing, Err: NotAFrameHeader{ID: append([]byte(nil), id...)}}
	}
	frame := Frame{ID: string(id)}
	if depth > MaxNestingDepth {
		return Frame{}, wrapFrame(frame.ID, newError(ErrParsing, "frames nested deeper than %d levels", MaxNestingDepth))
	}
	if int64(size) > remaining-int64(n) {
		return Frame{}, wrapFrame(frame.ID, io.ErrUnexpectedEOF)
	}

	data := make([]byte, size)
	if _, err := io.ReadFull(r, data); err != nil {
		return Frame{}, wrapFrame(frame.ID, unexpected(err))
	}

	payload, err := frame.unwrap(data, flags, v)
	if err != nil {
		return Frame{}, wrapFrame(frame.ID, err)
	}

	content, enc, err := decodeContent(frame.ID, payload, v, depth)
	if err != nil {
		return Frame{}, wrapFrame(frame.ID, err)
	}
	frame.Content = content
	frame.Encoding = enc
	return frame, nil
}

// unwrap records the flags of a frame in f and undoes the format
// flags applied to data. The chain is unsynchronisation, then zlib,
// then the content parser.
func (f *Frame) unwrap(data []byte, flags uint16, v Version) ([]byte, error) {
	var bits frameFlagBits
	switch v.Major() {
	case 3:
		bits = v23FrameFlags
	case 4:
		bits = v24FrameFlags
	default:
		return data, nil
	}

	f.DiscardOnTagAlter = flags&bits.tagAlter != 0
	f.DiscardOnFileAlter = flags&bits.fileAlter != 0
	f.Compression = flags&bits.compression != 0
	f.Unsynchronisation = bits.unsync != 0 && flags&bits.unsync != 0

	if flags&bits.encryption != 0 {
		return nil, newError(ErrUnsupportedFeature, "encrypted frames are not supported")
	}
	if flags&bits.grouping != 0 {
		return nil, newError(ErrUnsupportedFeature, "grouped frames are not supported")
	}

	// ID3v2.3 prefixes compressed frames with the decompressed size,
	// ID3v2.4 uses the data length indicator.
	if (v.Major() == 3 && f.Compression) || (bits.dataLength != 0 && flags&bits.dataLength != 0) {
		if len(data) < 4 {
			return nil, newError(ErrParsing, "frame too short for its data length")
		}
		data = data[4:]
	}

	if !f.Compression && !f.Unsynchronisation {
		return data, nil
	}

	var r io.Reader = bytes.NewReader(data)
	if f.Unsynchronisation {
		r = newUnsynchReader(r)
	}
	if f.Compression {
		zr, err := zlib.NewReader(r)
		if err != nil {
			return nil, &Error{Kind: ErrParsing, Description: "decompressing frame", Err: err}
		}
		defer zr.Close()
		r = zr
	}
	out, err := io.ReadAll(io.LimitReader(r, maxSynchsafe))
	if err != nil {
		return nil, &Error{Kind: ErrParsing, Description: "decompressing frame", Err: err}
	}
	return out, nil
}
