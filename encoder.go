package id3v2

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/klauspost/compress/zlib"
)

// DefaultPadding is the padding written by (*Tag).Encode.
const DefaultPadding = 1024

// EncodeOptions control how a tag is written.
type EncodeOptions struct {
	// Version is the version to write. The zero value writes the
	// version of the tag, or ID3v2.4 if the tag has none.
	Version Version
	// Unsynchronisation applies the unsynchronisation scheme to the
	// whole frame region on ID3v2.2 and ID3v2.3 and to every frame on
	// ID3v2.4.
	Unsynchronisation bool
	// Compression compresses every frame. It is not available on
	// ID3v2.2.
	Compression bool
	// FileAltered drops frames that describe the audio data, for
	// use after the audio has been modified.
	FileAltered bool
	// Padding is the number of zero bytes written after the frames.
	Padding int
}

// frameOptions are the format options applied to a single frame.
type frameOptions struct {
	compression bool
	unsync      bool
	depth       int
}

type Encoder struct {
	w    io.Writer
	opts EncodeOptions
}

func NewEncoder(w io.Writer, opts EncodeOptions) *Encoder {
	return &Encoder{w: w, opts: opts}
}

// Encode writes t. All frames are validated and encoded before the
// first byte is written, so a failed Encode leaves w untouched.
func (e *Encoder) Encode(t *Tag) error {
	b, err := encodeTag(t, e.opts)
	if err != nil {
		return err
	}
	if _, err := e.w.Write(b); err != nil {
		return &Error{Description: "writing tag", Err: err}
	}
	return nil
}

// Encode writes t in its own version with DefaultPadding.
func (t *Tag) Encode(w io.Writer) error {
	return NewEncoder(w, EncodeOptions{Version: t.Version, Padding: DefaultPadding}).Encode(t)
}

func (opts EncodeOptions) version(t *Tag) Version {
	v := opts.Version
	if v == 0 {
		v = t.Version
	}
	if v == 0 {
		v = Version24
	}
	return v.base()
}

// encodeTag returns the complete tag, header and padding included.
func encodeTag(t *Tag, opts EncodeOptions) ([]byte, error) {
	v := opts.version(t)
	if _, err := versionOf(v.Major(), 0); err != nil {
		return nil, err
	}
	if opts.Padding < 0 {
		return nil, newError(ErrInvalidInput, "negative padding")
	}
	if v.Major() == 2 && opts.Compression {
		return nil, newError(ErrUnsupportedFeature, "ID3v2.2 compression is not supported")
	}

	frames := filterFrames(t.Frames, opts.FileAltered)
	for _, f := range frames {
		if err := f.Validate(v); err != nil {
			return nil, wrapFrame(f.ID, err)
		}
	}

	var region bytes.Buffer
	for _, f := range frames {
		fo := frameOptions{
			compression: f.Compression || opts.Compression,
			unsync:      v.Major() == 4 && (f.Unsynchronisation || opts.Unsynchronisation),
		}
		b, err := encodeFrame(f, v, fo)
		if err != nil {
			return nil, wrapFrame(f.ID, err)
		}
		region.Write(b)
	}

	data := region.Bytes()
	if v.Major() < 4 && opts.Unsynchronisation {
		data = unsynchronise(data)
	}

	size := len(data) + opts.Padding
	if size > maxSynchsafe {
		return nil, newError(ErrInvalidInput, "tag size %d exceeds %d bytes", size, maxSynchsafe)
	}

	header := TagHeader{Version: v, Size: size}
	if opts.Unsynchronisation {
		header.Flags |= 0x80
	}

	out := make([]byte, 0, tagHeaderSize+size)
	out = append(out, header.serialize()...)
	out = append(out, data...)
	out = append(out, make([]byte, opts.Padding)...)
	return out, nil
}

// filterFrames drops the frames that must not survive a rewrite of
// the tag, and those tied to the audio data if the file was altered.
func filterFrames(frames []Frame, fileAltered bool) []Frame {
	out := make([]Frame, 0, len(frames))
	for _, f := range frames {
		if f.DiscardOnTagAlter {
			Logging.Println("discarding frame", f.ID, "on tag alteration")
			continue
		}
		if fileAltered && (f.DiscardOnFileAlter || discardedOnFileAlter(f.ID)) {
			Logging.Println("discarding frame", f.ID, "on file alteration")
			continue
		}
		out = append(out, f)
	}
	return out
}

func discardedOnFileAlter(id string) bool {
	id = normalizeID(id)
	for _, d := range fileDiscard {
		if d == id {
			return true
		}
	}
	return false
}

// encodeFrame returns a frame including its header, with the id
// converted for v.
func encodeFrame(f Frame, v Version, opts frameOptions) ([]byte, error) {
	id, ok := idForVersion(f.ID, v)
	if !ok {
		return nil, newError(ErrInvalidInput, "frame %s has no %s equivalent", f.ID, v)
	}
	if opts.depth > 0 {
		// Sub-frames carry their own format flags.
		opts.compression = f.Compression
		opts.unsync = false
	}

	payload, err := encodeContent(f.Content, v, f.Encoding.resolve(v), opts)
	if err != nil {
		return nil, err
	}

	var flags uint16
	data := payload
	switch v.Major() {
	case 2:
		if opts.compression {
			return nil, newError(ErrUnsupportedFeature, "ID3v2.2 compression is not supported")
		}
		if len(data) > 0xFFFFFF {
			return nil, newError(ErrInvalidInput, "frame of %d bytes is too large", len(data))
		}
		out := make([]byte, 0, 6+len(data))
		out = append(out, id...)
		out = append(out, byte(len(data)>>16), byte(len(data)>>8), byte(len(data)))
		return append(out, data...), nil
	case 3:
		flags = statusFlags(f, v23FrameFlags)
		if opts.compression {
			flags |= v23FrameFlags.compression
			z, err := compress(payload)
			if err != nil {
				return nil, err
			}
			var n [4]byte
			binary.BigEndian.PutUint32(n[:], uint32(len(payload)))
			data = append(n[:], z...)
		}
	default:
		flags = statusFlags(f, v24FrameFlags)
		if opts.compression {
			flags |= v24FrameFlags.compression
			if data, err = compress(payload); err != nil {
				return nil, err
			}
		}
		if opts.unsync {
			flags |= v24FrameFlags.unsync
			data = unsynchronise(data)
		}
		if opts.compression {
			if len(payload) > maxSynchsafe {
				return nil, newError(ErrInvalidInput, "frame of %d bytes is too large", len(payload))
			}
			flags |= v24FrameFlags.dataLength
			n := synchsafe(uint32(len(payload)))
			data = append(n[:], data...)
		}
	}

	var size [4]byte
	if v.Major() == 3 {
		binary.BigEndian.PutUint32(size[:], uint32(len(data)))
	} else {
		if len(data) > maxSynchsafe {
			return nil, newError(ErrInvalidInput, "frame of %d bytes is too large", len(data))
		}
		size = synchsafe(uint32(len(data)))
	}

	out := make([]byte, 0, 10+len(data))
	out = append(out, id...)
	out = append(out, size[:]...)
	out = append(out, byte(flags>>8), byte(flags))
	return append(out, data...), nil
}

func statusFlags(f Frame, bits frameFlagBits) uint16 {
	var flags uint16
	if f.DiscardOnTagAlter {
		flags |= bits.tagAlter
	}
	if f.DiscardOnFileAlter {
		flags |= bits.fileAlter
	}
	return flags
}

func compress(b []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(b); err != nil {
		return nil, &Error{Description: "compressing frame", Err: err}
	}
	if err := zw.Close(); err != nil {
		return nil, &Error{Description: "compressing frame", Err: err}
	}
	return buf.Bytes(), nil
}
