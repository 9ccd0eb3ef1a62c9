package id3v2

import (
	"encoding/binary"
	"errors"
	"io"
)

type HeaderFlags byte

func (f HeaderFlags) Unsynchronisation() bool {
	return (f & 0x80) > 0
}

// ExtendedHeader reports the extended header bit. On ID3v2.2 the same
// bit signals compression instead.
func (f HeaderFlags) ExtendedHeader() bool {
	return (f & 0x40) > 0
}

func (f HeaderFlags) Experimental() bool {
	return (f & 0x20) > 0
}

// Footer reports whether an ID3v2.4 tag is followed by a footer.
func (f HeaderFlags) Footer() bool {
	return (f & 0x10) > 0
}

func (f HeaderFlags) UndefinedSet() bool {
	return (f & 0x0F) > 0
}

// validHeaderFlags are the flag bits each version defines.
var validHeaderFlags = map[byte]HeaderFlags{
	2: 0xC0,
	3: 0xE0,
	4: 0xF0,
}

type TagHeader struct {
	Version Version
	Flags   HeaderFlags
	// Size is the size of the tag excluding the header and the footer.
	// It includes the extended header and padding.
	Size int
	// ExtendedSize is the number of bytes taken by the extended
	// header, or 0.
	ExtendedSize int
}

// Compressed reports whether an ID3v2.2 tag claims to be compressed.
func (h TagHeader) Compressed() bool {
	return h.Version.Major() == 2 && h.Flags.ExtendedHeader()
}

func (h TagHeader) hasExtendedHeader() bool {
	return h.Version.Major() > 2 && h.Flags.ExtendedHeader()
}

func (h TagHeader) hasFooter() bool {
	return h.Version.Major() == 4 && h.Flags.Footer()
}

// FrameSize returns the length of the frame region, which includes
// padding.
func (h TagHeader) FrameSize() int {
	return h.Size - h.ExtendedSize
}

// TotalSize returns the number of bytes the tag occupies in a file,
// without any padding beyond what the header declares.
func (h TagHeader) TotalSize() int {
	n := tagHeaderSize + h.Size
	if h.hasFooter() {
		n += footerSize
	}
	return n
}

// readHeader reads an ID3v2 header. It expects the reader to be
// positioned at the beginning of the header.
func readHeader(r io.Reader) (TagHeader, error) {
	var bytes struct {
		Magic   [3]byte
		Version [2]byte
		Flags   byte
		Size    [4]byte
	}

	if err := binary.Read(r, binary.BigEndian, &bytes); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return TagHeader{}, &Error{Kind: ErrNoTag, Err: err}
		}
		return TagHeader{}, &Error{Description: "reading header", Err: err}
	}
	if bytes.Magic != Magic {
		return TagHeader{}, newError(ErrNoTag, "not an ID3v2 header: %q", bytes.Magic)
	}
	version, err := versionOf(bytes.Version[0], bytes.Version[1])
	if err != nil {
		return TagHeader{}, err
	}

	header := TagHeader{
		Version: version,
		Flags:   HeaderFlags(bytes.Flags),
		Size:    int(desynchsafe(bytes.Size)),
	}
	if header.Compressed() {
		return TagHeader{}, newError(ErrUnsupportedFeature, "ID3v2.2 compression is not supported")
	}
	if header.Flags&^validHeaderFlags[version.Major()] != 0 {
		return TagHeader{}, newError(ErrParsing, "unknown header flags %#02x", byte(header.Flags))
	}

	return header, nil
}

// readExtendedHeader reads and discards the extended header, recording
// its size in h. ID3v2.3 stores a plain size that excludes the size
// field itself, ID3v2.4 a synchsafe size of the whole header.
func readExtendedHeader(r io.Reader, h *TagHeader) error {
	var b [6]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return &Error{Description: "reading extended header", Err: unexpected(err)}
	}

	var size, total int
	var sz [4]byte
	copy(sz[:], b[:4])
	if h.Version.Major() == 3 {
		size = int(binary.BigEndian.Uint32(sz[:]))
		total = size + 4
	} else {
		size = int(desynchsafe(sz))
		total = size
	}
	if size < 6 {
		return newError(ErrParsing, "extended header size %d is too small", size)
	}
	if total > h.Size {
		return newError(ErrParsing, "extended header of %d bytes exceeds tag size %d", total, h.Size)
	}

	if _, err := io.CopyN(io.Discard, r, int64(total-len(b))); err != nil {
		return &Error{Description: "reading extended header", Err: unexpected(err)}
	}
	h.ExtendedSize = total
	return nil
}

// serialize returns the 10 byte header for a tag whose frames and
// padding take size bytes.
func (h TagHeader) serialize() []byte {
	size := synchsafe(uint32(h.Size))
	return []byte{
		Magic[0], Magic[1], Magic[2],
		h.Version.Major(), h.Version.Minor(),
		byte(h.Flags),
		size[0], size[1], size[2], size[3],
	}
}

// unexpected turns io.EOF into io.ErrUnexpectedEOF. It is used where
// the data was announced by a size field.
func unexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
