package id3v2

import (
	"bufio"
	"errors"
	"io"
	"os"
)

// shiftBufferSize is the chunk size used when moving file content.
const shiftBufferSize = 64 << 10

// Region is the half-open byte range [Start, End) a tag occupies in a
// file, padding included.
type Region struct {
	Start, End int64
}

func (r Region) Len() int64 {
	return r.End - r.Start
}

// StorageFile is a file a tag can be rewritten in. *os.File satisfies
// it.
type StorageFile interface {
	io.ReadWriteSeeker
	io.ReaderAt
	io.WriterAt
	Truncate(size int64) error
}

// Locate finds the tag at the start of rs. The returned region covers
// the header, the frames, the footer and any zero bytes following the
// tag. ok is false if rs doesn't start with a tag.
func Locate(rs io.ReadSeeker) (region Region, ok bool, err error) {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return Region{}, false, err
	}
	header, err := readHeader(rs)
	if err != nil {
		if errors.Is(err, ErrNoTag) {
			return Region{}, false, nil
		}
		return Region{}, false, err
	}

	end := int64(header.TotalSize())
	if _, err := rs.Seek(end, io.SeekStart); err != nil {
		return Region{}, false, err
	}
	zeros, err := countZeros(rs)
	if err != nil {
		return Region{}, false, err
	}
	return Region{Start: 0, End: end + zeros}, true, nil
}

// countZeros counts the zero bytes at the current position of r.
func countZeros(r io.Reader) (int64, error) {
	br := bufio.NewReader(r)
	var n int64
	for {
		b, err := br.ReadByte()
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		if b != 0 {
			return n, nil
		}
		n++
	}
}

// ReplaceRegion replaces the bytes of region with data. If data is
// shorter than the region, the excess is zero filled and nothing after
// the region is touched. If it is longer, everything after the region
// is moved back to make room.
func ReplaceRegion(f StorageFile, region Region, data []byte) error {
	old := region.Len()
	n := int64(len(data))

	if n > old {
		size, err := f.Seek(0, io.SeekEnd)
		if err != nil {
			return err
		}
		delta := n - old
		Logging.Printf("growing file by %d bytes", delta)

		buf := make([]byte, shiftBufferSize)
		for pos := size; pos > region.End; {
			chunk := int64(len(buf))
			if pos-region.End < chunk {
				chunk = pos - region.End
			}
			pos -= chunk
			if _, err := f.ReadAt(buf[:chunk], pos); err != nil && err != io.EOF {
				return err
			}
			if _, err := f.WriteAt(buf[:chunk], pos+delta); err != nil {
				return err
			}
		}
	}

	if _, err := f.WriteAt(data, region.Start); err != nil {
		return err
	}
	if n < old {
		if _, err := f.WriteAt(make([]byte, old-n), region.Start+n); err != nil {
			return err
		}
	}
	return nil
}

// WriteFile writes t to the start of f, replacing any existing tag.
// When the new tag fits into the space of the old one, its padding is
// grown to fill that space and the rest of the file stays in place.
// Otherwise opts.Padding is used.
func (t *Tag) WriteFile(f StorageFile, opts EncodeOptions) error {
	region, ok, err := Locate(f)
	if err != nil {
		return err
	}
	if !ok {
		region = Region{}
	}

	unpadded := opts
	unpadded.Padding = 0
	data, err := encodeTag(t, unpadded)
	if err != nil {
		return err
	}

	fill := region.Len() - int64(len(data))
	if fill >= 0 && int64(len(data))-tagHeaderSize+fill <= maxSynchsafe {
		opts.Padding = int(fill)
	}
	if data, err = encodeTag(t, opts); err != nil {
		return err
	}

	if err := ReplaceRegion(f, region, data); err != nil {
		return err
	}
	t.size = len(data) - tagHeaderSize
	return nil
}

// RemoveFromFile removes the tag and its padding from f. It reports
// whether there was a tag.
func RemoveFromFile(f StorageFile) (bool, error) {
	region, ok, err := Locate(f)
	if err != nil || !ok {
		return false, err
	}
	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return false, err
	}

	buf := make([]byte, shiftBufferSize)
	for pos := region.End; pos < size; {
		n, err := f.ReadAt(buf, pos)
		if n > 0 {
			if _, err := f.WriteAt(buf[:n], pos-region.Len()); err != nil {
				return false, err
			}
			pos += int64(n)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return false, err
		}
	}

	if err := f.Truncate(size - region.Len()); err != nil {
		return false, err
	}
	_, err = f.Seek(0, io.SeekStart)
	return true, err
}

// ReadFromPath decodes the tag of the named file.
func ReadFromPath(name string) (*Tag, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(bufio.NewReader(f))
}

// WriteToPath writes t to the named file, which must exist.
func (t *Tag) WriteToPath(name string, opts EncodeOptions) error {
	f, err := os.OpenFile(name, os.O_RDWR, 0)
	if err != nil {
		return err
	}
	if err := t.WriteFile(f, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// RemoveFromPath removes the tag from the named file.
func RemoveFromPath(name string) (bool, error) {
	f, err := os.OpenFile(name, os.O_RDWR, 0)
	if err != nil {
		return false, err
	}
	ok, err := RemoveFromFile(f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return ok, err
}

// IsCandidate reports whether rs is positioned at an ID3v2 header. The
// position of rs is restored.
func IsCandidate(rs io.ReadSeeker) (bool, error) {
	pos, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return false, err
	}
	var b [3]byte
	n, err := io.ReadFull(rs, b[:])
	if _, serr := rs.Seek(pos, io.SeekStart); serr != nil {
		return false, serr
	}
	if err != nil && n < len(b) {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return false, nil
		}
		return false, err
	}
	return b == Magic, nil
}

// Skip moves rs past the tag at its current position, including the
// padding that follows it. If there is no tag, rs is left in place
// and Skip returns false.
func Skip(rs io.ReadSeeker) (bool, error) {
	pos, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return false, err
	}
	header, err := readHeader(rs)
	if err != nil {
		if _, serr := rs.Seek(pos, io.SeekStart); serr != nil {
			return false, serr
		}
		if errors.Is(err, ErrNoTag) {
			return false, nil
		}
		return false, err
	}

	end := pos + int64(header.TotalSize())
	if _, err := rs.Seek(end, io.SeekStart); err != nil {
		return false, err
	}
	zeros, err := countZeros(rs)
	if err != nil {
		return false, err
	}
	_, err = rs.Seek(end+zeros, io.SeekStart)
	return true, err
}

// File is an audio file opened for editing its tag.
type File struct {
	*Tag

	f      *os.File
	hasTag bool
}

// NewFile creates a new file from an existing *os.File and Tag. If you
// plan to save tags the file needs to be opened read and write.
func NewFile(file *os.File, tag *Tag) *File {
	return &File{Tag: tag, f: file, hasTag: tag.size > 0}
}

// Open opens the file with the given name in RW mode and parses its
// tag. If there is no tag, (*File).HasTag() will return false and an
// empty ID3v2.4 tag is provided.
//
// Call Close() to close the underlying *os.File when done.
func Open(name string) (*File, error) {
	f, err := os.OpenFile(name, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}

	tag, err := Decode(bufio.NewReader(f))
	if err != nil {
		if !errors.Is(err, ErrNoTag) {
			f.Close()
			return nil, err
		}
		return &File{Tag: NewTag(), f: f}, nil
	}
	return &File{Tag: tag, f: f, hasTag: true}, nil
}

// HasTag returns true when the underlying file has a tag.
func (f *File) HasTag() bool {
	return f.hasTag
}

// Save writes the tag back to the file in the tag's version.
func (f *File) Save(opts EncodeOptions) error {
	if opts.Version == 0 {
		opts.Version = f.Tag.Version
	}
	if err := f.Tag.WriteFile(f.f, opts); err != nil {
		return err
	}
	f.hasTag = true
	return nil
}

// Audio returns a reader for the data following the tag.
func (f *File) Audio() (*io.SectionReader, error) {
	region, _, err := Locate(f.f)
	if err != nil {
		return nil, err
	}
	size, err := f.f.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}
	return io.NewSectionReader(f.f, region.End, size-region.End), nil
}

func (f *File) Close() error {
	return f.f.Close()
}
