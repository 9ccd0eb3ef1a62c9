package id3v2

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/go-audio/riff"
)

var (
	chunkIDUpper = [4]byte{'I', 'D', '3', ' '}
	chunkIDLower = [4]byte{'i', 'd', '3', ' '}
)

func isTagChunk(id [4]byte) bool {
	return id == chunkIDUpper || id == chunkIDLower
}

// ReadWAV reads the tag stored in the "ID3 " chunk of a RIFF WAVE
// stream.
func ReadWAV(r io.Reader) (*Tag, error) {
	p := riff.New(r)
	if err := p.ParseHeaders(); err != nil {
		if p.ID != riff.RiffID || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, &Error{Kind: ErrNoTag, Description: "not a RIFF file", Err: err}
		}
		return nil, err
	}
	if p.Format != riff.WavFormatID {
		return nil, newError(ErrNoTag, "RIFF format %q is not WAVE", p.Format[:])
	}

	for {
		ch, err := p.NextChunk()
		if err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil, newError(ErrNoTag, "no ID3 chunk found")
			}
			return nil, err
		}
		if isTagChunk(ch.ID) {
			return Decode(io.LimitReader(ch, int64(ch.Size)))
		}
		ch.Drain()
	}
}

// ReadAIFF reads the tag stored in the "ID3 " chunk of an AIFF or
// AIFF-C stream.
func ReadAIFF(rs io.ReadSeeker) (*Tag, error) {
	var form struct {
		ID   [4]byte
		Size uint32
		Type [4]byte
	}
	if err := binary.Read(rs, binary.BigEndian, &form); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, &Error{Kind: ErrNoTag, Description: "not an AIFF file", Err: err}
		}
		return nil, err
	}
	if string(form.ID[:]) != "FORM" || (string(form.Type[:]) != "AIFF" && string(form.Type[:]) != "AIFC") {
		return nil, newError(ErrNoTag, "not an AIFF file")
	}

	for {
		var chunk struct {
			ID   [4]byte
			Size uint32
		}
		if err := binary.Read(rs, binary.BigEndian, &chunk); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil, newError(ErrNoTag, "no ID3 chunk found")
			}
			return nil, err
		}
		if isTagChunk(chunk.ID) {
			return Decode(io.LimitReader(rs, int64(chunk.Size)))
		}
		// Chunks are padded to an even size.
		skip := int64(chunk.Size) + int64(chunk.Size%2)
		if _, err := rs.Seek(skip, io.SeekCurrent); err != nil {
			return nil, err
		}
	}
}
