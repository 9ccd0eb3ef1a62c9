package id3v2

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every error returned by the codec that is not a plain
// transport error wraps exactly one of these.
var (
	// ErrNoTag signals that no ID3v2 header is present. It means
	// "absent", not "broken".
	ErrNoTag = errors.New("no ID3v2 tag")
	// ErrParsing signals a malformed field, a missing delimiter or an
	// unknown enumerant.
	ErrParsing = errors.New("parsing error")
	// ErrInvalidInput signals content that violates a wire constraint.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnsupportedFeature signals a recognized wire feature that has
	// no implementation, such as ID3v2.2 compression.
	ErrUnsupportedFeature = errors.New("unsupported feature")
	// ErrStringDecoding signals text bytes that are invalid for their
	// claimed encoding.
	ErrStringDecoding = errors.New("string decoding error")
)

// Error is the error type returned by decoding and encoding
// operations.
type Error struct {
	// Kind is one of the Err* sentinels, or nil for transport errors.
	Kind        error
	Description string
	// Bytes holds the offending byte run of an ErrStringDecoding error.
	Bytes []byte
	// Tag holds the frames decoded before the failure, if any.
	Tag *Tag
	Err error
}

func newError(kind error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Description: fmt.Sprintf(format, args...)}
}

func (err *Error) Error() string {
	parts := make([]string, 0, 3)
	if err.Kind != nil {
		parts = append(parts, err.Kind.Error())
	}
	if err.Description != "" {
		parts = append(parts, err.Description)
	}
	if err.Err != nil {
		parts = append(parts, err.Err.Error())
	}
	return "id3v2: " + strings.Join(parts, ": ")
}

func (err *Error) Unwrap() []error {
	var errs []error
	if err.Kind != nil {
		errs = append(errs, err.Kind)
	}
	if err.Err != nil {
		errs = append(errs, err.Err)
	}
	return errs
}

// withTag attaches a partially decoded tag to err.
func withTag(err error, tag *Tag) error {
	var e *Error
	if errors.As(err, &e) {
		cp := *e
		cp.Tag = tag
		return &cp
	}
	return &Error{Tag: tag, Err: err}
}

// wrapFrame prefixes the description of err with the frame id it
// occurred in.
func wrapFrame(id string, err error) error {
	var e *Error
	if errors.As(err, &e) {
		cp := *e
		if cp.Description != "" {
			cp.Description = fmt.Sprintf("frame %s: %s", id, cp.Description)
		} else {
			cp.Description = "frame " + id
		}
		return &cp
	}
	return &Error{Description: "frame " + id, Err: err}
}

// PartialTag returns the tag attached to err, holding every frame that
// was decoded before the failure.
func PartialTag(err error) (*Tag, bool) {
	var e *Error
	if errors.As(err, &e) && e.Tag != nil {
		return e.Tag, true
	}
	return nil, false
}

type NotAFrameHeader struct {
	ID []byte
}

type UnsupportedVersion struct {
	Major, Minor byte
}

func (err NotAFrameHeader) Error() string {
	return fmt.Sprintf("not a frame header (ID = %q)", err.ID)
}

func (err UnsupportedVersion) Error() string {
	return fmt.Sprintf("unsupported version: ID3v2.%d.%d", err.Major, err.Minor)
}
