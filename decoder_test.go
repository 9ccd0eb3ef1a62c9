package id3v2

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
)

// rawFrame returns a frame header for data in the layout of v,
// followed by data.
func rawFrame(v Version, id string, flags uint16, data []byte) []byte {
	var b []byte
	switch v.Major() {
	case 2:
		n := len(data)
		b = append([]byte(id), byte(n>>16), byte(n>>8), byte(n))
	case 3:
		b = append([]byte(id), 0, 0, 0, 0, byte(flags>>8), byte(flags))
		binary.BigEndian.PutUint32(b[4:8], uint32(len(data)))
	default:
		size := synchsafe(uint32(len(data)))
		b = append([]byte(id), size[0], size[1], size[2], size[3], byte(flags>>8), byte(flags))
	}
	return append(b, data...)
}

func TestDecodeVersions(t *testing.T) {
	tests := []struct {
		v    Version
		ids  [2]string
		text byte
	}{
		{Version22, [2]string{"TT2", "TP1"}, 0},
		{Version23, [2]string{"TIT2", "TPE1"}, 0},
		{Version24, [2]string{"TIT2", "TPE1"}, 3},
	}

	for _, test := range tests {
		var body []byte
		body = append(body, rawFrame(test.v, test.ids[0], 0, append([]byte{test.text}, "Title"...))...)
		body = append(body, rawFrame(test.v, test.ids[1], 0, append([]byte{test.text}, "Artist"...))...)
		body = append(body, make([]byte, 64)...)

		tag, err := Decode(bytes.NewReader(rawTag(test.v.Major(), 0, body)))
		if err != nil {
			t.Errorf("%s: %s", test.v, err)
			continue
		}
		if tag.Version != test.v || len(tag.Frames) != 2 {
			t.Errorf("%s: unexpected tag %v", test.v, tag.Frames)
			continue
		}
		if tag.Frames[0].ID != test.ids[0] {
			t.Errorf("%s: frame ids aren't kept, got %s", test.v, tag.Frames[0].ID)
		}
		if tag.Title() != "Title" || tag.Artist() != "Artist" {
			t.Errorf("%s: got %q by %q", test.v, tag.Title(), tag.Artist())
		}
	}
}

func TestDecodeMultipleValues(t *testing.T) {
	tests := []struct {
		v    Version
		data []byte
	}{
		{Version23, []byte("\x00a/b")},
		{Version24, []byte("\x03a\x00b\x00")},
		{Version24, []byte("\x03a\x00b")},
		{Version24, []byte{1, 0xFF, 0xFE, 'a', 0, 0, 0, 0xFE, 0xFF, 0, 'b', 0, 0}},
	}

	for i, test := range tests {
		tag, err := Decode(bytes.NewReader(rawTag(test.v.Major(), 0, rawFrame(test.v, "TPE1", 0, test.data))))
		if err != nil {
			t.Errorf("%d: %s", i, err)
			continue
		}
		if got := tag.TextFrame("TPE1"); got != "a\x00b" {
			t.Errorf("%d: got %q", i, got)
		}
	}
}

func TestDecodeUnsynchronisedRegion(t *testing.T) {
	frame := rawFrame(Version23, "PRIV", 0, []byte{'o', 0, 0xFF, 0xE0, 0xFF})
	tag, err := Decode(bytes.NewReader(rawTag(3, 0x80, unsynchronise(frame))))
	if err != nil {
		t.Fatal(err)
	}
	p, ok := tag.Frames[0].Content.(Private)
	if !ok || p.Owner != "o" || !bytes.Equal(p.Data, []byte{0xFF, 0xE0, 0xFF}) {
		t.Errorf("unexpected content %#v", tag.Frames[0].Content)
	}
}

func TestDecodeTruncated(t *testing.T) {
	body := rawFrame(Version24, "TIT2", 0, []byte("\x03Title"))
	body = append(body, rawFrame(Version24, "TPE1", 0, []byte("\x03Artist"))...)
	in := rawTag(4, 0, body)
	// Declare more frame data than the tag holds.
	in[len(in)-len("\x03Artist")-3] = 0x7F

	tag, err := Decode(bytes.NewReader(in))
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected an unexpected EOF, got %v", err)
	}
	if tag == nil || len(tag.Frames) != 1 || tag.Title() != "Title" {
		t.Fatalf("expected the partial tag, got %v", tag)
	}
	partial, ok := PartialTag(err)
	if !ok || partial != tag {
		t.Error("PartialTag didn't return the partial tag")
	}
}

func TestDecodeInvalidFrameID(t *testing.T) {
	body := rawFrame(Version24, "TIT2", 0, []byte("\x03Title"))
	body = append(body, rawFrame(Version24, "ti t", 0, []byte("\x03x"))...)

	_, err := Decode(bytes.NewReader(rawTag(4, 0, body)))
	var nafh NotAFrameHeader
	if !errors.Is(err, ErrParsing) || !errors.As(err, &nafh) {
		t.Fatalf("expected NotAFrameHeader, got %v", err)
	}
	if string(nafh.ID) != "ti t" {
		t.Errorf("got id %q", nafh.ID)
	}
}

func TestDecodeFrameFlags(t *testing.T) {
	tests := []struct {
		v     Version
		flags uint16
		kind  error
	}{
		{Version23, 0x0040, ErrUnsupportedFeature},
		{Version23, 0x0020, ErrUnsupportedFeature},
		{Version24, 0x0004, ErrUnsupportedFeature},
		{Version24, 0x0040, ErrUnsupportedFeature},
	}

	for _, test := range tests {
		body := rawFrame(test.v, "TIT2", test.flags, []byte("\x00Title"))
		_, err := Decode(bytes.NewReader(rawTag(test.v.Major(), 0, body)))
		if !errors.Is(err, test.kind) {
			t.Errorf("%s flags %#04x: expected %v, got %v", test.v, test.flags, test.kind, err)
		}
	}
}

func TestDecodeStatusFlags(t *testing.T) {
	body := rawFrame(Version24, "TIT2", 0x6000, []byte("\x03Title"))
	tag, err := Decode(bytes.NewReader(rawTag(4, 0, body)))
	if err != nil {
		t.Fatal(err)
	}
	f := tag.Frames[0]
	if !f.DiscardOnTagAlter || !f.DiscardOnFileAlter {
		t.Errorf("status flags weren't decoded: %+v", f)
	}
}

func TestDecodeUnknownFrame(t *testing.T) {
	body := rawFrame(Version24, "XYZW", 0, []byte{1, 2, 3})
	tag, err := Decode(bytes.NewReader(rawTag(4, 0, body)))
	if err != nil {
		t.Fatal(err)
	}
	u, ok := tag.Frames[0].Content.(Unknown)
	if !ok || !bytes.Equal(u.Data, []byte{1, 2, 3}) || u.Version != Version24 {
		t.Errorf("unexpected content %#v", tag.Frames[0].Content)
	}
}

func TestDecodeNesting(t *testing.T) {
	// A CHAP nested in itself MaxNestingDepth+2 times.
	frame := rawFrame(Version24, "TIT2", 0, []byte("\x03x"))
	for i := 0; i < MaxNestingDepth+2; i++ {
		data := append([]byte("c\x00"), make([]byte, 16)...)
		frame = rawFrame(Version24, "CHAP", 0, append(data, frame...))
	}

	_, err := Decode(bytes.NewReader(rawTag(4, 0, frame)))
	if !errors.Is(err, ErrParsing) {
		t.Errorf("expected a parsing error, got %v", err)
	}
}

func TestParseFrame(t *testing.T) {
	body := rawFrame(Version24, "TIT2", 0, []byte("\x03Title"))
	in := append(rawTag(4, 0, append(body, 0, 0, 0, 0)), "audio"...)
	r := bytes.NewReader(in)
	d := NewDecoder(r)

	f, err := d.ParseFrame()
	if err != nil {
		t.Fatal(err)
	}
	if f.ID != "TIT2" {
		t.Errorf("got frame %s", f.ID)
	}
	if _, err := d.ParseFrame(); err != io.EOF {
		t.Fatalf("expected io.EOF, got %v", err)
	}
	rest, _ := io.ReadAll(r)
	if string(rest) != "audio" {
		t.Errorf("reader not positioned at the audio data: %q", rest)
	}
}
