package id3v2

import (
	"bytes"
	"fmt"
	"testing"
	"time"
)

var (
	UTF8TestString  = "Ein etwas kürzerer Text mit wenigen Umlauten: äöüß äöüß"
	ISOTestString   = []byte("Ein etwas k\xFCrzerer Text mit wenigen Umlauten: \xE4\xF6\xFC\xDF \xE4\xF6\xFC\xDF")
	UTF16TestString = []byte{254, 255, 0, 69, 0, 105, 0, 110, 0, 32,
		0, 101, 0, 116, 0, 119, 0, 97, 0, 115, 0, 32, 0, 107, 0, 252, 0,
		114, 0, 122, 0, 101, 0, 114, 0, 101, 0, 114, 0, 32, 0, 84, 0, 101,
		0, 120, 0, 116, 0, 32, 0, 109, 0, 105, 0, 116, 0, 32, 0, 119, 0,
		101, 0, 110, 0, 105, 0, 103, 0, 101, 0, 110, 0, 32, 0, 85, 0, 109,
		0, 108, 0, 97, 0, 117, 0, 116, 0, 101, 0, 110, 0, 58, 0, 32, 0,
		228, 0, 246, 0, 252, 0, 223, 0, 32, 0, 228, 0, 246, 0, 252, 0,
		223}
)

func TestLatin1(t *testing.T) {
	if res := Latin1.encode(UTF8TestString); !bytes.Equal(res, ISOTestString) {
		t.Errorf("encode: got %q, want %q", res, ISOTestString)
	}
	res, err := Latin1.decode(ISOTestString)
	if err != nil {
		t.Fatal(err)
	}
	if res != UTF8TestString {
		t.Errorf("decode: got %q, want %q", res, UTF8TestString)
	}
}

func TestUTF16Decoding(t *testing.T) {
	tests := []struct {
		enc Encoding
		in  []byte
		out string
	}{
		{UTF16, []byte{254, 255, 0, 74, 0,
			117, 0, 115, 0, 116, 0, 32, 0, 97, 0, 32, 0, 116, 0, 101, 0, 115,
			0, 116, 0, 58, 0, 32, 0, 228, 0, 252, 0, 246, 0, 32, 101, 229,
			103, 44, 138, 158}, "Just a test: äüö 日本語"},
		{UTF16, []byte{255, 254, 74, 0, 117, 0, 115, 0, 116, 0, 32, 0, 97,
			0, 32, 0, 116, 0, 101, 0, 115, 0, 116, 0, 58, 0, 32, 0, 228, 0,
			252, 0, 246, 0, 32, 0, 229, 101, 44, 103, 158, 138}, "Just a test: äüö 日本語"},
		{UTF16BE, []byte{0, 74, 0,
			117, 0, 115, 0, 116, 0, 32, 0, 97, 0, 32, 0, 116, 0, 101, 0, 115,
			0, 116, 0, 58, 0, 32, 0, 228, 0, 252, 0, 246, 0, 32, 101, 229,
			103, 44, 138, 158}, "Just a test: äüö 日本語"},
		{UTF16, UTF16TestString, UTF8TestString},
	}

	for _, test := range tests {
		res, err := test.enc.decode(test.in)
		if err != nil {
			t.Errorf("%s: %s", test.enc, err)
			continue
		}
		if res != test.out {
			t.Errorf("%s: expected %q, got %q", test.enc, test.out, res)
		}
	}
}

func TestUTF16Encoding(t *testing.T) {
	got := UTF16.encode("ab")
	want := []byte{0xFF, 0xFE, 'a', 0, 'b', 0}
	if !bytes.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestInvalidUTF8(t *testing.T) {
	_, err := UTF8.decode([]byte{'a', 0xFF, 'b'})
	e, ok := err.(*Error)
	if !ok || e.Kind != ErrStringDecoding {
		t.Fatalf("expected a string decoding error, got %v", err)
	}
	if !bytes.Equal(e.Bytes, []byte{0xFF, 'b'}) {
		t.Errorf("offending bytes: got %v", e.Bytes)
	}
}

func TestEncodingResolve(t *testing.T) {
	tests := []struct {
		in  Encoding
		v   Version
		out Encoding
	}{
		{EncodingDefault, Version24, UTF8},
		{EncodingDefault, Version23, UTF16},
		{UTF8, Version23, UTF16},
		{UTF16BE, Version22, UTF16},
		{Latin1, Version22, Latin1},
		{UTF16BE, Version24, UTF16BE},
	}

	for _, test := range tests {
		if got := test.in.resolve(test.v); got != test.out {
			t.Errorf("%s on %s: got %s, want %s", test.in, test.v, got, test.out)
		}
	}
}

func TestVersion(t *testing.T) {
	v, err := versionOf(4, 1)
	if err != nil {
		t.Fatal(err)
	}
	if v.String() != "ID3v2.4.1" || v.base() != Version24 {
		t.Errorf("unexpected version %s", v)
	}
	if Version23.String() != "ID3v2.3" {
		t.Errorf("unexpected version %s", Version23)
	}
	if _, err := versionOf(5, 0); err == nil {
		t.Error("expected an error for ID3v2.5")
	}
}

func TestTimeParsing(t *testing.T) {
	tests := []struct {
		in  string
		out time.Time
	}{
		{"2009-11-10T23:01:02", time.Date(2009, 11, 10, 23, 01, 02, 0, time.UTC)},
		{"2009-11-10T23:01", time.Date(2009, 11, 10, 23, 01, 0, 0, time.UTC)},
		{"2009-11-10T23", time.Date(2009, 11, 10, 23, 0, 0, 0, time.UTC)},
		{"2009-11-10", time.Date(2009, 11, 10, 0, 0, 0, 0, time.UTC)},
		{"2009-11", time.Date(2009, 11, 1, 0, 0, 0, 0, time.UTC)},
		{"2009", time.Date(2009, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, test := range tests {
		res, err := parseTime(test.in)
		if err != nil {
			t.Fatalf("Couldn't parse time '%s': %s", test.in, err)
		}

		if res != test.out {
			t.Fatalf("Time '%s' parsed to '%s' instead of '%s'", test.in, res, test.out)
		}
	}
}

func TestUserFrameNameParsing(t *testing.T) {
	tests := []struct {
		in      string
		outName string
		outBool bool
	}{
		{"TLEN", "", false},
		{"TXXX:", "", false},
		{"TXXX:User frame", "User frame", true},
		{"TXX:User frame", "User frame", true},
	}

	for _, test := range tests {
		out, ok := userFrameDescription(test.in)
		if out != test.outName || ok != test.outBool {
			t.Fatalf("Didn't parse user frame name correctly. Expected: %q/%t, got %q/%t",
				test.outName, test.outBool, out, ok)
		}
	}
}

func TestAccessors(t *testing.T) {
	tag := NewTag()
	tag.SetTitle("Title")
	tag.SetArtists([]string{"A", "B"})
	tag.SetTrack(3, 12)
	tag.SetYear(1999)
	tag.SetTextFrame("TXXX:MusicBrainz Album Id", "abc")
	tag.SetTextFrame("TXXX:MusicBrainz Album Id", "def")

	if tag.Title() != "Title" {
		t.Errorf("title: got %q", tag.Title())
	}
	if tag.Artist() != "A" || len(tag.Artists()) != 2 {
		t.Errorf("artists: got %q", tag.Artists())
	}
	if n, total := tag.Track(); n != 3 || total != 12 {
		t.Errorf("track: got %d/%d", n, total)
	}
	if tag.Year() != 1999 || !tag.HasFrame("TDRC") {
		t.Errorf("year: got %d", tag.Year())
	}
	if got := tag.TextFrame("TXXX:MusicBrainz Album Id"); got != "def" {
		t.Errorf("user text frame: got %q", got)
	}
	if n := len(tag.FramesByID("TXXX")); n != 1 {
		t.Errorf("expected 1 TXXX frame, got %d", n)
	}

	tag.RemoveFrames("TIT2")
	if tag.HasFrame("TIT2") {
		t.Error("TIT2 wasn't removed")
	}
}

func TestAccessorsV22(t *testing.T) {
	tag := &Tag{Version: Version22}
	tag.SetTitle("Title")
	tag.SetYear(2001)

	if _, ok := tag.Frame("TT2"); !ok {
		t.Errorf("expected a TT2 frame, got %v", tag.Frames)
	}
	if tag.Title() != "Title" {
		t.Errorf("title: got %q", tag.Title())
	}
	if tag.TextFrame("TYER") != "2001" {
		t.Errorf("year: got %q", tag.TextFrame("TYER"))
	}
}

func TestSetKeepsEncoding(t *testing.T) {
	tag := NewTag()
	f := NewFrame("TIT2", Text{Text: "old"})
	f.Encoding = Latin1
	tag.AddFrame(f)
	tag.AddFrame(NewFrame("TIT2", Text{Text: "other"}))

	tag.SetTitle("new")
	frames := tag.FramesByID("TIT2")
	if len(frames) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(frames))
	}
	if frames[0].Encoding != Latin1 {
		t.Errorf("encoding: got %s", frames[0].Encoding)
	}
}

func BenchmarkISO88591ToUTF8(b *testing.B) {
	b.SetBytes(int64(len(ISOTestString)))
	for i := 0; i < b.N; i++ {
		_, _ = Latin1.decode(ISOTestString)
	}
}

func BenchmarkUTF8ToISO88591(b *testing.B) {
	b.SetBytes(int64(len(UTF8TestString)))
	for i := 0; i < b.N; i++ {
		_ = Latin1.encode(UTF8TestString)
	}
}

func BenchmarkUTF16ToUTF8(b *testing.B) {
	b.SetBytes(int64(len(UTF16TestString)))
	for i := 0; i < b.N; i++ {
		_, _ = UTF16.decode(UTF16TestString)
	}
}

func ExampleTag_TextFrame() {
	t := NewTag()
	t.SetTextFrame("TXXX:MusicBrainz Album Artist Id", "89ad4ac3-39f7-470e-963a-56509c546377")
	fmt.Println(t.TextFrame("TXXX:MusicBrainz Album Artist Id"))
	// Output: 89ad4ac3-39f7-470e-963a-56509c546377
}
