package id3v2

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func rawV1(title, artist, album, year, comment string, track, genre byte) []byte {
	b := make([]byte, v1TagSize)
	copy(b, "TAG")
	copy(b[3:33], title)
	copy(b[33:63], artist)
	copy(b[63:93], album)
	copy(b[93:97], year)
	copy(b[97:125], comment)
	b[126] = track
	b[127] = genre
	return b
}

func TestReadV1(t *testing.T) {
	in := append(audioData(500), rawV1("Title", "Artist", "Album", "1999", "Comment", 7, 17)...)
	v1, err := ReadV1(bytes.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	want := V1Tag{Title: "Title", Artist: "Artist", Album: "Album", Year: "1999", Comment: "Comment", Track: 7, GenreID: 17}
	if *v1 != want {
		t.Errorf("got %+v, want %+v", *v1, want)
	}
	if v1.Genre() != "Rock" {
		t.Errorf("got genre %q", v1.Genre())
	}

	tag := v1.Tag()
	if tag.Title() != "Title" || tag.Artist() != "Artist" || tag.Album() != "Album" || tag.Genre() != "Rock" {
		t.Errorf("unexpected conversion %v", tag.Frames)
	}
	if n, _ := tag.Track(); n != 7 {
		t.Errorf("got track %d", n)
	}
	if c := tag.Comments(); len(c) != 1 || c[0].Text != "Comment" {
		t.Errorf("got comments %v", c)
	}
}

func TestReadV1Extended(t *testing.T) {
	title := strings.Repeat("t", 30)
	ext := make([]byte, v1ExtendedTagSize)
	copy(ext, "TAG+")
	copy(ext[4:], "itle")
	ext[184] = 2
	copy(ext[185:], "Shoegaze")
	copy(ext[215:], "001:30")

	in := append(ext, rawV1(title, "", "", "", "", 0, 255)...)
	v1, err := ReadV1(bytes.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if v1.Title != title+"itle" {
		t.Errorf("got title %q", v1.Title)
	}
	if v1.Speed != 2 || v1.StartTime != "001:30" || v1.Genre() != "Shoegaze" {
		t.Errorf("unexpected extended fields %+v", v1)
	}
}

func TestReadV1Missing(t *testing.T) {
	for _, in := range [][]byte{nil, audioData(10), audioData(1000)} {
		if _, err := ReadV1(bytes.NewReader(in)); !errors.Is(err, ErrNoTag) {
			t.Errorf("%d bytes: expected ErrNoTag, got %v", len(in), err)
		}
	}
}

func TestRemoveV1FromFile(t *testing.T) {
	audio := audioData(1000)
	f := tempFile(t, append(append([]byte(nil), audio...), rawV1("Title", "", "", "", "", 0, 0)...))

	ok, err := IsV1Candidate(f)
	if err != nil || !ok {
		t.Fatalf("IsV1Candidate: %v %v", ok, err)
	}
	ok, err = RemoveV1FromFile(f)
	if err != nil || !ok {
		t.Fatalf("RemoveV1FromFile: %v %v", ok, err)
	}
	if b := fileContent(t, f); !bytes.Equal(b, audio) {
		t.Errorf("expected %d bytes of audio, got %d bytes", len(audio), len(b))
	}
}

func TestReadAny(t *testing.T) {
	v1 := rawV1("Old", "", "", "", "", 0, 0)

	tag, err := ReadAny(bytes.NewReader(append(audioData(200), v1...)))
	if err != nil {
		t.Fatal(err)
	}
	if tag.Title() != "Old" {
		t.Errorf("got title %q", tag.Title())
	}

	var buf bytes.Buffer
	v2 := NewTag()
	v2.SetTitle("New")
	if err := v2.Encode(&buf); err != nil {
		t.Fatal(err)
	}
	buf.Write(audioData(200))
	buf.Write(v1)
	if tag, err = ReadAny(bytes.NewReader(buf.Bytes())); err != nil {
		t.Fatal(err)
	}
	if tag.Title() != "New" {
		t.Errorf("got title %q", tag.Title())
	}

	if _, err := ReadAny(bytes.NewReader(audioData(200))); !errors.Is(err, ErrNoTag) {
		t.Errorf("expected ErrNoTag, got %v", err)
	}
}
