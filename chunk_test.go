package id3v2

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

func encodedTag(t *testing.T, title string) []byte {
	t.Helper()
	tag := NewTag()
	tag.SetTitle(title)
	var buf bytes.Buffer
	if err := NewEncoder(&buf, EncodeOptions{Padding: 4}).Encode(tag); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func chunk(order binary.ByteOrder, id string, data []byte) []byte {
	b := make([]byte, 8, 8+len(data)+1)
	copy(b, id)
	order.PutUint32(b[4:], uint32(len(data)))
	b = append(b, data...)
	if len(data)%2 == 1 {
		b = append(b, 0)
	}
	return b
}

func TestReadWAV(t *testing.T) {
	tag := encodedTag(t, "Wave")

	var body []byte
	body = append(body, "WAVE"...)
	body = append(body, chunk(binary.LittleEndian, "fmt ", make([]byte, 16))...)
	body = append(body, chunk(binary.LittleEndian, "data", audioData(100))...)
	body = append(body, chunk(binary.LittleEndian, "id3 ", tag)...)
	in := chunk(binary.LittleEndian, "RIFF", body)

	got, err := ReadWAV(bytes.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if got.Title() != "Wave" {
		t.Errorf("got title %q", got.Title())
	}

	if _, err := ReadWAV(bytes.NewReader([]byte("not a wave file"))); !errors.Is(err, ErrNoTag) {
		t.Errorf("expected ErrNoTag, got %v", err)
	}
}

func TestReadAIFF(t *testing.T) {
	tag := encodedTag(t, "Aiff")

	var body []byte
	body = append(body, "AIFF"...)
	body = append(body, chunk(binary.BigEndian, "COMM", make([]byte, 18))...)
	body = append(body, chunk(binary.BigEndian, "SSND", audioData(101))...)
	body = append(body, chunk(binary.BigEndian, "ID3 ", tag)...)
	in := chunk(binary.BigEndian, "FORM", body)

	got, err := ReadAIFF(bytes.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if got.Title() != "Aiff" {
		t.Errorf("got title %q", got.Title())
	}

	// No ID3 chunk.
	in = chunk(binary.BigEndian, "FORM", append([]byte("AIFF"), chunk(binary.BigEndian, "COMM", make([]byte, 18))...))
	if _, err := ReadAIFF(bytes.NewReader(in)); !errors.Is(err, ErrNoTag) {
		t.Errorf("expected ErrNoTag, got %v", err)
	}
}
