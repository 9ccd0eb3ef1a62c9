package id3v2

import (
	"bytes"
	"io"
	"testing"
	"testing/iotest"
)

func TestSynchsafe(t *testing.T) {
	tests := []struct {
		in  uint32
		out [4]byte
	}{
		{0, [4]byte{0, 0, 0, 0}},
		{127, [4]byte{0, 0, 0, 0x7F}},
		{128, [4]byte{0, 0, 1, 0}},
		{maxSynchsafe, [4]byte{0x7F, 0x7F, 0x7F, 0x7F}},
	}

	for _, test := range tests {
		if got := synchsafe(test.in); got != test.out {
			t.Errorf("synchsafe(%d) = %v, want %v", test.in, got, test.out)
		}
		if got := desynchsafe(test.out); got != test.in {
			t.Errorf("desynchsafe(%v) = %d, want %d", test.out, got, test.in)
		}
	}

	// Set high bits are masked off.
	if got := desynchsafe([4]byte{0x80, 0x80, 0x81, 0xFF}); got != 0xFF {
		t.Errorf("desynchsafe with high bits = %d", got)
	}
}

func TestUnsynchronise(t *testing.T) {
	tests := []struct {
		in, out []byte
	}{
		{[]byte{1, 2, 3}, []byte{1, 2, 3}},
		{[]byte{0xFF, 0xE0}, []byte{0xFF, 0, 0xE0}},
		{[]byte{0xFF, 0x00}, []byte{0xFF, 0, 0x00}},
		{[]byte{0xFF, 0x10}, []byte{0xFF, 0x10}},
		{[]byte{1, 0xFF}, []byte{1, 0xFF}},
		{[]byte{0xFF}, []byte{0xFF}},
		{[]byte{0xFF, 0xFF, 0xFF}, []byte{0xFF, 0, 0xFF, 0, 0xFF}},
		{[]byte{0xFF, 0xFF, 0x00}, []byte{0xFF, 0, 0xFF, 0, 0x00}},
	}

	for _, test := range tests {
		got := unsynchronise(test.in)
		if !bytes.Equal(got, test.out) {
			t.Errorf("unsynchronise(%v) = %v, want %v", test.in, got, test.out)
			continue
		}

		back, err := io.ReadAll(newUnsynchReader(bytes.NewReader(got)))
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(back, test.in) {
			t.Errorf("reading %v back = %v, want %v", got, back, test.in)
		}
	}
}

func TestUnsynchReaderAcrossReads(t *testing.T) {
	in := []byte{0xFF, 0x00, 0xE0, 0xFF, 0x00, 0xFF, 0x00}
	r := newUnsynchReader(iotest.OneByteReader(bytes.NewReader(in)))
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if want := []byte{0xFF, 0xE0, 0xFF, 0xFF}; !bytes.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
