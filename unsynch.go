package id3v2

import (
	"io"
)

// maxSynchsafe is the largest value a four byte synchsafe integer can
// hold.
const maxSynchsafe = 1<<28 - 1

// desynchsafe decodes a 28 bit synchsafe integer. The top bit of every
// byte is masked off instead of rejected, so sizes written by sloppy
// taggers still decode to a bounded value.
func desynchsafe(b [4]byte) uint32 {
	return uint32(b[0]&0x7f)<<21 |
		uint32(b[1]&0x7f)<<14 |
		uint32(b[2]&0x7f)<<7 |
		uint32(b[3]&0x7f)
}

// synchsafe encodes i as a synchsafe integer. Values above 2^28-1
// cannot be represented; callers have to check before.
func synchsafe(i uint32) [4]byte {
	return [4]byte{
		byte(i>>21) & 0x7f,
		byte(i>>14) & 0x7f,
		byte(i>>7) & 0x7f,
		byte(i) & 0x7f,
	}
}

// unsynchronise applies the unsynchronisation scheme to b: a zero byte
// is inserted after every 0xFF that is followed by a byte >= 0xE0 or
// by a zero byte. A trailing 0xFF is left alone.
func unsynchronise(b []byte) []byte {
	n := 0
	for i, c := range b {
		if c == 0xFF && i+1 < len(b) && (b[i+1] >= 0xE0 || b[i+1] == 0) {
			n++
		}
	}
	if n == 0 {
		return b
	}

	out := make([]byte, 0, len(b)+n)
	for i, c := range b {
		out = append(out, c)
		if c == 0xFF && i+1 < len(b) && (b[i+1] >= 0xE0 || b[i+1] == 0) {
			out = append(out, 0)
		}
	}
	return out
}

// unsynchReader strips every zero byte that immediately follows a 0xFF
// byte from the underlying stream. The only state carried between
// reads is whether the last byte handed out was 0xFF.
type unsynchReader struct {
	r  io.Reader
	ff bool
}

func newUnsynchReader(r io.Reader) io.Reader {
	return &unsynchReader{r: r}
}

func (u *unsynchReader) Read(p []byte) (int, error) {
	for {
		n, err := u.r.Read(p)
		j := 0
		for _, c := range p[:n] {
			if u.ff && c == 0 {
				u.ff = false
				continue
			}
			p[j] = c
			j++
			u.ff = c == 0xFF
		}
		if j > 0 || err != nil || n == 0 {
			return j, err
		}
	}
}
