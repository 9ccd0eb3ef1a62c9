package id3v2

import (
	"bytes"
	"errors"
	"io"
	"strconv"
)

const (
	v1TagSize         = 128
	v1ExtendedTagSize = 227
)

// Genres are the genres of ID3v1, indexed by genre id. The list
// includes the Winamp extensions.
var Genres = []string{
	"Blues",
	"Classic Rock",
	"Country",
	"Dance",
	"Disco",
	"Funk",
	"Grunge",
	"Hip-Hop",
	"Jazz",
	"Metal",
	"New Age",
	"Oldies",
	"Other",
	"Pop",
	"R&B",
	"Rap",
	"Reggae",
	"Rock",
	"Techno",
	"Industrial",
	"Alternative",
	"Ska",
	"Death Metal",
	"Pranks",
	"Soundtrack",
	"Euro-Techno",
	"Ambient",
	"Trip-Hop",
	"Vocal",
	"Jazz+Funk",
	"Fusion",
	"Trance",
	"Classical",
	"Instrumental",
	"Acid",
	"House",
	"Game",
	"Sound Clip",
	"Gospel",
	"Noise",
	"Alternative Rock",
	"Bass",
	"Soul",
	"Punk",
	"Space",
	"Meditative",
	"Instrumental Pop",
	"Instrumental Rock",
	"Ethnic",
	"Gothic",
	"Darkwave",
	"Techno-Industrial",
	"Electronic",
	"Pop-Folk",
	"Eurodance",
	"Dream",
	"Southern Rock",
	"Comedy",
	"Cult",
	"Gangsta",
	"Top 40",
	"Christian Rap",
	"Pop/Funk",
	"Jungle",
	"Native US",
	"Cabaret",
	"New Wave",
	"Psychadelic",
	"Rave",
	"Showtunes",
	"Trailer",
	"Lo-Fi",
	"Tribal",
	"Acid Punk",
	"Acid Jazz",
	"Polka",
	"Retro",
	"Musical",
	"Rock & Roll",
	"Hard Rock",
	"Folk",
	"Folk-Rock",
	"National Folk",
	"Swing",
	"Fast Fusion",
	"Bebob",
	"Latin",
	"Revival",
	"Celtic",
	"Bluegrass",
	"Avantgarde",
	"Gothic Rock",
	"Progressive Rock",
	"Psychedelic Rock",
	"Symphonic Rock",
	"Slow Rock",
	"Big Band",
	"Chorus",
	"Easy Listening",
	"Acoustic",
	"Humour",
	"Speech",
	"Chanson",
	"Opera",
	"Chamber Music",
	"Sonata",
	"Symphony",
	"Booty Bass",
	"Primus",
	"Porn Groove",
	"Satire",
	"Slow Jam",
	"Club",
	"Tango",
	"Samba",
	"Folklore",
	"Ballad",
	"Power Ballad",
	"Rhytmic Soul",
	"Freestyle",
	"Duet",
	"Punk Rock",
	"Drum Solo",
	"Acapella",
	"Euro-House",
	"Dance Hall",
	"Goa",
	"Drum & Bass",
	"Club-House",
	"Hardcore",
	"Terror",
	"Indie",
	"BritPop",
	"Negerpunk",
	"Polsk Punk",
	"Beat",
	"Christian Gangsta",
	"Heavy Metal",
	"Black Metal",
	"Crossover",
	"Contemporary C",
	"Christian Rock",
	"Merengue",
	"Salsa",
	"Thrash Metal",
	"Anime",
	"JPop",
	"SynthPop",
}

// V1Tag is an ID3v1 tag, including the fields of the extended TAG+
// block if present.
type V1Tag struct {
	Title   string
	Artist  string
	Album   string
	Year    string
	Comment string
	// Track is 0 for ID3v1.0 tags.
	Track   byte
	GenreID byte

	// Fields of the extended block.
	Speed     byte
	GenreName string
	StartTime string
	EndTime   string
}

// IsV1Candidate reports whether rs ends with an ID3v1 tag. The
// position of rs is restored.
func IsV1Candidate(rs io.ReadSeeker) (bool, error) {
	pos, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return false, err
	}
	defer rs.Seek(pos, io.SeekStart)

	if _, err := rs.Seek(-v1TagSize, io.SeekEnd); err != nil {
		// The file is too small.
		return false, nil
	}
	var b [3]byte
	if _, err := io.ReadFull(rs, b[:]); err != nil {
		return false, nil
	}
	return string(b[:]) == "TAG", nil
}

// ReadV1 reads the ID3v1 tag at the end of rs.
func ReadV1(rs io.ReadSeeker) (*V1Tag, error) {
	size, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, v1TagSize+v1ExtendedTagSize)
	switch {
	case size >= int64(len(buf)):
		if _, err := rs.Seek(-int64(len(buf)), io.SeekEnd); err != nil {
			return nil, err
		}
		if _, err := io.ReadFull(rs, buf); err != nil {
			return nil, err
		}
	case size >= v1TagSize:
		if _, err := rs.Seek(-v1TagSize, io.SeekEnd); err != nil {
			return nil, err
		}
		if _, err := io.ReadFull(rs, buf[v1ExtendedTagSize:]); err != nil {
			return nil, err
		}
	default:
		return nil, newError(ErrNoTag, "the file is too small to contain an ID3v1 tag")
	}

	ext, tag := buf[:v1ExtendedTagSize], buf[v1ExtendedTagSize:]
	if string(tag[:3]) != "TAG" {
		return nil, newError(ErrNoTag, "no ID3v1 tag was found")
	}
	if string(ext[:4]) != "TAG+" {
		ext = nil
	}
	field := func(base []byte, extOff, extEnd int) string {
		s := latin1Field(base)
		if ext != nil && len(s) == len(base) {
			s += latin1Field(ext[extOff:extEnd])
		}
		return s
	}

	v1 := &V1Tag{
		Title:   field(tag[3:33], 4, 64),
		Artist:  field(tag[33:63], 64, 124),
		Album:   field(tag[63:93], 124, 184),
		Year:    latin1Field(tag[93:97]),
		GenreID: tag[127],
	}
	// ID3v1.1 stores the track in the last byte of the comment.
	if tag[125] == 0 && tag[126] != 0 {
		v1.Track = tag[126]
		v1.Comment = latin1Field(tag[97:125])
	} else {
		v1.Comment = latin1Field(tag[97:127])
	}
	if ext != nil {
		v1.Speed = ext[184]
		v1.GenreName = latin1Field(ext[185:215])
		v1.StartTime = latin1Field(ext[215:221])
		v1.EndTime = latin1Field(ext[221:227])
	}
	return v1, nil
}

func latin1Field(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	s, _ := Latin1.decode(b)
	return s
}

// Genre returns the free form genre of the extended block or the name
// of the genre id.
func (v1 *V1Tag) Genre() string {
	if v1.GenreName != "" {
		return v1.GenreName
	}
	if int(v1.GenreID) < len(Genres) {
		return Genres[v1.GenreID]
	}
	return ""
}

// Tag converts v1 to an ID3v2.4 tag.
func (v1 *V1Tag) Tag() *Tag {
	t := NewTag()
	if g := v1.Genre(); g != "" {
		t.SetGenre(g)
	}
	if v1.Title != "" {
		t.SetTitle(v1.Title)
	}
	if v1.Artist != "" {
		t.SetArtist(v1.Artist)
	}
	if v1.Album != "" {
		t.SetAlbum(v1.Album)
	}
	if v1.Year != "" {
		t.SetTextFrame("TYER", v1.Year)
	}
	if v1.Comment != "" {
		t.AddFrame(NewFrame("COMM", Comment{Language: "eng", Text: v1.Comment}))
	}
	if v1.Track != 0 {
		t.SetTextFrame("TRCK", strconv.Itoa(int(v1.Track)))
	}
	return t
}

// RemoveV1FromFile truncates the ID3v1 tag, and the extended block if
// present, from the end of f. It reports whether there was a tag.
func RemoveV1FromFile(f StorageFile) (bool, error) {
	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return false, err
	}
	if size < v1TagSize {
		return false, nil
	}
	b := make([]byte, 4)
	if _, err := f.ReadAt(b[:3], size-v1TagSize); err != nil {
		return false, err
	}
	if string(b[:3]) != "TAG" {
		return false, nil
	}

	end := size - v1TagSize
	if size >= v1TagSize+v1ExtendedTagSize {
		if _, err := f.ReadAt(b, size-v1TagSize-v1ExtendedTagSize); err != nil {
			return false, err
		}
		if string(b) == "TAG+" {
			end -= v1ExtendedTagSize
		}
	}
	if err := f.Truncate(end); err != nil {
		return false, err
	}
	_, err = f.Seek(0, io.SeekStart)
	return true, err
}

// ReadAny reads the ID3v2 tag at the start of rs, falling back to the
// ID3v1 tag at its end.
func ReadAny(rs io.ReadSeeker) (*Tag, error) {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	t, err := Decode(rs)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, ErrNoTag) {
		return t, err
	}

	v1, err := ReadV1(rs)
	if err != nil {
		if errors.Is(err, ErrNoTag) {
			return nil, newError(ErrNoTag, "neither an ID3v2 nor an ID3v1 tag was found")
		}
		return nil, err
	}
	return v1.Tag(), nil
}
