package id3v2

import (
	"bytes"
	"strconv"
	"strings"
)

var FrameNames = map[string]string{
	"AENC": "Audio encryption",
	"APIC": "Attached picture",
	"ASPI": "Audio seek point index",
	"COMM": "Comments",
	"COMR": "Commercial frame",
	"CHAP": "Chapter",
	"CTOC": "Table of contents",

	"ENCR": "Encryption method registration",
	"EQU2": "Equalisation (2)",
	"ETCO": "Event timing codes",
	"EQUA": "Equalization",

	"GEOB": "General encapsulated object",
	"GRID": "Group identification registration",
	"GRP1": "Grouping", // iTunes extension

	"IPLS": "Involved people list",

	"LINK": "Linked information",

	"MCDI": "Music CD identifier",
	"MLLT": "MPEG location lookup table",

	"OWNE": "Ownership frame",

	"PRIV": "Private frame",
	"PCNT": "Play counter",
	"POPM": "Popularimeter",
	"POSS": "Position synchronisation frame",

	"RBUF": "Recommended buffer size",
	"RVA2": "Relative volume adjustment (2)",
	"RVAD": "Relative volume adjustment",
	"RVRB": "Reverb",

	"SEEK": "Seek frame",
	"SIGN": "Signature frame",
	"SYLT": "Synchronised lyric/text",
	"SYTC": "Synchronised tempo codes",

	"TALB": "Album/Movie/Show title",
	"TBPM": "BPM (beats per minute)",
	"TCOM": "Composer",
	"TCMP": "Compilation", // iTunes extension
	"TCON": "Content type",
	"TCOP": "Copyright message",
	"TDAT": "Date",
	"TDEN": "Encoding time",
	"TDLY": "Playlist delay",
	"TDOR": "Original release time",
	"TDRC": "Recording time",
	"TDRL": "Release time",
	"TDTG": "Tagging time",
	"TENC": "Encoded by",
	"TEXT": "Lyricist/Text writer",
	"TFLT": "File type",
	"TIME": "Time",
	"TIPL": "Involved people list",
	"TIT1": "Content group description",
	"TIT2": "Title/songname/content description",
	"TIT3": "Subtitle/Description refinement",
	"TKEY": "Initial key",
	"TLAN": "Language(s)",
	"TLEN": "Length",
	"TMCL": "Musician credits list",
	"TMED": "Media type",
	"TMOO": "Mood",
	"TOAL": "Original album/movie/show title",
	"TOFN": "Original filename",
	"TOLY": "Original lyricist(s)/text writer(s)",
	"TORY": "Original release year",
	"TOPE": "Original artist(s)/performer(s)",
	"TOWN": "File owner/licensee",
	"TPE1": "Lead performer(s)/Soloist(s)",
	"TPE2": "Band/orchestra/accompaniment",
	"TPE3": "Conductor/performer refinement",
	"TPE4": "Interpreted, remixed, or otherwise modified by",
	"TPOS": "Part of a set",
	"TPRO": "Produced notice",
	"TPUB": "Publisher",
	"TRDA": "Recording dates",
	"TRCK": "Track number/Position in set",
	"TRSN": "Internet radio station name",
	"TRSO": "Internet radio station owner",
	"TSOA": "Album sort order",
	"TSOP": "Performer sort order",
	"TSOT": "Title sort order",
	"TSO2": "Album Artist sort order", // iTunes extension
	"TSOC": "Composer sort oder",      // iTunes extension
	"TSIZ": "Size",
	"TSRC": "ISRC (international standard recording code)",
	"TSSE": "Software/Hardware and settings used for encoding",
	"TSST": "Set subtitle",
	"TYER": "Year",
	"TXXX": "User defined text information frame",

	"UFID": "Unique file identifier",
	"USER": "Terms of use",
	"USLT": "Unsynchronised lyric/text transcription",

	"WCOM": "Commercial information",
	"WCOP": "Copyright/Legal information",
	"WOAF": "Official audio file webpage",
	"WOAR": "Official artist/performer webpage",
	"WOAS": "Official audio source webpage",
	"WORS": "Official Internet radio station homepage",
	"WPAY": "Payment",
	"WPUB": "Publishers official webpage",
	"WXXX": "User defined URL link frame",
}

var PictureTypes = []string{
	"Other",
	"32x32 pixels 'file icon' (PNG only)",
	"Other file icon",
	"Cover (front)",
	"Cover (back)",
	"Leaflet page",
	"Media (e.g. label side of CD)",
	"Lead artist/lead performer/soloist",
	"Artist/performer",
	"Conductor",
	"Band/Orchestra",
	"Composer",
	"Lyricist/text writer",
	"Recording Location",
	"During recording",
	"During performance",
	"Movie/video screen capture",
	"A bright coloured fish",
	"Illustration",
	"Band/artist logotype",
	"Publisher/Studio logotype",
}

// PictureType is the type of an attached picture. Values past the
// table above are undefined but preserved.
type PictureType byte

const (
	PictureOther PictureType = iota
	PictureFileIcon
	PictureOtherFileIcon
	PictureCoverFront
	PictureCoverBack
	PictureLeaflet
	PictureMedia
	PictureLeadArtist
	PictureArtist
	PictureConductor
	PictureBand
	PictureComposer
	PictureLyricist
	PictureRecordingLocation
	PictureDuringRecording
	PictureDuringPerformance
	PictureScreenCapture
	PictureBrightFish
	PictureIllustration
	PictureBandLogo
	PicturePublisherLogo
)

func (p PictureType) String() string {
	if int(p) >= len(PictureTypes) {
		return "Undefined"
	}

	return PictureTypes[p]
}

// v22IDs maps ID3v2.2 frame ids to their ID3v2.3/2.4 counterparts.
var v22IDs = map[string]string{
	"BUF": "RBUF",
	"CNT": "PCNT",
	"COM": "COMM",
	"CRA": "AENC",
	"ETC": "ETCO",
	"EQU": "EQUA",
	"GEO": "GEOB",
	"GP1": "GRP1", // iTunes extension
	"IPL": "IPLS",
	"LNK": "LINK",
	"MCI": "MCDI",
	"MLL": "MLLT",
	"PIC": "APIC",
	"POP": "POPM",
	"REV": "RVRB",
	"RVA": "RVAD",
	"SLT": "SYLT",
	"STC": "SYTC",
	"TAL": "TALB",
	"TBP": "TBPM",
	"TCM": "TCOM",
	"TCO": "TCON",
	"TCP": "TCMP", // iTunes extension
	"TCR": "TCOP",
	"TDA": "TDAT",
	"TDY": "TDLY",
	"TEN": "TENC",
	"TFT": "TFLT",
	"TIM": "TIME",
	"TKE": "TKEY",
	"TLA": "TLAN",
	"TLE": "TLEN",
	"TMT": "TMED",
	"TOA": "TOPE",
	"TOF": "TOFN",
	"TOL": "TOLY",
	"TOR": "TORY",
	"TOT": "TOAL",
	"TP1": "TPE1",
	"TP2": "TPE2",
	"TP3": "TPE3",
	"TP4": "TPE4",
	"TPA": "TPOS",
	"TPB": "TPUB",
	"TRC": "TSRC",
	"TRD": "TRDA",
	"TRK": "TRCK",
	"TS2": "TSO2", // iTunes extension
	"TSA": "TSOA", // iTunes extension
	"TSC": "TSOC", // iTunes extension
	"TSI": "TSIZ",
	"TSP": "TSOP", // iTunes extension
	"TSS": "TSSE",
	"TST": "TSOT", // iTunes extension
	"TT1": "TIT1",
	"TT2": "TIT2",
	"TT3": "TIT3",
	"TXT": "TEXT",
	"TXX": "TXXX",
	"TYE": "TYER",
	"UFI": "UFID",
	"ULT": "USLT",
	"WAF": "WOAF",
	"WAR": "WOAR",
	"WAS": "WOAS",
	"WCM": "WCOM",
	"WCP": "WCOP",
	"WPB": "WPUB",
	"WXX": "WXXX",
}

var v23IDs = func() map[string]string {
	m := make(map[string]string, len(v22IDs))
	for k, v := range v22IDs {
		m[v] = k
	}
	return m
}()

// fileDiscard lists the frames that describe the audio data and become
// stale once it is altered.
var fileDiscard = []string{
	"AENC", "ETCO", "EQUA", "MLLT", "POSS", "SYLT", "SYTC", "RVAD", "TENC", "TLEN", "TSIZ",
}

// FrameName returns a human readable name for a frame id.
func FrameName(id string) string {
	if v, ok := FrameNames[normalizeID(id)]; ok {
		return v
	}
	return id
}

// normalizeID returns the ID3v2.3/2.4 form of id, or id itself if
// there is none.
func normalizeID(id string) string {
	if len(id) == 3 {
		if v, ok := v22IDs[id]; ok {
			return v
		}
	}
	return id
}

// idForVersion converts id to the width used by v.
func idForVersion(id string, v Version) (string, bool) {
	switch {
	case v.Major() == 2 && len(id) == 4:
		s, ok := v23IDs[id]
		return s, ok
	case v.Major() != 2 && len(id) == 3:
		s, ok := v22IDs[id]
		return s, ok
	}
	return id, true
}

func validID(id []byte) bool {
	if len(id) != 3 && len(id) != 4 {
		return false
	}
	for _, c := range id {
		// Allow 0-9 and A-Z
		if (c < '0' || c > '9') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}

// Frame is a single frame of a tag.
type Frame struct {
	// ID is the 3 letter id of an ID3v2.2 frame or the 4 letter id of
	// an ID3v2.3/2.4 frame.
	ID      string
	Content Content
	// Encoding is the text encoding used when writing the frame.
	// Decoding records the encoding found on the wire.
	Encoding Encoding

	DiscardOnTagAlter  bool
	DiscardOnFileAlter bool
	// Compression and Unsynchronisation are format flags. They are
	// honoured when writing ID3v2.3 (compression only) and ID3v2.4.
	Compression       bool
	Unsynchronisation bool
}

// NewFrame returns a frame with default flags.
func NewFrame(id string, content Content) Frame {
	return Frame{ID: id, Content: content}
}

func (f Frame) String() string {
	return f.ID + ": " + f.Content.String()
}

// Content is the payload of a frame. The set of implementations is
// closed; each frame id admits exactly one of them, plus Unknown.
type Content interface {
	kind() contentKind
	String() string
}

type contentKind int

const (
	kindUnknown contentKind = iota
	kindText
	kindExtendedText
	kindLink
	kindExtendedLink
	kindComment
	kindLyrics
	kindSynchronisedLyrics
	kindPicture
	kindPopularimeter
	kindEncapsulatedObject
	kindChapter
	kindTableOfContents
	kindMpegLocationLookupTable
	kindPrivate
)

// kindForID is the dispatch table shared by the decoder and by frame
// validation. Exact ids are matched before the T and W prefix rules.
func kindForID(id string) contentKind {
	switch id {
	case "PIC", "APIC":
		return kindPicture
	case "TXX", "TXXX":
		return kindExtendedText
	case "WXX", "WXXX":
		return kindExtendedLink
	case "COM", "COMM":
		return kindComment
	case "POP", "POPM":
		return kindPopularimeter
	case "ULT", "USLT":
		return kindLyrics
	case "SLT", "SYLT":
		return kindSynchronisedLyrics
	case "GEO", "GEOB":
		return kindEncapsulatedObject
	}
	switch {
	case strings.HasPrefix(id, "T"):
		return kindText
	case strings.HasPrefix(id, "W"):
		return kindLink
	}
	switch id {
	case "GRP1":
		return kindText
	case "CHAP":
		return kindChapter
	case "MLLT":
		return kindMpegLocationLookupTable
	case "PRIV":
		return kindPrivate
	case "CTOC":
		return kindTableOfContents
	}
	return kindUnknown
}

// Text is the content of the T??? text information frames. Multiple
// values are separated by NUL.
type Text struct {
	Text string
}

// Values returns the NUL separated values of t.
func (t Text) Values() []string {
	return strings.Split(t.Text, "\x00")
}

type ExtendedText struct {
	Description string
	Value       string
}

type Link struct {
	URL string
}

type ExtendedLink struct {
	Description string
	URL         string
}

type Comment struct {
	Language    string
	Description string
	Text        string
}

type Lyrics struct {
	Language    string
	Description string
	Text        string
}

type TimestampFormat byte

const (
	TimestampMPEGFrames   TimestampFormat = 1
	TimestampMilliseconds TimestampFormat = 2
)

type SynchronisedLyricsType byte

const (
	LyricsOther SynchronisedLyricsType = iota
	LyricsLyrics
	LyricsTranscription
	LyricsPartName
	LyricsEvent
	LyricsChord
	LyricsTrivia
)

type SyncedText struct {
	Timestamp uint32
	Text      string
}

type SynchronisedLyrics struct {
	Language        string
	TimestampFormat TimestampFormat
	ContentType     SynchronisedLyricsType
	Description     string
	Content         []SyncedText
}

type Picture struct {
	MIMEType    string
	PictureType PictureType
	Description string
	Data        []byte
}

type Popularimeter struct {
	User    string
	Rating  byte
	Counter uint64
}

type EncapsulatedObject struct {
	MIMEType    string
	Filename    string
	Description string
	Data        []byte
}

// Chapter is the content of a CHAP frame. Times are in milliseconds,
// offsets in bytes from the start of the file; 0xFFFFFFFF marks an
// unused offset.
type Chapter struct {
	ElementID   string
	StartTime   uint32
	EndTime     uint32
	StartOffset uint32
	EndOffset   uint32
	Frames      []Frame
}

type TableOfContents struct {
	ElementID string
	TopLevel  bool
	Ordered   bool
	Elements  []string
	Frames    []Frame
}

type MpegLocationLookupTableReference struct {
	DeviateBytes  uint32
	DeviateMillis uint32
}

type MpegLocationLookupTable struct {
	FramesBetweenReference uint16
	BytesBetweenReference  uint32 // 24 bits
	MillisBetweenReference uint32 // 24 bits
	BitsForBytes           uint8
	BitsForMillis          uint8
	References             []MpegLocationLookupTableReference
}

type Private struct {
	Owner string
	Data  []byte
}

// Unknown holds the undecoded payload of a frame, for lossless
// pass-through.
type Unknown struct {
	Data    []byte
	Version Version
}

func (Text) kind() contentKind                    { return kindText }
func (ExtendedText) kind() contentKind            { return kindExtendedText }
func (Link) kind() contentKind                    { return kindLink }
func (ExtendedLink) kind() contentKind            { return kindExtendedLink }
func (Comment) kind() contentKind                 { return kindComment }
func (Lyrics) kind() contentKind                  { return kindLyrics }
func (SynchronisedLyrics) kind() contentKind      { return kindSynchronisedLyrics }
func (Picture) kind() contentKind                 { return kindPicture }
func (Popularimeter) kind() contentKind           { return kindPopularimeter }
func (EncapsulatedObject) kind() contentKind      { return kindEncapsulatedObject }
func (Chapter) kind() contentKind                 { return kindChapter }
func (TableOfContents) kind() contentKind         { return kindTableOfContents }
func (MpegLocationLookupTable) kind() contentKind { return kindMpegLocationLookupTable }
func (Private) kind() contentKind                 { return kindPrivate }
func (Unknown) kind() contentKind                 { return kindUnknown }

func (c Text) String() string         { return strings.Join(c.Values(), ", ") }
func (c ExtendedText) String() string { return c.Description + ": " + c.Value }
func (c Link) String() string         { return c.URL }
func (c ExtendedLink) String() string { return c.Description + ": " + c.URL }
func (c Comment) String() string      { return c.Text }
func (c Lyrics) String() string       { return c.Text }

func (c SynchronisedLyrics) String() string {
	var b strings.Builder
	for i, t := range c.Content {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(t.Text)
	}
	return b.String()
}

func (c Picture) String() string {
	return c.PictureType.String() + " (" + c.MIMEType + ", " + strconv.Itoa(len(c.Data)) + " bytes)"
}

func (c Popularimeter) String() string {
	return c.User + " rated " + strconv.Itoa(int(c.Rating))
}

func (c EncapsulatedObject) String() string {
	return c.Filename + " (" + c.MIMEType + ", " + strconv.Itoa(len(c.Data)) + " bytes)"
}

func (c Chapter) String() string {
	return c.ElementID + " (" + strconv.Itoa(len(c.Frames)) + " frames)"
}

func (c TableOfContents) String() string {
	return c.ElementID + ": " + strings.Join(c.Elements, ", ")
}

func (c MpegLocationLookupTable) String() string {
	return strconv.Itoa(len(c.References)) + " references"
}

func (c Private) String() string { return c.Owner }
func (c Unknown) String() string { return strconv.Itoa(len(c.Data)) + " bytes" }

// Validate reports whether f can be written as part of a tag of
// version v.
func (f Frame) Validate(v Version) error {
	return f.validate(v, 0)
}

func (f Frame) validate(v Version, depth int) error {
	if depth > MaxNestingDepth {
		return newError(ErrInvalidInput, "frames nested deeper than %d levels", MaxNestingDepth)
	}
	if !validID([]byte(f.ID)) {
		return &Error{Kind: ErrInvalidInput, Err: NotAFrameHeader{ID: []byte(f.ID)}}
	}
	id, ok := idForVersion(f.ID, v)
	if !ok {
		return newError(ErrInvalidInput, "frame %s has no %s equivalent", f.ID, v)
	}
	if f.Content == nil {
		return newError(ErrInvalidInput, "frame %s has no content", f.ID)
	}
	if v.Major() == 2 && f.Compression {
		return newError(ErrUnsupportedFeature, "ID3v2.2 compression is not supported")
	}
	if k := f.Content.kind(); k != kindUnknown && k != kindForID(id) {
		return newError(ErrInvalidInput, "frame %s cannot hold %T content", id, f.Content)
	}

	switch c := f.Content.(type) {
	case ExtendedText:
		if hasNUL(c.Description) {
			return newError(ErrInvalidInput, "description contains NUL")
		}
	case ExtendedLink:
		if hasNUL(c.Description) {
			return newError(ErrInvalidInput, "description contains NUL")
		}
	case Comment:
		if hasNUL(c.Description) {
			return newError(ErrInvalidInput, "description contains NUL")
		}
	case Lyrics:
		if hasNUL(c.Description) {
			return newError(ErrInvalidInput, "description contains NUL")
		}
	case SynchronisedLyrics:
		if hasNUL(c.Description) {
			return newError(ErrInvalidInput, "description contains NUL")
		}
		for _, st := range c.Content {
			if hasNUL(st.Text) {
				return newError(ErrInvalidInput, "synchronised text contains NUL")
			}
		}
	case Picture:
		if hasNUL(c.Description) {
			return newError(ErrInvalidInput, "description contains NUL")
		}
		if v.Major() == 2 {
			if _, err := pictureFormat(c.MIMEType); err != nil {
				return err
			}
		} else if hasNUL(c.MIMEType) {
			return newError(ErrInvalidInput, "MIME type contains NUL")
		}
	case EncapsulatedObject:
		if hasNUL(c.MIMEType) {
			return newError(ErrInvalidInput, "MIME type contains NUL")
		}
		if hasNUL(c.Filename) {
			return newError(ErrInvalidInput, "filename contains NUL")
		}
		if hasNUL(c.Description) {
			return newError(ErrInvalidInput, "description contains NUL")
		}
	case Popularimeter:
		if hasNUL(c.User) {
			return newError(ErrInvalidInput, "user contains NUL")
		}
	case Private:
		if hasNUL(c.Owner) {
			return newError(ErrInvalidInput, "owner identifier contains NUL")
		}
	case MpegLocationLookupTable:
		return c.validate()
	case Chapter:
		if hasNUL(c.ElementID) {
			return newError(ErrInvalidInput, "element id contains NUL")
		}
		return validateFrames(c.Frames, v, depth+1)
	case TableOfContents:
		if hasNUL(c.ElementID) {
			return newError(ErrInvalidInput, "element id contains NUL")
		}
		if len(c.Elements) > 0xFF {
			return newError(ErrInvalidInput, "table of contents has %d entries, at most 255 are allowed", len(c.Elements))
		}
		for _, e := range c.Elements {
			if hasNUL(e) {
				return newError(ErrInvalidInput, "element id contains NUL")
			}
		}
		return validateFrames(c.Frames, v, depth+1)
	}
	return nil
}

func validateFrames(frames []Frame, v Version, depth int) error {
	for _, f := range frames {
		if err := f.validate(v, depth); err != nil {
			return wrapFrame(f.ID, err)
		}
	}
	return nil
}

func (c MpegLocationLookupTable) validate() error {
	if c.BitsForBytes == 0 || c.BitsForMillis == 0 {
		return newError(ErrInvalidInput, "MLLT bits for bytes and bits for millis must be > 0")
	}
	size := int(c.BitsForBytes) + int(c.BitsForMillis)
	if size%4 != 0 {
		return newError(ErrInvalidInput, "MLLT bits for bytes + bits for millis must be a multiple of 4")
	}
	if size > 64 {
		return newError(ErrInvalidInput, "MLLT bits for bytes + bits for millis must be <= 64")
	}
	if c.BytesBetweenReference > 0xFFFFFF || c.MillisBetweenReference > 0xFFFFFF {
		return newError(ErrInvalidInput, "MLLT reference distances must fit in 24 bits")
	}
	return nil
}

// pictureFormat maps a MIME type to the 3 byte image format of an
// ID3v2.2 PIC frame.
func pictureFormat(mime string) (string, error) {
	switch mime {
	case "image/jpeg", "image/jpg":
		return "JPG", nil
	case "image/png":
		return "PNG", nil
	}
	return "", newError(ErrParsing, "unsupported MIME type %q for ID3v2.2 picture", mime)
}

func hasNUL(s string) bool {
	return strings.IndexByte(s, 0) >= 0
}

// language returns the 3 byte language code for s, padded with spaces.
func language(s string) []byte {
	b := []byte("   ")
	copy(b, s)
	return b
}

func trimNUL(b []byte) []byte {
	return bytes.TrimRight(b, "\x00")
}
