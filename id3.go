package id3v2

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"
)

// Enables logging if set to true.
var Logging LogFlag

var Magic = [3]byte{0x49, 0x44, 0x33}

type LogFlag bool

func (l LogFlag) Println(args ...interface{}) {
	if l {
		log.Println(args...)
	}
}

func (l LogFlag) Printf(format string, args ...interface{}) {
	if l {
		log.Printf(format, args...)
	}
}

const (
	tagHeaderSize = 10
	footerSize    = 10
)

// MaxNestingDepth is the deepest level of CHAP and CTOC frames nested
// in each other that will be decoded.
const MaxNestingDepth = 8

const TimeFormat = "2006-01-02T15:04:05"

var timeFormats = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02T15",
	"2006-01-02",
	"2006-01",
	"2006",
}

// Version is an ID3v2 revision, stored as major<<8 | minor.
type Version int16

const (
	Version22 Version = 2 << 8
	Version23 Version = 3 << 8
	Version24 Version = 4 << 8
)

func versionOf(major, minor byte) (Version, error) {
	switch major {
	case 2, 3, 4:
		return Version(major)<<8 | Version(minor), nil
	}
	return 0, &Error{Kind: ErrUnsupportedFeature, Err: UnsupportedVersion{Major: major, Minor: minor}}
}

func (v Version) Major() byte {
	return byte(v >> 8)
}

func (v Version) Minor() byte {
	return byte(v & 0xFF)
}

func (v Version) String() string {
	if v.Minor() != 0 {
		return fmt.Sprintf("ID3v2.%d.%d", v.Major(), v.Minor())
	}
	return fmt.Sprintf("ID3v2.%d", v.Major())
}

// base returns v without its minor revision.
func (v Version) base() Version {
	return v &^ 0xFF
}

// Tag is a decoded ID3v2 tag. Frames are kept in the order they were
// read or added and are written in that order.
type Tag struct {
	Version Version
	Frames  []Frame

	// size of the tag on disk, excluding the header, as read from the
	// header.
	size int
}

// NewTag returns an empty ID3v2.4 tag.
func NewTag() *Tag {
	return &Tag{Version: Version24}
}

// Size returns the size recorded in the header the tag was decoded
// from. It is 0 for tags that weren't decoded.
func (t *Tag) Size() int {
	return t.size
}

func (t *Tag) AddFrame(f Frame) {
	t.Frames = append(t.Frames, f)
}

// Clear removes all frames from the tag.
func (t *Tag) Clear() {
	t.Frames = nil
}

// RemoveFrames removes all frames with the given id. 3 and 4 letter
// ids of the same frame are treated as equal.
func (t *Tag) RemoveFrames(id string) {
	id = normalizeID(id)
	frames := t.Frames[:0]
	for _, f := range t.Frames {
		if normalizeID(f.ID) != id {
			frames = append(frames, f)
		}
	}
	t.Frames = frames
}

// Frame returns the first frame with the given id.
func (t *Tag) Frame(id string) (Frame, bool) {
	id = normalizeID(id)
	for _, f := range t.Frames {
		if normalizeID(f.ID) == id {
			return f, true
		}
	}
	return Frame{}, false
}

// FramesByID returns all frames with the given id.
func (t *Tag) FramesByID(id string) []Frame {
	id = normalizeID(id)
	var out []Frame
	for _, f := range t.Frames {
		if normalizeID(f.ID) == id {
			out = append(out, f)
		}
	}
	return out
}

func (t *Tag) HasFrame(id string) bool {
	_, ok := t.Frame(id)
	return ok
}

// set replaces the first frame with the given id, dropping all others,
// or appends f if there was none.
func (t *Tag) set(f Frame) {
	id := normalizeID(f.ID)
	out := t.Frames[:0]
	done := false
	for _, g := range t.Frames {
		if normalizeID(g.ID) != id {
			out = append(out, g)
			continue
		}
		if !done {
			f.Encoding = g.Encoding
			out = append(out, f)
			done = true
		}
	}
	if !done {
		out = append(out, f)
	}
	t.Frames = out
}

// localID returns the id of a frame as it should be stored in t.
func (t *Tag) localID(id string) string {
	if s, ok := idForVersion(id, t.Version.base()); ok {
		return s
	}
	return id
}

func (t *Tag) Album() string {
	return t.TextFrame("TALB")
}

func (t *Tag) SetAlbum(album string) {
	t.SetTextFrame("TALB", album)
}

func (t *Tag) Artists() []string {
	return t.TextFrameSlice("TPE1")
}

func (t *Tag) SetArtists(artists []string) {
	t.SetTextFrameSlice("TPE1", artists)
}

func (t *Tag) Artist() string {
	artists := t.Artists()
	if len(artists) > 0 {
		return artists[0]
	}

	return ""
}

func (t *Tag) SetArtist(artist string) {
	t.SetTextFrame("TPE1", artist)
}

func (t *Tag) Band() string {
	return t.TextFrame("TPE2")
}

func (t *Tag) SetBand(band string) {
	t.SetTextFrame("TPE2", band)
}

func (t *Tag) Composers() []string {
	return t.TextFrameSlice("TCOM")
}

func (t *Tag) SetComposers(composers []string) {
	t.SetTextFrameSlice("TCOM", composers)
}

func (t *Tag) Composer() string {
	composers := t.Composers()
	if len(composers) > 0 {
		return composers[0]
	}

	return ""
}

func (t *Tag) SetComposer(composer string) {
	t.SetTextFrame("TCOM", composer)
}

func (t *Tag) Title() string {
	return t.TextFrame("TIT2")
}

func (t *Tag) SetTitle(title string) {
	t.SetTextFrame("TIT2", title)
}

func (t *Tag) Genre() string {
	return t.TextFrame("TCON")
}

func (t *Tag) SetGenre(genre string) {
	t.SetTextFrame("TCON", genre)
}

// Year returns the recording year, from TDRC on ID3v2.4 and from TYER
// on older tags.
func (t *Tag) Year() int {
	if t.HasFrame("TDRC") {
		return t.RecordingTime().Year()
	}
	return t.TextFrameNumber("TYER")
}

func (t *Tag) SetYear(year int) {
	if t.Version.base() == Version24 {
		t.SetTextFrame("TDRC", strconv.Itoa(year))
		return
	}
	t.SetTextFrameNumber("TYER", year)
}

// Track returns the track number and, if present, the total number of
// tracks, from a TRCK frame of the form "4/9". ID3v2.2 and ID3v2.3
// tags decode the slash as a value separator.
func (t *Tag) Track() (track, total int) {
	s := t.TextFrame("TRCK")
	if i := strings.IndexAny(s, "/\x00"); i >= 0 {
		total, _ = strconv.Atoi(s[i+1:])
		s = s[:i]
	}
	track, _ = strconv.Atoi(s)
	return track, total
}

func (t *Tag) SetTrack(track, total int) {
	s := strconv.Itoa(track)
	if total > 0 {
		s += "/" + strconv.Itoa(total)
	}
	t.SetTextFrame("TRCK", s)
}

func (t *Tag) Length() time.Duration {
	return time.Duration(t.TextFrameNumber("TLEN")) * time.Millisecond
}

func (t *Tag) SetLength(d time.Duration) {
	t.SetTextFrameNumber("TLEN", int(d.Milliseconds()))
}

func (t *Tag) Publisher() string {
	return t.TextFrame("TPUB")
}

func (t *Tag) SetPublisher(publisher string) {
	t.SetTextFrame("TPUB", publisher)
}

func (t *Tag) RecordingTime() time.Time {
	return t.TextFrameTime("TDRC")
}

func (t *Tag) SetRecordingTime(rt time.Time) {
	t.SetTextFrame("TDRC", rt.Format(TimeFormat))
}

func (t *Tag) Comments() []Comment {
	var comments []Comment
	for _, f := range t.FramesByID("COMM") {
		if c, ok := f.Content.(Comment); ok {
			comments = append(comments, c)
		}
	}
	return comments
}

func (t *Tag) SetComments(comments []Comment) {
	t.RemoveFrames("COMM")
	for _, c := range comments {
		t.AddFrame(NewFrame(t.localID("COMM"), c))
	}
}

// UserTextFrames returns the content of all TXXX frames.
func (t *Tag) UserTextFrames() []ExtendedText {
	var res []ExtendedText
	for _, f := range t.FramesByID("TXXX") {
		if c, ok := f.Content.(ExtendedText); ok {
			res = append(res, c)
		}
	}
	return res
}

func (t *Tag) Pictures() []Picture {
	var res []Picture
	for _, f := range t.FramesByID("APIC") {
		if c, ok := f.Content.(Picture); ok {
			res = append(res, c)
		}
	}
	return res
}

func (t *Tag) Chapters() []Chapter {
	var res []Chapter
	for _, f := range t.FramesByID("CHAP") {
		if c, ok := f.Content.(Chapter); ok {
			res = append(res, c)
		}
	}
	return res
}

// TextFrame returns the text of the frame specified by id.
//
// To access user text frames, specify the id like "TXXX:The
// description".
func (t *Tag) TextFrame(id string) string {
	if desc, ok := userFrameDescription(id); ok {
		for _, c := range t.UserTextFrames() {
			if c.Description == desc {
				return c.Value
			}
		}
		return ""
	}

	f, ok := t.Frame(id)
	if !ok {
		return ""
	}
	if c, ok := f.Content.(Text); ok {
		return c.Text
	}
	return ""
}

func (t *Tag) TextFrameNumber(id string) int {
	s := t.TextFrame(id)
	if s == "" {
		return 0
	}

	i, _ := strconv.Atoi(s)
	return i
}

func (t *Tag) TextFrameSlice(id string) []string {
	s := t.TextFrame(id)
	if s == "" {
		return nil
	}

	return strings.Split(s, "\x00")
}

// TextFrameTime parses the text of the frame as an ID3v2.4 timestamp.
// It returns the zero time if the frame is missing or malformed.
func (t *Tag) TextFrameTime(id string) time.Time {
	s := t.TextFrame(id)
	if s == "" {
		return time.Time{}
	}

	ft, err := parseTime(s)
	if err != nil {
		Logging.Println("malformed timestamp in", id+":", err)
		return time.Time{}
	}

	return ft
}

// SetTextFrame replaces the frame specified by id with a text frame.
// The encoding of a replaced frame is retained.
func (t *Tag) SetTextFrame(id string, value string) {
	if desc, ok := userFrameDescription(id); ok {
		t.setUserTextFrame(desc, value)
		return
	}
	t.set(NewFrame(t.localID(id), Text{Text: value}))
}

func (t *Tag) setUserTextFrame(desc string, value string) {
	content := ExtendedText{Description: desc, Value: value}
	id := normalizeID("TXXX")
	for i, f := range t.Frames {
		if normalizeID(f.ID) != id {
			continue
		}
		if c, ok := f.Content.(ExtendedText); ok && c.Description == desc {
			t.Frames[i].Content = content
			return
		}
	}
	t.AddFrame(NewFrame(t.localID("TXXX"), content))
}

func (t *Tag) SetTextFrameNumber(id string, value int) {
	t.SetTextFrame(id, strconv.Itoa(value))
}

func (t *Tag) SetTextFrameSlice(id string, value []string) {
	t.SetTextFrame(id, strings.Join(value, "\x00"))
}

func parseTime(input string) (res time.Time, err error) {
	for _, format := range timeFormats {
		res, err = time.Parse(format, input)
		if err == nil {
			break
		}
	}

	return
}

func userFrameDescription(id string) (string, bool) {
	switch {
	case len(id) > 5 && id[:5] == "TXXX:":
		return id[5:], true
	case len(id) > 4 && id[:4] == "TXX:":
		return id[4:], true
	}
	return "", false
}
