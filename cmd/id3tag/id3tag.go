// id3tag sets text frames of audio files and rewrites their tags in
// place.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"reflect"
	"strings"

	"honnef.co/go/id3v2"
	"honnef.co/go/id3v2/internal/config"
)

type assignments []string

func (a *assignments) String() string { return strings.Join(*a, ", ") }

func (a *assignments) Set(s string) error {
	if !strings.Contains(s, "=") {
		return fmt.Errorf("%q is not of the form ID=value", s)
	}
	*a = append(*a, s)
	return nil
}

var (
	fProfile = flag.String("profile", "", "YAML encoder profile")
	fVerbose = flag.Bool("v", false, "log encoder activity")
	fClear   = flag.Bool("clear", false, "remove all existing frames")
	fRemove  = flag.Bool("remove", false, "remove the tag instead of writing it")
	fTitle   = flag.String("title", "", "set the title")
	fArtist  = flag.String("artist", "", "set the artist")
	fAlbum   = flag.String("album", "", "set the album")
	fGenre   = flag.String("genre", "", "set the genre")
	fYear    = flag.Int("year", 0, "set the year")
	fTrack   = flag.Int("track", 0, "set the track number")
	fComment = flag.String("comment", "", "set the comment")
	fSet     assignments
)

func init() {
	flag.Var(&fSet, "set", "set a text frame, as ID=value or TXXX:description=value (repeatable)")
}

// apply edits tag according to the flags. Frames it adds or changes
// are written in enc, other frames keep their encoding.
func apply(tag *id3v2.Tag, enc id3v2.Encoding) {
	before := append([]id3v2.Frame(nil), tag.Frames...)
	if *fClear {
		tag.Clear()
	}
	if *fTitle != "" {
		tag.SetTitle(*fTitle)
	}
	if *fArtist != "" {
		tag.SetArtist(*fArtist)
	}
	if *fAlbum != "" {
		tag.SetAlbum(*fAlbum)
	}
	if *fGenre != "" {
		tag.SetGenre(*fGenre)
	}
	if *fYear != 0 {
		tag.SetYear(*fYear)
	}
	if *fTrack != 0 {
		tag.SetTrack(*fTrack, 0)
	}
	if *fComment != "" {
		tag.SetComments([]id3v2.Comment{{Language: "eng", Text: *fComment}})
	}
	for _, s := range fSet {
		id, value, _ := strings.Cut(s, "=")
		tag.SetTextFrame(id, value)
	}

	if enc == id3v2.EncodingDefault {
		return
	}
	for i, f := range tag.Frames {
		if !unchanged(f, before) {
			tag.Frames[i].Encoding = enc
		}
	}
}

func unchanged(f id3v2.Frame, frames []id3v2.Frame) bool {
	for _, o := range frames {
		if o.ID == f.ID && reflect.DeepEqual(o.Content, f.Content) {
			return true
		}
	}
	return false
}

func process(name string, profile *config.Profile) error {
	if *fRemove {
		ok, err := id3v2.RemoveFromPath(name)
		if err != nil {
			return err
		}
		if !ok {
			log.Printf("%s: no ID3v2 tag", name)
		}
		return nil
	}

	f, err := id3v2.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	opts := profile.EncodeOptions()
	f.Tag.Version = opts.Version
	apply(f.Tag, profile.TextEncoding())
	if err := f.Save(opts); err != nil {
		return err
	}
	if profile.StripV1 {
		return stripV1(name)
	}
	return nil
}

func stripV1(name string) error {
	f, err := os.OpenFile(name, os.O_RDWR, 0)
	if err != nil {
		return err
	}
	if _, err := id3v2.RemoveV1FromFile(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func main() {
	flag.Parse()
	id3v2.Logging = id3v2.LogFlag(*fVerbose)

	profile := config.Default()
	if *fProfile != "" {
		var err error
		profile, err = config.Load(*fProfile)
		if err != nil {
			log.Fatal(err)
		}
	}

	failed := false
	for _, name := range flag.Args() {
		if err := process(name, profile); err != nil {
			log.Printf("%s: %s", name, err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}
