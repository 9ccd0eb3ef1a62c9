package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/davecgh/go-spew/spew"

	"honnef.co/go/id3v2"
)

var (
	fVerbose = flag.Bool("v", false, "log decoder activity")
	fDump    = flag.Bool("dump", false, "dump the decoded frames")
)

func printFile(name string) {
	fmt.Println(name)
	f, err := os.Open(name)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()
	r := bufio.NewReader(f)

	ok, err := id3v2.Check(r)
	if err != nil {
		fmt.Println(err)
		return
	}

	var tag *id3v2.Tag
	if ok {
		tag, err = id3v2.NewDecoder(r).Parse()
	} else {
		tag, err = id3v2.ReadAny(f)
	}
	if err != nil {
		fmt.Println(err)
		if tag == nil {
			return
		}
	}

	if *fDump {
		spew.Dump(tag)
		return
	}

	fmt.Println(tag.Version)
	for _, frame := range tag.Frames {
		switch c := frame.Content.(type) {
		case id3v2.ExtendedText:
			fmt.Printf("%s: %s\n", c.Description, c.Value)
		case id3v2.Comment:
			fmt.Printf("%s [%s] %s: %s\n", id3v2.FrameName(frame.ID), c.Language, c.Description, c.Text)
		default:
			fmt.Printf("%s: %s\n", id3v2.FrameName(frame.ID), c)
		}
	}
}

func main() {
	flag.Parse()
	id3v2.Logging = id3v2.LogFlag(*fVerbose)
	for _, name := range flag.Args() {
		printFile(name)
		fmt.Println()
	}
}
