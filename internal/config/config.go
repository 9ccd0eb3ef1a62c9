// Package config loads the encoder profiles used by id3tag.
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"honnef.co/go/id3v2"
)

// Profile holds the settings used when rewriting tags.
type Profile struct {
	Version           string `yaml:"version"`            // "2.2", "2.3" or "2.4"
	Encoding          string `yaml:"encoding,omitempty"` // Text encoding of new frames
	Unsynchronisation bool   `yaml:"unsynchronisation,omitempty"`
	Compression       bool   `yaml:"compression,omitempty"`
	FileAltered       bool   `yaml:"file_altered,omitempty"`
	Padding           *int   `yaml:"padding,omitempty"` // Padding when the tag has to grow
	StripV1           bool   `yaml:"strip_v1,omitempty"`
}

// Default returns the profile used without a profile file.
func Default() *Profile {
	var p Profile
	p.setDefaults()
	return &p
}

// Load reads a profile from a YAML file.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	return Parse(data)
}

// Parse decodes a profile. Unknown fields are rejected.
func Parse(data []byte) (*Profile, error) {
	var p Profile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}

	p.setDefaults()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// setDefaults applies explicit default values to unset fields.
func (p *Profile) setDefaults() {
	if p.Version == "" {
		p.Version = "2.4"
	}
	if p.Encoding == "" {
		p.Encoding = "default"
	}
	if p.Padding == nil {
		n := id3v2.DefaultPadding
		p.Padding = &n
	}
}

var versions = map[string]id3v2.Version{
	"2.2": id3v2.Version22,
	"2.3": id3v2.Version23,
	"2.4": id3v2.Version24,
}

var encodings = map[string]id3v2.Encoding{
	"default":  id3v2.EncodingDefault,
	"latin1":   id3v2.Latin1,
	"utf-16":   id3v2.UTF16,
	"utf-16be": id3v2.UTF16BE,
	"utf-8":    id3v2.UTF8,
}

// EncodeOptions returns the encoder options of a validated profile.
func (p *Profile) EncodeOptions() id3v2.EncodeOptions {
	return id3v2.EncodeOptions{
		Version:           versions[p.Version],
		Unsynchronisation: p.Unsynchronisation,
		Compression:       p.Compression,
		FileAltered:       p.FileAltered,
		Padding:           *p.Padding,
	}
}

// TextEncoding returns the encoding for frames set by id3tag.
func (p *Profile) TextEncoding() id3v2.Encoding {
	return encodings[p.Encoding]
}
