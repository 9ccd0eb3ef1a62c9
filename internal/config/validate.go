package config

import (
	"fmt"
)

// Validate checks that all profile values are within acceptable ranges.
// Returns an error describing the first validation failure found.
func (p *Profile) Validate() error {
	if _, ok := versions[p.Version]; !ok {
		return fmt.Errorf("version must be one of 2.2, 2.3 or 2.4, got %q", p.Version)
	}
	if _, ok := encodings[p.Encoding]; !ok {
		return fmt.Errorf("unknown encoding %q", p.Encoding)
	}
	if p.Padding != nil && *p.Padding < 0 {
		return fmt.Errorf("padding must not be negative, got %d", *p.Padding)
	}
	if p.Compression && p.Version == "2.2" {
		return fmt.Errorf("compression is not available for version 2.2")
	}
	return nil
}
