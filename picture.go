//go:build !id3v2_nopicture

package id3v2

// decodePictures enables decoding of PIC and APIC frames. Build with
// the id3v2_nopicture tag to keep them as Unknown.
const decodePictures = true
