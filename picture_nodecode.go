//go:build id3v2_nopicture

package id3v2

const decodePictures = false
