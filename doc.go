/*
Package id3v2 reads and writes ID3v2 tags.

# Supported versions

This library reads and writes ID3v2.2, ID3v2.3 and ID3v2.4 tags.
A decoded tag keeps the version and the frame ids it was read with,
and is written back in that version unless another one is requested
through EncodeOptions. Frame ids are converted between the 3 letter
ids of ID3v2.2 and the 4 letter ids of later versions when needed.

Frames whose id isn't known are kept as Unknown and written back
unchanged.

# Text encodings

The text encoding of a frame is kept in Frame.Encoding. ID3v2.2 and
ID3v2.3 only know ISO-8859-1 and UTF-16; UTF-8 and UTF-16BE frames
are written as UTF-16 there. On those versions multiple values in a
text frame are separated by a slash on disk and by a NUL byte in
memory.

# Errors

Errors returned by this package wrap one of ErrNoTag, ErrParsing,
ErrInvalidInput, ErrUnsupportedFeature and ErrStringDecoding, or an
I/O error. When decoding fails part way through a tag, the frames read
so far can be retrieved with PartialTag.

# Accessing and manipulating frames

There are two ways to access frames: Using provided getter and setter
methods, and working directly with Tag.Frames.

# Writing files

WriteFile rewrites a tag in place. If the new tag fits into the space
used by the old tag and its padding, the rest of the file isn't moved.

# Other containers

ReadV1 reads the ID3v1 tag at the end of a file and ReadAny falls back
to it when there is no ID3v2 tag. ReadWAV and ReadAIFF read tags stored
in the ID3 chunk of WAVE and AIFF files.
*/
package id3v2
