package iim

import "errors"

// ErrNotJPEG is returned when a file does not begin with a JPEG SOI
// marker.
var ErrNotJPEG = errors.New("iim: not a JPEG file")

// ErrTruncated is returned when a segment or resource block claims more
// bytes than the file contains.
var ErrTruncated = errors.New("iim: truncated data")

// ErrCorruptIPTC is returned when the IPTC resource block cannot be
// decoded, including extended datasets, which this package does not
// support.
var ErrCorruptIPTC = errors.New("iim: corrupt IPTC block")

// ErrUnknownKey is returned when a dotted key cannot be resolved to a
// record and dataset.
var ErrUnknownKey = errors.New("iim: unknown IPTC key")

// ErrValueTooLong is returned when a value exceeds the 32767 byte limit
// of a standard IIM dataset.
var ErrValueTooLong = errors.New("iim: value exceeds standard dataset size")
