package iim

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io/fs"
	"os"

	"github.com/google/uuid"
)

const (
	markerSOI   = 0xD8
	markerEOI   = 0xD9
	markerSOS   = 0xDA
	markerAPP0  = 0xE0
	markerAPP15 = 0xEF
	markerAPP13 = 0xED

	// rawTail marks the pseudo-segment holding everything after the SOS
	// header: entropy-coded scan data through EOI, written back verbatim.
	rawTail = 0x00

	iptcResourceID = 0x0404

	// Standard datasets carry at most a 15-bit length.
	maxDatasetLen = 0x7FFF
)

var (
	photoshopHeader   = []byte("Photoshop 3.0\x00")
	resourceSignature = []byte("8BIM")
)

type segment struct {
	marker byte
	data   []byte
}

func parseSegments(data []byte) ([]segment, error) {
	if len(data) < 2 || data[0] != 0xFF || data[1] != markerSOI {
		return nil, ErrNotJPEG
	}

	var segs []segment
	i := 2
	for i < len(data) {
		if data[i] != 0xFF {
			return nil, fmt.Errorf("%w: expected marker at offset %d", ErrNotJPEG, i)
		}
		// fill bytes before a marker are legal
		for i+1 < len(data) && data[i+1] == 0xFF {
			i++
		}
		if i+1 >= len(data) {
			return nil, ErrTruncated
		}
		marker := data[i+1]
		i += 2

		switch {
		case marker == markerEOI:
			segs = append(segs, segment{marker: markerEOI})
			return segs, nil
		case marker >= 0xD0 && marker <= 0xD7, marker == 0x01:
			segs = append(segs, segment{marker: marker})
		default:
			if i+2 > len(data) {
				return nil, ErrTruncated
			}
			segLen := int(binary.BigEndian.Uint16(data[i:i+2])) - 2
			i += 2
			if segLen < 0 {
				return nil, fmt.Errorf("%w: bad segment length at offset %d", ErrNotJPEG, i)
			}
			if i+segLen > len(data) {
				return nil, ErrTruncated
			}
			segs = append(segs, segment{marker: marker, data: append([]byte(nil), data[i:i+segLen]...)})
			i += segLen

			if marker == markerSOS {
				// Everything from here is entropy-coded data; 0xFF bytes
				// inside it are stuffed, not markers.
				if i < len(data) {
					segs = append(segs, segment{marker: rawTail, data: append([]byte(nil), data[i:]...)})
				}
				return segs, nil
			}
		}
	}
	return segs, nil
}

func encodeSegments(segs []segment) []byte {
	var buf bytes.Buffer
	buf.Write([]byte{0xFF, markerSOI})
	for _, seg := range segs {
		switch {
		case seg.marker == rawTail:
			buf.Write(seg.data)
		case seg.marker == markerEOI, seg.marker >= 0xD0 && seg.marker <= 0xD7, seg.marker == 0x01:
			buf.Write([]byte{0xFF, seg.marker})
		default:
			buf.WriteByte(0xFF)
			buf.WriteByte(seg.marker)
			length := uint16(len(seg.data) + 2)
			buf.WriteByte(byte(length >> 8))
			buf.WriteByte(byte(length))
			buf.Write(seg.data)
		}
	}
	return buf.Bytes()
}

// photoshopResource is one 8BIM image resource inside an APP13 segment.
// Resources other than the IPTC one are carried through untouched.
type photoshopResource struct {
	typ  uint16
	name string
	data []byte
}

func parseResources(data []byte) ([]photoshopResource, error) {
	var resources []photoshopResource
	i := 0
	for i+8 <= len(data) {
		if !bytes.Equal(data[i:i+4], resourceSignature) {
			i++
			continue
		}
		typ := binary.BigEndian.Uint16(data[i+4 : i+6])
		nameLen := int(data[i+6])
		name := ""
		if nameLen > 0 {
			if i+7+nameLen > len(data) {
				return nil, ErrTruncated
			}
			name = string(data[i+7 : i+7+nameLen])
		}
		// the Pascal name field is padded so that its total size is even
		fieldLen := 1 + nameLen
		if fieldLen%2 != 0 {
			fieldLen++
		}
		i += 6 + fieldLen
		if i+4 > len(data) {
			return nil, ErrTruncated
		}
		blockLen := int(binary.BigEndian.Uint32(data[i : i+4]))
		i += 4
		if i+blockLen > len(data) {
			return nil, ErrTruncated
		}
		resources = append(resources, photoshopResource{
			typ:  typ,
			name: name,
			data: append([]byte(nil), data[i:i+blockLen]...),
		})
		i += blockLen
		if blockLen%2 != 0 {
			i++
		}
	}
	return resources, nil
}

func encodeResources(resources []photoshopResource) []byte {
	var buf bytes.Buffer
	for _, res := range resources {
		buf.Write(resourceSignature)
		var typ [2]byte
		binary.BigEndian.PutUint16(typ[:], res.typ)
		buf.Write(typ[:])
		buf.WriteByte(byte(len(res.name)))
		buf.WriteString(res.name)
		if (1+len(res.name))%2 != 0 {
			buf.WriteByte(0)
		}
		var blockLen [4]byte
		binary.BigEndian.PutUint32(blockLen[:], uint32(len(res.data)))
		buf.Write(blockLen[:])
		buf.Write(res.data)
		if len(res.data)%2 != 0 {
			buf.WriteByte(0)
		}
	}
	return buf.Bytes()
}

func decodeIPTC(block []byte) ([]Record, error) {
	var records []Record
	i := 0
	for i+5 <= len(block) {
		if block[i] != 0x1C {
			i++
			continue
		}
		length := int(binary.BigEndian.Uint16(block[i+3 : i+5]))
		if length > maxDatasetLen {
			return nil, fmt.Errorf("%w: extended dataset at offset %d", ErrCorruptIPTC, i)
		}
		if i+5+length > len(block) {
			return nil, fmt.Errorf("%w: dataset overruns block at offset %d", ErrCorruptIPTC, i)
		}
		records = append(records, Record{
			Record:  block[i+1],
			Dataset: block[i+2],
			Value:   string(block[i+5 : i+5+length]),
		})
		i += 5 + length
	}
	return records, nil
}

func encodeIPTC(rs *RecordSet) ([]byte, error) {
	if rs.Len() == 0 {
		return nil, nil
	}
	var buf bytes.Buffer
	for _, r := range rs.Records() {
		if len(r.Value) > maxDatasetLen {
			return nil, fmt.Errorf("%w: %s", ErrValueTooLong, r.Key())
		}
		buf.WriteByte(0x1C)
		buf.WriteByte(r.Record)
		buf.WriteByte(r.Dataset)
		var length [2]byte
		binary.BigEndian.PutUint16(length[:], uint16(len(r.Value)))
		buf.Write(length[:])
		buf.WriteString(r.Value)
	}
	return buf.Bytes(), nil
}

// File is an opened JPEG held fully in memory. The segment list is the
// write-back template: Flush re-embeds a record set into it and rewrites
// the file, leaving every other segment and Photoshop resource intact.
type File struct {
	path     string
	mode     fs.FileMode
	segments []segment
}

// Open reads and parses a JPEG file, returning the handle and the IPTC
// record set found in it (empty when the file carries none). The whole
// metadata set is loaded eagerly; no further reads happen until Flush.
func Open(path string) (*File, *RecordSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	segs, err := parseSegments(data)
	if err != nil {
		return nil, nil, err
	}

	mode := fs.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	f := &File{path: path, mode: mode, segments: segs}
	records, err := f.decodeRecords()
	if err != nil {
		return nil, nil, err
	}
	return f, NewRecordSet(records), nil
}

// Path returns the file path the handle was opened from.
func (f *File) Path() string {
	return f.path
}

func (f *File) app13Index() int {
	for i, seg := range f.segments {
		if seg.marker == markerAPP13 && bytes.HasPrefix(seg.data, photoshopHeader) {
			return i
		}
	}
	return -1
}

func (f *File) decodeRecords() ([]Record, error) {
	idx := f.app13Index()
	if idx < 0 {
		return nil, nil
	}
	resources, err := parseResources(f.segments[idx].data[len(photoshopHeader):])
	if err != nil {
		return nil, err
	}
	for _, res := range resources {
		if res.typ == iptcResourceID {
			return decodeIPTC(res.data)
		}
	}
	return nil, nil
}

// spliceIPTC rebuilds the APP13 segment around the given IPTC block. A
// nil block removes the IPTC resource; an APP13 left without resources
// is dropped entirely.
func (f *File) spliceIPTC(iptcData []byte) error {
	idx := f.app13Index()

	if idx < 0 {
		if iptcData == nil {
			return nil
		}
		data := append([]byte(nil), photoshopHeader...)
		data = append(data, encodeResources([]photoshopResource{{typ: iptcResourceID, data: iptcData}})...)
		f.insertSegment(segment{marker: markerAPP13, data: data})
		return nil
	}

	resources, err := parseResources(f.segments[idx].data[len(photoshopHeader):])
	if err != nil {
		return err
	}

	out := resources[:0]
	replaced := false
	for _, res := range resources {
		if res.typ == iptcResourceID {
			if iptcData == nil || replaced {
				continue
			}
			res.data = iptcData
			replaced = true
		}
		out = append(out, res)
	}
	if !replaced && iptcData != nil {
		out = append(out, photoshopResource{typ: iptcResourceID, data: iptcData})
	}

	if len(out) == 0 {
		f.segments = append(f.segments[:idx], f.segments[idx+1:]...)
		return nil
	}
	data := append([]byte(nil), photoshopHeader...)
	f.segments[idx].data = append(data, encodeResources(out)...)
	return nil
}

// insertSegment places a new segment after the last APPn marker, or
// first when the file has none.
func (f *File) insertSegment(seg segment) {
	pos := 0
	for i, s := range f.segments {
		if s.marker >= markerAPP0 && s.marker <= markerAPP15 {
			pos = i + 1
		}
	}
	f.segments = append(f.segments, segment{})
	copy(f.segments[pos+1:], f.segments[pos:])
	f.segments[pos] = seg
}

// Flush embeds the record set into the segment list and atomically
// rewrites the file: the new bytes land in a temp file in the same
// directory, which then replaces the original.
func (f *File) Flush(rs *RecordSet) error {
	iptcData, err := encodeIPTC(rs)
	if err != nil {
		return err
	}
	if err := f.spliceIPTC(iptcData); err != nil {
		return err
	}

	tmp := fmt.Sprintf("%s.%s.tmp", f.path, uuid.NewString()[:8])
	if err := os.WriteFile(tmp, encodeSegments(f.segments), f.mode); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing %s: %w", f.path, err)
	}
	return nil
}
