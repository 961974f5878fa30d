package imaging

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// jfifSegmentLength is the payload length of a thumbnail-free JFIF APP0
// segment, including the two length bytes.
const jfifSegmentLength = 16

// StampDensity returns the JPEG stream with the JFIF APP0 density fields set
// to dpi x dpi dots per inch. The stdlib encoder emits no APP0 segment, in
// which case one is inserted directly after the SOI marker; an existing JFIF
// segment is patched in place. Pixel data is untouched.
func StampDensity(data []byte, dpi int) ([]byte, error) {
	if dpi <= 0 || dpi > 0xFFFF {
		return nil, fmt.Errorf("dpi out of range: %d", dpi)
	}
	if len(data) < 4 || data[0] != 0xFF || data[1] != 0xD8 {
		return nil, errors.New("not a JPEG stream")
	}

	// Existing JFIF APP0 right after SOI: patch units and density in place.
	if data[2] == 0xFF && data[3] == 0xE0 && len(data) >= 18 &&
		string(data[6:11]) == "JFIF\x00" {
		out := make([]byte, len(data))
		copy(out, data)
		out[13] = 1 // dots per inch
		binary.BigEndian.PutUint16(out[14:], uint16(dpi))
		binary.BigEndian.PutUint16(out[16:], uint16(dpi))
		return out, nil
	}

	segment := make([]byte, 2+jfifSegmentLength)
	segment[0] = 0xFF
	segment[1] = 0xE0
	binary.BigEndian.PutUint16(segment[2:], jfifSegmentLength)
	copy(segment[4:], "JFIF\x00")
	segment[9] = 1  // version 1.02
	segment[10] = 2
	segment[11] = 1 // density units: dots per inch
	binary.BigEndian.PutUint16(segment[12:], uint16(dpi))
	binary.BigEndian.PutUint16(segment[14:], uint16(dpi))
	// Thumbnail dimensions stay zero.

	out := make([]byte, 0, len(data)+len(segment))
	out = append(out, data[:2]...)
	out = append(out, segment...)
	out = append(out, data[2:]...)
	return out, nil
}

// ReadDensity extracts the stamped DPI from a JPEG stream's JFIF APP0
// segment. It returns 0 when no density in dots per inch is recorded.
func ReadDensity(data []byte) int {
	if len(data) < 18 || data[0] != 0xFF || data[1] != 0xD8 {
		return 0
	}
	if data[2] != 0xFF || data[3] != 0xE0 || string(data[6:11]) != "JFIF\x00" {
		return 0
	}
	if data[13] != 1 {
		return 0
	}
	return int(binary.BigEndian.Uint16(data[14:]))
}
