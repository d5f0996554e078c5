package remote

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/teslashibe/depthsense/pkg/depth"
)

// headerSize is the big-endian color length prefix.
const headerSize = 4

// ErrShortFrame is returned for a message too small to hold its header.
var ErrShortFrame = errors.New("remote: short frame message")

// Encode builds one binary frame message: a 4-byte big-endian color
// length, the encoded color image, then the depth map as little-endian
// uint16 counts in row-major order. Either half may be empty.
func Encode(color []byte, d *depth.Map) []byte {
	n := 0
	if d != nil {
		n = len(d.Data)
	}

	msg := make([]byte, headerSize+len(color)+2*n)
	binary.BigEndian.PutUint32(msg, uint32(len(color)))
	copy(msg[headerSize:], color)

	off := headerSize + len(color)
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint16(msg[off+2*i:], d.Data[i])
	}
	return msg
}

// split separates a frame message into its color bytes and raw depth
// payload.
func split(msg []byte) (color, raw []byte, err error) {
	if len(msg) < headerSize {
		return nil, nil, ErrShortFrame
	}
	n := int(binary.BigEndian.Uint32(msg))
	if n > len(msg)-headerSize {
		return nil, nil, fmt.Errorf("remote: color length %d exceeds message (%d bytes)", n, len(msg))
	}
	return msg[headerSize : headerSize+n], msg[headerSize+n:], nil
}

// decodeDepth turns a raw payload into a depth map. An empty payload is a
// missing depth frame.
func decodeDepth(raw []byte, width, height int, scale float64) (*depth.Map, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	if len(raw) != 2*width*height {
		return nil, fmt.Errorf("remote: depth payload %d bytes, want %d for %dx%d", len(raw), 2*width*height, width, height)
	}

	m := depth.NewMap(width, height)
	m.Scale = scale
	for i := range m.Data {
		m.Data[i] = binary.LittleEndian.Uint16(raw[2*i:])
	}
	return m, nil
}
