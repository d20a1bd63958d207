package message

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const (
	Magic   uint32 = 0x50545244
	Version uint16 = 1

	// HeaderLen is the size of the fixed header preceding data.
	HeaderLen = 4 + 2 + 1 + 8 + 4 + 4 + 4 + 4

	// MaxDataLen bounds the payload of a single frame.
	MaxDataLen = 8 * 1024 * 1024
)

// Frame is one complete unit of the protocol. Frames are created per send or
// receive and are not reused.
type Frame struct {
	Type        Type
	Instruction int64
	ArgCount    uint32
	ChunkIndex  uint32
	ChunkTotal  uint32
	Data        []byte
}

// Equal reports whether f and o carry the same header values and data.
// A nil and an empty Data compare equal.
func (f Frame) Equal(o Frame) bool {
	return f.Type == o.Type &&
		f.Instruction == o.Instruction &&
		f.ArgCount == o.ArgCount &&
		f.ChunkIndex == o.ChunkIndex &&
		f.ChunkTotal == o.ChunkTotal &&
		bytes.Equal(f.Data, o.Data)
}

func (f Frame) String() string {
	return fmt.Sprintf("(%s, %d, %d, %d, %d, %d bytes)",
		f.Type, f.Instruction, f.ArgCount, f.ChunkIndex, f.ChunkTotal, len(f.Data))
}

// Encode serializes f into its wire form.
func Encode(f Frame) ([]byte, error) {
	if len(f.Data) > MaxDataLen {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, len(f.Data))
	}

	buf := make([]byte, HeaderLen+len(f.Data))
	binary.BigEndian.PutUint32(buf[0:4], Magic)
	binary.BigEndian.PutUint16(buf[4:6], Version)
	buf[6] = byte(f.Type)
	binary.BigEndian.PutUint64(buf[7:15], uint64(f.Instruction))
	binary.BigEndian.PutUint32(buf[15:19], f.ArgCount)
	binary.BigEndian.PutUint32(buf[19:23], f.ChunkIndex)
	binary.BigEndian.PutUint32(buf[23:27], f.ChunkTotal)
	binary.BigEndian.PutUint32(buf[27:31], uint32(len(f.Data)))
	copy(buf[HeaderLen:], f.Data)
	return buf, nil
}

// Decode parses exactly one frame from b. Truncated input, trailing bytes or
// a corrupt header yield an error wrapping ErrFrameDecode. Decode does not
// check that the frame makes sense for its instruction; see Validate.
func Decode(b []byte) (Frame, error) {
	n, err := FrameLen(b)
	if err != nil {
		if err == ErrIncomplete {
			return Frame{}, fmt.Errorf("%w: truncated input (%d bytes)", ErrFrameDecode, len(b))
		}
		return Frame{}, err
	}
	if n != len(b) {
		return Frame{}, fmt.Errorf("%w: %d trailing bytes", ErrFrameDecode, len(b)-n)
	}

	f := Frame{
		Type:        Type(b[6]),
		Instruction: int64(binary.BigEndian.Uint64(b[7:15])),
		ArgCount:    binary.BigEndian.Uint32(b[15:19]),
		ChunkIndex:  binary.BigEndian.Uint32(b[19:23]),
		ChunkTotal:  binary.BigEndian.Uint32(b[23:27]),
	}
	if n > HeaderLen {
		f.Data = make([]byte, n-HeaderLen)
		copy(f.Data, b[HeaderLen:n])
	}
	return f, nil
}

// FrameLen inspects the header at the start of b and returns the total
// length of that frame. It returns ErrIncomplete when b does not yet hold
// the whole frame, which lets stream readers keep accumulating bytes.
func FrameLen(b []byte) (int, error) {
	if len(b) < HeaderLen {
		return 0, ErrIncomplete
	}
	if m := binary.BigEndian.Uint32(b[0:4]); m != Magic {
		return 0, fmt.Errorf("%w: invalid magic %#x", ErrFrameDecode, m)
	}
	if v := binary.BigEndian.Uint16(b[4:6]); v != Version {
		return 0, fmt.Errorf("%w: unsupported version %d", ErrFrameDecode, v)
	}
	dataLen := binary.BigEndian.Uint32(b[27:31])
	if dataLen > MaxDataLen {
		return 0, fmt.Errorf("%w: data length %d exceeds %d", ErrFrameDecode, dataLen, MaxDataLen)
	}
	total := HeaderLen + int(dataLen)
	if len(b) < total {
		return 0, ErrIncomplete
	}
	return total, nil
}
