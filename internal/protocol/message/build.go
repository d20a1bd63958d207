package message

import (
	"encoding"
	"encoding/binary"
	"fmt"
)

// fieldPrefixLen is the size of the length prefix in front of byte-like fields.
const fieldPrefixLen = 4

// Build assembles a Frame whose data is the concatenation of the serialized
// fields, in the order given.
//
// Supported field kinds:
//
//	[]byte, string, encoding.BinaryMarshaler  u32 length ++ bytes
//	int64, uint64                             8 bytes
//	uint32                                    4 bytes
//	bool                                      1 byte
//
// Any other kind, or a marshaler that fails, yields an error wrapping
// ErrFrameBuild.
func Build(typ Type, instruction int64, argCount, chunkIndex, chunkTotal uint32, fields ...any) (Frame, error) {
	var data []byte
	for i, field := range fields {
		var err error
		data, err = appendField(data, field)
		if err != nil {
			return Frame{}, fmt.Errorf("%w: field %d: %v", ErrFrameBuild, i, err)
		}
	}
	if len(data) > MaxDataLen {
		return Frame{}, fmt.Errorf("%w: %v", ErrFrameBuild, ErrTooLarge)
	}

	return Frame{
		Type:        typ,
		Instruction: instruction,
		ArgCount:    argCount,
		ChunkIndex:  chunkIndex,
		ChunkTotal:  chunkTotal,
		Data:        data,
	}, nil
}

func appendField(dst []byte, field any) ([]byte, error) {
	switch v := field.(type) {
	case []byte:
		return appendBytes(dst, v)
	case string:
		return appendBytes(dst, []byte(v))
	case encoding.BinaryMarshaler:
		b, err := v.MarshalBinary()
		if err != nil {
			return nil, err
		}
		return appendBytes(dst, b)
	case int64:
		return binary.BigEndian.AppendUint64(dst, uint64(v)), nil
	case uint64:
		return binary.BigEndian.AppendUint64(dst, v), nil
	case uint32:
		return binary.BigEndian.AppendUint32(dst, v), nil
	case bool:
		if v {
			return append(dst, 1), nil
		}
		return append(dst, 0), nil
	default:
		return nil, fmt.Errorf("unsupported field type %T", field)
	}
}

func appendBytes(dst, b []byte) ([]byte, error) {
	if len(b) > MaxDataLen {
		return nil, ErrTooLarge
	}
	dst = binary.BigEndian.AppendUint32(dst, uint32(len(b)))
	return append(dst, b...), nil
}

// Fields splits data into exactly n length-prefixed byte fields, as written
// by Build for []byte, string and BinaryMarshaler values. The returned
// slices are copies.
func Fields(data []byte, n int) ([][]byte, error) {
	out := make([][]byte, 0, n)
	off := 0
	for i := 0; i < n; i++ {
		if len(data)-off < fieldPrefixLen {
			return nil, fmt.Errorf("%w: field %d: short length prefix", ErrFrameDecode, i)
		}
		l := int(binary.BigEndian.Uint32(data[off : off+fieldPrefixLen]))
		off += fieldPrefixLen
		if l > len(data)-off {
			return nil, fmt.Errorf("%w: field %d: short value (%d > %d)", ErrFrameDecode, i, l, len(data)-off)
		}
		val := make([]byte, l)
		copy(val, data[off:off+l])
		out = append(out, val)
		off += l
	}
	if off != len(data) {
		return nil, fmt.Errorf("%w: %d bytes after %d fields", ErrFrameDecode, len(data)-off, n)
	}
	return out, nil
}
