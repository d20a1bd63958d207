// Package message implements the papertrader wire protocol: the Frame data
// unit, its binary codec, the field builder used to assemble payloads and
// the validator that checks a received frame against the shape an
// instruction expects.
//
// Wire layout (big-endian):
//
//	magic       u32  "PTRD"
//	version     u16
//	type        u8
//	instruction i64
//	arg_count   u32
//	chunk_index u32
//	chunk_total u32
//	data_len    u32
//	data        data_len bytes
//
// A payload carried by a single frame uses chunk_index=0, chunk_total=0.
// The layout of data is defined by the instruction and is not
// self-describing; see Build and Fields for the length-prefixed field
// convention used by multi-field instructions.
package message
