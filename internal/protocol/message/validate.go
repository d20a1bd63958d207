package message

// Check is one optional condition applied by Validate.
type Check func(f Frame) bool

// WithInstruction requires the frame instruction to equal v.
func WithInstruction(v int64) Check {
	return func(f Frame) bool { return f.Instruction == v }
}

// WithArgCount requires the frame argument count to equal v.
func WithArgCount(v uint32) Check {
	return func(f Frame) bool { return f.ArgCount == v }
}

// WithChunkIndex requires the frame chunk index to equal v.
func WithChunkIndex(v uint32) Check {
	return func(f Frame) bool { return f.ChunkIndex == v }
}

// WithDataLen requires the frame data to be exactly v bytes long.
func WithDataLen(v int) Check {
	return func(f Frame) bool { return len(f.Data) == v }
}

// Validate reports whether f has the expected type and satisfies every
// given check. Checks that are not passed are not applied, so callers only
// assert what matters for the instruction they handle.
//
// Validate never fails loudly: servers treat false as "close the
// connection", clients as a protocol error.
func Validate(f Frame, expected Type, checks ...Check) bool {
	if f.Type != expected {
		return false
	}
	for _, c := range checks {
		if c != nil && !c(f) {
			return false
		}
	}
	return true
}
