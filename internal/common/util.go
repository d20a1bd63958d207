package common

// WipeByteArray overwrites b with zeros. It is used to drop secrets such as
// passwords from memory once they have been hashed. A nil slice is ignored.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
