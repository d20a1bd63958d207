package common

// MaxUsernameLen bounds the username accepted at registration, in bytes.
const MaxUsernameLen = 64
