package network

import "time"

// Options tunes connection behavior.
type Options struct {
	// ReadPollInterval bounds one read turn. When it expires without data
	// the turn ends, like a non-blocking read that would block.
	ReadPollInterval time.Duration
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	ReadBufferSize   int
	// OutboxSize is the number of frames that may wait for the writer.
	OutboxSize int
	// InboxSize is the number of frames a ClientConn keeps for Await.
	InboxSize int
}

// DefaultOptions returns the defaults used by the server and client binaries.
func DefaultOptions() Options {
	return Options{
		ReadPollInterval: 250 * time.Millisecond,
		HandshakeTimeout: 5 * time.Second,
		WriteTimeout:     15 * time.Second,
		ReadBufferSize:   16 * 1024,
		OutboxSize:       64,
		InboxSize:        16,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.ReadPollInterval <= 0 {
		o.ReadPollInterval = d.ReadPollInterval
	}
	if o.HandshakeTimeout <= 0 {
		o.HandshakeTimeout = d.HandshakeTimeout
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = d.WriteTimeout
	}
	if o.ReadBufferSize <= 0 {
		o.ReadBufferSize = d.ReadBufferSize
	}
	if o.OutboxSize <= 0 {
		o.OutboxSize = d.OutboxSize
	}
	if o.InboxSize <= 0 {
		o.InboxSize = d.InboxSize
	}
	return o
}

// Budget is the bounded wait applied to a response: up to Attempts polls,
// Delay apart.
type Budget struct {
	Attempts int
	Delay    time.Duration
}

// DefaultBudget is 15 attempts of 500ms.
func DefaultBudget() Budget {
	return Budget{Attempts: 15, Delay: 500 * time.Millisecond}
}
