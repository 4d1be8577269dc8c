// Package core holds the process-wide room registry and the small
// interfaces the relay layer is written against.
package core

// Frame is one encoded wire message.
type Frame []byte

// SignalConnection abstracts a system messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}
