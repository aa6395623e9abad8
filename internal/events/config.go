package events

const DefaultBufferSize = 32

type Config struct {
	// Per-subscriber queue length; events for a full queue are dropped
	BufferSize int
}
