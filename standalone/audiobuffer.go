package standalone

import (
	"io"
	"sync"
)

// AudioRingBuffer is a fixed-capacity byte ring connecting the
// emulation thread (Write) to oto's playback goroutine (Read). Writes
// never block: when the buffer is full the oldest bytes are dropped,
// trading a glitch for emulation staying on schedule. Read blocks until
// data arrives or the buffer is closed, then returns io.EOF once
// drained.
type AudioRingBuffer struct {
	mu      sync.Mutex
	cond    *sync.Cond
	buf     []byte
	readPos int
	count   int
	closed  bool
}

// NewAudioRingBuffer creates a ring buffer holding up to capacity bytes.
func NewAudioRingBuffer(capacity int) *AudioRingBuffer {
	rb := &AudioRingBuffer{
		buf: make([]byte, capacity),
	}
	rb.cond = sync.NewCond(&rb.mu)
	return rb
}

// Write appends p to the buffer, dropping the oldest bytes on overflow.
// Writes to a closed buffer are ignored.
func (rb *AudioRingBuffer) Write(p []byte) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	if rb.closed {
		return
	}

	// Only the tail of an oversized write can ever be heard.
	if len(p) > len(rb.buf) {
		p = p[len(p)-len(rb.buf):]
	}

	overflow := rb.count + len(p) - len(rb.buf)
	if overflow > 0 {
		rb.readPos = (rb.readPos + overflow) % len(rb.buf)
		rb.count -= overflow
	}

	writePos := (rb.readPos + rb.count) % len(rb.buf)
	n := copy(rb.buf[writePos:], p)
	copy(rb.buf, p[n:])
	rb.count += len(p)

	rb.cond.Signal()
}

// Read implements io.Reader for oto. It blocks until data is available,
// and returns io.EOF once the buffer is closed and drained.
func (rb *AudioRingBuffer) Read(p []byte) (int, error) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	for rb.count == 0 && !rb.closed {
		rb.cond.Wait()
	}
	if rb.count == 0 && rb.closed {
		return 0, io.EOF
	}

	n := len(p)
	if n > rb.count {
		n = rb.count
	}

	m := copy(p[:n], rb.buf[rb.readPos:])
	copy(p[m:n], rb.buf)
	rb.readPos = (rb.readPos + n) % len(rb.buf)
	rb.count -= n
	return n, nil
}

// Buffered returns the number of unread bytes.
func (rb *AudioRingBuffer) Buffered() int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.count
}

// Clear discards all buffered bytes.
func (rb *AudioRingBuffer) Clear() {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	rb.readPos = 0
	rb.count = 0
}

// Close marks the buffer closed and wakes any blocked reader. Remaining
// bytes stay readable; after they drain, Read returns io.EOF.
func (rb *AudioRingBuffer) Close() {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	rb.closed = true
	rb.cond.Broadcast()
}
