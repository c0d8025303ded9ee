package rollup

// ringBuffer is a fixed-capacity FIFO holding elements between windows.
// It is not synchronized; the owning rollup guards it with its mutex.
type ringBuffer[T any] struct {
	items []T
	head  int
	tail  int
	count int
}

func newRingBuffer[T any](capacity int) *ringBuffer[T] {
	return &ringBuffer[T]{items: make([]T, capacity)}
}

func (rb *ringBuffer[T]) len() int   { return rb.count }
func (rb *ringBuffer[T]) full() bool { return rb.count == len(rb.items) }

// push appends a value, reporting false when the buffer is full.
func (rb *ringBuffer[T]) push(v T) bool {
	if rb.full() {
		return false
	}
	rb.items[rb.tail] = v
	rb.tail = (rb.tail + 1) % len(rb.items)
	rb.count++
	return true
}

// pop removes and returns the oldest value.
func (rb *ringBuffer[T]) pop() (T, bool) {
	var zero T
	if rb.count == 0 {
		return zero, false
	}
	v := rb.items[rb.head]
	rb.items[rb.head] = zero // Clear reference
	rb.head = (rb.head + 1) % len(rb.items)
	rb.count--
	return v, true
}

// drain removes all buffered values in insertion order.
func (rb *ringBuffer[T]) drain() []T {
	if rb.count == 0 {
		return nil
	}
	out := make([]T, 0, rb.count)
	for rb.count > 0 {
		v, _ := rb.pop()
		out = append(out, v)
	}
	return out
}
