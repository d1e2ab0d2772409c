package ui

const (
	// BufferCapacity is the byte size of an input buffer. One byte stays
	// reserved for a terminator.
	BufferCapacity = 64
	// MaxDescriptionLen is the longest description the UI produces.
	MaxDescriptionLen = BufferCapacity - 1
)

// Buffer is a fixed-capacity single-line byte editor with a cursor.
// Invariant: 0 <= cursor <= size <= MaxDescriptionLen.
type Buffer struct {
	data   [BufferCapacity]byte
	size   int
	cursor int
}

func (b *Buffer) Len() int       { return b.size }
func (b *Buffer) Cursor() int    { return b.cursor }
func (b *Buffer) String() string { return string(b.data[:b.size]) }

// Insert writes c at the cursor and advances it. It reports false, leaving the
// buffer untouched, when the buffer is full.
func (b *Buffer) Insert(c byte) bool {
	if b.size+1 > MaxDescriptionLen {
		return false
	}
	for i := b.size; i > b.cursor; i-- {
		b.data[i] = b.data[i-1]
	}
	b.data[b.cursor] = c
	b.cursor++
	b.size++
	return true
}

// Backspace removes the byte left of the cursor.
func (b *Buffer) Backspace() {
	if b.size == 0 || b.cursor == 0 {
		return
	}
	b.cursor--
	copy(b.data[b.cursor:b.size], b.data[b.cursor+1:b.size])
	b.size--
	b.data[b.size] = 0
}

func (b *Buffer) Left() {
	if b.cursor > 0 {
		b.cursor--
	}
}

func (b *Buffer) Right() {
	if b.cursor < b.size {
		b.cursor++
	}
}

// Set replaces the contents with s, truncated to MaxDescriptionLen, and puts
// the cursor at the end.
func (b *Buffer) Set(s string) {
	b.Reset()
	if len(s) > MaxDescriptionLen {
		s = s[:MaxDescriptionLen]
	}
	b.size = copy(b.data[:], s)
	b.cursor = b.size
}

// Reset empties the buffer.
func (b *Buffer) Reset() {
	b.data = [BufferCapacity]byte{}
	b.size = 0
	b.cursor = 0
}
