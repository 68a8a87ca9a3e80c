// Package bitmap provides the validity bitmap backing nullable column storage.
//
// A Bitmap tracks one bit per row (1 = valid, 0 = null) in packed 64-bit words
// and maintains the count of zero bits incrementally, so NullCount is O(1) for
// any sequence of Get/Set/Resize operations. For bulk index-based construction
// the incremental tracking can be suspended and the count finalized in a single
// scan afterwards; see SuspendNullTracking.
package bitmap

import "math/bits"

const wordBits = 64

// Bitmap is a packed per-row validity flag array with a running null count.
// The zero value is an empty bitmap ready for use.
type Bitmap struct {
	words     []uint64
	length    int64
	nulls     int64
	suspended bool
}

// New creates a bitmap of n rows, all null.
func New(n int64) *Bitmap {
	b := &Bitmap{}
	b.Resize(n)
	return b
}

// Len returns the number of rows tracked by the bitmap.
func (b *Bitmap) Len() int64 {
	return b.length
}

// NullCount returns the number of zero (null) bits. The result is undefined
// while tracking is suspended.
func (b *Bitmap) NullCount() int64 {
	return b.nulls
}

// Get reports whether the bit at row is set (valid). The caller is responsible
// for row being in range.
func (b *Bitmap) Get(row int64) bool {
	return b.words[row/wordBits]&(1<<(uint(row)%wordBits)) != 0
}

// Set sets the bit at row. Setting a bit to its current value leaves the null
// count unchanged.
func (b *Bitmap) Set(row int64, valid bool) {
	word := row / wordBits
	mask := uint64(1) << (uint(row) % wordBits)
	cur := b.words[word]&mask != 0
	if cur == valid {
		return
	}
	if valid {
		b.words[word] |= mask
		if !b.suspended {
			b.nulls--
		}
	} else {
		b.words[word] &^= mask
		if !b.suspended {
			b.nulls++
		}
	}
}

// SetRange sets count bits starting at start, updating the null count once
// rather than per bit.
func (b *Bitmap) SetRange(start, count int64, valid bool) {
	if count <= 0 {
		return
	}
	var flipped int64
	for row := start; row < start+count; row++ {
		word := row / wordBits
		mask := uint64(1) << (uint(row) % wordBits)
		cur := b.words[word]&mask != 0
		if cur == valid {
			continue
		}
		if valid {
			b.words[word] |= mask
		} else {
			b.words[word] &^= mask
		}
		flipped++
	}
	if b.suspended {
		return
	}
	if valid {
		b.nulls -= flipped
	} else {
		b.nulls += flipped
	}
}

// Resize grows or shrinks the bitmap to n rows. New rows are null. Shrinking
// discards the dropped rows' contribution to the null count.
func (b *Bitmap) Resize(n int64) {
	if n == b.length {
		return
	}
	if n > b.length {
		words := int((n + wordBits - 1) / wordBits)
		for len(b.words) < words {
			b.words = append(b.words, 0)
		}
		if !b.suspended {
			b.nulls += n - b.length
		}
		b.length = n
		return
	}
	// Count nulls being dropped before truncating.
	var droppedNulls int64
	if !b.suspended {
		droppedNulls = b.length - n - b.countValidRange(n, b.length-n)
	}
	// Clear bits beyond the new length so future growth starts null.
	b.clearTail(n)
	b.words = b.words[:(n+wordBits-1)/wordBits]
	b.length = n
	if !b.suspended {
		b.nulls -= droppedNulls
	}
}

// SuspendNullTracking disables incremental null counting. Intended for bulk
// gather construction where per-bit count updates would dominate; the caller
// must call ResumeNullTracking before reading NullCount again.
func (b *Bitmap) SuspendNullTracking() {
	b.suspended = true
}

// ResumeNullTracking re-enables incremental counting and recomputes the null
// count in one pass over the words.
func (b *Bitmap) ResumeNullTracking() {
	b.suspended = false
	b.nulls = b.length - b.countValidRange(0, b.length)
}

// Clone returns an independent deep copy.
func (b *Bitmap) Clone() *Bitmap {
	words := make([]uint64, len(b.words))
	copy(words, b.words)
	return &Bitmap{
		words:     words,
		length:    b.length,
		nulls:     b.nulls,
		suspended: b.suspended,
	}
}

// countValidRange returns the number of set bits in [start, start+count).
func (b *Bitmap) countValidRange(start, count int64) int64 {
	var valid int64
	row := start
	end := start + count
	// Leading partial word.
	for row < end && row%wordBits != 0 {
		if b.Get(row) {
			valid++
		}
		row++
	}
	// Full words.
	for ; row+wordBits <= end; row += wordBits {
		valid += int64(bits.OnesCount64(b.words[row/wordBits]))
	}
	// Trailing partial word.
	for ; row < end; row++ {
		if b.Get(row) {
			valid++
		}
	}
	return valid
}

// clearTail zeroes every bit at or beyond row n.
func (b *Bitmap) clearTail(n int64) {
	word := n / wordBits
	if int(word) >= len(b.words) {
		return
	}
	b.words[word] &= (1 << (uint(n) % wordBits)) - 1
	for i := int(word) + 1; i < len(b.words); i++ {
		b.words[i] = 0
	}
}
