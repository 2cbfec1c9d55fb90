package harness

import "strconv"

// KeyIterator is a direct port of original_source/.../utils/KeyIterator.cpp:
// an odometer-style counter over a `width`-ary, `depth`-digit coordinate
// space, used to unroll a map's interference space into a finite,
// explicit list of cells (spec.md §4.12 step 5b's "indexed coordinate
// space of width ... and depth ..."). Each digit ranges over
// [0, width), the last digit increments fastest, and incrementing past
// width-1 carries into the next digit -- exactly as the original's
// `next()` does.
type KeyIterator struct {
	width  int
	depth  int
	digits []int
	full   bool
}

// NewKeyIterator builds an iterator positioned at the all-zero tuple. A
// zero width or depth starts (and stays) full, matching the original's
// treatment of a degenerate coordinate space as immediately exhausted.
func NewKeyIterator(width, depth int) *KeyIterator {
	k := &KeyIterator{width: width, depth: depth, digits: make([]int, depth)}
	if width <= 0 || depth <= 0 {
		k.full = true
	}
	return k
}

// IsFull reports whether every tuple has already been visited (the
// original's `is_full`).
func (k *KeyIterator) IsFull() bool { return k.full }

// Digits returns the current tuple, index 0 is the slowest-changing
// (leftmost) digit.
func (k *KeyIterator) Digits() []int {
	out := make([]int, len(k.digits))
	copy(out, k.digits)
	return out
}

// Suffix renders the current tuple as the flattened identifier suffix
// C12 appends to a per-cell variable name (e.g. `data_0_3`), matching the
// original's `suffix()`.
func (k *KeyIterator) Suffix() string {
	out := ""
	for _, d := range k.digits {
		out += "_" + strconv.Itoa(d)
	}
	return out
}

// Next advances to the following tuple (the original's `next()`: the
// last digit increments, carrying leftward on overflow; overflowing the
// first digit marks the iterator full).
func (k *KeyIterator) Next() {
	if k.full {
		return
	}
	for i := k.depth - 1; i >= 0; i-- {
		k.digits[i]++
		if k.digits[i] < k.width {
			return
		}
		k.digits[i] = 0
		if i == 0 {
			k.full = true
		}
	}
}
