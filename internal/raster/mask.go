package raster

// Mask marks no-data samples; true means masked.
type Mask []bool

// NewMask returns an all-valid mask of n samples.
func NewMask(n int) Mask { return make(Mask, n) }

// Union returns a new mask set wherever m or o is set. Both masks must have
// the same length.
func (m Mask) Union(o Mask) Mask {
	out := make(Mask, len(m))
	for i := range m {
		out[i] = m[i] || o[i]
	}
	return out
}

// Clone returns a copy of m.
func (m Mask) Clone() Mask {
	out := make(Mask, len(m))
	copy(out, m)
	return out
}

// Count returns the number of masked samples.
func (m Mask) Count() int {
	n := 0
	for _, v := range m {
		if v {
			n++
		}
	}
	return n
}
