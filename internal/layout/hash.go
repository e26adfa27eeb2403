package layout

import "unicode/utf16"

// HashString is the rolling hash used to seed node placement and zone colors:
// hash = hash*31 + c over UTF-16 code units, wrapped to int32, absolute value.
// The result is stable across processes and platforms.
func HashString(s string) uint32 {
	var hash int32
	for _, c := range utf16.Encode([]rune(s)) {
		hash = (hash << 5) - hash + int32(c)
	}
	if hash < 0 {
		// -MinInt32 does not fit in int32; the uint32 conversion keeps 2^31.
		return uint32(-int64(hash))
	}
	return uint32(hash)
}

// signedShift reproduces a 32-bit signed right shift of the hash.
func signedShift(h uint32, n uint) int32 {
	return int32(h) >> n
}

const (
	lcgMultiplier = 1103515245
	lcgIncrement  = 12345
	lcgModulus    = 1 << 31

	// DefaultSeed seeds the simulation random source.
	DefaultSeed = 42
)

// SeededRandom is a linear congruential generator yielding values in [0, 1].
// It is not safe for concurrent use.
type SeededRandom struct {
	state uint64
}

// NewSeededRandom returns a generator for seed; zero selects DefaultSeed.
func NewSeededRandom(seed uint64) *SeededRandom {
	if seed == 0 {
		seed = DefaultSeed
	}
	return &SeededRandom{state: seed % lcgModulus}
}

func (r *SeededRandom) Float64() float64 {
	r.state = (lcgMultiplier*r.state + lcgIncrement) % lcgModulus
	return float64(r.state) / float64(lcgModulus-1)
}
