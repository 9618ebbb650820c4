package sim

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/milk9111/satworld/physics"
)

// Fingerprint hashes the exact bit patterns of every position in id order.
// Two worlds with the same fingerprint hold bit-identical positions.
func Fingerprint(w *physics.World) uint64 {
	d := xxhash.New()
	if w == nil {
		return d.Sum64()
	}
	var buf [16]byte
	for _, p := range w.Positions() {
		binary.LittleEndian.PutUint64(buf[:8], math.Float64bits(p.X))
		binary.LittleEndian.PutUint64(buf[8:], math.Float64bits(p.Y))
		_, _ = d.Write(buf[:])
	}
	return d.Sum64()
}
