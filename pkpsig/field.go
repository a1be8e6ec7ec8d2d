package pkpsig

import (
	"github.com/tuneinsight/lattigo/v4/ring"
)

// Arithmetic modulo q. Reductions use Barrett's method with the
// precomputed constant for PKP_Q.
var fq_bred = ring.BRedParams(PKP_Q)

// Reduce any 64-bit value modulo q.
func fq_reduce(x uint64) uint16 {
	return uint16(ring.BRedAdd(x, PKP_Q, fq_bred))
}

// Product of two values modulo q.
func fq_mul(x uint16, y uint16) uint16 {
	return uint16(ring.BRed(uint64(x), uint64(y), PKP_Q, fq_bred))
}

// Compute z = r + c*v mod q, elementwise. The challenge c may be q
// itself, which acts as zero.
func fq_vec_add_scaled(r []uint16, c uint16, v []uint16) []uint16 {
	z := make([]uint16, len(r))
	for i := range r {
		z[i] = fq_reduce(uint64(r[i]) + uint64(c)*uint64(v[i]))
	}
	return z
}

// Compute w - c*u mod q, elementwise.
func fq_vec_sub_scaled(w []uint16, c uint16, u []uint16) []uint16 {
	x := make([]uint16, len(w))
	cc := fq_reduce(uint64(PKP_Q - fq_reduce(uint64(c))))
	for i := range w {
		x[i] = fq_reduce(uint64(w[i]) + uint64(fq_mul(cc, u[i])))
	}
	return x
}

// The public matrix A (m rows of n elements).
type matrix [PKP_M][PKP_N]uint16

// Compute A*x mod q. Each row sum stays below n*(q-1)^2 < 2^26, so it is
// reduced once.
func (A *matrix) mult_vec(x []uint16) []uint16 {
	y := make([]uint16, PKP_M)
	for i := 0; i < PKP_M; i++ {
		acc := uint64(0)
		for j := 0; j < PKP_N; j++ {
			acc += uint64(A[i][j]) * uint64(x[j])
		}
		y[i] = fq_reduce(acc)
	}
	return y
}
