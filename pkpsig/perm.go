package pkpsig

import (
	"errors"
)

// Permutations of {0, 1, ..., n-1}, with n <= 128, stored as one byte
// per element. Field vectors are stored as uint16 values in [0, q-1].
//
// Conventions:
//
//	apply(v, p)[i]     = v[p[i]]
//	apply_inv(v, p)[p[i]] = v[i]          (apply_inv(apply(v, p), p) = v)
//	compose(p1, p2)[i] = p1[p2[i]]        (apply(apply(v, p1), p2) = apply(v, compose(p1, p2)))

type perm []uint8

func apply(v []uint16, p perm) []uint16 {
	w := make([]uint16, len(p))
	for i := range p {
		w[i] = v[p[i]]
	}
	return w
}

func apply_inv(v []uint16, p perm) []uint16 {
	w := make([]uint16, len(p))
	for i := range p {
		w[p[i]] = v[i]
	}
	return w
}

func compose(p1 perm, p2 perm) perm {
	p := make(perm, len(p2))
	for i := range p2 {
		p[i] = p1[p2[i]]
	}
	return p
}

func invert(p perm) perm {
	pi := make(perm, len(p))
	for i := range p {
		pi[p[i]] = uint8(i)
	}
	return pi
}

// Check that p is a permutation of {0, 1, ..., n-1}.
func check_perm(p perm) bool {
	if len(p) > 128 {
		return false
	}
	var seen [128]bool
	for _, x := range p {
		if int(x) >= len(p) || seen[x] {
			return false
		}
		seen[x] = true
	}
	return true
}

// Given v, the secret pi_inv and the blinding permutation pi_sigma_inv,
// compute v_(pi sigma) = apply(v, pi_sigma) and sigma = pi_inv o pi_sigma,
// where pi_sigma is the inverse of pi_sigma_inv. With v_pi =
// apply_inv(v, pi_inv) (the vector bound by the public key), this yields
// apply(v_pi, sigma) = v_(pi sigma), which is what both the prover and
// the verifier rely on.
func apply_and_compose_inv(v []uint16, pi_inv perm, pi_sigma_inv perm) ([]uint16, perm) {
	n := len(pi_sigma_inv)
	v_pi_sigma := make([]uint16, n)
	sigma := make(perm, n)
	for i := 0; i < n; i++ {
		j := pi_sigma_inv[i]
		// pi_sigma[j] = i
		v_pi_sigma[j] = v[i]
		sigma[j] = pi_inv[i]
	}
	return v_pi_sigma, sigma
}

// Bounds of the digits of a squished permutation: [n, n-1, ..., 2].
func squish_bounds() []uint32 {
	M := make([]uint32, PKP_N-1)
	for i := range M {
		M[i] = uint32(PKP_N - i)
	}
	return M
}

// Convert a permutation into its factorial-number-system digits: digit i
// is the rank of p[i] among the values not used by p[0..i-1]. The last
// element is implied and not included.
func squish(p perm) []uint32 {
	n := len(p)
	if n == 0 {
		return []uint32{}
	}
	d := make([]uint32, n-1)
	var used [128]bool
	for i := 0; i < n-1; i++ {
		rank := uint32(0)
		for j := 0; j < int(p[i]); j++ {
			if !used[j] {
				rank++
			}
		}
		d[i] = rank
		used[p[i]] = true
	}
	return d
}

// Inverse of squish(). Digits must be in range (d[i] < n-i); an error is
// returned otherwise.
func unsquish(d []uint32, n int) (perm, error) {
	if n <= 0 || n > 128 || len(d) != n-1 {
		return nil, errors.New("pkpsig: invalid squished permutation length")
	}
	remaining := make([]uint8, n)
	for i := range remaining {
		remaining[i] = uint8(i)
	}
	p := make(perm, n)
	for i := 0; i < n-1; i++ {
		k := d[i]
		if k >= uint32(len(remaining)) {
			return nil, ErrDecodingMismatch
		}
		p[i] = remaining[k]
		remaining = append(remaining[:k], remaining[k+1:]...)
	}
	p[n-1] = remaining[0]
	return p, nil
}
