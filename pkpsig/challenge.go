package pkpsig

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Helpers shared by signing and verification: message hashing,
// challenge derivation, and run scheduling.

// Compute salt || H(salt, vkey || message). The result keys every hash
// context used by the protocol runs of this signature.
func message_salt_and_hash(ps *ParameterSet, vkey []byte, salt []byte, data []byte) []byte {
	h := hash_init(hashctx_messagehash, salt)
	buf := make([]byte, 0, len(vkey)+len(data))
	buf = append(buf, vkey...)
	buf = append(buf, data...)
	out := make([]byte, 0, len(salt)+ps.bytes_messagehash())
	out = append(out, salt...)
	return append(out, h.digest_bytes(buf, ps.bytes_messagehash())...)
}

// Compute the message salt. The salt generation seed follows the message
// so that the secret is absorbed last.
func message_salt(ps *ParameterSet, sk *secretKey, data []byte) []byte {
	h := hash_init(hashctx_internal_genmsghashsalt, nil)
	buf := make([]byte, 0, len(data)+len(sk.saltgenseed))
	buf = append(buf, data...)
	buf = append(buf, sk.saltgenseed...)
	return h.digest_bytes(buf, ps.bytes_msghashsalt())
}

// Hash the first-pass commitments of all runs into the first challenge
// seed.
func challenge1_seed(ps *ParameterSet, salt_and_hash []byte, coms []indexedLeaf) ([]byte, error) {
	return tree_hash_sorting(hashctx_challenge1hash, salt_and_hash,
		ps.treehash_params, coms, false,
		ps.bytes_treehashnode(), ps.treehash_degree, ps.bytes_challengeseed())
}

// Hash the second-pass commitments (the z vectors) of all runs into the
// second challenge seed. The first challenge seed is part of the prefix.
func challenge2_seed(ps *ParameterSet, salt_and_hash []byte, ch1seed []byte, zs []indexedLeaf) ([]byte, error) {
	prefix := make([]byte, 0, len(salt_and_hash)+len(ch1seed))
	prefix = append(prefix, salt_and_hash...)
	prefix = append(prefix, ch1seed...)
	return tree_hash_sorting(hashctx_challenge2hash, prefix,
		ps.treehash_params, zs, true,
		ps.bytes_treehashnode(), ps.treehash_degree, ps.bytes_challengeseed())
}

// Expand the first challenge seed into one uniform element of GF(q) per
// run. A rejected draw is retried with the next index.
func expand_challenge1(ps *ParameterSet, salt_and_hash []byte, ch1seed []byte) []uint16 {
	h := hash_init(hashctx_challenge1expand, salt_and_hash)
	for idx := uint32(0); ; idx++ {
		c, ok := h.expand_to_fqvec(idx, ch1seed, ps.nruns_total(), true)
		if ok {
			return c
		}
	}
}

// Expand the second challenge seed into the 1-b value of each run:
// exactly NRunsLong runs get 1 (b = 0, long response).
func expand_challenge2(ps *ParameterSet, salt_and_hash []byte, ch2seed []byte) []uint8 {
	h := hash_init(hashctx_challenge2expand, salt_and_hash)
	return h.expand_suffix_to_fwv_nonuniform(ch2seed, ps.nruns_total(), ps.NRunsLong)
}

// Order in which run responses appear in a signature: short runs
// (b = 1) first, then long runs (b = 0), each group by run index.
func run_order(one_minus_b []uint8) []int {
	order := make([]int, 0, len(one_minus_b))
	for _, want := range []uint8{0, 1} {
		for i, x := range one_minus_b {
			if x == want {
				order = append(order, i)
			}
		}
	}
	return order
}

// Call f(0), ..., f(n-1) concurrently, with at most GOMAXPROCS calls in
// flight. Runs do not share mutable state, so no further coordination is
// needed. The first error (or the cancellation of ctx) is returned; no
// new run is started after it.
func for_each_run(ctx context.Context, n int, f func(i int) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return f(i)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
