package pkpsig

import (
	"crypto/rand"
	"crypto/subtle"
	"io"
)

// Verifying (public) key, decoded. A and v are public parameters
// expanded from pubseed; u = A*v_pi for the secret permutation pi.
type publicKey struct {
	pubseed []byte
	A       *matrix
	v       []uint16
	u       []uint16
	encoded []byte
}

// Signing (private) key, decoded. The public key is recomputed from the
// seeds when the key is loaded. A signing key is never modified once
// built; concurrent signing operations share it.
type secretKey struct {
	pub         *publicKey
	secseed     []byte
	pi_inv      perm
	saltgenseed []byte
	checksum    []byte
}

// Generate a new key pair.
//
//	- ps is the parameter set.
//	- rng is the random source to use (nil to use the OS RNG).
//
// Output is the new key pair (signing and verifying keys, both encoded).
// An error is reported only if the random source fails. The key pair is
// a deterministic function of the 32 bytes read from rng.
func KeyGen(ps *ParameterSet, rng io.Reader) (skey []byte, vkey []byte, err error) {
	if rng == nil {
		rng = rand.Reader
	}
	var seed [bytes_keygen_seed]byte
	_, err = io.ReadFull(rng, seed[:])
	if err != nil {
		return nil, nil, err
	}
	skey, vkey = keygen_inner(ps, seed[:])
	return skey, vkey, nil
}

// Inner key generation; the output depends only on the parameter set and
// the seed.
func keygen_inner(ps *ParameterSet, seed []byte) (skey []byte, vkey []byte) {
	h := hash_init(hashctx_internal_keygenseedexpand, nil)
	buf := h.digest_bytes(seed, bytes_pubparamseed+bytes_seckeyseed+bytes_saltgenseed)
	pubseed := buf[:bytes_pubparamseed]
	secseed := buf[bytes_pubparamseed : bytes_pubparamseed+bytes_seckeyseed]
	saltgenseed := buf[bytes_pubparamseed+bytes_seckeyseed:]
	sk := build_secret_key(ps, pubseed, secseed, saltgenseed)
	return encode_secret_key(sk), sk.pub.encoded
}

// Expand the public parameters A and v from the public seed. A small
// bias in the reduction modulo q is tolerated for public values.
func expand_pubparams(pubseed []byte) (*matrix, []uint16) {
	h := hash_init(hashctx_pubparams, pubseed)
	v, _ := h.expand_to_fqvec(hashidx_pubparams_v, nil, PKP_N, false)
	A := new(matrix)
	for i := 0; i < PKP_M; i++ {
		row, _ := h.expand_to_fqvec(uint32(hashidx_pubparams_a+i), nil, PKP_N, false)
		copy(A[i][:], row)
	}
	return A, v
}

// Expand the secret permutation from the secret seed. The secret must be
// uniform: a rejected draw is retried with the next index.
func expand_pi_inv(pubseed []byte, secseed []byte) perm {
	h := hash_init(hashctx_seckeyseedexpand, pubseed)
	for idx := uint32(hashidx_seckeyseedexpand_pi_inv); ; idx++ {
		pi_inv, ok := h.expand_to_perm(idx, secseed, PKP_N, true)
		if ok {
			return pi_inv
		}
	}
}

func build_secret_key(ps *ParameterSet, pubseed []byte, secseed []byte, saltgenseed []byte) *secretKey {
	A, v := expand_pubparams(pubseed)
	pi_inv := expand_pi_inv(pubseed, secseed)
	u := A.mult_vec(apply_inv(v, pi_inv))
	pub := &publicKey{
		pubseed: append([]byte(nil), pubseed...),
		A:       A,
		v:       v,
		u:       u,
	}
	pub.encoded = encode_public_key(ps, pub)
	sk := &secretKey{
		pub:         pub,
		secseed:     append([]byte(nil), secseed...),
		pi_inv:      pi_inv,
		saltgenseed: append([]byte(nil), saltgenseed...),
	}
	sk.checksum = secret_key_checksum(ps, pub.encoded, sk.secseed, sk.saltgenseed)
	return sk
}

// The checksum covers the parameter sizes, the public key and the secret
// seeds; a key loaded with the wrong parameters or corrupted in storage
// is rejected instead of producing invalid signatures.
func secret_key_checksum(ps *ParameterSet, vkey []byte, secseed []byte, saltgenseed []byte) []byte {
	h := hash_init(hashctx_seckeychecksum, ps.keychecksum_params)
	buf := make([]byte, 0, len(vkey)+len(secseed)+len(saltgenseed))
	buf = append(buf, vkey...)
	buf = append(buf, secseed...)
	buf = append(buf, saltgenseed...)
	return h.digest_bytes(buf, bytes_seckeychecksum)
}

func encode_public_key(ps *ParameterSet, pk *publicKey) []byte {
	u := make([]uint32, PKP_M)
	for i := range u {
		u[i] = uint32(pk.u[i])
	}
	out := append([]byte(nil), pk.pubseed...)
	out, root, root_bound := vect_encode(out, u, ps.u_bounds)
	return encode_root(out, root, root_bound)
}

func encode_secret_key(sk *secretKey) []byte {
	out := make([]byte, 0, bytes_pubparamseed+bytes_seckeyseed+
		bytes_saltgenseed+bytes_seckeychecksum)
	out = append(out, sk.pub.pubseed...)
	out = append(out, sk.secseed...)
	out = append(out, sk.saltgenseed...)
	out = append(out, sk.checksum...)
	return out
}

// Decode a verifying key.
func decode_public_key(ps *ParameterSet, vkey []byte) (*publicKey, error) {
	if len(vkey) != VerifyingKeySize(ps) {
		return nil, ErrInvalidKey
	}
	lay := ps.layout_u
	pubseed := vkey[:bytes_pubparamseed]
	packed := vkey[bytes_pubparamseed : bytes_pubparamseed+lay.PackedLen]
	root, err := decode_root(vkey[bytes_pubparamseed+lay.PackedLen:], lay.RootBound)
	if err != nil {
		return nil, ErrInvalidKey
	}
	u32, err := vect_decode(packed, ps.u_bounds, root)
	if err != nil {
		return nil, ErrInvalidKey
	}
	u := make([]uint16, PKP_M)
	for i := range u {
		u[i] = uint16(u32[i])
	}
	A, v := expand_pubparams(pubseed)
	return &publicKey{
		pubseed: append([]byte(nil), pubseed...),
		A:       A,
		v:       v,
		u:       u,
		encoded: append([]byte(nil), vkey...),
	}, nil
}

// Decode a signing key and check its checksum.
func decode_secret_key(ps *ParameterSet, skey []byte) (*secretKey, error) {
	if len(skey) != SigningKeySize(ps) {
		return nil, ErrInvalidKey
	}
	off := 0
	pubseed := skey[off : off+bytes_pubparamseed]
	off += bytes_pubparamseed
	secseed := skey[off : off+bytes_seckeyseed]
	off += bytes_seckeyseed
	saltgenseed := skey[off : off+bytes_saltgenseed]
	off += bytes_saltgenseed
	checksum := skey[off:]
	sk := build_secret_key(ps, pubseed, secseed, saltgenseed)
	if subtle.ConstantTimeCompare(sk.checksum, checksum) != 1 {
		return nil, ErrInvalidKey
	}
	return sk, nil
}

// Recompute the verifying key from a signing key.
func VerifyingKeyFromSigningKey(ps *ParameterSet, skey []byte) ([]byte, error) {
	sk, err := decode_secret_key(ps, skey)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), sk.pub.encoded...), nil
}
