// This package implements the PKPSIG signature scheme, a post-quantum
// signature built from the Permuted Kernel Problem (PKP) with the
// Fiat-Shamir transform over a five-pass zero-knowledge identification
// protocol.
//
// WARNING: this implementation has not been audited. It does not aim at
// being constant-time beyond the secret-key checksum and signature
// comparisons. It should be used only for tests and research purposes.
//
// The PKP instance is fixed at compile time: a random m*n matrix A over
// GF(q) and a random vector v of length n are expanded from a public seed;
// the secret is a permutation pi such that A*v_pi = u, with u published
// in the verifying key. The dimensions (q = 977, n = 61, m = 28) are the
// [PKP_Q], [PKP_N] and [PKP_M] constants.
//
// Everything else is set by a [ParameterSet]: the security levels of the
// key pair and of the signatures (which set the sizes of seeds, salts and
// hashes), the number of protocol runs answered with a short response
// and with a long response, and two format options (squished
// permutations, merged vector roots). Four predefined parameter sets are
// provided, see [ParameterSets]; they all target NIST category 1.
//
// A key pair consists of a signing key (private) and a verifying key
// (public). Each key is exchanged in an encoded format which has a fixed
// size for a given parameter set; the [SigningKeySize] and
// [VerifyingKeySize] functions return that size. A new key pair is
// created with the [KeyGen] function, which takes as parameters the
// parameter set and a source of randomness. The random source MUST be
// cryptographically secure. If the source is nil, then the operating
// system's RNG is used (through crypto/rand.Reader).
//
// A signature is generated with [Sign], using a signing key, over a raw
// message. Signing is deterministic and uses no random source. The
// protocol runs of a signature are independent of each other and are
// computed concurrently; [SignContext] allows the computation to be
// cancelled. Signatures have a fixed size for a given parameter set; the
// [SignatureSize] function returns that size.
//
// Signature verification is performed with the [Verify] function (or
// [VerifyContext]); the verifying key, message and signature are
// provided, and the output is Boolean. Malformed keys and signatures are
// reported as invalid signatures.
package pkpsig
