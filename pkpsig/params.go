package pkpsig

import (
	"encoding/binary"
	"fmt"
)

// PKP dimensions. These are compile-time constants: the modulus must be
// an odd prime no larger than 65535 (field elements are hashed as 16-bit
// words), and permutations cannot have more than 128 elements (the
// permutation expansion tags each word with its position over 7 bits).
const (
	PKP_Q = 977
	PKP_N = 61
	PKP_M = 28
)

// Byte sizes fixed by the keypair format.
const (
	bytes_pubparamseed   = 17
	bytes_seckeyseed     = 32
	bytes_saltgenseed    = 32
	bytes_seckeychecksum = 8

	// Not a protocol constant: only the signer ever sees it.
	bytes_internal_blindingseedgenseed = 64

	// Size of the seed read from the RNG by KeyGen.
	bytes_keygen_seed = 32
)

// A security level, expressed as the sizes (in bytes) of values which
// must resist preimage attacks and collision attacks, respectively.
type SecurityLevel struct {
	ID            string
	PreimageBytes int
	CRHashBytes   int
}

// NIST PQC security categories, plus one hypothetical higher level and
// three lower levels named by their preimage strength in bits.
var (
	SecLevelC1 = SecurityLevel{"c1", 16, 32}
	SecLevelC2 = SecurityLevel{"c2", 24, 32}
	SecLevelC3 = SecurityLevel{"c3", 24, 48}
	SecLevelC4 = SecurityLevel{"c4", 32, 48}
	SecLevelC5 = SecurityLevel{"c5", 32, 64}
	SecLevelC6 = SecurityLevel{"c6", 48, 64}

	SecLevelB80  = SecurityLevel{"b80", 10, 20}
	SecLevelB96  = SecurityLevel{"b96", 12, 24}
	SecLevelB112 = SecurityLevel{"b112", 14, 28}
)

// A ParameterSet selects the security levels, the number of protocol
// runs of each kind, and the signature format. Parameter sets are
// immutable once built; all derived sizes and vector layouts are
// computed by the constructor and shared read-only by every signing
// and verification operation.
type ParameterSet struct {
	Name string

	KeypairLevel   SecurityLevel
	SignatureLevel SecurityLevel

	// Runs answered with a blinding seed (short) and with a
	// (z, sigma) pair (long).
	NRunsShort int
	NRunsLong  int

	// Encode sigma in the factorial number system instead of n
	// base-n digits.
	SquishPermutations bool

	// Collect the roots of every long-run vector into one combined
	// encoding at the end of the signature, instead of writing each
	// one inline.
	MergeVectorRoots bool

	treehash_degree    int
	treehash_params    []byte
	keychecksum_params []byte
	u_bounds           []uint32
	z_bounds           []uint32
	perm_bounds        []uint32
	layout_u           VectorLayout
	layout_z           VectorLayout
	layout_perm        VectorLayout
	layout_spills      VectorLayout
	spill_bounds       []uint32
	total_bulk_len     int
	signature_len      int
}

// The reference profile: q=977, n=61, m=28, category 1, squished
// permutations, inline vector roots.
var ParamsQ977N61M28C1S = newParameterSet(SecLevelC1, SecLevelC1, 108, 55, true, false)

// Same as ParamsQ977N61M28C1S, with merged vector roots.
var ParamsQ977N61M28C1SM = newParameterSet(SecLevelC1, SecLevelC1, 108, 55, true, true)

// Same as ParamsQ977N61M28C1S, without permutation squishing.
var ParamsQ977N61M28C1 = newParameterSet(SecLevelC1, SecLevelC1, 108, 55, false, false)

// Same as ParamsQ977N61M28C1, with merged vector roots.
var ParamsQ977N61M28C1M = newParameterSet(SecLevelC1, SecLevelC1, 108, 55, false, true)

// Get all predefined parameter sets.
func ParameterSets() []*ParameterSet {
	return []*ParameterSet{
		ParamsQ977N61M28C1S,
		ParamsQ977N61M28C1SM,
		ParamsQ977N61M28C1,
		ParamsQ977N61M28C1M,
	}
}

// Get a predefined parameter set by name (e.g. "q977n61m28kc1sc1shake256s").
func ParameterSetByName(name string) (*ParameterSet, error) {
	for _, ps := range ParameterSets() {
		if ps.Name == name {
			return ps, nil
		}
	}
	return nil, fmt.Errorf("unknown parameter set %q", name)
}

func newParameterSet(kp SecurityLevel, sl SecurityLevel,
	nshort int, nlong int, squish bool, merge bool) *ParameterSet {

	ps := &ParameterSet{
		KeypairLevel:       kp,
		SignatureLevel:     sl,
		NRunsShort:         nshort,
		NRunsLong:          nlong,
		SquishPermutations: squish,
		MergeVectorRoots:   merge,
	}

	// For SHAKE256 (136-byte rate), this fills four blocks per node
	// minus room for the index and parameter string.
	ps.treehash_degree = ((136*4 - 16) / kp.CRHashBytes) - 2

	ps.treehash_params = make([]byte, 7)
	ps.treehash_params[0] = byte(ps.treehash_degree)
	ps.treehash_params[1] = byte(ps.bytes_commithash())
	ps.treehash_params[2] = byte(ps.bytes_challengeseed())
	binary.LittleEndian.PutUint16(ps.treehash_params[3:], uint16(nshort))
	binary.LittleEndian.PutUint16(ps.treehash_params[5:], uint16(nlong))

	ps.keychecksum_params = make([]byte, 6)
	ps.keychecksum_params[0] = byte(kp.PreimageBytes)
	ps.keychecksum_params[1] = byte(kp.CRHashBytes)
	binary.LittleEndian.PutUint16(ps.keychecksum_params[2:], PKP_Q)
	ps.keychecksum_params[4] = PKP_N
	ps.keychecksum_params[5] = PKP_M

	ps.u_bounds = fq_bounds(PKP_M)
	ps.z_bounds = fq_bounds(PKP_N)
	ps.layout_u = vect_size(ps.u_bounds)
	ps.layout_z = vect_size(ps.z_bounds)
	if squish {
		ps.perm_bounds = squish_bounds()
	} else {
		ps.perm_bounds = make([]uint32, PKP_N)
		for i := range ps.perm_bounds {
			ps.perm_bounds[i] = PKP_N
		}
	}
	ps.layout_perm = vect_size(ps.perm_bounds)

	ps.total_bulk_len = ps.bytes_commithash()*ps.nruns_total() +
		ps.bytes_blindingseed()*nshort +
		(ps.layout_z.PackedLen+ps.layout_perm.PackedLen)*nlong
	if merge {
		ps.spill_bounds = make([]uint32, 0, 2*nlong)
		for i := 0; i < nlong; i++ {
			ps.spill_bounds = append(ps.spill_bounds,
				ps.layout_z.RootBound, ps.layout_perm.RootBound)
		}
		ps.layout_spills = vect_size(ps.spill_bounds)
	} else {
		ps.total_bulk_len += (ps.layout_z.RootBytes + ps.layout_perm.RootBytes) * nlong
		ps.layout_spills = vect_size(nil)
	}
	ps.signature_len = ps.bytes_msghashsalt() + 2*ps.bytes_challengeseed() +
		ps.total_bulk_len +
		ps.layout_spills.PackedLen + ps.layout_spills.RootBytes

	fmtid := ""
	if squish {
		fmtid += "s"
	}
	if merge {
		fmtid += "m"
	}
	ps.Name = fmt.Sprintf("q%dn%dm%dk%ss%sshake256%s",
		PKP_Q, PKP_N, PKP_M, kp.ID, sl.ID, fmtid)
	return ps
}

func (ps *ParameterSet) nruns_total() int {
	return ps.NRunsShort + ps.NRunsLong
}

// Sizes set by the keypair security level.
func (ps *ParameterSet) bytes_blindingseed() int { return ps.KeypairLevel.PreimageBytes }
func (ps *ParameterSet) bytes_msghashsalt() int { return ps.KeypairLevel.CRHashBytes }
func (ps *ParameterSet) bytes_messagehash() int { return ps.KeypairLevel.CRHashBytes }
func (ps *ParameterSet) bytes_treehashnode() int { return ps.KeypairLevel.CRHashBytes }

// Sizes set by the signature security level.
func (ps *ParameterSet) bytes_commithash() int { return ps.SignatureLevel.CRHashBytes }
func (ps *ParameterSet) bytes_challengeseed() int { return ps.SignatureLevel.CRHashBytes }

// Get the size of a signing key, in bytes.
func SigningKeySize(ps *ParameterSet) int {
	return bytes_pubparamseed + bytes_seckeyseed + bytes_saltgenseed +
		bytes_seckeychecksum
}

// Get the size of a verifying key, in bytes.
func VerifyingKeySize(ps *ParameterSet) int {
	return bytes_pubparamseed + ps.layout_u.PackedLen + ps.layout_u.RootBytes
}

// Get the size of a signature, in bytes.
func SignatureSize(ps *ParameterSet) int {
	return ps.signature_len
}

// Bounds [q, q, ..., q] for a field vector of length n.
func fq_bounds(n int) []uint32 {
	M := make([]uint32, n)
	for i := range M {
		M[i] = PKP_Q
	}
	return M
}
