package pkpsig

// Encoding and decoding of the response of each run.
//
// The common part is the commitment the response does not open,
// com_(1-b); the b-dependent part is either the blinding seed (b = 1) or
// the pair (z, sigma) encoded as mixed-radix vectors (b = 0). Sizes
// depend only on the parameter set and on b.

// Return the unopened commitment com_(1-b).
func (s proverResponse) encode_common() proofPart {
	com := s.com1
	if s.b == 1 {
		com = s.com0
	}
	return proofPart{bulk: append([]byte(nil), com...)}
}

// Return the b-dependent part of the response.
func (s proverResponse) encode_b_dep() proofPart {
	ps := s.ctx.ps
	if s.b == 1 {
		return proofPart{bulk: append([]byte(nil), s.blindingseed...)}
	}

	z := make([]uint32, PKP_N)
	for i := range z {
		z[i] = uint32(s.z[i])
	}
	var sigma []uint32
	if ps.SquishPermutations {
		sigma = squish(s.sigma)
	} else {
		sigma = make([]uint32, PKP_N)
		for i := range sigma {
			sigma[i] = uint32(s.sigma[i])
		}
	}

	bulk := make([]byte, 0, ps.layout_z.PackedLen+ps.layout_z.RootBytes+
		ps.layout_perm.PackedLen+ps.layout_perm.RootBytes)
	bulk, z_root, z_root_bound := vect_encode(bulk, z, ps.z_bounds)
	if !ps.MergeVectorRoots {
		bulk = encode_root(bulk, z_root, z_root_bound)
	}
	bulk, sigma_root, sigma_root_bound := vect_encode(bulk, sigma, ps.perm_bounds)
	if ps.MergeVectorRoots {
		return proofPart{
			bulk:         bulk,
			spills:       []uint32{z_root, sigma_root},
			spill_bounds: []uint32{z_root_bound, sigma_root_bound},
		}
	}
	bulk = encode_root(bulk, sigma_root, sigma_root_bound)
	return proofPart{bulk: bulk}
}

// Size of the common part of a response.
func (ctx *verifierContext) proof_size_common() int {
	return ctx.ps.bytes_commithash()
}

// Decode the common part of a response into the unopened commitment.
func (s verifierChallenge2) decode_common(bulk []byte) (commitment, error) {
	if len(bulk) != s.ctx.proof_size_common() {
		return commitment{}, ErrDecodingMismatch
	}
	return commitment{
		slot:  commitment_slot(s.run_index, 1-s.b),
		value: append([]byte(nil), bulk...),
	}, nil
}

// Size of the b-dependent part of a response, and the bounds of the
// roots it spills (merged-roots format, b = 0 only).
func (s verifierChallenge2) proof_size_b_dep() (int, []uint32) {
	ps := s.ctx.ps
	if s.b == 1 {
		return ps.bytes_blindingseed(), nil
	}
	nbytes := ps.layout_z.PackedLen + ps.layout_perm.PackedLen
	if ps.MergeVectorRoots {
		return nbytes, []uint32{ps.layout_z.RootBound, ps.layout_perm.RootBound}
	}
	return nbytes + ps.layout_z.RootBytes + ps.layout_perm.RootBytes, nil
}

// Decode the b-dependent part of a response and recompute com_b and z.
// Malformed input yields ErrDecodingMismatch; a well-formed but forged
// response yields values that do not match the challenge hashes.
func (s verifierChallenge2) decode_b_dep(bulk []byte, spills []uint32) (verifierDecoded, error) {
	ctx := s.ctx
	ps := ctx.ps
	nbytes, spill_bounds := s.proof_size_b_dep()
	if len(bulk) != nbytes || len(spills) != len(spill_bounds) {
		return verifierDecoded{}, ErrDecodingMismatch
	}

	if s.b == 1 {
		bv, _ := ctx.expand_blindingseed(s.run_index, bulk, false)
		// z = r_sigma + c*v_(pi sigma), with v_(pi sigma) recomputed
		// from the blinding permutation.
		v_pi_sigma := apply_inv(ctx.pk.v, bv.pi_sigma_inv)
		return verifierDecoded{
			verifierChallenge2: s,
			com_b:              bv.commitment,
			z:                  fq_vec_add_scaled(bv.r_sigma, s.c, v_pi_sigma),
		}, nil
	}

	lz, lp := ps.layout_z, ps.layout_perm
	var z_enc, sigma_enc []byte
	var z_root, sigma_root uint32
	if ps.MergeVectorRoots {
		z_enc = bulk[:lz.PackedLen]
		sigma_enc = bulk[lz.PackedLen:]
		z_root, sigma_root = spills[0], spills[1]
	} else {
		var err error
		off := 0
		z_enc = bulk[off : off+lz.PackedLen]
		off += lz.PackedLen
		z_root, err = decode_root(bulk[off:off+lz.RootBytes], lz.RootBound)
		if err != nil {
			return verifierDecoded{}, err
		}
		off += lz.RootBytes
		sigma_enc = bulk[off : off+lp.PackedLen]
		off += lp.PackedLen
		sigma_root, err = decode_root(bulk[off:off+lp.RootBytes], lp.RootBound)
		if err != nil {
			return verifierDecoded{}, err
		}
	}

	z32, err := vect_decode(z_enc, ps.z_bounds, z_root)
	if err != nil {
		return verifierDecoded{}, err
	}
	digits, err := vect_decode(sigma_enc, ps.perm_bounds, sigma_root)
	if err != nil {
		return verifierDecoded{}, err
	}
	var sigma perm
	if ps.SquishPermutations {
		sigma, err = unsquish(digits, PKP_N)
		if err != nil {
			return verifierDecoded{}, err
		}
	} else {
		sigma = make(perm, PKP_N)
		for i := range sigma {
			sigma[i] = uint8(digits[i])
		}
		if !check_perm(sigma) {
			return verifierDecoded{}, ErrDecodingMismatch
		}
	}
	z := make([]uint16, PKP_N)
	for i := range z {
		z[i] = uint16(z32[i])
	}

	// z = r_sigma + c*v_(pi sigma), hence apply_inv(z, sigma) = r + c*v_pi
	// and A*apply_inv(z, sigma) = A*r + c*u.
	Ar_plus_cu := ctx.pk.A.mult_vec(apply_inv(z, sigma))
	Ar := fq_vec_sub_scaled(Ar_plus_cu, s.c, ctx.pk.u)
	com_b := ctx.h_com0.digest_index_perm_fqvec(uint32(s.run_index), sigma, Ar,
		ps.bytes_commithash())
	return verifierDecoded{verifierChallenge2: s, com_b: com_b, z: z}, nil
}
