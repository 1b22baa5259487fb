package scheduler

import "hash/fnv"

// zeroSeedFallback is substituted whenever a derived seed evaluates to 0,
// since an all-zero xorshift64 state never leaves zero. Grounded on
// original_source's scheduler test constant of the same value.
const zeroSeedFallback uint64 = 0x9E3779B97F4A7C15

// hashString derives a deterministic 64-bit seed from a string. The
// original implementation hashes with Rust's std DefaultHasher (SipHash),
// which has no Go equivalent and no cross-process compatibility
// requirement here — Strict fairness only needs to be deterministic
// within one polybench installation, not bit-compatible with the
// original binary — so FNV-1a 64-bit stands in for it.
func hashString(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

// seedFor derives the xorshift64 seed for one run of one benchmark: an
// explicit fairness_seed if the suite set one, else a hash of
// "<suite>:<bench>", XORed with (runIndex+1) so each run within a
// benchmark gets its own permutation, with the zero-seed fallback applied
// last so a XOR that lands on zero still produces a usable PRNG state.
func seedFor(explicitSeed *uint64, suiteName, benchFullName string, runIndex int) uint64 {
	var base uint64
	if explicitSeed != nil {
		base = *explicitSeed
	} else {
		base = hashString(suiteName + ":" + benchFullName)
	}

	seed := base ^ uint64(runIndex+1)
	if seed == 0 {
		seed = zeroSeedFallback
	}
	return seed
}

// xorshift64 advances the PRNG state by one step, matching the
// constants original_source's shuffle_slice uses: 12/25/27 shift triple
// then multiply by the fixed odd constant 0x2545F4914F6CDD1D.
func xorshift64(state uint64) uint64 {
	state ^= state >> 12
	state ^= state << 25
	state ^= state >> 27
	return state * 0x2545F4914F6CDD1D
}

// shuffleIndices returns a Fisher-Yates permutation of [0, n) driven by
// an xorshift64 PRNG seeded with seed, byte-for-byte the same algorithm
// as original_source's shuffle_slice: iterate i from n-1 down to 1,
// advance the PRNG, and swap element i with element (r % (i+1)).
func shuffleIndices(n int, seed uint64) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	if n < 2 {
		return idx
	}

	state := seed
	for i := n - 1; i > 0; i-- {
		state = xorshift64(state)
		j := int(state % uint64(i+1))
		idx[i], idx[j] = idx[j], idx[i]
	}
	return idx
}
