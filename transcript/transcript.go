// Package transcript implements the deterministic Fiat-Shamir transcript used
// to derive verifier challenges from prior protocol messages.
// This uses blake2b as the underlying prng.
package transcript

import (
	"io"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"golang.org/x/crypto/blake2b"
)

// challengeBytes is the number of XOF bytes consumed per challenge.
// Twice the field size, so the modular reduction bias is negligible.
const challengeBytes = 2 * fr.Bytes

// Transcript is an append-only absorber of protocol messages from which
// field challenges are derived. Two transcripts fed the identical sequence
// of writes produce identical challenge sequences.
type Transcript struct {
	absorber blake2b.XOF
	squeezer blake2b.XOF

	// stale marks that data was absorbed since the last challenge,
	// so the squeezer must be rebuilt from the absorber state.
	stale bool
}

// New creates a new empty Transcript.
//
// Panics when blake2b initialization fails.
func New() *Transcript {
	xof, err := blake2b.NewXOF(blake2b.OutputLengthUnknown, nil)
	if err != nil {
		panic(err)
	}

	return &Transcript{
		absorber: xof,
		squeezer: xof.Clone(),
	}
}

// WritePoint absorbs a group element.
func (t *Transcript) WritePoint(p *bn254.G1Affine) {
	buf := p.Bytes()
	if _, err := t.absorber.Write(buf[:]); err != nil {
		panic(err)
	}
	t.stale = true
}

// WriteScalar absorbs a field element.
func (t *Transcript) WriteScalar(s *fr.Element) {
	buf := s.Bytes()
	if _, err := t.absorber.Write(buf[:]); err != nil {
		panic(err)
	}
	t.stale = true
}

// ChallengeScalar derives the next pseudorandom field element from all
// previously absorbed data. Consecutive challenges without intermediate
// writes continue the output stream and therefore differ.
func (t *Transcript) ChallengeScalar() fr.Element {
	if t.stale {
		t.squeezer = t.absorber.Clone()
		t.stale = false
	}

	var buf [challengeBytes]byte
	if _, err := io.ReadFull(t.squeezer, buf[:]); err != nil {
		panic(err)
	}

	var c fr.Element
	c.SetBytes(buf[:])
	return c
}

// Fork returns an independent copy sharing all absorbed history up to this
// point. The copy and the original produce the same next challenge, then
// diverge as they absorb different data.
func (t *Transcript) Fork() *Transcript {
	return &Transcript{
		absorber: t.absorber.Clone(),
		squeezer: t.squeezer.Clone(),
		stale:    t.stale,
	}
}
