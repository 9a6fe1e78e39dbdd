// Package seed owns the pre-generated quantum seed material: its content,
// its detached signature, and the one-time verification of that signature.
//
// The signing scheme itself is an external collaborator (see spec.md §1,
// "the quantum extractor's cryptographic primitive itself... we specify how
// it is driven, not its internal math"). This package drives verification
// through the [Verifier] interface; production callers provide whatever
// scheme the seed was actually signed with, and tests substitute a fake.
package seed

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"

	"github.com/corvid-systems/entropic/status"
)

// ContentSize and SignatureSize are the sizes declared by the reference
// extractor primitive. A [Seed] built from content or a signature of any
// other length is rejected at construction.
const (
	ContentSize   = 8164
	SignatureSize = 132
)

// evaluationContent and evaluationSignature are the well-known, insecure
// byte values substituted when a caller opts into evaluation mode (spec.md
// §9: "a normal byte value which happens to match an insecure well-known
// seed used only for testing"). They are ordinary bytes - [HMACVerifier]
// checks them exactly like any other seed; only [EvaluationAwareVerifier]
// accepts them without verifying the signature.
var (
	evaluationContent   = repeatToSize([]byte("evaluation-mode-seed-content-not-for-production-use"), ContentSize)
	evaluationSignature = repeatToSize([]byte("evaluation-mode-signature"), SignatureSize)
)

func repeatToSize(pattern []byte, size int) []byte {
	out := make([]byte, size)
	for i := range out {
		out[i] = pattern[i%len(pattern)]
	}

	return out
}

// EvaluationContent and EvaluationSignature return fresh copies of the
// well-known evaluation-mode seed material.
func EvaluationContent() []byte {
	return append([]byte(nil), evaluationContent...)
}

func EvaluationSignature() []byte {
	return append([]byte(nil), evaluationSignature...)
}

// IsEvaluation reports whether content and signature are exactly the
// well-known evaluation-mode values.
func IsEvaluation(content, signature []byte) bool {
	return subtle.ConstantTimeCompare(content, evaluationContent) == 1 &&
		subtle.ConstantTimeCompare(signature, evaluationSignature) == 1
}

// Verifier checks a detached signature over seed content. The concrete
// signing scheme is outside this module's scope; [HMACVerifier] is the
// built-in stand-in used when the caller doesn't supply one, and is not
// intended to be cryptographically equivalent to whatever scheme real
// seed material is actually signed with.
type Verifier interface {
	Verify(content, signature []byte) error
}

// HMACVerifier verifies a detached HMAC-SHA256 signature keyed by Key.
// SignatureSize is 132 bytes for interop with the reference seed format;
// only the first sha256.Size bytes of a signature are checked, and the
// remainder must be zero padding.
type HMACVerifier struct {
	Key []byte
}

// Verify reports whether signature is a valid HMAC-SHA256 tag (zero-padded
// to [SignatureSize]) over content, keyed by v.Key.
func (v HMACVerifier) Verify(content, signature []byte) error {
	if len(content) != ContentSize {
		return fmt.Errorf("%w: content length %d, want %d", status.ErrFailedToAssignSeedContent, len(content), ContentSize)
	}

	if len(signature) != SignatureSize {
		return fmt.Errorf("%w: signature length %d, want %d", status.ErrFailedToAssignSeedSignature, len(signature), SignatureSize)
	}

	mac := hmac.New(sha256.New, v.Key)
	mac.Write(content)
	want := mac.Sum(nil)

	got := signature[:len(want)]
	pad := signature[len(want):]

	if subtle.ConstantTimeCompare(got, want) != 1 {
		return fmt.Errorf("%w: hmac mismatch", status.ErrSeedSignatureInvalid)
	}

	for _, b := range pad {
		if b != 0 {
			return fmt.Errorf("%w: non-zero signature padding", status.ErrSeedSignatureInvalid)
		}
	}

	return nil
}

// EvaluationAwareVerifier accepts the well-known evaluation-mode seed
// unconditionally, without invoking Underlying - evaluation mode is
// defined by its fixed bytes (spec.md §9), not by satisfying whatever
// signing key a deployment happens to be configured with.
type EvaluationAwareVerifier struct {
	Underlying Verifier
}

func (v EvaluationAwareVerifier) Verify(content, signature []byte) error {
	if IsEvaluation(content, signature) {
		return nil
	}

	return v.Underlying.Verify(content, signature)
}

// Seed is the immutable (signature, content) pair consumed by the
// extractor. Once constructed and verified it is never mutated; [Seed.Zeroize]
// overwrites the bytes in place on context destruction.
type Seed struct {
	content   []byte
	signature []byte
}

// New validates the lengths of content and signature, verifies the
// signature with v, and returns an owned copy of both. The caller's slices
// are not retained.
//
// Verification happens exactly once, here. Nothing downstream re-verifies
// on a hot path (spec.md §4.2).
func New(content, signature []byte, v Verifier) (*Seed, error) {
	if len(content) != ContentSize {
		return nil, fmt.Errorf("%w: length %d, want %d", status.ErrFailedToAssignSeedContent, len(content), ContentSize)
	}

	if len(signature) != SignatureSize {
		return nil, fmt.Errorf("%w: length %d, want %d", status.ErrFailedToAssignSeedSignature, len(signature), SignatureSize)
	}

	if err := v.Verify(content, signature); err != nil {
		return nil, fmt.Errorf("%w: %w", status.ErrSeedSignatureInvalid, err)
	}

	return &Seed{
		content:   append([]byte(nil), content...),
		signature: append([]byte(nil), signature...),
	}, nil
}

// Content returns the seed content. The returned slice aliases the seed's
// internal storage and must not be modified or retained past [Seed.Zeroize].
func (s *Seed) Content() []byte {
	return s.content
}

// IsEvaluation reports whether this seed holds the well-known evaluation
// sentinel values.
func (s *Seed) IsEvaluation() bool {
	return IsEvaluation(s.content, s.signature)
}

// Zeroize overwrites the seed's content and signature bytes in place. Called
// exactly once, from the owning context's destructor.
func (s *Seed) Zeroize() {
	for i := range s.content {
		s.content[i] = 0
	}

	for i := range s.signature {
		s.signature[i] = 0
	}
}
