package extractor

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
)

// ReferenceParams are the block sizes of the built-in reference Extract
// implementation.
var ReferenceParams = Params{
	WSRBlockBytes:    64,
	OutputBlockBytes: 64,
}

// Reference is a deterministic stand-in for the actual cryptographic
// extractor primitive, which spec.md §1 places out of scope ("treated as a
// deterministic block function... we specify how it is driven, not its
// internal math"). It expands (seedContent, wsrBlock) into ReferenceParams
// .OutputBlockBytes via HMAC-SHA256 in counter mode - simple and
// deterministic, not a claim of cryptographic soundness.
func Reference(seedContent, wsrBlock []byte) ([]byte, error) {
	out := make([]byte, 0, ReferenceParams.OutputBlockBytes)

	var counter uint32

	for len(out) < ReferenceParams.OutputBlockBytes {
		mac := hmac.New(sha256.New, seedContent)
		mac.Write(wsrBlock)

		var ctr [4]byte
		binary.BigEndian.PutUint32(ctr[:], counter)
		mac.Write(ctr[:])

		out = append(out, mac.Sum(nil)...)
		counter++
	}

	return out[:ReferenceParams.OutputBlockBytes], nil
}
