// Package hash computes the payload digests recorded next to array data.
package hash

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Digest accumulates the xxHash64 of an array payload as blocks are produced.
//
// The zero value is not usable; create one with NewDigest.
type Digest struct {
	d *xxhash.Digest
}

// NewDigest returns an empty payload digest.
func NewDigest() Digest {
	return Digest{d: xxhash.New()}
}

// Write adds p to the digest. It never fails.
func (d Digest) Write(p []byte) {
	_, _ = d.d.Write(p)
}

// Sum64 returns the digest of everything written so far.
func (d Digest) Sum64() uint64 {
	return d.d.Sum64()
}

// Sum64 computes the xxHash64 of data in one call.
func Sum64(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// ID computes the xxHash64 of an array name.
func ID(name string) uint64 {
	return xxhash.Sum64String(name)
}

// Format renders a digest as the fixed-width hexadecimal text stored in documents.
func Format(sum uint64) string {
	s := strconv.FormatUint(sum, 16)
	for len(s) < 16 {
		s = "0" + s
	}

	return s
}

// Parse parses text produced by Format.
func Parse(text string) (uint64, bool) {
	v, err := strconv.ParseUint(text, 16, 64)
	if err != nil {
		return 0, false
	}

	return v, true
}
