// Package digest computes fingerprints of the frames published by a core.
package digest

import (
	"crypto/sha1"
	"fmt"

	"nx/hw"
)

// Video generates a SHA-1 value for every frame it is given. Fingerprints
// are chained: each one covers the previous fingerprint and the frame pixels,
// so the last value identifies the whole sequence of frames.
//
// SHA-1 is fine here, this is not a cryptographic task.
type Video struct {
	digest [sha1.Size]byte
	pixels []byte
	frames uint64
}

func NewVideo() *Video {
	return &Video{}
}

// Add chains the fingerprint of the given frame.
func (dig *Video) Add(v hw.View) {
	// The previous fingerprint goes at the head of the hashed data.
	dig.pixels = append(dig.pixels[:0], dig.digest[:]...)
	dig.pixels = v.AppendRGBA(dig.pixels)
	dig.digest = sha1.Sum(dig.pixels)
	dig.frames++
}

// Hash returns the current fingerprint, in hexadecimal.
func (dig *Video) Hash() string {
	return fmt.Sprintf("%x", dig.digest)
}

// Frames returns the number of frames chained since the last reset.
func (dig *Video) Frames() uint64 { return dig.frames }

func (dig *Video) ResetDigest() {
	clear(dig.digest[:])
	dig.frames = 0
}
