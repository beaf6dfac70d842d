package game

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand"
)

// RNG is the random source owned by a game. Dice, card draws and steal
// selection all flow through it so a game is replayable given its seed.
type RNG interface {
	Intn(n int) int
	Shuffle(n int, swap func(i, j int))
}

// NewSeededRNG returns a math/rand source seeded from the crypto source,
// along with the seed used.
func NewSeededRNG() (RNG, int64) {
	var buf [8]byte
	if _, err := crand.Read(buf[:]); err != nil {
		// crypto/rand is documented to never fail on supported platforms;
		// fall back to a fixed seed rather than crash.
		return rand.New(rand.NewSource(1)), 1
	}
	seed := int64(binary.LittleEndian.Uint64(buf[:]))
	return rand.New(rand.NewSource(seed)), seed
}

// rollDie rolls one uniform die in [1,6]
func rollDie(rng RNG) int {
	return rng.Intn(6) + 1
}
