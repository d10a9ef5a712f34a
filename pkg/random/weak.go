package random

import (
	"math/rand/v2"
	"sync/atomic"
	"time"
)

var weakSalt atomic.Uint64

// NewWeak returns a fast, non-cryptographic generator seeded from the clock and a process wide salt.
// Generators created at the same instant still get different seeds.
// Never use it for anything secret.
func NewWeak() *rand.Rand {
	salt := weakSalt.Add(0x9E3779B97F4A7C15)
	return rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), salt))
}
