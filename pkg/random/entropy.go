package random

import (
	"crypto/sha512"
	"encoding/binary"
	"hash"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
)

var processStart = time.Now()

func writeUint64(h hash.Hash, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, _ = h.Write(buf[:])
}

// systemEntropy hashes best effort process and system state.
// None of these inputs are secret on their own, this is only meant to supplement the source.
func systemEntropy(now time.Time) []byte {
	h := sha512.New()
	writeUint64(h, uint64(now.UnixNano()))
	writeUint64(h, uint64(time.Since(processStart)))
	writeUint64(h, uint64(os.Getpid()))
	writeUint64(h, uint64(os.Getppid()))
	writeUint64(h, uint64(runtime.NumGoroutine()))

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	writeUint64(h, mem.Alloc)
	writeUint64(h, mem.TotalAlloc)
	writeUint64(h, mem.Mallocs)
	writeUint64(h, mem.Frees)
	writeUint64(h, uint64(mem.NumGC))
	writeUint64(h, mem.PauseTotalNs)

	if host, err := os.Hostname(); err == nil {
		_, _ = h.Write([]byte(host))
	}
	_, _ = h.Write([]byte(strings.Join(os.Environ(), "\x00")))
	if id, err := uuid.NewRandom(); err == nil {
		_, _ = h.Write(id[:])
	}
	writeUint64(h, uint64(time.Now().UnixNano()))
	return h.Sum(nil)
}
