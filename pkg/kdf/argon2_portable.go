package kdf

import (
	"encoding/binary"
	"math/bits"
	"sync"

	"golang.org/x/crypto/blake2b"
)

const (
	argonBlockWords = 128
	argonBlockSize  = argonBlockWords * 8
	argonSyncPoints = 4
)

type argonBlock [argonBlockWords]uint64

// argon2Input is a validated Argon2 invocation, memory is in KiB.
type argon2Input struct {
	typ         Argon2Type
	version     uint32
	password    []byte
	salt        []byte
	secret      []byte
	data        []byte
	iterations  uint32
	memory      uint32
	parallelism uint32
	keyLen      uint32
}

// hashPrime is the variable length hash H' built on BLAKE2b.
func hashPrime(out, in []byte) {
	var outLen [4]byte
	binary.LittleEndian.PutUint32(outLen[:], uint32(len(out)))
	if len(out) <= blake2b.Size {
		h, _ := blake2b.New(len(out), nil)
		h.Write(outLen[:])
		h.Write(in)
		h.Sum(out[:0])
		return
	}

	h, _ := blake2b.New512(nil)
	h.Write(outLen[:])
	h.Write(in)
	v := h.Sum(nil)
	r := (len(out)+31)/32 - 2
	pos := copy(out, v[:32])
	for i := 1; i < r; i++ {
		next := blake2b.Sum512(v)
		v = next[:]
		pos += copy(out[pos:], v[:32])
	}
	last, _ := blake2b.New(len(out)-pos, nil)
	last.Write(v)
	last.Sum(out[pos:pos])
}

func initialHash(in argon2Input) []byte {
	h, _ := blake2b.New512(nil)
	le := func(v uint32) {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], v)
		h.Write(b[:])
	}
	sized := func(b []byte) {
		le(uint32(len(b)))
		h.Write(b)
	}
	le(in.parallelism)
	le(in.keyLen)
	le(in.memory)
	le(in.iterations)
	le(in.version)
	le(uint32(in.typ))
	sized(in.password)
	sized(in.salt)
	sized(in.secret)
	sized(in.data)
	return h.Sum(make([]byte, 0, blake2b.Size+8))
}

func fBlaMka(x, y uint64) uint64 {
	return x + y + 2*uint64(uint32(x))*uint64(uint32(y))
}

func mixG(v *argonBlock, a, b, c, d int) {
	v[a] = fBlaMka(v[a], v[b])
	v[d] = bits.RotateLeft64(v[d]^v[a], -32)
	v[c] = fBlaMka(v[c], v[d])
	v[b] = bits.RotateLeft64(v[b]^v[c], -24)
	v[a] = fBlaMka(v[a], v[b])
	v[d] = bits.RotateLeft64(v[d]^v[a], -16)
	v[c] = fBlaMka(v[c], v[d])
	v[b] = bits.RotateLeft64(v[b]^v[c], -63)
}

// permuteP is the BLAKE2b round over the 16 words of v at idx.
func permuteP(v *argonBlock, idx *[16]int) {
	mixG(v, idx[0], idx[4], idx[8], idx[12])
	mixG(v, idx[1], idx[5], idx[9], idx[13])
	mixG(v, idx[2], idx[6], idx[10], idx[14])
	mixG(v, idx[3], idx[7], idx[11], idx[15])
	mixG(v, idx[0], idx[5], idx[10], idx[15])
	mixG(v, idx[1], idx[6], idx[11], idx[12])
	mixG(v, idx[2], idx[7], idx[8], idx[13])
	mixG(v, idx[3], idx[4], idx[9], idx[14])
}

var rowIdx, colIdx [8][16]int

func init() {
	for r := 0; r < 8; r++ {
		for i := 0; i < 16; i++ {
			rowIdx[r][i] = 16*r + i
		}
	}
	for c := 0; c < 8; c++ {
		for i := 0; i < 8; i++ {
			colIdx[c][2*i] = 16*i + 2*c
			colIdx[c][2*i+1] = 16*i + 2*c + 1
		}
	}
}

// compress computes G(x, y) into out, XORing into the existing contents when accumulate is set.
func compress(out, x, y *argonBlock, accumulate bool) {
	var r, q argonBlock
	for i := range r {
		r[i] = x[i] ^ y[i]
	}
	q = r
	for i := range rowIdx {
		permuteP(&q, &rowIdx[i])
	}
	for i := range colIdx {
		permuteP(&q, &colIdx[i])
	}
	if accumulate {
		for i := range out {
			out[i] ^= r[i] ^ q[i]
		}
		return
	}
	for i := range out {
		out[i] = r[i] ^ q[i]
	}
}

func blockFromBytes(b *argonBlock, raw []byte) {
	for i := range b {
		b[i] = binary.LittleEndian.Uint64(raw[i*8:])
	}
}

// argon2Instance holds the memory matrix for one derivation.
type argon2Instance struct {
	in      argon2Input
	mem     []argonBlock
	blocks  uint32
	laneLen uint32
	segLen  uint32
	lanes   uint32
}

// argon2Portable computes Argon2 for every type, version, secret and associated data.
func argon2Portable(in argon2Input) []byte {
	lanes := in.parallelism
	blocks := in.memory / (argonSyncPoints * lanes) * (argonSyncPoints * lanes)
	inst := &argon2Instance{
		in:      in,
		mem:     make([]argonBlock, blocks),
		blocks:  blocks,
		lanes:   lanes,
		laneLen: blocks / lanes,
	}
	inst.segLen = inst.laneLen / argonSyncPoints
	defer inst.wipe()

	h0 := initialHash(in)
	defer wipe(h0)
	h0 = h0[:blake2b.Size+8]
	raw := make([]byte, argonBlockSize)
	defer wipe(raw)
	for l := uint32(0); l < lanes; l++ {
		for i := uint32(0); i < 2; i++ {
			binary.LittleEndian.PutUint32(h0[blake2b.Size:], i)
			binary.LittleEndian.PutUint32(h0[blake2b.Size+4:], l)
			hashPrime(raw, h0)
			blockFromBytes(&inst.mem[l*inst.laneLen+i], raw)
		}
	}

	for pass := uint32(0); pass < in.iterations; pass++ {
		for slice := uint32(0); slice < argonSyncPoints; slice++ {
			var wg sync.WaitGroup
			for l := uint32(0); l < lanes; l++ {
				wg.Add(1)
				go func(l uint32) {
					defer wg.Done()
					inst.fillSegment(pass, slice, l)
				}(l)
			}
			wg.Wait()
		}
	}

	final := inst.mem[inst.laneLen-1]
	for l := uint32(1); l < lanes; l++ {
		last := &inst.mem[l*inst.laneLen+inst.laneLen-1]
		for i := range final {
			final[i] ^= last[i]
		}
	}
	for i, w := range final {
		binary.LittleEndian.PutUint64(raw[i*8:], w)
	}
	out := make([]byte, in.keyLen)
	hashPrime(out, raw)
	return out
}

func (a *argon2Instance) dataIndependent(pass, slice uint32) bool {
	return a.in.typ == Argon2id && pass == 0 && slice < argonSyncPoints/2
}

func (a *argon2Instance) fillSegment(pass, slice, lane uint32) {
	var address, input, zero argonBlock
	independent := a.dataIndependent(pass, slice)
	if independent {
		input[0] = uint64(pass)
		input[1] = uint64(lane)
		input[2] = uint64(slice)
		input[3] = uint64(a.blocks)
		input[4] = uint64(a.in.iterations)
		input[5] = uint64(a.in.typ)
	}
	nextAddresses := func() {
		input[6]++
		compress(&address, &zero, &input, false)
		compress(&address, &zero, &address, false)
	}

	start := uint32(0)
	if pass == 0 && slice == 0 {
		start = 2
		if independent {
			nextAddresses()
		}
	}

	for idx := start; idx < a.segLen; idx++ {
		cur := lane*a.laneLen + slice*a.segLen + idx
		prev := cur - 1
		if slice == 0 && idx == 0 {
			prev = lane*a.laneLen + a.laneLen - 1
		}

		var rnd uint64
		if independent {
			if idx%argonBlockWords == 0 {
				nextAddresses()
			}
			rnd = address[idx%argonBlockWords]
		} else {
			rnd = a.mem[prev][0]
		}
		ref := a.referenceIndex(rnd, pass, slice, lane, idx)

		accumulate := pass > 0 && a.in.version >= argon2Version13
		compress(&a.mem[cur], &a.mem[prev], &a.mem[ref], accumulate)
	}
}

// referenceIndex maps the pseudo-random value to an absolute block index.
func (a *argon2Instance) referenceIndex(rnd uint64, pass, slice, lane, idx uint32) uint32 {
	refLane := uint32(rnd>>32) % a.lanes
	if pass == 0 && slice == 0 {
		refLane = lane
	}
	sameLane := refLane == lane

	var area uint64
	if pass == 0 {
		area = uint64(slice * a.segLen)
	} else {
		area = uint64(a.laneLen - a.segLen)
	}
	if sameLane {
		area += uint64(idx) - 1
	} else if idx == 0 {
		area--
	}

	x := (rnd & 0xFFFFFFFF) * (rnd & 0xFFFFFFFF) >> 32
	y := area * x >> 32
	rel := area - 1 - y

	var startPos uint64
	if pass != 0 && slice != argonSyncPoints-1 {
		startPos = uint64((slice + 1) * a.segLen)
	}
	return refLane*a.laneLen + uint32((startPos+rel)%uint64(a.laneLen))
}

func (a *argon2Instance) wipe() {
	for i := range a.mem {
		a.mem[i] = argonBlock{}
	}
}
