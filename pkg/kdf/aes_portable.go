package kdf

// aes256 is a byte oriented AES-256 block encryptor that doesn't rely on crypto/aes.
// It exists so AES-KDF has a path that's independent of the hardware and the standard library implementation.
type aes256 struct {
	rk [240]byte
}

var sbox [256]byte

func init() {
	// Walk the multiplicative group with generator 3, pairing each element with its inverse.
	p, q := byte(1), byte(1)
	for {
		p = p ^ (p << 1) ^ xtimeMask(p)
		q ^= q << 1
		q ^= q << 2
		q ^= q << 4
		if q&0x80 != 0 {
			q ^= 0x09
		}
		x := q ^ rotl8(q, 1) ^ rotl8(q, 2) ^ rotl8(q, 3) ^ rotl8(q, 4)
		sbox[p] = x ^ 0x63
		if p == 1 {
			break
		}
	}
	sbox[0] = 0x63
}

func xtimeMask(b byte) byte {
	if b&0x80 != 0 {
		return 0x1B
	}
	return 0
}

func xtime(b byte) byte {
	return (b << 1) ^ xtimeMask(b)
}

func rotl8(b byte, n uint) byte {
	return b<<n | b>>(8-n)
}

func newAES256(key []byte) *aes256 {
	a := new(aes256)
	copy(a.rk[:32], key)
	rcon := byte(1)
	for i := 32; i < len(a.rk); i += 4 {
		var t [4]byte
		copy(t[:], a.rk[i-4:i])
		switch i % 32 {
		case 0:
			t[0], t[1], t[2], t[3] = sbox[t[1]]^rcon, sbox[t[2]], sbox[t[3]], sbox[t[0]]
			rcon = xtime(rcon)
		case 16:
			for j := range t {
				t[j] = sbox[t[j]]
			}
		}
		for j := 0; j < 4; j++ {
			a.rk[i+j] = a.rk[i-32+j] ^ t[j]
		}
	}
	return a
}

func (a *aes256) addRoundKey(s *[16]byte, round int) {
	k := a.rk[round*16 : round*16+16]
	for i := range s {
		s[i] ^= k[i]
	}
}

func subShift(s *[16]byte) {
	var t [16]byte
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			t[r+4*c] = sbox[s[r+4*((c+r)%4)]]
		}
	}
	*s = t
}

func mixColumns(s *[16]byte) {
	for c := 0; c < 16; c += 4 {
		a0, a1, a2, a3 := s[c], s[c+1], s[c+2], s[c+3]
		all := a0 ^ a1 ^ a2 ^ a3
		s[c] ^= all ^ xtime(a0^a1)
		s[c+1] ^= all ^ xtime(a1^a2)
		s[c+2] ^= all ^ xtime(a2^a3)
		s[c+3] ^= all ^ xtime(a3^a0)
	}
}

// encrypt encrypts one 16 byte block, dst and src may overlap.
func (a *aes256) encrypt(dst, src []byte) {
	var s [16]byte
	copy(s[:], src)
	a.addRoundKey(&s, 0)
	for round := 1; round < 14; round++ {
		subShift(&s)
		mixColumns(&s)
		a.addRoundKey(&s, round)
	}
	subShift(&s)
	a.addRoundKey(&s, 14)
	copy(dst, s[:])
}

func (a *aes256) wipe() {
	wipe(a.rk[:])
}
