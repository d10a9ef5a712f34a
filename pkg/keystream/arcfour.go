package keystream

const arcFourDiscard = 512

type arcFour struct {
	s    [256]byte
	i, j uint8
}

func newArcFour(key []byte) *arcFour {
	a := scheduleArcFour(key)
	var discard [arcFourDiscard]byte
	a.fill(discard[:])
	return a
}

func scheduleArcFour(key []byte) *arcFour {
	a := new(arcFour)
	for k := range a.s {
		a.s[k] = byte(k)
	}
	var j uint8
	for k := 0; k < 256; k++ {
		j += a.s[k] + key[k%len(key)]
		a.s[k], a.s[j] = a.s[j], a.s[k]
	}
	return a
}

func (a *arcFour) fill(out []byte) {
	i, j := a.i, a.j
	for k := range out {
		i++
		j += a.s[i]
		a.s[i], a.s[j] = a.s[j], a.s[i]
		out[k] = a.s[a.s[i]+a.s[j]]
	}
	a.i, a.j = i, j
}

func (a *arcFour) wipe() {
	for k := range a.s {
		a.s[k] = 0
	}
	a.i, a.j = 0, 0
}
