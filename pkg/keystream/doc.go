/*
Package keystream provides seeded, reproducible pseudo-random byte streams.

A Stream is initialized from a caller supplied key, and the same key always yields the same sequence no matter how the bytes are requested.
This is what makes generated passwords reviewable in tests, and it's why the key itself must come from a secure source (see the random package): the key is the only unpredictable input.

# Algorithms:
  - ArcFour is the default. It keeps a 256 byte permutation table and two cursors, and throws away the first 512 bytes of output after the key schedule.
  - ChaCha20 uses SHA-512(key) to derive a 32 byte key and a 12 byte nonce.
  - Salsa20 uses SHA-256(key) as its key with a fixed 8 byte nonce.

A Stream is safe for concurrent use, but concurrent callers will interleave the sequence.
*/
package keystream
