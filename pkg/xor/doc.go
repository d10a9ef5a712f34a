/*
Package xor provides XOR masking primitives used to move secrets around without leaving a second plain text copy in memory.

Note that a XOR mask is only as strong as the pad it uses.
A pad drawn from a keystream or a secure random source is a one-time pad for the masked data, a short repeating ring key is only obfuscation.

# How it works:

A Value holds masked data together with the pad that masks it.
Reading the plain text is a one-time transformation: the pad is removed and discarded.
ChangeKey replaces the pad without ever producing the plain text, which is how a secret is handed across a boundary.
The receiver XORs the returned bytes with the same pad (usually regenerated from a shared keystream) and erases the result after use.

Pads are provided by a PadSource.
A keystream from the keystream package is a PadSource, and RingPad wraps a fixed key that is reused like a ring buffer starting at an optional offset.

Reader and Writer apply a PadSource to every byte passing through them.

# General guidelines:
  - Pads must be the same length as the data they mask, Value rejects anything else.
  - Never reuse a keystream pad for two different secrets.
  - Using securely generated pads (GenPad with a secure source, or a seeded keystream) is strongly preferred over RingPad.
*/
package xor
