/*
Package kdf provides key derivation engines that turn a composite key into a 32 byte derived key.

# How it works:

Each Engine is identified by a UUID and is configured entirely by a Parameters value.
Parameters is a typed key/value map that can be stored alongside the data it protects, with MarshalBinary and UnmarshalBinary.
An Engine validates every parameter it needs before any cryptographic work is done, and never substitutes a default for a missing or out of range value.
Invalid parameters produce a *ParameterError naming the offending key.

The engines provided are:
  - AESKDF: a fixed number of AES-256 rounds applied to both halves of the key, followed by SHA-256.
  - Argon2 in both the d and id variants, with an optional secret key and associated data.
  - Scrypt, using the same parameters as a passlock style key generator.

AESKDF and Argon2 can each run on more than one strategy, for example hardware AES or a portable implementation.
Strategies are tried in order, and a strategy that can't honor every parameter is skipped rather than ignoring the parameter.
All strategies of an engine produce identical output for the same input.

# General guidelines:
  - Use BestParameters to calibrate the cost to the host, and Randomize before every new derivation target so the salt or seed is fresh.
  - Transform is intentionally slow, call it off of any latency sensitive goroutine.
  - Wipe derived keys when they're no longer needed.
*/
package kdf
