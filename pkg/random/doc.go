/*
Package random provides a cryptographically secure random byte Engine with an internal entropy pool.

Every 32 byte output block is SHA-256(pool || counter || source bytes), where the source is crypto/rand by default.
Entropy added with AddEntropy is folded into the pool with SHA-512, so exposure of the current pool doesn't reveal earlier output.
If the source fails, a hash of process and system state is used for that block instead, and a warning is logged once.

An Engine is meant to be created once by the application and shared, it's safe for concurrent use.
NewWeak is provided for uses where predictability doesn't matter, and must never be used for secrets.
*/
package random
