/*
Package passlock encrypts data with a key derived from a user-provided passphrase.
Any engine in a kdf.Pool may derive the key, and the payload is encrypted with AES-256-GCM.

# How it works:

A Locker randomizes a fresh set of KDF parameters for every payload, and derives an AES-256 key from the passphrase with them.
The serialized parameters are stored in a header at the front of the encrypted payload, so the same key can be derived later given the same passphrase.
The header is authenticated along with the payload, so tampering with the parameters prevents Unlock from recovering the plain text.

# General guidelines:
  - The default engine is Argon2id with its default parameters. Use WithParameters to lock with parameters calibrated by an engine's BestParameters instead.
  - This method of encryption (AES256GCM) supports encrypting and authenticating at most about 64GB at a time.
  - Unlock needs the same kdf.Pool engines that were available to Lock, but none of the Locker's options.
*/
package passlock
