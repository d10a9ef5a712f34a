/*
Package protect provides SecureValue containers: byte and string payloads that stay encrypted in process memory while they're not being read.

# How it works:

A Protector is created once by the application and passed to whatever needs to create protected values.
When a value asking for protection is created, the Protector picks the best available backend, in this order:
  - An externally registered Hook, if one is registered at the time the value is created.
  - OS backed memory protection: the session key is sealed in a memguard enclave and only opened into locked memory for the duration of an operation.
  - A ChaCha20 stream cipher keyed with a random session key, using the value's ID as the nonce.

The backend is chosen when the value is constructed and is kept for the lifetime of that value.
Values created without protection are stored in the clear and report the None backend.

Every Read decrypts the buffer in place, copies the data out and encrypts it again before returning.
The returned copy belongs to the caller, who is responsible for wiping it.

A value may also be backed by a xor.Value, in which case the plain text doesn't exist in memory until it's first read.
ReadXorred hands the secret across a boundary masked by a fresh pad, without a second plain text copy when the value is still XOR backed.
*/
package protect
