/*
Package pwgen generates random passwords from a Profile, returning them as a protected string.

# How it works:

Every call to Generator.Generate creates a new keystream keyed with 128 bytes from the Generator's random source.
Caller supplied entropy, for example collected from user input, is hashed with SHA-512 and XORed into the key, so it adds to the randomness but never replaces it.

Characters are drawn from a CharSet with rejection sampling, so every character in a set is equally likely regardless of the set's size.

A Profile selects one of three modes:
  - Character set mode draws Length characters from the union of the selected character classes.
  - Pattern mode follows a pattern such as "A{3}-d{2}", where each letter code draws from a character class, '\' escapes the next character, "[...]" defines a custom class and "{n}" repeats the preceding element.
  - Custom mode delegates to a CustomAlgorithm registered in a CustomPool, such as BIP39 or Base58.

# Pattern codes:

	a  lower case letters and digits
	A  letters and digits
	U  upper case letters and digits
	c  lower case consonants
	C  consonants
	z  upper case consonants
	d  digits
	h  lower case hex digits
	H  upper case hex digits
	l  lower case letters
	L  letters
	u  upper case letters
	p  punctuation
	b  brackets
	s  printable ASCII special characters
	S  letters, digits and printable ASCII special characters
	v  lower case vowels
	V  vowels
	Z  upper case vowels
	x  high ANSI characters

Any other character is emitted literally.
*/
package pwgen
