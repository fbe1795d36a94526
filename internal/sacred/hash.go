package sacred

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
)

// Every field signature is derived by hashing the intention with a fixed
// salt suffix. Identical inputs always reproduce identical digests; a
// one-character change in the intention avalanches the whole signature.

func sha256Hex(data string) string {
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

func sha512Hex(data string) string {
	sum := sha512.Sum512([]byte(data))
	return hex.EncodeToString(sum[:])
}

// digitRoot is the Tesla 3-6-9 completion number: sum of the intention's
// character codes modulo 9, mapped to 9 when the remainder is 0.
func digitRoot(intention string) int {
	sum := 0
	for _, r := range intention {
		sum += int(r)
	}
	if m := sum % 9; m != 0 {
		return m
	}
	return 9
}
