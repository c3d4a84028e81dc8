// Package uuid generates random identifiers encoded in base62 so that they
// can be used in URLs and log lines without escaping.
package uuid

import (
	"math/big"

	"github.com/google/uuid"
)

const alphabetBase62 = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// New returns a new random (version 4) UUID encoded in base62.
func New() string {
	value := uuid.New()

	return encode(value[:], alphabetBase62)
}

func encode(data []byte, alphabet string) string {
	var (
		value big.Int
		zero  big.Int
		base  big.Int
	)

	value.SetBytes(data)

	if value.Cmp(&zero) == 0 {
		return alphabet[:1]
	}

	result := make([]byte, 0, 22)

	for value.Cmp(&zero) != 0 {
		base.SetInt64(int64(len(alphabet)))
		_, remainder := value.DivMod(&value, &base, &base)
		result = append(result, alphabet[remainder.Int64()])
	}

	return string(result)
}
