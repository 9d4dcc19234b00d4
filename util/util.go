package util

import "math/rand"

// Panics if there is an error, otherwise returns the result
func Try[T any](result T, err error) T {
	CheckErr(err)
	return result
}

// Panics if error is not null
func CheckErr(err error) {
	if err != nil {
		panic(err)
	}
}

const alphabetic = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Returns a random string of 'length' ASCII letters
func RandomAlphabetic(rng *rand.Rand, length int) string {
	var s = make([]byte, length)
	for i := 0; i < length; i++ {
		s[i] = alphabetic[rng.Intn(len(alphabetic))]
	}
	return string(s)
}
