package corpus

import (
	"math"
	"math/rand"
	"strconv"

	"insertbench/util"
)

type Record struct {
	ID  int32  // position in the corpus
	Num int32  // random value
	Str string // random letters
}

// Corpus is generated once per run and only read afterwards.
type Corpus []Record

// Returns 'length' records with ids 0..length-1, a random 32-bit value and a random
// alphabetic string of 'strLength' characters.
func Generate(length int, strLength int, rng *rand.Rand) Corpus {
	c := make(Corpus, length)
	for i := 0; i < length; i++ {
		c[i] = Record{
			ID:  int32(i),
			Num: randomInt32(rng),
			Str: util.RandomAlphabetic(rng, strLength),
		}
	}
	return c
}

// uniform over [MinInt32, MaxInt32]
func randomInt32(rng *rand.Rand) int32 {
	return int32(rng.Int63n(math.MaxUint32+1) + math.MinInt32)
}

// Appends the csv line "id,num,str\n" of r to buf
func AppendCSV(buf []byte, r Record) []byte {
	buf = strconv.AppendInt(buf, int64(r.ID), 10)
	buf = append(buf, ',')
	buf = strconv.AppendInt(buf, int64(r.Num), 10)
	buf = append(buf, ',')
	buf = append(buf, r.Str...)
	return append(buf, '\n')
}
