package resource

import (
	"strconv"
	"strings"

	"github.com/brianvoe/gofakeit/v7"
)

const maxUniqueAttempts = 1000

// Faker produces random payload values. Codes handed out by UniqueCode never repeat
// within one Faker.
type Faker struct {
	f    *gofakeit.Faker
	seen map[string]struct{}
}

// NewFaker returns a Faker seeded with seed; 0 picks a random seed
func NewFaker(seed uint64) *Faker {
	return &Faker{
		f:    gofakeit.New(seed),
		seen: make(map[string]struct{}),
	}
}

func (fk *Faker) Company() string {
	return fk.f.Company()
}

func (fk *Faker) JobTitle() string {
	return fk.f.JobTitle()
}

func (fk *Faker) Phrase() string {
	return fk.f.Phrase()
}

func (fk *Faker) Word() string {
	return fk.f.Noun()
}

// Capitalized returns a random word with its first letter upper-cased
func (fk *Faker) Capitalized() string {
	w := fk.Word()
	if w == "" {
		return w
	}
	return strings.ToUpper(w[:1]) + w[1:]
}

func (fk *Faker) IntRange(min, max int) int {
	return fk.f.IntRange(min, max)
}

// UniqueCode replaces each '?' in pattern with a random letter, upper-cases the result
// and appends suffix. After too many collisions a counter is appended instead.
func (fk *Faker) UniqueCode(pattern string, suffix func() string) string {
	var code string
	for i := 0; i < maxUniqueAttempts; i++ {
		code = strings.ToUpper(fk.f.Lexify(pattern))
		if suffix != nil {
			code += suffix()
		}
		if _, ok := fk.seen[code]; !ok {
			fk.seen[code] = struct{}{}
			return code
		}
	}
	code += "-" + strconv.Itoa(len(fk.seen))
	fk.seen[code] = struct{}{}
	return code
}
