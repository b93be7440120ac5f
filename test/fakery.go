package test

import (
	"math/rand/v2"

	"github.com/brianvoe/gofakeit/v7"
)

func Fakery() *gofakeit.Faker {
	return gofakeit.New(0)
}

func randomElement[T any](list ...T) T {
	return list[rand.IntN(len(list))]
}

// Profile is a nested, JSON friendly value for round-trip tests.
type Profile struct {
	ID      string            `json:"id" fake:"{uuid}"`
	Name    string            `json:"name" fake:"{firstname}"`
	Email   string            `json:"email" fake:"{email}"`
	Age     int               `json:"age" fake:"{number:18,90}"`
	Tags    []string          `json:"tags" fakesize:"3"`
	Address map[string]string `json:"address" fakesize:"2"`
}

func FakeProfile(f *gofakeit.Faker) Profile {
	var p Profile
	if err := f.Struct(&p); err != nil {
		panic(err)
	}
	return p
}

// Key returns a random cache key in one of the shapes callers tend to use.
func Key(f *gofakeit.Faker) string {
	return randomElement(
		f.LetterN(12),
		"user:"+f.UUID(),
		f.Email(),
		f.Username()+"/"+f.Word(),
	)
}
