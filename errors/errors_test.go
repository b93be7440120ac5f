package errors

import (
	"strings"
	"testing"

	"github.com/matryer/is"
)

var errBackend = New("backend down")

func TestWrap(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		is := is.New(t)
		is.NoErr(Wrap(nil, "cannot write %s", "k"))
	})

	t.Run("keeps the cause matchable", func(t *testing.T) {
		is := is.New(t)
		err := Wrap(errBackend, "cannot write %s", "cachestore-k")
		is.True(Is(err, errBackend))
		is.Equal(err.Error(), "cannot write cachestore-k: backend down")
	})

	t.Run("runtime file info", func(t *testing.T) {
		is := is.New(t)
		RuntimeFileInfo = true
		defer func() { RuntimeFileInfo = false }()

		err := Wrap(errBackend, "cannot read")
		is.True(strings.Contains(err.Error(), "errors_test.go"))
		is.True(Is(err, errBackend))
	})
}

func TestJoin(t *testing.T) {
	is := is.New(t)
	is.NoErr(Join(nil, nil))

	other := New("other")
	err := Join(errBackend, nil, other)
	is.True(Is(err, errBackend))
	is.True(Is(err, other))
}
