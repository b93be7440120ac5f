package set

import (
	"sort"
	"testing"

	"github.com/matryer/is"
)

func TestSet(t *testing.T) {
	is := is.New(t)
	s := Of("b", "a", "b")
	is.Equal(s.Len(), 2)
	is.True(s.Exists("a"))
	is.True(!s.Exists("c"))

	s.Remove("a")
	s.Add("c")
	items := s.Slice()
	sort.Strings(items)
	is.Equal(items, []string{"b", "c"})

	is.True(s.Equal(Of("c", "b")))
	is.True(!s.Equal(Of("c")))
	is.True(!s.Equal(Of("c", "a")))
}
