package set

type Set[T comparable] map[T]struct{}

func Of[T comparable](items ...T) Set[T] {
	s := make(Set[T], len(items))
	for _, item := range items {
		s.Add(item)
	}
	return s
}

func (s Set[T]) Add(item T)         { s[item] = struct{}{} }
func (s Set[T]) Remove(item T)      { delete(s, item) }
func (s Set[T]) Exists(item T) bool { _, exists := s[item]; return exists }
func (s Set[T]) Len() int           { return len(s) }

// Slice returns the members in no particular order.
func (s Set[T]) Slice() []T {
	out := make([]T, 0, len(s))
	for item := range s {
		out = append(out, item)
	}
	return out
}

func (s Set[T]) Equal(other Set[T]) bool {
	if len(s) != len(other) {
		return false
	}
	for item := range s {
		if !other.Exists(item) {
			return false
		}
	}
	return true
}
