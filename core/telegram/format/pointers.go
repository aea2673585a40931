package format

// Deref returns *p, or def when p is nil. Optional columns scan into
// pointers; rendering wants plain values.
func Deref[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
