// Package ptr contains helpers for taking addresses of values.
package ptr

// To returns a pointer to the given value.
func To[T any](v T) *T {
	return &v
}
