package trust

import "fmt"

// Opt is an optional value. The zero value is unset, which is different from an explicitly set zero value:
// unset fields are neither sent nor asserted.
type Opt[T any] struct {
	value T
	set   bool
}

func Some[T any](value T) Opt[T] {
	return Opt[T]{value: value, set: true}
}

func (o Opt[T]) Get() (T, bool) {
	return o.value, o.set
}

func (o Opt[T]) IsSet() bool {
	return o.set
}

func (o Opt[T]) OrElse(fallback T) T {
	if o.set {
		return o.value
	}
	return fallback
}

func (o Opt[T]) String() string {
	if !o.set {
		return "<unset>"
	}
	return fmt.Sprintf("%v", o.value)
}
