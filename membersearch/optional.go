package membersearch

import (
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Optional carries a value together with an explicit presence flag.
// The zero value is absent, so a zero age or an empty string never gets confused with "not supplied".
type Optional[T any] struct {
	value   T
	present bool
}

// Some returns a present Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, present: true}
}

// None returns an absent Optional.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// FromPtr returns Some(*v) for a non-nil pointer and None otherwise.
func FromPtr[T any](v *T) Optional[T] {
	if v == nil {
		return None[T]()
	}

	return Some(*v)
}

// IsPresent reports whether a value was supplied.
func (o Optional[T]) IsPresent() bool {
	return o.present
}

// Get returns the value and its presence flag.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.present
}

// OrElse returns the value if present, otherwise fallback.
func (o Optional[T]) OrElse(fallback T) T {
	if !o.present {
		return fallback
	}

	return o.value
}

// Ptr returns a pointer to a copy of the value, or nil if absent.
func (o Optional[T]) Ptr() *T {
	if !o.present {
		return nil
	}

	v := o.value

	return &v
}

// MarshalJSON renders an absent Optional as null.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.present {
		return []byte("null"), nil
	}

	return json.Marshal(o.value)
}

// UnmarshalJSON treats null as absent and any other value as present.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*o = None[T]()
		return nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	*o = Some(v)

	return nil
}
