package bridge

import "errors"

var (
	// ErrNotSerializable is returned for values that have no persisted form.
	ErrNotSerializable = errors.New("value is not serializable")
	// ErrInvalidReference is returned when a persisted "obj" is not a string.
	ErrInvalidReference = errors.New("invalid callable reference")
	// ErrNotMapping is returned when a tree that must be a mapping is not.
	ErrNotMapping = errors.New("not a mapping")
)
