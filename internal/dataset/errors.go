package dataset

import (
	"errors"
	"fmt"
)

var (
	ErrTransport = errors.New("dataset transport failure")
	ErrShape     = errors.New("dataset payload is not an array")
	ErrName      = errors.New("unsafe or empty dataset name")
)

type Kind int

const (
	KindTransport Kind = iota + 1
	KindShape
	KindName
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindShape:
		return "shape"
	case KindName:
		return "name"
	default:
		return "unknown"
	}
}

// LoadError describes why a dataset could not be loaded. Callers degrade
// every kind to an empty dataset.
type LoadError struct {
	Kind Kind
	Name string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("load %q: %s: %v", e.Name, e.Kind, e.Err)
	}
	return fmt.Sprintf("load %q: %s", e.Name, e.Kind)
}

func (e *LoadError) Unwrap() error { return e.Err }

func (e *LoadError) Is(target error) bool {
	switch target {
	case ErrTransport:
		return e.Kind == KindTransport
	case ErrShape:
		return e.Kind == KindShape
	case ErrName:
		return e.Kind == KindName
	}
	return false
}
