package runtime

import "errors"

var (
	// ErrNilConfig indicates New received no configuration.
	ErrNilConfig = errors.New("runtime: configuration must not be nil")
	// ErrUnknownType indicates a commit or dispatch referenced a member name
	// no module registered.
	ErrUnknownType = errors.New("runtime: unknown type")
	// ErrNameCollision indicates two modules exposed the same global member
	// name, typically via non-namespaced children.
	ErrNameCollision = errors.New("runtime: member name already registered")
	// ErrNoPersistence indicates Persist/Restore was called without a
	// configured persistence store.
	ErrNoPersistence = errors.New("runtime: persistence not configured")
)
