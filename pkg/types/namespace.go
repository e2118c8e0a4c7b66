// Package types holds the data model shared across the storage engine:
// namespace tags, the opaque key/value wrappers typed containers build on,
// and the error taxonomy callers use to decide whether a failure reverts a
// transaction or aborts a slot.
package types

import "fmt"

// Namespace tags a storage slot with the authentication domain it belongs
// to. The tag is carried both in the type system (typed containers are
// parameterized by it) and at runtime (it routes reads/writes to the right
// sub-cache and hint stream).
type Namespace uint8

const (
	// User state is authenticated by the user JMT and is readable and
	// writable in both native and zk execution.
	User Namespace = iota
	// Kernel state is authenticated by a separate JMT and readable in
	// both environments. The cache layers accept Kernel writes from any
	// accessor; kernel code writes it through a state.KernelWorkingSet.
	Kernel
	// Accessory state is unauthenticated, native-only, and never
	// contributes to any JMT root.
	Accessory
)

func (n Namespace) String() string {
	switch n {
	case User:
		return "user"
	case Kernel:
		return "kernel"
	case Accessory:
		return "accessory"
	default:
		return fmt.Sprintf("namespace(%d)", uint8(n))
	}
}

// Provable reports whether the namespace is authenticated by a JMT. Only
// User and Kernel are provable; Accessory is not.
func (n Namespace) Provable() bool {
	return n == User || n == Kernel
}
