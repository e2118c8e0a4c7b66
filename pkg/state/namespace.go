// Package state provides the typed containers (StateValue, StateMap,
// StateVec, VersionedStateValue) module code reads and writes through,
// plus two boundary accessors: APIAccessor (read-only, against a
// finalized root, never through a mutable working set) and
// KernelWorkingSet (a wrapper over another Accessor that carries the
// true and visible slot numbers VersionedStateValue uses).
package state

import "github.com/dubhe-sub002/rollup-state/pkg/types"

// NamespaceTag fixes a typed container's namespace at compile time. A
// container is parameterized by one of the three marker types below,
// never by a runtime types.Namespace value, so mismatching a StateValue
// built for User against Kernel storage is a type error rather than a
// bug that only shows up at runtime.
type NamespaceTag interface {
	Namespace() types.Namespace
}

// UserNamespace tags a container as living in the user JMT.
type UserNamespace struct{}

func (UserNamespace) Namespace() types.Namespace { return types.User }

// KernelNamespace tags a container as living in the kernel JMT. Its
// containers' Set methods accept any Accessor; writes through this tag
// are not restricted to a KernelWorkingSet.
type KernelNamespace struct{}

func (KernelNamespace) Namespace() types.Namespace { return types.Kernel }

// AccessoryNamespace tags a container as living in the unauthenticated,
// native-only accessory store.
type AccessoryNamespace struct{}

func (AccessoryNamespace) Namespace() types.Namespace { return types.Accessory }

func namespaceOf[N NamespaceTag]() types.Namespace {
	var n N
	return n.Namespace()
}
