// Package storagemgr owns the history of committed versions keyed by
// DA block header: creating per-block state handles, staging their
// change sets, and finalizing a canonical ancestry while discarding
// sibling forks, all under the locking discipline the rest of the
// engine already follows (cache containers for a whole block are
// acquired and released together, never split across a suspension
// point).
package storagemgr

import "github.com/dubhe-sub002/rollup-state/pkg/types"

// BlockHeader identifies a DA block the storage manager is asked to
// build state for. Height need not be globally unique across forks;
// Hash is.
type BlockHeader struct {
	Hash       types.Hash
	Height     uint64
	ParentHash types.Hash
}
