// Package witness records, during native execution, the exact ordered
// sequence of JMT hints a zk replay needs to reconstruct a slot's state
// transition without ever touching the underlying storage substrate.
package witness

import (
	"github.com/elliotchance/orderedmap"

	"github.com/dubhe-sub002/rollup-state/pkg/jmtcore"
	"github.com/dubhe-sub002/rollup-state/pkg/metrics"
	"github.com/dubhe-sub002/rollup-state/pkg/types"
)

// ReadHint is the proof recorded the first time a key is read within a
// slot, keyed by its hashed key so a replay can match it to the read
// that produced it.
type ReadHint struct {
	KeyHash types.Hash
	Proof   *jmtcore.Proof
}

// UpdateHint is the single update-merkle-proof recorded for a
// namespace's batched writes at the end of a slot.
type UpdateHint struct {
	Proofs   []*jmtcore.UpdateProof
	PostRoot types.Hash
}

// namespaceLog accumulates one namespace's hints in insertion order.
// reads is keyed by the hashed key so RecordRead can cheaply check
// "have we already recorded this key" (§4.6: "reads to already-cached
// keys are not recorded again") while still preserving first-access
// order on iteration — the reason this uses an insertion-ordered map
// rather than a plain Go map, whose iteration order is undefined.
type namespaceLog struct {
	preRoot    types.Hash
	preRootSet bool
	reads      *orderedmap.OrderedMap
	update     *UpdateHint
}

func newNamespaceLog() *namespaceLog {
	return &namespaceLog{reads: orderedmap.NewOrderedMap()}
}

// Recorder is the native-execution side: a Delta records into it as it
// services cache misses, and the storage manager reads it back out at
// end-of-slot to assemble the witness shipped alongside a proof.
type Recorder struct {
	namespaces map[types.Namespace]*namespaceLog
}

// NewRecorder builds an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{namespaces: make(map[types.Namespace]*namespaceLog)}
}

func (r *Recorder) log(ns types.Namespace) *namespaceLog {
	l, ok := r.namespaces[ns]
	if !ok {
		l = newNamespaceLog()
		r.namespaces[ns] = l
	}
	return l
}

// SetPreRoot records ns's pre-state root. It is a no-op after the
// first call for a given namespace: the pre-root is recorded exactly
// once, at the start of the slot.
func (r *Recorder) SetPreRoot(ns types.Namespace, root types.Hash) {
	l := r.log(ns)
	if l.preRootSet {
		return
	}
	l.preRoot = root
	l.preRootSet = true
}

// RecordRead appends a read hint for keyHash in ns, unless that key
// has already been recorded this slot.
func (r *Recorder) RecordRead(ns types.Namespace, keyHash types.Hash, proof *jmtcore.Proof) {
	l := r.log(ns)
	k := string(keyHash[:])
	if _, ok := l.reads.Get(k); ok {
		return
	}
	l.reads.Set(k, &ReadHint{KeyHash: keyHash, Proof: proof})
	metrics.WitnessHintsTotal.WithLabelValues("read").Inc()
}

// HasRead reports whether keyHash has already been recorded for ns.
func (r *Recorder) HasRead(ns types.Namespace, keyHash types.Hash) bool {
	l := r.log(ns)
	_, ok := l.reads.Get(string(keyHash[:]))
	return ok
}

// RecordUpdate records ns's single end-of-slot update hint.
func (r *Recorder) RecordUpdate(ns types.Namespace, proofs []*jmtcore.UpdateProof, postRoot types.Hash) {
	r.log(ns).update = &UpdateHint{Proofs: proofs, PostRoot: postRoot}
	metrics.WitnessHintsTotal.WithLabelValues("update").Inc()
}

// Reads returns ns's read hints in first-access order.
func (r *Recorder) Reads(ns types.Namespace) []*ReadHint {
	l, ok := r.namespaces[ns]
	if !ok {
		return nil
	}
	out := make([]*ReadHint, 0, l.reads.Len())
	for el := l.reads.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(*ReadHint))
	}
	return out
}

// Finish freezes the Recorder into an immutable Witness for shipping
// alongside a slot's proof. The Recorder remains usable afterward but
// should not be, by convention: a witness is produced exactly once per
// slot execution.
func (r *Recorder) Finish() *Witness {
	w := &Witness{Namespaces: make(map[types.Namespace]*FrozenNamespaceLog, len(r.namespaces))}
	for ns, l := range r.namespaces {
		w.Namespaces[ns] = &FrozenNamespaceLog{
			PreRoot: l.preRoot,
			Reads:   r.Reads(ns),
			Update:  l.update,
		}
	}
	return w
}

// FrozenNamespaceLog is one namespace's hints, ready for replay or
// serialization.
type FrozenNamespaceLog struct {
	PreRoot types.Hash
	Reads   []*ReadHint
	Update  *UpdateHint
}

// Witness is the ordered sequence of hints produced by one slot's
// native execution, one FrozenNamespaceLog per provable namespace.
type Witness struct {
	Namespaces map[types.Namespace]*FrozenNamespaceLog
}

// ForNamespace returns ns's hints, or nil if nothing was recorded for
// that namespace (e.g. a slot that never touched kernel state).
func (w *Witness) ForNamespace(ns types.Namespace) *FrozenNamespaceLog {
	return w.Namespaces[ns]
}
