package witness_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dubhe-sub002/rollup-state/pkg/jmtcore"
	"github.com/dubhe-sub002/rollup-state/pkg/kv/kvtest"
	"github.com/dubhe-sub002/rollup-state/pkg/types"
	"github.com/dubhe-sub002/rollup-state/pkg/witness"
)

func TestRecorderDoesNotDuplicateReads(t *testing.T) {
	r := witness.NewRecorder()
	keyHash := types.Hash{1}

	require.False(t, r.HasRead(types.User, keyHash))
	r.RecordRead(types.User, keyHash, &jmtcore.Proof{})
	require.True(t, r.HasRead(types.User, keyHash))
	r.RecordRead(types.User, keyHash, &jmtcore.Proof{}) // should be a no-op

	require.Len(t, r.Reads(types.User), 1)
}

func TestRecorderPreservesFirstAccessOrder(t *testing.T) {
	r := witness.NewRecorder()
	var h1, h2, h3 types.Hash
	h1[0], h2[0], h3[0] = 1, 2, 3

	r.RecordRead(types.User, h2, &jmtcore.Proof{KeyHash: h2})
	r.RecordRead(types.User, h1, &jmtcore.Proof{KeyHash: h1})
	r.RecordRead(types.User, h3, &jmtcore.Proof{KeyHash: h3})

	reads := r.Reads(types.User)
	require.Len(t, reads, 3)
	require.Equal(t, h2, reads[0].KeyHash)
	require.Equal(t, h1, reads[1].KeyHash)
	require.Equal(t, h3, reads[2].KeyHash)
}

func TestReplayVerifiesReadsAgainstPreRoot(t *testing.T) {
	ctx := context.Background()
	backend := kvtest.NewMemStore([]string{"nodes"})
	tree := jmtcore.NewTree(jmtcore.NewNodeStore(backend, "nodes"))

	root, err := tree.Put(ctx, jmtcore.EmptyRoot, []byte("k1"), []byte("v1"))
	require.NoError(t, err)

	proof, err := tree.GenerateProof(ctx, root, []byte("k1"))
	require.NoError(t, err)

	r := witness.NewRecorder()
	r.SetPreRoot(types.User, root)
	r.RecordRead(types.User, proof.KeyHash, proof)
	w := r.Finish()

	replayer := witness.NewReplayer(w)
	preRoot, err := replayer.PreRoot(types.User)
	require.NoError(t, err)
	require.Equal(t, root, preRoot)

	value, found, err := replayer.NextRead(types.User, preRoot, proof.KeyHash)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("v1"), value)
}

func TestReplayRejectsReadOrderMismatch(t *testing.T) {
	ctx := context.Background()
	backend := kvtest.NewMemStore([]string{"nodes"})
	tree := jmtcore.NewTree(jmtcore.NewNodeStore(backend, "nodes"))

	root, err := tree.Put(ctx, jmtcore.EmptyRoot, []byte("k1"), []byte("v1"))
	require.NoError(t, err)
	proof, err := tree.GenerateProof(ctx, root, []byte("k1"))
	require.NoError(t, err)

	r := witness.NewRecorder()
	r.SetPreRoot(types.User, root)
	r.RecordRead(types.User, proof.KeyHash, proof)
	w := r.Finish()

	replayer := witness.NewReplayer(w)
	wrongKeyHash := types.Hash{0xff}
	_, _, err = replayer.NextRead(types.User, root, wrongKeyHash)
	require.Error(t, err)

	var verr *types.ProofVerificationError
	require.ErrorAs(t, err, &verr)
}

func TestReplayDetectsTamperedValue(t *testing.T) {
	ctx := context.Background()
	backend := kvtest.NewMemStore([]string{"nodes"})
	tree := jmtcore.NewTree(jmtcore.NewNodeStore(backend, "nodes"))

	root, err := tree.Put(ctx, jmtcore.EmptyRoot, []byte("k1"), []byte("v1"))
	require.NoError(t, err)
	proof, err := tree.GenerateProof(ctx, root, []byte("k1"))
	require.NoError(t, err)

	// Tamper with the value bytes inside the otherwise-valid proof.
	tampered := *proof
	tampered.Leaf = &jmtcore.LeafWitness{KeyHash: proof.Leaf.KeyHash, Value: []byte("tampered")}

	r := witness.NewRecorder()
	r.SetPreRoot(types.User, root)
	r.RecordRead(types.User, tampered.KeyHash, &tampered)
	w := r.Finish()

	replayer := witness.NewReplayer(w)
	_, _, err = replayer.NextRead(types.User, root, tampered.KeyHash)
	require.Error(t, err)

	var verr *types.ProofVerificationError
	require.ErrorAs(t, err, &verr)
}

func TestVerifyUpdateChainsPreAndPostRoots(t *testing.T) {
	ctx := context.Background()
	backend := kvtest.NewMemStore([]string{"nodes"})
	tree := jmtcore.NewTree(jmtcore.NewNodeStore(backend, "nodes"))

	newRoot, proofs, err := tree.UpdateBatch(ctx, jmtcore.EmptyRoot, []jmtcore.Write{
		{Key: []byte("a"), Value: []byte("1")},
		{Key: []byte("b"), Value: []byte("2")},
	})
	require.NoError(t, err)

	r := witness.NewRecorder()
	r.SetPreRoot(types.User, jmtcore.EmptyRoot)
	r.RecordUpdate(types.User, proofs, newRoot)
	w := r.Finish()

	replayer := witness.NewReplayer(w)
	gotRoot, err := replayer.VerifyUpdate(types.User, jmtcore.EmptyRoot, newRoot)
	require.NoError(t, err)
	require.Equal(t, newRoot, gotRoot)
}
