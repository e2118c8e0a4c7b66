package jmtcore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dubhe-sub002/rollup-state/pkg/kv/kvtest"
)

func newTestTree(t *testing.T) *Tree {
	t.Helper()
	backend := kvtest.NewMemStore([]string{"nodes"})
	return NewTree(NewNodeStore(backend, "nodes"))
}

func TestEmptyTreeLookupMiss(t *testing.T) {
	tree := newTestTree(t)
	_, found, err := tree.Get(context.Background(), EmptyRoot, []byte("k1"))
	require.NoError(t, err)
	require.False(t, found)
}

func TestPutThenGet(t *testing.T) {
	tree := newTestTree(t)
	ctx := context.Background()

	root, err := tree.Put(ctx, EmptyRoot, []byte("k1"), []byte("v1"))
	require.NoError(t, err)
	require.NotEqual(t, EmptyRoot, root)

	v, found, err := tree.Get(ctx, root, []byte("k1"))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("v1"), v)

	_, found, err = tree.Get(ctx, root, []byte("k2"))
	require.NoError(t, err)
	require.False(t, found)
}

func TestPutOverwrite(t *testing.T) {
	tree := newTestTree(t)
	ctx := context.Background()

	root, err := tree.Put(ctx, EmptyRoot, []byte("k1"), []byte("v1"))
	require.NoError(t, err)
	root, err = tree.Put(ctx, root, []byte("k1"), []byte("v2"))
	require.NoError(t, err)

	v, found, err := tree.Get(ctx, root, []byte("k1"))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("v2"), v)
}

func TestDeleteCollapsesToEmptyRoot(t *testing.T) {
	tree := newTestTree(t)
	ctx := context.Background()

	root, err := tree.Put(ctx, EmptyRoot, []byte("k1"), []byte("v1"))
	require.NoError(t, err)
	root, err = tree.Put(ctx, root, []byte("k1"), nil)
	require.NoError(t, err)
	require.Equal(t, EmptyRoot, root)
}

func TestMultiKeyDeterministicRoot(t *testing.T) {
	tree1 := newTestTree(t)
	tree2 := newTestTree(t)
	ctx := context.Background()

	writes := []Write{
		{Key: []byte("alpha"), Value: []byte("1")},
		{Key: []byte("beta"), Value: []byte("2")},
		{Key: []byte("gamma"), Value: []byte("3")},
	}

	root1, _, err := tree1.UpdateBatch(ctx, EmptyRoot, writes)
	require.NoError(t, err)

	reversed := []Write{writes[2], writes[1], writes[0]}
	root2, _, err := tree2.UpdateBatch(ctx, EmptyRoot, reversed)
	require.NoError(t, err)

	require.Equal(t, root1, root2, "root must be independent of write order within a batch")
}

func TestInclusionProofVerifies(t *testing.T) {
	tree := newTestTree(t)
	ctx := context.Background()

	root, err := tree.Put(ctx, EmptyRoot, []byte("k1"), []byte("v1"))
	require.NoError(t, err)

	proof, err := tree.GenerateProof(ctx, root, []byte("k1"))
	require.NoError(t, err)
	require.True(t, proof.Inclusion())
	require.True(t, VerifyProof(root, proof))
}

func TestExclusionProofVerifies(t *testing.T) {
	tree := newTestTree(t)
	ctx := context.Background()

	root, err := tree.Put(ctx, EmptyRoot, []byte("k1"), []byte("v1"))
	require.NoError(t, err)

	proof, err := tree.GenerateProof(ctx, root, []byte("does-not-exist"))
	require.NoError(t, err)
	require.False(t, proof.Inclusion())
	require.True(t, VerifyProof(root, proof))
}

func TestProofRejectsWrongRoot(t *testing.T) {
	tree := newTestTree(t)
	ctx := context.Background()

	root, err := tree.Put(ctx, EmptyRoot, []byte("k1"), []byte("v1"))
	require.NoError(t, err)
	proof, err := tree.GenerateProof(ctx, root, []byte("k1"))
	require.NoError(t, err)

	otherRoot, err := tree.Put(ctx, root, []byte("k2"), []byte("v2"))
	require.NoError(t, err)
	require.False(t, VerifyProof(otherRoot, proof))
}

func TestUpdateProofVerifiesPreAndPost(t *testing.T) {
	tree := newTestTree(t)
	ctx := context.Background()

	_, up, err := tree.putWithProof(ctx, EmptyRoot, []byte("k1"), []byte("v1"))
	require.NoError(t, err)
	require.False(t, up.PreProof().Inclusion())
	require.True(t, up.Verify())

	_, up2, err := tree.putWithProof(ctx, up.PostRoot, []byte("k1"), []byte("v2"))
	require.NoError(t, err)
	require.True(t, up2.PreProof().Inclusion())
	require.Equal(t, []byte("v1"), up2.OldLeaf.Value)
	require.True(t, up2.Verify())
}
