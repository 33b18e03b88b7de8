// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package flashswap

import (
	"context"
	"testing"

	"github.com/luxfi/ids"
	"github.com/stretchr/testify/require"
)

func TestTxIDContext(t *testing.T) {
	_, ok := TxIDFromContext(context.Background())
	require.False(t, ok)

	id := ids.GenerateTestID()
	got, ok := TxIDFromContext(WithTxID(context.Background(), id))
	require.True(t, ok)
	require.Equal(t, id, got)
}

func TestSessionsOpenClose(t *testing.T) {
	s := newSessions()
	txID := ids.GenerateTestID()

	closeSession, err := s.open(txID, hashA)
	require.NoError(t, err)
	require.Equal(t, 1, s.len())

	_, err = s.open(txID, hashB)
	require.ErrorIs(t, err, ErrReentrant)

	closeSession()
	require.Zero(t, s.len())
	require.ErrorIs(t, s.claim(txID, hashA), ErrPermissionedPairAccess)

	// a closed transaction may open again
	closeSession, err = s.open(txID, hashB)
	require.NoError(t, err)
	closeSession()
}

func TestSessionsRejectEmptyTxID(t *testing.T) {
	s := newSessions()
	_, err := s.open(ids.Empty, hashA)
	require.ErrorIs(t, err, ErrMissingTxID)
	require.Zero(t, s.len())
}

func TestSessionsClaimOnce(t *testing.T) {
	s := newSessions()
	txID := ids.GenerateTestID()

	closeSession, err := s.open(txID, hashA)
	require.NoError(t, err)
	defer closeSession()

	require.ErrorIs(t, s.claim(txID, hashB), ErrPermissionedPairAccess)
	require.NoError(t, s.claim(txID, hashA))
	require.ErrorIs(t, s.claim(txID, hashA), ErrPermissionedPairAccess)
	require.Equal(t, 1, s.len())
}

func TestSessionsIsolateTransactions(t *testing.T) {
	s := newSessions()
	tx1, tx2 := ids.GenerateTestID(), ids.GenerateTestID()

	close1, err := s.open(tx1, hashA)
	require.NoError(t, err)
	defer close1()
	close2, err := s.open(tx2, hashB)
	require.NoError(t, err)
	defer close2()

	require.ErrorIs(t, s.claim(tx1, hashB), ErrPermissionedPairAccess)
	require.ErrorIs(t, s.claim(tx2, hashA), ErrPermissionedPairAccess)
	require.NoError(t, s.claim(tx1, hashA))
	require.NoError(t, s.claim(tx2, hashB))
}

func TestNewTxIDUnique(t *testing.T) {
	s := newSessions()
	seen := make(map[ids.ID]struct{})
	for i := 0; i < 1000; i++ {
		id := s.newTxID(hashA)
		_, dup := seen[id]
		require.False(t, dup)
		seen[id] = struct{}{}
	}
}
