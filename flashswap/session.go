// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package flashswap

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/luxfi/geth/common"
	"github.com/luxfi/ids"
	"github.com/zeebo/blake3"
)

type txIDKey struct{}

// WithTxID returns a context tagged with the transaction a flash swap runs
// in. The pair callback must be invoked with a context carrying the same id.
func WithTxID(ctx context.Context, txID ids.ID) context.Context {
	return context.WithValue(ctx, txIDKey{}, txID)
}

// TxIDFromContext returns the transaction id attached by WithTxID
func TxIDFromContext(ctx context.Context) (ids.ID, bool) {
	txID, ok := ctx.Value(txIDKey{}).(ids.ID)
	return txID, ok
}

// session is the state of one in-flight initiate -> callback round trip
type session struct {
	pair common.Hash
	// claimed is set by the first authenticated callback
	claimed bool
}

// sessions tracks the permissioned pair of every in-flight transaction.
// A transaction has at most one session; the callback authenticates its
// caller against it.
type sessions struct {
	mu       sync.Mutex
	inflight map[ids.ID]*session

	// nonce feeds transaction id derivation
	nonce atomic.Uint64
}

func newSessions() *sessions {
	return &sessions{
		inflight: make(map[ids.ID]*session),
	}
}

// open records pair as the permissioned pair of txID. The returned func
// closes the session and must be called once the pair swap returns.
func (s *sessions) open(txID ids.ID, pair common.Hash) (func(), error) {
	if txID == ids.Empty {
		return nil, ErrMissingTxID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.inflight[txID]; ok {
		return nil, ErrReentrant
	}
	s.inflight[txID] = &session{pair: pair}

	return func() {
		s.mu.Lock()
		delete(s.inflight, txID)
		s.mu.Unlock()
	}, nil
}

// claim authenticates caller against the permissioned pair of txID and
// consumes the session. A session admits one callback.
func (s *sessions) claim(txID ids.ID, caller common.Hash) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.inflight[txID]
	switch {
	case !ok:
		return fmt.Errorf("%w: no session", ErrPermissionedPairAccess)
	case sess.pair != caller:
		return fmt.Errorf("%w: expected %s", ErrPermissionedPairAccess, sess.pair.Hex())
	case sess.claimed:
		return fmt.Errorf("%w: session already claimed", ErrPermissionedPairAccess)
	}
	sess.claimed = true
	return nil
}

// len returns the number of in-flight sessions
func (s *sessions) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inflight)
}

// newTxID derives a transaction id unique to this process:
// BLAKE3(packageHash || nonce)
func (s *sessions) newTxID(packageHash common.Hash) ids.ID {
	var nonce [8]byte
	binary.BigEndian.PutUint64(nonce[:], s.nonce.Add(1))

	h := blake3.New()
	h.Write(packageHash[:])
	h.Write(nonce[:])

	var id ids.ID
	h.Digest().Read(id[:])
	return id
}
