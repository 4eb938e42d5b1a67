package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	id "creditline/pkg/domain"
	dErrors "creditline/pkg/domain-errors"
)

// numLendingShards spreads customers over independent locks so originations
// for different customers rarely contend.
const numLendingShards = 128

// DefaultTxTimeout bounds a lending transaction when the caller set no deadline.
const DefaultTxTimeout = 5 * time.Second

// ShardedTx serializes lending transactions per customer with sharded mutexes.
// It is the in-memory LendingTx; the stores need nothing from the context.
type ShardedTx struct {
	shards  [numLendingShards]sync.Mutex
	timeout time.Duration
}

// NewShardedTx returns an in-memory LendingTx. A zero timeout uses DefaultTxTimeout.
func NewShardedTx(timeout time.Duration) *ShardedTx {
	return &ShardedTx{timeout: timeout}
}

func (t *ShardedTx) RunInTx(ctx context.Context, customerID id.CustomerID, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	ctx, cancel := WithTxTimeout(ctx, t.timeout)
	defer cancel()

	shard := &t.shards[shardFor(customerID)]
	shard.Lock()
	defer shard.Unlock()

	// Waiting for the lock may have used up the deadline.
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	return fn(ctx)
}

// WithTxTimeout applies timeout (or DefaultTxTimeout) when ctx has no deadline.
func WithTxTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultTxTimeout
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func shardFor(customerID id.CustomerID) uint32 {
	return hashString(strconv.FormatInt(int64(customerID), 10)) % numLendingShards
}

// hashString is FNV-1a.
func hashString(s string) uint32 {
	const (
		fnvOffset = 2166136261
		fnvPrime  = 16777619
	)
	h := uint32(fnvOffset)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= fnvPrime
	}
	return h
}
