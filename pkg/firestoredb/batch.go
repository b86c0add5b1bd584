package firestoredb

import (
	"context"
	"sync/atomic"

	"cloud.google.com/go/firestore"
	"golang.org/x/sync/errgroup"
)

// Firestore rejects a single atomic batch above a fixed operation count.
const (
	// DeleteBatchLimit is the ceiling for batches of pure deletes.
	DeleteBatchLimit = 500
	// MixedBatchLimit is the ceiling when deletes are interleaved with
	// counter updates in the same batch, as a safety margin.
	MixedBatchLimit = 450
)

// CommitFunc applies one chunk of items as a single atomic commit.
type CommitFunc[T any] func(ctx context.Context, chunk []T) error

// Chunk splits items into consecutive chunks of at most ceiling entries.
func Chunk[T any](items []T, ceiling int) [][]T {
	if ceiling <= 0 {
		ceiling = DeleteBatchLimit
	}
	var chunks [][]T
	for start := 0; start < len(items); start += ceiling {
		end := start + ceiling
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end])
	}
	return chunks
}

// ApplyBatched commits items chunk by chunk. Chunks are independent commits,
// so partial progress survives a failure in a later chunk. Returns the number
// of items committed before the first failure.
func ApplyBatched[T any](ctx context.Context, items []T, ceiling int, commit CommitFunc[T]) (int, error) {
	processed := 0
	for _, chunk := range Chunk(items, ceiling) {
		if err := commit(ctx, chunk); err != nil {
			return processed, err
		}
		processed += len(chunk)
	}
	return processed, nil
}

// ApplyBatchedConcurrent commits all chunks concurrently and waits for every
// commit to finish. Returns the number of items from chunks that committed
// successfully, and the first error encountered.
func ApplyBatchedConcurrent[T any](ctx context.Context, items []T, ceiling int, commit CommitFunc[T]) (int, error) {
	var processed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	for _, chunk := range Chunk(items, ceiling) {
		chunk := chunk
		g.Go(func() error {
			if err := commit(gctx, chunk); err != nil {
				return err
			}
			processed.Add(int64(len(chunk)))
			return nil
		})
	}
	err := g.Wait()
	return int(processed.Load()), err
}

// BatchOp enqueues one write into a Firestore batch.
type BatchOp func(b *firestore.WriteBatch)

// ApplyOps commits a list of batch operations through ApplyBatched, building
// one atomic write batch per chunk.
func ApplyOps(ctx context.Context, client *firestore.Client, ops []BatchOp, ceiling int) (int, error) {
	return ApplyBatched(ctx, ops, ceiling, func(ctx context.Context, chunk []BatchOp) error {
		b := client.Batch()
		for _, op := range chunk {
			op(b)
		}
		_, err := b.Commit(ctx)
		return err
	})
}

// DeleteRefs deletes the given documents in independent batches of at most
// ceiling deletes each.
func DeleteRefs(ctx context.Context, client *firestore.Client, refs []*firestore.DocumentRef, ceiling int) (int, error) {
	ops := make([]BatchOp, 0, len(refs))
	for _, ref := range refs {
		ref := ref
		ops = append(ops, func(b *firestore.WriteBatch) { b.Delete(ref) })
	}
	return ApplyOps(ctx, client, ops, ceiling)
}

// DeleteRefsConcurrent is DeleteRefs with chunks committed concurrently.
func DeleteRefsConcurrent(ctx context.Context, client *firestore.Client, refs []*firestore.DocumentRef, ceiling int) (int, error) {
	return ApplyBatchedConcurrent(ctx, refs, ceiling, func(ctx context.Context, chunk []*firestore.DocumentRef) error {
		b := client.Batch()
		for _, ref := range chunk {
			b.Delete(ref)
		}
		_, err := b.Commit(ctx)
		return err
	})
}
