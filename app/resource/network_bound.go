package resource

import (
	"context"
	"fmt"
)

// Update is one emission of an observed local query: a fresh value, or the
// error that ended the query.
type Update[T any] struct {
	Value T
	Err   error
}

// NetworkBound combines a one-shot remote fetch with a continuously observed
// local query into a single stream of Resource states. R is the remote payload
// type, T the type delivered to the consumer.
//
// Every Run starts a fresh execution: the stream opens with Loading, a fetch
// failure produces exactly one terminal Error, and a fetch success runs Persist
// to completion before the local query is subscribed to. Each value from the
// local query is delivered as Success; a query error becomes a single terminal
// Error. The stream never ends without either a Success, an Error, or a
// cancelled ctx.
type NetworkBound[R, T any] struct {
	// Fetch performs the remote call. Required.
	Fetch func(ctx context.Context) (R, error)

	// Persist writes the remote payload into durable local storage before the
	// local query is subscribed to. Nil means no-op (pure pass-through flows).
	Persist func(ctx context.Context, remote R) error

	// Load opens the local query. The returned channel may emit repeatedly,
	// following subsequent writes to the local store. Required.
	Load func(ctx context.Context, remote R) (<-chan Update[T], error)

	// OnFetchFailed fires once when Fetch returns an error, before the Error
	// state is emitted. Nil means no-op.
	OnFetchFailed func(err error)
}

// Run executes the flow and returns the state stream. The channel is closed
// after a terminal Error, when the local query ends, or when ctx is cancelled.
func (n *NetworkBound[R, T]) Run(ctx context.Context) <-chan Resource[T] {
	out := make(chan Resource[T])

	go func() {
		defer close(out)

		if !emit(ctx, out, Loading[T]()) {
			return
		}

		remote, err := n.Fetch(ctx)
		if err != nil {
			if n.OnFetchFailed != nil {
				n.OnFetchFailed(err)
			}
			emit(ctx, out, Error[T](err.Error()))
			return
		}

		if n.Persist != nil {
			if err := n.Persist(ctx, remote); err != nil {
				emit(ctx, out, Error[T](fmt.Sprintf("failed to persist remote data: %s", err)))
				return
			}
		}

		local, err := n.Load(ctx, remote)
		if err != nil {
			emit(ctx, out, Error[T](fmt.Sprintf("failed to load local data: %s", err)))
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case item, ok := <-local:
				if !ok {
					return
				}
				if item.Err != nil {
					emit(ctx, out, Error[T](fmt.Sprintf("failed to load local data: %s", item.Err)))
					return
				}
				if !emit(ctx, out, Success(item.Value)) {
					return
				}
			}
		}
	}()

	return out
}

func emit[T any](ctx context.Context, out chan<- Resource[T], r Resource[T]) bool {
	select {
	case out <- r:
		return true
	case <-ctx.Done():
		return false
	}
}
