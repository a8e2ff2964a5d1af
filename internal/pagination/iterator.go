// Package pagination turns a remote collection served in pages into a single
// ordered, lazy sequence.
//
// The Iterator holds at most two pages: the page being consumed and the page
// after it. The following page is requested once consumption passes the middle
// of the current page, so by the time the current page is exhausted the next
// one is already in memory. Page boundaries and page size are decided by the
// remote side; an empty page marks the end of the collection.
//
// An Iterator is single-pass and not safe for concurrent use. Independent
// iterators over the same collection each own their buffers and cursor.
package pagination

import (
	"context"
	"fmt"
	"iter"
)

// FetchFunc returns the page with the given zero-based index.
type FetchFunc[T any] func(ctx context.Context, page int) ([]T, error)

// State is the iterator's position in its lifecycle.
type State int

const (
	// StateFillingCurrent means the first page has not been fetched yet.
	StateFillingCurrent State = iota
	// StateConsuming means items are served from the current page and the
	// next page has not been requested.
	StateConsuming
	// StatePrefetchingNext means the next page has been fetched for the
	// current page and is waiting to be swapped in.
	StatePrefetchingNext
	// StateExhausted means an empty page was reached; Next returns false.
	StateExhausted
	// StateFailed means a fetch failed; Next returns the stored error.
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateFillingCurrent:
		return "filling-current"
	case StateConsuming:
		return "consuming"
	case StatePrefetchingNext:
		return "prefetching-next"
	case StateExhausted:
		return "exhausted"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Iterator is a pull-based, double-buffered iterator over a paged collection.
type Iterator[T any] struct {
	fetch FetchFunc[T]

	state   State
	current []T
	next    []T
	index   int
	page    int
	fetched int
	err     error
}

// New creates an Iterator over fetch. No page is fetched until the first
// call to Next.
func New[T any](fetch FetchFunc[T]) *Iterator[T] {
	return &Iterator[T]{fetch: fetch, state: StateFillingCurrent}
}

// Next returns the next item. It returns (zero, false, nil) once the
// collection is exhausted and (zero, false, err) if a page fetch failed.
// After a failure every call returns the same error.
func (it *Iterator[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T

	for {
		switch it.state {
		case StateExhausted:
			return zero, false, nil

		case StateFailed:
			return zero, false, it.err

		case StateFillingCurrent:
			page, err := it.fetch(ctx, 0)
			if err != nil {
				return zero, false, it.fail(0, err)
			}
			it.fetched++
			it.current = page
			it.index = 0
			it.state = StateConsuming

		case StateConsuming, StatePrefetchingNext:
			if len(it.current) == 0 {
				it.current, it.next = nil, nil
				it.state = StateExhausted
				continue
			}

			if it.index > len(it.current)/2 && it.state == StateConsuming {
				page, err := it.fetch(ctx, it.page+1)
				if err != nil {
					return zero, false, it.fail(it.page+1, err)
				}
				it.fetched++
				it.page++
				it.next = page
				it.state = StatePrefetchingNext
			}

			if it.index >= len(it.current) {
				it.current = it.next
				it.next = nil
				it.index = 0
				it.state = StateConsuming
				continue
			}

			item := it.current[it.index]
			it.index++
			return item, true, nil

		default:
			return zero, false, fmt.Errorf("pagination iterator in invalid state %s", it.state)
		}
	}
}

// fail records err, drops both buffers and moves to StateFailed.
func (it *Iterator[T]) fail(page int, err error) error {
	it.err = fmt.Errorf("failed to fetch page %d; %w", page, err)
	it.current, it.next = nil, nil
	it.state = StateFailed
	return it.err
}

// State returns the current state.
func (it *Iterator[T]) State() State {
	return it.state
}

// Pages returns how many pages have been fetched so far.
func (it *Iterator[T]) Pages() int {
	return it.fetched
}

// Err returns the error that stopped the iterator, if any.
func (it *Iterator[T]) Err() error {
	return it.err
}

// All adapts the iterator to a range-over-func sequence. Iteration stops
// after the first error, which is yielded with a zero item.
func (it *Iterator[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for {
			item, ok, err := it.Next(ctx)
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			if !ok {
				return
			}
			if !yield(item, nil) {
				return
			}
		}
	}
}

// Collect drains the iterator into a slice.
func (it *Iterator[T]) Collect(ctx context.Context) ([]T, error) {
	var items []T
	for item, err := range it.All(ctx) {
		if err != nil {
			return items, err
		}
		items = append(items, item)
	}
	return items, nil
}
