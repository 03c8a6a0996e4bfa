package issues

import (
	"context"

	"github.com/thomas-vilte/issuels/internal/models"
)

// Pending is a query result that is resolved exactly once by the goroutine
// running the query.
type Pending struct {
	done   chan struct{}
	result models.IssueQueryResult
	err    error
}

func newPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

func resolvedPending(result models.IssueQueryResult, err error) *Pending {
	p := newPending()
	p.resolve(result, err)
	return p
}

func (p *Pending) resolve(result models.IssueQueryResult, err error) {
	p.result, p.err = result, err
	close(p.done)
}

// Await blocks until the query finishes or ctx is done.
func (p *Pending) Await(ctx context.Context) (models.IssueQueryResult, error) {
	select {
	case <-p.done:
		return p.result, p.err
	case <-ctx.Done():
		return models.IssueQueryResult{}, ctx.Err()
	}
}

// Done reports whether the query has finished.
func (p *Pending) Done() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}
