package client

import (
	"context"
	"errors"
	"sync"

	"github.com/yoockh/jobbo/internal/models"
)

// ErrSuperseded is returned by Searcher.Search when a newer search was
// started before this one finished.
var ErrSuperseded = errors.New("search superseded by a newer one")

// Searcher runs one search at a time for a result view. Starting a search
// cancels the one in flight, and a response that lands after a newer search
// began is dropped, so results on screen always belong to the latest query.
type Searcher struct {
	c *Client

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

func NewSearcher(c *Client) *Searcher {
	return &Searcher{c: c}
}

func (s *Searcher) Search(ctx context.Context, p SearchParams) (*models.ListingsResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.seq++
	mine := s.seq
	s.cancel = cancel
	s.mu.Unlock()

	res, err := s.c.SearchJobs(ctx, p)

	s.mu.Lock()
	defer s.mu.Unlock()
	if mine != s.seq {
		return nil, ErrSuperseded
	}
	s.cancel = nil
	return res, err
}
