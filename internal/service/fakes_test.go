package service

import (
	"context"
	"errors"
	"sync"

	"classpulse/internal/cache"
	"classpulse/internal/model"
)

// In-memory stand-ins for the Mongo repositories and Redis caches so the
// services can be exercised without external processes.

type fakeSessionRepo struct {
	mu       sync.Mutex
	created  []model.Session
	updated  []model.Session
	failNext bool
}

func (r *fakeSessionRepo) Create(ctx context.Context, sess *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNext {
		r.failNext = false
		return errors.New("datastore down")
	}
	r.created = append(r.created, *sess)
	return nil
}

func (r *fakeSessionRepo) Update(ctx context.Context, sess *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updated = append(r.updated, *sess)
	return nil
}

func (r *fakeSessionRepo) ListAll(ctx context.Context) ([]*model.Session, error) {
	return nil, nil
}

type fakeEventRepo struct {
	mu       sync.Mutex
	inserted []model.Snapshot
	err      error
}

func (r *fakeEventRepo) Insert(ctx context.Context, snap *model.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.inserted = append(r.inserted, *snap)
	return nil
}

func (r *fakeEventRepo) ListBySession(ctx context.Context, sessionID string) ([]model.Snapshot, error) {
	return nil, nil
}

type fakeLeaderboard struct {
	mu     sync.Mutex
	scores map[string]map[string]int // sessionID -> studentID -> mean
	err    error
}

func newFakeLeaderboard() *fakeLeaderboard {
	return &fakeLeaderboard{scores: make(map[string]map[string]int)}
}

func (c *fakeLeaderboard) UpdateScore(ctx context.Context, sessionID, studentID string, mean int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	if c.scores[sessionID] == nil {
		c.scores[sessionID] = make(map[string]int)
	}
	c.scores[sessionID][studentID] = mean
	return nil
}

func (c *fakeLeaderboard) GetTop(ctx context.Context, sessionID string, limit int) ([]cache.LeaderboardEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var entries []cache.LeaderboardEntry
	for studentID, mean := range c.scores[sessionID] {
		entries = append(entries, cache.LeaderboardEntry{StudentID: studentID, MeanAttention: mean})
	}
	return entries, nil
}

func (c *fakeLeaderboard) GetRank(ctx context.Context, sessionID, studentID string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	mean, ok := c.scores[sessionID][studentID]
	if !ok {
		return -1, nil
	}
	rank := int64(1)
	for id, m := range c.scores[sessionID] {
		if id != studentID && m > mean {
			rank++
		}
	}
	return rank, nil
}

type fakeSummaryCache struct {
	mu      sync.Mutex
	entries map[string]*model.SessionSummary
}

func newFakeSummaryCache() *fakeSummaryCache {
	return &fakeSummaryCache{entries: make(map[string]*model.SessionSummary)}
}

func (c *fakeSummaryCache) Get(ctx context.Context, sessionID string) (*model.SessionSummary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[sessionID], nil
}

func (c *fakeSummaryCache) Set(ctx context.Context, summary *model.SessionSummary) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[summary.Session.ID] = summary
	return nil
}

func (c *fakeSummaryCache) Invalidate(ctx context.Context, sessionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, sessionID)
	return nil
}

type fakeNotifier struct {
	mu         sync.Mutex
	deliveries map[string]string // recipient -> body
	err        error
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{deliveries: make(map[string]string)}
}

func (n *fakeNotifier) Deliver(ctx context.Context, recipient, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.deliveries[recipient] = body
	return nil
}
