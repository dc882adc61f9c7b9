package server

import "sync"

// inflight tracks form tokens whose submission is waiting on the endpoint.
type inflight struct {
	mu     sync.Mutex
	tokens map[string]struct{}
}

func newInflight() *inflight {
	return &inflight{tokens: make(map[string]struct{})}
}

// acquire marks token busy. It returns false when the token is already busy.
func (i *inflight) acquire(token string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	if _, busy := i.tokens[token]; busy {
		return false
	}
	i.tokens[token] = struct{}{}
	return true
}

func (i *inflight) release(token string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.tokens, token)
}
