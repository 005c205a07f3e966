package shop

import "sync"

// TokenStore holds the access token of the current browser session.
type TokenStore interface {
	Token() string
	SetToken(token string)
}

// MemoryTokens is a process-local TokenStore.
type MemoryTokens struct {
	mu    sync.Mutex
	token string
}

func (m *MemoryTokens) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

func (m *MemoryTokens) SetToken(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
}
