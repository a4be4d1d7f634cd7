package session

// TokenStorage persists the bearer token across process restarts. Exactly
// one key is stored; an absent value means unauthenticated.
type TokenStorage interface {
	Read() (string, error)
	Write(token string) error
	Clear() error
}

// MemoryStorage is a volatile TokenStorage for tests and throwaway sessions.
type MemoryStorage struct {
	token string
}

var _ TokenStorage = (*MemoryStorage)(nil)

func NewMemoryStorage(token string) *MemoryStorage {
	return &MemoryStorage{token: token}
}

func (s *MemoryStorage) Read() (string, error)    { return s.token, nil }
func (s *MemoryStorage) Write(token string) error { s.token = token; return nil }
func (s *MemoryStorage) Clear() error             { s.token = ""; return nil }
