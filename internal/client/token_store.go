package client

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// TokenStore holds the identity token and announces every change to it.
// Subscribers are called once with the current value when they subscribe.
type TokenStore interface {
	Token() string
	SetToken(token string) error
	Subscribe(fn func(token string)) (unsubscribe func())
}

type tokenBroadcast struct {
	mu    sync.Mutex
	token string
	next  int
	subs  map[int]func(string)
}

func (b *tokenBroadcast) Token() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.token
}

func (b *tokenBroadcast) set(token string) {
	b.mu.Lock()
	if b.token == token {
		b.mu.Unlock()
		return
	}
	b.token = token
	fns := make([]func(string), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(token)
	}
}

func (b *tokenBroadcast) Subscribe(fn func(string)) func() {
	b.mu.Lock()
	if b.subs == nil {
		b.subs = map[int]func(string){}
	}
	id := b.next
	b.next++
	b.subs[id] = fn
	cur := b.token
	b.mu.Unlock()

	fn(cur)

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// MemoryTokenStore keeps the token for the life of the process.
type MemoryTokenStore struct {
	tokenBroadcast
}

func NewMemoryTokenStore(token string) *MemoryTokenStore {
	s := &MemoryTokenStore{}
	s.token = token
	return s
}

func (s *MemoryTokenStore) SetToken(token string) error {
	s.set(token)
	return nil
}

// FileConfig is the on-disk CLI configuration.
type FileConfig struct {
	BaseURL string `yaml:"base_url,omitempty"`
	Token   string `yaml:"token,omitempty"`
}

// FileTokenStore persists the token in a YAML file next to the base URL,
// so a CLI session survives between invocations.
type FileTokenStore struct {
	tokenBroadcast
	path string
	cfg  FileConfig
}

func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".jobbo.yaml"
	}
	return filepath.Join(home, ".jobbo.yaml")
}

// OpenFileTokenStore loads path; a missing file is an empty config.
func OpenFileTokenStore(path string) (*FileTokenStore, error) {
	s := &FileTokenStore{path: path}
	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(b, &s.cfg); err != nil {
			return nil, err
		}
	}
	s.token = s.cfg.Token
	return s, nil
}

func (s *FileTokenStore) Config() FileConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

func (s *FileTokenStore) SetBaseURL(u string) error {
	s.mu.Lock()
	s.cfg.BaseURL = u
	cfg := s.cfg
	s.mu.Unlock()
	return s.write(cfg)
}

func (s *FileTokenStore) SetToken(token string) error {
	s.mu.Lock()
	s.cfg.Token = token
	cfg := s.cfg
	s.mu.Unlock()
	if err := s.write(cfg); err != nil {
		return err
	}
	s.set(token)
	return nil
}

func (s *FileTokenStore) write(cfg FileConfig) error {
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}
	return os.WriteFile(s.path, b, 0o600)
}
