// Package session holds the signed-in credential, role and identity.
//
// It is a thin typed wrapper over a key-value backend, not a security boundary:
// the remote API decides what a credential may do.
package session

import (
	"strings"
	"sync"

	"shobdo-cli/internal/model"
)

// Fixed storage keys (shared with the browser dashboard's localStorage layout).
const (
	KeyToken = "st_token"
	KeyRole  = "st_role"
	KeyEmail = "st_email"
)

// KV is the persistence backend. store.Store implements it.
type KV interface {
	Get(k string) (string, error)
	SetMany(pairs map[string]string) error
	Delete(keys ...string) error
}

// State is the single owner of session data for the process. Values are loaded once
// and written through on Set/Clear.
type State struct {
	mu         sync.RWMutex
	kv         KV
	credential string
	role       model.Role
	identity   string
}

// Load reads the persisted session (empty when nothing is stored).
func Load(kv KV) (*State, error) {
	s := &State{kv: kv}
	var err error
	if s.credential, err = kv.Get(KeyToken); err != nil {
		return nil, err
	}
	role, err := kv.Get(KeyRole)
	if err != nil {
		return nil, err
	}
	s.role = model.Role(role)
	if s.identity, err = kv.Get(KeyEmail); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *State) Credential() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.credential
}

// Role is empty when unauthenticated.
func (s *State) Role() model.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.credential == "" {
		return ""
	}
	return s.role
}

// Identity is empty when unauthenticated.
func (s *State) Identity() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.credential == "" {
		return ""
	}
	return s.identity
}

func (s *State) Set(credential string, role model.Role, identity string) error {
	credential = strings.TrimSpace(credential)
	identity = strings.TrimSpace(identity)
	if err := s.kv.SetMany(map[string]string{
		KeyToken: credential,
		KeyRole:  string(role),
		KeyEmail: identity,
	}); err != nil {
		return err
	}
	s.mu.Lock()
	s.credential, s.role, s.identity = credential, role, identity
	s.mu.Unlock()
	return nil
}

// Clear drops the in-memory session even if the backend write fails, so a rejected
// credential is never reused by this process.
func (s *State) Clear() error {
	s.mu.Lock()
	s.credential, s.role, s.identity = "", "", ""
	s.mu.Unlock()
	return s.kv.Delete(KeyToken, KeyRole, KeyEmail)
}

func (s *State) IsAuthenticated() bool {
	return s.Credential() != ""
}

func (s *State) HasAdminRole() bool {
	return s.Role() == model.RoleAdmin
}

// MemoryKV is an in-process KV used by tests and one-shot tooling.
type MemoryKV struct {
	mu sync.Mutex
	m  map[string]string
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{m: map[string]string{}}
}

func (kv *MemoryKV) Get(k string) (string, error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	return kv.m[k], nil
}

func (kv *MemoryKV) SetMany(pairs map[string]string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	for k, v := range pairs {
		kv.m[k] = v
	}
	return nil
}

func (kv *MemoryKV) Delete(keys ...string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	for _, k := range keys {
		delete(kv.m, k)
	}
	return nil
}
