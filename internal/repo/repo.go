// Package repo holds thin pass-through repositories over the transport client.
//
// Each call issues exactly one request. Mutations never patch the held snapshot;
// callers refresh with List afterwards so the server stays the source of truth.
package repo

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"shobdo-cli/internal/model"
)

// Sender is the transport surface repositories need (*api.Client).
type Sender interface {
	Send(ctx context.Context, method, path string, body any, out any) error
}

// Repository is a CRUD resource of T created/updated from payloads of P.
type Repository[T any, P any] struct {
	sender Sender
	path   string

	mu       sync.RWMutex
	snapshot []T
}

func NewRepository[T any, P any](sender Sender, path string) *Repository[T, P] {
	return &Repository[T, P]{
		sender:   sender,
		path:     "/" + strings.Trim(path, "/"),
		snapshot: []T{},
	}
}

func (r *Repository[T, P]) collectionPath() string { return r.path + "/" }

func (r *Repository[T, P]) itemPath(id string) string {
	return r.path + "/" + url.PathEscape(strings.TrimSpace(id))
}

// List fetches the full collection and replaces the snapshot wholesale. A failed
// fetch leaves the previous snapshot in place.
func (r *Repository[T, P]) List(ctx context.Context) ([]T, error) {
	var out []T
	if err := r.sender.Send(ctx, http.MethodGet, r.collectionPath(), nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	r.mu.Lock()
	r.snapshot = out
	r.mu.Unlock()
	return cloneSlice(out), nil
}

func (r *Repository[T, P]) Create(ctx context.Context, payload P) (T, error) {
	var out T
	err := r.sender.Send(ctx, http.MethodPost, r.collectionPath(), payload, &out)
	return out, err
}

func (r *Repository[T, P]) Update(ctx context.Context, id string, payload P) (T, error) {
	var out T
	err := r.sender.Send(ctx, http.MethodPut, r.itemPath(id), payload, &out)
	return out, err
}

func (r *Repository[T, P]) Delete(ctx context.Context, id string) error {
	return r.sender.Send(ctx, http.MethodDelete, r.itemPath(id), nil, nil)
}

// Snapshot returns a copy of the last successfully fetched list.
func (r *Repository[T, P]) Snapshot() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneSlice(r.snapshot)
}

func cloneSlice[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	return out
}

type (
	Dramas   = Repository[model.Drama, model.DramaInput]
	Contacts = Repository[model.Contact, model.ContactInput]
)

func NewDramas(sender Sender) *Dramas {
	return NewRepository[model.Drama, model.DramaInput](sender, "/dramas")
}

func NewContacts(sender Sender) *Contacts {
	return NewRepository[model.Contact, model.ContactInput](sender, "/contacts")
}
