package cli

import (
	"errors"
	"fmt"

	"shobdo-cli/internal/model"
)

var errNotSignedIn = errors.New("not signed in; run `shobdo login` first")

type notFoundError struct {
	kind string
	id   string
}

func (e notFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.kind, e.id)
}

func errNotFound(kind, id string) error {
	return notFoundError{kind: kind, id: id}
}

type adminOnlyError struct {
	role model.Role
}

func (e adminOnlyError) Error() string {
	return fmt.Sprintf("permission denied: admin role required (signed in as %s)", e.role)
}

func errAdminOnly(role model.Role) error {
	return adminOnlyError{role: role}
}
