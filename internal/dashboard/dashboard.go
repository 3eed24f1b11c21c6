// Package dashboard loads the overview screen.
package dashboard

import (
	"context"
	"time"

	"shobdo-cli/internal/model"
	"shobdo-cli/internal/view"

	"golang.org/x/sync/errgroup"
)

type Lister[T any] interface {
	List(ctx context.Context) ([]T, error)
}

// Loader fetches everything the overview needs.
type Loader struct {
	Dramas   Lister[model.Drama]
	Contacts Lister[model.Contact]
	// IsAdmin gates the contacts fetch; sub-admins never request /contacts.
	IsAdmin func() bool
	Now     func() time.Time
}

// Load fetches dramas and, for admins, contacts in parallel. If either fetch fails
// the error is returned and no overview is produced. Errors are returned as the
// transport reported them so their messages reach the user unchanged.
func (l Loader) Load(ctx context.Context) (view.Overview, error) {
	var (
		dramas   []model.Drama
		contacts []model.Contact
	)
	admin := l.IsAdmin != nil && l.IsAdmin()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		dramas, err = l.Dramas.List(gctx)
		return err
	})
	if admin && l.Contacts != nil {
		g.Go(func() error {
			var err error
			contacts, err = l.Contacts.List(gctx)
			if err == nil && contacts == nil {
				contacts = []model.Contact{}
			}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return view.Overview{}, err
	}

	now := time.Now()
	if l.Now != nil {
		now = l.Now()
	}
	return view.BuildOverview(dramas, contacts, now), nil
}
