// Package directory implements the user directory: lookups by selector,
// listing, create/update/delete with uniqueness enforcement, and the
// default-superuser bootstrap.
package directory

import (
	"context"
	"errors"

	"github.com/iliyamo/user-directory/internal/auth"
	"github.com/iliyamo/user-directory/internal/config"
	"github.com/iliyamo/user-directory/internal/model"
	"github.com/iliyamo/user-directory/internal/queue"
	"github.com/iliyamo/user-directory/internal/repository"
)

// ErrInvalidQuery is returned by Get when no selector was supplied.
var ErrInvalidQuery = errors.New("invalid query")

// Selector identifies a user by exactly one of id, username or email.
type Selector struct {
	ID       *uint64
	Username *string
	Email    *string
}

// CreateInput carries the fields for a new user. The handler resolves
// defaults (is_active true, is_superuser false) before calling Create.
type CreateInput struct {
	Username    string
	Email       string
	FullName    string
	Password    string
	IsActive    bool
	IsSuperuser bool
}

// UpdateInput is a partial update; nil fields are left untouched. A
// non-nil password is always re-hashed and applied.
type UpdateInput struct {
	Username    *string
	Email       *string
	FullName    *string
	Password    *string
	IsActive    *bool
	IsSuperuser *bool
}

// Directory performs user CRUD over a UserStore. Lifecycle events are
// published best-effort when a publisher is configured; a broker failure
// never fails the operation.
type Directory struct {
	Store     repository.UserStore
	Cost      int // bcrypt cost
	Superuser config.Superuser
	Events    *queue.Publisher // nil disables event publishing
}

func New(store repository.UserStore, cost int, su config.Superuser, events *queue.Publisher) *Directory {
	return &Directory{Store: store, Cost: cost, Superuser: su, Events: events}
}

// Get returns the user matching the selector. Exactly one selector field
// must be set; id wins over username, username over email, matching the
// query-parameter precedence of the HTTP surface.
func (d *Directory) Get(ctx context.Context, sel Selector) (model.User, error) {
	switch {
	case sel.ID != nil:
		return d.Store.GetByID(ctx, *sel.ID)
	case sel.Username != nil:
		return d.Store.GetByUsername(ctx, *sel.Username)
	case sel.Email != nil:
		return d.Store.GetByEmail(ctx, *sel.Email)
	default:
		return model.User{}, ErrInvalidQuery
	}
}

// List returns every user in store order.
func (d *Directory) List(ctx context.Context) ([]model.User, error) {
	return d.Store.List(ctx)
}

// Create checks email then username for conflicts, hashes the password
// and inserts the record. The store's unique indexes catch any write that
// races past the checks and fail with the same sentinels.
func (d *Directory) Create(ctx context.Context, in CreateInput) (model.User, error) {
	if _, err := d.Store.GetByEmail(ctx, in.Email); err == nil {
		return model.User{}, repository.ErrEmailExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return model.User{}, err
	}
	if _, err := d.Store.GetByUsername(ctx, in.Username); err == nil {
		return model.User{}, repository.ErrUsernameExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return model.User{}, err
	}

	hash, err := auth.HashPassword(in.Password, d.Cost)
	if err != nil {
		return model.User{}, err
	}
	u, err := d.Store.Create(ctx, model.User{
		Username:     in.Username,
		Email:        in.Email,
		FullName:     in.FullName,
		PasswordHash: hash,
		IsActive:     in.IsActive,
		IsSuperuser:  in.IsSuperuser,
	})
	if err != nil {
		return model.User{}, err
	}
	d.publish(ctx, queue.UserCreated, u)
	return u, nil
}

// BootstrapSuperuser creates the configured default superuser. Running it
// a second time fails with the create-side email conflict.
func (d *Directory) BootstrapSuperuser(ctx context.Context) (model.User, error) {
	return d.Create(ctx, CreateInput{
		Username:    d.Superuser.Username,
		Email:       d.Superuser.Email,
		FullName:    d.Superuser.FullName,
		Password:    d.Superuser.Password,
		IsActive:    true,
		IsSuperuser: true,
	})
}

// Update applies a partial update to the user with the given id. Username
// and email are only touched when supplied and different from the current
// value, re-running the uniqueness check against other records; a
// supplied password is always re-hashed and applied.
func (d *Directory) Update(ctx context.Context, id uint64, in UpdateInput) (model.User, error) {
	u, err := d.Store.GetByID(ctx, id)
	if err != nil {
		return model.User{}, err
	}

	if in.Username != nil && *in.Username != u.Username {
		if other, err := d.Store.GetByUsername(ctx, *in.Username); err == nil && other.ID != id {
			return model.User{}, repository.ErrUsernameExists
		} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return model.User{}, err
		}
		u.Username = *in.Username
	}
	if in.Email != nil && *in.Email != u.Email {
		if other, err := d.Store.GetByEmail(ctx, *in.Email); err == nil && other.ID != id {
			return model.User{}, repository.ErrEmailExists
		} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return model.User{}, err
		}
		u.Email = *in.Email
	}
	if in.FullName != nil && *in.FullName != u.FullName {
		u.FullName = *in.FullName
	}
	if in.Password != nil {
		hash, err := auth.HashPassword(*in.Password, d.Cost)
		if err != nil {
			return model.User{}, err
		}
		u.PasswordHash = hash
	}
	if in.IsActive != nil && *in.IsActive != u.IsActive {
		u.IsActive = *in.IsActive
	}
	if in.IsSuperuser != nil && *in.IsSuperuser != u.IsSuperuser {
		u.IsSuperuser = *in.IsSuperuser
	}

	updated, err := d.Store.Update(ctx, u)
	if err != nil {
		return model.User{}, err
	}
	d.publish(ctx, queue.UserUpdated, updated)
	return updated, nil
}

// Delete removes the user and reports the prior record as a deleted
// projection without its id.
func (d *Directory) Delete(ctx context.Context, id uint64) (model.DeletedUser, error) {
	u, err := d.Store.GetByID(ctx, id)
	if err != nil {
		return model.DeletedUser{}, err
	}
	if err := d.Store.Delete(ctx, id); err != nil {
		return model.DeletedUser{}, err
	}
	d.publish(ctx, queue.UserDeleted, u)
	return model.Deleted(u), nil
}

func (d *Directory) publish(ctx context.Context, kind string, u model.User) {
	if d.Events == nil {
		return
	}
	// Best effort: the publisher logs its own failures.
	_ = d.Events.PublishUserEvent(ctx, queue.NewUserEvent(kind, u))
}
