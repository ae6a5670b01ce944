package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/user-directory/internal/model"
)

// UserStore is the persistence contract the directory and the auth layer
// work against. The MySQL UserRepo backs production; MemStore backs tests
// and the dev/test environments.
type UserStore interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
	GetByUsername(ctx context.Context, username string) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	// List returns every user in insertion order.
	List(ctx context.Context) ([]model.User, error)
	// Create inserts the record and returns it with the store-assigned id.
	Create(ctx context.Context, u model.User) (model.User, error)
	// Update writes every mutable column of the record identified by u.ID.
	Update(ctx context.Context, u model.User) (model.User, error)
	Delete(ctx context.Context, id uint64) error
}

const userColumns = "id,username,email,full_name,password_hash,is_active,is_superuser,created_at,updated_at"

// UserRepo implements UserStore over MySQL.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

var _ UserStore = (*UserRepo)(nil)

func (r *UserRepo) getBy(ctx context.Context, where string, arg any) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE "+where+" LIMIT 1", arg).
		Scan(&u.ID, &u.Username, &u.Email, &u.FullName, &u.PasswordHash,
			&u.IsActive, &u.IsSuperuser, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.getBy(ctx, "id=?", id)
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	return r.getBy(ctx, "username=?", username)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return r.getBy(ctx, "email=?", email)
}

// List returns all users ordered by id, which matches insertion order for
// an auto-increment key.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.FullName, &u.PasswordHash,
			&u.IsActive, &u.IsSuperuser, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Create inserts the user and returns it with the assigned id. Duplicate
// key violations from the unique indexes are mapped to the conflict
// sentinels so a lost check-then-write race fails the same way as the
// up-front check.
func (r *UserRepo) Create(ctx context.Context, u model.User) (model.User, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username,email,full_name,password_hash,is_active,is_superuser) VALUES (?,?,?,?,?,?)",
		u.Username, u.Email, u.FullName, u.PasswordHash, u.IsActive, u.IsSuperuser)
	if err != nil {
		return model.User{}, dupKeyError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// Update rewrites every mutable column; the caller decides which values
// changed. Returns ErrNotFound when the id does not exist.
func (r *UserRepo) Update(ctx context.Context, u model.User) (model.User, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET username=?,email=?,full_name=?,password_hash=?,is_active=?,is_superuser=? WHERE id=?",
		u.Username, u.Email, u.FullName, u.PasswordHash, u.IsActive, u.IsSuperuser, u.ID)
	if err != nil {
		return model.User{}, dupKeyError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// RowsAffected is also 0 for a no-op write, so confirm the row exists.
		if _, err := r.GetByID(ctx, u.ID); err != nil {
			return model.User{}, err
		}
	}
	return r.GetByID(ctx, u.ID)
}

func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// dupKeyError maps a MySQL 1062 duplicate-entry error onto the matching
// conflict sentinel using the index name embedded in the message.
func dupKeyError(err error) error {
	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "1062") {
		return err
	}
	if strings.Contains(msg, "email") {
		return ErrEmailExists
	}
	return ErrUsernameExists
}
