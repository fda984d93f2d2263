package storage

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"
)

const selectUsers = `select id, username, password_hash, name, email, bio, avatar, created_at from users`

// uniqueUserErr maps unique violations on users table to exported errors
func uniqueUserErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		switch pgErr.ConstraintName {
		case "users_username_key":
			return ErrUserExists
		case "users_email_key":
			return ErrEmailExists
		}
	}
	return err
}

func scanUser(row pgx.Row) (User, error) {
	var (
		u          User
		email, bio pgtype.Text
	)
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Name, &email, &bio, &u.Avatar, &u.CreatedAt)
	if err != nil {
		return User{}, err
	}
	u.Email = textValue(email)
	u.Bio = textValue(bio)
	return u, nil
}

// CreateUser creates user and returns its id.
// Username is stored lowercased; empty email is stored as NULL so it never collides.
func (s *Store) CreateUser(ctx context.Context, u NewUser) (int64, error) {
	username := strings.ToLower(u.Username)
	s.logger.Debugf("Creating user (%s)", username)

	var id int64
	sql := "insert into users (username, password_hash, name, email) values ($1, $2, $3, $4) returning id"
	err := s.db.QueryRow(ctx, sql, username, u.PasswordHash, u.Name, nullText(u.Email)).Scan(&id)
	if err != nil {
		return 0, uniqueUserErr(err)
	}

	s.logger.Debugf("Created user (%s) with id %d", username, id)

	return id, nil
}

// UserByID returns user with provided id or ErrUserNotExist
func (s *Store) UserByID(ctx context.Context, id int64) (User, error) {
	u, err := scanUser(s.db.QueryRow(ctx, selectUsers+" where id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotExist
		}
		return User{}, err
	}
	return u, nil
}

// UserByUsername looks user up by case-folded username
func (s *Store) UserByUsername(ctx context.Context, username string) (User, error) {
	u, err := scanUser(s.db.QueryRow(ctx, selectUsers+" where username = $1", strings.ToLower(username)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotExist
		}
		return User{}, err
	}
	return u, nil
}

// UpdateUser overwrites profile fields of user with u.ID
func (s *Store) UpdateUser(ctx context.Context, u User) error {
	username := strings.ToLower(u.Username)
	s.logger.Debugf("Updating user (id: %d)", u.ID)

	avatar := u.Avatar
	if avatar == "" {
		avatar = "avatar.svg"
	}

	sql := `update users
			   set username = $2,
				   name = $3,
				   email = $4,
				   bio = $5,
				   avatar = $6
			 where id = $1`
	tag, err := s.db.Exec(ctx, sql, u.ID, username, u.Name, nullText(u.Email), nullText(u.Bio), avatar)
	if err != nil {
		return uniqueUserErr(err)
	}

	if tag.RowsAffected() == 0 {
		return ErrUserNotExist
	}

	return nil
}
