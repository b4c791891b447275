package sqlxrepos

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/malipo/core/user"
)

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

type userRow struct {
	ID           int            `db:"id"`
	Name         string         `db:"name"`
	Username     string         `db:"username"`
	Email        string         `db:"email"`
	IsActive     bool           `db:"is_active"`
	Roles        pq.StringArray `db:"roles"`
	PasswordHash []byte         `db:"password_hash"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
	LastLogin    sql.NullTime   `db:"last_login"`
}

func (row userRow) toUser() user.User {
	usr := user.User{
		ID:           row.ID,
		Name:         row.Name,
		Username:     row.Username,
		Email:        row.Email,
		IsActive:     row.IsActive,
		Roles:        row.Roles,
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
	if row.LastLogin.Valid {
		usr.LastLogin = row.LastLogin.Time
	}
	return usr
}

func (repo *userRepository) CheckUsernameUniqueness(username, email string, excludedUsers ...user.User) error {
	excludedIDs := make(pq.Int64Array, 0, len(excludedUsers))
	for _, usr := range excludedUsers {
		excludedIDs = append(excludedIDs, int64(usr.ID))
	}

	var row userRow
	err := repo.db.Get(&row, `
		SELECT username, email FROM app_user
		WHERE (username = $1 OR (email <> '' AND email = $2)) AND NOT (id = ANY($3))
		LIMIT 1`,
		username, email, excludedIDs,
	)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "checking username uniqueness")
	}
	if row.Username == username {
		return user.ErrUsernameExists
	}
	return user.ErrEmailExists
}

func (repo *userRepository) CreateUser(usr user.User) (user.User, error) {
	err := repo.db.QueryRow(`
		INSERT INTO app_user (name, username, email, is_active, roles, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		usr.Name, usr.Username, usr.Email, usr.IsActive, pq.StringArray(usr.Roles),
		usr.PasswordHash, usr.CreatedAt, usr.UpdatedAt,
	).Scan(&usr.ID)
	if err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo *userRepository) QueryAllUsers() ([]user.User, error) {
	var rows []userRow
	if err := repo.db.Select(&rows, "SELECT * FROM app_user ORDER BY id"); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toUser())
	}
	return users, nil
}

func (repo *userRepository) GetUserByID(id int) (user.User, error) {
	var row userRow
	err := repo.db.Get(&row, "SELECT * FROM app_user WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return user.User{}, user.ErrNotFound
	}
	if err != nil {
		return user.User{}, errors.Wrap(err, "querying user by ID")
	}
	return row.toUser(), nil
}

func (repo *userRepository) GetUserByUsernameOrEmail(username string) (user.User, error) {
	var row userRow
	err := repo.db.Get(&row, `
		SELECT * FROM app_user
		WHERE username = $1 OR (email <> '' AND email = $1)
		LIMIT 1`,
		username,
	)
	if err == sql.ErrNoRows {
		return user.User{}, user.ErrNotFound
	}
	if err != nil {
		return user.User{}, errors.Wrap(err, "querying user by username or email")
	}
	return row.toUser(), nil
}

func (repo *userRepository) UpdateUser(usr user.User, isActive *bool) (user.User, error) {
	orig, err := repo.GetUserByID(usr.ID)
	if err != nil {
		return user.User{}, err
	}

	if usr.Name == "" {
		usr.Name = orig.Name
	}
	if usr.Username == "" {
		usr.Username = orig.Username
	}
	if usr.Email == "" {
		usr.Email = orig.Email
	}
	if usr.Roles == nil {
		usr.Roles = orig.Roles
	}
	if usr.PasswordHash == nil {
		usr.PasswordHash = orig.PasswordHash
	}
	if usr.LastLogin.IsZero() {
		usr.LastLogin = orig.LastLogin
	}
	if usr.UpdatedAt.IsZero() {
		usr.UpdatedAt = orig.UpdatedAt
	}
	usr.IsActive = orig.IsActive
	if isActive != nil {
		usr.IsActive = *isActive
	}

	var lastLogin sql.NullTime
	if !usr.LastLogin.IsZero() {
		lastLogin = sql.NullTime{Time: usr.LastLogin, Valid: true}
	}
	_, err = repo.db.Exec(`
		UPDATE app_user
		SET name = $1, username = $2, email = $3, is_active = $4, roles = $5,
			password_hash = $6, updated_at = $7, last_login = $8
		WHERE id = $9`,
		usr.Name, usr.Username, usr.Email, usr.IsActive, pq.StringArray(usr.Roles),
		usr.PasswordHash, usr.UpdatedAt, lastLogin, usr.ID,
	)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	return usr, nil
}
