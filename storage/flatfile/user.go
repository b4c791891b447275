package flatfile

import (
	"encoding/json"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/malipo/core/user"
)

// userFile is the on-disk layout of the users document.
type userFile struct {
	NextID int       `json:"next_id"`
	Users  []userRow `json:"users"`
}

// userRow carries the password hash, which user.User never serializes.
type userRow struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	IsActive     bool      `json:"is_active"`
	Roles        []string  `json:"roles"`
	PasswordHash []byte    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	LastLogin    time.Time `json:"last_login"`
}

func newUserRow(usr user.User) userRow {
	return userRow{
		ID:           usr.ID,
		Name:         usr.Name,
		Username:     usr.Username,
		Email:        usr.Email,
		IsActive:     usr.IsActive,
		Roles:        usr.Roles,
		PasswordHash: usr.PasswordHash,
		CreatedAt:    usr.CreatedAt,
		UpdatedAt:    usr.UpdatedAt,
		LastLogin:    usr.LastLogin,
	}
}

func (row userRow) user() user.User {
	return user.User{
		ID:           row.ID,
		Name:         row.Name,
		Username:     row.Username,
		Email:        row.Email,
		IsActive:     row.IsActive,
		Roles:        row.Roles,
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
		LastLogin:    row.LastLogin,
	}
}

type userRepository struct {
	store *Store
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(store *Store) user.Repository {
	return &userRepository{store: store}
}

func (repo *userRepository) load() (userFile, error) {
	data, err := os.ReadFile(repo.store.usersPath)
	if err != nil {
		if os.IsNotExist(err) {
			return userFile{}, nil
		}
		return userFile{}, errors.Wrap(err, "reading users file")
	}

	var uf userFile
	if len(data) == 0 {
		return uf, nil
	}
	if err = json.Unmarshal(data, &uf); err != nil {
		return userFile{}, errors.Wrap(err, "parsing users file")
	}
	return uf, nil
}

func (repo *userRepository) save(uf userFile) error {
	data, err := json.MarshalIndent(uf, "", "    ")
	if err != nil {
		return errors.Wrap(err, "encoding users")
	}

	// write to a temp file then rename so a crash cannot truncate the store
	tmp := repo.store.usersPath + ".tmp"
	if err = os.WriteFile(tmp, data, 0o600); err != nil {
		return errors.Wrap(err, "writing users file")
	}
	if err = os.Rename(tmp, repo.store.usersPath); err != nil {
		return errors.Wrap(err, "replacing users file")
	}
	return nil
}

func (repo *userRepository) CheckUsernameUniqueness(username, email string, excludedUsers ...user.User) error {
	repo.store.userMu.Lock()
	defer repo.store.userMu.Unlock()

	uf, err := repo.load()
	if err != nil {
		return err
	}
	for _, row := range uf.Users {
		if isExcluded(row, excludedUsers) {
			continue
		}
		if row.Username == username {
			return user.ErrUsernameExists
		}
		if email != "" && row.Email == email {
			return user.ErrEmailExists
		}
	}
	return nil
}

func isExcluded(row userRow, excluded []user.User) bool {
	for _, ex := range excluded {
		if row.ID == ex.ID {
			return true
		}
	}
	return false
}

func (repo *userRepository) CreateUser(usr user.User) (user.User, error) {
	repo.store.userMu.Lock()
	defer repo.store.userMu.Unlock()

	uf, err := repo.load()
	if err != nil {
		return user.User{}, err
	}
	uf.NextID++
	usr.ID = uf.NextID
	uf.Users = append(uf.Users, newUserRow(usr))

	if err = repo.save(uf); err != nil {
		return user.User{}, err
	}
	return usr, nil
}

func (repo *userRepository) QueryAllUsers() ([]user.User, error) {
	repo.store.userMu.Lock()
	defer repo.store.userMu.Unlock()

	uf, err := repo.load()
	if err != nil {
		return nil, err
	}
	users := make([]user.User, 0, len(uf.Users))
	for _, row := range uf.Users {
		users = append(users, row.user())
	}
	return users, nil
}

func (repo *userRepository) GetUserByID(id int) (user.User, error) {
	repo.store.userMu.Lock()
	defer repo.store.userMu.Unlock()

	uf, err := repo.load()
	if err != nil {
		return user.User{}, err
	}
	for _, row := range uf.Users {
		if row.ID == id {
			return row.user(), nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByUsernameOrEmail(username string) (user.User, error) {
	repo.store.userMu.Lock()
	defer repo.store.userMu.Unlock()

	uf, err := repo.load()
	if err != nil {
		return user.User{}, err
	}
	for _, row := range uf.Users {
		if (row.Username == username) || (row.Email == username) {
			return row.user(), nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpdateUser(usr user.User, isActive *bool) (user.User, error) {
	repo.store.userMu.Lock()
	defer repo.store.userMu.Unlock()

	uf, err := repo.load()
	if err != nil {
		return user.User{}, err
	}
	for i := range uf.Users {
		row := &uf.Users[i]
		if row.ID != usr.ID {
			continue
		}
		if usr.Name != "" {
			row.Name = usr.Name
		}
		if usr.Username != "" {
			row.Username = usr.Username
		}
		if usr.Email != "" {
			row.Email = usr.Email
		}
		if usr.Roles != nil {
			row.Roles = usr.Roles
		}
		if usr.PasswordHash != nil {
			row.PasswordHash = usr.PasswordHash
		}
		if !usr.LastLogin.IsZero() {
			row.LastLogin = usr.LastLogin
		}
		if isActive != nil {
			row.IsActive = *isActive
		}
		row.UpdatedAt = usr.UpdatedAt

		if err = repo.save(uf); err != nil {
			return user.User{}, err
		}
		return row.user(), nil
	}
	return user.User{}, user.ErrNotFound
}
