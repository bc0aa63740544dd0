package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jesuschaires594-droid/proyecto/internal/domain/entities"
	"github.com/jesuschaires594-droid/proyecto/internal/infrastructure/logger"
	"github.com/jesuschaires594-droid/proyecto/internal/ports"
)

// DefaultIndent matches the layout of data files written by earlier versions
const DefaultIndent = 4

// UserRepositoryImpl implements the UserRepository interface on top of a
// single JSON file. Every call reads the whole file and every successful
// mutation rewrites it; nothing is cached between calls.
//
// There is no locking around the read-modify-write sequence, so two
// processes writing the same file can lose updates.
type UserRepositoryImpl struct {
	path   string
	indent string
	logger *logger.Logger
}

// NewUserRepository creates a repository bound to path, creating the file
// with an empty collection if it does not exist yet.
func NewUserRepository(path string, indent int, log *logger.Logger) (ports.UserRepository, error) {
	return newUserRepository(path, indent, log)
}

func newUserRepository(path string, indent int, log *logger.Logger) (*UserRepositoryImpl, error) {
	if path == "" {
		return nil, fmt.Errorf("create user repository: empty path")
	}
	if indent < 0 {
		indent = 0
	}
	if log == nil {
		log = logger.NewNop()
	}

	r := &UserRepositoryImpl{
		path:   path,
		indent: strings.Repeat(" ", indent),
		logger: log.WithComponent("user_repository"),
	}
	if err := r.ensureFile(); err != nil {
		return nil, err
	}
	return r, nil
}

// Path returns the backing file location
func (r *UserRepositoryImpl) Path() string {
	return r.path
}

func (r *UserRepositoryImpl) Create(ctx context.Context, user entities.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()

	users, err := r.load()
	if err != nil {
		return err
	}

	for _, u := range users {
		if u.ID == user.ID {
			return fmt.Errorf("create user %d: %w", user.ID, entities.ErrDuplicateID)
		}
	}

	users = append(users, user)
	err = r.save(users)
	r.logger.LogStorageOperation("create", r.path, time.Since(start), err)
	return err
}

func (r *UserRepositoryImpl) List(ctx context.Context) ([]entities.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.load()
}

func (r *UserRepositoryImpl) Update(ctx context.Context, id int, name, email *string) (entities.User, error) {
	if err := ctx.Err(); err != nil {
		return entities.User{}, err
	}
	start := time.Now()

	users, err := r.load()
	if err != nil {
		return entities.User{}, err
	}

	for i := range users {
		if users[i].ID != id {
			continue
		}
		users[i].ApplyUpdate(name, email)
		err = r.save(users)
		r.logger.LogStorageOperation("update", r.path, time.Since(start), err)
		if err != nil {
			return entities.User{}, err
		}
		return users[i], nil
	}

	return entities.User{}, fmt.Errorf("update user %d: %w", id, entities.ErrUserNotFound)
}

func (r *UserRepositoryImpl) Delete(ctx context.Context, id int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()

	users, err := r.load()
	if err != nil {
		return err
	}

	kept := make([]entities.User, 0, len(users))
	for _, u := range users {
		if u.ID != id {
			kept = append(kept, u)
		}
	}
	if len(kept) == len(users) {
		return fmt.Errorf("delete user %d: %w", id, entities.ErrUserNotFound)
	}

	err = r.save(kept)
	r.logger.LogStorageOperation("delete", r.path, time.Since(start), err)
	return err
}

func (r *UserRepositoryImpl) ensureFile() error {
	_, err := os.Stat(r.path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return &entities.StorageError{Op: "stat", Path: r.path, Err: err}
	}

	if dir := filepath.Dir(r.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &entities.StorageError{Op: "mkdir", Path: dir, Err: err}
		}
	}

	r.logger.Infow("Initializing empty data file", "path", r.path)
	return r.save([]entities.User{})
}

func (r *UserRepositoryImpl) load() ([]entities.User, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := r.ensureFile(); err != nil {
			return nil, err
		}
		return []entities.User{}, nil
	}
	if err != nil {
		return nil, &entities.StorageError{Op: "read", Path: r.path, Err: err}
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, &entities.StorageError{Op: "decode", Path: r.path, Err: errors.New("content is not a JSON array")}
	}

	users, err := decodeUsers(trimmed)
	if err != nil {
		return nil, &entities.StorageError{Op: "decode", Path: r.path, Err: err}
	}
	return users, nil
}

// storedUser mirrors entities.User with pointer fields so missing keys can
// be told apart from zero values.
type storedUser struct {
	ID    *int    `json:"id"`
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// decodeUsers parses a JSON array of complete records with unique ids
func decodeUsers(data []byte) ([]entities.User, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	users := make([]entities.User, 0, len(raw))
	seen := make(map[int]struct{}, len(raw))
	for i, elem := range raw {
		if string(bytes.TrimSpace(elem)) == "null" {
			return nil, fmt.Errorf("record %d is null", i)
		}

		var su storedUser
		if err := json.Unmarshal(elem, &su); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		switch {
		case su.ID == nil:
			return nil, fmt.Errorf("record %d: missing id", i)
		case su.Name == nil:
			return nil, fmt.Errorf("record %d: missing name", i)
		case su.Email == nil:
			return nil, fmt.Errorf("record %d: missing email", i)
		}

		if _, dup := seen[*su.ID]; dup {
			return nil, fmt.Errorf("record %d: id %d appears more than once", i, *su.ID)
		}
		seen[*su.ID] = struct{}{}

		users = append(users, entities.NewUser(*su.ID, *su.Name, *su.Email))
	}
	return users, nil
}

// save writes the full collection to a temporary file next to the target
// and renames it into place.
func (r *UserRepositoryImpl) save(users []entities.User) error {
	data, err := json.MarshalIndent(users, "", r.indent)
	if err != nil {
		return &entities.StorageError{Op: "encode", Path: r.path, Err: err}
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(r.path), filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return &entities.StorageError{Op: "write", Path: r.path, Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &entities.StorageError{Op: "write", Path: r.path, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &entities.StorageError{Op: "sync", Path: r.path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &entities.StorageError{Op: "write", Path: r.path, Err: err}
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return &entities.StorageError{Op: "chmod", Path: r.path, Err: err}
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		os.Remove(tmpName)
		return &entities.StorageError{Op: "rename", Path: r.path, Err: err}
	}
	return nil
}
