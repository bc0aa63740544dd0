package entities

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrDuplicateID        = errors.New("user id already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrInvalidInput       = errors.New("invalid input")
)

// User represents a single user record as persisted in the data file
type User struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewUser builds a user record
func NewUser(id int, name, email string) User {
	return User{ID: id, Name: name, Email: email}
}

// ApplyUpdate replaces name and/or email. Nil or empty values leave the
// field unchanged, so a field can never be set to the empty string here.
func (u *User) ApplyUpdate(name, email *string) {
	if name != nil && *name != "" {
		u.Name = *name
	}
	if email != nil && *email != "" {
		u.Email = *email
	}
}

// StorageError reports a failure to read, decode or write the backing file
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is makes every StorageError match ErrStorageUnavailable
func (e *StorageError) Is(target error) bool {
	return target == ErrStorageUnavailable
}
