// Package menu implements the interactive text menu over a UserService.
package menu

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/jesuschaires594-droid/proyecto/internal/domain/entities"
	"github.com/jesuschaires594-droid/proyecto/internal/infrastructure/logger"
	"github.com/jesuschaires594-droid/proyecto/internal/ports"
)

const (
	optionCreate = "1"
	optionList   = "2"
	optionUpdate = "3"
	optionDelete = "4"
	optionExit   = "5"
)

// Menu reads choices from in and writes prompts and results to out
type Menu struct {
	svc    ports.UserService
	in     *bufio.Scanner
	out    io.Writer
	logger *logger.Logger

	title   *color.Color
	success *color.Color
	warn    *color.Color
	failure *color.Color
}

// New creates a menu. Colors are only emitted when useColor is true.
func New(svc ports.UserService, in io.Reader, out io.Writer, log *logger.Logger, useColor bool) *Menu {
	if log == nil {
		log = logger.NewNop()
	}
	m := &Menu{
		svc:     svc,
		in:      bufio.NewScanner(in),
		out:     out,
		logger:  log.WithComponent("menu"),
		title:   color.New(color.FgCyan, color.Bold),
		success: color.New(color.FgGreen),
		warn:    color.New(color.FgYellow),
		failure: color.New(color.FgRed),
	}
	for _, c := range []*color.Color{m.title, m.success, m.warn, m.failure} {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return m
}

// Run loops until the exit option is chosen, input ends or ctx is done.
// Only input read failures are returned; operation errors are reported
// to the user and the loop continues.
func (m *Menu) Run(ctx context.Context) error {
	m.logger.Debugw("Menu session started")
	defer m.logger.Debugw("Menu session finished")

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		m.printMenu()
		choice, err := m.prompt("Choose an option: ")
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(m.out)
			return nil
		}
		if err != nil {
			return err
		}

		switch strings.TrimSpace(choice) {
		case optionCreate:
			err = m.create(ctx)
		case optionList:
			err = m.list(ctx)
		case optionUpdate:
			err = m.update(ctx)
		case optionDelete:
			err = m.delete(ctx)
		case optionExit:
			fmt.Fprintln(m.out, "Exiting.")
			return nil
		default:
			m.warn.Fprintln(m.out, "Invalid option.")
		}

		if errors.Is(err, io.EOF) {
			fmt.Fprintln(m.out)
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (m *Menu) printMenu() {
	fmt.Fprintln(m.out)
	m.title.Fprintln(m.out, "--- CRUD MENU ---")
	fmt.Fprintln(m.out, "1. Create user")
	fmt.Fprintln(m.out, "2. List users")
	fmt.Fprintln(m.out, "3. Update user")
	fmt.Fprintln(m.out, "4. Delete user")
	fmt.Fprintln(m.out, "5. Exit")
}

func (m *Menu) create(ctx context.Context) error {
	rawID, err := m.prompt("ID: ")
	if err != nil {
		return err
	}
	id, ok := parseID(rawID)
	if !ok {
		m.warn.Fprintln(m.out, "ID must be numeric.")
		return nil
	}

	name, err := m.prompt("Name: ")
	if err != nil {
		return err
	}
	email, err := m.prompt("Email: ")
	if err != nil {
		return err
	}

	user, err := m.svc.CreateUser(ctx, ports.CreateUserRequest{ID: id, Name: name, Email: email})
	switch {
	case err == nil:
		m.success.Fprintf(m.out, "User '%s' created.\n", user.Name)
	case errors.Is(err, entities.ErrDuplicateID):
		m.warn.Fprintf(m.out, "A user with ID %d already exists.\n", id)
	default:
		m.reportError(err)
	}
	return nil
}

func (m *Menu) list(ctx context.Context) error {
	users, err := m.svc.ListUsers(ctx)
	if err != nil {
		m.reportError(err)
		return nil
	}
	if len(users) == 0 {
		fmt.Fprintln(m.out, "No users.")
		return nil
	}
	for _, u := range users {
		fmt.Fprintf(m.out, "%d | %s | %s\n", u.ID, u.Name, u.Email)
	}
	return nil
}

func (m *Menu) update(ctx context.Context) error {
	rawID, err := m.prompt("ID of the user to update: ")
	if err != nil {
		return err
	}
	id, ok := parseID(rawID)
	if !ok {
		m.warn.Fprintln(m.out, "Invalid ID.")
		return nil
	}

	name, err := m.prompt("New name (Enter to skip): ")
	if err != nil {
		return err
	}
	email, err := m.prompt("New email (Enter to skip): ")
	if err != nil {
		return err
	}

	_, err = m.svc.UpdateUser(ctx, id, ports.UpdateUserRequest{Name: optional(name), Email: optional(email)})
	switch {
	case err == nil:
		m.success.Fprintf(m.out, "User %d updated.\n", id)
	case errors.Is(err, entities.ErrUserNotFound):
		m.warn.Fprintf(m.out, "User with ID %d not found.\n", id)
	default:
		m.reportError(err)
	}
	return nil
}

func (m *Menu) delete(ctx context.Context) error {
	rawID, err := m.prompt("ID of the user to delete: ")
	if err != nil {
		return err
	}

	id, ok := parseID(rawID)
	if !ok {
		m.warn.Fprintln(m.out, "Invalid ID.")
		return nil
	}

	err = m.svc.DeleteUser(ctx, id)
	switch {
	case err == nil:
		m.success.Fprintf(m.out, "User %d deleted.\n", id)
	case errors.Is(err, entities.ErrUserNotFound):
		m.warn.Fprintf(m.out, "User with ID %d not found.\n", id)
	default:
		m.reportError(err)
	}
	return nil
}

func (m *Menu) reportError(err error) {
	switch {
	case errors.Is(err, entities.ErrInvalidInput):
		m.warn.Fprintf(m.out, "Invalid input: %v\n", err)
	case errors.Is(err, entities.ErrStorageUnavailable):
		m.failure.Fprintf(m.out, "Storage unavailable: %v\n", err)
	default:
		m.failure.Fprintf(m.out, "Error: %v\n", err)
	}
}

// prompt writes label and reads one line, without the line terminator
func (m *Menu) prompt(label string) (string, error) {
	fmt.Fprint(m.out, label)
	if !m.in.Scan() {
		if err := m.in.Err(); err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
		return "", io.EOF
	}
	return strings.TrimRight(m.in.Text(), "\r"), nil
}

func parseID(raw string) (int, bool) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	return id, true
}

// optional maps blank input to "not provided"
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
