package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jesuschaires594-droid/proyecto/internal/domain/entities"
	"github.com/jesuschaires594-droid/proyecto/internal/infrastructure/logger"
	"github.com/jesuschaires594-droid/proyecto/internal/infrastructure/metrics"
	"github.com/jesuschaires594-droid/proyecto/internal/ports"
)

// UserService handles user-related operations
type UserService struct {
	userRepo    ports.UserRepository
	logger      *logger.Logger
	metrics     *metrics.Recorder
	validate    *validator.Validate
	strictEmail bool
	maxLength   int
}

// Option configures a UserService
type Option func(*UserService)

// WithStrictEmail rejects emails that are not syntactically valid addresses
func WithStrictEmail(strict bool) Option {
	return func(s *UserService) { s.strictEmail = strict }
}

// WithMaxFieldLength rejects names and emails longer than n characters.
// Zero or less means no limit.
func WithMaxFieldLength(n int) Option {
	return func(s *UserService) { s.maxLength = n }
}

// WithMetrics records every operation outcome on r
func WithMetrics(r *metrics.Recorder) Option {
	return func(s *UserService) { s.metrics = r }
}

// NewUserService creates a new user service
func NewUserService(userRepo ports.UserRepository, log *logger.Logger, opts ...Option) *UserService {
	if log == nil {
		log = logger.NewNop()
	}
	s := &UserService{
		userRepo: userRepo,
		logger:   log.WithComponent("user_service"),
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ ports.UserService = (*UserService)(nil)

// CreateUser adds a new user record
func (s *UserService) CreateUser(ctx context.Context, req ports.CreateUserRequest) (user entities.User, err error) {
	defer s.observe("create", req.ID, time.Now(), &err)

	if err := s.checkField("name", req.Name); err != nil {
		return entities.User{}, err
	}
	if err := s.checkField("email", req.Email); err != nil {
		return entities.User{}, err
	}
	if err := s.checkEmail(req.Email); err != nil {
		return entities.User{}, err
	}

	user = entities.NewUser(req.ID, req.Name, req.Email)
	if err := s.userRepo.Create(ctx, user); err != nil {
		return entities.User{}, err
	}
	return user, nil
}

// ListUsers returns every user record in stored order
func (s *UserService) ListUsers(ctx context.Context) (users []entities.User, err error) {
	start := time.Now()
	users, err = s.userRepo.List(ctx)
	s.metrics.Observe("list", start, err)
	if err != nil {
		s.logger.WithError(err).Errorw("Failed to list users")
		return nil, err
	}
	s.logger.Debugw("Listed users", "count", len(users))
	return users, nil
}

// UpdateUser replaces the provided fields of an existing user
func (s *UserService) UpdateUser(ctx context.Context, id int, req ports.UpdateUserRequest) (user entities.User, err error) {
	defer s.observe("update", id, time.Now(), &err)

	if req.Name != nil {
		if err := s.checkField("name", *req.Name); err != nil {
			return entities.User{}, err
		}
	}
	if req.Email != nil && *req.Email != "" {
		if err := s.checkField("email", *req.Email); err != nil {
			return entities.User{}, err
		}
		if err := s.checkEmail(*req.Email); err != nil {
			return entities.User{}, err
		}
	}

	return s.userRepo.Update(ctx, id, req.Name, req.Email)
}

// DeleteUser removes a user
func (s *UserService) DeleteUser(ctx context.Context, id int) (err error) {
	defer s.observe("delete", id, time.Now(), &err)

	return s.userRepo.Delete(ctx, id)
}

func (s *UserService) checkField(field, value string) error {
	if s.maxLength <= 0 {
		return nil
	}
	if err := s.validate.Var(value, fmt.Sprintf("max=%d", s.maxLength)); err != nil {
		return invalidInput(field, err)
	}
	return nil
}

func (s *UserService) checkEmail(email string) error {
	if !s.strictEmail {
		return nil
	}
	if err := s.validate.Var(email, "required,email"); err != nil {
		return invalidInput("email", err)
	}
	return nil
}

func (s *UserService) observe(action string, id int, start time.Time, errp *error) {
	err := *errp
	s.metrics.Observe(action, start, err)

	outcome := metrics.Outcome(err)
	switch {
	case err == nil:
		s.logger.LogUserAction(id, action, map[string]interface{}{"outcome": outcome})
	case errors.Is(err, entities.ErrStorageUnavailable):
		s.logger.WithError(err).Errorw("User action failed", "user_id", id, "action", action)
	default:
		s.logger.Debugw("User action rejected", "user_id", id, "action", action, "outcome", outcome)
	}
}

func invalidInput(field string, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if fe.Param() != "" {
			return fmt.Errorf("%w: %s failed %s=%s", entities.ErrInvalidInput, field, fe.Tag(), fe.Param())
		}
		return fmt.Errorf("%w: %s failed %s", entities.ErrInvalidInput, field, fe.Tag())
	}
	return fmt.Errorf("%w: %s: %v", entities.ErrInvalidInput, field, err)
}
