package users

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/ubademy/users-service/internal/auth"
	"github.com/ubademy/users-service/internal/metrics"
	"github.com/ubademy/users-service/internal/notify"
	"github.com/ubademy/users-service/internal/shared"
	"github.com/ubademy/users-service/internal/token"
)

var emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

const (
	msgBadCredentials = "Sorry, email or password incorrect."
	msgUserBlocked    = "The user is blocked."
	msgBadGoogleToken = "Invalid user google token."

	sideEffectTimeout = 15 * time.Second
)

// MetricPublisher enqueues one usage event.
type MetricPublisher interface {
	Publish(ctx context.Context, op metrics.Operation) error
}

// SubscriberRegistrar registers a new account with the subscriptions service.
type SubscriberRegistrar interface {
	CreateSubscriber(ctx context.Context, userID string) error
}

// Service implements the account business rules.
type Service struct {
	logger      *slog.Logger
	repo        Repository
	codec       *token.Codec
	tokenTTL    time.Duration
	verifier    auth.IdentityVerifier
	publisher   MetricPublisher
	subscribers SubscriberRegistrar
	sender      notify.Sender
}

// NewService wires the service with its collaborators.
func NewService(
	logger *slog.Logger,
	repo Repository,
	codec *token.Codec,
	tokenTTL time.Duration,
	verifier auth.IdentityVerifier,
	publisher MetricPublisher,
	subscribers SubscriberRegistrar,
	sender notify.Sender,
) *Service {
	return &Service{
		logger:      logger,
		repo:        repo,
		codec:       codec,
		tokenTTL:    tokenTTL,
		verifier:    verifier,
		publisher:   publisher,
		subscribers: subscribers,
		sender:      sender,
	}
}

// emitMetric dispatches a usage event without blocking the request. The
// publish runs on its own bounded context; failure is logged once and dropped.
func (s *Service) emitMetric(op metrics.Operation) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()
		if err := s.publisher.Publish(ctx, op); err != nil {
			s.logger.Error("publish metric failed",
				slog.String("operation", string(op)),
				slog.Any("error", err))
		}
	}()
}

// registerSubscriber registers the account with the subscriptions service,
// best-effort.
func (s *Service) registerSubscriber(userID string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()
		if err := s.subscribers.CreateSubscriber(ctx, userID); err != nil {
			s.logger.Error("create subscriber failed",
				slog.String("user_id", userID),
				slog.Any("error", err))
		}
	}()
}

// Login authenticates email/password credentials within one role scope and
// mints a token. Unknown email and wrong password produce the same message on
// different status codes, matching the existing clients.
func (s *Service) Login(ctx context.Context, email, password string, adminScope bool) (*User, string, error) {
	scope := ScopeUser
	if adminScope {
		scope = ScopeAdmin
	}
	user, err := s.repo.FindByEmail(ctx, email, scope)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, "", shared.E(shared.ErrNotFound, msgBadCredentials)
		}
		return nil, "", err
	}
	if !auth.CheckPassword(password, user.Password) {
		return nil, "", shared.E(shared.ErrUnauthorized, msgBadCredentials)
	}
	if user.Blocked {
		return nil, "", shared.E(shared.ErrUnauthorized, msgUserBlocked)
	}
	minted, err := s.codec.Mint(user.Email, s.tokenTTL)
	if err != nil {
		return nil, "", err
	}
	s.emitMetric(metrics.OpUserLogin)
	return user, minted, nil
}

// LoginGoogle verifies a federated assertion and logs the account in,
// provisioning it on first sight.
func (s *Service) LoginGoogle(ctx context.Context, assertion string) (*User, string, error) {
	identity, err := s.verifier.Verify(ctx, assertion)
	if err != nil {
		s.logger.Warn("google token rejected", slog.Any("error", err))
		return nil, "", shared.E(shared.ErrUnauthorized, msgBadGoogleToken)
	}

	user, err := s.repo.FindByEmail(ctx, identity.Email, ScopeUser)
	switch {
	case err == nil:
		if user.Blocked {
			return nil, "", shared.E(shared.ErrUnauthorized, msgUserBlocked)
		}
		s.emitMetric(metrics.OpUserFederatedLogin)
	case errors.Is(err, shared.ErrNotFound):
		user = &User{
			Email: identity.Email,
			Google: &GoogleData{
				DisplayName: identity.DisplayName,
				UserID:      identity.Subject,
				Picture:     identity.Picture,
			},
		}
		if err := s.repo.Insert(ctx, user); err != nil {
			return nil, "", err
		}
		s.emitMetric(metrics.OpUserFederatedRegister)
		s.registerSubscriber(user.ID.Hex())
	default:
		return nil, "", err
	}

	minted, err := s.codec.Mint(user.Email, s.tokenTTL)
	if err != nil {
		return nil, "", err
	}
	return user, minted, nil
}

// RegisterInput carries the registration fields.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

func validateRegistration(in RegisterInput) error {
	if !emailPattern.MatchString(strings.ToLower(in.Email)) {
		return shared.E(shared.ErrValidation, "Invalid email address.")
	}
	if strings.TrimSpace(in.FirstName) == "" {
		return shared.E(shared.ErrValidation, "Invalid empty First Name.")
	}
	if strings.TrimSpace(in.LastName) == "" {
		return shared.E(shared.ErrValidation, "Invalid empty Last Name.")
	}
	if strings.TrimSpace(in.Password) == "" {
		return shared.E(shared.ErrValidation, "Password cannot be empty.")
	}
	return nil
}

// Register validates the input, persists the account with the given roles and
// mints a token. Registration side effects fire for non-admin roles only.
func (s *Service) Register(ctx context.Context, in RegisterInput, roles []string) (*User, string, error) {
	if err := validateRegistration(in); err != nil {
		return nil, "", err
	}
	if _, err := s.repo.FindByEmail(ctx, in.Email, ScopeAny); err == nil {
		return nil, "", shared.E(shared.ErrDuplicate, "Sorry, email "+in.Email+" is already registered.")
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, "", err
	}

	hashed, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, "", err
	}
	user := &User{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Password:  hashed,
		Roles:     roles,
	}
	if err := s.repo.Insert(ctx, user); err != nil {
		if errors.Is(err, shared.ErrDuplicate) {
			// Lost the race against a concurrent registration; the unique
			// index caught it.
			return nil, "", shared.E(shared.ErrDuplicate, "Sorry, email "+in.Email+" is already registered.")
		}
		return nil, "", err
	}

	minted, err := s.codec.Mint(user.Email, s.tokenTTL)
	if err != nil {
		return nil, "", err
	}
	if !user.IsAdmin() {
		s.emitMetric(metrics.OpUserRegister)
		s.registerSubscriber(user.ID.Hex())
	}
	return user, minted, nil
}

// List returns a page of accounts plus the total count. appOnly restricts the
// listing to accounts without the admin role.
func (s *Service) List(ctx context.Context, offset, limit int64, appOnly bool) ([]User, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, offset, limit, appOnly)
}

// GetBatch fetches the accounts matching the given ids.
func (s *Service) GetBatch(ctx context.Context, ids []string) ([]User, error) {
	return s.repo.FindByIDs(ctx, ids)
}

// Get fetches one account by id.
func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.E(shared.ErrNotFound, "There is no user with id: "+id)
		}
		return nil, err
	}
	return user, nil
}

// BlockedStatus reports the blocked flag for the account behind the token
// subject.
func (s *Service) BlockedStatus(ctx context.Context, email string) (bool, error) {
	user, err := s.repo.FindByEmail(ctx, email, ScopeAny)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return false, shared.E(shared.ErrNotFound, "There is no user with email: "+email)
		}
		return false, err
	}
	return user.Blocked, nil
}

// UpdateInput carries the mutable profile fields; nil means "leave as is".
type UpdateInput struct {
	FirstName *string
	LastName  *string
	Email     *string
	PlaceID   *string
	Interests []string
	FCMToken  *string
}

// Update applies a partial profile update. At least one recognized field must
// be present; otherwise nothing is written.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) error {
	user, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	changed := false
	if in.FirstName != nil {
		user.FirstName = *in.FirstName
		changed = true
	}
	if in.LastName != nil {
		user.LastName = *in.LastName
		changed = true
	}
	if in.Email != nil {
		user.Email = *in.Email
		changed = true
	}
	if in.PlaceID != nil {
		user.PlaceID = *in.PlaceID
		changed = true
	}
	if in.Interests != nil {
		user.Interests = in.Interests
		changed = true
	}
	if in.FCMToken != nil {
		user.FCMToken = *in.FCMToken
		changed = true
	}
	if !changed {
		return shared.E(shared.ErrValidation, "There is nothing to update")
	}
	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, shared.ErrDuplicate) {
			return shared.E(shared.ErrDuplicate, "Sorry, email "+user.Email+" is already registered.")
		}
		return err
	}
	return nil
}

// SetBlocked blocks or unblocks an account. Asking for the state the account
// is already in fails without mutating anything.
func (s *Service) SetBlocked(ctx context.Context, id string, blocked bool) error {
	user, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if user.Blocked == blocked {
		if blocked {
			return shared.E(shared.ErrValidation, "The user is already blocked.")
		}
		return shared.E(shared.ErrValidation, "The user is not blocked.")
	}
	user.Blocked = blocked
	if err := s.repo.Update(ctx, user); err != nil {
		return err
	}
	if blocked {
		s.emitMetric(metrics.OpUserBlocked)
	} else {
		s.emitMetric(metrics.OpUserUnblocked)
	}
	return nil
}

// NotifyInput carries a push notification between two users.
type NotifyInput struct {
	FromUserID string
	ToUserID   string
	Title      string
	Body       string
}

// Notify sends a push notification from one user to another. The receiver
// must have a registered device token.
func (s *Service) Notify(ctx context.Context, in NotifyInput) error {
	if _, err := s.Get(ctx, in.FromUserID); err != nil {
		return err
	}
	receiver, err := s.Get(ctx, in.ToUserID)
	if err != nil {
		return err
	}
	if receiver.FCMToken == "" {
		return shared.E(shared.ErrNotFound, "User "+in.ToUserID+" has no registered device.")
	}
	return s.sender.Send(ctx, receiver.FCMToken, in.Title, in.Body)
}
