package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/elysian/registration-service/internal/domain/entity"
	repo "github.com/elysian/registration-service/internal/domain/repository"
	"github.com/elysian/registration-service/pkg/helpers"
	"github.com/elysian/registration-service/pkg/mailer"
)

const (
	DefaultWelcomeMessage = "Welcome to our service!"
	DefaultWelcomeTimeout = 2 * time.Second

	indexTimeout   = 3 * time.Second
	publishTimeout = 3 * time.Second
)

// WelcomeMessenger produces a personalized greeting for a new user.
type WelcomeMessenger interface {
	Generate(ctx context.Context, name string) (string, error)
}

// JobPublisher puts a JSON job on the email queue.
type JobPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// UserIndexer mirrors user summaries into the search index.
type UserIndexer interface {
	Index(ctx context.Context, u *entity.User) error
}

type RegisterInput struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Name     string `json:"name" validate:"required,personname"`
	Password string `json:"password" validate:"required,pwd"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UserSummary struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type RegisterResult struct {
	Token          string
	ExpiresAt      time.Time
	User           UserSummary
	WelcomeMessage string
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      UserSummary
}

// Identity is what a verified token proves about its bearer.
type Identity struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// AuthService registers users, logs them in and authorizes bearer tokens.
// Store, JWT and Logger are required; the rest are optional side steps.
type AuthService struct {
	Store  *CredentialStore
	JWT    *helpers.JWTManager
	Logger *logrus.Logger

	Welcome        WelcomeMessenger
	WelcomeTimeout time.Duration
	DefaultWelcome string

	Mail        JobPublisher
	MailEnabled bool
	MailData    map[string]any // app/company fields merged into every welcome email

	Indexer UserIndexer
}

func NewAuthService(store *CredentialStore, jwt *helpers.JWTManager, logger *logrus.Logger) *AuthService {
	return &AuthService{
		Store:          store,
		JWT:            jwt,
		Logger:         logger,
		WelcomeTimeout: DefaultWelcomeTimeout,
		DefaultWelcome: DefaultWelcomeMessage,
	}
}

func summaryOf(u *entity.User) UserSummary {
	return UserSummary{ID: u.ID, Email: u.Email, Name: u.Name}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := validate(in); err != nil {
		return nil, err
	}

	u, err := s.Store.Create(ctx, in.Email, in.Name, in.Password)
	if err != nil {
		if errors.Is(err, repo.ErrAlreadyExists) {
			statRegistrationConflicts.Add(1)
			return nil, ErrConflict
		}
		helpers.LogError(s.Logger, "register: create user failed", err, logrus.Fields{"email": in.Email})
		return nil, err
	}

	token, claims, err := s.JWT.Issue(u.ID, u.Email)
	if err != nil {
		helpers.LogError(s.Logger, "register: issue token failed", err, logrus.Fields{"user_id": u.ID})
		return nil, err
	}
	statRegistrations.Add(1)

	msg := s.welcomeMessage(ctx, u)
	s.indexUser(ctx, u)
	s.enqueueWelcomeEmail(ctx, u, msg)

	helpers.LogInfo(s.Logger, "user registered", logrus.Fields{"user_id": u.ID})
	return &RegisterResult{
		Token:          token,
		ExpiresAt:      claims.ExpiresAt.Time,
		User:           summaryOf(u),
		WelcomeMessage: msg,
	}, nil
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := validate(in); err != nil {
		return nil, err
	}

	u, err := s.Store.FindByEmail(ctx, in.Email)
	if errors.Is(err, repo.ErrNotFound) {
		s.Store.VerifyAbsent(in.Password)
		statLoginFailures.Add(1)
		return nil, ErrUnauthorized
	}
	if err != nil {
		helpers.LogError(s.Logger, "login: find user failed", err, nil)
		return nil, err
	}
	if !s.Store.Hasher.Verify(in.Password, u.Credential) {
		statLoginFailures.Add(1)
		return nil, ErrUnauthorized
	}

	token, claims, err := s.JWT.Issue(u.ID, u.Email)
	if err != nil {
		helpers.LogError(s.Logger, "login: issue token failed", err, logrus.Fields{"user_id": u.ID})
		return nil, err
	}
	statLogins.Add(1)
	return &LoginResult{Token: token, ExpiresAt: claims.ExpiresAt.Time, User: summaryOf(u)}, nil
}

// Authorize checks the token cryptographically. The store is never consulted.
func (s *AuthService) Authorize(_ context.Context, token string) (*Identity, error) {
	claims, err := s.JWT.Verify(token)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).Debug("token rejected")
		}
		return nil, ErrUnauthorized
	}
	return &Identity{UserID: claims.UserID(), Email: claims.Email}, nil
}

// Profile loads the stored record for an authorized user.
func (s *AuthService) Profile(ctx context.Context, userID string) (*entity.User, error) {
	return s.Store.FindByID(ctx, userID)
}

// welcomeMessage makes at most one collaborator call and never fails.
func (s *AuthService) welcomeMessage(ctx context.Context, u *entity.User) string {
	def := s.DefaultWelcome
	if def == "" {
		def = DefaultWelcomeMessage
	}
	if s.Welcome == nil {
		return def
	}
	timeout := s.WelcomeTimeout
	if timeout <= 0 {
		timeout = DefaultWelcomeTimeout
	}
	c, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	msg, err := s.Welcome.Generate(c, u.Name)
	if err != nil || strings.TrimSpace(msg) == "" {
		statWelcomeFallbacks.Add(1)
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("welcome message unavailable, using default")
		}
		return def
	}
	return msg
}

func (s *AuthService) indexUser(ctx context.Context, u *entity.User) {
	if s.Indexer == nil {
		return
	}
	c, cancel := context.WithTimeout(context.WithoutCancel(ctx), indexTimeout)
	defer cancel()
	if err := s.Indexer.Index(c, u); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("es index failed")
	}
}

func (s *AuthService) enqueueWelcomeEmail(ctx context.Context, u *entity.User, msg string) {
	if !s.MailEnabled || s.Mail == nil {
		return
	}
	data := make(map[string]any, len(s.MailData)+3)
	for k, v := range s.MailData {
		data[k] = v
	}
	data["Name"] = u.Name
	data["Email"] = u.Email
	data["WelcomeMessage"] = msg

	job := mailer.EmailJob{To: u.Email, Template: mailer.TemplateWelcome, Data: data}
	c, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.Mail.PublishJSON(c, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("enqueue welcome email failed")
	}
}
