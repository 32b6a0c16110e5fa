package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/matthewhartstonge/argon2"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/toylink/donations/internal/models"
	"github.com/toylink/donations/pkg/config"
	"github.com/toylink/donations/pkg/tool"
)

const tokenIssuer = "toylink-donations"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrNotConfigured      = errors.New("admin credentials are not configured")
)

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Authenticator issues and checks dashboard tokens.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*LoginResponse, error)
	ParseToken(token string) (adminID string, err error)
}

type Service struct {
	db  *gorm.DB
	cfg config.AdminConfig
	log *zap.SugaredLogger
	now func() time.Time
}

func New(db *gorm.DB, cfg *config.Config, log *zap.SugaredLogger) *Service {
	return &Service{db: db, cfg: cfg.Admin, log: log, now: time.Now}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// EnsureAdmin creates the admin account when none with that email exists.
// It reports whether an account was created.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return false, ErrNotConfigured
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Admin{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	argon := argon2.DefaultConfig()
	hash, err := argon.HashEncoded([]byte(password))
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	a := &models.Admin{
		ID:           tool.GenerateUUIDV7(),
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.db.WithContext(ctx).Create(a).Error; err != nil {
		return false, err
	}
	s.log.Infow("admin_created", "email", email)
	return true, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	if s.cfg.JWTSecret == "" {
		return nil, ErrNotConfigured
	}
	var a models.Admin
	if err := s.db.WithContext(ctx).First(&a, "email = ?", normalizeEmail(email)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	ok, err := argon2.VerifyEncoded([]byte(password), []byte(a.PasswordHash))
	if err != nil || !ok {
		return nil, ErrInvalidCredentials
	}

	ttl := s.cfg.TokenTTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	now := s.now()
	expiresAt := now.Add(ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{
		Subject:   a.ID,
		Issuer:    tokenIssuer,
		IssuedAt:  now.Unix(),
		ExpiresAt: expiresAt.Unix(),
	})
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &LoginResponse{Token: signed, ExpiresAt: expiresAt}, nil
}

func (s *Service) ParseToken(token string) (string, error) {
	if s.cfg.JWTSecret == "" {
		return "", ErrNotConfigured
	}
	claims := &jwt.StandardClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}
	if claims.Issuer != tokenIssuer || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// bootstrap seeds the configured admin on startup; missing credentials only skip it.
func bootstrap(lc fx.Lifecycle, s *Service, log *zap.SugaredLogger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			created, err := s.EnsureAdmin(ctx, s.cfg.Email, s.cfg.Password)
			if errors.Is(err, ErrNotConfigured) {
				log.Infow("admin bootstrap skipped, credentials not configured")
				return nil
			}
			if err != nil {
				return fmt.Errorf("admin bootstrap: %w", err)
			}
			log.Infow("admin bootstrap done", "created", created)
			return nil
		},
	})
}

var Module = fx.Options(
	fx.Provide(
		New,
		func(s *Service) Authenticator { return s },
	),
	fx.Invoke(bootstrap),
)
