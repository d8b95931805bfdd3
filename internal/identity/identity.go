// Package identity is the gateway to authentication: credential sign-in,
// sign-out, re-authentication and password change, plus the session tokens
// carried as cookies. Access is a short-lived JWT; refresh tokens rotate and
// are persisted so they can be revoked.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/resellhub/storefront/internal/accounts"
	"github.com/resellhub/storefront/internal/fault"
	"github.com/resellhub/storefront/internal/hash"
	"github.com/resellhub/storefront/internal/logging"
	"github.com/resellhub/storefront/internal/models"
)

const (
	AccessTTL  = 15 * time.Minute
	RefreshTTL = 7 * 24 * time.Hour
)

type Claims struct {
	Role  models.Role `json:"role"`
	Email string      `json:"email"`
	jwt.RegisteredClaims
}

// Session is the parsed, signature-checked view of an access token. The role
// claim here is a hint only; authorization decisions re-check the account
// store.
type Session struct {
	UserID string
	Email  string
	Role   models.Role
}

type TokenPair struct {
	Access     string
	AccessExp  time.Time
	Refresh    string
	RefreshExp time.Time
}

type AccountStore interface {
	Create(ctx context.Context, acct *models.Account) error
	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

type Publisher interface {
	Publish(ctx context.Context, key string, event map[string]any) error
}

type Service struct {
	Accounts      AccountStore
	DB            *gorm.DB
	AccessSecret  []byte
	RefreshSecret []byte
	Events        Publisher
}

type SignUpRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber"`
}

// SignUp creates an account with role free and a freshly issued id.
func (s *Service) SignUp(ctx context.Context, req SignUpRequest) (*models.Account, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", fault.ErrValidation)
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	acct := &models.Account{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: pwHash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PhoneNumber:  req.PhoneNumber,
		Role:         models.RoleFree,
	}
	if err := s.Accounts.Create(ctx, acct); err != nil {
		if errors.Is(err, accounts.ErrEmailTaken) {
			return nil, fmt.Errorf("%w: email already registered", fault.ErrValidation)
		}
		return nil, err
	}

	s.publish(ctx, acct.ID, map[string]any{
		"type":   "user_registered",
		"userID": acct.ID,
		"email":  acct.Email,
	})
	return acct, nil
}

// SignIn verifies the credential and issues a fresh token pair. Lookup
// failures and password mismatches are indistinguishable to the caller.
func (s *Service) SignIn(ctx context.Context, email, password string) (*models.Account, *TokenPair, error) {
	acct, err := s.Accounts.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if errors.Is(err, accounts.ErrNotFound) {
		return nil, nil, fmt.Errorf("%w: invalid credentials", fault.ErrNotAuthenticated)
	}
	if err != nil {
		return nil, nil, err
	}
	if !hash.CheckPassword(acct.PasswordHash, password) {
		return nil, nil, fmt.Errorf("%w: invalid credentials", fault.ErrNotAuthenticated)
	}

	pair, err := s.issuePair(acct)
	if err != nil {
		return nil, nil, err
	}
	if err := s.saveRefresh(ctx, pair.Refresh, acct.ID, pair.RefreshExp); err != nil {
		return nil, nil, err
	}

	s.publish(ctx, acct.ID, map[string]any{
		"type":   "user_signed_in",
		"userID": acct.ID,
	})
	return acct, pair, nil
}

// SignOut revokes the presented refresh token. An unknown token is not an
// error; the cookies are expired either way.
func (s *Service) SignOut(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	err := s.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token = ?", refreshToken).
		Update("revoked", true).Error
	if err != nil {
		return fmt.Errorf("%w: revoke refresh token: %v", fault.ErrUpstream, err)
	}
	return nil
}

// Reauthenticate re-checks the current password. Required before password
// change.
func (s *Service) Reauthenticate(ctx context.Context, acct *models.Account, currentPassword string) error {
	if acct == nil {
		return fmt.Errorf("%w: no session", fault.ErrNotAuthenticated)
	}
	if !hash.CheckPassword(acct.PasswordHash, currentPassword) {
		return fmt.Errorf("%w: current password is incorrect", fault.ErrNotAuthenticated)
	}
	return nil
}

// UpdatePassword validates the confirmation locally, re-authenticates with
// the current password and stores the new hash. The confirmation check never
// reaches the account store.
func (s *Service) UpdatePassword(ctx context.Context, acct *models.Account, current, next, confirm string) error {
	if next == "" {
		return fmt.Errorf("%w: new password is required", fault.ErrValidation)
	}
	if next != confirm {
		return fmt.Errorf("%w: new passwords do not match", fault.ErrValidation)
	}
	if err := s.Reauthenticate(ctx, acct, current); err != nil {
		return err
	}

	pwHash, err := hash.HashPassword(next)
	if err != nil {
		return err
	}
	return s.Accounts.UpdatePassword(ctx, acct.ID, pwHash)
}

// Rotate exchanges a valid, unrevoked refresh token for a new pair. The
// presented token is revoked in the same transaction that stores its
// replacement, so it cannot be replayed.
func (s *Service) Rotate(ctx context.Context, rawToken string) (*TokenPair, *Session, error) {
	subject, err := s.parseRefresh(ctx, rawToken)
	if err != nil {
		return nil, nil, err
	}

	acct, err := s.Accounts.GetByID(ctx, subject)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: stale session", fault.ErrNotAuthenticated)
	}

	pair, err := s.issuePair(acct)
	if err != nil {
		return nil, nil, err
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.RefreshToken{}).
			Where("token = ?", rawToken).
			Update("revoked", true).Error
		if err != nil {
			return err
		}
		row := models.RefreshToken{
			Token:     pair.Refresh,
			UserID:    acct.ID,
			ExpiresAt: pair.RefreshExp.Unix(),
		}
		return tx.Create(&row).Error
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: rotate refresh token: %v", fault.ErrUpstream, err)
	}
	return pair, &Session{UserID: acct.ID, Email: acct.Email, Role: acct.Role}, nil
}

// ParseAccess validates an access token and returns its session view.
func (s *Service) ParseAccess(tokenStr string) (*Session, error) {
	var claims Claims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return s.AccessSecret, nil
	})
	if err != nil || !tkn.Valid {
		return nil, fmt.Errorf("%w: invalid access token", fault.ErrNotAuthenticated)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: token has no subject", fault.ErrNotAuthenticated)
	}
	return &Session{UserID: claims.Subject, Email: claims.Email, Role: claims.Role}, nil
}

func (s *Service) issuePair(acct *models.Account) (*TokenPair, error) {
	now := time.Now()
	accessExp := now.Add(AccessTTL)
	refreshExp := now.Add(RefreshTTL)

	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role:  acct.Role,
		Email: acct.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   acct.ID,
			ExpiresAt: jwt.NewNumericDate(accessExp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}).SignedString(s.AccessSecret)
	if err != nil {
		return nil, err
	}

	refresh, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": acct.ID,
		"exp": refreshExp.Unix(),
		"typ": "refresh",
		"jti": uuid.NewString(),
	}).SignedString(s.RefreshSecret)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		Access:     access,
		AccessExp:  accessExp,
		Refresh:    refresh,
		RefreshExp: refreshExp,
	}, nil
}

func (s *Service) saveRefresh(ctx context.Context, token, userID string, exp time.Time) error {
	row := models.RefreshToken{
		Token:     token,
		UserID:    userID,
		ExpiresAt: exp.Unix(),
		Revoked:   false,
	}
	if err := s.DB.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("%w: save refresh token: %v", fault.ErrUpstream, err)
	}
	return nil
}

func (s *Service) parseRefresh(ctx context.Context, rawToken string) (string, error) {
	tkn, err := jwt.Parse(rawToken, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signature method: %v", t.Header["alg"])
		}
		return s.RefreshSecret, nil
	})
	if err != nil || !tkn.Valid {
		return "", fmt.Errorf("%w: invalid refresh token", fault.ErrNotAuthenticated)
	}
	claims, ok := tkn.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("%w: cannot parse claims", fault.ErrNotAuthenticated)
	}
	if typ, ok := claims["typ"]; !ok || typ != "refresh" {
		return "", fmt.Errorf("%w: not a refresh token", fault.ErrNotAuthenticated)
	}
	subject, _ := claims["sub"].(string)
	if subject == "" {
		return "", fmt.Errorf("%w: token has no subject", fault.ErrNotAuthenticated)
	}

	var stored models.RefreshToken
	err = s.DB.WithContext(ctx).Where("token = ?", rawToken).First(&stored).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("%w: unknown refresh token", fault.ErrNotAuthenticated)
	}
	if err != nil {
		return "", fmt.Errorf("%w: refresh lookup: %v", fault.ErrUpstream, err)
	}
	if stored.Revoked {
		return "", fmt.Errorf("%w: refresh token revoked", fault.ErrNotAuthenticated)
	}
	if time.Now().Unix() > stored.ExpiresAt {
		return "", fmt.Errorf("%w: refresh token expired", fault.ErrNotAuthenticated)
	}
	return subject, nil
}

func (s *Service) publish(ctx context.Context, key string, event map[string]any) {
	if s.Events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.Events.Publish(ctx, key, event); err != nil {
		logging.FromContext(ctx).Error("event publish failed", "error", err)
	}
}
