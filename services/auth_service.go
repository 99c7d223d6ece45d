package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/models"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/repositories"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/utils"
)

const (
	tokenLifetime   = 24 * time.Hour
	minPasswordSize = 8
)

// AuthService issues and verifies credentials for staff accounts and
// school captains.
type AuthService struct {
	db       *sql.DB
	users    repositories.UserRepository
	captains repositories.SchoolCaptainRepository
	secret   []byte
	audit    *AuditService
	logger   *slog.Logger
}

func NewAuthService(
	db *sql.DB,
	users repositories.UserRepository,
	captains repositories.SchoolCaptainRepository,
	secret []byte,
	audit *AuditService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		db:       db,
		users:    users,
		captains: captains,
		secret:   secret,
		audit:    audit,
		logger:   logger,
	}
}

func (s *AuthService) signToken(claims jwt.MapClaims) (string, error) {
	now := time.Now()
	claims["iat"] = now.Unix()
	claims["exp"] = now.Add(tokenLifetime).Unix()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken parses a bearer token and returns its claims.
func (s *AuthService) VerifyToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidCredentials
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return claims, nil
}

// Login checks a username/password pair and returns the user with a signed
// token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.User, string, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, repositories.ErrUserNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}
	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, "", ErrAccountDisabled
	}

	name := user.Username
	if user.DisplayName != nil {
		name = *user.DisplayName
	}
	token, err := s.signToken(jwt.MapClaims{
		"user_id": user.ID,
		"role":    string(user.Role),
		"name":    name,
	})
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("user logged in", "user_id", user.ID, "username", user.Username, "role", user.Role)
	return user, token, nil
}

// CreateUser provisions an account. Admin only; the handler enforces that.
func (s *AuthService) CreateUser(ctx context.Context, rc *models.RequestContext, user *models.User, password string) error {
	if len(password) < minPasswordSize {
		return fmt.Errorf("%w: need at least %d characters", ErrPasswordTooShort, minPasswordSize)
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = hash
	user.IsActive = true

	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.users.Create(ctx, tx, user); err != nil {
			if errors.Is(err, repositories.ErrUsernameConflict) {
				return ErrUsernameConflict
			}
			return err
		}
		return s.audit.Log(ctx, tx, rc, "user.create", "user", &user.ID, map[string]interface{}{
			"username": user.Username,
			"role":     user.Role,
		})
	})
}

// ChangePassword verifies the current password before setting the new one.
func (s *AuthService) ChangePassword(ctx context.Context, rc *models.RequestContext, userID int, current, next string) error {
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repositories.ErrUserNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}
	if !utils.CheckPasswordHash(current, user.PasswordHash) {
		return ErrInvalidCredentials
	}
	if len(next) < minPasswordSize {
		return fmt.Errorf("%w: need at least %d characters", ErrPasswordTooShort, minPasswordSize)
	}
	hash, err := utils.HashPassword(next)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.users.UpdatePasswordHash(ctx, tx, userID, hash); err != nil {
			return err
		}
		return s.audit.Log(ctx, tx, rc, "user.password_change", "user", &userID, nil)
	})
}

// CaptainLogin authenticates a school captain by school name and PIN. The
// first login with an unset PIN claims the profile and sets it.
func (s *AuthService) CaptainLogin(ctx context.Context, rc *models.RequestContext, tournamentID int, schoolName, pin string) (*models.SchoolCaptain, string, error) {
	captain, err := s.captains.GetBySchool(ctx, tournamentID, schoolName)
	if errors.Is(err, repositories.ErrSchoolCaptainNotFound) {
		return nil, "", ErrCaptainNotFound
	}
	if err != nil {
		return nil, "", err
	}

	if !captain.HasPin() {
		hash, err := utils.HashPin(pin)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrInvalidPin, err)
		}
		err = withTx(ctx, s.db, func(tx *sql.Tx) error {
			if err := s.captains.UpdatePinHash(ctx, tx, captain.ID, &hash); err != nil {
				return err
			}
			return s.audit.Log(ctx, tx, rc, "captain.pin_set", "school_captain", &captain.ID, map[string]interface{}{
				"school": captain.SchoolName,
			})
		})
		if err != nil {
			return nil, "", err
		}
		captain.PinHash = &hash
	} else if !utils.CheckPin(pin, *captain.PinHash) {
		return nil, "", ErrInvalidPin
	}

	token, err := s.signToken(jwt.MapClaims{
		"captain_id":    captain.ID,
		"school":        captain.SchoolName,
		"tournament_id": captain.TournamentID,
		"role":          "captain",
	})
	if err != nil {
		return nil, "", err
	}
	return captain, token, nil
}

// ResetCaptainPin clears a captain's PIN so the school can claim it again.
func (s *AuthService) ResetCaptainPin(ctx context.Context, rc *models.RequestContext, captainID int) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.captains.UpdatePinHash(ctx, tx, captainID, nil); err != nil {
			if errors.Is(err, repositories.ErrSchoolCaptainNotFound) {
				return ErrCaptainNotFound
			}
			return err
		}
		return s.audit.Log(ctx, tx, rc, "captain.pin_reset", "school_captain", &captainID, nil)
	})
}
