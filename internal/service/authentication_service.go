package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"socialconnect-server/config"
	"socialconnect-server/internal/metrics"
	"socialconnect-server/internal/model"
	"socialconnect-server/internal/notifier"
	"socialconnect-server/internal/ports"
	"socialconnect-server/internal/repository"
	"socialconnect-server/internal/security"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// dummyPasswordHash : сравнение для несуществующего пользователя, чтобы время ответа не выдавало наличие аккаунта
var dummyPasswordHash = sync.OnceValue(func() string {
	hash, err := security.HashPassword(uuid.NewString())
	if err != nil {
		return ""
	}
	return hash
})

type AuthenticationService struct {
	jwtRepository  ports.JWTRepositoryInterface
	jwtService     ports.JWTServiceInterface
	userRepository ports.UserRepository
	usedTokens     ports.UsedTokenRepository
	registry       ports.TokenRegistry
	mailer         ports.Mailer
	links          notifier.Links
	resetMaxAge    time.Duration
	verifyMaxAge   time.Duration
	now            func() time.Time
}

func NewAuthenticationService(
	jwtRepository ports.JWTRepositoryInterface,
	cfg *config.AppConfig,
	jwtService ports.JWTServiceInterface,
	userRepository ports.UserRepository,
	usedTokens ports.UsedTokenRepository,
	registry ports.TokenRegistry,
	mailer ports.Mailer,
) *AuthenticationService {
	return &AuthenticationService{
		jwtRepository:  jwtRepository,
		jwtService:     jwtService,
		userRepository: userRepository,
		usedTokens:     usedTokens,
		registry:       registry,
		mailer:         mailer,
		links:          notifier.Links{AppURL: cfg.Server.AppURL},
		resetMaxAge:    security.ParseTTL(cfg.Tokens.PasswordResetMaxAge),
		verifyMaxAge:   security.ParseTTL(cfg.Tokens.EmailVerificationMaxAge),
		now:            time.Now,
	}
}

// WithClock : подменяет источник времени (тесты)
func (s *AuthenticationService) WithClock(now func() time.Time) *AuthenticationService {
	s.now = now
	return s
}

// Register : создаёт пользователя с ролью USER и неподтверждённым email, отправляет письмо подтверждения
func (s *AuthenticationService) Register(ctx context.Context, input model.RegisterInput) (user *model.User, err error) {
	defer func() { metrics.ObserveAuth(metrics.EventRegister, err) }()

	input.Email = strings.TrimSpace(input.Email)
	input.Username = strings.TrimSpace(input.Username)

	if input.Email == "" || input.Username == "" || input.Password == "" || input.FirstName == "" || input.LastName == "" {
		return nil, validationError("All fields are required")
	}
	if !security.ValidateEmail(input.Email) {
		return nil, validationError("Invalid email format")
	}
	if !security.ValidateUsername(input.Username) {
		return nil, validationError("Username must be 3-30 characters and contain only letters, numbers, and underscores")
	}
	if err := security.ValidatePassword(input.Password); err != nil {
		return nil, validationError(err.Error())
	}

	if taken, err := s.identifierTaken(ctx, input.Email); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrEmailTaken
	}
	if taken, err := s.identifierTaken(ctx, input.Username); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrUsernameTaken
	}

	hash, err := security.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("[AuthService] %w", err)
	}

	created, err := s.userRepository.CreateUser(ctx, &model.User{
		UUID:         uuid.NewString(),
		Email:        input.Email,
		Username:     input.Username,
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Role:         model.RoleUser,
		IsActive:     true,
	})
	if err != nil {
		// гонка двух регистраций с одинаковыми данными
		if errors.Is(err, repository.ErrConflict) {
			if strings.Contains(err.Error(), "username") {
				return nil, ErrUsernameTaken
			}
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("[AuthService] ошибка создания пользователя: %w", err)
	}

	if err := s.sendVerification(ctx, created); err != nil {
		log.Printf("[AuthService] не удалось отправить письмо подтверждения для %s: %v", created.UUID, err)
	}

	return created, nil
}

func (s *AuthenticationService) identifierTaken(ctx context.Context, identifier string) (bool, error) {
	_, err := s.userRepository.FindByEmailOrUsername(ctx, identifier)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, repository.ErrNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("[AuthService] ошибка поиска пользователя: %w", err)
	}
}

// Login : пароль проверяется раньше статуса аккаунта, поэтому о деактивации узнаёт только владелец пароля
func (s *AuthenticationService) Login(ctx context.Context, identifier, password string, client model.ClientInfo) (result *model.LoginResult, err error) {
	defer func() { metrics.ObserveAuth(metrics.EventLogin, err) }()

	user, err := s.userRepository.FindByEmailOrUsername(ctx, strings.TrimSpace(identifier))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			security.CheckPassword(password, dummyPasswordHash())
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("[AuthService] ошибка поиска пользователя: %w", err)
	}

	if !security.CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountDeactivated
	}
	if !user.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	tokens, err := s.issueSession(ctx, user, client)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.userRepository.UpdateLastLogin(ctx, user.UUID, now); err != nil {
		log.Printf("[AuthService] не удалось обновить last_login для %s: %v", user.UUID, err)
	} else {
		user.LastLogin = &now
	}

	return &model.LoginResult{Tokens: tokens, User: user}, nil
}

// issueSession : выдаёт пару токенов и сохраняет refresh токен
func (s *AuthenticationService) issueSession(ctx context.Context, user *model.User, client model.ClientInfo) (*model.TokensPair, error) {
	tokens, expiresAt, err := s.jwtService.GenerateAccessRefreshTokens(user.Payload())
	if err != nil {
		return nil, fmt.Errorf("[AuthService] ошибка генерации токенов: %w", err)
	}

	if _, err := s.jwtRepository.Create(ctx, tokens.RefreshToken, user.UUID, expiresAt, client); err != nil {
		return nil, fmt.Errorf("[AuthService] ошибка сохранения refresh токена: %w", err)
	}

	return tokens, nil
}

// RefreshToken : ротация. Старый токен отзывается условно до выдачи новой пары,
// поэтому из двух одновременных обновлений одним токеном проходит только одно
func (s *AuthenticationService) RefreshToken(ctx context.Context, refreshToken string, client model.ClientInfo) (tokens *model.TokensPair, err error) {
	defer func() { metrics.ObserveAuth(metrics.EventRefresh, err) }()

	claims, err := s.jwtService.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, ErrRefreshTokenRejected
	}

	stored, err := s.jwtRepository.FindByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRefreshTokenInvalid
		}
		return nil, fmt.Errorf("[AuthService] не удалось найти рефреш токен: %w", err)
	}

	if stored.IsRevoked || stored.UserUUID != claims.UserID {
		return nil, ErrRefreshTokenInvalid
	}
	if s.now().After(stored.ExpiresAt) {
		return nil, ErrRefreshTokenExpired
	}

	user, err := s.userRepository.FindByUUID(ctx, stored.UserUUID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("[AuthService] ошибка поиска пользователя: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil, ErrAccountDeactivated
	}

	if err := s.jwtRepository.RevokeByID(ctx, stored.UUID); err != nil {
		if errors.Is(err, repository.ErrAlreadyRevoked) {
			return nil, ErrRefreshTokenInvalid
		}
		return nil, fmt.Errorf("[AuthService] не удалось отозвать рефреш токен: %w", err)
	}

	return s.issueSession(ctx, user, client)
}

// Logout : отзывает один refresh токен владельца. Чужой или неизвестный токен не меняет ничего
func (s *AuthenticationService) Logout(ctx context.Context, userUUID, refreshToken string) (err error) {
	defer func() { metrics.ObserveAuth(metrics.EventLogout, err) }()

	if err := s.jwtRepository.Revoke(ctx, refreshToken, userUUID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Printf("[AuthService] logout: токен не принадлежит пользователю %s или уже удалён", userUUID)
			return nil
		}
		return fmt.Errorf("[AuthService] не удалось отозвать рефреш токен: %w", err)
	}

	return nil
}

// ChangePassword : после смены пароля все сессии пользователя завершаются
func (s *AuthenticationService) ChangePassword(ctx context.Context, userUUID, currentPassword, newPassword string) (err error) {
	defer func() { metrics.ObserveAuth(metrics.EventPasswordChange, err) }()

	if currentPassword == "" || newPassword == "" {
		return validationError("Current password and new password are required")
	}
	if err := security.ValidatePassword(newPassword); err != nil {
		return validationError(err.Error())
	}

	user, err := s.findUser(ctx, userUUID)
	if err != nil {
		return err
	}

	if !security.CheckPassword(currentPassword, user.PasswordHash) {
		return ErrWrongCurrentPassword
	}

	if err := s.setPassword(ctx, user, newPassword); err != nil {
		return err
	}

	return nil
}

func (s *AuthenticationService) setPassword(ctx context.Context, user *model.User, newPassword string) error {
	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("[AuthService] %w", err)
	}

	if err := s.userRepository.UpdatePassword(ctx, user.UUID, hash); err != nil {
		return fmt.Errorf("[AuthService] не удалось обновить пароль: %w", err)
	}

	if revoked, err := s.jwtRepository.RevokeAllForUser(ctx, user.UUID); err != nil {
		log.Printf("[AuthService] не удалось завершить сессии пользователя %s: %v", user.UUID, err)
	} else {
		log.Printf("[AuthService] пароль пользователя %s изменён, отозвано сессий: %d", user.UUID, revoked)
	}

	return nil
}

func (s *AuthenticationService) findUser(ctx context.Context, userUUID string) (*model.User, error) {
	user, err := s.userRepository.FindByUUID(ctx, userUUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("[AuthService] ошибка поиска пользователя: %w", err)
	}
	return user, nil
}
