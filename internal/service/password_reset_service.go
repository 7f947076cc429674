package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"socialconnect-server/internal/metrics"
	"socialconnect-server/internal/model"
	"socialconnect-server/internal/repository"
	"socialconnect-server/internal/security"
	"strings"
	"time"
)

// RequestPasswordReset : ответ не зависит от существования email. Токен выдаётся только активному пользователю
func (s *AuthenticationService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return validationError("Email is required")
	}

	user, err := s.userRepository.FindByEmailOrUsername(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Printf("[AuthService] запрос сброса пароля для неизвестного email")
			return nil
		}
		return fmt.Errorf("[AuthService] ошибка поиска пользователя: %w", err)
	}

	// поиск идёт и по username, ссылка уходит только владельцу этого email
	if !strings.EqualFold(user.Email, email) || !user.IsActive {
		return nil
	}

	token, err := s.issueToken(ctx, user.UUID, model.PurposePasswordReset, s.resetMaxAge)
	if err != nil {
		log.Printf("[AuthService] не удалось выдать токен сброса для %s: %v", user.UUID, err)
		return nil
	}

	err = s.mailer.Send(ctx, model.EmailMessage{
		Kind:     model.EmailPasswordReset,
		To:       user.Email,
		Username: user.Username,
		Link:     s.links.PasswordReset(token),
	})
	if err != nil {
		log.Printf("[AuthService] не удалось отправить письмо сброса для %s: %v", user.UUID, err)
	}

	return nil
}

// CheckResetToken : проверка до ввода нового пароля. Повторное использование раскрывается намеренно
func (s *AuthenticationService) CheckResetToken(ctx context.Context, token string) (*model.ResetTokenStatus, error) {
	if _, err := s.authenticateResetToken(ctx, token); err != nil {
		return nil, err
	}

	used, err := s.usedTokens.IsUsed(ctx, security.HashToken(token))
	if err != nil {
		return nil, fmt.Errorf("[AuthService] ошибка проверки журнала токенов: %w", err)
	}

	return &model.ResetTokenStatus{Valid: !used, Used: used}, nil
}

// ConfirmPasswordReset : порядок шагов фиксирован. Токен записывается в журнал до сохранения пароля,
// поэтому сбой на последнем шаге не оставляет токен пригодным для повтора
func (s *AuthenticationService) ConfirmPasswordReset(ctx context.Context, token, newPassword string) (err error) {
	defer func() { metrics.ObserveAuth(metrics.EventPasswordReset, err) }()

	if token == "" || newPassword == "" {
		return validationError("Token and new password are required")
	}

	// 1. Декодирование, свежесть и наличие в реестре выданных
	userID, err := s.authenticateResetToken(ctx, token)
	if err != nil {
		return err
	}

	// 2. Журнал использованных токенов
	tokenHash := security.HashToken(token)
	used, err := s.usedTokens.IsUsed(ctx, tokenHash)
	if err != nil {
		return fmt.Errorf("[AuthService] ошибка проверки журнала токенов: %w", err)
	}
	if used {
		return ErrResetTokenUsed
	}

	// 3. Политика паролей
	if err := security.ValidatePassword(newPassword); err != nil {
		return validationError(err.Error())
	}

	// 4. Пользователь
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return err
	}

	// 5. Погашение токена
	if err := s.usedTokens.MarkUsed(ctx, tokenHash, user.Email); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return ErrResetTokenUsed
		}
		return fmt.Errorf("[AuthService] не удалось погасить токен сброса: %w", err)
	}

	// 6. Новый пароль, затем завершение сессий
	return s.setPassword(ctx, user, newPassword)
}

// authenticateResetToken : возвращает id пользователя из токена, который выдавал этот сервер
func (s *AuthenticationService) authenticateResetToken(ctx context.Context, token string) (string, error) {
	userID, _, err := security.DecodeResetToken(token, s.now(), s.resetMaxAge)
	if err != nil {
		if errors.Is(err, security.ErrResetTokenExpired) {
			return "", ErrResetTokenExpired
		}
		return "", ErrResetTokenInvalid
	}

	issued, err := s.registry.Lookup(ctx, model.PurposePasswordReset, token)
	if err != nil {
		return "", fmt.Errorf("[AuthService] ошибка проверки реестра токенов: %w", err)
	}
	if issued == nil || issued.UserID != userID {
		return "", ErrResetTokenInvalid
	}

	return userID, nil
}

// issueToken : self-encoded токен, зарегистрированный в реестре на время своего окна
func (s *AuthenticationService) issueToken(ctx context.Context, userUUID string, purpose model.TokenPurpose, maxAge time.Duration) (string, error) {
	issuedAt := s.now()
	token := security.EncodeResetToken(userUUID, issuedAt)

	err := s.registry.Register(ctx, token, &model.IssuedToken{
		UserID:   userUUID,
		Purpose:  purpose,
		IssuedAt: issuedAt,
	}, maxAge)
	if err != nil {
		return "", err
	}

	return token, nil
}
