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
)

// VerifyEmail : погашает токен подтверждения. Для уже подтверждённого пользователя возвращает true.
// Запись реестра живёт до конца окна, поэтому повтор той же ссылки тоже даёт true
func (s *AuthenticationService) VerifyEmail(ctx context.Context, token string) (alreadyVerified bool, err error) {
	defer func() { metrics.ObserveAuth(metrics.EventEmailVerify, err) }()

	if token == "" {
		return false, validationError("Verification token is required")
	}

	userID, _, err := security.DecodeResetToken(token, s.now(), s.verifyMaxAge)
	if err != nil {
		return false, ErrVerificationTokenInvalid
	}

	issued, err := s.registry.Lookup(ctx, model.PurposeEmailVerification, token)
	if err != nil {
		return false, fmt.Errorf("[AuthService] ошибка проверки реестра токенов: %w", err)
	}
	// статус email раскрывается только предъявителю выданного токена
	if issued == nil || issued.UserID != userID {
		return false, ErrVerificationTokenInvalid
	}

	user, err := s.userRepository.FindByUUID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, ErrVerificationTokenInvalid
		}
		return false, fmt.Errorf("[AuthService] ошибка поиска пользователя: %w", err)
	}

	if user.EmailVerified {
		return true, nil
	}

	if err := s.userRepository.SetEmailVerified(ctx, user.UUID); err != nil {
		return false, fmt.Errorf("[AuthService] не удалось подтвердить email: %w", err)
	}

	return false, nil
}

// ResendVerification : для неизвестного email ответ такой же, как при успешной отправке
func (s *AuthenticationService) ResendVerification(ctx context.Context, email string) (bool, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return false, validationError("Email is required")
	}

	user, err := s.userRepository.FindByEmailOrUsername(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("[AuthService] ошибка поиска пользователя: %w", err)
	}

	if !strings.EqualFold(user.Email, email) {
		return false, nil
	}
	if user.EmailVerified {
		return true, nil
	}

	if err := s.sendVerification(ctx, user); err != nil {
		log.Printf("[AuthService] не удалось повторно отправить письмо для %s: %v", user.UUID, err)
		return false, ErrEmailDelivery
	}

	return false, nil
}

func (s *AuthenticationService) sendVerification(ctx context.Context, user *model.User) error {
	token, err := s.issueToken(ctx, user.UUID, model.PurposeEmailVerification, s.verifyMaxAge)
	if err != nil {
		return err
	}

	return s.mailer.Send(ctx, model.EmailMessage{
		Kind:     model.EmailVerification,
		To:       user.Email,
		Username: user.Username,
		Link:     s.links.Verification(token),
	})
}
