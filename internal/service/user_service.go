package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"socialconnect-server/internal/model"
	"socialconnect-server/internal/ports"
	"socialconnect-server/internal/repository"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type UserService struct {
	userRepository ports.UserRepository
	jwtRepository  ports.JWTRepositoryInterface
}

func NewUserService(userRepository ports.UserRepository, jwtRepository ports.JWTRepositoryInterface) *UserService {
	return &UserService{
		userRepository: userRepository,
		jwtRepository:  jwtRepository,
	}
}

func (s *UserService) GetUser(ctx context.Context, uuid string) (*model.User, error) {
	user, err := s.userRepository.FindByUUID(ctx, uuid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("[UserService] ошибка поиска пользователя: %w", err)
	}
	return user, nil
}

// ListUsers : limit приводится к диапазону 1..100
func (s *UserService) ListUsers(ctx context.Context, cursor string, limit int) ([]*model.User, string, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	users, nextCursor, err := s.userRepository.ListUsers(ctx, cursor, limit)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidCursor) {
			return nil, "", validationError("Invalid cursor")
		}
		return nil, "", fmt.Errorf("[UserService] ошибка получения списка пользователей: %w", err)
	}

	return users, nextCursor, nil
}

func (s *UserService) ActivateUser(ctx context.Context, uuid string) error {
	return s.setActive(ctx, uuid, true)
}

// DeactivateUser : деактивация завершает все сессии пользователя
func (s *UserService) DeactivateUser(ctx context.Context, uuid string) error {
	if err := s.setActive(ctx, uuid, false); err != nil {
		return err
	}

	revoked, err := s.jwtRepository.RevokeAllForUser(ctx, uuid)
	if err != nil {
		return fmt.Errorf("[UserService] не удалось завершить сессии пользователя: %w", err)
	}

	log.Printf("[UserService] пользователь %s деактивирован, отозвано сессий: %d", uuid, revoked)
	return nil
}

func (s *UserService) setActive(ctx context.Context, uuid string, active bool) error {
	if err := s.userRepository.SetActive(ctx, uuid, active); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("[UserService] не удалось изменить статус пользователя: %w", err)
	}
	return nil
}
