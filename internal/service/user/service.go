package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/w-h-a/redflag/storer"
	"go.uber.org/zap"
)

var ErrNotFound = errors.New("user not found")

type Service struct {
	storer storer.Storer
	logger *zap.Logger
}

// Issue returns the presented id when it names a known user and otherwise
// creates a new one. The bool reports whether a new user was created.
func (s *Service) Issue(ctx context.Context, presented string) (uuid.UUID, bool, error) {
	if id, err := uuid.Parse(strings.TrimSpace(presented)); err == nil {
		exists, err := s.storer.UserExists(ctx, id)
		if err != nil {
			return uuid.Nil, false, err
		}
		if exists {
			return id, false, nil
		}
	}

	id := uuid.New()
	if err := s.storer.UpsertUser(ctx, id); err != nil {
		return uuid.Nil, false, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user created", zap.Stringer("userId", id))

	return id, true, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) error {
	exists, err := s.storer.UserExists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return nil
}

func New(store storer.Storer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.L()
	}
	return &Service{
		storer: store,
		logger: logger,
	}
}
