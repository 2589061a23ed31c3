package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/markpro/internal/editor/domain"
)

// Service manages the theme and draft slots.
type Service struct {
	store  domain.Store
	logger *slog.Logger
}

// NewService creates an editor preferences service.
func NewService(store domain.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

// Theme returns the stored theme, falling back to the default when the
// slot is empty or holds an unknown value.
func (s *Service) Theme(ctx context.Context) (domain.Theme, error) {
	raw, ok, err := s.store.Get(ctx, domain.SlotTheme)
	if err != nil {
		return domain.DefaultTheme, fmt.Errorf("load theme: %w", err)
	}
	if !ok {
		return domain.DefaultTheme, nil
	}
	theme, err := domain.ParseTheme(raw)
	if err != nil {
		s.logger.WarnContext(ctx, "ignoring stored theme", "value", raw)
		return domain.DefaultTheme, nil
	}
	return theme, nil
}

// SetTheme persists theme.
func (s *Service) SetTheme(ctx context.Context, theme domain.Theme) error {
	if _, err := domain.ParseTheme(string(theme)); err != nil {
		return err
	}
	if err := s.store.Set(ctx, domain.SlotTheme, string(theme)); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	return nil
}

// ToggleTheme flips and persists the theme, returning the new value.
func (s *Service) ToggleTheme(ctx context.Context) (domain.Theme, error) {
	current, err := s.Theme(ctx)
	if err != nil {
		return current, err
	}
	next := current.Toggle()
	if err := s.SetTheme(ctx, next); err != nil {
		return current, err
	}
	s.logger.DebugContext(ctx, "theme toggled", "theme", string(next))
	return next, nil
}

// LoadDraft returns the saved draft or the welcome document.
func (s *Service) LoadDraft(ctx context.Context) (string, error) {
	draft, ok, err := s.store.Get(ctx, domain.SlotDraft)
	if err != nil {
		return domain.DefaultDraft, fmt.Errorf("load draft: %w", err)
	}
	if !ok {
		return domain.DefaultDraft, nil
	}
	return draft, nil
}

// SaveDraft persists text as the current draft.
func (s *Service) SaveDraft(ctx context.Context, text string) error {
	if err := s.store.Set(ctx, domain.SlotDraft, text); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}
