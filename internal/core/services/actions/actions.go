// Package actions produces the share and emergency-call payloads handed to the
// device collaborators.
package actions

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/lcalzada-xor/where/internal/core/domain"
	"github.com/lcalzada-xor/where/internal/core/ports"
)

// Service exposes share and call actions over the current state.
type Service struct {
	reconciler ports.Reconciler
	sharer     ports.Sharer
	dialer     ports.Dialer
	numbers    []string
}

// NewService creates the actions service. An empty numbers list uses
// domain.DefaultEmergencyNumbers; invalid dial strings are skipped.
func NewService(reconciler ports.Reconciler, sharer ports.Sharer, dialer ports.Dialer, numbers []string) *Service {
	valid := make([]string, 0, len(numbers))
	for _, n := range numbers {
		if !domain.IsValidDialString(n) {
			slog.Warn("Ignoring invalid emergency number", "number", n)
			continue
		}
		valid = append(valid, n)
	}
	if len(valid) == 0 {
		valid = slices.Clone(domain.DefaultEmergencyNumbers)
	}
	return &Service{
		reconciler: reconciler,
		sharer:     sharer,
		dialer:     dialer,
		numbers:    valid,
	}
}

// ShareText returns the payload for the last known coordinate.
func (s *Service) ShareText() (string, error) {
	state := s.reconciler.State()
	if state.Coordinate == nil {
		return "", domain.ErrNoCoordinate
	}
	return domain.ShareText(*state.Coordinate, state.Address), nil
}

// Share hands the payload to the share collaborator.
func (s *Service) Share(ctx context.Context) error {
	text, err := s.ShareText()
	if err != nil {
		return err
	}
	if err := s.sharer.Share(ctx, text); err != nil {
		return fmt.Errorf("share location: %w", err)
	}
	return nil
}

// Numbers returns the configured emergency numbers, primary first.
func (s *Service) Numbers() []string {
	return slices.Clone(s.numbers)
}

// Call asks the telephony collaborator to dial number, which must be configured.
func (s *Service) Call(ctx context.Context, number string) error {
	if !slices.Contains(s.numbers, number) {
		return fmt.Errorf("%w: %q", domain.ErrNotEmergencyNumber, number)
	}
	slog.Info("Emergency call requested", "number", number)
	if err := s.dialer.Dial(ctx, number); err != nil {
		return fmt.Errorf("dial %s: %w", number, err)
	}
	return nil
}
