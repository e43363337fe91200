// Package filter maps user-facing place categories to search parameters.
package filter

import (
	"context"
	"fmt"
	"strings"

	"github.com/lcalzada-xor/where/internal/core/domain"
	"github.com/lcalzada-xor/where/internal/core/ports"
)

var typesByKey = map[domain.FilterKey][]string{
	domain.FilterPOI:         {"tourist_attraction", "point_of_interest", "establishment"},
	domain.FilterHospital:    {"hospital"},
	domain.FilterPolice:      {"police"},
	domain.FilterFireStation: {"fire_station"},
}

// Params are the fixed parts of a nearby search.
type Params struct {
	RadiusMeters float64
	MaxResults   int
	Language     string
}

// DefaultParams match the Places searchNearby defaults used by the app.
func DefaultParams() Params {
	return Params{
		RadiusMeters: 1200,
		MaxResults:   12,
		Language:     "en",
	}
}

// Types returns the external type tokens for key, or nil for an unknown key.
func Types(key domain.FilterKey) []string {
	tokens, ok := typesByKey[key]
	if !ok {
		return nil
	}
	out := make([]string, len(tokens))
	copy(out, tokens)
	return out
}

// ParseKey accepts a filter key or its label, case-insensitively.
func ParseKey(s string) (domain.FilterKey, error) {
	s = strings.TrimSpace(s)
	for _, key := range domain.FilterKeys {
		if strings.EqualFold(s, string(key)) || strings.EqualFold(s, key.Label()) {
			return key, nil
		}
	}
	return "", fmt.Errorf("%w: %q", domain.ErrUnknownFilter, s)
}

// Query builds the search request for key around origin.
func Query(origin domain.Coordinate, key domain.FilterKey, p Params) domain.SearchQuery {
	return domain.SearchQuery{
		Center:        origin,
		RadiusMeters:  p.RadiusMeters,
		IncludedTypes: Types(key),
		MaxResults:    p.MaxResults,
		Language:      p.Language,
	}
}

// Option describes one selectable category.
type Option struct {
	Key    domain.FilterKey `json:"key"`
	Label  string           `json:"label"`
	Title  string           `json:"title"`
	Types  []string         `json:"types"`
	Active bool             `json:"active"`
}

// Selector is the only user-initiated path back into the fetch step.
type Selector struct {
	reconciler ports.Reconciler
}

// NewSelector creates a selector driving reconciler.
func NewSelector(reconciler ports.Reconciler) *Selector {
	return &Selector{reconciler: reconciler}
}

// Select parses s and switches the active category.
func (s *Selector) Select(ctx context.Context, input string) (domain.FilterKey, error) {
	key, err := ParseKey(input)
	if err != nil {
		return "", err
	}
	return key, s.reconciler.SelectFilter(ctx, key)
}

// Options lists the categories, marking the active one.
func (s *Selector) Options() []Option {
	active := s.reconciler.State().Filter
	opts := make([]Option, 0, len(domain.FilterKeys))
	for _, key := range domain.FilterKeys {
		opts = append(opts, Option{
			Key:    key,
			Label:  key.Label(),
			Title:  key.Title(),
			Types:  Types(key),
			Active: key == active,
		})
	}
	return opts
}
