// Package web holds shared test doubles for the HTTP adapter.
package web

import (
	"context"

	"github.com/lcalzada-xor/where/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

// MockReconciler is a mock of ports.Reconciler
type MockReconciler struct {
	mock.Mock
}

func (m *MockReconciler) State() domain.ViewState {
	args := m.Called()
	return args.Get(0).(domain.ViewState)
}

func (m *MockReconciler) SelectFilter(ctx context.Context, key domain.FilterKey) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// MockSharer is a mock of ports.Sharer
type MockSharer struct {
	mock.Mock
}

func (m *MockSharer) Share(ctx context.Context, text string) error {
	args := m.Called(ctx, text)
	return args.Error(0)
}

// MockDialer is a mock of ports.Dialer
type MockDialer struct {
	mock.Mock
}

func (m *MockDialer) Dial(ctx context.Context, number string) error {
	args := m.Called(ctx, number)
	return args.Error(0)
}

// MockCardExporter is a mock of ports.LocationCardExporter
type MockCardExporter struct {
	mock.Mock
}

func (m *MockCardExporter) ExportLocationCard(card domain.LocationCard) ([]byte, error) {
	args := m.Called(card)
	if b := args.Get(0); b != nil {
		return b.([]byte), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockSheetExporter is a mock of ports.ResultSheetExporter
type MockSheetExporter struct {
	mock.Mock
}

func (m *MockSheetExporter) ExportResultSheet(card domain.LocationCard) ([]byte, error) {
	args := m.Called(card)
	if b := args.Get(0); b != nil {
		return b.([]byte), args.Error(1)
	}
	return nil, args.Error(1)
}
