package export

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lcalzada-xor/where/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockReconciler struct {
	mock.Mock
}

func (m *MockReconciler) State() domain.ViewState {
	return m.Called().Get(0).(domain.ViewState)
}

func (m *MockReconciler) SelectFilter(ctx context.Context, key domain.FilterKey) error {
	return m.Called(ctx, key).Error(0)
}

type MockExporter struct {
	mock.Mock
}

func (m *MockExporter) ExportLocationCard(card domain.LocationCard) ([]byte, error) {
	args := m.Called(card)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockExporter) ExportResultSheet(card domain.LocationCard) ([]byte, error) {
	args := m.Called(card)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func TestService_Card(t *testing.T) {
	rec := new(MockReconciler)
	rec.On("State").Return(domain.ViewState{
		Filter:        domain.FilterPolice,
		ResultsFilter: domain.FilterHospital,
		Address:       "12 Main St",
		Stale:         true,
		Results:       domain.ResultSet{{ID: "a"}},
	})

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	svc := NewService(rec, nil, nil, []string{"112"})
	svc.now = func() time.Time { return now }

	card := svc.Card()
	assert.Equal(t, "Nearby Hospitals", card.Title)
	assert.Equal(t, domain.FilterHospital, card.Filter)
	assert.Equal(t, now, card.GeneratedAt)
	assert.Equal(t, "12 Main St", card.Address)
	assert.True(t, card.Stale)
	assert.Equal(t, []string{"112"}, card.EmergencyNumbers)
	assert.Len(t, card.Results, 1)
}

func TestService_PDFAndXLSX(t *testing.T) {
	rec := new(MockReconciler)
	rec.On("State").Return(domain.ViewState{Filter: domain.FilterPOI})
	exp := new(MockExporter)
	exp.On("ExportLocationCard", mock.Anything).Return([]byte("%PDF-"), nil)
	exp.On("ExportResultSheet", mock.Anything).Return(nil, errors.New("disk full"))

	svc := NewService(rec, exp, exp, nil)

	data, err := svc.PDF(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-"), data)

	_, err = svc.XLSX(context.Background())
	assert.ErrorContains(t, err, "export xlsx: disk full")
}
