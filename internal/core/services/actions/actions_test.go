package actions

import (
	"context"
	"testing"

	"github.com/lcalzada-xor/where/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

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

type MockSharer struct {
	mock.Mock
}

func (m *MockSharer) Share(ctx context.Context, text string) error {
	args := m.Called(ctx, text)
	return args.Error(0)
}

type MockDialer struct {
	mock.Mock
}

func (m *MockDialer) Dial(ctx context.Context, number string) error {
	args := m.Called(ctx, number)
	return args.Error(0)
}

func stateAt(lat, lng float64, address string) domain.ViewState {
	return domain.ViewState{Coordinate: &domain.Coordinate{Lat: lat, Lng: lng}, Address: address}
}

func TestShareText(t *testing.T) {
	rec := new(MockReconciler)
	rec.On("State").Return(stateAt(40.416775, -3.70379, "Puerta del Sol, Madrid"))

	svc := NewService(rec, nil, nil, nil)
	text, err := svc.ShareText()

	require.NoError(t, err)
	assert.Equal(t, "My location: 40.416775, -3.703790\n"+
		"Address: Puerta del Sol, Madrid\n"+
		"Map: https://maps.google.com/?q=40.416775,-3.703790", text)
}

func TestShareText_NoAddress(t *testing.T) {
	rec := new(MockReconciler)
	rec.On("State").Return(stateAt(1, 2, ""))

	text, err := NewService(rec, nil, nil, nil).ShareText()

	require.NoError(t, err)
	assert.Equal(t, "My location: 1.000000, 2.000000\nMap: https://maps.google.com/?q=1.000000,2.000000", text)
}

func TestShare_NoCoordinate(t *testing.T) {
	rec := new(MockReconciler)
	rec.On("State").Return(domain.ViewState{})
	sharer := new(MockSharer)

	err := NewService(rec, sharer, nil, nil).Share(context.Background())

	assert.ErrorIs(t, err, domain.ErrNoCoordinate)
	sharer.AssertNotCalled(t, "Share", mock.Anything, mock.Anything)
}

func TestShare_DeliversPayload(t *testing.T) {
	rec := new(MockReconciler)
	rec.On("State").Return(stateAt(1, 2, "Somewhere"))
	sharer := new(MockSharer)
	sharer.On("Share", mock.Anything, mock.MatchedBy(func(text string) bool {
		return assert.ObjectsAreEqual("My location: 1.000000, 2.000000\nAddress: Somewhere\nMap: https://maps.google.com/?q=1.000000,2.000000", text)
	})).Return(nil)

	require.NoError(t, NewService(rec, sharer, nil, nil).Share(context.Background()))
	sharer.AssertExpectations(t)
}

func TestShare_CollaboratorFailure(t *testing.T) {
	rec := new(MockReconciler)
	rec.On("State").Return(stateAt(1, 2, ""))
	sharer := new(MockSharer)
	sharer.On("Share", mock.Anything, mock.Anything).Return(domain.ErrNoClients)

	err := NewService(rec, sharer, nil, nil).Share(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoClients)
}

func TestNumbers(t *testing.T) {
	assert.Equal(t, []string{"999", "112", "911"}, NewService(nil, nil, nil, nil).Numbers())
	assert.Equal(t, []string{"112"}, NewService(nil, nil, nil, []string{"112", "not-a-number", "1"}).Numbers())

	svc := NewService(nil, nil, nil, nil)
	numbers := svc.Numbers()
	numbers[0] = "000"
	assert.Equal(t, "999", svc.Numbers()[0])
}

func TestCall(t *testing.T) {
	dialer := new(MockDialer)
	dialer.On("Dial", mock.Anything, "112").Return(nil)

	svc := NewService(nil, nil, dialer, nil)

	require.NoError(t, svc.Call(context.Background(), "112"))
	assert.ErrorIs(t, svc.Call(context.Background(), "0800123"), domain.ErrNotEmergencyNumber)
	dialer.AssertNumberOfCalls(t, "Dial", 1)
}
