package server_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lcalzada-xor/where/internal/adapters/web"
	"github.com/lcalzada-xor/where/internal/adapters/web/server"
	"github.com/lcalzada-xor/where/internal/adapters/web/websocket"
	"github.com/lcalzada-xor/where/internal/core/domain"
	"github.com/lcalzada-xor/where/internal/core/services/actions"
	"github.com/lcalzada-xor/where/internal/core/services/export"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	handler    http.Handler
	reconciler *web.MockReconciler
	sharer     *web.MockSharer
	dialer     *web.MockDialer
	pdf        *web.MockCardExporter
	sheet      *web.MockSheetExporter
}

func liveState() domain.ViewState {
	return domain.ViewState{
		Version:    4,
		Phase:      domain.PhaseLive,
		Coordinate: &domain.Coordinate{Lat: 51.5007, Lng: -0.1246},
		Address:    "Westminster, London",
		Filter:     domain.FilterPOI,
		Results: domain.ResultSet{
			{ID: "a", Name: "Big Ben", DistanceMeters: 20, Compass: "N"},
		},
	}
}

// setupServer helper creates a server instance with mocks
func setupServer(t *testing.T, state domain.ViewState) *fixture {
	t.Helper()
	f := &fixture{
		reconciler: new(web.MockReconciler),
		sharer:     new(web.MockSharer),
		dialer:     new(web.MockDialer),
		pdf:        new(web.MockCardExporter),
		sheet:      new(web.MockSheetExporter),
	}
	f.reconciler.On("State").Return(state)

	numbers := []string{"999", "112"}
	actionSvc := actions.NewService(f.reconciler, f.sharer, f.dialer, numbers)
	exportSvc := export.NewService(f.reconciler, f.pdf, f.sheet, numbers)
	ws := websocket.NewWSManager(f.reconciler, nil)

	srv := server.NewServer(":0", f.reconciler, ws, actionSvc, exportSvc)
	f.handler = srv.Handler()
	return f
}

func (f *fixture) do(method, path string, body []byte) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	return w
}

func TestServer_GetState(t *testing.T) {
	state := liveState()
	state.Stale = true
	f := setupServer(t, state)

	w := f.do(http.MethodGet, "/api/state", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var view domain.StateView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, uint64(4), view.Version)
	assert.Equal(t, "Lat: 51.50070, Lon: -0.12460", view.Status)
	assert.Contains(t, view.Banner, "Showing last known results")
	assert.Equal(t, domain.FilterPOI.Title(), view.Title)
	assert.Len(t, view.Results, 1)
}

func TestServer_ListFilters(t *testing.T) {
	f := setupServer(t, liveState())

	w := f.do(http.MethodGet, "/api/filters", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var opts []struct {
		Key    string `json:"key"`
		Active bool   `json:"active"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &opts))
	require.Len(t, opts, len(domain.FilterKeys))
	for _, o := range opts {
		assert.Equal(t, o.Key == string(domain.FilterPOI), o.Active, o.Key)
	}
}

func TestServer_SelectFilter(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectedStatus int
		expectedKey    domain.FilterKey
	}{
		{name: "By key", body: `{"filter":"hospital"}`, expectedStatus: http.StatusAccepted, expectedKey: domain.FilterHospital},
		{name: "By label", body: `{"filter":"Police"}`, expectedStatus: http.StatusAccepted, expectedKey: domain.FilterPolice},
		{name: "Unknown filter", body: `{"filter":"casino"}`, expectedStatus: http.StatusBadRequest},
		{name: "Malformed body", body: `{"filter":`, expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupServer(t, liveState())
			called := make(chan domain.FilterKey, 1)
			f.reconciler.On("SelectFilter", mock.Anything, mock.Anything).
				Run(func(args mock.Arguments) { called <- args.Get(1).(domain.FilterKey) }).
				Return(nil)

			w := f.do(http.MethodPost, "/api/filter", []byte(tt.body))
			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedStatus != http.StatusAccepted {
				f.reconciler.AssertNotCalled(t, "SelectFilter", mock.Anything, mock.Anything)
				return
			}

			var resp map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, string(tt.expectedKey), resp["filter"])

			select {
			case key := <-called:
				assert.Equal(t, tt.expectedKey, key)
			case <-time.After(2 * time.Second):
				t.Fatal("SelectFilter was not called")
			}
		})
	}
}

func TestServer_MethodMismatch(t *testing.T) {
	tests := []struct {
		name         string
		method       string
		path         string
		expectedCode int
	}{
		{"GET filter", http.MethodGet, "/api/filter", http.StatusMethodNotAllowed},
		{"GET call", http.MethodGet, "/api/call/112", http.StatusMethodNotAllowed},
		{"DELETE state", http.MethodDelete, "/api/state", http.StatusMethodNotAllowed},
		{"Unknown API path", http.MethodGet, "/api/nowhere", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupServer(t, liveState())
			w := f.do(tt.method, tt.path, nil)
			assert.Equal(t, tt.expectedCode, w.Code)
		})
	}
}

func TestServer_Share(t *testing.T) {
	t.Run("Text", func(t *testing.T) {
		f := setupServer(t, liveState())
		w := f.do(http.MethodGet, "/api/share", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Contains(t, resp["text"], "My location: 51.500700, -0.124600")
		assert.Contains(t, resp["text"], "Address: Westminster, London")
	})

	t.Run("No coordinate", func(t *testing.T) {
		f := setupServer(t, domain.ViewState{Phase: domain.PhaseEmpty})
		w := f.do(http.MethodGet, "/api/share", nil)
		assert.Equal(t, http.StatusConflict, w.Code)

		w = f.do(http.MethodPost, "/api/share", nil)
		assert.Equal(t, http.StatusConflict, w.Code)
		f.sharer.AssertNotCalled(t, "Share", mock.Anything, mock.Anything)
	})

	t.Run("Delivered", func(t *testing.T) {
		f := setupServer(t, liveState())
		f.sharer.On("Share", mock.Anything, mock.MatchedBy(func(text string) bool {
			return bytes.Contains([]byte(text), []byte("maps.google.com"))
		})).Return(nil)

		w := f.do(http.MethodPost, "/api/share", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		f.sharer.AssertExpectations(t)
	})

	t.Run("Nobody listening", func(t *testing.T) {
		f := setupServer(t, liveState())
		f.sharer.On("Share", mock.Anything, mock.Anything).Return(domain.ErrNoClients)

		w := f.do(http.MethodPost, "/api/share", nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestServer_Emergency(t *testing.T) {
	f := setupServer(t, liveState())

	w := f.do(http.MethodGet, "/api/emergency", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Primary string   `json:"primary"`
		Numbers []string `json:"numbers"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "999", resp.Primary)
	assert.Equal(t, []string{"999", "112"}, resp.Numbers)
}

func TestServer_Call(t *testing.T) {
	f := setupServer(t, liveState())
	f.dialer.On("Dial", mock.Anything, "112").Return(nil)

	w := f.do(http.MethodPost, "/api/call/112", nil)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.JSONEq(t, `{"number":"112","uri":"tel:112"}`, w.Body.String())
	f.dialer.AssertExpectations(t)

	w = f.do(http.MethodPost, "/api/call/0800123456", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	f.dialer.AssertNumberOfCalls(t, "Dial", 1)
}

func TestServer_CallIsRateLimited(t *testing.T) {
	f := setupServer(t, liveState())
	f.dialer.On("Dial", mock.Anything, "999").Return(nil)

	codes := make([]int, 0, 7)
	for i := 0; i < 7; i++ {
		codes = append(codes, f.do(http.MethodPost, "/api/call/999", nil).Code)
	}

	assert.Equal(t, http.StatusAccepted, codes[0])
	assert.Equal(t, http.StatusTooManyRequests, codes[len(codes)-1])
}

func TestServer_Export(t *testing.T) {
	t.Run("PDF", func(t *testing.T) {
		f := setupServer(t, liveState())
		f.pdf.On("ExportLocationCard", mock.MatchedBy(func(c domain.LocationCard) bool {
			return c.Address == "Westminster, London" && len(c.Results) == 1
		})).Return([]byte("%PDF-1.3"), nil)

		w := f.do(http.MethodGet, "/api/export/pdf", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), ".pdf")
		assert.Equal(t, "%PDF-1.3", w.Body.String())
	})

	t.Run("XLSX failure", func(t *testing.T) {
		f := setupServer(t, liveState())
		f.sheet.On("ExportResultSheet", mock.Anything).Return(nil, errors.New("disk full"))

		w := f.do(http.MethodGet, "/api/export/xlsx", nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestServer_Metrics(t *testing.T) {
	f := setupServer(t, liveState())
	w := f.do(http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
