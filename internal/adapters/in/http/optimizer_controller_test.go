package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/infusioncare/appointment-optimizer/internal/config"
	"github.com/infusioncare/appointment-optimizer/internal/core/domain"
)

type fakeUseCase struct {
	locations []string
	ranked    domain.RankedSlots
	plan      domain.RebalancePlan
	err       error

	lastSlotQuery      domain.SlotQuery
	lastRebalanceQuery domain.RebalanceQuery
}

func (f *fakeUseCase) GetLocations(ctx context.Context) ([]string, error) {
	return f.locations, f.err
}

func (f *fakeUseCase) FindSlots(ctx context.Context, query domain.SlotQuery) (domain.RankedSlots, error) {
	f.lastSlotQuery = query
	return f.ranked, f.err
}

func (f *fakeUseCase) RebalanceDays(ctx context.Context, query domain.RebalanceQuery) (domain.RebalancePlan, error) {
	f.lastRebalanceQuery = query
	return f.plan, f.err
}

func (f *fakeUseCase) InvalidateSnapshotCache(ctx context.Context, location string) error {
	return f.err
}

func (f *fakeUseCase) InvalidateAllSnapshotCache(ctx context.Context) error {
	return f.err
}

func newTestRouter(useCase *fakeUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.App.Version = "test"
	cfg.Auth.BasicClients = []config.ConfigBasicClient{
		{Username: "optimizer", Password: "secret"},
	}
	cfg.Optimizer.DailyCapacityMinutes = 540

	router := gin.New()
	NewOptimizerController(useCase, cfg).RegisterRoutes(router)
	return router
}

func authedRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.SetBasicAuth("optimizer", "secret")
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func rankedFixture() domain.RankedSlots {
	return domain.RankedSlots{
		Slots: []domain.Slot{
			{
				Location:         "Downtown",
				ChairID:          "1",
				Date:             time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC),
				NextAvailable:    time.Date(2025, 3, 12, 10, 15, 0, 0, time.UTC),
				RemainingMinutes: 405,
				UtilizationPct:   25,
			},
		},
	}
}

func TestGetLocationsEndpoint(t *testing.T) {
	router := newTestRouter(&fakeUseCase{locations: []string{"Downtown", "Uptown"}})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(http.MethodGet, "/api/v1/locations", ""))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"locations":["Downtown","Uptown"]}`, w.Body.String())
}

func TestBasicAuth(t *testing.T) {
	router := newTestRouter(&fakeUseCase{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/locations", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/locations", nil)
	req.SetBasicAuth("optimizer", "wrong")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestFindSlotsEndpoint(t *testing.T) {
	useCase := &fakeUseCase{ranked: rankedFixture()}
	router := newTestRouter(useCase)

	w := httptest.NewRecorder()
	body := `{"location":"Downtown","durationMinutes":300,"chairId":"1"}`
	router.ServeHTTP(w, authedRequest(http.MethodPost, "/api/v1/slots/find", body))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"slots": [{
			"location": "Downtown",
			"chairId": "1",
			"date": "2025-03-12",
			"nextAvailable": "10:15",
			"remainingMinutes": 405,
			"utilizationPct": 25
		}],
		"noCapacity": false
	}`, w.Body.String())

	assert.Equal(t, domain.SlotQuery{Location: "Downtown", ChairID: "1", DurationMinutes: 300}, useCase.lastSlotQuery)
}

func TestFindSlotsNoCapacity(t *testing.T) {
	useCase := &fakeUseCase{ranked: domain.RankedSlots{Slots: []domain.Slot{}, NoCapacity: true}}
	router := newTestRouter(useCase)

	w := httptest.NewRecorder()
	body := `{"location":"Downtown","durationMinutes":60}`
	router.ServeHTTP(w, authedRequest(http.MethodPost, "/api/v1/slots/find", body))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"slots":[],"noCapacity":true}`, w.Body.String())
}

func TestFindSlotsValidation(t *testing.T) {
	router := newTestRouter(&fakeUseCase{})

	tests := []struct {
		name string
		body string
	}{
		{name: "missing location", body: `{"durationMinutes":60}`},
		{name: "missing duration", body: `{"location":"Downtown"}`},
		{name: "zero duration", body: `{"location":"Downtown","durationMinutes":0}`},
		{name: "duration above capacity", body: `{"location":"Downtown","durationMinutes":600}`},
		{name: "not json", body: `duration=60`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, authedRequest(http.MethodPost, "/api/v1/slots/find", tt.body))
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "schema error is unprocessable",
			err:  domain.SchemaError{Column: domain.ColumnStatus},
			want: http.StatusUnprocessableEntity,
		},
		{
			name: "upstream error is bad gateway",
			err:  &domain.UpstreamError{Op: "looker.run_look", Err: errors.New("status 503")},
			want: http.StatusBadGateway,
		},
		{
			name: "anything else is internal",
			err:  errors.New("boom"),
			want: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&fakeUseCase{err: tt.err})

			w := httptest.NewRecorder()
			body := `{"location":"Downtown","durationMinutes":60}`
			router.ServeHTTP(w, authedRequest(http.MethodPost, "/api/v1/slots/find", body))

			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRebalanceEndpoint(t *testing.T) {
	useCase := &fakeUseCase{
		plan: domain.RebalancePlan{
			Assignments: []domain.Reassignment{
				{
					AppointmentID: 0,
					OriginalDate:  time.Date(2025, 3, 13, 0, 0, 0, 0, time.UTC),
					AssignedDate:  time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC),
					DaysMoved:     -1,
				},
			},
			Days: []domain.RebalanceDay{
				{
					Date:             time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC),
					RemainingBefore:  440,
					AssignedMinutes:  300,
					OverflowReceiver: true,
				},
			},
		},
	}
	router := newTestRouter(useCase)

	w := httptest.NewRecorder()
	body := `{"location":"Downtown","days":1}`
	router.ServeHTTP(w, authedRequest(http.MethodPost, "/api/v1/rebalance", body))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"assignments": [{
			"appointmentId": 0,
			"originalDate": "2025-03-13",
			"assignedDate": "2025-03-12",
			"daysMoved": -1
		}],
		"days": [{
			"date": "2025-03-12",
			"remainingBefore": 440,
			"assignedMinutes": 300,
			"overflowReceiver": true
		}]
	}`, w.Body.String())

	assert.Equal(t, domain.RebalanceQuery{Location: "Downtown", Days: 1}, useCase.lastRebalanceQuery)
}

func TestExportEndpoint(t *testing.T) {
	useCase := &fakeUseCase{ranked: rankedFixture()}
	router := newTestRouter(useCase)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(http.MethodGet, "/api/v1/slots/export?location=Downtown&durationMinutes=300", ""))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Equal(t, 300, useCase.lastSlotQuery.DurationMinutes)

	file, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer file.Close()

	sheet := file.GetSheetName(0)
	cell := func(ref string) string {
		value, err := file.GetCellValue(sheet, ref)
		require.NoError(t, err)
		return value
	}

	assert.Equal(t, "Date", cell("A1"))
	assert.Equal(t, "Utilization %", cell("E1"))
	assert.Equal(t, "2025-03-12", cell("A2"))
	assert.Equal(t, "1", cell("B2"))
	assert.Equal(t, "10:15", cell("C2"))
	assert.Equal(t, "405", cell("D2"))
	assert.Equal(t, "25", cell("E2"))
}

func TestExportValidation(t *testing.T) {
	router := newTestRouter(&fakeUseCase{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(http.MethodGet, "/api/v1/slots/export?durationMinutes=60", ""))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(http.MethodGet, "/api/v1/slots/export?location=Downtown", ""))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(&fakeUseCase{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","version":"test"}`, w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(&fakeUseCase{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestIDHeader(t *testing.T) {
	router := newTestRouter(&fakeUseCase{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-Id", "trace-me")
	router.ServeHTTP(w, req)
	assert.Equal(t, "trace-me", w.Header().Get("X-Request-Id"))
}
