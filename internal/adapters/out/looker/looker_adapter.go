package looker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	nurl "net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/infusioncare/appointment-optimizer/internal/config"
	"github.com/infusioncare/appointment-optimizer/internal/core/domain"
	"github.com/infusioncare/appointment-optimizer/internal/core/json_types"
	"github.com/infusioncare/appointment-optimizer/internal/core/ports/out"
	"github.com/infusioncare/appointment-optimizer/pkg/metrics"
)

type LookerAdapter struct {
	client       *http.Client
	baseURL      string
	clientID     string
	clientSecret string
	lookID       string
	logger       out.LoggerPort

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewLookerAdapter(cfg *config.Config, logger out.LoggerPort) *LookerAdapter {
	return &LookerAdapter{
		client:       &http.Client{Timeout: 30 * time.Second},
		baseURL:      cfg.Looker.URL,
		clientID:     cfg.Looker.ClientID,
		clientSecret: cfg.Looker.ClientSecret,
		lookID:       cfg.Looker.LookID,
		logger:       logger,
	}
}

// lookRow is one row of the Look as Looker emits it. Every field is
// optional at decode time; a null or absent column leaves the pointer
// nil for the normalizer to judge.
type lookRow struct {
	Location    *string                    `json:"locations.name"`
	ChairID     *json_types.StringOrNumber `json:"appointments.chair_id"`
	Status      *string                    `json:"appointments.status"`
	StartTime   *json_types.DateTime       `json:"appointments.start_time"`
	EndTime     *json_types.DateTime       `json:"appointments.end_time"`
	CreatedDate *json_types.Date           `json:"appointments.created_date"`
	Medication  *string                    `json:"administration_details.med_name"`
}

func (r lookRow) toRecord() domain.AppointmentRecord {
	record := domain.AppointmentRecord{
		Location:   r.Location,
		Status:     r.Status,
		Medication: r.Medication,
	}
	if r.ChairID != nil {
		record.ChairID = &r.ChairID.Value
	}
	if r.StartTime != nil {
		record.StartTime = &r.StartTime.Date
	}
	if r.EndTime != nil {
		record.EndTime = &r.EndTime.Date
	}
	if r.CreatedDate != nil {
		record.CreatedDate = &r.CreatedDate.Date
	}

	return record
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

func (a *LookerAdapter) GetLocations(ctx context.Context) ([]string, error) {
	a.logger.Info("looker.locations.fetch", out.LogFields{})

	query := nurl.Values{}
	query.Set("limit", "-1")
	query.Set("fields", "locations.name")

	rows, err := a.runLook(ctx, "locations", query)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	locations := make([]string, 0)
	for _, row := range rows {
		if row.Location == nil || *row.Location == "" {
			continue
		}
		if _, ok := seen[*row.Location]; ok {
			continue
		}
		seen[*row.Location] = struct{}{}
		locations = append(locations, *row.Location)
	}
	sort.Strings(locations)

	a.logger.Debug("looker.locations.fetch_success", out.LogFields{
		"count": len(locations),
	})

	return locations, nil
}

func (a *LookerAdapter) GetAppointmentRecords(ctx context.Context, location string) ([]domain.AppointmentRecord, error) {
	a.logger.Info("looker.appointments.fetch", out.LogFields{
		"location": location,
	})

	query := nurl.Values{}
	query.Set("limit", "-1")
	query.Set("filter", "locations.name:"+location)

	rows, err := a.runLook(ctx, "appointments", query)
	if err != nil {
		return nil, err
	}

	records := make([]domain.AppointmentRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.toRecord())
	}

	a.logger.Debug("looker.appointments.fetch_success", out.LogFields{
		"location": location,
		"count":    len(records),
	})

	return records, nil
}

func (a *LookerAdapter) runLook(ctx context.Context, operation string, query nurl.Values) ([]lookRow, error) {
	started := time.Now()

	rows, err := a.doRunLook(ctx, query, false)

	metrics.RecordLookerRequestDuration(operation, time.Since(started).Seconds())
	if err != nil {
		metrics.RecordLookerRequest(operation, "error")
		return nil, err
	}
	metrics.RecordLookerRequest(operation, "ok")

	return rows, nil
}

func (a *LookerAdapter) doRunLook(ctx context.Context, query nurl.Values, retried bool) ([]lookRow, error) {
	token, err := a.ensureToken(ctx)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/looks/%s/run/json", a.baseURL, a.lookID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &domain.UpstreamError{Op: "looker.run_look", Err: err}
	}

	req.URL.RawQuery = query.Encode()
	req.Header.Set("Authorization", "token "+token)

	resp, err := a.client.Do(req)
	if err != nil {
		a.logger.Error("looker.run_look.fetch_failed", out.LogFields{
			"error": err.Error(),
		})
		return nil, &domain.UpstreamError{Op: "looker.run_look", Err: err}
	}
	defer resp.Body.Close()

	// A stale token earns one fresh login and retry
	if resp.StatusCode == http.StatusUnauthorized && !retried {
		a.invalidateToken()
		return a.doRunLook(ctx, query, true)
	}

	if resp.StatusCode != http.StatusOK {
		a.logger.Error("looker.run_look.fetch_failed", out.LogFields{
			"status": resp.StatusCode,
		})
		return nil, &domain.UpstreamError{Op: "looker.run_look", Err: fmt.Errorf("unexpected status code: %d", resp.StatusCode)}
	}

	var rows []lookRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		a.logger.Error("looker.run_look.decode_failed", out.LogFields{
			"error": err.Error(),
		})
		return nil, &domain.UpstreamError{Op: "looker.run_look", Err: err}
	}

	return rows, nil
}

func (a *LookerAdapter) ensureToken(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.accessToken != "" && time.Now().Before(a.tokenExpiry) {
		return a.accessToken, nil
	}

	return a.login(ctx)
}

func (a *LookerAdapter) invalidateToken() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.accessToken = ""
}

// login must be called with the mutex held.
func (a *LookerAdapter) login(ctx context.Context) (string, error) {
	a.logger.Info("looker.login", out.LogFields{})

	form := nurl.Values{}
	form.Set("client_id", a.clientID)
	form.Set("client_secret", a.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/login", strings.NewReader(form.Encode()))
	if err != nil {
		return "", &domain.UpstreamError{Op: "looker.login", Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.client.Do(req)
	if err != nil {
		a.logger.Error("looker.login_failed", out.LogFields{
			"error": err.Error(),
		})
		return "", &domain.UpstreamError{Op: "looker.login", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		a.logger.Error("looker.login_failed", out.LogFields{
			"status": resp.StatusCode,
		})
		return "", &domain.UpstreamError{Op: "looker.login", Err: fmt.Errorf("unexpected status code: %d", resp.StatusCode)}
	}

	var login loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&login); err != nil {
		a.logger.Error("looker.login.decode_failed", out.LogFields{
			"error": err.Error(),
		})
		return "", &domain.UpstreamError{Op: "looker.login", Err: err}
	}
	if login.AccessToken == "" {
		return "", &domain.UpstreamError{Op: "looker.login", Err: fmt.Errorf("empty access token")}
	}

	a.accessToken = login.AccessToken

	// Refresh a minute before Looker expires the token
	expires := time.Duration(login.ExpiresIn) * time.Second
	if expires <= time.Minute {
		expires = time.Hour
	}
	a.tokenExpiry = time.Now().Add(expires - time.Minute)

	a.logger.Debug("looker.login_success", out.LogFields{
		"expiresIn": login.ExpiresIn,
	})

	return a.accessToken, nil
}
