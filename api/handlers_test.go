package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/warp/leave-ledger/advisor"
	"github.com/warp/leave-ledger/api"
	"github.com/warp/leave-ledger/config"
	"github.com/warp/leave-ledger/ledger"
	"github.com/warp/leave-ledger/store/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

type testEnv struct {
	server *httptest.Server
	ledger *ledger.Ledger
}

func newTestEnv(t *testing.T, enforcement string, advisorClient *advisor.Client) *testEnv {
	t.Helper()

	l, err := ledger.New(context.Background(), memory.New(), nil, zap.NewNop())
	require.NoError(t, err)

	// Drop the seeded defaults so business-day expectations are exact.
	for _, h := range l.Holidays() {
		require.NoError(t, l.RemoveHoliday(context.Background(), h.ID))
	}

	handler := api.NewHandler(l, advisorClient, enforcement, zap.NewNop())
	server := httptest.NewServer(api.NewRouter(handler))
	t.Cleanup(server.Close)

	return &testEnv{server: server, ledger: l}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, e.server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// =============================================================================
// LEAVE ENDPOINTS
// =============================================================================

func TestCreateLeave_HappyPath(t *testing.T) {
	env := newTestEnv(t, config.EnforcementWarn, nil)

	resp := env.do(t, http.MethodPost, "/api/leaves", api.CreateLeaveRequest{
		Type:        "VACATION",
		StartDate:   "2024-07-01",
		EndDate:     "2024-07-05",
		Description: "summer break",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	created := decode[api.CreateLeaveResponse](t, resp)
	assert.Equal(t, 5, created.Entry.Days)
	assert.Equal(t, "Jul 1 - Jul 5, 2024", created.Entry.DateRange)
	assert.Nil(t, created.Warning)
}

func TestCreateLeave_Validation(t *testing.T) {
	env := newTestEnv(t, config.EnforcementWarn, nil)

	tests := []struct {
		name string
		req  api.CreateLeaveRequest
	}{
		{"unknown type", api.CreateLeaveRequest{Type: "SABBATICAL", StartDate: "2024-07-01", EndDate: "2024-07-05"}},
		{"missing start", api.CreateLeaveRequest{Type: "VACATION", EndDate: "2024-07-05"}},
		{"malformed start", api.CreateLeaveRequest{Type: "VACATION", StartDate: "07/01/2024", EndDate: "2024-07-05"}},
		{"start after end", api.CreateLeaveRequest{Type: "VACATION", StartDate: "2024-07-05", EndDate: "2024-07-01"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.do(t, http.MethodPost, "/api/leaves", tt.req)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}

	assert.Empty(t, env.ledger.Entries(), "no entry may be created by an invalid request")
}

func TestCreateLeave_WarnEnforcementAttachesWarning(t *testing.T) {
	// GIVEN: 20 vacation days remaining and an entry worth 23 business days
	// WHEN: Enforcement is "warn"
	// THEN: The entry is created and the response carries a warning

	env := newTestEnv(t, config.EnforcementWarn, nil)

	resp := env.do(t, http.MethodPost, "/api/leaves", api.CreateLeaveRequest{
		Type:      "VACATION",
		StartDate: "2024-07-01",
		EndDate:   "2024-07-31",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	created := decode[api.CreateLeaveResponse](t, resp)
	require.NotNil(t, created.Warning)
	assert.Equal(t, 23, created.Warning.RequestedDays)
	assert.Equal(t, 20, created.Warning.RemainingDays)

	// The unclamped balance goes negative.
	quota := env.ledger.QuotaSummary()[ledger.LeaveVacation]
	assert.Equal(t, -3, quota.Remaining)
}

func TestCreateLeave_BlockEnforcementRefuses(t *testing.T) {
	env := newTestEnv(t, config.EnforcementBlock, nil)

	resp := env.do(t, http.MethodPost, "/api/leaves", api.CreateLeaveRequest{
		Type:      "VACATION",
		StartDate: "2024-07-01",
		EndDate:   "2024-07-31",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Empty(t, env.ledger.Entries())
}

func TestListLeaves_MostRecentFirst(t *testing.T) {
	env := newTestEnv(t, config.EnforcementWarn, nil)
	ctx := context.Background()

	_, err := env.ledger.AddEntry(ctx, ledger.LeaveVacation, "2024-02-05", "2024-02-06", "older")
	require.NoError(t, err)
	_, err = env.ledger.AddEntry(ctx, ledger.LeaveSick, "2024-03-04", "2024-03-04", "newer")
	require.NoError(t, err)

	resp := env.do(t, http.MethodGet, "/api/leaves", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[struct {
		Leaves []api.LeaveEntryDTO `json:"leaves"`
	}](t, resp)
	require.Len(t, body.Leaves, 2)
	assert.Equal(t, "newer", body.Leaves[0].Description)
	assert.Equal(t, "Mar 4, 2024", body.Leaves[0].DateRange)
}

func TestDeleteLeave_Idempotent(t *testing.T) {
	env := newTestEnv(t, config.EnforcementWarn, nil)

	entry, err := env.ledger.AddEntry(context.Background(), ledger.LeaveSick, "2024-03-04", "2024-03-04", "")
	require.NoError(t, err)

	resp := env.do(t, http.MethodDelete, "/api/leaves/"+entry.ID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodDelete, "/api/leaves/"+entry.ID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "repeat delete is a no-op, not an error")

	resp = env.do(t, http.MethodDelete, "/api/leaves/never-existed", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// =============================================================================
// HOLIDAY ENDPOINTS
// =============================================================================

func TestHolidayLifecycle(t *testing.T) {
	env := newTestEnv(t, config.EnforcementWarn, nil)

	resp := env.do(t, http.MethodPost, "/api/holidays", api.CreateHolidayRequest{
		Date: "2024-07-04",
		Name: "Independence Day",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	holiday := decode[api.HolidayDTO](t, resp)
	assert.NotEmpty(t, holiday.ID)

	resp = env.do(t, http.MethodGet, "/api/holidays", nil)
	body := decode[struct {
		Holidays []api.HolidayDTO `json:"holidays"`
	}](t, resp)
	require.Len(t, body.Holidays, 1)

	resp = env.do(t, http.MethodDelete, "/api/holidays/"+holiday.ID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, env.ledger.Holidays())
}

func TestCreateHoliday_Validation(t *testing.T) {
	env := newTestEnv(t, config.EnforcementWarn, nil)

	resp := env.do(t, http.MethodPost, "/api/holidays", api.CreateHolidayRequest{Name: "No Date"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/holidays", api.CreateHolidayRequest{Date: "someday", Name: "Bad Date"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSeedDefaultHolidays(t *testing.T) {
	env := newTestEnv(t, config.EnforcementWarn, nil)

	resp := env.do(t, http.MethodPost, "/api/holidays/defaults", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Len(t, env.ledger.Holidays(), 2)
}

// =============================================================================
// DERIVED STATE
// =============================================================================

func TestGetQuota(t *testing.T) {
	env := newTestEnv(t, config.EnforcementWarn, nil)

	_, err := env.ledger.AddEntry(context.Background(), ledger.LeaveVacation, "2024-07-01", "2024-07-05", "")
	require.NoError(t, err)

	resp := env.do(t, http.MethodGet, "/api/quota", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	quota := decode[map[string]ledger.Quota](t, resp)
	assert.Equal(t, ledger.Quota{Used: 5, Total: 20, Remaining: 15}, quota["VACATION"])
	assert.Equal(t, ledger.Quota{Used: 0, Total: 14, Remaining: 14}, quota["SICK"])
}

func TestGetCalendar_AnnotatedGrid(t *testing.T) {
	env := newTestEnv(t, config.EnforcementWarn, nil)
	ctx := context.Background()

	_, err := env.ledger.AddHoliday(ctx, "2024-07-04", "Independence Day")
	require.NoError(t, err)
	_, err = env.ledger.AddEntry(ctx, ledger.LeaveVacation, "2024-07-08", "2024-07-10", "")
	require.NoError(t, err)

	resp := env.do(t, http.MethodGet, "/api/calendar?month=2024-07&start=2024-07-08&end=2024-07-09", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	cal := decode[api.CalendarResponse](t, resp)
	assert.Equal(t, "2024-07", cal.Month)
	assert.Zero(t, len(cal.Days)%7)

	byDate := make(map[string]api.CalendarDayDTO, len(cal.Days))
	for _, d := range cal.Days {
		byDate[d.Date] = d
	}

	fourth := byDate["2024-07-04"]
	assert.True(t, fourth.Holiday)
	assert.Equal(t, "Independence Day", fourth.HolidayName)
	assert.True(t, fourth.InMonth)

	assert.True(t, byDate["2024-07-06"].Weekend)
	assert.False(t, byDate["2024-06-30"].InMonth, "leading day from June is out of month")

	assert.Equal(t, []string{"VACATION"}, byDate["2024-07-09"].LeaveTypes)
	assert.True(t, byDate["2024-07-08"].Selected)
	assert.True(t, byDate["2024-07-09"].Selected)
	assert.False(t, byDate["2024-07-10"].Selected)
}

func TestGetCalendar_InvalidMonth(t *testing.T) {
	env := newTestEnv(t, config.EnforcementWarn, nil)

	resp := env.do(t, http.MethodGet, "/api/calendar?month=July", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCheckRange(t *testing.T) {
	env := newTestEnv(t, config.EnforcementWarn, nil)

	// Bounds given in reverse order still define the same range.
	resp := env.do(t, http.MethodGet, "/api/range?date=2024-07-03&start=2024-07-05&end=2024-07-01", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decode[api.RangeResponse](t, resp).InRange)

	resp = env.do(t, http.MethodGet, "/api/range?date=2024-07-03&start=2024-07-04", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, decode[api.RangeResponse](t, resp).InRange)

	resp = env.do(t, http.MethodGet, "/api/range?start=2024-07-04", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// =============================================================================
// ADVICE
// =============================================================================

func TestRequestAdvice_DisabledWithoutCredential(t *testing.T) {
	env := newTestEnv(t, config.EnforcementWarn, nil)

	resp := env.do(t, http.MethodPost, "/api/advice", nil)
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	advice := decode[api.AdviceResponse](t, resp)
	assert.False(t, advice.Available)
	assert.Empty(t, advice.Suggestions)
}

func TestRequestAdvice_Success(t *testing.T) {
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		plan := `{"summary":"Plenty left.","suggestions":[{"title":"Bridge it","description":"Friday off","dates":"2024-07-05","benefit":"4-day weekend"}]}`
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"candidates":[{"content":{"parts":[{"text":%q}]}}]}`, plan)
	}))
	defer gateway.Close()

	client, err := advisor.New(gateway.URL, "test-key", "", nil)
	require.NoError(t, err)
	env := newTestEnv(t, config.EnforcementWarn, client)

	resp := env.do(t, http.MethodPost, "/api/advice", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	advice := decode[api.AdviceResponse](t, resp)
	assert.True(t, advice.Available)
	assert.True(t, advice.OK)
	assert.Equal(t, "Plenty left.", advice.Summary)
	require.Len(t, advice.Suggestions, 1)
	assert.Equal(t, "Bridge it", advice.Suggestions[0].Title)
}

func TestRequestAdvice_GatewayFailureDegrades(t *testing.T) {
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer gateway.Close()

	client, err := advisor.New(gateway.URL, "test-key", "", nil)
	require.NoError(t, err)
	env := newTestEnv(t, config.EnforcementWarn, client)

	resp := env.do(t, http.MethodPost, "/api/advice", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, "gateway failure is never surfaced as an HTTP error")

	advice := decode[api.AdviceResponse](t, resp)
	assert.True(t, advice.Available)
	assert.False(t, advice.OK)
	assert.Empty(t, advice.Suggestions)
}

func TestRequestAdvice_SingleFlight(t *testing.T) {
	// GIVEN: One advice request blocked inside the gateway
	// WHEN: A second request arrives
	// THEN: It is refused with 409 instead of duplicating the call

	entered := make(chan struct{})
	release := make(chan struct{})
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"candidates":[{"content":{"parts":[{"text":%q}]}}]}`, `{"summary":"ok","suggestions":[]}`)
	}))
	defer gateway.Close()

	client, err := advisor.New(gateway.URL, "test-key", "", nil)
	require.NoError(t, err)
	env := newTestEnv(t, config.EnforcementWarn, client)

	firstDone := make(chan int)
	go func() {
		resp, err := http.Post(env.server.URL+"/api/advice", "application/json", nil)
		if err != nil {
			firstDone <- 0
			return
		}
		defer resp.Body.Close()
		firstDone <- resp.StatusCode
	}()

	select {
	case <-entered:
	case <-time.After(5 * time.Second):
		t.Fatal("first advice request never reached the gateway")
	}

	resp := env.do(t, http.MethodPost, "/api/advice", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	close(release)
	assert.Equal(t, http.StatusOK, <-firstDone)
}
