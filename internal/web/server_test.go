package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/controltower/internal/auth"
	"github.com/JonMunkholm/controltower/internal/config"
	"github.com/JonMunkholm/controltower/internal/core"
	_ "github.com/JonMunkholm/controltower/internal/core/trackers"
	"github.com/JonMunkholm/controltower/internal/ingest/ingesttest"
	"github.com/JonMunkholm/controltower/internal/store"
	"github.com/JonMunkholm/controltower/internal/store/storetest"
	"github.com/JonMunkholm/controltower/internal/web"
)

const (
	adminEmail    = "admin@tower.test"
	adminPassword = "admin-secret"
)

var cheapParams = auth.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

var infraHeader = []any{"Infra Phase", "Task Name", "Status", "% Complete", "Start Date", "End Date", "Owner", "Customer Name"}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:           "127.0.0.1",
			Port:           0,
			RequestTimeout: 30 * time.Second,
			AllowedOrigins: []string{"*"},
		},
		Upload: config.UploadConfig{MaxFileSize: 5 << 20},
		Security: config.SecurityConfig{
			AuthRequired: true,
		},
		Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}
}

type harness struct {
	t       *testing.T
	svc     *core.Service
	st      *store.Store
	handler http.Handler
}

func newHarness(t *testing.T, mutate func(*config.Config), opts ...web.Option) *harness {
	t.Helper()
	cfg := testConfig()
	if mutate != nil {
		mutate(cfg)
	}

	st := storetest.New(t)

	// Each reading advances a second so history rows order deterministically.
	var mu sync.Mutex
	tick := time.Now().UTC()
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		tick = tick.Add(time.Second)
		return tick
	}

	svc := core.NewService(st, core.ServiceConfig{},
		core.WithClock(clock),
		core.WithPasswordParams(cheapParams),
	)
	require.NoError(t, svc.EnsureAdmin(context.Background(), "Admin", adminEmail, adminPassword))

	return &harness{t: t, svc: svc, st: st, handler: web.NewServer(svc, cfg, opts...).Router()}
}

// legacy builds a harness with AUTH_REQUIRED=false.
func legacy(t *testing.T) *harness {
	return newHarness(t, func(c *config.Config) { c.Security.AuthRequired = false })
}

func (h *harness) do(method, path, token string, body any) *httptest.ResponseRecorder {
	h.t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(h.t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func (h *harness) upload(path, token, name string, data []byte) *httptest.ResponseRecorder {
	h.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if data != nil {
		fw, err := mw.CreateFormFile("file", name)
		require.NoError(h.t, err)
		_, err = fw.Write(data)
		require.NoError(h.t, err)
	}
	require.NoError(h.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

// login signs in and returns the session token.
func (h *harness) login(email, password string) string {
	h.t.Helper()
	rec := h.do(http.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(h.t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode[map[string]any](h.t, rec)
	token, _ := body["token"].(string)
	require.NotEmpty(h.t, token)
	return token
}

// signIn creates an approved account with a password and signs it in.
func (h *harness) signIn(role core.Role, email, customer string) string {
	h.t.Helper()
	ctx := context.Background()
	res, err := h.svc.Signup(ctx, role, core.SignupInput{Name: "User", Email: email, CustomerName: customer})
	require.NoError(h.t, err)
	_, err = h.svc.ApproveUser(ctx, res.ID, "")
	require.NoError(h.t, err)
	_, err = h.svc.SetPasswordFirst(ctx, core.PasswordInput{Email: email, Password: "pw-" + email})
	require.NoError(h.t, err)
	return h.login(email, "pw-"+email)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[web.ErrorResponse](t, rec).Error
}

func infraWorkbook(t *testing.T, rows ...[]any) []byte {
	return ingesttest.Single(t, append([][]any{infraHeader}, rows...)...)
}

func TestHealth(t *testing.T) {
	h := newHarness(t, nil)

	rec := h.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestTrackerRoutesRequireSession(t *testing.T) {
	h := newHarness(t, nil)

	for _, path := range []string{"/tasks", "/infra-tasks", "/ta/tracker", "/ta/dashboard", "/excel/history", "/"} {
		rec := h.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	rec := h.do(http.MethodGet, "/tasks", "not-a-session", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token := h.login(adminEmail, adminPassword)
	rec = h.do(http.MethodGet, "/tasks", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestReplaceInfra(t *testing.T) {
	h := legacy(t)

	rec := h.upload("/excel/infra-replace", "", "infra.xlsx", infraWorkbook(t,
		[]any{"Network", "Racks", "Done", 100, "2026-01-05", "2026-01-09", "Ops", "Acme"},
		[]any{"Network", "Cabling", "", 40, "2026-01-06", "", "Ops", "Acme"},
	))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode[map[string]any](t, rec)
	assert.Equal(t, "Infra Excel replaced successfully", body["message"])
	assert.Equal(t, 0.0, body["deleted"])
	assert.Equal(t, 2.0, body["inserted"])
	assert.Equal(t, 2.0, body["rowsRead"])
	assert.Equal(t, "customer:Acme", body["scope"])
	assert.NotEmpty(t, body["runId"])

	rec = h.do(http.MethodGet, "/infra-tasks?customerName=Acme", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tasks := decode[[]core.InfraTask](t, rec)
	require.Len(t, tasks, 2)
	assert.Equal(t, "Planned", tasks[1].Status)
}

func TestReplaceTAReportsNestedCounts(t *testing.T) {
	h := legacy(t)

	data := ingesttest.Workbook(t,
		ingesttest.Sheet{Name: "Open_Requisition_Tracker", Rows: [][]any{
			{"Job ID", "Job Title", "Open Positions", "Status", "Customer Name"},
			{"R1", "Go Engineer", 2, "Open", "Acme"},
		}},
		ingesttest.Sheet{Name: "Candidate_Pipeline", Rows: [][]any{
			{"Job ID", "Candidate Name", "Recruiter", "Customer Name"},
			{"R1", "Ann", "Raj", "Acme"},
		}},
	)
	rec := h.upload("/excel/ta-replace?customerName=Acme", "", "ta.xlsx", data)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Message  string           `json:"message"`
		Deleted  map[string]int64 `json:"deleted"`
		Inserted map[string]int64 `json:"inserted"`
		RowsRead *int             `json:"rowsRead"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "TA tracker data replaced from Excel", body.Message)
	assert.Equal(t, map[string]int64{
		"requisitions": 1, "candidates": 1, "interviews": 0, "offers": 0, "joiners": 0,
	}, body.Inserted)
	assert.Len(t, body.Deleted, 5)
	assert.Nil(t, body.RowsRead)

	rec = h.do(http.MethodGet, "/ta/tracker?customerName=Acme", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tracker := decode[core.TATrackerData](t, rec)
	require.Len(t, tracker.Candidates, 1)
	assert.Equal(t, "R1-Ann", tracker.Candidates[0].CandidateID)
}

func TestReplaceRejections(t *testing.T) {
	h := legacy(t)
	acme := infraWorkbook(t, []any{"Network", "Racks", "Done", 100, "2026-01-05", "2026-01-09", "Ops", "Acme"})

	tests := []struct {
		name   string
		path   string
		data   []byte
		status int
		error  string
	}{
		{"no file", "/excel/infra-replace", nil, http.StatusBadRequest, "No file uploaded"},
		{"not a workbook", "/excel/replace", []byte("hello, world"), http.StatusBadRequest, "Uploaded file is not an Excel workbook (.xlsx)"},
		{"header only", "/excel/infra-replace", infraWorkbook(t), http.StatusBadRequest, "Excel has no data rows"},
		{"scope mismatch", "/excel/infra-replace?customerName=Globex", acme, http.StatusBadRequest,
			"This Excel looks to be for customer(s): Acme, but you are currently viewing 'Globex'. " +
				"Please go back to the customer selection page and choose the matching customer before uploading."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := h.upload(tt.path, "", "file.xlsx", tt.data)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.error, errorOf(t, rec))
		})
	}

	rec := h.do(http.MethodGet, "/infra-tasks", "", nil)
	assert.JSONEq(t, "[]", rec.Body.String(), "nothing written")
}

func TestReplaceRejectsOversizedUpload(t *testing.T) {
	h := newHarness(t, func(c *config.Config) {
		c.Security.AuthRequired = false
		c.Upload.MaxFileSize = 1024
	})

	rec := h.upload("/excel/replace", "", "big.xlsx", bytes.Repeat([]byte("x"), 4096))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestCustomerSessionIsPinnedToItsCustomer(t *testing.T) {
	h := newHarness(t, nil)
	token := h.signIn(core.RoleCustomer, "cust@acme.test", "Acme")

	rec := h.do(http.MethodGet, "/tasks?customerName=Globex", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Viewing other customers is not allowed", errorOf(t, rec))

	rec = h.do(http.MethodPost, "/infra-tasks", token, map[string]any{
		"taskName": "Racks", "customerName": "Globex",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[core.InfraTask](t, rec)
	require.NotNil(t, created.CustomerName)
	assert.Equal(t, "Acme", *created.CustomerName)

	program := ingesttest.Single(t, []any{"Workstream", "Deliverable"}, []any{"Data", "Lake"})
	rec = h.upload("/excel/replace", token, "program.xlsx", program)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// An employee sees every customer unless they pick one.
	staff := h.signIn(core.RoleEmployee, "staff@tower.test", "")
	rec = h.do(http.MethodGet, "/infra-tasks", staff, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]core.InfraTask](t, rec), 1)
	rec = h.do(http.MethodGet, "/infra-tasks?customerName=Globex", staff, nil)
	assert.Len(t, decode[[]core.InfraTask](t, rec), 0)
}

func TestInfraTaskCRUD(t *testing.T) {
	h := legacy(t)

	rec := h.do(http.MethodPost, "/infra-tasks", "", map[string]any{
		"infraPhase": "DC", "taskName": "Power", "percentComplete": 20,
		"startDate": "", "endDate": "2026-02-10",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	task := decode[core.InfraTask](t, rec)
	assert.Equal(t, "Planned", task.Status)
	assert.Equal(t, time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC), task.StartDate.UTC())

	path := "/infra-tasks/" + itoa(task.ID)
	rec = h.do(http.MethodPut, path, "", map[string]any{
		"infraPhase": "DC", "taskName": "Power", "status": "Done", "percentComplete": 100,
		"startDate": "2026-02-01T00:00:00Z",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[core.InfraTask](t, rec)
	assert.Equal(t, "Done", updated.Status)
	assert.Nil(t, updated.EndDate)

	rec = h.do(http.MethodPut, path, "", map[string]any{"percentComplete": 150})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "percentComplete: must be at most 100", errorOf(t, rec))

	rec = h.do(http.MethodPut, path, "", map[string]any{"percentComplete": "lots"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(http.MethodDelete, path, "", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = h.do(http.MethodDelete, path, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.do(http.MethodDelete, "/infra-tasks/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProgramTaskDerivesDuration(t *testing.T) {
	h := legacy(t)

	rec := h.do(http.MethodPost, "/tasks", "", map[string]any{
		"workstream": "Apps", "deliverable": "Portal",
		"startDate": "2026-03-01", "endDate": "2026-03-04T12:00:00Z",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	task := decode[core.ProgramTask](t, rec)
	assert.Equal(t, 4, task.Duration)
	assert.Equal(t, "WIP", task.Status)

	rec = h.do(http.MethodPost, "/tasks", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Request body is required", errorOf(t, rec))
}

func TestTARecordRoutes(t *testing.T) {
	h := legacy(t)

	rec := h.do(http.MethodPost, "/ta/candidates", "", map[string]any{
		"requisitionId": " R7 ", "candidateName": "Ann",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "R7-Ann", decode[core.Candidate](t, rec).CandidateID)

	rec = h.do(http.MethodPost, "/ta/candidates", "", map[string]any{"requisitionId": "R7"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "candidateName: is required", errorOf(t, rec))

	rec = h.do(http.MethodGet, "/ta/requisitions", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = h.do(http.MethodGet, "/ta/dashboard", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	dash := decode[core.TADashboard](t, rec)
	assert.Equal(t, 0, dash.Tiles.TotalApprovedDemand)
	assert.Len(t, dash.RecruiterPerformance, 1)
}

func TestAuthLifecycle(t *testing.T) {
	h := newHarness(t, nil)

	rec := h.do(http.MethodPost, "/auth/signup/employee", "", map[string]string{"name": "Eve", "email": " Eve@Tower.test "})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	signup := decode[core.SignupResult](t, rec)
	assert.Equal(t, "eve@tower.test", signup.Email)
	assert.Equal(t, core.StatusPending, signup.Status)

	rec = h.do(http.MethodPost, "/auth/signup/customer", "", map[string]string{"name": "Cy", "email": "cy@acme.test"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "eve@tower.test", "password": "x"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Your account is pending approval", errorOf(t, rec))

	admin := h.login(adminEmail, adminPassword)
	rec = h.do(http.MethodGet, "/auth/users/pending", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	pending := decode[[]core.User](t, rec)
	require.Len(t, pending, 1)

	rec = h.do(http.MethodPost, "/auth/users/"+itoa(signup.ID)+"/approve", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, core.StatusApproved, decode[core.User](t, rec).Status)

	rec = h.do(http.MethodPost, "/auth/set-password-first", "", map[string]string{"email": "eve@tower.test", "password": "hunter22"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Cookie based session.
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"eve@tower.test","password":"hunter22"}`))
	login := httptest.NewRecorder()
	h.handler.ServeHTTP(login, req)
	require.Equal(t, http.StatusOK, login.Code)
	cookies := login.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "ct_session", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	me := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	me.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	h.handler.ServeHTTP(rec, me)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "eve@tower.test", decode[core.User](t, rec).Email)
	assert.NotContains(t, rec.Body.String(), "argon2id")

	rec = h.do(http.MethodGet, "/auth/users/pending", cookies[0].Value, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code, "employees are not admins")

	rec = h.do(http.MethodPost, "/auth/logout", cookies[0].Value, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = h.do(http.MethodGet, "/auth/me", cookies[0].Value, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPasswordResetRoutes(t *testing.T) {
	h := newHarness(t, nil)
	h.signIn(core.RoleEmployee, "eve@tower.test", "")

	rec := h.do(http.MethodPost, "/auth/reset/info", "", map[string]string{"email": "nobody@tower.test"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"exists":false}`, rec.Body.String())

	rec = h.do(http.MethodPost, "/auth/reset/generate-token", "", map[string]string{"email": "eve@tower.test"})
	require.Equal(t, http.StatusOK, rec.Code)
	token := decode[core.ResetToken](t, rec).ResetToken
	assert.Len(t, token, 32)

	rec = h.do(http.MethodPost, "/auth/reset/confirm", "", map[string]string{"email": "eve@tower.test", "newPassword": "n3w"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Old password or reset token is required", errorOf(t, rec))

	rec = h.do(http.MethodPost, "/auth/reset/confirm", "", map[string]string{
		"email": "eve@tower.test", "newPassword": "n3w", "resetToken": token,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	h.login("eve@tower.test", "n3w")
}

func TestHistoryRoutes(t *testing.T) {
	h := legacy(t)

	h.upload("/excel/infra-replace", "", "a.xlsx", infraWorkbook(t, []any{"N", "Racks", "", 1, "", "", "", "Acme"}))
	h.upload("/excel/infra-replace?customerName=Globex", "", "b.xlsx", infraWorkbook(t, []any{"N", "Racks", "", 1, "", "", "", "Acme"}))

	rec := h.do(http.MethodGet, "/excel/history", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	runs := decode[[]core.IngestRun](t, rec)
	require.Len(t, runs, 2)

	outcomes := map[core.Outcome]core.IngestRun{}
	for _, r := range runs {
		outcomes[r.Outcome] = r
	}
	require.Contains(t, outcomes, core.OutcomeSuccess)
	require.Contains(t, outcomes, core.OutcomeRejected)

	rec = h.do(http.MethodGet, "/excel/history/"+outcomes[core.OutcomeSuccess].ID.String(), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a.xlsx", decode[core.IngestRun](t, rec).FileName)

	rec = h.do(http.MethodGet, "/excel/history?limit=1", "", nil)
	assert.Len(t, decode[[]core.IngestRun](t, rec), 1)

	rec = h.do(http.MethodGet, "/excel/history?limit=zero", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = h.do(http.MethodGet, "/excel/history/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = h.do(http.MethodGet, "/excel/history/00000000-0000-0000-0000-000000000001", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDashboardPage(t *testing.T) {
	h := newHarness(t, nil)
	customer := h.signIn(core.RoleCustomer, "cust@acme.test", "Acme")

	rec := h.do(http.MethodGet, "/", customer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	page := rec.Body.String()
	assert.Contains(t, page, "Recent uploads")
	assert.Contains(t, page, "/excel/infra-replace?customerName=Acme")
	assert.Contains(t, page, "/excel/ta-replace")
	assert.NotContains(t, page, `action="/excel/replace`, "customers cannot replace the program tracker")
}

func TestRateLimit(t *testing.T) {
	h := newHarness(t, func(c *config.Config) {
		c.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 2, UploadLimit: 1}
	})

	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/health", "", nil).Code)
	}
	rec := h.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Equal(t, "RATE001", decode[web.ErrorResponse](t, rec).Code)
}

func TestMetricsRequireAPIKey(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, "controltower_ingest_active 0\n")
	})
	h := newHarness(t, func(c *config.Config) {
		c.Security.RequireAPIKey = true
		c.Security.APIKeys = []string{"k1", "k2"}
	}, web.WithMetricsHandler(metrics))

	rec := h.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("X-API-Key", "k2")
	rec = httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "controltower_ingest_active")
}

func TestCORSPreflight(t *testing.T) {
	h := newHarness(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/tasks", nil)
	req.Header.Set("Origin", "http://portal.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	assert.Equal(t, "http://portal.test", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
