package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/billfold/internal/auth/domain"
	authlocal "github.com/smallbiznis/billfold/internal/auth/local"
	"github.com/smallbiznis/billfold/internal/auth/session"
	"github.com/smallbiznis/billfold/internal/config"
	customerdomain "github.com/smallbiznis/billfold/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/billfold/internal/invoice/domain"
	"go.uber.org/zap"
)

const testSessionToken = "session-token"

type fakeInvoiceService struct {
	listResp      invoicedomain.ListInvoiceResponse
	summary       invoicedomain.Summary
	createOutcome invoicedomain.Outcome
	updateOutcome invoicedomain.Outcome
	deleteOutcome invoicedomain.Outcome

	lastForm url.Values
	lastID   snowflake.ID
}

func (f *fakeInvoiceService) List(ctx context.Context, req invoicedomain.ListInvoiceRequest) (invoicedomain.ListInvoiceResponse, error) {
	_ = ctx
	_ = req
	return f.listResp, nil
}

func (f *fakeInvoiceService) GetByID(ctx context.Context, id string) (invoicedomain.Invoice, error) {
	_ = ctx
	_ = id
	return invoicedomain.Invoice{}, invoicedomain.ErrNotFound
}

func (f *fakeInvoiceService) Summary(ctx context.Context) (invoicedomain.Summary, error) {
	_ = ctx
	return f.summary, nil
}

func (f *fakeInvoiceService) Create(ctx context.Context, form url.Values) invoicedomain.Outcome {
	_ = ctx
	f.lastForm = form
	return f.createOutcome
}

func (f *fakeInvoiceService) Update(ctx context.Context, id snowflake.ID, form url.Values) invoicedomain.Outcome {
	_ = ctx
	f.lastID = id
	f.lastForm = form
	return f.updateOutcome
}

func (f *fakeInvoiceService) Delete(ctx context.Context, id snowflake.ID) invoicedomain.Outcome {
	_ = ctx
	f.lastID = id
	return f.deleteOutcome
}

type fakeCustomerService struct {
	listResp customerdomain.ListCustomerResponse
}

func (f *fakeCustomerService) Create(ctx context.Context, req customerdomain.CreateCustomerRequest) (customerdomain.Customer, error) {
	_ = ctx
	_ = req
	return customerdomain.Customer{}, nil
}

func (f *fakeCustomerService) List(ctx context.Context, req customerdomain.ListCustomerRequest) (customerdomain.ListCustomerResponse, error) {
	_ = ctx
	_ = req
	return f.listResp, nil
}

func (f *fakeCustomerService) GetByID(ctx context.Context, id string) (customerdomain.Customer, error) {
	_ = ctx
	_ = id
	return customerdomain.Customer{}, customerdomain.ErrNotFound
}

type fakeAuthService struct {
	loginErr error
	user     authdomain.User
}

func (f *fakeAuthService) CreateUser(ctx context.Context, req authdomain.CreateUserRequest) (*authdomain.User, error) {
	_ = ctx
	_ = req
	return &f.user, nil
}

func (f *fakeAuthService) Login(ctx context.Context, req authdomain.LoginRequest) (*authdomain.LoginResult, error) {
	_ = ctx
	_ = req
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &authdomain.LoginResult{
		User:      &f.user,
		RawToken:  testSessionToken,
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}, nil
}

func (f *fakeAuthService) Logout(ctx context.Context, rawToken string) error {
	_ = ctx
	_ = rawToken
	return nil
}

func (f *fakeAuthService) Authenticate(ctx context.Context, rawToken string) (*authdomain.User, error) {
	_ = ctx
	if rawToken != testSessionToken {
		return nil, authdomain.ErrSessionNotFound
	}
	return &f.user, nil
}

type fakePageCache struct {
	pages map[string][]byte
}

func newFakePageCache() *fakePageCache {
	return &fakePageCache{pages: map[string][]byte{}}
}

func (f *fakePageCache) Get(ctx context.Context, path string) ([]byte, bool, error) {
	_ = ctx
	payload, ok := f.pages[path]
	return payload, ok, nil
}

func (f *fakePageCache) Set(ctx context.Context, path string, payload []byte, ttl time.Duration) error {
	_ = ctx
	_ = ttl
	f.pages[path] = payload
	return nil
}

func (f *fakePageCache) Invalidate(ctx context.Context, path string) error {
	_ = ctx
	delete(f.pages, path)
	return nil
}

type testEnv struct {
	srv        *Server
	invoiceSvc *fakeInvoiceService
	authsvc    *fakeAuthService
	cache      *fakePageCache
}

func newTestServer(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{Environment: "test"}
	sessions := session.NewManager(cfg)
	authsvc := &fakeAuthService{user: authdomain.User{ID: snowflake.ID(200), Email: "owner@example.com"}}
	invoiceSvc := &fakeInvoiceService{}
	cache := newFakePageCache()

	r := gin.New()
	r.Use(ErrorHandlingMiddleware())

	srv := &Server{
		engine:      r,
		cfg:         cfg,
		log:         zap.NewNop(),
		authsvc:     authsvc,
		localAuth:   authlocal.NewHandler(authsvc, sessions, zap.NewNop()),
		sessions:    sessions,
		customerSvc: &fakeCustomerService{},
		invoiceSvc:  invoiceSvc,
		pageCache:   cache,
		display:     config.StaticDisplayConfigHolder(config.DefaultDisplayConfig()),
	}
	srv.registerAuthRoutes()
	srv.registerDashboardRoutes()

	return &testEnv{srv: srv, invoiceSvc: invoiceSvc, authsvc: authsvc, cache: cache}
}

func (e *testEnv) do(t *testing.T, method, target string, body string, authed bool, contentType string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Buffer
	if body == "" {
		reader = bytes.NewBufferString("")
	} else {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if authed {
		req.AddCookie(&http.Cookie{Name: e.srv.sessions.CookieName(), Value: testSessionToken})
	}
	resp := httptest.NewRecorder()
	e.srv.engine.ServeHTTP(resp, req)
	return resp
}

func decodeBody(t *testing.T, resp *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body %q: %v", resp.Body.String(), err)
	}
	return body
}

func TestDashboardRequiresSession(t *testing.T) {
	env := newTestServer(t)

	resp := env.do(t, http.MethodGet, "/dashboard/invoices", "", false, "")
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", resp.Code)
	}
}

func TestCreateInvoiceRedirects(t *testing.T) {
	env := newTestServer(t)
	env.invoiceSvc.createOutcome = invoicedomain.Outcome{RedirectTo: invoicedomain.ListingPath}

	form := url.Values{}
	form.Set("customerId", snowflake.ID(42).String())
	form.Set("amount", "12.50")
	form.Set("status", "pending")

	resp := env.do(t, http.MethodPost, "/dashboard/invoices", form.Encode(), true, "application/x-www-form-urlencoded")
	if resp.Code != http.StatusSeeOther {
		t.Fatalf("expected status 303, got %d", resp.Code)
	}
	if loc := resp.Header().Get("Location"); loc != invoicedomain.ListingPath {
		t.Fatalf("expected redirect to %s, got %q", invoicedomain.ListingPath, loc)
	}
	if env.invoiceSvc.lastForm.Get("amount") != "12.50" {
		t.Fatalf("expected submitted form to reach the service, got %v", env.invoiceSvc.lastForm)
	}
}

func TestCreateInvoiceValidationFailure(t *testing.T) {
	env := newTestServer(t)
	errs := invoicedomain.FieldErrors{}
	errs[invoicedomain.FieldCustomerID] = []string{invoicedomain.MsgSelectCustomer}
	errs[invoicedomain.FieldAmount] = []string{invoicedomain.MsgAmountTooSmall}
	errs[invoicedomain.FieldStatus] = []string{invoicedomain.MsgSelectStatus}
	env.invoiceSvc.createOutcome = invoicedomain.Outcome{
		Message: invoicedomain.MsgCreateMissingFields,
		Errors:  errs,
	}

	resp := env.do(t, http.MethodPost, "/dashboard/invoices", "", true, "application/x-www-form-urlencoded")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}

	body := decodeBody(t, resp)
	if body["message"] != invoicedomain.MsgCreateMissingFields {
		t.Fatalf("expected missing fields message, got %v", body["message"])
	}
	fields, ok := body["errors"].(map[string]any)
	if !ok || len(fields) != 3 {
		t.Fatalf("expected three field errors, got %v", body["errors"])
	}
}

func TestCreateInvoiceStorageFailure(t *testing.T) {
	env := newTestServer(t)
	env.invoiceSvc.createOutcome = invoicedomain.Outcome{
		Message:       invoicedomain.MsgCreateFailed,
		StorageFailed: true,
	}

	resp := env.do(t, http.MethodPost, "/dashboard/invoices", "", true, "application/x-www-form-urlencoded")
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", resp.Code)
	}
	if body := decodeBody(t, resp); body["message"] != invoicedomain.MsgCreateFailed {
		t.Fatalf("expected storage failure message, got %v", body["message"])
	}
}

func TestDeleteInvoiceConfirmsInPlace(t *testing.T) {
	env := newTestServer(t)
	env.invoiceSvc.deleteOutcome = invoicedomain.Outcome{Message: invoicedomain.MsgDeleted}

	id := snowflake.ID(77)
	resp := env.do(t, http.MethodDelete, "/dashboard/invoices/"+id.String(), "", true, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if body := decodeBody(t, resp); body["message"] != invoicedomain.MsgDeleted {
		t.Fatalf("expected delete confirmation, got %v", body["message"])
	}
	if env.invoiceSvc.lastID != id {
		t.Fatalf("expected delete of %s, got %s", id, env.invoiceSvc.lastID)
	}
}

func TestUpdateInvoiceRejectsMalformedID(t *testing.T) {
	env := newTestServer(t)

	resp := env.do(t, http.MethodPost, "/dashboard/invoices/not-a-number", "", true, "application/x-www-form-urlencoded")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "invalid_id") {
		t.Fatalf("expected invalid_id error, got %s", resp.Body.String())
	}
}

func TestListInvoicesServedFromCache(t *testing.T) {
	env := newTestServer(t)
	cached := []byte(`{"data":{"invoices":[],"page":1}}`)
	env.cache.pages[invoicedomain.ListingPath] = cached

	resp := env.do(t, http.MethodGet, "/dashboard/invoices", "", true, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if resp.Body.String() != string(cached) {
		t.Fatalf("expected cached payload, got %s", resp.Body.String())
	}
}

func TestListInvoicesSearchBypassesCache(t *testing.T) {
	env := newTestServer(t)
	env.cache.pages[invoicedomain.ListingPath] = []byte(`{"stale":true}`)

	resp := env.do(t, http.MethodGet, "/dashboard/invoices?query=acme", "", true, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if strings.Contains(resp.Body.String(), "stale") {
		t.Fatalf("expected a fresh listing, got %s", resp.Body.String())
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	env := newTestServer(t)
	env.authsvc.loginErr = authdomain.ErrInvalidCredentials

	resp := env.do(t, http.MethodPost, "/auth/login", `{"email":"owner@example.com","password":"wrong"}`, false, "application/json")
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", resp.Code)
	}
	if body := decodeBody(t, resp); body["message"] != authlocal.MsgInvalidCredentials {
		t.Fatalf("expected %q, got %v", authlocal.MsgInvalidCredentials, body["message"])
	}
}

func TestLoginOtherAuthFailure(t *testing.T) {
	env := newTestServer(t)
	env.authsvc.loginErr = authdomain.ErrSessionExpired

	resp := env.do(t, http.MethodPost, "/auth/login", `{"email":"owner@example.com","password":"pw"}`, false, "application/json")
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", resp.Code)
	}
	if body := decodeBody(t, resp); body["message"] != authlocal.MsgSomethingWentWrong {
		t.Fatalf("expected %q, got %v", authlocal.MsgSomethingWentWrong, body["message"])
	}
}

func TestLoginUnrecognizedErrorPropagates(t *testing.T) {
	env := newTestServer(t)
	env.authsvc.loginErr = context.DeadlineExceeded

	resp := env.do(t, http.MethodPost, "/auth/login", `{"email":"owner@example.com","password":"pw"}`, false, "application/json")
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "internal_error") {
		t.Fatalf("expected the generic error envelope, got %s", resp.Body.String())
	}
	if strings.Contains(resp.Body.String(), authlocal.MsgSomethingWentWrong) {
		t.Fatalf("expected the raw error not to be classified, got %s", resp.Body.String())
	}
}

func TestLoginSetsSessionCookie(t *testing.T) {
	env := newTestServer(t)

	resp := env.do(t, http.MethodPost, "/auth/login", `{"email":"owner@example.com","password":"pw"}`, false, "application/json")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}

	cookies := resp.Result().Cookies()
	var found bool
	for _, cookie := range cookies {
		if cookie.Name == env.srv.sessions.CookieName() && cookie.Value == testSessionToken {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a session cookie, got %v", cookies)
	}
}

func TestDashboardSummary(t *testing.T) {
	env := newTestServer(t)
	env.invoiceSvc.summary = invoicedomain.Summary{
		InvoiceCount:  13,
		CustomerCount: 6,
		PaidCents:     117932,
		PendingCents:  86500,
	}

	resp := env.do(t, http.MethodGet, "/dashboard", "", true, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}

	body := decodeBody(t, resp)
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected summary payload, got %v", body)
	}
	if data["invoice_count"] != float64(13) || data["paid"] != float64(117932) {
		t.Fatalf("unexpected summary: %v", data)
	}
}
