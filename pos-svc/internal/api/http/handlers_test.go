package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpapi "overcooked-pos/pos-svc/internal/api/http"
	"overcooked-pos/pos-svc/internal/auth"
	"overcooked-pos/pos-svc/internal/domain"
	"overcooked-pos/pos-svc/internal/mocks"
	"overcooked-pos/pos-svc/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "handler-test-secret"

type testServer struct {
	router       http.Handler
	token        string
	tabs         *mocks.TabServiceInterface
	kitchen      *mocks.KitchenServiceInterface
	stock        *mocks.StockServiceInterface
	recipes      *mocks.RecipeServiceInterface
	reservations *mocks.ReservationServiceInterface
	loyalty      *mocks.LoyaltyServiceInterface
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	verifier := auth.NewVerifier(testSecret)
	token, err := verifier.Issue("tenant-a", "staff-1", "waiter", time.Hour)
	require.NoError(t, err)

	s := &testServer{
		token:        token,
		tabs:         mocks.NewTabServiceInterface(t),
		kitchen:      mocks.NewKitchenServiceInterface(t),
		stock:        mocks.NewStockServiceInterface(t),
		recipes:      mocks.NewRecipeServiceInterface(t),
		reservations: mocks.NewReservationServiceInterface(t),
		loyalty:      mocks.NewLoyaltyServiceInterface(t),
	}
	handler := httpapi.NewHandler(s.tabs, s.kitchen, s.stock, s.recipes, s.reservations, s.loyalty, nil)
	s.router = httpapi.NewRouter(handler, verifier, nil)
	return s
}

func (s *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer "+s.token)
	recorder := httptest.NewRecorder()
	s.router.ServeHTTP(recorder, req)
	return recorder
}

// asTenantA matches contexts carrying the actor from the test token.
var asTenantA = mock.MatchedBy(func(ctx context.Context) bool {
	actor, ok := domain.ActorFrom(ctx)
	return ok && actor.TenantID == "tenant-a" && actor.StaffID == "staff-1" && actor.Privilege == domain.PrivilegeStaff
})

func TestAuthMiddleware(t *testing.T) {
	s := setupTestServer(t)
	other, err := auth.NewVerifier("someone-else").Issue("tenant-a", "staff-1", "manager", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name         string
		header       string
		prepareMocks func()
		expectedCode int
	}{
		{name: "no header", expectedCode: http.StatusUnauthorized},
		{name: "not bearer", header: "Basic abc", expectedCode: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer abc.def.ghi", expectedCode: http.StatusUnauthorized},
		{name: "foreign signature", header: "Bearer " + other, expectedCode: http.StatusUnauthorized},
		{
			name:   "valid token",
			header: "Bearer " + s.token,
			prepareMocks: func() {
				s.tabs.On("ListTables", asTenantA).Return([]domain.Table{{ID: "t1", Number: 1}}, nil).Once()
			},
			expectedCode: http.StatusOK,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			if testCase.prepareMocks != nil {
				testCase.prepareMocks()
			}
			req := httptest.NewRequest("GET", "/api/tables", nil)
			if testCase.header != "" {
				req.Header.Set("Authorization", testCase.header)
			}
			recorder := httptest.NewRecorder()
			s.router.ServeHTTP(recorder, req)
			assert.Equal(t, testCase.expectedCode, recorder.Code)
			if testCase.expectedCode == http.StatusUnauthorized {
				assert.Contains(t, recorder.Body.String(), `"error":"UNAUTHORIZED"`)
			}
		})
	}
}

func TestHandler_healthCheckIsPublic(t *testing.T) {
	s := setupTestServer(t)
	req := httptest.NewRequest("GET", "/health", nil)
	recorder := httptest.NewRecorder()
	s.router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"status":"healthy"`)
}

func TestNewRouter_AllowedOrigins(t *testing.T) {
	verifier := auth.NewVerifier(testSecret)
	handler := httpapi.NewHandler(nil, nil, nil, nil, nil, nil, nil)
	router := httpapi.NewRouter(handler, verifier, nil, "https://pos.example.com")

	tests := []struct {
		name      string
		origin    string
		wantAllow string
	}{
		{name: "listed origin", origin: "https://pos.example.com", wantAllow: "https://pos.example.com"},
		{name: "foreign origin", origin: "https://evil.example.net"},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			req.Header.Set("Origin", testCase.origin)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, testCase.wantAllow, rr.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestHandler_openTable(t *testing.T) {
	s := setupTestServer(t)

	tests := []struct {
		name         string
		payload      string
		prepareMocks func()
		expectedCode int
		expectedBody string
	}{
		{
			name:    "success",
			payload: `{"party_size":4}`,
			prepareMocks: func() {
				s.tabs.On("OpenTable", asTenantA, service.OpenTableInput{TableID: "t5", PartySize: 4}).
					Return(&domain.Tab{ID: "tab-1", TableID: "t5", State: domain.TabOpen, PartySize: 4}, nil).Once()
			},
			expectedCode: http.StatusCreated,
			expectedBody: `"id":"tab-1"`,
		},
		{
			name:         "invalid_json",
			payload:      `bad json`,
			prepareMocks: func() {},
			expectedCode: http.StatusBadRequest,
			expectedBody: `"error":"INVALID_INPUT"`,
		},
		{
			name:    "table_not_free",
			payload: `{"party_size":2}`,
			prepareMocks: func() {
				s.tabs.On("OpenTable", mock.Anything, mock.Anything).
					Return(nil, domain.Conflict(domain.CodeTableNotFree, "table 5 is occupied")).Once()
			},
			expectedCode: http.StatusConflict,
			expectedBody: `"error":"TABLE_NOT_FREE"`,
		},
		{
			name:    "forbidden",
			payload: `{"party_size":2}`,
			prepareMocks: func() {
				s.tabs.On("OpenTable", mock.Anything, mock.Anything).
					Return(nil, domain.Forbidden("tenant mismatch")).Once()
			},
			expectedCode: http.StatusForbidden,
		},
		{
			name:    "internal_error_is_masked",
			payload: `{"party_size":2}`,
			prepareMocks: func() {
				s.tabs.On("OpenTable", mock.Anything, mock.Anything).
					Return(nil, errors.New("pq: connection reset by peer")).Once()
			},
			expectedCode: http.StatusInternalServerError,
			expectedBody: `"message":"internal error"`,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			testCase.prepareMocks()
			recorder := s.do("POST", "/api/tables/t5/open", testCase.payload)
			assert.Equal(t, testCase.expectedCode, recorder.Code)
			if testCase.expectedBody != "" {
				assert.Contains(t, recorder.Body.String(), testCase.expectedBody)
			}
			assert.NotContains(t, recorder.Body.String(), "pq:")
		})
	}
}

func TestHandler_addItemWarning(t *testing.T) {
	s := setupTestServer(t)
	s.tabs.On("AddLineItem", asTenantA, mock.MatchedBy(func(in service.AddItemInput) bool {
		return in.TabID == "tab-1" && in.ProductID == "wine" && in.Qty == 2
	})).Return(&service.AddItemResult{Warning: true}, nil).Once()

	recorder := s.do("POST", "/api/tabs/tab-1/items", `{"product_id":"wine","qty":2}`)

	assert.Equal(t, http.StatusCreated, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"warning":true`)
}

func TestHandler_createReservationSlotUnavailable(t *testing.T) {
	s := setupTestServer(t)
	alt := time.Date(2026, 3, 10, 17, 0, 0, 0, time.UTC)
	s.reservations.On("Create", asTenantA, mock.Anything).
		Return(nil, domain.Conflict(domain.CodeSlotUnavailable, "no table").With("alternatives", []time.Time{alt})).Once()

	recorder := s.do("POST", "/api/reservations", `{"starts_at":"2026-03-10T19:00:00Z","party_size":4,"customer_name":"Ada"}`)

	assert.Equal(t, http.StatusConflict, recorder.Code)
	var body struct {
		Error   string `json:"error"`
		Details struct {
			Alternatives []time.Time `json:"alternatives"`
		} `json:"details"`
	}
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&body))
	assert.Equal(t, domain.CodeSlotUnavailable, body.Error)
	require.Len(t, body.Details.Alternatives, 1)
	assert.True(t, alt.Equal(body.Details.Alternatives[0]))
}

func TestHandler_reservationQRCode(t *testing.T) {
	s := setupTestServer(t)
	s.reservations.On("ConfirmationQR", asTenantA, "res-1").Return([]byte("\x89PNG-bytes"), nil).Once()
	s.reservations.On("ConfirmationQR", asTenantA, "missing").
		Return(nil, domain.NotFound(domain.CodeReservationMissing, "reservation missing not found")).Once()

	recorder := s.do("GET", "/api/reservations/res-1/qrcode", "")
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "image/png", recorder.Header().Get("Content-Type"))
	assert.Equal(t, "\x89PNG-bytes", recorder.Body.String())

	recorder = s.do("GET", "/api/reservations/missing/qrcode", "")
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Contains(t, recorder.Body.String(), domain.CodeReservationMissing)
}

func TestHandler_queryValidation(t *testing.T) {
	s := setupTestServer(t)

	tests := []struct {
		name string
		path string
	}{
		{name: "qty not a number", path: "/api/stock/availability?product_id=pizza&qty=two"},
		{name: "qty not positive", path: "/api/stock/availability?product_id=pizza&qty=0"},
		{name: "party size", path: "/api/reservations/availability?date=2026-03-10&party_size=-1"},
		{name: "explosion qty", path: "/api/products/pizza/explosion?qty=lots"},
		{name: "movement limit", path: "/api/stock/movements?product_id=flour&limit=x"},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			recorder := s.do("GET", testCase.path, "")
			assert.Equal(t, http.StatusBadRequest, recorder.Code)
		})
	}
}

func TestHandler_explodeDecimalQuantity(t *testing.T) {
	s := setupTestServer(t)
	s.recipes.On("Resolve", asTenantA, "pizza", mock.MatchedBy(func(q decimal.Decimal) bool {
		return q.Equal(decimal.RequireFromString("2.5"))
	})).Return(&service.Explosion{Requirements: []domain.Requirement{}}, nil).Once()

	recorder := s.do("GET", "/api/products/pizza/explosion?qty=2.5", "")
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestHandler_loyalty(t *testing.T) {
	s := setupTestServer(t)

	tests := []struct {
		name         string
		path         string
		payload      string
		prepareMocks func()
		expectedCode int
		expectedBody string
	}{
		{
			name:    "accrue",
			path:    "/api/loyalty/cust-1/accrue",
			payload: `{"amount":13600,"reference":"tab-1"}`,
			prepareMocks: func() {
				s.loyalty.On("Accrue", asTenantA, "cust-1", int64(13600), "tab-1").
					Return(&service.LoyaltySummary{Account: domain.LoyaltyAccount{CustomerID: "cust-1", Points: 136}}, nil).Once()
			},
			expectedCode: http.StatusOK,
			expectedBody: `"points":136`,
		},
		{
			name:    "redeem_insufficient",
			path:    "/api/loyalty/cust-1/redeem",
			payload: `{"points":500}`,
			prepareMocks: func() {
				s.loyalty.On("Redeem", asTenantA, "cust-1", int64(500), "").
					Return(nil, domain.Conflict(domain.CodeInsufficientPoints, "balance is 136 points")).Once()
			},
			expectedCode: http.StatusConflict,
			expectedBody: domain.CodeInsufficientPoints,
		},
		{
			name:    "adjust_needs_manager",
			path:    "/api/loyalty/cust-1/adjust",
			payload: `{"points":-10,"reference":"typo"}`,
			prepareMocks: func() {
				s.loyalty.On("Adjust", asTenantA, "cust-1", int64(-10), "typo").
					Return(nil, domain.Forbidden("requires manager")).Once()
			},
			expectedCode: http.StatusForbidden,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			testCase.prepareMocks()
			recorder := s.do("POST", testCase.path, testCase.payload)
			assert.Equal(t, testCase.expectedCode, recorder.Code)
			if testCase.expectedBody != "" {
				assert.True(t, strings.Contains(recorder.Body.String(), testCase.expectedBody), recorder.Body.String())
			}
		})
	}
}

func TestHandler_reconcile(t *testing.T) {
	s := setupTestServer(t)
	s.stock.On("Reconcile", asTenantA, "flour", "main").Return(service.Reconciliation{
		Level:       decimal.RequireFromString("15"),
		MovementSum: decimal.RequireFromString("15"),
	}, nil).Once()

	recorder := s.do("GET", "/api/stock/reconcile?product_id=flour&warehouse_id=main", "")

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"balanced":true`)
}

func TestHandler_setRecipe(t *testing.T) {
	s := setupTestServer(t)
	s.recipes.On("SetRecipe", asTenantA, "burger", mock.MatchedBy(func(lines []domain.RecipeLine) bool {
		return len(lines) == 1 && lines[0].IngredientID == "bun"
	})).Return(nil).Once()
	s.recipes.On("SetRecipe", asTenantA, "loop", mock.Anything).
		Return(domain.ValidationCode(domain.CodeRecipeCycle, "recipe cycle")).Once()

	recorder := s.do("POST", "/api/products/burger/recipe", `{"lines":[{"ingredient_id":"bun","quantity":"1","unit":"pc"}]}`)
	assert.Equal(t, http.StatusNoContent, recorder.Code)

	recorder = s.do("POST", "/api/products/loop/recipe", `{"lines":[]}`)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), domain.CodeRecipeCycle)
}

func TestHandler_advanceTicket(t *testing.T) {
	s := setupTestServer(t)
	s.kitchen.On("AdvanceTicket", asTenantA, "tk-1", domain.TicketInProgress).
		Return(nil, domain.Conflict(domain.CodeIllegalTransition, "ticket cannot move")).Once()

	recorder := s.do("POST", "/api/tickets/tk-1/advance", `{"status":"in_progress"}`)

	assert.Equal(t, http.StatusConflict, recorder.Code)
	assert.Contains(t, recorder.Body.String(), domain.CodeIllegalTransition)
}
