package router

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/swaggo/swag"

	"github.com/FACorreiaa/tripwise/config"
	"github.com/FACorreiaa/tripwise/internal/api/activity"
	"github.com/FACorreiaa/tripwise/internal/api/auth"
	"github.com/FACorreiaa/tripwise/internal/api/booking"
	"github.com/FACorreiaa/tripwise/internal/api/establishment"
	"github.com/FACorreiaa/tripwise/internal/api/island"
	llmInteraction "github.com/FACorreiaa/tripwise/internal/api/llm_interaction"
	"github.com/FACorreiaa/tripwise/internal/api/report"
	"github.com/FACorreiaa/tripwise/internal/api/user"
	"github.com/FACorreiaa/tripwise/internal/api/visit"
	"github.com/FACorreiaa/tripwise/internal/types"
)

// Stubs embed the service interface; any method a test does not expect
// panics on the nil embedded value.
type islandStub struct{ island.Service }

func (islandStub) ListIslands(context.Context) ([]types.IslandView, error) {
	return []types.IslandView{types.NewIslandView(types.Island{ID: 1, Name: "Siargao", Coordinates: "9.85,126.05"})}, nil
}

type bookingStub struct{ booking.Service }

func (bookingStub) ListManaged(_ context.Context, caller types.Principal) ([]types.Booking, error) {
	return []types.Booking{{ID: 7, EstablishmentID: 3, UserID: caller.UserID + 1, Status: types.BookingPending}}, nil
}

func (bookingStub) ListMine(_ context.Context, caller types.Principal) ([]types.Booking, error) {
	return []types.Booking{{ID: 8, UserID: caller.UserID, Status: types.BookingPending}}, nil
}

type userStub struct{ user.UserService }

func (userStub) ListUsers(context.Context, types.Principal) ([]types.User, error) {
	return []types.User{{ID: 1, Name: "Administrator", Role: types.RoleAdmin}}, nil
}

type llmStub struct {
	llmInteraction.LlmInteractionService
}

func (llmStub) Ask(_ context.Context, message string) (string, error) {
	return "echo: " + message, nil
}

type RouterTestSuite struct {
	suite.Suite
	server *httptest.Server
	client *http.Client
	jwtCfg config.JWTConfig
}

func (s *RouterTestSuite) SetupSuite() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.jwtCfg = config.JWTConfig{SecretKey: "router-test-secret", Issuer: "tripwise", Audience: "tripwise-api"}

	r := SetupRouter(&Config{
		Logger:               logger,
		JWT:                  s.jwtCfg,
		AuthHandler:          auth.NewAuthHandler(nil, logger),
		UserHandler:          user.NewHandlerImpl(userStub{}, logger),
		IslandHandler:        island.NewHandlerImpl(islandStub{}, logger),
		EstablishmentHandler: establishment.NewHandlerImpl(nil, logger),
		ActivityHandler:      activity.NewHandlerImpl(nil, logger),
		VisitHandler:         visit.NewHandlerImpl(nil, logger),
		BookingHandler:       booking.NewHandlerImpl(bookingStub{}, logger),
		LLMHandler:           llmInteraction.NewLLMHandler(llmStub{}, logger),
		ReportHandler:        report.NewHandlerImpl(nil, logger),
	})
	s.server = httptest.NewServer(r)
	s.client = &http.Client{
		Timeout: 5 * time.Second,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (s *RouterTestSuite) TearDownSuite() {
	if s.server != nil {
		s.server.Close()
	}
}

func (s *RouterTestSuite) token(userID int64, role types.Role) string {
	now := time.Now()
	claims := types.Claims{
		UserID: userID,
		Email:  "someone@example.com",
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.jwtCfg.Issuer,
			Audience:  jwt.ClaimStrings{s.jwtCfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtCfg.SecretKey))
	s.Require().NoError(err)
	return signed
}

func (s *RouterTestSuite) do(method, path, token, body string) *http.Response {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, s.server.URL+path, reader)
	s.Require().NoError(err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.client.Do(req)
	s.Require().NoError(err)
	s.T().Cleanup(func() { resp.Body.Close() })
	return resp
}

func (s *RouterTestSuite) TestPing() {
	resp := s.do(http.MethodGet, "/ping", "", "")
	s.Equal(http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	s.Equal("pong", string(body))
}

func (s *RouterTestSuite) TestPublicIslandsListing() {
	resp := s.do(http.MethodGet, "/api/v1/islands", "", "")
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var islands []types.IslandView
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&islands))
	s.Require().Len(islands, 1)
	s.Equal("Siargao", islands[0].Name)
	s.Require().NotNil(islands[0].Latitude)
	s.InDelta(9.85, *islands[0].Latitude, 1e-9)
}

func (s *RouterTestSuite) TestAskIsPublic() {
	resp := s.do(http.MethodPost, "/api/v1/ask", "", `{"message":"hello"}`)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	s.Contains(string(body), "echo: hello")
}

func (s *RouterTestSuite) TestProtectedRoutesRequireToken() {
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/auth/me"},
		{http.MethodPost, "/api/v1/plan_trip"},
		{http.MethodGet, "/api/v1/bookings"},
		{http.MethodGet, "/api/v1/owner/bookings"},
		{http.MethodGet, "/api/v1/admin/users"},
	} {
		resp := s.do(tc.method, tc.path, "", "")
		s.Equal(http.StatusUnauthorized, resp.StatusCode, "%s %s", tc.method, tc.path)
	}
}

func (s *RouterTestSuite) TestTamperedTokenRejected() {
	tok := s.token(5, types.RoleAdmin) + "x"
	resp := s.do(http.MethodGet, "/api/v1/admin/users", tok, "")
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *RouterTestSuite) TestUserBookingsWithToken() {
	resp := s.do(http.MethodGet, "/api/v1/bookings", s.token(9, types.RoleUser), "")
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var list []types.Booking
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&list))
	s.Require().Len(list, 1)
	s.Equal(int64(9), list[0].UserID)
}

func (s *RouterTestSuite) TestOwnerRoutesByRole() {
	resp := s.do(http.MethodGet, "/api/v1/owner/bookings", s.token(2, types.RoleUser), "")
	s.Equal(http.StatusForbidden, resp.StatusCode)

	resp = s.do(http.MethodGet, "/api/v1/owner/bookings", s.token(3, types.RoleOwner), "")
	s.Equal(http.StatusOK, resp.StatusCode)

	resp = s.do(http.MethodGet, "/api/v1/owner/bookings", s.token(1, types.RoleAdmin), "")
	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *RouterTestSuite) TestAdminRoutesByRole() {
	resp := s.do(http.MethodGet, "/api/v1/admin/users", s.token(3, types.RoleOwner), "")
	s.Equal(http.StatusForbidden, resp.StatusCode)

	resp = s.do(http.MethodGet, "/api/v1/admin/users", s.token(1, types.RoleAdmin), "")
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var users []types.User
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&users))
	s.Require().Len(users, 1)
	s.Equal(types.RoleAdmin, users[0].Role)
}

func (s *RouterTestSuite) TestEntityLinksRedirect() {
	resp := s.do(http.MethodGet, "/island/4", "", "")
	s.Equal(http.StatusFound, resp.StatusCode)
	s.Equal("/api/v1/islands/4", resp.Header.Get("Location"))

	resp = s.do(http.MethodGet, "/place/12", "", "")
	s.Equal(http.StatusFound, resp.StatusCode)
	s.Equal("/api/v1/places/12", resp.Header.Get("Location"))
}

func (s *RouterTestSuite) TestUnknownRoute() {
	resp := s.do(http.MethodGet, "/api/v1/nowhere", "", "")
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func TestRouter(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}

func TestAssistantRateLimit(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := SetupRouter(&Config{
		Logger:             logger,
		JWT:                config.JWTConfig{SecretKey: "router-test-secret"},
		AuthHandler:        auth.NewAuthHandler(nil, logger),
		IslandHandler:      island.NewHandlerImpl(islandStub{}, logger),
		LLMHandler:         llmInteraction.NewLLMHandler(llmStub{}, logger),
		AssistantRateLimit: 2,
	})

	ask := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/ask", strings.NewReader(`{"message":"hi"}`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		return rr.Code
	}
	assert.Equal(t, http.StatusOK, ask())
	assert.Equal(t, http.StatusOK, ask())
	assert.Equal(t, http.StatusTooManyRequests, ask())

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/islands", nil))
	assert.Equal(t, http.StatusOK, rr.Code, "catalog routes are not limited")
}

func TestEveryAPIRouteIsDocumented(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := SetupRouter(&Config{Logger: logger, JWT: config.JWTConfig{SecretKey: "router-test-secret"}})

	raw, err := swag.ReadDoc()
	require.NoError(t, err)
	var doc struct {
		BasePath string                                `json:"basePath"`
		Paths    map[string]map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	require.Equal(t, "/api/v1", doc.BasePath)

	routes := 0
	err = chi.Walk(r, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		if !strings.HasPrefix(route, doc.BasePath+"/") {
			return nil
		}
		routes++
		path := strings.TrimPrefix(route, doc.BasePath)
		ops, ok := doc.Paths[path]
		if assert.True(t, ok, "%s is missing from the API docs", path) {
			assert.Contains(t, ops, strings.ToLower(method), "%s %s is missing from the API docs", method, path)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 38, routes)
}
