package llmInteraction

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/tripwise/internal/types"
)

type recordingService struct {
	LlmInteractionService
	got  types.PlanTripRequest
	resp *types.PlanTripResponse
	err  error
}

func (s *recordingService) PlanTrip(_ context.Context, req types.PlanTripRequest) (*types.PlanTripResponse, error) {
	s.got = req
	return s.resp, s.err
}

func (s *recordingService) Ask(_ context.Context, message string) (string, error) {
	return "answer to " + message, nil
}

func newTestHandler(svc LlmInteractionService) *LlmInteractionHandler {
	return NewLLMHandler(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	msg, _ := body["error"].(string)
	return msg
}

func TestAskHandler(t *testing.T) {
	h := newTestHandler(&recordingService{})

	rec := httptest.NewRecorder()
	h.Ask(rec, httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(`{"message":"hi"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp types.AskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "answer to hi", resp.Response)

	rec = httptest.NewRecorder()
	h.Ask(rec, httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(`not json`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlanTripHandlerForm(t *testing.T) {
	svc := &recordingService{resp: &types.PlanTripResponse{Destination: "Siargao", Days: 2}}
	form := url.Values{
		"destinations[]": {"1", "3"},
		"budget":         {"2500.5"},
		"days":           {"2"},
		"people":         {"4"},
	}
	req := httptest.NewRequest(http.MethodPost, "/plan_trip", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	newTestHandler(svc).PlanTrip(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, types.PlanTripRequest{DestinationIDs: []int64{1, 3}, BudgetPerPerson: 2500.5, Days: 2, People: 4}, svc.got)
}

func TestPlanTripHandlerJSON(t *testing.T) {
	svc := &recordingService{resp: &types.PlanTripResponse{Destination: "Siargao"}}
	req := httptest.NewRequest(http.MethodPost, "/plan_trip",
		strings.NewReader(`{"destinations":[2],"budget":0,"days":3,"people":1}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	newTestHandler(svc).PlanTrip(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int64{2}, svc.got.DestinationIDs)
	assert.Equal(t, 3, svc.got.Days)
}

func TestPlanTripHandlerValidation(t *testing.T) {
	tests := []struct {
		name string
		form url.Values
		want string
	}{
		{"no destinations", url.Values{"budget": {"1"}, "days": {"1"}, "people": {"1"}}, MsgNoDestinations},
		{"bad number", url.Values{"destinations": {"1"}, "budget": {"lots"}, "days": {"1"}, "people": {"1"}}, MsgInvalidNumbers},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/plan_trip", strings.NewReader(tt.form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			rec := httptest.NewRecorder()

			newTestHandler(&recordingService{}).PlanTrip(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.want, errorMessage(t, rec))
		})
	}
}

func TestPlanTripHandlerUnparseableDestinations(t *testing.T) {
	svc := &recordingService{err: &PlanInputError{Message: MsgIslandsNotFound}}
	form := url.Values{"destinations": {"abc"}, "budget": {"1"}, "days": {"1"}, "people": {"1"}}
	req := httptest.NewRequest(http.MethodPost, "/plan_trip", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	newTestHandler(svc).PlanTrip(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, MsgIslandsNotFound, errorMessage(t, rec))
	assert.Equal(t, []int64{-1}, svc.got.DestinationIDs)
}
