package v1handler_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"biomarker/internal/analytics"
	"biomarker/internal/api/handler/v1handler"
	"biomarker/pkg/domain"
	"biomarker/pkg/logger"
	"biomarker/pkg/storage/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, time.September, 1, 12, 0, 0, 0, time.UTC) //nolint: gochecknoglobals

const (
	glucoseID domain.BiomarkerID = 1
	crpID     domain.BiomarkerID = 2
	orphanID  domain.BiomarkerID = 3 // in catalog, no ranges configured
)

func TestMain(m *testing.M) {
	// Initialize logger to avoid nil pointer deref during tests
	logger.Setup(logger.DevelopmentEnvironment)
	m.Run()
}

// noopAuth passes protected routes through. The real bearer middleware is
// covered separately in sec_test.go.
func noopAuth(next http.Handler) http.Handler { return next }

// newTestMux seeds a memory store with a small catalog and one user born
// 1980-03-15 and returns the mounted v1 routes plus the engine for seeding.
func newTestMux(t *testing.T) (*http.ServeMux, analytics.Analytics, domain.UserID) {
	t.Helper()

	store := memory.New()
	store.SeedBiomarker(domain.Biomarker{ID: glucoseID, Name: "Fasting Glucose", Unit: "mg/dL"})
	store.SeedBiomarker(domain.Biomarker{ID: crpID, Name: "hs-CRP", Unit: "mg/L"})
	store.SeedBiomarker(domain.Biomarker{ID: orphanID, Name: "Homocysteine", Unit: "umol/L"})
	store.SeedRange(domain.ReferenceRange{
		BiomarkerID: glucoseID, Type: domain.RangeTypeClinical, Sex: domain.SexAny, MinVal: 70, MaxVal: 100,
	})
	store.SeedRange(domain.ReferenceRange{
		BiomarkerID: glucoseID, Type: domain.RangeTypeLongevity, Sex: domain.SexAny, MinVal: 72, MaxVal: 90,
	})
	store.SeedRange(domain.ReferenceRange{
		BiomarkerID: crpID, Type: domain.RangeTypeClinical, Sex: domain.SexAny, MinVal: 0, MaxVal: 3,
	})

	userID := domain.UserID(uuid.New())
	store.SeedUser(domain.User{
		ID:        userID,
		SEQN:      93702,
		BirthDate: time.Date(1980, time.March, 15, 0, 0, 0, 0, time.UTC),
		Sex:       domain.SexMale,
	})

	engine := analytics.New(store, analytics.Options{
		DefaultModel:    "deviation",
		TrendStepMonths: 2,
		Now:             func() time.Time { return testNow },
	})

	mux := http.NewServeMux()
	v1handler.New(v1handler.Deps{Engine: engine}).Register(mux, noopAuth)

	return mux, engine, userID
}

func doRequest(t *testing.T, mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(out))
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body struct {
		Error string `json:"error"`
	}
	decodeBody(t, rec, &body)

	return body.Error
}

func ingestSession(t *testing.T, mux *http.ServeMux, userID domain.UserID,
	date string, values map[domain.BiomarkerID]float64) analytics.IngestResult {
	t.Helper()

	inputs := make([]analytics.MeasurementInput, 0, len(values))
	for id, v := range values {
		inputs = append(inputs, analytics.MeasurementInput{BiomarkerID: id, Value: v})
	}
	payload, err := json.Marshal(map[string]any{
		"sessionDate":   date,
		"fastingStatus": true,
		"measurements":  inputs,
	})
	require.NoError(t, err)

	rec := doRequest(t, mux, http.MethodPost, "/v1/users/"+userID.String()+"/sessions", string(payload))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var result analytics.IngestResult
	decodeBody(t, rec, &result)

	return result
}

func TestListUsers(t *testing.T) {
	mux, _, userID := newTestMux(t)
	ingestSession(t, mux, userID, "2025-06-01", map[domain.BiomarkerID]float64{glucoseID: 85})

	rec := doRequest(t, mux, http.MethodGet, "/v1/users", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Users []analytics.UserSummary `json:"users"`
	}
	decodeBody(t, rec, &body)
	require.Len(t, body.Users, 1)
	require.Equal(t, 45, body.Users[0].Age)
	require.Equal(t, 1, body.Users[0].SessionCount)
}

func TestProfile_UnknownUser(t *testing.T) {
	mux, _, _ := newTestMux(t)

	rec := doRequest(t, mux, http.MethodGet, "/v1/users/"+uuid.NewString()+"/profile", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "user not found", errorOf(t, rec))
}

func TestProfile_InvalidUserID(t *testing.T) {
	mux, _, _ := newTestMux(t)

	rec := doRequest(t, mux, http.MethodGet, "/v1/users/not-a-uuid/profile", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "invalid user id", errorOf(t, rec))
}

func TestProfile_LatestPerBiomarker(t *testing.T) {
	mux, _, userID := newTestMux(t)
	ingestSession(t, mux, userID, "2025-01-10", map[domain.BiomarkerID]float64{glucoseID: 95, crpID: 1.1})
	ingestSession(t, mux, userID, "2025-07-10", map[domain.BiomarkerID]float64{glucoseID: 82})

	rec := doRequest(t, mux, http.MethodGet, "/v1/users/"+userID.String()+"/profile", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var profile analytics.Profile
	decodeBody(t, rec, &profile)
	require.Equal(t, 45, profile.Age)
	require.Len(t, profile.Measurements, 2)
	require.InEpsilon(t, 82.0, profile.Measurements[0].Value, 1e-9)
}

func TestCompareRanges(t *testing.T) {
	mux, _, userID := newTestMux(t)
	ingestSession(t, mux, userID, "2025-06-01", map[domain.BiomarkerID]float64{glucoseID: 81})

	rec := doRequest(t, mux, http.MethodGet, "/v1/users/"+userID.String()+"/ranges", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Classifications []domain.Classification `json:"classifications"`
	}
	decodeBody(t, rec, &body)
	require.Len(t, body.Classifications, 1)
	require.Equal(t, domain.RangeStatusOptimal, body.Classifications[0].Status)
	require.NotNil(t, body.Classifications[0].ClinicalRange)
	require.NotNil(t, body.Classifications[0].LongevityRange)
}

func TestCompareRanges_UnknownType(t *testing.T) {
	mux, _, userID := newTestMux(t)
	ingestSession(t, mux, userID, "2025-06-01", map[domain.BiomarkerID]float64{glucoseID: 81})

	rec := doRequest(t, mux, http.MethodGet, "/v1/users/"+userID.String()+"/ranges?type=optimistic", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecomputeBioAge_InsufficientData(t *testing.T) {
	mux, _, userID := newTestMux(t)

	rec := doRequest(t, mux, http.MethodPost, "/v1/users/"+userID.String()+"/bioage/calculate", "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Equal(t, "insufficient biomarker data for calculation", errorOf(t, rec))
}

func TestRecomputeBioAge_UnknownModel(t *testing.T) {
	mux, _, userID := newTestMux(t)
	ingestSession(t, mux, userID, "2025-06-01", map[domain.BiomarkerID]float64{glucoseID: 85})

	rec := doRequest(t, mux, http.MethodPost,
		"/v1/users/"+userID.String()+"/bioage/calculate?model=phrenology", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecomputeBioAge_AppendsResult(t *testing.T) {
	mux, _, userID := newTestMux(t)
	ingestSession(t, mux, userID, "2025-06-01", map[domain.BiomarkerID]float64{glucoseID: 85, crpID: 1.5})

	rec := doRequest(t, mux, http.MethodPost, "/v1/users/"+userID.String()+"/bioage/calculate", "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var result domain.BioAgeResult
	decodeBody(t, rec, &result)
	require.Equal(t, "deviation", result.Model)
	require.True(t, result.ComputedAt.Equal(testNow))

	history := doRequest(t, mux, http.MethodGet, "/v1/users/"+userID.String()+"/bioage/history", "")
	require.Equal(t, http.StatusOK, history.Code)

	var body struct {
		History []domain.BioAgeResult `json:"history"`
	}
	decodeBody(t, history, &body)
	require.Len(t, body.History, 1)
}

func TestBioAge_NoResults(t *testing.T) {
	mux, _, userID := newTestMux(t)

	rec := doRequest(t, mux, http.MethodGet, "/v1/users/"+userID.String()+"/bioage", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "no biological age results for user", errorOf(t, rec))
}

func TestBioAgeHistory_EmptyIsOK(t *testing.T) {
	mux, _, userID := newTestMux(t)

	rec := doRequest(t, mux, http.MethodGet, "/v1/users/"+userID.String()+"/bioage/history", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"history":[]}`, rec.Body.String())
}

func TestTrend(t *testing.T) {
	mux, _, userID := newTestMux(t)
	ingestSession(t, mux, userID, "2025-06-01", map[domain.BiomarkerID]float64{glucoseID: 85})

	rec := doRequest(t, mux, http.MethodGet,
		fmt.Sprintf("/v1/users/%s/trends/%d?points=1", userID, glucoseID), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		BiomarkerID domain.BiomarkerID  `json:"biomarkerId"`
		Points      []domain.TrendPoint `json:"points"`
	}
	decodeBody(t, rec, &body)
	require.Equal(t, glucoseID, body.BiomarkerID)
	require.Len(t, body.Points, 1)
	require.InEpsilon(t, 85.0, body.Points[0].Value, 1e-9)
}

func TestTrend_NoSessions(t *testing.T) {
	mux, _, userID := newTestMux(t)

	rec := doRequest(t, mux, http.MethodGet,
		fmt.Sprintf("/v1/users/%s/trends/%d", userID, glucoseID), "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTrend_InvalidPoints(t *testing.T) {
	mux, _, userID := newTestMux(t)
	ingestSession(t, mux, userID, "2025-06-01", map[domain.BiomarkerID]float64{glucoseID: 85})

	rec := doRequest(t, mux, http.MethodGet,
		fmt.Sprintf("/v1/users/%s/trends/%d?points=zero", userID, glucoseID), "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, mux, http.MethodGet,
		fmt.Sprintf("/v1/users/%s/trends/%d?points=0", userID, glucoseID), "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddSession_EmptyMeasurements(t *testing.T) {
	mux, _, userID := newTestMux(t)

	rec := doRequest(t, mux, http.MethodPost, "/v1/users/"+userID.String()+"/sessions",
		`{"sessionDate":"2025-06-01","measurements":[]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddSession_InvalidDate(t *testing.T) {
	mux, _, userID := newTestMux(t)

	rec := doRequest(t, mux, http.MethodPost, "/v1/users/"+userID.String()+"/sessions",
		`{"sessionDate":"June 1st","measurements":[{"biomarkerId":1,"value":85}]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddSession_UnknownBiomarker(t *testing.T) {
	mux, _, userID := newTestMux(t)

	rec := doRequest(t, mux, http.MethodPost, "/v1/users/"+userID.String()+"/sessions",
		`{"sessionDate":"2025-06-01","measurements":[{"biomarkerId":404,"value":85}]}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSession_RoundTrip(t *testing.T) {
	mux, _, userID := newTestMux(t)
	result := ingestSession(t, mux, userID, "2025-06-01",
		map[domain.BiomarkerID]float64{glucoseID: 85})
	require.Len(t, result.MeasurementIDs, 1)

	rec := doRequest(t, mux, http.MethodGet,
		"/v1/users/"+userID.String()+"/sessions/"+result.SessionID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var session domain.Session
	decodeBody(t, rec, &session)
	require.Equal(t, result.SessionID, session.ID)
	require.Len(t, session.Measurements, 1)
}

func TestSession_Unknown(t *testing.T) {
	mux, _, userID := newTestMux(t)

	rec := doRequest(t, mux, http.MethodGet,
		"/v1/users/"+userID.String()+"/sessions/"+uuid.NewString(), "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "session not found", errorOf(t, rec))
}

func TestBiomarkers(t *testing.T) {
	mux, _, _ := newTestMux(t)

	rec := doRequest(t, mux, http.MethodGet, "/v1/biomarkers", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Biomarkers []domain.Biomarker `json:"biomarkers"`
	}
	decodeBody(t, rec, &body)
	require.Len(t, body.Biomarkers, 3)
	require.Equal(t, "Fasting Glucose", body.Biomarkers[0].Name)
}

func TestRanges(t *testing.T) {
	mux, _, _ := newTestMux(t)

	rec := doRequest(t, mux, http.MethodGet, fmt.Sprintf("/v1/biomarkers/%d/ranges", glucoseID), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Ranges []domain.ReferenceRange `json:"ranges"`
	}
	decodeBody(t, rec, &body)
	require.Len(t, body.Ranges, 2)
}

func TestRanges_UnknownBiomarker(t *testing.T) {
	mux, _, _ := newTestMux(t)

	rec := doRequest(t, mux, http.MethodGet, "/v1/biomarkers/404/ranges", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "biomarker not found", errorOf(t, rec))
}

func TestRanges_NoneConfigured(t *testing.T) {
	mux, _, _ := newTestMux(t)

	rec := doRequest(t, mux, http.MethodGet, fmt.Sprintf("/v1/biomarkers/%d/ranges", orphanID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"ranges":[]}`, rec.Body.String())
}
