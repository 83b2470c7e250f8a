package handler_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pledgeboard/internal/country"
	"pledgeboard/internal/pledge/handler"
	"pledgeboard/internal/pledge/models"
	"pledgeboard/internal/pledge/service"
	"pledgeboard/internal/pledge/store"
	"pledgeboard/internal/platform/metrics"
	dErrors "pledgeboard/pkg/domain-errors"
	"pledgeboard/pkg/testutil"
)

// promauto registers against the default registry; one instance per test
// binary.
var testMetrics = metrics.New()

type fakeVerifier struct {
	err    error
	tokens []string
}

func (f *fakeVerifier) Verify(ctx context.Context, token string) error {
	f.tokens = append(f.tokens, token)
	return f.err
}

type fixture struct {
	router   chi.Router
	store    *store.MemoryStore
	verifier *fakeVerifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	catalog, err := country.Load(filepath.Join("..", "..", "country", "testdata", "countries.json"))
	require.NoError(t, err)

	st := store.NewMemory()
	svc := service.New(catalog, st)
	verifier := &fakeVerifier{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	h := handler.New(svc, verifier, logger, testMetrics, nil)
	router := chi.NewRouter()
	h.Register(router)

	return &fixture{router: router, store: st, verifier: verifier}
}

func (f *fixture) pledge(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	return testutil.DoRequest(f.router, testutil.NewRequestWithBody(t, http.MethodPost, "/api/pledge", body))
}

func (f *fixture) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	return testutil.DoRequest(f.router, httptest.NewRequest(http.MethodGet, path, nil))
}

func TestPledgeSuccess(t *testing.T) {
	f := newFixture(t)

	w := f.pledge(t, `{"token":"tok","country":"dnk","hours":3.5}`)

	testutil.AssertStatus(t, w, http.StatusOK)
	assert.Empty(t, w.Body.String())
	assert.Equal(t, []string{"tok"}, f.verifier.tokens, "captcha verified with the client token")
}

func TestPledgeMalformedBody(t *testing.T) {
	f := newFixture(t)

	w := f.pledge(t, `{"token":`)

	testutil.AssertStatusAndError(t, w, http.StatusBadRequest, "bad_request")
	assert.Empty(t, f.verifier.tokens, "captcha not consulted for garbage input")
}

func TestPledgeInvalidCountry(t *testing.T) {
	f := newFixture(t)

	w := f.pledge(t, `{"token":"tok","country":"atlantis","hours":1}`)

	testutil.AssertStatusAndError(t, w, http.StatusUnprocessableEntity, "invalid_country")
	assert.Equal(t, "country is invalid", testutil.UnmarshalErrorResponse(t, w)["error_description"])
}

func TestPledgeHoursOutOfRange(t *testing.T) {
	f := newFixture(t)

	w := f.pledge(t, `{"token":"tok","country":"dnk","hours":10.0001}`)

	testutil.AssertStatusAndError(t, w, http.StatusUnprocessableEntity, "hours_out_of_range")
	assert.Equal(t, "hours must be >= 0 and <= 10", testutil.UnmarshalErrorResponse(t, w)["error_description"])
}

func TestPledgeBoundaryHours(t *testing.T) {
	f := newFixture(t)

	testutil.AssertStatus(t, f.pledge(t, `{"token":"a","country":"dnk","hours":0.0}`), http.StatusOK)
	testutil.AssertStatus(t, f.pledge(t, `{"token":"b","country":"dnk","hours":10.0}`), http.StatusOK)
}

func TestPledgeCaptchaRejected(t *testing.T) {
	f := newFixture(t)
	f.verifier.err = dErrors.New(dErrors.CodeCaptchaRejected, "captcha failed")

	w := f.pledge(t, `{"token":"bad","country":"dnk","hours":1}`)

	testutil.AssertStatusAndError(t, w, http.StatusForbidden, "captcha_rejected")

	tokens, err := f.store.RecentTokens(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tokens, "nothing recorded behind a failed captcha")
}

func TestPledgeCaptchaUnreachable(t *testing.T) {
	f := newFixture(t)
	f.verifier.err = dErrors.New(dErrors.CodeCaptchaUnreachable, "cannot reach captcha service")

	w := f.pledge(t, `{"token":"tok","country":"dnk","hours":1}`)

	testutil.AssertStatusAndError(t, w, http.StatusInternalServerError, "captcha_unreachable")
	_, hasDescription := testutil.UnmarshalErrorResponse(t, w)["error_description"]
	assert.False(t, hasDescription, "5xx responses leak no detail")
}

func TestPledgeStoreFailure(t *testing.T) {
	f := newFixture(t)
	f.store.FailNext = dErrors.New(dErrors.CodeStoreUnavailable, "cannot reach db")

	w := f.pledge(t, `{"token":"tok","country":"dnk","hours":1}`)

	testutil.AssertStatusAndError(t, w, http.StatusInternalServerError, "store_unavailable")
}

func TestSummaryEndpoint(t *testing.T) {
	f := newFixture(t)

	testutil.AssertStatus(t, f.pledge(t, `{"token":"a","country":"dnk","hours":3.5}`), http.StatusOK)
	testutil.AssertStatus(t, f.pledge(t, `{"token":"b","country":"dnk","hours":1.5}`), http.StatusOK)

	w := f.get(t, "/api/summary")
	testutil.AssertStatus(t, w, http.StatusOK)

	summary := testutil.UnmarshalResponse[[]models.SummaryEntry](t, w)
	assert.Equal(t, []models.SummaryEntry{{Country: "dnk", Hours: 5.0, Count: 2}}, *summary)
}

func TestSummaryEmpty(t *testing.T) {
	f := newFixture(t)

	w := f.get(t, "/api/summary")
	testutil.AssertStatus(t, w, http.StatusOK)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestRecentEndpoint(t *testing.T) {
	f := newFixture(t)

	testutil.AssertStatus(t, f.pledge(t, `{"token":"a","country":"dnk","hours":3.5}`), http.StatusOK)
	testutil.AssertStatus(t, f.pledge(t, `{"token":"b","country":"swe","hours":1.5}`), http.StatusOK)

	w := f.get(t, "/api/recent")
	testutil.AssertStatus(t, w, http.StatusOK)

	recent := testutil.UnmarshalResponse[[]models.RecentEntry](t, w)
	assert.Equal(t, []models.RecentEntry{
		{Country: "swe", Hours: 1.5},
		{Country: "dnk", Hours: 3.5},
	}, *recent)
}

func TestCountryEndpoint(t *testing.T) {
	f := newFixture(t)

	w := f.get(t, "/api/country")
	testutil.AssertStatus(t, w, http.StatusOK)
	all := testutil.UnmarshalResponse[[]country.Country](t, w)
	assert.Len(t, *all, 4)

	w = f.get(t, "/api/country?name=mark")
	testutil.AssertStatus(t, w, http.StatusOK)
	matches := testutil.UnmarshalResponse[[]country.Country](t, w)
	require.Len(t, *matches, 1)
	assert.Equal(t, "Denmark", (*matches)[0].Name)

	w = f.get(t, "/api/country?name=atlantis")
	testutil.AssertStatus(t, w, http.StatusOK)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestPledgeRejectsNonJSONContentType(t *testing.T) {
	f := newFixture(t)

	req := testutil.NewRequestWithBody(t, http.MethodPost, "/api/pledge", "token=x")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := testutil.DoRequest(f.router, req)

	testutil.AssertStatus(t, w, http.StatusUnsupportedMediaType)
}
