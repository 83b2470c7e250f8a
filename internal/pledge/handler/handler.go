package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"pledgeboard/internal/country"
	"pledgeboard/internal/pledge/models"
	"pledgeboard/internal/platform/metrics"
	"pledgeboard/internal/platform/middleware"
	dErrors "pledgeboard/pkg/domain-errors"
	"pledgeboard/pkg/platform/httputil"
)

// Service defines the pledge operations the HTTP layer consumes.
type Service interface {
	Record(ctx context.Context, token, countryID string, hours float64) error
	Summary(ctx context.Context) ([]models.SummaryEntry, error)
	Recent(ctx context.Context) ([]models.RecentEntry, error)
	Countries(filter string) []country.Country
}

// Verifier is the bot-verification seam. Verification is a precondition the
// HTTP layer enforces before the ledger is touched.
type Verifier interface {
	Verify(ctx context.Context, token string) error
}

// Handler handles the pledge API endpoints.
type Handler struct {
	logger      *slog.Logger
	pledges     Service
	captcha     Verifier
	metrics     *metrics.Metrics
	rateLimiter *middleware.RateLimiter
}

// New creates a new pledge Handler.
func New(
	pledges Service,
	captcha Verifier,
	logger *slog.Logger,
	metrics *metrics.Metrics,
	rateLimiter *middleware.RateLimiter) *Handler {
	return &Handler{
		logger:      logger,
		pledges:     pledges,
		captcha:     captcha,
		metrics:     metrics,
		rateLimiter: rateLimiter,
	}
}

// Register registers the pledge routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(api chi.Router) {
		api.Use(middleware.Timeout(30 * time.Second))
		api.Use(middleware.ContentTypeJSON)
		api.Get("/api/summary", h.handleSummary)
		api.Get("/api/recent", h.handleRecent)
		api.Get("/api/country", h.handleCountry)

		api.Group(func(write chi.Router) {
			if h.rateLimiter != nil {
				write.Use(h.rateLimiter.Middleware)
			}
			write.Post("/api/pledge", h.handlePledge)
		})
	})
}

// handlePledge verifies the captcha, then records the pledge.
func (h *Handler) handlePledge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	var req models.PledgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid pledge request body",
			"request_id", requestID,
			"error", err.Error(),
		)
		h.metrics.IncrementPledgesRejected("bad_request")
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if err := h.captcha.Verify(ctx, req.Token); err != nil {
		if dErrors.Is(err, dErrors.CodeCaptchaRejected) {
			h.metrics.IncrementCaptchaChecks("rejected")
			h.metrics.IncrementPledgesRejected("captcha")
			httputil.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "captcha verification unreachable",
			"request_id", requestID,
			"error", err.Error(),
		)
		h.metrics.IncrementCaptchaChecks("unreachable")
		httputil.WriteError(w, err)
		return
	}
	h.metrics.IncrementCaptchaChecks("passed")

	if err := h.pledges.Record(ctx, req.Token, req.Country, req.Hours); err != nil {
		switch {
		case dErrors.Is(err, dErrors.CodeInvalidCountry), dErrors.Is(err, dErrors.CodeHoursOutOfRange):
			h.metrics.IncrementPledgesRejected("validation")
			httputil.WriteError(w, err)
		default:
			h.logger.ErrorContext(ctx, "failed to record pledge",
				"request_id", requestID,
				"error", err.Error(),
			)
			h.metrics.IncrementPledgesRejected("store")
			httputil.WriteError(w, dErrors.New(dErrors.CodeStoreUnavailable, "cannot reach db"))
		}
		return
	}

	h.metrics.IncrementPledgesRecorded()
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	summary, err := h.pledges.Summary(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to build summary",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) handleRecent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	recent, err := h.pledges.Recent(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to build recent feed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, recent)
}

func (h *Handler) handleCountry(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("name")
	countries := h.pledges.Countries(filter)
	if countries == nil {
		countries = []country.Country{}
	}
	httputil.WriteJSON(w, http.StatusOK, countries)
}
