package httpx

import (
	"context"
	"encoding/csv"
	"github.com/ariefcatur/espada-admin/internal/analytics"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"net/http"
	"strconv"
	"time"
)

type AnalyticsService interface {
	Analytics(ctx context.Context, tr analytics.TimeRange) (analytics.Result, error)
}

type AnalyticsHandler struct {
	Service     AnalyticsService
	DefaultDays int
	Now         func() time.Time // nil means time.Now
}

func (h *AnalyticsHandler) Register(r chi.Router) {
	r.Get("/admin/analytics", h.getAnalytics)
	r.Get("/admin/analytics/report.csv", h.getReportCSV)
}

func (h *AnalyticsHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// load parses the range and computes the result, writing the error response
// itself when it fails.
func (h *AnalyticsHandler) load(w http.ResponseWriter, r *http.Request) (analytics.Result, bool) {
	tr, err := analytics.ParseRange(r.URL.Query(), h.now(), h.DefaultDays)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return analytics.Result{}, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := h.Service.Analytics(ctx, tr)
	if err != nil {
		log.Error().Err(err).Time("from", tr.From).Time("to", tr.To).Msg("analytics failed")
		writeError(w, http.StatusInternalServerError, "failed to load analytics")
		return analytics.Result{}, false
	}
	return res, true
}

func (h *AnalyticsHandler) getAnalytics(w http.ResponseWriter, r *http.Request) {
	res, ok := h.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// getReportCSV writes the daily series, a blank line, then the top products.
func (h *AnalyticsHandler) getReportCSV(w http.ResponseWriter, r *http.Request) {
	res, ok := h.load(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="analytics-`+
		res.TimeRange.From.Format("20060102")+"-"+res.TimeRange.To.Format("20060102")+`.csv"`)
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"date", "orders", "revenue"})
	for _, p := range res.DailyRevenue {
		_ = cw.Write([]string{p.Date, strconv.Itoa(p.Orders), p.Revenue.StringFixed(2)})
	}
	_ = cw.Write([]string{})
	_ = cw.Write([]string{"product_id", "name", "quantity", "revenue"})
	for _, p := range res.TopProducts {
		_ = cw.Write([]string{p.ProductID, p.Name, strconv.Itoa(p.Quantity), p.Revenue.StringFixed(2)})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		log.Error().Err(err).Msg("write csv report")
	}
}
