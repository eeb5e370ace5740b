package handler

import (
	"errors"
	"fxcache/internal/domain"
	"fxcache/internal/rate"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

type RateItem struct {
	Target    string    `json:"target"`
	Value     float64   `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

type GetRatesResponse struct {
	Base  string     `json:"base"`
	Rates []RateItem `json:"rates"`
}

// GetRates godoc
// @Summary Current rates for a base currency
// @Description Returns the cached rate set, refreshing from the external API when stale
// @Tags Rates
// @Param base path string true "Base currency code"
// @Produce json
// @Success 200 {object} GetRatesResponse
// @Failure 404 {object} errorResponse
// @Router /rates/{base} [get]
func (h *Handler) GetRates(w http.ResponseWriter, r *http.Request) {
	base := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "base")))

	if err := rate.ValidateCode(base); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rates, err := h.service.GetRates(r.Context(), base)
	if err != nil {
		if errors.Is(err, domain.ErrNoRatesAvailable) {
			writeError(w, http.StatusNotFound, "no data available")
			return
		}
		msg := "ups, couldn't get rates this time"
		logrus.WithError(err).WithFields(logrus.Fields{"handler": "GetRates", "base": base}).Error(msg)
		writeError(w, http.StatusInternalServerError, msg)
		return
	}

	res := GetRatesResponse{Base: base, Rates: make([]RateItem, 0, len(rates))}
	for _, item := range rates {
		res.Rates = append(res.Rates, RateItem{Target: item.Target, Value: item.Value, UpdatedAt: item.UpdatedAt})
	}
	writeJSON(w, res)
}
