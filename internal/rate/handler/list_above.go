package handler

import (
	"fxcache/internal/rate"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

type AboveItem struct {
	Target    string    `json:"target"`
	Value     float64   `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ListAboveResponse struct {
	Base      string      `json:"base"`
	Threshold float64     `json:"threshold"`
	Rates     []AboveItem `json:"rates"`
}

// ListAbove returns stored targets whose rate exceeds the threshold,
// descending by rate.
func (h *Handler) ListAbove(w http.ResponseWriter, r *http.Request) {
	base := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "base")))

	if err := rate.ValidateCode(base); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	threshold, err := strconv.ParseFloat(r.URL.Query().Get("threshold"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "threshold must be a number")
		return
	}

	rates, err := h.service.ListAbove(r.Context(), base, threshold)
	if err != nil {
		msg := "ups, couldn't filter rates this time"
		logrus.WithError(err).WithFields(logrus.Fields{"handler": "ListAbove", "base": base}).Error(msg)
		writeError(w, http.StatusInternalServerError, msg)
		return
	}

	res := ListAboveResponse{Base: base, Threshold: threshold, Rates: make([]AboveItem, 0, len(rates))}
	for _, item := range rates {
		res.Rates = append(res.Rates, AboveItem{Target: item.Target, Value: item.Value, UpdatedAt: item.UpdatedAt})
	}
	writeJSON(w, res)
}
