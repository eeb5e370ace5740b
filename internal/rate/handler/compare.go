package handler

import (
	"fxcache/internal/rate"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

type ComparisonItem struct {
	Target string   `json:"target"`
	Value  *float64 `json:"value,omitempty"`
	Found  bool     `json:"found"`
}

type CompareResponse struct {
	Base    string           `json:"base"`
	Targets []ComparisonItem `json:"targets"`
}

// Compare prices the named target currencies against the base. Targets with
// no stored rate are flagged per item instead of failing the request.
func (h *Handler) Compare(w http.ResponseWriter, r *http.Request) {
	base := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "base")))

	if err := rate.ValidateCode(base); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	targets := parseTargets(r.URL.Query().Get("targets"))
	if len(targets) == 0 {
		writeError(w, http.StatusBadRequest, "at least one target currency is required")
		return
	}

	comparisons, err := h.service.Compare(r.Context(), base, targets)
	if err != nil {
		msg := "ups, couldn't compare rates this time"
		logrus.WithError(err).WithFields(logrus.Fields{"handler": "Compare", "base": base}).Error(msg)
		writeError(w, http.StatusInternalServerError, msg)
		return
	}

	res := CompareResponse{Base: base, Targets: make([]ComparisonItem, 0, len(comparisons))}
	for _, c := range comparisons {
		item := ComparisonItem{Target: c.Target, Found: c.Found}
		if c.Found {
			v := c.Value
			item.Value = &v
		}
		res.Targets = append(res.Targets, item)
	}
	writeJSON(w, res)
}

func parseTargets(raw string) []string {
	parts := strings.Split(raw, ",")
	targets := make([]string, 0, len(parts))
	for _, p := range parts {
		code := strings.ToUpper(strings.TrimSpace(p))
		if code == "" {
			continue
		}
		targets = append(targets, code)
	}
	return targets
}
