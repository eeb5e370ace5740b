package handler

import (
	"net/http"

	"github.com/sirupsen/logrus"
)

type GetCurrenciesResponse struct {
	Codes []string `json:"codes" example:"USD,EUR,JPY"`
}

// GetCurrencies godoc
// @Summary List known currencies
// @Description Retrieve all currency codes registered so far
// @Tags Rates
// @Produce json
// @Success 200 {object} GetCurrenciesResponse
// @Router /currencies [get]
func (h *Handler) GetCurrencies(w http.ResponseWriter, r *http.Request) {
	codes, err := h.service.Currencies(r.Context())
	if err != nil {
		msg := "ups, couldn't list currencies this time"
		logrus.WithError(err).WithField("handler", "GetCurrencies").Error(msg)
		writeError(w, http.StatusInternalServerError, msg)
		return
	}
	writeJSON(w, GetCurrenciesResponse{Codes: codes})
}
