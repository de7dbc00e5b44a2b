package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
)

type pointsRequest struct {
	Amount    int64  `json:"amount"`
	Points    int64  `json:"points"`
	Reference string `json:"reference"`
}

func (h *Handler) loyaltyAccount(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 20)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	sum, err := h.Loyalty.Account(r.Context(), mux.Vars(r)["customerId"], limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (h *Handler) accrue(w http.ResponseWriter, r *http.Request) {
	var in pointsRequest
	if err := decode(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	sum, err := h.Loyalty.Accrue(r.Context(), mux.Vars(r)["customerId"], in.Amount, in.Reference)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (h *Handler) redeem(w http.ResponseWriter, r *http.Request) {
	var in pointsRequest
	if err := decode(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	sum, err := h.Loyalty.Redeem(r.Context(), mux.Vars(r)["customerId"], in.Points, in.Reference)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (h *Handler) adjust(w http.ResponseWriter, r *http.Request) {
	var in pointsRequest
	if err := decode(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	sum, err := h.Loyalty.Adjust(r.Context(), mux.Vars(r)["customerId"], in.Points, in.Reference)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (h *Handler) bonus(w http.ResponseWriter, r *http.Request) {
	var in pointsRequest
	if err := decode(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	sum, err := h.Loyalty.Bonus(r.Context(), mux.Vars(r)["customerId"], in.Points, in.Reference)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}
