package httpapi

import (
	"net/http"

	"overcooked-pos/pos-svc/internal/service"

	"github.com/gorilla/mux"
)

func (h *Handler) reservationAvailability(w http.ResponseWriter, r *http.Request) {
	party, err := queryInt(r, "party_size", 2)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	slots, err := h.Reservations.ComputeAvailability(r.Context(), r.URL.Query().Get("date"), party)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, slots)
}

func (h *Handler) createReservation(w http.ResponseWriter, r *http.Request) {
	var in service.CreateReservationInput
	if err := decode(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	res, err := h.Reservations.Create(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handler) getReservation(w http.ResponseWriter, r *http.Request) {
	res, err := h.Reservations.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) confirmReservation(w http.ResponseWriter, r *http.Request) {
	res, err := h.Reservations.Confirm(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) cancelReservation(w http.ResponseWriter, r *http.Request) {
	var in reasonRequest
	if err := decode(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	res, err := h.Reservations.Cancel(r.Context(), mux.Vars(r)["id"], in.Reason)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) seatReservation(w http.ResponseWriter, r *http.Request) {
	var in struct {
		TableID string `json:"table_id"`
	}
	if err := decode(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	res, err := h.Reservations.Seat(r.Context(), mux.Vars(r)["id"], in.TableID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) reservationQRCode(w http.ResponseWriter, r *http.Request) {
	png, err := h.Reservations.ConfirmationQR(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
