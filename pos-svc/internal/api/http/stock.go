package httpapi

import (
	"net/http"

	"overcooked-pos/pos-svc/internal/domain"
	"overcooked-pos/pos-svc/internal/service"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

func (h *Handler) stockAvailability(w http.ResponseWriter, r *http.Request) {
	qty, err := queryInt(r, "qty", 1)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	av, err := h.Stock.CheckAvailability(r.Context(), r.URL.Query().Get("product_id"), qty)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, av)
}

func (h *Handler) stockLevel(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lvl, err := h.Stock.Level(r.Context(), q.Get("product_id"), q.Get("warehouse_id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lvl)
}

func (h *Handler) listMovements(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 50)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	list, err := h.Stock.Movements(r.Context(), q.Get("product_id"), q.Get("warehouse_id"), limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []domain.Movement{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) postMovement(w http.ResponseWriter, r *http.Request) {
	var in service.MovementInput
	if err := decode(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	m, err := h.Stock.PostMovement(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (h *Handler) transfer(w http.ResponseWriter, r *http.Request) {
	var in service.TransferInput
	if err := decode(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	moves, err := h.Stock.Transfer(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, moves)
}

func (h *Handler) count(w http.ResponseWriter, r *http.Request) {
	var in service.CountInput
	if err := decode(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	m, err := h.Stock.Count(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (h *Handler) reconcile(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rec, err := h.Stock.Reconcile(r.Context(), q.Get("product_id"), q.Get("warehouse_id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"level":        rec.Level,
		"movement_sum": rec.MovementSum,
		"balanced":     rec.Balanced(),
	})
}

func (h *Handler) setRecipe(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Lines []domain.RecipeLine `json:"lines"`
	}
	if err := decode(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.Recipes.SetRecipe(r.Context(), mux.Vars(r)["id"], in.Lines); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) explode(w http.ResponseWriter, r *http.Request) {
	qty, err := queryDecimal(r, "qty", decimal.NewFromInt(1))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	ex, err := h.Recipes.Resolve(r.Context(), mux.Vars(r)["id"], qty)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ex)
}
