package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"overcooked-pos/pos-svc/internal/domain"
	"overcooked-pos/pos-svc/internal/service"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Handler struct {
	Tabs         service.TabServiceInterface
	Kitchen      service.KitchenServiceInterface
	Stock        service.StockServiceInterface
	Recipes      service.RecipeServiceInterface
	Reservations service.ReservationServiceInterface
	Loyalty      service.LoyaltyServiceInterface
	Logger       *zap.Logger
}

func NewHandler(tabs service.TabServiceInterface, kitchen service.KitchenServiceInterface, stock service.StockServiceInterface,
	recipes service.RecipeServiceInterface, reservations service.ReservationServiceInterface, loyalty service.LoyaltyServiceInterface,
	logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Tabs:         tabs,
		Kitchen:      kitchen,
		Stock:        stock,
		Recipes:      recipes,
		Reservations: reservations,
		Loyalty:      loyalty,
		Logger:       logger,
	}
}

// RegisterRoutes mounts the API on r, which is expected to sit under /api.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/tables", h.listTables).Methods("GET")
	r.HandleFunc("/tables/{id}/open", h.openTable).Methods("POST")
	r.HandleFunc("/tabs/{id}", h.getTab).Methods("GET")
	r.HandleFunc("/tabs/{id}/items", h.addItem).Methods("POST")
	r.HandleFunc("/tabs/{id}/precheck", h.preCheck).Methods("POST")
	r.HandleFunc("/tabs/{id}/pay", h.payTab).Methods("POST")
	r.HandleFunc("/tabs/{id}/close", h.closeTab).Methods("POST")
	r.HandleFunc("/tabs/{id}/kitchen", h.sendToKitchen).Methods("POST")
	r.HandleFunc("/items/{id}/void", h.voidItem).Methods("POST")
	r.HandleFunc("/items/{id}/comp", h.compItem).Methods("POST")

	r.HandleFunc("/tickets/{id}/advance", h.advanceTicket).Methods("POST")
	r.HandleFunc("/kitchen/queue", h.kitchenQueue).Methods("GET")

	r.HandleFunc("/stock/availability", h.stockAvailability).Methods("GET")
	r.HandleFunc("/stock/levels", h.stockLevel).Methods("GET")
	r.HandleFunc("/stock/movements", h.listMovements).Methods("GET")
	r.HandleFunc("/stock/movements", h.postMovement).Methods("POST")
	r.HandleFunc("/stock/transfers", h.transfer).Methods("POST")
	r.HandleFunc("/stock/counts", h.count).Methods("POST")
	r.HandleFunc("/stock/reconcile", h.reconcile).Methods("GET")
	r.HandleFunc("/products/{id}/recipe", h.setRecipe).Methods("POST")
	r.HandleFunc("/products/{id}/explosion", h.explode).Methods("GET")

	r.HandleFunc("/reservations/availability", h.reservationAvailability).Methods("GET")
	r.HandleFunc("/reservations", h.createReservation).Methods("POST")
	r.HandleFunc("/reservations/{id}", h.getReservation).Methods("GET")
	r.HandleFunc("/reservations/{id}/confirm", h.confirmReservation).Methods("POST")
	r.HandleFunc("/reservations/{id}/cancel", h.cancelReservation).Methods("POST")
	r.HandleFunc("/reservations/{id}/seat", h.seatReservation).Methods("POST")
	r.HandleFunc("/reservations/{id}/qrcode", h.reservationQRCode).Methods("GET")

	r.HandleFunc("/loyalty/{customerId}", h.loyaltyAccount).Methods("GET")
	r.HandleFunc("/loyalty/{customerId}/accrue", h.accrue).Methods("POST")
	r.HandleFunc("/loyalty/{customerId}/redeem", h.redeem).Methods("POST")
	r.HandleFunc("/loyalty/{customerId}/adjust", h.adjust).Methods("POST")
	r.HandleFunc("/loyalty/{customerId}/bonus", h.bonus).Methods("POST")
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   "pos-svc",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) listTables(w http.ResponseWriter, r *http.Request) {
	tables, err := h.Tabs.ListTables(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tables)
}

func (h *Handler) openTable(w http.ResponseWriter, r *http.Request) {
	var in service.OpenTableInput
	if err := decode(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	in.TableID = mux.Vars(r)["id"]
	tab, err := h.Tabs.OpenTable(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tab)
}

func (h *Handler) getTab(w http.ResponseWriter, r *http.Request) {
	tab, err := h.Tabs.GetTab(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tab)
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	var in service.AddItemInput
	if err := decode(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	in.TabID = mux.Vars(r)["id"]
	res, err := h.Tabs.AddLineItem(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handler) voidItem(w http.ResponseWriter, r *http.Request) {
	var in reasonRequest
	if err := decode(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	tab, err := h.Tabs.VoidLineItem(r.Context(), mux.Vars(r)["id"], in.Reason)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tab)
}

func (h *Handler) compItem(w http.ResponseWriter, r *http.Request) {
	var in reasonRequest
	if err := decode(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	tab, err := h.Tabs.CompLineItem(r.Context(), mux.Vars(r)["id"], in.Reason)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tab)
}

func (h *Handler) preCheck(w http.ResponseWriter, r *http.Request) {
	tab, err := h.Tabs.RequestPreCheck(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tab)
}

func (h *Handler) payTab(w http.ResponseWriter, r *http.Request) {
	var in service.PayInput
	if err := decode(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	in.TabID = mux.Vars(r)["id"]
	res, err := h.Tabs.PayTab(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) closeTab(w http.ResponseWriter, r *http.Request) {
	var in service.CloseInput
	if err := decode(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	in.TabID = mux.Vars(r)["id"]
	tab, err := h.Tabs.CloseTab(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tab)
}

func (h *Handler) sendToKitchen(w http.ResponseWriter, r *http.Request) {
	var in service.SendInput
	if err := decode(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	in.TabID = mux.Vars(r)["id"]
	ticket, err := h.Kitchen.SendToKitchen(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ticket)
}

func (h *Handler) advanceTicket(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Status domain.TicketStatus `json:"status"`
	}
	if err := decode(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	ticket, err := h.Kitchen.AdvanceTicket(r.Context(), mux.Vars(r)["id"], in.Status)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ticket)
}

func (h *Handler) kitchenQueue(w http.ResponseWriter, r *http.Request) {
	views, err := h.Kitchen.Queue(r.Context(), r.URL.Query().Get("station"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// queryInt reads a positive integer parameter, falling back to def when absent.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, domain.Validation("%s must be a positive integer", name)
	}
	return n, nil
}

func queryDecimal(r *http.Request, name string, def decimal.Decimal) (decimal.Decimal, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, domain.Validation("%s must be a decimal", name)
	}
	return d, nil
}
