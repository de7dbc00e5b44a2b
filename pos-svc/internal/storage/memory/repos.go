package memory

import (
	"context"
	"sort"
	"time"

	"overcooked-pos/pos-svc/internal/domain"
	"overcooked-pos/pos-svc/internal/storage"

	"github.com/shopspring/decimal"
)

func (s *tableStore) Create(_ context.Context, t *domain.Table) error {
	if _, ok := s.d.tables[t.ID]; ok {
		return duplicate("table", t.ID)
	}
	s.d.tables[t.ID] = *t
	return nil
}

func (s *tableStore) Get(_ context.Context, id string) (*domain.Table, error) {
	t, ok := s.d.tables[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &t, nil
}

func (s *tableStore) GetForUpdate(ctx context.Context, id string) (*domain.Table, error) {
	return s.Get(ctx, id)
}

func (s *tableStore) List(_ context.Context) ([]domain.Table, error) {
	var out []domain.Table
	for _, t := range s.d.tables {
		if t.Active {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (s *tableStore) Update(_ context.Context, t *domain.Table) error {
	if _, ok := s.d.tables[t.ID]; !ok {
		return storage.ErrNotFound
	}
	s.d.tables[t.ID] = *t
	return nil
}

func (s *tabStore) Create(_ context.Context, tab *domain.Tab) error {
	if _, ok := s.d.tabs[tab.ID]; ok {
		return duplicate("tab", tab.ID)
	}
	stored := *tab
	stored.Items = nil
	s.d.tabs[tab.ID] = stored
	return nil
}

func (s *tabStore) Get(_ context.Context, id string) (*domain.Tab, error) {
	tab, ok := s.d.tabs[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &tab, nil
}

func (s *tabStore) GetForUpdate(ctx context.Context, id string) (*domain.Tab, error) {
	return s.Get(ctx, id)
}

func (s *tabStore) Update(_ context.Context, tab *domain.Tab) error {
	if _, ok := s.d.tabs[tab.ID]; !ok {
		return storage.ErrNotFound
	}
	stored := *tab
	stored.Items = nil
	s.d.tabs[tab.ID] = stored
	return nil
}

func (s *tabStore) CreateItem(_ context.Context, item *domain.LineItem) error {
	if _, ok := s.d.items[item.ID]; ok {
		return duplicate("line item", item.ID)
	}
	s.d.items[item.ID] = *item
	return nil
}

func (s *tabStore) GetItem(_ context.Context, id string) (*domain.LineItem, error) {
	item, ok := s.d.items[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &item, nil
}

func (s *tabStore) UpdateItem(_ context.Context, item *domain.LineItem) error {
	if _, ok := s.d.items[item.ID]; !ok {
		return storage.ErrNotFound
	}
	s.d.items[item.ID] = *item
	return nil
}

func (s *tabStore) ListItems(_ context.Context, tabID string) ([]domain.LineItem, error) {
	var out []domain.LineItem
	for _, item := range s.d.items {
		if item.TabID == tabID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *productStore) Create(_ context.Context, p *domain.Product) error {
	if _, ok := s.d.products[p.ID]; ok {
		return duplicate("product", p.ID)
	}
	s.d.products[p.ID] = *p
	return nil
}

func (s *productStore) Get(_ context.Context, id string) (*domain.Product, error) {
	p, ok := s.d.products[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &p, nil
}

func (s *recipeStore) Lines(_ context.Context, productID string) ([]domain.RecipeLine, error) {
	return append([]domain.RecipeLine(nil), s.d.recipes[productID]...), nil
}

func (s *recipeStore) Replace(_ context.Context, productID string, lines []domain.RecipeLine) error {
	stored := make([]domain.RecipeLine, len(lines))
	for i, l := range lines {
		l.ProductID = productID
		stored[i] = l
	}
	sort.SliceStable(stored, func(i, j int) bool { return stored[i].Position < stored[j].Position })
	s.d.recipes[productID] = stored
	return nil
}

func (s *stockStore) GetLevel(_ context.Context, productID, warehouseID string) (*domain.StockLevel, error) {
	lvl, ok := s.d.levels[levelKey{productID, warehouseID}]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &lvl, nil
}

func (s *stockStore) LockLevel(_ context.Context, productID, warehouseID string) (*domain.StockLevel, error) {
	key := levelKey{productID, warehouseID}
	lvl, ok := s.d.levels[key]
	if !ok {
		lvl = domain.StockLevel{
			ProductID:   productID,
			WarehouseID: warehouseID,
			Quantity:    decimal.Zero,
			UpdatedAt:   time.Now().UTC(),
		}
		s.d.levels[key] = lvl
	}
	return &lvl, nil
}

func (s *stockStore) SaveLevel(_ context.Context, level *domain.StockLevel) error {
	key := levelKey{level.ProductID, level.WarehouseID}
	if _, ok := s.d.levels[key]; !ok {
		return storage.ErrNotFound
	}
	s.d.levels[key] = *level
	return nil
}

func (s *stockStore) AppendMovement(_ context.Context, m *domain.Movement) error {
	s.d.movements = append(s.d.movements, *m)
	return nil
}

func (s *stockStore) MovementsByReference(_ context.Context, refType, refID string) ([]domain.Movement, error) {
	var out []domain.Movement
	for _, m := range s.d.movements {
		if m.ReferenceType == refType && m.ReferenceID == refID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *stockStore) ListMovements(_ context.Context, productID, warehouseID string, limit int) ([]domain.Movement, error) {
	var out []domain.Movement
	for i := len(s.d.movements) - 1; i >= 0; i-- {
		m := s.d.movements[i]
		if m.ProductID != productID || m.WarehouseID != warehouseID {
			continue
		}
		out = append(out, m)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *stockStore) SumMovements(_ context.Context, productID, warehouseID string) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, m := range s.d.movements {
		if m.ProductID == productID && m.WarehouseID == warehouseID {
			sum = sum.Add(m.Delta)
		}
	}
	return sum, nil
}

func (s *ticketStore) Create(_ context.Context, t *domain.KitchenTicket) error {
	if _, ok := s.d.tickets[t.ID]; ok {
		return duplicate("ticket", t.ID)
	}
	s.d.tickets[t.ID] = *t
	return nil
}

func (s *ticketStore) GetForUpdate(_ context.Context, id string) (*domain.KitchenTicket, error) {
	t, ok := s.d.tickets[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &t, nil
}

func (s *ticketStore) Update(_ context.Context, t *domain.KitchenTicket) error {
	if _, ok := s.d.tickets[t.ID]; !ok {
		return storage.ErrNotFound
	}
	s.d.tickets[t.ID] = *t
	return nil
}

func (s *ticketStore) ListOpen(_ context.Context, station string) ([]domain.KitchenTicket, error) {
	var out []domain.KitchenTicket
	for _, t := range s.d.tickets {
		if t.Status == domain.TicketDelivered {
			continue
		}
		if station != "" && t.Station != station {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *reservationStore) Create(_ context.Context, r *domain.Reservation) error {
	if _, ok := s.d.reservations[r.ID]; ok {
		return duplicate("reservation", r.ID)
	}
	s.d.reservations[r.ID] = *r
	return nil
}

func (s *reservationStore) Get(_ context.Context, id string) (*domain.Reservation, error) {
	r, ok := s.d.reservations[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &r, nil
}

func (s *reservationStore) GetForUpdate(ctx context.Context, id string) (*domain.Reservation, error) {
	return s.Get(ctx, id)
}

func (s *reservationStore) Update(_ context.Context, r *domain.Reservation) error {
	if _, ok := s.d.reservations[r.ID]; !ok {
		return storage.ErrNotFound
	}
	s.d.reservations[r.ID] = *r
	return nil
}

func (s *reservationStore) ListBlocking(_ context.Context, from, to time.Time) ([]domain.Reservation, error) {
	return s.filter(func(r *domain.Reservation) bool {
		return r.Blocking() && !r.StartsAt.Before(from) && r.StartsAt.Before(to)
	}), nil
}

func (s *reservationStore) ListDue(_ context.Context, statuses []domain.ReservationStatus, cutoff time.Time) ([]domain.Reservation, error) {
	return s.filter(func(r *domain.Reservation) bool {
		if r.StartsAt.After(cutoff) {
			return false
		}
		for _, st := range statuses {
			if r.Status == st {
				return true
			}
		}
		return false
	}), nil
}

func (s *reservationStore) filter(keep func(r *domain.Reservation) bool) []domain.Reservation {
	var out []domain.Reservation
	for _, r := range s.d.reservations {
		if keep(&r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartsAt.Equal(out[j].StartsAt) {
			return out[i].StartsAt.Before(out[j].StartsAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *loyaltyStore) Get(_ context.Context, customerID string) (*domain.LoyaltyAccount, error) {
	a, ok := s.d.accounts[customerID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &a, nil
}

func (s *loyaltyStore) GetForUpdate(ctx context.Context, customerID string) (*domain.LoyaltyAccount, error) {
	return s.Get(ctx, customerID)
}

func (s *loyaltyStore) Create(_ context.Context, a *domain.LoyaltyAccount) error {
	if _, ok := s.d.accounts[a.CustomerID]; ok {
		return duplicate("loyalty account", a.CustomerID)
	}
	s.d.accounts[a.CustomerID] = *a
	return nil
}

func (s *loyaltyStore) Update(_ context.Context, a *domain.LoyaltyAccount) error {
	if _, ok := s.d.accounts[a.CustomerID]; !ok {
		return storage.ErrNotFound
	}
	s.d.accounts[a.CustomerID] = *a
	return nil
}

func (s *loyaltyStore) AppendEntry(_ context.Context, e *domain.LoyaltyEntry) error {
	s.d.entries = append(s.d.entries, *e)
	return nil
}

func (s *loyaltyStore) Entries(_ context.Context, customerID string, limit int) ([]domain.LoyaltyEntry, error) {
	var out []domain.LoyaltyEntry
	for i := len(s.d.entries) - 1; i >= 0; i-- {
		e := s.d.entries[i]
		if e.CustomerID != customerID {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *auditStore) Append(_ context.Context, e *domain.AuditEntry) error {
	s.d.audit = append(s.d.audit, *e)
	return nil
}
