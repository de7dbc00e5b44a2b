package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"overcooked-pos/pos-svc/internal/domain"
	"overcooked-pos/pos-svc/internal/storage"
)

// Store is an in-process UnitOfWork. Transactions of one tenant run one at a
// time against a private copy that replaces the committed state only when fn
// succeeds, so a failed transaction leaves nothing behind.
type Store struct {
	mu      sync.Mutex
	tenants map[string]*tenantState
}

type tenantState struct {
	sem  chan struct{}
	data *tenantData
}

func NewStore() *Store {
	return &Store{tenants: make(map[string]*tenantState)}
}

var (
	_ storage.UnitOfWork   = (*Store)(nil)
	_ storage.TenantLister = (*Store)(nil)
)

func (s *Store) state(tenantID string) *tenantState {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.tenants[tenantID]
	if !ok {
		st = &tenantState{sem: make(chan struct{}, 1), data: newTenantData()}
		s.tenants[tenantID] = st
	}
	return st
}

func (s *Store) RunInTransaction(ctx context.Context, tenantID string, fn func(ctx context.Context, r storage.Repos) error) error {
	if tenantID == "" {
		return domain.Validation("tenant id is required")
	}
	st := s.state(tenantID)

	select {
	case st.sem <- struct{}{}:
	case <-ctx.Done():
		return &domain.Error{
			Kind:    domain.KindConflict,
			Code:    domain.CodeResourceBusy,
			Message: "resource is busy, retry",
			Err:     ctx.Err(),
		}
	}
	defer func() { <-st.sem }()

	work := st.data.clone()
	if err := fn(ctx, &repos{d: work}); err != nil {
		if de, ok := domain.AsError(err); ok {
			return de
		}
		return domain.Internal(err, "transaction failed")
	}
	st.data = work
	return nil
}

func (s *Store) Tenants(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.tenants))
	for id := range s.tenants {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

type levelKey struct {
	product   string
	warehouse string
}

type tenantData struct {
	tables       map[string]domain.Table
	tabs         map[string]domain.Tab
	items        map[string]domain.LineItem
	products     map[string]domain.Product
	recipes      map[string][]domain.RecipeLine
	levels       map[levelKey]domain.StockLevel
	movements    []domain.Movement
	tickets      map[string]domain.KitchenTicket
	reservations map[string]domain.Reservation
	accounts     map[string]domain.LoyaltyAccount
	entries      []domain.LoyaltyEntry
	audit        []domain.AuditEntry
}

func newTenantData() *tenantData {
	return &tenantData{
		tables:       make(map[string]domain.Table),
		tabs:         make(map[string]domain.Tab),
		items:        make(map[string]domain.LineItem),
		products:     make(map[string]domain.Product),
		recipes:      make(map[string][]domain.RecipeLine),
		levels:       make(map[levelKey]domain.StockLevel),
		tickets:      make(map[string]domain.KitchenTicket),
		reservations: make(map[string]domain.Reservation),
		accounts:     make(map[string]domain.LoyaltyAccount),
	}
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// clone copies containers only. Stored values are replaced wholesale on
// update, never mutated in place.
func (d *tenantData) clone() *tenantData {
	return &tenantData{
		tables:       copyMap(d.tables),
		tabs:         copyMap(d.tabs),
		items:        copyMap(d.items),
		products:     copyMap(d.products),
		recipes:      copyMap(d.recipes),
		levels:       copyMap(d.levels),
		movements:    append([]domain.Movement(nil), d.movements...),
		tickets:      copyMap(d.tickets),
		reservations: copyMap(d.reservations),
		accounts:     copyMap(d.accounts),
		entries:      append([]domain.LoyaltyEntry(nil), d.entries...),
		audit:        append([]domain.AuditEntry(nil), d.audit...),
	}
}

var errDuplicate = errors.New("memory: duplicate key")

func duplicate(what, id string) error {
	return &domain.Error{
		Kind:    domain.KindConflict,
		Code:    domain.CodeDuplicate,
		Message: what + " " + id + " already exists",
		Err:     errDuplicate,
	}
}

type repos struct {
	d *tenantData
}

func (r *repos) Tables() storage.TableRepository             { return (*tableStore)(r) }
func (r *repos) Tabs() storage.TabRepository                 { return (*tabStore)(r) }
func (r *repos) Products() storage.ProductRepository         { return (*productStore)(r) }
func (r *repos) Recipes() storage.RecipeRepository           { return (*recipeStore)(r) }
func (r *repos) Stock() storage.StockRepository              { return (*stockStore)(r) }
func (r *repos) Tickets() storage.TicketRepository           { return (*ticketStore)(r) }
func (r *repos) Reservations() storage.ReservationRepository { return (*reservationStore)(r) }
func (r *repos) Loyalty() storage.LoyaltyRepository          { return (*loyaltyStore)(r) }
func (r *repos) Audit() storage.AuditRepository              { return (*auditStore)(r) }

// Each repository is a view of the same transaction state.
type (
	tableStore       repos
	tabStore         repos
	productStore     repos
	recipeStore      repos
	stockStore       repos
	ticketStore      repos
	reservationStore repos
	loyaltyStore     repos
	auditStore       repos
)
