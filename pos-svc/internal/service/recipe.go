package service

import (
	"context"
	"sort"
	"strings"

	"overcooked-pos/pos-svc/internal/domain"
	"overcooked-pos/pos-svc/internal/storage"

	"github.com/shopspring/decimal"
)

// RecipeResolver explodes a sellable product into the leaf ingredients it
// consumes. Intermediate products are expanded recursively; a product with
// no recipe lines is a leaf when it tracks stock.
type RecipeResolver struct {
	deps Deps
}

func NewRecipeResolver(deps Deps) *RecipeResolver {
	return &RecipeResolver{deps: deps.withDefaults()}
}

type Explosion struct {
	Product      *domain.Product      `json:"product"`
	Requirements []domain.Requirement `json:"requirements"`
	BlockedBy    []string             `json:"blocked_by,omitempty"`
}

// Resolve explodes qty units of productID for the caller's tenant.
func (rr *RecipeResolver) Resolve(ctx context.Context, productID string, qty decimal.Decimal) (*Explosion, error) {
	actor, err := actorFrom(ctx, domain.PrivilegeStaff)
	if err != nil {
		return nil, err
	}
	if !qty.IsPositive() {
		return nil, domain.Validation("quantity must be positive")
	}

	var out *Explosion
	err = rr.deps.UoW.RunInTransaction(ctx, actor.TenantID, func(ctx context.Context, r storage.Repos) error {
		out, err = explode(ctx, r, productID, qty)
		return err
	})
	return out, err
}

// SetRecipe replaces a product's recipe. A recipe that would close a cycle
// is rejected and nothing is stored.
func (rr *RecipeResolver) SetRecipe(ctx context.Context, productID string, lines []domain.RecipeLine) error {
	actor, err := actorFrom(ctx, domain.PrivilegeManager)
	if err != nil {
		return err
	}
	seen := make(map[string]bool, len(lines))
	for i, l := range lines {
		if l.IngredientID == "" || !l.Quantity.IsPositive() {
			return domain.Validation("recipe line %d needs an ingredient and a positive quantity", i)
		}
		if l.IngredientID == productID {
			return domain.ValidationCode(domain.CodeRecipeCycle, "product %s cannot contain itself", productID)
		}
		if seen[l.IngredientID] {
			return domain.Validation("ingredient %s listed twice", l.IngredientID)
		}
		seen[l.IngredientID] = true
	}

	return rr.deps.UoW.RunInTransaction(ctx, actor.TenantID, func(ctx context.Context, r storage.Repos) error {
		if _, err := r.Products().Get(ctx, productID); err != nil {
			return notFound(err, domain.CodeProductNotFound, "product", productID)
		}
		if err := r.Recipes().Replace(ctx, productID, lines); err != nil {
			return err
		}
		_, err := explode(ctx, r, productID, decimal.NewFromInt(1))
		return err
	})
}

func explode(ctx context.Context, r storage.Repos, productID string, qty decimal.Decimal) (*Explosion, error) {
	w := &recipeWalker{
		r:        r,
		memo:     make(map[string]map[string]decimal.Decimal),
		products: make(map[string]*domain.Product),
		visiting: make(map[string]bool),
		blocked:  make(map[string]bool),
	}
	perUnit, err := w.perUnit(ctx, productID, nil)
	if err != nil {
		return nil, err
	}

	out := &Explosion{Product: w.products[productID]}
	for id, q := range perUnit {
		out.Requirements = append(out.Requirements, domain.Requirement{ProductID: id, Quantity: q.Mul(qty)})
	}
	// Sorted order doubles as the stock lock order.
	sort.Slice(out.Requirements, func(i, j int) bool {
		return out.Requirements[i].ProductID < out.Requirements[j].ProductID
	})
	for id := range w.blocked {
		out.BlockedBy = append(out.BlockedBy, id)
	}
	sort.Strings(out.BlockedBy)
	return out, nil
}

type recipeWalker struct {
	r        storage.Repos
	memo     map[string]map[string]decimal.Decimal
	products map[string]*domain.Product
	visiting map[string]bool
	blocked  map[string]bool
}

func (w *recipeWalker) product(ctx context.Context, id string) (*domain.Product, error) {
	if p, ok := w.products[id]; ok {
		return p, nil
	}
	p, err := w.r.Products().Get(ctx, id)
	if err != nil {
		return nil, notFound(err, domain.CodeProductNotFound, "product", id)
	}
	w.products[id] = p
	return p, nil
}

// perUnit returns leaf quantities for one unit of id.
func (w *recipeWalker) perUnit(ctx context.Context, id string, path []string) (map[string]decimal.Decimal, error) {
	if m, ok := w.memo[id]; ok {
		return m, nil
	}
	if w.visiting[id] {
		return nil, domain.ValidationCode(domain.CodeRecipeCycle, "recipe cycle: %s",
			strings.Join(append(path, id), " -> ")).With("product_id", id)
	}

	p, err := w.product(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Blocked {
		w.blocked[id] = true
	}

	lines, err := w.r.Recipes().Lines(ctx, id)
	if err != nil {
		return nil, err
	}

	out := make(map[string]decimal.Decimal)
	if len(lines) == 0 {
		if p.TrackStock {
			out[id] = decimal.NewFromInt(1)
		}
		w.memo[id] = out
		return out, nil
	}

	w.visiting[id] = true
	for _, l := range lines {
		sub, err := w.perUnit(ctx, l.IngredientID, append(path, id))
		if err != nil {
			return nil, err
		}
		for leaf, q := range sub {
			out[leaf] = out[leaf].Add(q.Mul(l.Quantity))
		}
	}
	delete(w.visiting, id)

	w.memo[id] = out
	return out, nil
}
