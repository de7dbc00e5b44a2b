package postgres

import (
	"context"

	"overcooked-pos/pos-svc/internal/domain"

	"github.com/jmoiron/sqlx"
)

const productColumns = `id, name, kind, price, blocked, stock_policy, track_stock, unit, reorder_point`

type ProductRepository struct {
	tx *sqlx.Tx
}

func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	_, err := r.tx.NamedExecContext(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES (:id, :name, :kind, :price, :blocked, :stock_policy, :track_stock, :unit, :reorder_point)`, p)
	return err
}

func (r *ProductRepository) Get(ctx context.Context, id string) (*domain.Product, error) {
	return getOne[domain.Product](ctx, r.tx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

type RecipeRepository struct {
	tx *sqlx.Tx
}

func (r *RecipeRepository) Lines(ctx context.Context, productID string) ([]domain.RecipeLine, error) {
	var lines []domain.RecipeLine
	err := r.tx.SelectContext(ctx, &lines, `
		SELECT product_id, ingredient_id, quantity, unit, position
		FROM recipe_lines
		WHERE product_id = $1
		ORDER BY position`, productID)
	return lines, err
}

func (r *RecipeRepository) Replace(ctx context.Context, productID string, lines []domain.RecipeLine) error {
	if _, err := r.tx.ExecContext(ctx, `DELETE FROM recipe_lines WHERE product_id = $1`, productID); err != nil {
		return err
	}
	for i := range lines {
		lines[i].ProductID = productID
		if _, err := r.tx.NamedExecContext(ctx, `
			INSERT INTO recipe_lines (product_id, ingredient_id, quantity, unit, position)
			VALUES (:product_id, :ingredient_id, :quantity, :unit, :position)`, lines[i]); err != nil {
			return err
		}
	}
	return nil
}
