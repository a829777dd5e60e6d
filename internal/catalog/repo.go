package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("catalog: not found")

type Repo struct{ DB *pgxpool.Pool }

// ---- products ----

func (r *Repo) CreateProduct(ctx context.Context, p Product) (Product, error) {
	p.ID = uuid.NewString()
	err := r.DB.QueryRow(ctx, `
		INSERT INTO products(id, category_id, name, description, price)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at, updated_at`,
		p.ID, p.CategoryID, p.Name, p.Description, p.Price,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *Repo) UpdateProduct(ctx context.Context, p Product) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE products SET category_id=$2, name=$3, description=$4, price=$5, updated_at=now()
		WHERE id=$1`,
		p.ID, p.CategoryID, p.Name, p.Description, p.Price)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) DeleteProduct(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetProduct loads one product with its full color/size tree.
func (r *Repo) GetProduct(ctx context.Context, id string) (Product, error) {
	var p Product
	err := r.DB.QueryRow(ctx, `
		SELECT id, category_id, name, description, price, created_at, updated_at
		FROM products WHERE id=$1`, id,
	).Scan(&p.ID, &p.CategoryID, &p.Name, &p.Description, &p.Price, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, err
	}

	rows, err := r.DB.Query(ctx, `
		SELECT c.id, c.product_id, c.name, c.image_url
		FROM product_colors c WHERE c.product_id=$1 ORDER BY c.name`, id)
	if err != nil {
		return Product{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var c Color
		if err := rows.Scan(&c.ID, &c.ProductID, &c.Name, &c.ImageURL); err != nil {
			return Product{}, err
		}
		p.Colors = append(p.Colors, c)
	}
	if err := rows.Err(); err != nil {
		return Product{}, err
	}

	for i := range p.Colors {
		sizes, err := r.ListSizes(ctx, p.Colors[i].ID)
		if err != nil {
			return Product{}, err
		}
		p.Colors[i].Sizes = sizes
	}
	return p, nil
}

// ListProducts filters by category when categoryID is non-nil.
func (r *Repo) ListProducts(ctx context.Context, categoryID *string) ([]Product, error) {
	q := `SELECT id, category_id, name, description, price, created_at, updated_at
	      FROM products`
	args := []any{}
	if categoryID != nil {
		q += ` WHERE category_id=$1`
		args = append(args, *categoryID)
	}
	q += ` ORDER BY created_at DESC`

	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.CategoryID, &p.Name, &p.Description, &p.Price, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ---- colors & sizes ----

func (r *Repo) CreateColor(ctx context.Context, c Color) (Color, error) {
	c.ID = uuid.NewString()
	_, err := r.DB.Exec(ctx, `
		INSERT INTO product_colors(id, product_id, name, image_url)
		VALUES ($1,$2,$3,$4)`,
		c.ID, c.ProductID, c.Name, c.ImageURL)
	return c, err
}

func (r *Repo) CreateSize(ctx context.Context, s Size) (Size, error) {
	s.ID = uuid.NewString()
	_, err := r.DB.Exec(ctx, `
		INSERT INTO product_sizes(id, color_id, label, stock)
		VALUES ($1,$2,$3,$4)`,
		s.ID, s.ColorID, s.Label, s.Stock)
	return s, err
}

func (r *Repo) ListSizes(ctx context.Context, colorID string) ([]Size, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, color_id, label, stock FROM product_sizes
		WHERE color_id=$1 ORDER BY label`, colorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Size
	for rows.Next() {
		var s Size
		if err := rows.Scan(&s.ID, &s.ColorID, &s.Label, &s.Stock); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// SetStock is the back-office restock path; the transition engine is the only
// other writer of this column.
func (r *Repo) SetStock(ctx context.Context, sizeID string, stock int) error {
	ct, err := r.DB.Exec(ctx, `UPDATE product_sizes SET stock=$2 WHERE id=$1`, sizeID, stock)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ---- categories ----

func (r *Repo) CreateCategory(ctx context.Context, c Category) (Category, error) {
	c.ID = uuid.NewString()
	_, err := r.DB.Exec(ctx, `INSERT INTO categories(id, name, slug) VALUES ($1,$2,$3)`,
		c.ID, c.Name, c.Slug)
	return c, err
}

func (r *Repo) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.DB.Query(ctx, `SELECT id, name, slug FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) DeleteCategory(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM categories WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ---- banners ----

func (r *Repo) CreateBanner(ctx context.Context, b Banner) (Banner, error) {
	b.ID = uuid.NewString()
	_, err := r.DB.Exec(ctx, `
		INSERT INTO banners(id, title, image_url, link_url, active, sort_order)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		b.ID, b.Title, b.ImageURL, b.LinkURL, b.Active, b.SortOrder)
	return b, err
}

func (r *Repo) UpdateBanner(ctx context.Context, b Banner) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE banners SET title=$2, image_url=$3, link_url=$4, active=$5, sort_order=$6
		WHERE id=$1`,
		b.ID, b.Title, b.ImageURL, b.LinkURL, b.Active, b.SortOrder)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) DeleteBanner(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM banners WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) ListActiveBanners(ctx context.Context) ([]Banner, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, title, image_url, link_url, active, sort_order
		FROM banners WHERE active ORDER BY sort_order`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Banner
	for rows.Next() {
		var b Banner
		if err := rows.Scan(&b.ID, &b.Title, &b.ImageURL, &b.LinkURL, &b.Active, &b.SortOrder); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
