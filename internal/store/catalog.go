package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/tiendify/tiendify/internal/model"
)

// ListProducts returns a page of products. A non-empty search filters on a
// case-insensitive name substring.
func (s *Store) ListProducts(ctx context.Context, limit, offset int, search string) ([]model.Product, error) {
	q := "SELECT * FROM products"
	args := []interface{}{}
	if search != "" {
		q += " WHERE LOWER(name) LIKE LOWER(?)"
		args = append(args, "%"+search+"%")
	}
	q += " ORDER BY id LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	var products []model.Product
	if err := s.db.SelectContext(ctx, &products, s.db.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// CountProducts returns the total number of products.
func (s *Store) CountProducts(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM products"); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

// GetProduct looks up a product by id.
func (s *Store) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	var p model.Product
	err := s.db.GetContext(ctx, &p, s.db.Rebind("SELECT * FROM products WHERE id = ?"), id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// CreateProduct inserts a product together with its category links.
func (s *Store) CreateProduct(ctx context.Context, p *model.Product, categoryIDs []int64) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	id, err := s.txInsert(ctx, tx,
		`INSERT INTO products (name, description, price, stock, hidden, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.Name, p.Description, p.Price, p.Stock, p.Hidden, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	p.ID = id

	if err := linkCategories(ctx, tx, s.db, p.ID, categoryIDs); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// UpdateProduct overwrites a product's fields and replaces its category links
// with the given set. Returns ErrNotFound if the product does not exist.
func (s *Store) UpdateProduct(ctx context.Context, p *model.Product, categoryIDs []int64) error {
	p.UpdatedAt = time.Now().UTC()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, s.db.Rebind(
		`UPDATE products SET name = ?, description = ?, price = ?, stock = ?, updated_at = ?
		 WHERE id = ?`),
		p.Name, p.Description, p.Price, p.Stock, p.UpdatedAt, p.ID)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update product rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, s.db.Rebind(
		"DELETE FROM product_categories WHERE product_id = ?"), p.ID); err != nil {
		return fmt.Errorf("clear category links: %w", err)
	}
	if err := linkCategories(ctx, tx, s.db, p.ID, categoryIDs); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// SetProductHidden flips a product's visibility flag.
func (s *Store) SetProductHidden(ctx context.Context, id int64, hidden bool) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind(
		"UPDATE products SET hidden = ?, updated_at = ? WHERE id = ?"),
		hidden, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("set product hidden: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set product hidden rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteProduct removes a product; links cascade.
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM products WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete product rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func linkCategories(ctx context.Context, tx *sqlx.Tx, db *sqlx.DB, productID int64, categoryIDs []int64) error {
	for _, cid := range categoryIDs {
		_, err := tx.ExecContext(ctx, db.Rebind(
			`INSERT INTO product_categories (product_id, category_id) VALUES (?, ?)
			 ON CONFLICT (product_id, category_id) DO NOTHING`),
			productID, cid)
		if err != nil {
			return fmt.Errorf("link category %d: %w", cid, err)
		}
	}
	return nil
}

// productCategoryRow joins a category to the product it is linked to.
type productCategoryRow struct {
	ProductID int64 `db:"product_id"`
	model.Category
}

// ProductCategories returns the categories linked to each of the given
// products, keyed by product id.
func (s *Store) ProductCategories(ctx context.Context, productIDs []int64) (map[int64][]model.Category, error) {
	out := make(map[int64][]model.Category, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}

	q, args, err := sqlx.In(
		`SELECT pc.product_id, c.id, c.slug, c.name, c.description, c.created_at
		 FROM product_categories pc
		 JOIN categories c ON c.id = pc.category_id
		 WHERE pc.product_id IN (?)
		 ORDER BY c.slug`, productIDs)
	if err != nil {
		return nil, fmt.Errorf("build category query: %w", err)
	}

	var rows []productCategoryRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("product categories: %w", err)
	}
	for _, row := range rows {
		out[row.ProductID] = append(out[row.ProductID], row.Category)
	}
	return out, nil
}

// productMediafileRow joins a mediafile to the product it is linked to.
type productMediafileRow struct {
	ProductID int64 `db:"product_id"`
	model.Mediafile
}

// ProductMediafiles returns the media assets linked to each of the given
// products, keyed by product id, oldest first.
func (s *Store) ProductMediafiles(ctx context.Context, productIDs []int64) (map[int64][]model.Mediafile, error) {
	out := make(map[int64][]model.Mediafile, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}

	q, args, err := sqlx.In(
		`SELECT pm.product_id, m.id, m.url, m.created_at
		 FROM products_mediafiles pm
		 JOIN mediafiles m ON m.id = pm.mediafile_id
		 WHERE pm.product_id IN (?)
		 ORDER BY m.id`, productIDs)
	if err != nil {
		return nil, fmt.Errorf("build mediafile query: %w", err)
	}

	var rows []productMediafileRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("product mediafiles: %w", err)
	}
	for _, row := range rows {
		out[row.ProductID] = append(out[row.ProductID], row.Mediafile)
	}
	return out, nil
}

// AddProductMediafile registers an already-uploaded blob URL against a
// product. Upload mechanics live outside this API.
func (s *Store) AddProductMediafile(ctx context.Context, productID int64, url string) (*model.Mediafile, error) {
	if _, err := s.GetProduct(ctx, productID); err != nil {
		return nil, err
	}

	m := &model.Mediafile{URL: url, CreatedAt: time.Now().UTC()}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	id, err := s.txInsert(ctx, tx,
		"INSERT INTO mediafiles (url, created_at) VALUES (?, ?)", m.URL, m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert mediafile: %w", err)
	}
	m.ID = id

	if _, err := tx.ExecContext(ctx, s.db.Rebind(
		"INSERT INTO products_mediafiles (product_id, mediafile_id) VALUES (?, ?)"),
		productID, m.ID); err != nil {
		return nil, fmt.Errorf("link mediafile: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return m, nil
}

// DeleteMediafile removes a media asset; product links cascade.
func (s *Store) DeleteMediafile(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM mediafiles WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("delete mediafile: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete mediafile rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListCategories returns all categories ordered by slug.
func (s *Store) ListCategories(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	if err := s.db.SelectContext(ctx, &categories, "SELECT * FROM categories ORDER BY slug"); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// CreateCategory inserts a new category.
func (s *Store) CreateCategory(ctx context.Context, c *model.Category) error {
	c.CreatedAt = time.Now().UTC()
	id, err := s.execInsert(ctx,
		"INSERT INTO categories (slug, name, description, created_at) VALUES (?, ?, ?, ?)",
		c.Slug, c.Name, c.Description, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	c.ID = id
	return nil
}

// DeleteCategoryBySlug removes a category, or returns ErrNotFound.
func (s *Store) DeleteCategoryBySlug(ctx context.Context, slug string) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM categories WHERE slug = ?"), slug)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete category rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// txInsert is execInsert inside a transaction.
func (s *Store) txInsert(ctx context.Context, tx *sqlx.Tx, query string, args ...interface{}) (int64, error) {
	if s.driver == DriverPostgres {
		var id int64
		err := tx.QueryRowxContext(ctx, s.db.Rebind(query+" RETURNING id"), args...).Scan(&id)
		if err != nil {
			return 0, err
		}
		return id, nil
	}
	result, err := tx.ExecContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}
