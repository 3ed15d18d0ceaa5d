package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound = errors.New("catalog entry not found")
	// ErrInUse: entri masih direferensikan order item, tidak boleh dihapus.
	ErrInUse = errors.New("catalog entry still referenced")
)

type Repo struct{ DB *pgxpool.Pool }

type ProductInput struct {
	Name        string   `json:"name"`
	Brand       string   `json:"brand"`
	Description string   `json:"description"`
	ImageURL    string   `json:"image_url"`
	PriceCents  int      `json:"price_cents"`
	Stock       int      `json:"stock"`
	Active      bool     `json:"active"`
	NoteIDs     []string `json:"note_ids"`
}

type ProductFilter struct {
	NoteSlug   string
	Query      string
	ActiveOnly bool
	Limit      int
	Offset     int
}

// normalize jaga limit/offset liar dari query param (postgres nolak
// OFFSET negatif).
func (f ProductFilter) normalize() ProductFilter {
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

func (r *Repo) CreateProduct(ctx context.Context, in ProductInput) (Product, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Product{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	slug, err := ensureUniqueSlug(ctx, in.Name, func(ctx context.Context, s string) (bool, error) {
		var taken bool
		err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM products WHERE slug=$1)`, s).Scan(&taken)
		return taken, err
	})
	if err != nil {
		return Product{}, err
	}

	p := Product{
		ID:          uuid.NewString(),
		Slug:        slug,
		Name:        in.Name,
		Brand:       in.Brand,
		Description: in.Description,
		ImageURL:    in.ImageURL,
		PriceCents:  in.PriceCents,
		Stock:       in.Stock,
		Active:      in.Active,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO products(id, slug, name, brand, description, image_url, price_cents, stock, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING created_at, updated_at`,
		p.ID, p.Slug, p.Name, p.Brand, p.Description, p.ImageURL, p.PriceCents, p.Stock, p.Active).
		Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Product{}, err
	}

	if err := linkNotes(ctx, tx, p.ID, in.NoteIDs); err != nil {
		return Product{}, err
	}
	p.Notes, err = loadNotes(ctx, tx, p.ID)
	if err != nil {
		return Product{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Product{}, err
	}
	return p, nil
}

// UpdateProduct: slug sengaja tidak di-regenerate pas rename supaya
// link lama tetap hidup.
func (r *Repo) UpdateProduct(ctx context.Context, id string, in ProductInput) (Product, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Product{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ct, err := tx.Exec(ctx, `
		UPDATE products
		SET name=$2, brand=$3, description=$4, image_url=$5, price_cents=$6, stock=$7, active=$8, updated_at=now()
		WHERE id=$1`,
		id, in.Name, in.Brand, in.Description, in.ImageURL, in.PriceCents, in.Stock, in.Active)
	if err != nil {
		return Product{}, err
	}
	if ct.RowsAffected() == 0 {
		return Product{}, ErrNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM product_notes WHERE product_id=$1`, id); err != nil {
		return Product{}, err
	}
	if err := linkNotes(ctx, tx, id, in.NoteIDs); err != nil {
		return Product{}, err
	}

	p, err := getProduct(ctx, tx, `id=$1`, id)
	if err != nil {
		return Product{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Product{}, err
	}
	return p, nil
}

func (r *Repo) DeleteProduct(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrInUse
		}
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) GetProductBySlug(ctx context.Context, slug string) (Product, error) {
	return getProduct(ctx, r.DB, `slug=$1`, slug)
}

func (r *Repo) GetProductByID(ctx context.Context, id string) (Product, error) {
	return getProduct(ctx, r.DB, `id=$1`, id)
}

func (r *Repo) ListProducts(ctx context.Context, f ProductFilter) ([]Product, error) {
	f = f.normalize()

	var (
		where []string
		args  []any
	)
	if f.ActiveOnly {
		where = append(where, "p.active")
	}
	if f.Query != "" {
		args = append(args, "%"+strings.ToLower(f.Query)+"%")
		where = append(where, fmt.Sprintf("(lower(p.name) LIKE $%d OR lower(p.brand) LIKE $%d)", len(args), len(args)))
	}
	if f.NoteSlug != "" {
		args = append(args, f.NoteSlug)
		where = append(where, fmt.Sprintf(`EXISTS (
			SELECT 1 FROM product_notes pn JOIN notes n ON n.id = pn.note_id
			WHERE pn.product_id = p.id AND n.slug = $%d)`, len(args)))
	}

	q := `SELECT p.id, p.slug, p.name, p.brand, p.description, p.image_url,
	             p.price_cents, p.stock, p.active, p.created_at, p.updated_at
	      FROM products p`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, f.Limit, f.Offset)
	q += fmt.Sprintf(" ORDER BY p.name LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Slug, &p.Name, &p.Brand, &p.Description, &p.ImageURL,
			&p.PriceCents, &p.Stock, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if out[i].Notes, err = loadNotes(ctx, r.DB, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ---- fragrance notes ----

func (r *Repo) CreateNote(ctx context.Context, name string) (Note, error) {
	slug, err := ensureUniqueSlug(ctx, name, func(ctx context.Context, s string) (bool, error) {
		var taken bool
		err := r.DB.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM notes WHERE slug=$1)`, s).Scan(&taken)
		return taken, err
	})
	if err != nil {
		return Note{}, err
	}
	n := Note{ID: uuid.NewString(), Slug: slug, Name: name}
	_, err = r.DB.Exec(ctx, `INSERT INTO notes(id, slug, name) VALUES ($1,$2,$3)`, n.ID, n.Slug, n.Name)
	if err != nil {
		return Note{}, err
	}
	return n, nil
}

func (r *Repo) UpdateNote(ctx context.Context, id, name string) (Note, error) {
	var n Note
	err := r.DB.QueryRow(ctx, `UPDATE notes SET name=$2 WHERE id=$1 RETURNING id, slug, name`, id, name).
		Scan(&n.ID, &n.Slug, &n.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return Note{}, ErrNotFound
	}
	if err != nil {
		return Note{}, err
	}
	return n, nil
}

func (r *Repo) DeleteNote(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM notes WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) ListNotes(ctx context.Context) ([]Note, error) {
	rows, err := r.DB.Query(ctx, `SELECT id, slug, name FROM notes ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Note
	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.ID, &n.Slug, &n.Name); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// ---- hero banners ----

type BannerInput struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	ImageURL string `json:"image_url"`
	LinkURL  string `json:"link_url"`
	Position int    `json:"position"`
	Active   bool   `json:"active"`
}

func (r *Repo) CreateBanner(ctx context.Context, in BannerInput) (Banner, error) {
	b := Banner{
		ID:       uuid.NewString(),
		Title:    in.Title,
		Subtitle: in.Subtitle,
		ImageURL: in.ImageURL,
		LinkURL:  in.LinkURL,
		Position: in.Position,
		Active:   in.Active,
	}
	_, err := r.DB.Exec(ctx, `
		INSERT INTO banners(id, title, subtitle, image_url, link_url, position, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		b.ID, b.Title, b.Subtitle, b.ImageURL, b.LinkURL, b.Position, b.Active)
	if err != nil {
		return Banner{}, err
	}
	return b, nil
}

func (r *Repo) UpdateBanner(ctx context.Context, id string, in BannerInput) (Banner, error) {
	ct, err := r.DB.Exec(ctx, `
		UPDATE banners SET title=$2, subtitle=$3, image_url=$4, link_url=$5, position=$6, active=$7
		WHERE id=$1`,
		id, in.Title, in.Subtitle, in.ImageURL, in.LinkURL, in.Position, in.Active)
	if err != nil {
		return Banner{}, err
	}
	if ct.RowsAffected() == 0 {
		return Banner{}, ErrNotFound
	}
	return Banner{ID: id, Title: in.Title, Subtitle: in.Subtitle, ImageURL: in.ImageURL,
		LinkURL: in.LinkURL, Position: in.Position, Active: in.Active}, nil
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

func (r *Repo) ListBanners(ctx context.Context, activeOnly bool) ([]Banner, error) {
	q := `SELECT id, title, subtitle, image_url, link_url, position, active FROM banners`
	if activeOnly {
		q += ` WHERE active`
	}
	q += ` ORDER BY position, title`

	rows, err := r.DB.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Banner
	for rows.Next() {
		var b Banner
		if err := rows.Scan(&b.ID, &b.Title, &b.Subtitle, &b.ImageURL, &b.LinkURL, &b.Position, &b.Active); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// ---- helpers ----

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func getProduct(ctx context.Context, q querier, cond string, arg any) (Product, error) {
	var p Product
	err := q.QueryRow(ctx, `
		SELECT id, slug, name, brand, description, image_url, price_cents, stock, active, created_at, updated_at
		FROM products WHERE `+cond, arg).
		Scan(&p.ID, &p.Slug, &p.Name, &p.Brand, &p.Description, &p.ImageURL,
			&p.PriceCents, &p.Stock, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, err
	}
	p.Notes, err = loadNotes(ctx, q, p.ID)
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

func linkNotes(ctx context.Context, ex execer, productID string, noteIDs []string) error {
	for _, nid := range noteIDs {
		if _, err := ex.Exec(ctx, `
			INSERT INTO product_notes(product_id, note_id) VALUES ($1,$2)
			ON CONFLICT DO NOTHING`, productID, nid); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23503" {
				return fmt.Errorf("%w: note %s", ErrNotFound, nid)
			}
			return err
		}
	}
	return nil
}

func loadNotes(ctx context.Context, q querier, productID string) ([]Note, error) {
	rows, err := q.Query(ctx, `
		SELECT n.id, n.slug, n.name
		FROM notes n JOIN product_notes pn ON pn.note_id = n.id
		WHERE pn.product_id = $1
		ORDER BY n.name`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Note
	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.ID, &n.Slug, &n.Name); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
