package db

import (
	"context"
	"crypto/md5"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"tooldex/pkg/domain"

	"github.com/google/uuid"
)

// ProductQuery narrows a ListProducts call. Zero values mean "no filter".
type ProductQuery struct {
	Query         string
	Category      string
	Platform      string
	MaxPriceCents int
	Status        domain.ModerationStatus
	Limit         int
	Offset        int
}

// ProductStore runs directory queries against the serving database.
// It works over any DBProvider, so the same code serves both the plain
// Postgres client and the Supabase client.
type ProductStore struct {
	provider DBProvider
}

// NewProductStore creates a product store over the given provider
func NewProductStore(provider DBProvider) *ProductStore {
	return &ProductStore{provider: provider}
}

func (s *ProductStore) db() (*sql.DB, error) {
	if s.provider == nil || s.provider.DB() == nil {
		return nil, fmt.Errorf("database not connected")
	}
	return s.provider.DB(), nil
}

// EnsureSchema creates the serving tables if they do not exist yet.
func (s *ProductStore) EnsureSchema(ctx context.Context) error {
	db, err := s.db()
	if err != nil {
		return err
	}

	const ddl = `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  vendor TEXT NOT NULL DEFAULT '',
  category TEXT NOT NULL DEFAULT '',
  price_cents INTEGER NOT NULL DEFAULT 0,
  platforms TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL DEFAULT 'pending',
  source_url TEXT UNIQUE,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS product_urls (
  product_id TEXT NOT NULL REFERENCES products(id),
  url TEXT NOT NULL,
  kind TEXT NOT NULL DEFAULT 'website',
  healthy BOOLEAN NOT NULL DEFAULT true,
  last_checked TIMESTAMPTZ NOT NULL DEFAULT now(),
  PRIMARY KEY (product_id, url)
);

CREATE TABLE IF NOT EXISTS ratings (
  product_id TEXT NOT NULL REFERENCES products(id),
  user_id TEXT NOT NULL,
  stars INTEGER NOT NULL CHECK (stars BETWEEN 1 AND 5),
  comment TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  PRIMARY KEY (product_id, user_id)
);

CREATE TABLE IF NOT EXISTS blog_posts (
  id TEXT PRIMARY KEY,
  author_id TEXT NOT NULL,
  title TEXT NOT NULL,
  slug TEXT NOT NULL UNIQUE,
  body TEXT NOT NULL DEFAULT '',
  published BOOLEAN NOT NULL DEFAULT false,
  published_at TIMESTAMPTZ,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS product_requests (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  name TEXT NOT NULL DEFAULT '',
  url TEXT NOT NULL,
  notes TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL DEFAULT 'pending',
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create serving schema: %w", err)
	}
	return nil
}

// ListProducts returns products matching the query, newest first.
func (s *ProductStore) ListProducts(ctx context.Context, q ProductQuery) ([]domain.Product, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}

	var clauses []string
	var args []interface{}

	add := func(clause string, arg interface{}) {
		args = append(args, arg)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if q.Query != "" {
		add("(name ILIKE '%%' || $%d || '%%' OR description ILIKE '%%' || $%[1]d || '%%' OR vendor ILIKE '%%' || $%[1]d || '%%')", q.Query)
	}
	if q.Category != "" {
		add("category = $%d", q.Category)
	}
	if q.Platform != "" {
		add("platforms ILIKE '%%' || $%d || '%%'", q.Platform)
	}
	if q.MaxPriceCents > 0 {
		add("price_cents <= $%d", q.MaxPriceCents)
	}
	if q.Status != "" {
		add("status = $%d", string(q.Status))
	}

	query := `SELECT id, name, description, vendor, category, price_cents, platforms, status, created_at, updated_at FROM products`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if q.Limit > 0 {
		args = append(args, q.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if q.Offset > 0 {
		args = append(args, q.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	for i := range products {
		urls, err := s.productURLs(ctx, products[i].ID)
		if err != nil {
			return nil, err
		}
		products[i].URLs = urls
	}

	return products, nil
}

// GetProduct fetches a single product with its URLs.
func (s *ProductStore) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx,
		`SELECT id, name, description, vendor, category, price_cents, platforms, status, created_at, updated_at FROM products WHERE id = $1`, id)

	p, err := scanProduct(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("product %s not found", id)
		}
		return nil, err
	}

	urls, err := s.productURLs(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.URLs = urls

	return &p, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (domain.Product, error) {
	var p domain.Product
	var platforms string
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Vendor, &p.Category,
		&p.PriceCents, &platforms, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return domain.Product{}, err
	}
	if platforms != "" {
		p.Platforms = strings.Split(platforms, ",")
	}
	return p, nil
}

func (s *ProductStore) productURLs(ctx context.Context, productID string) ([]domain.ProductURL, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		`SELECT product_id, url, kind, healthy, last_checked FROM product_urls WHERE product_id = $1`, productID)
	if err != nil {
		return nil, fmt.Errorf("query product urls: %w", err)
	}
	defer rows.Close()

	var urls []domain.ProductURL
	for rows.Next() {
		var u domain.ProductURL
		if err := rows.Scan(&u.ProductID, &u.URL, &u.Kind, &u.Healthy, &u.LastChecked); err != nil {
			return nil, fmt.Errorf("scan product url: %w", err)
		}
		urls = append(urls, u)
	}
	return urls, rows.Err()
}

// SetURLHealth records the outcome of a link health check.
func (s *ProductStore) SetURLHealth(ctx context.Context, productID, url string, healthy bool) error {
	db, err := s.db()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx,
		`UPDATE product_urls SET healthy = $1, last_checked = now() WHERE product_id = $2 AND url = $3`,
		healthy, productID, url)
	if err != nil {
		return fmt.Errorf("update url health: %w", err)
	}
	return nil
}

// SaveRating inserts or replaces a user's rating of a product.
func (s *ProductStore) SaveRating(ctx context.Context, rating *domain.Rating) error {
	db, err := s.db()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
INSERT INTO ratings (product_id, user_id, stars, comment, created_at)
VALUES ($1, $2, $3, $4, now())
ON CONFLICT (product_id, user_id) DO UPDATE SET stars = $3, comment = $4`,
		rating.ProductID, rating.UserID, rating.Stars, rating.Comment)
	if err != nil {
		return fmt.Errorf("save rating: %w", err)
	}
	return nil
}

// RatingSummary aggregates stored ratings for a product.
func (s *ProductStore) RatingSummary(ctx context.Context, productID string) (*domain.RatingSummary, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(ROUND(AVG(stars)::numeric, 1), 0) FROM ratings WHERE product_id = $1`, productID)

	summary := domain.RatingSummary{ProductID: productID}
	if err := row.Scan(&summary.Count, &summary.Average); err != nil {
		return nil, fmt.Errorf("scan rating summary: %w", err)
	}
	return &summary, nil
}

// CreateBlogPost stores a new post. A generated ID is filled in when empty.
func (s *ProductStore) CreateBlogPost(ctx context.Context, post *domain.BlogPost) error {
	db, err := s.db()
	if err != nil {
		return err
	}

	if post.ID == "" {
		post.ID = uuid.New().String()
	}

	var publishedAt interface{}
	if post.Published {
		if post.PublishedAt.IsZero() {
			post.PublishedAt = time.Now()
		}
		publishedAt = post.PublishedAt
	}

	_, err = db.ExecContext(ctx, `
INSERT INTO blog_posts (id, author_id, title, slug, body, published, published_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		post.ID, post.AuthorID, post.Title, post.Slug, post.Body, post.Published, publishedAt)
	if err != nil {
		return fmt.Errorf("insert blog post slug=%q: %w", post.Slug, err)
	}
	return nil
}

// ListBlogPosts returns posts newest first, optionally published only.
func (s *ProductStore) ListBlogPosts(ctx context.Context, publishedOnly bool) ([]domain.BlogPost, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}

	query := `SELECT id, author_id, title, slug, body, published, COALESCE(published_at, created_at), created_at, updated_at FROM blog_posts`
	if publishedOnly {
		query += " WHERE published = true"
	}
	query += " ORDER BY created_at DESC"

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query blog posts: %w", err)
	}
	defer rows.Close()

	var posts []domain.BlogPost
	for rows.Next() {
		var p domain.BlogPost
		if err := rows.Scan(&p.ID, &p.AuthorID, &p.Title, &p.Slug, &p.Body,
			&p.Published, &p.PublishedAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan blog post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// GetBlogPostBySlug fetches a single post by its slug.
func (s *ProductStore) GetBlogPostBySlug(ctx context.Context, slug string) (*domain.BlogPost, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx,
		`SELECT id, author_id, title, slug, body, published, COALESCE(published_at, created_at), created_at, updated_at FROM blog_posts WHERE slug = $1`, slug)

	var p domain.BlogPost
	err = row.Scan(&p.ID, &p.AuthorID, &p.Title, &p.Slug, &p.Body,
		&p.Published, &p.PublishedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("blog post %q not found", slug)
		}
		return nil, fmt.Errorf("scan blog post: %w", err)
	}
	return &p, nil
}

// CreateRequest stores a community product suggestion in pending state.
func (s *ProductStore) CreateRequest(ctx context.Context, req *domain.UserRequest) error {
	db, err := s.db()
	if err != nil {
		return err
	}

	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	if req.Status == "" {
		req.Status = domain.ModerationPending
	}

	_, err = db.ExecContext(ctx, `
INSERT INTO product_requests (id, user_id, name, url, notes, status)
VALUES ($1, $2, $3, $4, $5, $6)`,
		req.ID, req.UserID, req.Name, req.URL, req.Notes, string(req.Status))
	if err != nil {
		return fmt.Errorf("insert request url=%q: %w", req.URL, err)
	}
	return nil
}

// ListRequests returns requests, optionally filtered by status, newest first.
func (s *ProductStore) ListRequests(ctx context.Context, status domain.ModerationStatus) ([]domain.UserRequest, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}

	query := `SELECT id, user_id, name, url, notes, status, created_at FROM product_requests`
	var args []interface{}
	if status != "" {
		query += " WHERE status = $1"
		args = append(args, string(status))
	}
	query += " ORDER BY created_at DESC"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query requests: %w", err)
	}
	defer rows.Close()

	var requests []domain.UserRequest
	for rows.Next() {
		var r domain.UserRequest
		if err := rows.Scan(&r.ID, &r.UserID, &r.Name, &r.URL, &r.Notes, &r.Status, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		requests = append(requests, r)
	}
	return requests, rows.Err()
}

// SetRequestStatus moves a pending request to approved or rejected.
func (s *ProductStore) SetRequestStatus(ctx context.Context, id string, status domain.ModerationStatus) error {
	db, err := s.db()
	if err != nil {
		return err
	}

	res, err := db.ExecContext(ctx,
		`UPDATE product_requests SET status = $1 WHERE id = $2 AND status = 'pending'`,
		string(status), id)
	if err != nil {
		return fmt.Errorf("update request status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("request %s is not pending", id)
	}
	return nil
}

// ExistingSourceURLs checks which of the given source URLs already have a
// product row. Used by replication to skip already-imported products.
func (s *ProductStore) ExistingSourceURLs(ctx context.Context, urls []string) (map[string]bool, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}
	if len(urls) == 0 {
		return map[string]bool{}, nil
	}

	// Use a unique query pattern to avoid prepared statement cache conflicts
	// when batches run in parallel goroutines.
	hash := md5.Sum([]byte(urls[0]))
	query := fmt.Sprintf(`/* q_%d_%x */ SELECT source_url FROM products WHERE source_url IN (`, len(urls), hash[:4])
	args := make([]interface{}, len(urls))
	for i, u := range urls {
		if i > 0 {
			query += ", "
		}
		query += fmt.Sprintf("$%d", i+1)
		args[i] = u
	}
	query += ")"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query existing source urls: %w", err)
	}
	defer rows.Close()

	set := make(map[string]bool)
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("scan source url: %w", err)
		}
		if u != "" {
			set[u] = true
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return set, nil
}

// ImportScraped inserts scraped products as pending directory entries within
// a transaction. Existing source URLs are left untouched.
func (s *ProductStore) ImportScraped(ctx context.Context, batch []domain.ScrapedProduct) error {
	db, err := s.db()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const insertProduct = `
INSERT INTO products (id, name, description, vendor, price_cents, status, source_url)
VALUES ($1, $2, $3, $4, $5, 'pending', $6)
ON CONFLICT (source_url) DO NOTHING`

	const insertURL = `
INSERT INTO product_urls (product_id, url, kind)
VALUES ($1, $2, $3)
ON CONFLICT (product_id, url) DO NOTHING`

	for _, p := range batch {
		if p.SourceURL == "" {
			continue
		}
		id := uuid.New().String()
		res, err := tx.ExecContext(ctx, insertProduct,
			id, p.Name, p.Description, p.Vendor, p.PriceCents, p.SourceURL)
		if err != nil {
			return fmt.Errorf("insert product source_url=%q: %w", p.SourceURL, err)
		}
		if affected, err := res.RowsAffected(); err == nil && affected == 0 {
			continue
		}
		if _, err := tx.ExecContext(ctx, insertURL, id, p.SourceURL, p.Source); err != nil {
			return fmt.Errorf("insert product url source_url=%q: %w", p.SourceURL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
