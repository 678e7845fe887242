package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront-service/internal/cart"
	"storefront-service/internal/domain"
)

// Predefined errors for store operations
var (
	ErrProductNotFound = errors.New("store: product not found")
	ErrProductIDExists = errors.New("store: product id already exists")
	ErrCartNotFound    = cart.ErrSessionNotFound
)

//go:embed schema.sql
var schemaSQL string

const productColumns = `id, name, category, description, short_description, long_description,
	price, sale_price, on_sale, in_stock, rating, images, created_at, updated_at`

// PostgresStore implements ProductStorer, CatalogLister and CartStorer using PostgreSQL.
type PostgresStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresStore creates a new PostgresStore instance.
func NewPostgresStore(db *sql.DB, logger *zap.Logger) *PostgresStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgresStore{db: db, logger: logger}
}

// EnsureSchema creates the storefront schema and tables when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("store: EnsureSchema failed: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.ProductRecord, error) {
	var p domain.ProductRecord
	var salePrice decimal.NullDecimal
	var rating sql.NullFloat64
	err := row.Scan(
		&p.ID, &p.Name, &p.Category, &p.Description, &p.ShortDescription, &p.LongDescription,
		&p.Price, &salePrice, &p.OnSale, &p.InStock, &rating, pq.Array(&p.Images),
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if salePrice.Valid {
		p.SalePrice = &salePrice.Decimal
	}
	if rating.Valid {
		p.Rating = &rating.Float64
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	return &p, nil
}

func isUniqueIDViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" { // Unique violation
		return strings.Contains(pqErr.Constraint, "products_pkey") || strings.Contains(pqErr.Detail, "Key (id)")
	}
	return false
}

// --- ProductStorer Implementation ---

func (s *PostgresStore) CreateProduct(ctx context.Context, product *domain.ProductRecord) (*domain.ProductRecord, error) {
	query := `
		INSERT INTO storefront.products
			(id, name, category, description, short_description, long_description, price, sale_price, on_sale, in_stock, rating, images)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + productColumns + `;
	`
	row := s.db.QueryRowContext(ctx, query,
		product.ID, product.Name, product.Category, product.Description, product.ShortDescription, product.LongDescription,
		product.Price, product.SalePrice, product.OnSale, product.InStock, product.Rating, pq.Array(product.Images),
	)

	created, err := scanProduct(row)
	if err != nil {
		if isUniqueIDViolation(err) {
			return nil, ErrProductIDExists
		}
		return nil, fmt.Errorf("store: CreateProduct failed to scan row: %w", err)
	}
	return created, nil
}

func (s *PostgresStore) ListProducts(ctx context.Context, params ListProductsParams) ([]domain.ProductRecord, int, error) {
	var queryArgs []interface{}
	var whereClauses []string
	argID := 1

	if params.SearchQuery != nil && *params.SearchQuery != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d OR short_description ILIKE $%d)", argID, argID, argID))
		queryArgs = append(queryArgs, "%"+*params.SearchQuery+"%")
		argID++
	}
	if params.Category != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("category = $%d", argID))
		queryArgs = append(queryArgs, *params.Category)
		argID++
	}
	if params.InStock != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("in_stock = $%d", argID))
		queryArgs = append(queryArgs, *params.InStock)
		argID++
	}
	if params.OnSale != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("on_sale = $%d", argID))
		queryArgs = append(queryArgs, *params.OnSale)
		argID++
	}

	whereCondition := ""
	if len(whereClauses) > 0 {
		whereCondition = " WHERE " + strings.Join(whereClauses, " AND ")
	}

	countQuery := "SELECT COUNT(*) FROM storefront.products" + whereCondition
	var totalCount int
	if err := s.db.QueryRowContext(ctx, countQuery, queryArgs...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("store: ListProducts failed to count products: %w", err)
	}

	if totalCount == 0 {
		return []domain.ProductRecord{}, 0, nil
	}

	sortColumn := "created_at" // Default sort
	allowedSortColumns := map[string]string{
		"name":       "name",
		"price":      "price",
		"created_at": "created_at",
		"updated_at": "updated_at",
	}
	if col, ok := allowedSortColumns[strings.ToLower(params.SortBy)]; ok {
		sortColumn = col
	}

	sortOrder := "ASC" // Default order
	if strings.ToUpper(params.SortOrder) == "DESC" {
		sortOrder = "DESC"
	}

	dataQuery := fmt.Sprintf("SELECT %s FROM storefront.products%s ORDER BY %s %s, id ASC LIMIT $%d OFFSET $%d",
		productColumns, whereCondition, sortColumn, sortOrder, argID, argID+1)

	finalQueryArgs := append(queryArgs, params.Limit, params.Offset)

	rows, err := s.db.QueryContext(ctx, dataQuery, finalQueryArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("store: ListProducts failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.ProductRecord, 0, params.Limit)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("store: ListProducts failed to scan product row: %w", err)
		}
		products = append(products, *p)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("store: ListProducts iteration error: %w", err)
	}

	return products, totalCount, nil
}

func (s *PostgresStore) GetProductByID(ctx context.Context, id string) (*domain.ProductRecord, error) {
	query := `SELECT ` + productColumns + ` FROM storefront.products WHERE id = $1;`

	product, err := scanProduct(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("store: GetProductByID failed to scan row: %w", err)
	}
	return product, nil
}

func (s *PostgresStore) UpdateProduct(ctx context.Context, product *domain.ProductRecord) (*domain.ProductRecord, error) {
	query := `
		UPDATE storefront.products
		SET name = $1, category = $2, description = $3, short_description = $4, long_description = $5,
			price = $6, sale_price = $7, on_sale = $8, in_stock = $9, rating = $10, images = $11,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $12
		RETURNING ` + productColumns + `;
	`
	updated, err := scanProduct(s.db.QueryRowContext(ctx, query,
		product.Name, product.Category, product.Description, product.ShortDescription, product.LongDescription,
		product.Price, product.SalePrice, product.OnSale, product.InStock, product.Rating, pq.Array(product.Images),
		product.ID,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("store: UpdateProduct failed to scan row: %w", err)
	}
	return updated, nil
}

func (s *PostgresStore) DeleteProduct(ctx context.Context, id string) error {
	query := `DELETE FROM storefront.products WHERE id = $1;`
	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("store: DeleteProduct failed to execute delete: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: DeleteProduct failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// --- CatalogLister Implementation ---

// ListRawRecords returns every stored product as catalog input, oldest first.
func (s *PostgresStore) ListRawRecords(ctx context.Context) ([]domain.RawRecord, error) {
	query := `SELECT ` + productColumns + ` FROM storefront.products ORDER BY created_at ASC, id ASC;`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("store: ListRawRecords failed to query products: %w", err)
	}
	defer rows.Close()

	records := []domain.RawRecord{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("store: ListRawRecords failed to scan product row: %w", err)
		}
		records = append(records, p.Raw())
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("store: ListRawRecords iteration error: %w", err)
	}
	return records, nil
}

// --- CartStorer Implementation ---

func (s *PostgresStore) LoadCart(ctx context.Context, sessionID string) (cart.Cart, error) {
	query := `SELECT cart FROM storefront.carts WHERE session_id = $1;`
	var payload []byte
	if err := s.db.QueryRowContext(ctx, query, sessionID).Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return cart.Cart{}, ErrCartNotFound
		}
		return cart.Cart{}, fmt.Errorf("store: LoadCart failed to scan row: %w", err)
	}
	c := cart.New()
	if err := json.Unmarshal(payload, &c); err != nil {
		return cart.Cart{}, fmt.Errorf("store: LoadCart failed to decode cart: %w", err)
	}
	if c.Lines == nil {
		c.Lines = []cart.Line{}
	}
	return c, nil
}

func (s *PostgresStore) SaveCart(ctx context.Context, sessionID string, c cart.Cart) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("store: SaveCart failed to encode cart: %w", err)
	}
	query := `
		INSERT INTO storefront.carts (session_id, cart)
		VALUES ($1, $2)
		ON CONFLICT (session_id) DO UPDATE SET cart = EXCLUDED.cart, updated_at = CURRENT_TIMESTAMP;
	`
	if _, err := s.db.ExecContext(ctx, query, sessionID, payload); err != nil {
		return fmt.Errorf("store: SaveCart failed to execute upsert: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteCart(ctx context.Context, sessionID string) error {
	query := `DELETE FROM storefront.carts WHERE session_id = $1;`
	result, err := s.db.ExecContext(ctx, query, sessionID)
	if err != nil {
		return fmt.Errorf("store: DeleteCart failed to execute delete: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: DeleteCart failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrCartNotFound
	}
	return nil
}

func (s *PostgresStore) Close() error {
	if s.db != nil {
		s.logger.Info("closing database connection pool")
		err := s.db.Close()
		if err != nil {
			s.logger.Error("failed to close database connection pool", zap.Error(err))
			return err
		}
		s.logger.Info("database connection pool closed")
		return nil
	}
	return nil
}
