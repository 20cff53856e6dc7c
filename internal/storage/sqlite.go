package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dshills/dropship-mcp/pkg/types"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when trying to create a duplicate entity
	ErrAlreadyExists = errors.New("already exists")
	// ErrStockUnderflow is returned when an adjustment would take stock below zero
	ErrStockUnderflow = errors.New("stock underflow")
	// ErrStatusChanged is returned when a conditional status transition finds
	// the row in another state
	ErrStatusChanged = errors.New("status changed")
)

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	*queries
	db    *sql.DB
	retry RetryConfig
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite has a single writer; one connection serializes transactions
	// in-process and keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Wait on locks held by other processes before reporting busy
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return db, nil
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStorage{
		queries: &queries{q: db},
		db:      db,
		retry:   DefaultRetryConfig(),
	}, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new transaction
func (s *SQLiteStorage) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqliteTx{queries: &queries{q: tx}, tx: tx}, nil
}

// RunAtomically runs fn in a transaction, retrying when the database is busy
func (s *SQLiteStorage) RunAtomically(ctx context.Context, fn func(tx Store) error) error {
	return retryWithBackoff(ctx, s.retry, isBusy, func() error {
		tx, err := s.BeginTx(ctx)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if err := fn(tx); err != nil {
			return err
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
		return nil
	})
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// sqliteTx wraps a SQL transaction
type sqliteTx struct {
	*queries
	tx *sql.Tx
}

func (t *sqliteTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTx) Rollback() error {
	return t.tx.Rollback()
}

// queries implements Store against a querier. The database handle and every
// transaction each own one, so no method reaches past its transaction.
type queries struct {
	q querier
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// User operations

func (s *queries) CreateUser(ctx context.Context, user *types.User) error {
	query := `
		INSERT INTO users (username, email, password_hash, role, enabled, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	now := time.Now()
	result, err := s.q.ExecContext(ctx, query,
		user.Username, user.Email, user.PasswordHash, string(user.Role), user.Enabled, now)
	if isUniqueViolation(err) {
		return fmt.Errorf("user %s: %w", user.Username, ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	user.ID = id
	user.CreatedAt = now
	return nil
}

const userColumns = `id, username, email, password_hash, role, enabled, created_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*types.User, error) {
	var user types.User
	var role string
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&role, &user.Enabled, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	user.Role = types.Role(role)
	return &user, nil
}

func (s *queries) GetUser(ctx context.Context, userID int64) (*types.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return scanUser(s.q.QueryRowContext(ctx, query, userID))
}

func (s *queries) GetUserByUsername(ctx context.Context, username string) (*types.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = ?`
	return scanUser(s.q.QueryRowContext(ctx, query, username))
}

func (s *queries) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	return scanUser(s.q.QueryRowContext(ctx, query, email))
}

func (s *queries) ListUsers(ctx context.Context) ([]*types.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id`
	rows, err := s.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	users := make([]*types.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (s *queries) SetUserEnabled(ctx context.Context, userID int64, enabled bool) error {
	result, err := s.q.ExecContext(ctx, `UPDATE users SET enabled = ? WHERE id = ?`, enabled, userID)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return requireRow(result)
}

// Supplier operations

func (s *queries) CreateSupplier(ctx context.Context, supplier *types.Supplier) error {
	query := `
		INSERT INTO suppliers (user_id, business_name, contact_phone)
		VALUES (?, ?, ?)
	`
	result, err := s.q.ExecContext(ctx, query, supplier.UserID, supplier.BusinessName, supplier.ContactPhone)
	if isUniqueViolation(err) {
		return fmt.Errorf("supplier profile for user %d: %w", supplier.UserID, ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("failed to create supplier: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	supplier.ID = id
	return nil
}

func (s *queries) GetSupplierByUser(ctx context.Context, userID int64) (*types.Supplier, error) {
	query := `
		SELECT id, user_id, business_name, contact_phone
		FROM suppliers
		WHERE user_id = ?
	`
	var supplier types.Supplier
	var phone sql.NullString
	err := s.q.QueryRowContext(ctx, query, userID).Scan(
		&supplier.ID, &supplier.UserID, &supplier.BusinessName, &phone)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	supplier.ContactPhone = phone.String
	return &supplier, nil
}

// Category operations

func (s *queries) CreateCategory(ctx context.Context, category *types.Category) error {
	result, err := s.q.ExecContext(ctx,
		`INSERT INTO categories (name, description) VALUES (?, ?)`,
		category.Name, category.Description)
	if isUniqueViolation(err) {
		return fmt.Errorf("category %s: %w", category.Name, ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	category.ID = id
	return nil
}

func scanCategory(row interface{ Scan(...interface{}) error }) (*types.Category, error) {
	var category types.Category
	var description sql.NullString
	err := row.Scan(&category.ID, &category.Name, &description)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	category.Description = description.String
	return &category, nil
}

func (s *queries) GetCategory(ctx context.Context, categoryID int64) (*types.Category, error) {
	return scanCategory(s.q.QueryRowContext(ctx,
		`SELECT id, name, description FROM categories WHERE id = ?`, categoryID))
}

func (s *queries) GetCategoryByName(ctx context.Context, name string) (*types.Category, error) {
	return scanCategory(s.q.QueryRowContext(ctx,
		`SELECT id, name, description FROM categories WHERE name = ?`, name))
}

func (s *queries) UpdateCategory(ctx context.Context, category *types.Category) error {
	result, err := s.q.ExecContext(ctx,
		`UPDATE categories SET name = ?, description = ? WHERE id = ?`,
		category.Name, category.Description, category.ID)
	if isUniqueViolation(err) {
		return fmt.Errorf("category %s: %w", category.Name, ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	return requireRow(result)
}

func (s *queries) DeleteCategory(ctx context.Context, categoryID int64) error {
	result, err := s.q.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, categoryID)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return requireRow(result)
}

func (s *queries) ListCategories(ctx context.Context) ([]*types.Category, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT id, name, description FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	categories := make([]*types.Category, 0)
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

func (s *queries) CategoryHasProducts(ctx context.Context, categoryID int64) (bool, error) {
	var exists bool
	err := s.q.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM products WHERE category_id = ?)`, categoryID).Scan(&exists)
	return exists, err
}

// Product operations

func (s *queries) CreateProduct(ctx context.Context, product *types.Product) error {
	query := `
		INSERT INTO products (name, description, image_url, price, category_id, supplier_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	now := time.Now()
	result, err := s.q.ExecContext(ctx, query,
		product.Name, product.Description, product.ImageURL, product.Price.String(),
		product.CategoryID, product.SupplierID, now, now)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	product.ID = id
	product.CreatedAt = now
	product.UpdatedAt = now
	return nil
}

const productColumns = `id, name, description, image_url, price, category_id, supplier_id, created_at, updated_at`

func scanProduct(row interface{ Scan(...interface{}) error }) (*types.Product, error) {
	var product types.Product
	var description, imageURL sql.NullString
	err := row.Scan(&product.ID, &product.Name, &description, &imageURL, &product.Price,
		&product.CategoryID, &product.SupplierID, &product.CreatedAt, &product.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	product.Description = description.String
	product.ImageURL = imageURL.String
	return &product, nil
}

func (s *queries) GetProduct(ctx context.Context, productID int64) (*types.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = ?`
	return scanProduct(s.q.QueryRowContext(ctx, query, productID))
}

func (s *queries) UpdateProduct(ctx context.Context, product *types.Product) error {
	query := `
		UPDATE products
		SET name = ?, description = ?, image_url = ?, price = ?, category_id = ?, updated_at = ?
		WHERE id = ?
	`
	now := time.Now()
	result, err := s.q.ExecContext(ctx, query,
		product.Name, product.Description, product.ImageURL, product.Price.String(),
		product.CategoryID, now, product.ID)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if err := requireRow(result); err != nil {
		return err
	}
	product.UpdatedAt = now
	return nil
}

func (s *queries) DeleteProduct(ctx context.Context, productID int64) error {
	result, err := s.q.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, productID)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return requireRow(result)
}

func (s *queries) listProducts(ctx context.Context, where string, args ...interface{}) ([]*types.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ` + where + ` ORDER BY id`
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	products := make([]*types.Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

func (s *queries) ListProducts(ctx context.Context) ([]*types.Product, error) {
	return s.listProducts(ctx, "")
}

func (s *queries) ListProductsBySupplier(ctx context.Context, supplierID int64) ([]*types.Product, error) {
	return s.listProducts(ctx, "WHERE supplier_id = ?", supplierID)
}

func (s *queries) ProductHasOrders(ctx context.Context, productID int64) (bool, error) {
	var exists bool
	err := s.q.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM order_items WHERE product_id = ?)`, productID).Scan(&exists)
	return exists, err
}

// Inventory operations

func (s *queries) GetInventory(ctx context.Context, productID int64) (*types.Inventory, error) {
	var inv types.Inventory
	err := s.q.QueryRowContext(ctx,
		`SELECT product_id, quantity, updated_at FROM inventory WHERE product_id = ?`, productID).Scan(
		&inv.ProductID, &inv.Quantity, &inv.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// EnsureInventory returns the product's stock record, creating it at zero
func (s *queries) EnsureInventory(ctx context.Context, productID int64) (*types.Inventory, error) {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO inventory (product_id, quantity, updated_at)
		VALUES (?, 0, ?)
		ON CONFLICT(product_id) DO NOTHING
	`, productID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to materialize inventory: %w", err)
	}
	return s.GetInventory(ctx, productID)
}

func (s *queries) SetInventory(ctx context.Context, productID int64, quantity int) (*types.Inventory, error) {
	if quantity < 0 {
		return nil, ErrStockUnderflow
	}
	now := time.Now()
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO inventory (product_id, quantity, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(product_id) DO UPDATE SET
			quantity = excluded.quantity,
			updated_at = excluded.updated_at
	`, productID, quantity, now)
	if err != nil {
		return nil, fmt.Errorf("failed to set inventory: %w", err)
	}
	return &types.Inventory{ProductID: productID, Quantity: quantity, UpdatedAt: now}, nil
}

// AdjustInventory applies delta in a single conditional statement, so the
// check and the write cannot be separated by a concurrent writer.
func (s *queries) AdjustInventory(ctx context.Context, productID int64, delta int) (*types.Inventory, error) {
	now := time.Now()
	var inv types.Inventory
	err := s.q.QueryRowContext(ctx, `
		UPDATE inventory
		SET quantity = quantity + ?, updated_at = ?
		WHERE product_id = ? AND quantity + ? >= 0
		RETURNING product_id, quantity
	`, delta, now, productID, delta).Scan(&inv.ProductID, &inv.Quantity)
	if err == sql.ErrNoRows {
		if _, getErr := s.GetInventory(ctx, productID); getErr != nil {
			return nil, getErr
		}
		return nil, ErrStockUnderflow
	}
	if err != nil {
		return nil, fmt.Errorf("failed to adjust inventory: %w", err)
	}
	inv.UpdatedAt = now
	return &inv, nil
}

// Order operations

// CreateOrder writes the order row, its items and its payment. Call it inside
// RunAtomically so the aggregate lands as one unit.
func (s *queries) CreateOrder(ctx context.Context, order *types.Order) error {
	result, err := s.q.ExecContext(ctx, `
		INSERT INTO orders (user_id, created_at, status, total, shipping_address)
		VALUES (?, ?, ?, ?, ?)
	`, order.Customer.ID, order.CreatedAt, string(order.Status), order.Total.String(), order.ShippingAddress)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	orderID, err := result.LastInsertId()
	if err != nil {
		return err
	}

	for i := range order.Items {
		item := &order.Items[i]
		result, err := s.q.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity, price_at_purchase)
			VALUES (?, ?, ?, ?)
		`, orderID, item.Product.ID, item.Quantity, item.PriceAtPurchase.String())
		if err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}
		if item.ID, err = result.LastInsertId(); err != nil {
			return err
		}
	}

	payment := &order.Payment
	result, err = s.q.ExecContext(ctx, `
		INSERT INTO payments (order_id, amount, status, method, transaction_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, orderID, payment.Amount.String(), string(payment.Status), payment.Method, payment.TransactionID, payment.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	if payment.ID, err = result.LastInsertId(); err != nil {
		return err
	}

	order.ID = orderID
	return nil
}

const orderSelect = `
	SELECT o.id, o.created_at, o.status, o.total, o.shipping_address,
	       u.id, u.username, u.email,
	       p.id, p.amount, p.status, p.method, p.transaction_id, p.created_at,
	       sh.id, sh.tracking_number, sh.shipping_company, sh.shipped_at
	FROM orders o
	JOIN users u ON u.id = o.user_id
	JOIN payments p ON p.order_id = o.id
	LEFT JOIN shipping sh ON sh.order_id = o.id
`

func scanOrder(row interface{ Scan(...interface{}) error }) (*types.Order, error) {
	var order types.Order
	var status, paymentStatus string
	var shipID sql.NullInt64
	var tracking, company sql.NullString
	var shippedAt sql.NullTime

	err := row.Scan(
		&order.ID, &order.CreatedAt, &status, &order.Total, &order.ShippingAddress,
		&order.Customer.ID, &order.Customer.Username, &order.Customer.Email,
		&order.Payment.ID, &order.Payment.Amount, &paymentStatus, &order.Payment.Method,
		&order.Payment.TransactionID, &order.Payment.CreatedAt,
		&shipID, &tracking, &company, &shippedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	order.Status = types.OrderStatus(status)
	order.Payment.Status = types.PaymentStatus(paymentStatus)
	order.Items = make([]types.OrderItem, 0)
	if shipID.Valid {
		order.Shipping = &types.Shipping{
			ID:              shipID.Int64,
			TrackingNumber:  tracking.String,
			ShippingCompany: company.String,
			ShippedAt:       shippedAt.Time,
		}
	}
	return &order, nil
}

func (s *queries) GetOrder(ctx context.Context, orderID int64) (*types.Order, error) {
	order, err := scanOrder(s.q.QueryRowContext(ctx, orderSelect+` WHERE o.id = ?`, orderID))
	if err != nil {
		return nil, err
	}
	if err := s.loadItems(ctx, []*types.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *queries) ListOrders(ctx context.Context, filter OrderFilter) ([]*types.Order, error) {
	var conditions []string
	var args []interface{}
	if filter.CustomerID != 0 {
		conditions = append(conditions, "o.user_id = ?")
		args = append(args, filter.CustomerID)
	}
	if filter.SupplierID != 0 {
		conditions = append(conditions, `o.id IN (
			SELECT oi.order_id FROM order_items oi
			JOIN products pr ON pr.id = oi.product_id
			WHERE pr.supplier_id = ?)`)
		args = append(args, filter.SupplierID)
	}

	query := orderSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY o.created_at DESC, o.id DESC"

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer func() { _ = rows.Close() }()

	orders := make([]*types.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	_ = rows.Close()

	if err := s.loadItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// loadItems attaches items with their product and supplier to orders
func (s *queries) loadItems(ctx context.Context, orders []*types.Order) error {
	if len(orders) == 0 {
		return nil
	}

	byID := make(map[int64]*types.Order, len(orders))
	placeholders := make([]string, len(orders))
	args := make([]interface{}, len(orders))
	for i, order := range orders {
		byID[order.ID] = order
		placeholders[i] = "?"
		args[i] = order.ID
	}

	query := fmt.Sprintf(`
		SELECT oi.order_id, oi.id, oi.quantity, oi.price_at_purchase,
		       pr.id, pr.name, s.id, s.business_name
		FROM order_items oi
		JOIN products pr ON pr.id = oi.product_id
		JOIN suppliers s ON s.id = pr.supplier_id
		WHERE oi.order_id IN (%s)
		ORDER BY oi.order_id, oi.id
	`, strings.Join(placeholders, ","))

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to load order items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var orderID int64
		var item types.OrderItem
		var price decimal.Decimal
		err := rows.Scan(&orderID, &item.ID, &item.Quantity, &price,
			&item.Product.ID, &item.Product.Name,
			&item.Product.Supplier.ID, &item.Product.Supplier.BusinessName)
		if err != nil {
			return err
		}
		item.PriceAtPurchase = price
		if order, ok := byID[orderID]; ok {
			order.Items = append(order.Items, item)
		}
	}
	return rows.Err()
}

func (s *queries) CreateShipping(ctx context.Context, orderID int64, shipping *types.Shipping) error {
	result, err := s.q.ExecContext(ctx, `
		INSERT INTO shipping (order_id, tracking_number, shipping_company, shipped_at)
		VALUES (?, ?, ?, ?)
	`, orderID, shipping.TrackingNumber, shipping.ShippingCompany, shipping.ShippedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("shipping for order %d: %w", orderID, ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("failed to create shipping: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	shipping.ID = id
	return nil
}

// MarkOrderShipped moves a PENDING order to SHIPPED. It returns
// ErrStatusChanged when the order exists but is no longer pending.
func (s *queries) MarkOrderShipped(ctx context.Context, orderID int64) error {
	result, err := s.q.ExecContext(ctx,
		`UPDATE orders SET status = ? WHERE id = ? AND status = ?`,
		string(types.OrderStatusShipped), orderID, string(types.OrderStatusPending))
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	var exists bool
	if err := s.q.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM orders WHERE id = ?)`, orderID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return ErrStatusChanged
}

// requireRow maps an update or delete that touched nothing to ErrNotFound
func requireRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
