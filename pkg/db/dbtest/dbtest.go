// Package dbtest opens isolated in-memory sqlite databases carrying the same
// tables and uniqueness rules as the goose migrations.
package dbtest

import (
	"context"
	"fmt"
	"regexp"
	"sync/atomic"
	"testing"
	"time"

	"github.com/angelmondragon/ecom-backend/pkg/db"
	"github.com/angelmondragon/ecom-backend/pkg/db/models"
	"github.com/angelmondragon/ecom-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var (
	dsnSanitizeRe = regexp.MustCompile(`[^A-Za-z0-9_]+`)
	dbSeq         atomic.Int64
)

var schema = []string{
	`CREATE TABLE users (
		id uuid PRIMARY KEY,
		external_id text UNIQUE,
		email text NOT NULL UNIQUE,
		name text NOT NULL,
		password_hash text,
		role text NOT NULL DEFAULT 'CUSTOMER',
		image_url text,
		created_at datetime,
		updated_at datetime
	)`,
	`CREATE TABLE category (
		id uuid PRIMARY KEY,
		name text NOT NULL UNIQUE,
		description text,
		created_at datetime
	)`,
	`CREATE TABLE product (
		id uuid PRIMARY KEY,
		category_id uuid NOT NULL,
		name text NOT NULL,
		description text,
		price_cents integer NOT NULL,
		stock integer NOT NULL DEFAULT 0,
		image_url text,
		created_at datetime,
		updated_at datetime
	)`,
	`CREATE TABLE coupon (
		id uuid PRIMARY KEY,
		name text NOT NULL,
		code text NOT NULL UNIQUE,
		discount_percent integer NOT NULL,
		expires_at datetime,
		created_at datetime
	)`,
	`CREATE TABLE "order" (
		id uuid PRIMARY KEY,
		user_id uuid NOT NULL,
		order_description text,
		address text,
		payment text,
		placed_at datetime,
		amount_cents integer NOT NULL DEFAULT 0,
		total_amount_cents integer NOT NULL DEFAULT 0,
		discount_cents integer NOT NULL DEFAULT 0,
		status text NOT NULL DEFAULT 'PENDING',
		tracking_id uuid UNIQUE,
		coupon_id uuid,
		created_at datetime,
		updated_at datetime
	)`,
	`CREATE UNIQUE INDEX uq_order_one_pending_per_user ON "order" (user_id) WHERE status = 'PENDING'`,
	`CREATE TABLE cart_items (
		id uuid PRIMARY KEY,
		order_id uuid NOT NULL,
		product_id uuid NOT NULL,
		user_id uuid NOT NULL,
		price_cents integer NOT NULL,
		quantity integer NOT NULL DEFAULT 1 CHECK (quantity >= 1),
		created_at datetime,
		updated_at datetime,
		CONSTRAINT uq_cart_items_order_product UNIQUE (order_id, product_id)
	)`,
	`CREATE TABLE wishlist (
		id uuid PRIMARY KEY,
		user_id uuid NOT NULL,
		product_id uuid NOT NULL,
		created_at datetime,
		CONSTRAINT wishlist_user_product_key UNIQUE (user_id, product_id)
	)`,
	`CREATE TABLE faq (
		id uuid PRIMARY KEY,
		question text NOT NULL,
		answer text NOT NULL,
		created_at datetime
	)`,
	`CREATE TABLE review (
		id uuid PRIMARY KEY,
		user_id uuid NOT NULL,
		product_id uuid NOT NULL,
		rating integer NOT NULL,
		description text,
		created_at datetime
	)`,
}

// Open returns a fresh sqlite database private to the calling test.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	name := dsnSanitizeRe.ReplaceAllString(t.Name(), "_")
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbSeq.Add(1))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, stmt := range schema {
		if err := conn.Exec(stmt).Error; err != nil {
			t.Fatalf("apply schema: %v", err)
		}
	}
	return conn
}

// Client wraps Open in a db.Client for services that run transactions.
func Client(t *testing.T) (*db.Client, *gorm.DB) {
	t.Helper()
	conn := Open(t)
	return db.FromConn(conn), conn
}

func create(t *testing.T, conn *gorm.DB, value any) {
	t.Helper()
	if err := conn.WithContext(context.Background()).Create(value).Error; err != nil {
		t.Fatalf("seed %T: %v", value, err)
	}
}

// SeedUser inserts a customer account with the given email.
func SeedUser(t *testing.T, conn *gorm.DB, email string) models.User {
	t.Helper()
	user := models.User{ID: uuid.New(), Email: email, Name: email, Role: enums.UserRoleCustomer}
	create(t, conn, &user)
	return user
}

// SeedAdmin inserts an admin account with the given email.
func SeedAdmin(t *testing.T, conn *gorm.DB, email string) models.User {
	t.Helper()
	user := models.User{ID: uuid.New(), Email: email, Name: email, Role: enums.UserRoleAdmin}
	create(t, conn, &user)
	return user
}

// SeedCategory inserts a category.
func SeedCategory(t *testing.T, conn *gorm.DB, name string) models.Category {
	t.Helper()
	category := models.Category{ID: uuid.New(), Name: name}
	create(t, conn, &category)
	return category
}

// SeedProduct inserts a product priced in cents under a fresh category.
func SeedProduct(t *testing.T, conn *gorm.DB, name string, priceCents int64) models.Product {
	t.Helper()
	category := SeedCategory(t, conn, "cat-"+uuid.NewString())
	product := models.Product{ID: uuid.New(), CategoryID: category.ID, Name: name, PriceCents: priceCents, Stock: 10}
	create(t, conn, &product)
	return product
}

// SeedCoupon inserts a coupon; a nil expiry never expires.
func SeedCoupon(t *testing.T, conn *gorm.DB, code string, percent int64, expiresAt *time.Time) models.Coupon {
	t.Helper()
	coupon := models.Coupon{ID: uuid.New(), Name: code, Code: code, DiscountPercent: percent, ExpiresAt: expiresAt}
	create(t, conn, &coupon)
	return coupon
}

// SeedOrder inserts an order row as-is.
func SeedOrder(t *testing.T, conn *gorm.DB, order models.Order) models.Order {
	t.Helper()
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.Status == "" {
		order.Status = enums.OrderStatusPending
	}
	create(t, conn, &order)
	return order
}

// SeedCartItem inserts a line on an order.
func SeedCartItem(t *testing.T, conn *gorm.DB, item models.CartItem) models.CartItem {
	t.Helper()
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.Quantity == 0 {
		item.Quantity = 1
	}
	create(t, conn, &item)
	return item
}
