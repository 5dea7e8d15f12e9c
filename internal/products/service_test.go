package product

import (
	"context"
	"testing"

	"github.com/angelmondragon/ecom-backend/pkg/db/dbtest"
	"github.com/angelmondragon/ecom-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/ecom-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn := dbtest.Open(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	return svc, conn
}

func stringPtr(v string) *string { return &v }

func TestNewServiceRequiresRepo(t *testing.T) {
	_, err := NewService(nil)
	require.Error(t, err)
}

func TestCreateCategoryRejectsDuplicates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateCategory(ctx, CreateCategoryInput{Name: " Kitchen ", Description: stringPtr("pots")})
	require.NoError(t, err)
	assert.Equal(t, "Kitchen", created.Name)

	_, err = svc.CreateCategory(ctx, CreateCategoryInput{Name: "Kitchen"})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeConflict), "got %v", err)

	list, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCreateProductRequiresCategory(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, CreateProductInput{CategoryID: uuid.New(), Name: "Orphan", PriceCents: 100})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound), "got %v", err)

	_, err = svc.CreateProduct(ctx, CreateProductInput{Name: "No category", PriceCents: 100})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation), "got %v", err)
}

func TestCreateAndGetProduct(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	category, err := svc.CreateCategory(ctx, CreateCategoryInput{Name: "Garden"})
	require.NoError(t, err)

	created, err := svc.CreateProduct(ctx, CreateProductInput{
		CategoryID:  category.ID,
		Name:        "Watering Can",
		Description: stringPtr("  5 litres "),
		PriceCents:  1999,
		Stock:       4,
	})
	require.NoError(t, err)
	assert.Equal(t, "Garden", created.CategoryName)
	require.NotNil(t, created.Description)
	assert.Equal(t, "5 litres", *created.Description)

	fetched, err := svc.GetProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1999, fetched.PriceCents)

	_, err = svc.GetProduct(ctx, uuid.New())
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound), "got %v", err)
}

func TestSearchProductsIsCaseInsensitive(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	dbtest.SeedProduct(t, conn, "Red Mug", 500)
	dbtest.SeedProduct(t, conn, "Blue MUG", 600)
	dbtest.SeedProduct(t, conn, "Teapot", 900)

	found, err := svc.SearchProducts(ctx, "mug")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Blue MUG", found[0].Name)
	assert.Equal(t, "Red Mug", found[1].Name)

	none, err := svc.SearchProducts(ctx, "50%")
	require.NoError(t, err)
	assert.Empty(t, none)

	all, err := svc.SearchProducts(ctx, "  ")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestUpdateProduct(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	product := dbtest.SeedProduct(t, conn, "Lamp", 3000)

	price := int64(2500)
	updated, err := svc.UpdateProduct(ctx, product.ID, UpdateProductInput{
		Name:       stringPtr("Desk Lamp"),
		PriceCents: &price,
	})
	require.NoError(t, err)
	assert.Equal(t, "Desk Lamp", updated.Name)
	assert.EqualValues(t, 2500, updated.PriceCents)
	assert.Equal(t, 10, updated.Stock)

	negative := int64(-1)
	_, err = svc.UpdateProduct(ctx, product.ID, UpdateProductInput{PriceCents: &negative})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation), "got %v", err)

	_, err = svc.UpdateProduct(ctx, uuid.New(), UpdateProductInput{Name: stringPtr("ghost")})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound), "got %v", err)
}

func TestDeleteProduct(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	product := dbtest.SeedProduct(t, conn, "Stool", 4500)

	require.NoError(t, svc.DeleteProduct(ctx, product.ID))
	_, err := svc.GetProduct(ctx, product.ID)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound), "got %v", err)

	err = svc.DeleteProduct(ctx, product.ID)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound), "got %v", err)
}

func TestGetProductDetailIncludesReviewsAndFAQs(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	product := dbtest.SeedProduct(t, conn, "Kettle", 3500)
	alice := dbtest.SeedUser(t, conn, "alice@example.com")
	bob := dbtest.SeedUser(t, conn, "bob@example.com")

	require.NoError(t, conn.Create(&models.Review{ID: uuid.New(), UserID: alice.ID, ProductID: product.ID, Rating: 5}).Error)
	require.NoError(t, conn.Create(&models.Review{ID: uuid.New(), UserID: bob.ID, ProductID: product.ID, Rating: 4, Description: stringPtr("ok")}).Error)
	require.NoError(t, conn.Create(&models.FAQ{ID: uuid.New(), Question: "Shipping?", Answer: "3 days"}).Error)

	detail, err := svc.GetProductDetail(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, product.ID, detail.Product.ID)
	require.Len(t, detail.Reviews, 2)
	require.NotNil(t, detail.AverageRating)
	assert.InDelta(t, 4.5, *detail.AverageRating, 0.001)
	require.Len(t, detail.FAQs, 1)
	assert.Equal(t, "Shipping?", detail.FAQs[0].Question)

	names := []string{detail.Reviews[0].UserName, detail.Reviews[1].UserName}
	assert.ElementsMatch(t, []string{"alice@example.com", "bob@example.com"}, names)
}

func TestGetProductDetailWithoutReviews(t *testing.T) {
	svc, conn := newTestService(t)
	product := dbtest.SeedProduct(t, conn, "Spoon", 200)

	detail, err := svc.GetProductDetail(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Nil(t, detail.AverageRating)
	assert.Empty(t, detail.Reviews)
	assert.NotNil(t, detail.FAQs)
}
