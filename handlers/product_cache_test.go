package handlers

import (
	"context"
	"testing"

	"Loja/config"
	"Loja/forms"
	"Loja/models"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := config.SetupDatabaseConnection(config.DatabaseConfig{
		Driver:   "sqlite",
		Database: "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		LogLevel: "silent",
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})
	return db
}

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	server := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return server, rdb
}

func seed(t *testing.T, db *gorm.DB, names ...string) {
	t.Helper()
	for _, name := range names {
		product := models.Product{Name: name, Price: decimal.NewFromInt(1), Stock: 1}
		require.NoError(t, db.Create(&product).Error)
	}
}

func names(products []models.Product) []string {
	result := make([]string, 0, len(products))
	for _, product := range products {
		result = append(result, product.Name)
	}
	return result
}

func TestLoadProductsWithoutRedis(t *testing.T) {
	db := setupDB(t)

	products, err := loadProducts(context.Background(), db, nil)
	require.NoError(t, err)
	assert.Empty(t, products)

	seed(t, db, "A", "B")
	products, err = loadProducts(context.Background(), db, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, names(products))
}

func TestLoadProductsFillsCache(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	_, rdb := setupRedis(t)
	seed(t, db, "A", "B")

	products, err := loadProducts(ctx, db, rdb)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, names(products))

	assert.Equal(t, int64(2), rdb.ZCard(ctx, productsCacheKey).Val())
	assert.True(t, rdb.TTL(ctx, productsCacheKey).Val() > 0)

	// Enquanto não for invalidado, o cache é a fonte da listagem
	seed(t, db, "C")
	products, err = loadProducts(ctx, db, rdb)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, names(products))

	invalidateProductsCache(ctx, rdb)
	products, err = loadProducts(ctx, db, rdb)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, names(products))
}

func TestLoadProductsSkipsCacheWhenWriteRacesRead(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	_, rdb := setupRedis(t)
	seed(t, db, "A")

	// Uma escrita concluída entre a consulta ao banco e a gravação do cache
	raced := false
	err := db.Callback().Query().After("gorm:query").Register("test:concurrent_write", func(tx *gorm.DB) {
		if raced {
			return
		}
		raced = true
		product := models.Product{Name: "B", Price: decimal.NewFromInt(1), Stock: 1}
		require.NoError(t, db.Create(&product).Error)
		invalidateProductsCache(ctx, rdb)
	})
	require.NoError(t, err)

	products, err := loadProducts(ctx, db, rdb)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, names(products))
	assert.Equal(t, int64(0), rdb.Exists(ctx, productsCacheKey).Val())

	products, err = loadProducts(ctx, db, rdb)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, names(products))
}

func TestInvalidateBumpsGeneration(t *testing.T) {
	ctx := context.Background()
	_, rdb := setupRedis(t)

	invalidateProductsCache(ctx, rdb)
	invalidateProductsCache(ctx, rdb)

	generation, err := readProductsGeneration(ctx, rdb)
	require.NoError(t, err)
	assert.Equal(t, "2", generation)

	err = writeProductsCache(ctx, rdb, "1", []models.Product{{Name: "A"}})
	assert.ErrorIs(t, err, errStaleProducts)
	assert.Equal(t, int64(0), rdb.Exists(ctx, productsCacheKey).Val())
}

func TestLoadProductsCorruptCacheFallsBack(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	_, rdb := setupRedis(t)
	seed(t, db, "A")

	require.NoError(t, rdb.ZAdd(ctx, productsCacheKey, redis.Z{Score: 1, Member: "{nao-e-json"}).Err())

	products, err := loadProducts(ctx, db, rdb)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, names(products))
}

func TestLoadProductsRedisDownFallsBack(t *testing.T) {
	db := setupDB(t)
	server, rdb := setupRedis(t)
	seed(t, db, "A")
	server.Close()

	products, err := loadProducts(context.Background(), db, rdb)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, names(products))
}

func TestCachePreservesProductFields(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	_, rdb := setupRedis(t)

	product := models.Product{
		Name:       "Caneca",
		Price:      decimal.RequireFromString("12.34"),
		Stock:      5,
		ImageURL:   "https://loja.example.com/caneca.png",
		Categories: []models.Category{{Name: "Cozinha"}},
	}
	require.NoError(t, db.Create(&product).Error)

	_, err := loadProducts(ctx, db, rdb)
	require.NoError(t, err)

	cached, err := readProductsCache(ctx, rdb)
	require.NoError(t, err)
	require.Len(t, cached, 1)
	assert.Equal(t, product.ID, cached[0].ID)
	assert.Equal(t, "12.34", cached[0].Price.StringFixed(2))
	assert.Equal(t, uint(5), cached[0].Stock)
	assert.Equal(t, product.ImageURL, cached[0].ImageURL)
	assert.Equal(t, []string{"Cozinha"}, cached[0].CategoryNames())
}

func TestSaveProductReusesCategories(t *testing.T) {
	db := setupDB(t)

	first := &models.Product{}
	require.NoError(t, saveProduct(db, first, &forms.ProductForm{
		Name: "Caneca", Price: "10", Stock: "1", Categories: "Cozinha, Presentes",
	}))
	second := &models.Product{}
	require.NoError(t, saveProduct(db, second, &forms.ProductForm{
		Name: "Prato", Price: "20", Stock: "2", Categories: "Cozinha",
	}))

	var count int64
	require.NoError(t, db.Model(&models.Category{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	var cozinha models.Category
	require.NoError(t, db.Preload("Products").Where("name = ?", "Cozinha").First(&cozinha).Error)
	assert.Len(t, cozinha.Products, 2)
}

func TestDeleteProductClearsLinks(t *testing.T) {
	db := setupDB(t)

	product := &models.Product{}
	require.NoError(t, saveProduct(db, product, &forms.ProductForm{
		Name: "Caneca", Price: "10", Stock: "1", Categories: "Cozinha",
	}))
	require.NoError(t, deleteProduct(db, product))

	var links int64
	require.NoError(t, db.Table("category_products").Count(&links).Error)
	assert.Equal(t, int64(0), links)

	err := db.First(&models.Product{}, product.ID).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
