package testutil

import (
	"fmt"
	"math/rand"
	"os"
	"testing"

	"github.com/DR-Danke/Kompass-sub005/internal/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates a connection to the test PostgreSQL database.
// It uses environment variables or falls back to docker-compose defaults.
func SetupTestDB(t *testing.T) *gorm.DB {
	host := getEnvOrDefault("DATABASE_HOST", "localhost")
	port := getEnvOrDefault("DATABASE_PORT", "5432")
	user := getEnvOrDefault("DATABASE_USER", "kompass_user")
	password := getEnvOrDefault("DATABASE_PASSWORD", "kompass_password")
	dbname := getEnvOrDefault("DATABASE_NAME", "kompass")

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
		host, port, user, password, dbname)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "Failed to connect to test database. Ensure PostgreSQL is running.")

	require.NoError(t, db.AutoMigrate(
		&domain.Client{},
		&domain.Supplier{},
		&domain.Product{},
		&domain.Quotation{},
		&domain.QuotationItem{},
		&domain.QuotationStatusHistory{},
		&domain.ShareToken{},
		&domain.PricingSetting{},
		&domain.NumberSequence{},
		&domain.Activity{},
		&domain.User{},
	))

	return db
}

// CleanupTestData removes test rows from all tables. Call after tests
// to leave a clean state.
func CleanupTestData(t *testing.T, db *gorm.DB) {
	// Delete in order to respect foreign key constraints
	tables := []string{
		"share_tokens",
		"quotation_status_history",
		"quotation_items",
		"quotations",
		"activities",
		"products",
		"suppliers",
		"clients",
		"pricing_settings",
		"number_sequences",
	}

	for _, table := range tables {
		err := db.Exec(fmt.Sprintf("DELETE FROM %s WHERE TRUE", table)).Error
		if err != nil {
			t.Logf("Note: Could not clean table %s: %v", table, err)
		}
	}
}

// CreateTestClient inserts a client fixture and returns it
func CreateTestClient(t *testing.T, db *gorm.DB, name string) *domain.Client {
	client := &domain.Client{
		Name:              name,
		TaxID:             fmt.Sprintf("9%09d", rand.Intn(1000000000)),
		Email:             "buyer@example.com.co",
		City:              "Bogota",
		Country:           "Colombia",
		PreferredIncoterm: domain.IncotermCIF,
		Status:            domain.ClientStatusActive,
	}
	require.NoError(t, db.Create(client).Error)
	return client
}

// CreateTestSupplier inserts a supplier fixture and returns it
func CreateTestSupplier(t *testing.T, db *gorm.DB, name string) *domain.Supplier {
	supplier := &domain.Supplier{
		Name:         name,
		Country:      "China",
		City:         "Shenzhen",
		LeadTimeDays: 30,
		IsActive:     true,
	}
	require.NoError(t, db.Create(supplier).Error)
	return supplier
}

// CreateTestProduct inserts a product fixture tied to a supplier
func CreateTestProduct(t *testing.T, db *gorm.DB, supplier *domain.Supplier, name string) *domain.Product {
	product := &domain.Product{
		SKU:           fmt.Sprintf("SKU-%06d", rand.Intn(1000000)),
		Name:          name,
		HSCode:        "8471.30.00",
		HSDutyPercent: 5,
		UnitOfMeasure: "unit",
		UnitCost:      80,
		UnitPrice:     100,
		Currency:      "USD",
		IsActive:      true,
	}
	if supplier != nil {
		product.SupplierID = &supplier.ID
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
