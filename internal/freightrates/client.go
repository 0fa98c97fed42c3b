// Package freightrates provides read-only connectivity to the logistics
// MS SQL Server warehouse holding negotiated national freight tariffs and
// customs nationalization fees for Colombian destinations.
package freightrates

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/DR-Danke/Kompass-sub005/internal/config"
	_ "github.com/microsoft/go-mssqldb" // MS SQL Server driver
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	// Default retry configuration for connection attempts
	defaultMaxRetries     = 3
	defaultInitialBackoff = 1 * time.Second
	defaultMaxBackoff     = 10 * time.Second
	defaultBackoffFactor  = 2.0

	// Default health check timeout
	defaultHealthCheckTimeout = 5 * time.Second
)

// ErrLookupTimeout is returned when a rate lookup does not complete
// within its deadline. Callers must fail the calculation rather than
// substitute a stale figure.
var ErrLookupTimeout = errors.New("freight rate lookup timed out")

// ErrRateNotFound is returned when no tariff row covers the requested
// destination or port.
var ErrRateNotFound = errors.New("freight rate not found")

// Client provides read-only access to the freight rates warehouse.
// It manages connection pooling and exposes the two lookups the
// pricing cascade needs.
type Client struct {
	db           *sql.DB
	config       *config.FreightRatesConfig
	logger       *zap.Logger
	queryTimeout time.Duration
}

// HealthStatus represents the health check result for the warehouse connection
type HealthStatus struct {
	Status     string        `json:"status"`
	Latency    time.Duration `json:"latency_ms"`
	Error      string        `json:"error,omitempty"`
	MaxOpen    int           `json:"max_open_connections"`
	Open       int           `json:"open_connections"`
	InUse      int           `json:"in_use"`
	Idle       int           `json:"idle"`
	WaitCount  int64         `json:"wait_count"`
	WaitTimeMs int64         `json:"wait_time_ms"`
}

// NewClient creates a new freight rates client with the given configuration.
// Returns nil if the warehouse is not enabled or not configured.
// The client establishes a connection pool with retry logic for transient failures.
func NewClient(cfg *config.FreightRatesConfig, logger *zap.Logger) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		logger.Info("Freight rates connection disabled")
		return nil, nil
	}

	// Validate required configuration
	if cfg.URL == "" || cfg.User == "" || cfg.Password == "" {
		logger.Warn("Freight rates enabled but missing credentials, skipping connection",
			zap.Bool("url_present", cfg.URL != ""),
			zap.Bool("user_present", cfg.User != ""),
			zap.Bool("password_present", cfg.Password != ""),
		)
		return nil, nil
	}

	logger.Info("Initializing freight rates connection",
		zap.Int("max_open_conns", cfg.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.MaxIdleConns),
		zap.Int("conn_max_lifetime_seconds", cfg.ConnMaxLifetime),
		zap.Int("query_timeout_seconds", cfg.QueryTimeout),
	)

	connStr, err := buildConnectionString(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build connection string: %w", err)
	}

	// Attempt connection with retry logic
	var db *sql.DB
	backoff := defaultInitialBackoff

	for attempt := 1; attempt <= defaultMaxRetries; attempt++ {
		logger.Info("Attempting freight rates connection",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", defaultMaxRetries),
		)

		db, err = sql.Open("sqlserver", connStr)
		if err != nil {
			logger.Warn("Failed to open freight rates connection",
				zap.Error(err),
				zap.Int("attempt", attempt),
			)
			if attempt < defaultMaxRetries {
				time.Sleep(backoff)
				backoff = min(time.Duration(float64(backoff)*defaultBackoffFactor), defaultMaxBackoff)
			}
			continue
		}

		// Configure connection pool
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

		// Test connection with ping
		ctx, cancel := context.WithTimeout(context.Background(), defaultHealthCheckTimeout)
		err = db.PingContext(ctx)
		cancel()

		if err != nil {
			logger.Warn("Freight rates ping failed",
				zap.Error(err),
				zap.Int("attempt", attempt),
			)
			_ = db.Close()
			if attempt < defaultMaxRetries {
				time.Sleep(backoff)
				backoff = min(time.Duration(float64(backoff)*defaultBackoffFactor), defaultMaxBackoff)
			}
			continue
		}

		logger.Info("Freight rates connection established successfully",
			zap.Int("attempts_taken", attempt),
		)

		return &Client{
			db:           db,
			config:       cfg,
			logger:       logger,
			queryTimeout: cfg.QueryTimeoutDuration(),
		}, nil
	}

	return nil, fmt.Errorf("failed to connect to freight rates warehouse after %d attempts: %w", defaultMaxRetries, err)
}

// buildConnectionString constructs a SQL Server connection string from the config.
// URL format expected: host:port/database or host:port (uses default database)
func buildConnectionString(cfg *config.FreightRatesConfig) (string, error) {
	urlParts := strings.SplitN(cfg.URL, "/", 2)
	hostPort := urlParts[0]
	database := ""
	if len(urlParts) > 1 {
		database = urlParts[1]
	}

	hostParts := strings.SplitN(hostPort, ":", 2)
	host := hostParts[0]
	port := "1433" // Default SQL Server port
	if len(hostParts) > 1 {
		port = hostParts[1]
	}

	query := url.Values{}
	query.Add("encrypt", "true")
	query.Add("TrustServerCertificate", "false")
	query.Add("connection timeout", "30")
	if database != "" {
		query.Add("database", database)
	}

	u := &url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     fmt.Sprintf("%s:%s", host, port),
		RawQuery: query.Encode(),
	}

	return u.String(), nil
}

// Close gracefully closes the warehouse connection.
// Should be called during application shutdown.
func (c *Client) Close() error {
	if c == nil || c.db == nil {
		return nil
	}

	c.logger.Info("Closing freight rates connection")

	if err := c.db.Close(); err != nil {
		c.logger.Error("Failed to close freight rates connection", zap.Error(err))
		return fmt.Errorf("failed to close freight rates connection: %w", err)
	}

	return nil
}

// HealthCheck performs a health check on the warehouse connection.
// Returns detailed status including connection pool statistics.
func (c *Client) HealthCheck(ctx context.Context) *HealthStatus {
	if c == nil || c.db == nil {
		return &HealthStatus{
			Status: "disabled",
		}
	}

	start := time.Now()

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultHealthCheckTimeout)
		defer cancel()
	}

	err := c.db.PingContext(ctx)
	latency := time.Since(start)

	stats := c.db.Stats()
	status := &HealthStatus{
		Latency:    latency,
		MaxOpen:    stats.MaxOpenConnections,
		Open:       stats.OpenConnections,
		InUse:      stats.InUse,
		Idle:       stats.Idle,
		WaitCount:  stats.WaitCount,
		WaitTimeMs: stats.WaitDuration.Milliseconds(),
	}

	if err != nil {
		c.logger.Warn("Freight rates health check failed",
			zap.Error(err),
			zap.Duration("latency", latency),
		)
		status.Status = "unhealthy"
		status.Error = err.Error()
	} else {
		status.Status = "healthy"
	}

	return status
}

// IsEnabled returns true if the client is initialized and ready for lookups.
func (c *Client) IsEnabled() bool {
	return c != nil && c.db != nil
}

// NationalFreightCOP returns the negotiated inland freight tariff in
// COP from the port of entry to the destination city for the given
// chargeable weight.
func (c *Client) NationalFreightCOP(ctx context.Context, portOfEntry, destinationCity string, weightKg float64) (decimal.Decimal, error) {
	const query = `
		SELECT TOP 1 rate_per_kg, minimum_charge
		FROM dbo.national_freight_tariffs
		WHERE port_of_entry = @p1 AND destination_city = @p2
		  AND valid_from <= GETUTCDATE()
		  AND (valid_until IS NULL OR valid_until >= GETUTCDATE())
		ORDER BY valid_from DESC`

	var ratePerKg, minimumCharge sql.NullFloat64
	err := c.queryRow(ctx, query, func(row *sql.Row) error {
		return row.Scan(&ratePerKg, &minimumCharge)
	}, portOfEntry, destinationCity)
	if err != nil {
		return decimal.Zero, err
	}

	charge := decimal.NewFromFloat(ratePerKg.Float64).Mul(decimal.NewFromFloat(weightKg))
	minimum := decimal.NewFromFloat(minimumCharge.Float64)
	if charge.LessThan(minimum) {
		charge = minimum
	}
	return charge, nil
}

// NationalizationCOP returns the flat customs nationalization fee in
// COP for clearing goods under the given HS chapter at the port of entry.
func (c *Client) NationalizationCOP(ctx context.Context, portOfEntry, hsChapter string) (decimal.Decimal, error) {
	const query = `
		SELECT TOP 1 fee_cop
		FROM dbo.nationalization_fees
		WHERE port_of_entry = @p1 AND hs_chapter = @p2
		  AND valid_from <= GETUTCDATE()
		  AND (valid_until IS NULL OR valid_until >= GETUTCDATE())
		ORDER BY valid_from DESC`

	var fee sql.NullFloat64
	err := c.queryRow(ctx, query, func(row *sql.Row) error {
		return row.Scan(&fee)
	}, portOfEntry, hsChapter)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromFloat(fee.Float64), nil
}

// queryRow runs a single-row lookup under the configured timeout and
// maps driver errors onto the package sentinels.
func (c *Client) queryRow(ctx context.Context, query string, scan func(*sql.Row) error, args ...interface{}) error {
	if c == nil || c.db == nil {
		return fmt.Errorf("freight rates client not initialized")
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.queryTimeout)
		defer cancel()
	}

	start := time.Now()
	row := c.db.QueryRowContext(ctx, query, args...)
	err := scan(row)

	switch {
	case err == nil:
		c.logger.Debug("Freight rate lookup completed",
			zap.Duration("duration", time.Since(start)),
		)
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return ErrRateNotFound
	case errors.Is(err, context.DeadlineExceeded):
		c.logger.Warn("Freight rate lookup timed out",
			zap.Duration("duration", time.Since(start)),
		)
		return ErrLookupTimeout
	default:
		c.logger.Error("Freight rate lookup failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)),
		)
		return fmt.Errorf("lookup failed: %w", err)
	}
}
