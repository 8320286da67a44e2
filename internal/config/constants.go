package config

import "time"

// Database connection pool settings
const (
	DBMaxOpenConns    = 25
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 5 * time.Minute
)

// HTTP server timeouts
const (
	ServerRequestTimeout  = 60 * time.Second
	ServerReadTimeout     = 15 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// Database ping timeout for startup checks
const DBPingTimeout = 5 * time.Second

// Background job intervals
const CleanupJobInterval = 5 * time.Minute

// Password hashing work factor
const BcryptCost = 12

// Upload limits
const (
	DefaultMaxBodySize = 1 << 20  // 1MB for JSON bodies
	MaxUploadSize      = 10 << 20 // 10MB for multipart uploads
)

// Rate limit for authenticated thumbnail API requests
const DefaultRateLimitPerMin = 60
