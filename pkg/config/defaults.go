package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "reserva"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultRedisAddr        = "localhost:6379"
	DefaultRedisDB          = 0
	DefaultRedisConnTimeout = 2 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "INFO"

	DefaultRateLimitRequests = 10
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	// Successful creates keep their replay record for a day; the one-shot
	// guard on user sync only needs to absorb short retry bursts.
	DefaultIdempotencyTTL      = 24 * time.Hour
	DefaultIdempotencyGuardTTL = 10 * time.Minute

	DefaultLockTTL = 10 * time.Second

	// provider serializes all admissions for a provider; interval only
	// serializes admissions for the exact same time window.
	LockGranularityProvider = "provider"
	LockGranularityInterval = "interval"
	DefaultLockGranularity  = LockGranularityProvider

	DefaultWorkerConcurrency = 3
	MaxWorkerConcurrency     = 3

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultPaginationLimit = 100
)
