package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvRedisAddr        = "REDIS_ADDR"
	EnvRedisPassword    = "REDIS_PASSWORD"
	EnvRedisDB          = "REDIS_DB"
	EnvRedisConnTimeout = "REDIS_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout      = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL      = "IDEMPOTENCY_TTL"
	EnvIdempotencyGuardTTL = "IDEMPOTENCY_GUARD_TTL"
	EnvIdempotencyStrict   = "IDEMPOTENCY_STRICT"
	EnvMaxRequestSize      = "MAX_REQUEST_SIZE"

	EnvLockTTL         = "LOCK_TTL"
	EnvLockGranularity = "LOCK_GRANULARITY"

	EnvWorkerConcurrency = "WORKER_CONCURRENCY"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
)
