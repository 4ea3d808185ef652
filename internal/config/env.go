package config

const (
	// APPLICATION

	EnvApplicationHost = "APP_APPLICATION_HOST"
	EnvApplicationPort = "APP_APPLICATION_PORT"

	// DATABASE

	EnvDatabaseProvider = "APP_DATABASE_PROVIDER"
	EnvDatabaseHost     = "APP_DATABASE_HOST"
	EnvDatabasePort     = "APP_DATABASE_PORT"
	EnvDatabaseUsername = "APP_DATABASE_USERNAME"
	EnvDatabasePassword = "APP_DATABASE_PASSWORD"
	EnvDatabaseName     = "APP_DATABASE_NAME"
	EnvDatabaseSSLMode  = "APP_DATABASE_SSL_MODE"
	EnvSQLitePath       = "APP_DATABASE_SQLITE_PATH"
	EnvDaprStoreName    = "APP_DATABASE_DAPR_STORE_NAME"

	// LOGGING / TELEMETRY

	EnvLogLevel          = "APP_LOG_LEVEL"
	EnvTelemetryExporter = "APP_TELEMETRY_EXPORTER"
)
