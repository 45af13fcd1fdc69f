package config

const (
	EnvPrefix = "SUPPLYPULSE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv = "SUPPLYPULSE_APP_ENV"
	EnvPort   = "SUPPLYPULSE_APP_PORT"

	EnvDBDSN  = "SUPPLYPULSE_DB_DSN"
	EnvDBHost = "SUPPLYPULSE_DB_HOST"
	EnvDBUser = "SUPPLYPULSE_DB_USER"
	EnvDBName = "SUPPLYPULSE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
