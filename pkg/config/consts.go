package config

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "LOCALMARKET"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "LOCALMARKET_DB_DSN"
	EnvDBHost = "LOCALMARKET_DB_HOST"
	EnvDBUser = "LOCALMARKET_DB_USER"
	EnvDBName = "LOCALMARKET_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
