package config

// EnvPrefix namespaces every environment variable consumed by the service.
const EnvPrefix = "CHOWLINE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "CHOWLINE_DB_DSN"
	EnvDBHost = "CHOWLINE_DB_HOST"
	EnvDBUser = "CHOWLINE_DB_USER"
	EnvDBName = "CHOWLINE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
