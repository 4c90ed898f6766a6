package config

// EnvPrefix is passed to envconfig; tags carry the full variable names so the
// prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "EASYFLOWS_DB_DSN"
	EnvDBHost = "EASYFLOWS_DB_HOST"
	EnvDBUser = "EASYFLOWS_DB_USER"
	EnvDBName = "EASYFLOWS_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
