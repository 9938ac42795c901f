package config

import (
	"fmt"
	"time"
)

const (
	ENV_PREFIX = "LMSTUDIO_WEBAPP"

	ENV_PROVIDER      = "PROVIDER"
	ENV_MODEL         = "MODEL"
	ENV_ENDPOINT      = "ENDPOINT"
	ENV_API_KEY       = "API_KEY"
	ENV_PROMPT        = "PROMPT"
	ENV_TEMPERATURE   = "TEMPERATURE"
	ENV_TIMEOUT       = "TIMEOUT"
	ENV_PORT          = "PORT"
	ENV_CERT_FILE     = "CERT_FILE"
	ENV_KEY_FILE      = "KEY_FILE"
	ENV_SESSION_STORE = "SESSION_STORE"
	ENV_SESSION_DB    = "SESSION_DB"
	ENV_RATE_LIMIT    = "RATE_LIMIT"
	ENV_LOG_LEVEL     = "LOG_LEVEL"
	ENV_LOG_FORMAT    = "LOG_FORMAT"

	ENV_SENDER_EMAIL    = "SENDER_EMAIL"
	ENV_SENDER_PASSWORD = "SENDER_PASSWORD"
	ENV_RECIPIENT_EMAIL = "RECIPIENT_EMAIL"
	ENV_SMTP_HOST       = "SMTP_HOST"
	ENV_SMTP_PORT       = "SMTP_PORT"
)

const (
	DEFAULT_PROVIDER      = "openai"
	DEFAULT_MODEL         = "local-model"
	DEFAULT_ENDPOINT      = "http://127.0.0.1:1234/v1"
	DEFAULT_API_KEY       = "lm-studio"
	DEFAULT_PROMPT        = "You are a helpful and friendly AI assistant. I prefer concise responses."
	DEFAULT_TEMPERATURE   = 0.7
	DEFAULT_TIMEOUT       = 120 * time.Second
	DEFAULT_PORT          = 5000
	DEFAULT_CERT_FILE     = "cert.pem"
	DEFAULT_KEY_FILE      = "key.pem"
	DEFAULT_SESSION_STORE = "memory"
	DEFAULT_SESSION_DB    = "lmstudio-webapp.db"
	DEFAULT_LOG_LEVEL     = "info"
	DEFAULT_LOG_FORMAT    = "text"
	DEFAULT_ENV_FILE      = ".env"
	DEFAULT_SMTP_HOST     = "smtp.gmail.com"
	DEFAULT_SMTP_PORT     = 465

	MIN_TEMPERATURE = 0.0
	MAX_TEMPERATURE = 2.0
)

func GetEnvWithPrefix(env string) string {
	return fmt.Sprintf("%s_%s", ENV_PREFIX, env)
}
