// Package config provides configuration types, loading, validation and
// hot reload for the health probe service.
//
// Configuration is read from a YAML file. ${VAR} and ${VAR:-default}
// references are substituted from the environment before parsing, and a
// small set of well-known environment variables (APP_ENV, HEALTH_TOKEN,
// DATABASE_DSN, ...) override file values after parsing.
//
// Example:
//
//	app:
//	  name: billing
//	  environment: ${APP_ENV:-production}
//	health:
//	  token: ${HEALTH_TOKEN}
//	  storagePath: /var/lib/billing
//	database:
//	  driver: pgx
//	  dsn: postgres://billing@db:5432/billing
//	redis:
//	  url: redis://cache:6379/0
//	cache:
//	  type: redis
//	  ttl: 60s
package config
