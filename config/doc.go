// Package config handles application configuration loading and validation.
//
// Configuration is loaded from config.yml, overlaid with .env and
// environment variables (TRANSIT_FEED_PATH, REDIS_HOST, REDIS_PORT,
// REDIS_USERNAME, REDIS_PASSWORD, REDIS_DB, PORT) and validated using struct
// tags. Several feeds may be configured and selected by name.
package config
