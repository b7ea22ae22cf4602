// Package config reads the server configuration from the environment.
//
// An optional .env file is loaded first with godotenv; variables already
// present in the process environment take precedence. The Config struct is
// then filled by caarlos0/env using its struct tags:
//
//	HOST, PORT                 listen address (localhost:8080)
//	LEVELS_DIR                 level catalogue directory (levels)
//	LEVEL_SOURCE_URL           remote level server; sessions fetch GET {url}/level/{id}
//	REDIS_ADDR                 Redis for user profiles; in-memory when empty
//	LOG_LEVEL, LOG_FORMAT      logrus level and text|json formatter
//	SESSION_TTL                idle time before a session is closed (24h)
//	SESSION_CLEANUP_INTERVAL   how often expired sessions are swept (1h)
//	TICK_INTERVAL              session timer resolution (1s)
//	NGROK_ENABLED, NGROK_AUTHTOKEN, NGROK_DOMAIN
//
// Command line flags override these values in main.
package config
