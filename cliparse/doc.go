// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: Connection string or SQLite file URL (required)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - JWTSecret: Secret for HS256 access tokens
  - JWKSURL: Key set URL for RS256 access tokens
  - RateLimit: Write requests per second per client (default: 20)
  - RateBurst: Write burst per client (default: 40)

At least one of JWTSecret and JWKSURL is required.

# CLI Flags

	-c            YAML config file
	-p            Server port
	-d            Database URL
	-t            Database type
	-jwt-secret   HS256 token secret
	-jwks-url     JWKS URL
	-rate         Write requests per second
	-burst        Write burst

# Environment Variables

Flags fall back to environment variables:

	CONFIG_FILE   → -c
	PORT          → -p
	DATABASE_URL  → -d
	DATABASE_TYPE → -t
	JWT_SECRET    → -jwt-secret
	JWKS_URL      → -jwks-url
	RATE_LIMIT    → -rate
	RATE_BURST    → -burst

main loads a .env file into the environment before parsing, if present.

# Config File

The YAML file uses the snake_case names of the fields:

	port: 3318
	database_type: postgres
	database_url: postgres://elovote@localhost/elovote
	jwks_url: https://auth.example.com/.well-known/jwks.json

Precedence is CLI flags, then environment variables, then the file, then
defaults.
*/
package cliparse
