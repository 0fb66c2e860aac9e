// Copyright (c) 2025 Ali Abbas.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3000)
  - DatabaseURL: SQLite path or PostgreSQL connection string (required)
  - DatabaseType: "sqlite" (default) or "postgres"
  - OpenAIKey: API key for the synthesis gateway (required)
  - OpenAIModel: Model name (default: gpt-4o-mini)
  - OpenAIBaseURL: OpenAI-compatible endpoint (default: api.openai.com)
  - GatewayTimeout: Upper bound on one synthesis round trip (default: 60s)

# CLI Flags

	-p               Server port
	-d               Database URL
	-t               Database type
	--openai-key     API key
	--openai-model   Model name
	--openai-base-url Endpoint base URL
	--gateway-timeout Timeout in seconds

# Environment Variables

Flags fall back to environment variables:

	PORT                    → -p
	DATABASE_URL            → -d
	DATABASE_TYPE           → -t
	OPENAI_API_KEY          → --openai-key
	OPENAI_MODEL            → --openai-model
	OPENAI_BASE_URL         → --openai-base-url
	GATEWAY_TIMEOUT_SECONDS → --gateway-timeout

CLI flags take precedence over environment variables. A .env file in the
working directory is loaded by main via godotenv before parsing.

# Validation

ParseFlags returns an error if required values are missing:

  - DATABASE_URL must be provided
  - OPENAI_API_KEY must be provided
  - DATABASE_TYPE, if set, must be sqlite or postgres
*/
package cliparse
