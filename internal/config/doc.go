// Package config handles configuration loading for babel-gateway.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable
// expansion. The package provides validation and sensible defaults.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from BABEL_CONFIG environment variable
//  2. ./babel.yaml (current directory)
//  3. ~/.config/babel/gateway.yaml
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	orchestrate:
//	  api_key: "${ORCHESTRATE_API_KEY}"
//
// Syntax: ${VAR_NAME}
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	sessions:
//	  thread_ttl: "15m"
//	  profile_ttl: "24h"
//
// # Configuration Sections
//
// Inbound listener and channel auth:
//
//	server:
//	  http_addr: "0.0.0.0:3978"
//	channel:
//	  app_id: "${CHANNEL_APP_ID}"
//	  jwt_secret: "${CHANNEL_JWT_SECRET}"
//
// Orchestrator (required):
//
//	orchestrate:
//	  base_url: "https://api.example.com/instances/abc"
//	  agent_id: "agent-uuid"
//	  api_key: "${ORCHESTRATE_API_KEY}"
//	  timeout: "60s"
//
// Language control (optional, enabled by credentials):
//
//	generation:
//	  api_key: "${WX_APIKEY}"
//	  project_id: "${WX_PROJECT_ID}"
//	  model_id: "ibm/granite-3-8b-instruct"
//	  max_new_tokens: 2000
//	  temperature: 0.3
//
// Session stores:
//
//	sessions:
//	  backend: "sqlite"   # or "memory"
//	  path: "/var/lib/babel/sessions.db"
//	  thread_ttl: "15m"
//	  profile_ttl: "24h"
//
// Turn behavior and logging:
//
//	bot:
//	  default_locale: "es-ES"
//	  notify_on_empty_reply: false
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Usage
//
// Load and validate configuration:
//
//	cfg, err := config.Load("/etc/babel/gateway.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Parse without validation (used by babel-validate):
//
//	cfg, err := config.Parse(data)
package config
