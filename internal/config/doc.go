// Bookwise - Book Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookwise

// Package config loads and validates Bookwise configuration with Koanf v2.
//
// Sources, lowest to highest precedence:
//
//  1. Defaults from defaultConfig
//  2. A YAML file: CONFIG_PATH, ./config.yaml, or /etc/bookwise/config.yaml
//  3. Environment variables (see envMappings)
//
// Example config.yaml:
//
//	server:
//	  port: 8080
//	  environment: production
//	database:
//	  path: /data/bookwise.duckdb
//	security:
//	  auth_mode: jwt
//	  cors_origins: ["https://books.example.com"]
//	recommend:
//	  cache_ttl: 10m
//	offers:
//	  enabled: true
//	  base_url: https://offers.example.com
//	narrator:
//	  enabled: true
//	  model: gpt-4o-mini
//
// Secrets (JWT_SECRET, OFFERS_API_KEY, NARRATOR_API_KEY) should come from the
// environment rather than the file.
package config
