// Bookwise - Book Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookwise

package config

import (
	"fmt"
	"net/url"
	"strings"
)

// minJWTSecretLength is the HS256 key length floor.
const minJWTSecretLength = 32

var (
	validLogLevels = map[string]bool{
		"trace": true, "debug": true, "info": true, "warn": true, "error": true,
	}
	validLogFormats = map[string]bool{
		"json": true, "console": true,
	}
	validEnvironments = map[string]bool{
		"development": true, "staging": true, "production": true,
	}
)

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateRecommend(); err != nil {
		return err
	}
	if err := c.validateOffers(); err != nil {
		return err
	}
	return c.validateNarrator()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if !validEnvironments[c.Server.Environment] {
		return fmt.Errorf("ENVIRONMENT must be one of: development, staging, production")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	switch c.Security.AuthMode {
	case "jwt":
		if len(c.Security.JWTSecret) < minJWTSecretLength {
			return fmt.Errorf("JWT_SECRET must be at least %d characters when AUTH_MODE=jwt", minJWTSecretLength)
		}
	case "none":
		if c.IsProduction() {
			return fmt.Errorf("AUTH_MODE=none is not allowed when ENVIRONMENT=production")
		}
	default:
		return fmt.Errorf("AUTH_MODE must be one of: jwt, none")
	}

	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs < 1 {
			return fmt.Errorf("RATE_LIMIT_REQUESTS must be positive")
		}
		if c.Security.RateLimitWindow <= 0 {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
		}
	}

	if c.IsProduction() {
		for _, origin := range c.Security.CORSOrigins {
			if origin == "*" {
				return fmt.Errorf("CORS_ORIGINS must not contain '*' when ENVIRONMENT=production")
			}
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

func (c *Config) validateRecommend() error {
	if err := c.Recommend.EngineConfig().Validate(); err != nil {
		return fmt.Errorf("recommend: %w", err)
	}
	if c.Recommend.CacheEnabled && c.Recommend.CacheCleanupInterval <= 0 {
		return fmt.Errorf("RECOMMEND_CACHE_CLEANUP_INTERVAL must be positive when the cache is enabled")
	}
	return nil
}

func (c *Config) validateOffers() error {
	if !c.Offers.Enabled {
		return nil
	}
	if err := validateHTTPURL(c.Offers.BaseURL, "OFFERS_BASE_URL"); err != nil {
		return err
	}
	if c.Offers.Timeout <= 0 {
		return fmt.Errorf("OFFERS_TIMEOUT must be positive")
	}
	if c.Offers.RateLimit <= 0 || c.Offers.Burst < 1 {
		return fmt.Errorf("OFFERS_RATE_LIMIT and OFFERS_BURST must be positive")
	}
	if c.Offers.CacheTTL <= 0 {
		return fmt.Errorf("OFFERS_CACHE_TTL must be positive")
	}
	return nil
}

func (c *Config) validateNarrator() error {
	if !c.Narrator.Enabled {
		return nil
	}
	if c.Narrator.BaseURL == "" {
		return fmt.Errorf("NARRATOR_BASE_URL is required when NARRATOR_ENABLED=true")
	}
	if _, err := url.ParseRequestURI(c.Narrator.BaseURL); err != nil {
		return fmt.Errorf("NARRATOR_BASE_URL is invalid: %w", err)
	}
	if c.Narrator.APIKey == "" {
		return fmt.Errorf("NARRATOR_API_KEY is required when NARRATOR_ENABLED=true")
	}
	if c.Narrator.Model == "" {
		return fmt.Errorf("NARRATOR_MODEL is required when NARRATOR_ENABLED=true")
	}
	if c.Narrator.Timeout <= 0 {
		return fmt.Errorf("NARRATOR_TIMEOUT must be positive")
	}
	if c.Narrator.Temperature < 0 || c.Narrator.Temperature > 2 {
		return fmt.Errorf("NARRATOR_TEMPERATURE must be between 0 and 2")
	}
	return nil
}

// validateHTTPURL checks for an http(s) base URL without a query string.
func validateHTTPURL(rawURL, fieldName string) error {
	if rawURL == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %s", fieldName, parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s host is required", fieldName)
	}
	if parsed.RawQuery != "" {
		return fmt.Errorf("%s should not contain query parameters, remove: ?%s", fieldName, parsed.RawQuery)
	}
	return nil
}
