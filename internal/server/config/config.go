// Package config handles configuration for the server component,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the AuthCore server.
//
// Fields:
//   - EndpointAddrHTTP: bind address for the public HTTP endpoint.
//   - AWSRegion: region for the DynamoDB client.
//   - AWSBaseEndpoint: endpoint override (e.g., DynamoDB Local); empty for AWS.
//   - AWSAccessKeyID / AWSSecretAccessKey: static credentials; empty to use
//     the default provider chain.
//   - UsersTable / RefreshTokensTable: DynamoDB table names.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Do not use test defaults in prod.
//   - AccessTokenValidityDuration / RefreshTokenValidityDuration: token lifetimes.
//   - BootstrapTables: create tables and enable TTL on startup (dev only).
type Config struct {
	EndpointAddrHTTP             string
	AWSRegion                    string
	AWSBaseEndpoint              string
	AWSAccessKeyID               string
	AWSSecretAccessKey           string
	UsersTable                   string
	RefreshTokensTable           string
	SecretKey                    string
	AccessTokenValidityDuration  time.Duration
	RefreshTokenValidityDuration time.Duration
	BootstrapTables              bool
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8080"
	c.AWSRegion = "ap-northeast-2"
	c.AWSBaseEndpoint = ""
	c.AWSAccessKeyID = ""
	c.AWSSecretAccessKey = ""
	c.UsersTable = "AuthCore_Users"
	c.RefreshTokensTable = "AuthCore_RefreshTokens"
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 15 * time.Minute
	c.RefreshTokenValidityDuration = 7 * 24 * time.Hour
	c.BootstrapTables = false
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
