// Copyright 2024 The econova Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads and validates the robot's YAML configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// A DataSource for opening a posted-tweets database: either a file:
// URI for SQLite or a postgres connection string.
type DataSource string

// Robot contains all the config used by an econova robot process.
type Robot struct {
	Twitter Twitter `yaml:"twitter"`
	Storage Storage `yaml:"storage"`
	Logging Logging `yaml:"logging"`
}

// Twitter configures the session engine.
type Twitter struct {
	// The static bearer credential every request authorises with.
	BearerToken string `yaml:"bearer_token"`
	// The User-Agent sent on every request.
	// Defaults to "Mozilla/5.0".
	UserAgent string `yaml:"user_agent"`
	// Origin of the REST API, e.g. "https://api.twitter.com".
	APIBase string `yaml:"api_base"`
	// Origin of the media upload API, e.g. "https://upload.twitter.com".
	UploadBase string `yaml:"upload_base"`
	// Origin of the GraphQL web API, e.g. "https://twitter.com".
	GraphQLBase string `yaml:"graphql_base"`
	// How long an activated guest token is trusted before the client
	// re-bootstraps. Defaults to 3 hours, matching the platform's own
	// expiry.
	GuestTokenMaxAge time.Duration `yaml:"guest_token_max_age"`
	// How often and how many times finalize polls video transcoding
	// status before giving up. Zero keeps the engine defaults (5s, 60).
	MediaPollInterval time.Duration `yaml:"media_poll_interval"`
	MediaMaxPolls     int           `yaml:"media_max_polls"`

	Credentials Credentials `yaml:"credentials"`
}

// Credentials are the account secrets consumed by the login flow.
type Credentials struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Email    string `yaml:"email"`
	// Base32 shared secret for the TOTP two-factor challenge. Leave
	// empty if the account has no 2FA.
	TwoFactorSecret string `yaml:"two_factor_secret"`
}

// Storage configures the posted-tweets deduplication database.
type Storage struct {
	PostedDatabase DataSource `yaml:"posted_database"`
}

// Logging configures logrus.
type Logging struct {
	// Defaults to "info".
	Level string `yaml:"level"`
}

// Load reads and validates the config at the given path.
func Load(path string) (*Robot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return loadConfig(data)
}

func loadConfig(data []byte) (*Robot, error) {
	var cfg Robot
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.defaults()
	if err := cfg.check(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Robot) defaults() {
	if c.Twitter.UserAgent == "" {
		c.Twitter.UserAgent = "Mozilla/5.0"
	}
	if c.Twitter.APIBase == "" {
		c.Twitter.APIBase = "https://api.twitter.com"
	}
	if c.Twitter.UploadBase == "" {
		c.Twitter.UploadBase = "https://upload.twitter.com"
	}
	if c.Twitter.GraphQLBase == "" {
		c.Twitter.GraphQLBase = "https://twitter.com"
	}
	if c.Twitter.GuestTokenMaxAge == 0 {
		c.Twitter.GuestTokenMaxAge = 3 * time.Hour
	}
	if c.Storage.PostedDatabase == "" {
		c.Storage.PostedDatabase = "file:posted_tweets.db"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

func (c *Robot) check() error {
	if c.Twitter.BearerToken == "" {
		return fmt.Errorf("missing twitter.bearer_token")
	}
	return nil
}
