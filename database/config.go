/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// LoadConfig builds a Config from defaults, an optional YAML file at path and
// the environment. A .env file in the working directory is loaded first when
// present; variables already set in the process win over it.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the manager cannot connect with.
func (c *Config) Validate() error {
	switch c.Connection.Type {
	case TypeMySQL, TypeSQLite:
	case TypePostgres, "postgresql":
		switch c.Connection.Driver {
		case "", DriverPQ, DriverPGX:
		default:
			return fmt.Errorf("unsupported postgres driver: %s", c.Connection.Driver)
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.Connection.Type)
	}
	if c.Connection.Type != TypeSQLite && c.Connection.DSN == "" && c.Connection.DBName == "" {
		return errors.New("database name is required")
	}
	return nil
}
