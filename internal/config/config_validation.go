// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "strings"

func (cfg *ClientConfig) validate() error {
	if cfg.Storage.DB.DSN == "" || strings.Contains(cfg.Storage.DB.DSN, "memory") {
		return ErrInvalidStorageConfigs
	}

	if cfg.Adapter.HTTPAddress == "" {
		return ErrInvalidAdapterConfigs
	}

	if cfg.Workers.BackoffMin > cfg.Workers.BackoffMax {
		return ErrInvalidWorkerConfigs
	}

	if cfg.App.Token == "" || cfg.App.SchemaVersion <= 0 {
		return ErrInvalidAppConfigs
	}

	return nil
}

func (cfg *ServerConfig) validate() error {
	if cfg.TokenSignKey == "" {
		return ErrInvalidAppConfigs
	}

	// issuing a token needs neither storage nor a schema
	if cfg.IssueToken != "" {
		return nil
	}

	if cfg.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.SchemaVersion <= 0 {
		return ErrInvalidAppConfigs
	}

	return nil
}
