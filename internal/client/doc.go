// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the sync client process.
//
// It opens the embedded store, checks the table adapters against the local
// schema, and runs the sync engine with its timer and connectivity triggers
// until the process is stopped.
package client
