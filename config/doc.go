// Copyright 2025 The Rivaas Authors
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

// Package config loads layered configuration and binds it to structs.
//
// Sources are read in the order they are given and merged, later sources
// overriding earlier ones key by key. Keys are case-insensitive and
// addressed with dots ("server.port").
//
//	var settings Settings
//	cfg := config.MustNew(
//	    config.WithFile("config.yaml"),
//	    config.WithEnv("BOOKS_"),
//	    config.WithBinding(&settings),
//	)
//	if err := cfg.Load(ctx); err != nil {
//	    return err
//	}
//	port := cfg.IntOr("server.port", 8080)
//
// Bound structs use the "config" tag for key names and "default" for
// values applied to fields left zero. A bound struct implementing
// Validator is validated before any state changes.
package config
