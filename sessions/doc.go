// Copyright (c) 2026 mostafamaarof.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package sessions stores wizard sessions between HTTP requests, either in
// process memory or in Redis.
package sessions
