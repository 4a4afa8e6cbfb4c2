// Copyright (c) 2026 mostafamaarof.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package client is a small HTTP client for the survey API. A Client can be
// handed to wizard.SubmitAttempt to drive a wizard against a remote server.
package client
