// Package api serves the agent authentication REST API: key validation,
// agent presence heartbeats and API key management under /api/v1.
package api
