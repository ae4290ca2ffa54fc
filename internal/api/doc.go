// Package api implements the typed client for the hub backend's HTTP
// surface: device listing, state queries, relay commands, and chat.
//
// The client is a thin wrapper over the network boundary. It classifies
// failures into two kinds: transport errors (the hub was unreachable or
// answered abnormally) and validation errors (the hub rejected the payload
// with a user-facing message). It never retries; recovery policy lives with
// the dispatcher and reconciler in the state package.
package api
