// Package tracker is a thin client for the project tracker's REST API.
//
// Requests authenticate with HTTP Basic credentials built from the user's
// email and API token. They are routed either directly to the tracker
// domain or through a same-origin proxy that takes the API path as an
// encoded query parameter; the choice comes from configuration.
package tracker
