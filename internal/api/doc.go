// Package api exposes the registry over HTTP. Routes live under /config2
// and answer with the shared envelope.
package api
