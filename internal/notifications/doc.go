// Package notifications delivers pipeline events via ntfy.
//
// The default implementation publishes to the topic configured in
// config.toml and gracefully degrades to a no-op when no topic is set, so
// callers never guard their notification sites. Extend this package if you
// need alternative transports; all pipeline code depends only on the simple
// Service interface.
package notifications
