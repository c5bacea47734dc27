// Package notifications delivers ingest milestones via ntfy.
//
// The default implementation publishes to the topic configured in config.toml
// and gracefully degrades to a no-op when notifications are disabled. The
// pipeline depends only on the Service interface, so alternative transports
// slot in without touching orchestration code.
package notifications
