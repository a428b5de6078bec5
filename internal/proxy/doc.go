// Package proxy loads rotating proxy pools and pinned proxy configuration
// from local JSON files and checks endpoint health.
package proxy
