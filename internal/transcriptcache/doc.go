// Package transcriptcache persists fetched transcripts in SQLite so repeat
// requests for the same video skip the acquisition pipeline entirely.
package transcriptcache
