// Package transcriptapi implements clients for hosted transcript services.
// Two providers are supported: a JSON-only primary and a secondary that falls
// back to a timedtext XML endpoint when its JSON endpoint yields nothing.
package transcriptapi
