// Package captions converts subtitle cue payloads (WebVTT files from the
// download tool, timedtext entries from the hosted APIs) into cleaned
// transcript text, with optional per-cue timestamps.
package captions
