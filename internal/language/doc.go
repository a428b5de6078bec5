// Package language provides unified language code normalization.
//
// All language-related conversions (ISO 639-1, display names, subtitle
// selection specs, caption track preference lists) are consolidated here so
// the download-tool and API strategies agree on what "--lang en" means.
package language
