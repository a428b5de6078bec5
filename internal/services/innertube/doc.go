// Package innertube retrieves captions straight from YouTube: it scrapes the
// caption track list out of the watch page's player payload and downloads the
// selected track's timedtext XML. No API key is required, which also makes
// this path the most exposed to IP-based blocking.
package innertube
