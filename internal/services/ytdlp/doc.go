// Package ytdlp wraps the yt-dlp subtitle download tool. It fetches caption
// files into a temporary directory and converts them to transcript text,
// optionally routed through a proxy or authenticated with browser cookies.
package ytdlp
