// Package download fetches a single video into the staging directory using
// yt-dlp and extracts the metadata the rest of the pipeline needs: title,
// description, duration, and the on-disk path of the raw media.
package download
