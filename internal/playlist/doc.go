// Package playlist identifies the newest upload in the monitored playlist by
// scraping the public playlist page. It returns only the video identifier;
// metadata comes from the download step.
package playlist
