package ytdlp

import "context"

// Track is one downloadable rendition of a caption track as listed by yt-dlp.
type Track struct {
	URL      string `json:"url"`
	Ext      string `json:"ext"`
	Name     string `json:"name,omitempty"`
	Language string `json:"language,omitempty"`
}

// Info is the subset of yt-dlp's info dict the transcript pipeline reads.
type Info struct {
	ID                string             `json:"id"`
	Title             string             `json:"title"`
	Duration          *float64           `json:"duration"`
	Subtitles         map[string][]Track `json:"subtitles"`
	AutomaticCaptions map[string][]Track `json:"automatic_captions"`
}

// DownloadRequest describes a single subtitle download. The file is written
// to Dir as "<Stem>.<lang>.<ext>".
type DownloadRequest struct {
	Dir       string
	Stem      string
	Language  string
	Format    string
	Automatic bool
}

// Extractor is the video-extraction collaborator.
type Extractor interface {
	ExtractInfo(ctx context.Context, ref string, langs []string) (*Info, error)
	DownloadSubtitle(ctx context.Context, ref string, req DownloadRequest) error
}
