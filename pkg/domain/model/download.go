package model

// DownloadTask is a single URL to file transfer
type DownloadTask struct {
	URL      string `json:"url"`
	DestPath string `json:"dest"`
}

// ExtractResult represents the result of a zip extraction
type ExtractResult struct {
	Files []string // Files written, in archive order
	Dirs  []string // Directories created for directory entries
	Size  int64    // Total uncompressed size in bytes
}
