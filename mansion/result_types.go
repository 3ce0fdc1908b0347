package mansion

// FileExtractedResult is sent as json so the consumer can know what we extracted
//
// For command `extract`
type FileExtractedResult struct {
	Type string `json:"type"`
	Path string `json:"path"`
}

// EntryResult is sent for each entry of a listed archive
//
// For command `ls`
type EntryResult struct {
	Type string `json:"type"`
	Path string `json:"path"`
	Size int64  `json:"size,omitempty"`
	Mode string `json:"mode,omitempty"`
}

// ArchiveSummaryResult sums up an archive's contents
//
// For command `ls`
type ArchiveSummaryResult struct {
	Type             string `json:"type"`
	NumFiles         int    `json:"numFiles"`
	NumDirs          int    `json:"numDirs"`
	UncompressedSize int64  `json:"uncompressedSize"`
}
