package rpc

import (
	"bytes"
	"fmt"
	"strconv"
)

// Size is a byte count or rate on the daemon wire. The aria2 RPC protocol
// encodes numbers as JSON strings ("totalLength":"1024"); Size accepts
// both string and numeric encodings.
type Size int64

// UnmarshalJSON decodes either a JSON string or a JSON number.
func (s *Size) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = 0
		return nil
	}
	v, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid size value %q: %w", data, err)
	}
	*s = Size(v)
	return nil
}

// VersionResult is the response of aria2.getVersion.
type VersionResult struct {
	Version         string   `json:"version"`
	EnabledFeatures []string `json:"enabledFeatures"`
}

// URIInfo describes one source URI of a download file.
type URIInfo struct {
	URI    string `json:"uri"`
	Status string `json:"status"`
}

// FileInfo describes one file of a download.
type FileInfo struct {
	Index           string    `json:"index"`
	Path            string    `json:"path"`
	Length          Size      `json:"length"`
	CompletedLength Size      `json:"completedLength"`
	URIs            []URIInfo `json:"uris"`
}

// DownloadStatus is the response of aria2.tellStatus and the element type
// of aria2.tellActive / aria2.tellStopped.
type DownloadStatus struct {
	GID             string     `json:"gid"`
	Status          string     `json:"status"`
	TotalLength     Size       `json:"totalLength"`
	CompletedLength Size       `json:"completedLength"`
	DownloadSpeed   Size       `json:"downloadSpeed"`
	ErrorCode       string     `json:"errorCode"`
	ErrorMessage    string     `json:"errorMessage"`
	Dir             string     `json:"dir"`
	Files           []FileInfo `json:"files"`
}

// Name returns a display name for the download: the first file path, or
// the first URI when the daemon has not resolved a path yet.
func (d *DownloadStatus) Name() string {
	if len(d.Files) == 0 {
		return d.GID
	}
	f := d.Files[0]
	if f.Path != "" {
		return f.Path
	}
	if len(f.URIs) > 0 {
		return f.URIs[0].URI
	}
	return d.GID
}

// Progress returns completion as a percentage in [0, 100].
func (d *DownloadStatus) Progress() float64 {
	if d.TotalLength <= 0 {
		return 0
	}
	return float64(d.CompletedLength) / float64(d.TotalLength) * 100
}

// GlobalStat is the response of aria2.getGlobalStat.
type GlobalStat struct {
	DownloadSpeed   Size `json:"downloadSpeed"`
	UploadSpeed     Size `json:"uploadSpeed"`
	NumActive       Size `json:"numActive"`
	NumWaiting      Size `json:"numWaiting"`
	NumStopped      Size `json:"numStopped"`
	NumStoppedTotal Size `json:"numStoppedTotal"`
}

// AddURIOptions are the per-download options of aria2.addUri the launcher
// exposes.
type AddURIOptions struct {
	Dir string `json:"dir,omitempty"`
	Out string `json:"out,omitempty"`
}

// Notification event methods pushed by the daemon over the WebSocket
// connection.
const (
	EventDownloadStart    = "aria2.onDownloadStart"
	EventDownloadPause    = "aria2.onDownloadPause"
	EventDownloadStop     = "aria2.onDownloadStop"
	EventDownloadComplete = "aria2.onDownloadComplete"
	EventDownloadError    = "aria2.onDownloadError"
)

// Notification is a single daemon push event.
type Notification struct {
	Event string
	GID   string
}

// notifyParams is the wire shape of notification params: a one-element
// array of {"gid": "..."}.
type notifyParams []struct {
	GID string `json:"gid"`
}
