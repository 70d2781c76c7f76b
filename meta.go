package atlas

import "sync"

type ValidateOpts struct {
	Concurrency int
}

type FileResult struct {
	Path  string `json:"path"`
	Type  string `json:"type,omitempty"`
	Bytes int    `json:"bytes"`
	Error string `json:"error,omitempty"`
}

type ValidateResult struct {
	sync.Mutex

	Files []FileResult
}
