package store

import "time"

type File struct {
	ID          int64
	Path        string
	Language    string
	Hash        string
	LastIndexed time.Time
}

type Export struct {
	ID     int64
	FileID int64
	Name   string
	Kind   string
	Line   int
}
