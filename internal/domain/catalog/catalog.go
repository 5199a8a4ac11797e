// Package catalog describes the list of uploaded documents.
package catalog

import "time"

// Document is a catalog entry, created on the first successful upload of a filename.
type Document struct {
	Filename   string
	UploadedAt time.Time
}
