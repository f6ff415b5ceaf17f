package models

import (
	"path/filepath"
	"strings"
)

// MediaFile is an in-memory upload: the bytes plus the name and MIME type declared by the client.
type MediaFile struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"-"`
}

// Size returns the byte length of the file contents.
func (f MediaFile) Size() int64 {
	return int64(len(f.Data))
}

// Ext returns the lower-cased filename extension without the leading dot.
func (f MediaFile) Ext() string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(f.Name)), ".")
}

// MediaType returns the declared MIME type without parameters, lower-cased.
func (f MediaFile) MediaType() string {
	mt := f.ContentType
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = mt[:i]
	}
	return strings.ToLower(strings.TrimSpace(mt))
}
