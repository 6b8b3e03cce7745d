package models

import "time"

// GalleryItem describes media metadata. The bytes live in object storage
// under StorageKey; clients get presigned URLs, never the key itself.
type GalleryItem struct {
	ID         string
	FamilyID   string
	UploadedBy string
	MediaType  string
	StorageKey string
	Caption    *string
	CreatedAt  time.Time
}
