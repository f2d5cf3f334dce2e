package filestorage

import (
	"context"
	"errors"
	"path"
	"strings"
)

// ErrInvalidKey is returned for object keys that are empty or escape the storage root.
var ErrInvalidKey = errors.New("invalid object key")

// StoredObject describes an uploaded attachment.
type StoredObject struct {
	URL      string // publicly reachable location
	PublicID string // handle used to delete the object later
}

// AttachmentStore persists admission attachments.
type AttachmentStore interface {
	// Upload stores data under key, replacing whatever was there.
	Upload(ctx context.Context, key string, data []byte, contentType string) (*StoredObject, error)

	// Delete removes the object identified by publicID. Missing objects are not an error.
	Delete(ctx context.Context, publicID string) error
}

// CleanKey normalizes a slash separated object key and rejects keys that leave the root.
func CleanKey(key string) (string, error) {
	key = strings.TrimSpace(strings.ReplaceAll(key, "\\", "/"))
	if key == "" {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean("/" + key)
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" || cleaned == "." || strings.HasPrefix(cleaned, "..") {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}

// AdmissionKey builds the deterministic key of an admission attachment:
// admissions/<enquiryNumber>/<student>-<field>. One admission exists per enquiry, so keys never
// collide between applicants.
func AdmissionKey(enquiryNumber, studentSlug, field string) string {
	return path.Join("admissions", enquiryNumber, studentSlug+"-"+field)
}
