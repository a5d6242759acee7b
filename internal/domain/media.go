package domain

import (
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
)

type MediaKind string

const (
	KindArtwork MediaKind = "artwork"
	KindVideo   MediaKind = "video"
)

func (k MediaKind) IsValid() bool {
	switch k {
	case KindArtwork, KindVideo:
		return true
	}
	return false
}

type SourceMode string

const (
	SourceUploadedFile SourceMode = "uploaded_file"
	SourceExternalLink SourceMode = "external_link"
)

func (m SourceMode) IsValid() bool {
	switch m {
	case SourceUploadedFile, SourceExternalLink:
		return true
	}
	return false
}

const (
	LinkTypeVideo = "video-link"
	LinkTypeImage = "image-link"
)

type MediaRecord struct {
	ID                   uuid.UUID  `json:"id" db:"id"`
	Kind                 MediaKind  `json:"kind" db:"kind"`
	SourceMode           SourceMode `json:"source_mode" db:"source_mode"`
	PrimaryURL           string     `json:"primary_url" db:"primary_url"`
	PrimaryStoragePath   *string    `json:"primary_storage_path" db:"primary_storage_path"`
	MimeOrLinkType       string     `json:"mime_or_link_type" db:"mime_or_link_type"`
	Title                string     `json:"title" db:"title"`
	Description          string     `json:"description" db:"description"`
	Name                 string     `json:"name" db:"name"`
	TypeDetail           *string    `json:"type_detail" db:"type_detail"`
	ThumbnailURL         *string    `json:"thumbnail_url" db:"thumbnail_url"`
	ThumbnailStoragePath *string    `json:"thumbnail_storage_path" db:"thumbnail_storage_path"`
	CreatedAt            time.Time  `json:"created_at" db:"created_at"`
}

var (
	ErrMediaNotFound   = errors.New("media record not found")
	ErrNothingToUpdate = errors.New("no editable fields supplied")
)

// CheckInvariants reports the first storage/location invariant the record breaks.
func (r *MediaRecord) CheckInvariants() error {
	if !r.Kind.IsValid() {
		return errors.New("unknown media kind")
	}
	switch r.SourceMode {
	case SourceExternalLink:
		if r.PrimaryStoragePath != nil || r.ThumbnailStoragePath != nil {
			return errors.New("external links cannot reference stored objects")
		}
	case SourceUploadedFile:
		if r.PrimaryStoragePath == nil {
			return errors.New("uploaded files require a primary storage path")
		}
	default:
		return errors.New("unknown source mode")
	}
	if r.ThumbnailStoragePath != nil {
		if r.ThumbnailURL == nil {
			return errors.New("thumbnail path without thumbnail url")
		}
		if r.Kind != KindVideo {
			return errors.New("only videos carry thumbnails")
		}
	}
	return nil
}

// StoragePaths lists the objects backing the record, primary first.
func (r *MediaRecord) StoragePaths() []string {
	var paths []string
	if r.PrimaryStoragePath != nil {
		paths = append(paths, *r.PrimaryStoragePath)
	}
	if r.ThumbnailStoragePath != nil {
		paths = append(paths, *r.ThumbnailStoragePath)
	}
	return paths
}

// CatalogFilter scopes reads and change notifications. A nil Kind matches everything.
type CatalogFilter struct {
	Kind *MediaKind
}

func FilterByKind(kind MediaKind) CatalogFilter {
	return CatalogFilter{Kind: &kind}
}

func (f CatalogFilter) Matches(kind MediaKind) bool {
	return f.Kind == nil || *f.Kind == kind
}

func (f CatalogFilter) String() string {
	if f.Kind == nil {
		return "all"
	}
	return string(*f.Kind)
}

type NullableString struct {
	Value *string
	Set   bool
}

func (n *NullableString) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	n.Value = &s
	return nil
}

func SetString(s string) NullableString {
	return NullableString{Value: &s, Set: true}
}

// UpdateMediaInput is a partial edit. Keys missing from the JSON body stay unset and
// are never written.
type UpdateMediaInput struct {
	Title       NullableString `json:"title"`
	Description NullableString `json:"description"`
	TypeDetail  NullableString `json:"type_detail"`
	Name        NullableString `json:"name"`
}

func (in UpdateMediaInput) IsEmpty() bool {
	return !in.Title.Set && !in.Description.Set && !in.TypeDetail.Set && !in.Name.Set
}

type FileUpload struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type FileUploadInput struct {
	Kind        MediaKind
	File        FileUpload
	Thumbnail   *FileUpload
	Title       string
	Description string
	Name        string
	TypeDetail  *string
}

type LinkInput struct {
	Kind        MediaKind `json:"kind"`
	URL         string    `json:"url"`
	LinkType    string    `json:"link_type,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Name        string    `json:"name"`
	TypeDetail  *string   `json:"type_detail,omitempty"`
}
