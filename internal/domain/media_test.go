package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestMediaRecord_CheckInvariants(t *testing.T) {
	tests := []struct {
		name    string
		record  MediaRecord
		wantErr bool
	}{
		{
			name:   "uploaded artwork",
			record: MediaRecord{Kind: KindArtwork, SourceMode: SourceUploadedFile, PrimaryStoragePath: strPtr("artworks/a.png")},
		},
		{
			name:   "external video link",
			record: MediaRecord{Kind: KindVideo, SourceMode: SourceExternalLink},
		},
		{
			name:    "external link with stored object",
			record:  MediaRecord{Kind: KindVideo, SourceMode: SourceExternalLink, PrimaryStoragePath: strPtr("videos/a.mp4")},
			wantErr: true,
		},
		{
			name:    "upload without path",
			record:  MediaRecord{Kind: KindArtwork, SourceMode: SourceUploadedFile},
			wantErr: true,
		},
		{
			name: "artwork with thumbnail",
			record: MediaRecord{
				Kind: KindArtwork, SourceMode: SourceUploadedFile,
				PrimaryStoragePath: strPtr("artworks/a.png"),
				ThumbnailURL:       strPtr("http://x/t.png"), ThumbnailStoragePath: strPtr("thumbnails/t.png"),
			},
			wantErr: true,
		},
		{
			name: "thumbnail path without url",
			record: MediaRecord{
				Kind: KindVideo, SourceMode: SourceUploadedFile,
				PrimaryStoragePath: strPtr("videos/a.mp4"), ThumbnailStoragePath: strPtr("thumbnails/t.png"),
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.record.CheckInvariants()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestUpdateMediaInput_UnmarshalTracksPresentKeys(t *testing.T) {
	var in UpdateMediaInput
	require.NoError(t, json.Unmarshal([]byte(`{"title":"Dusk","type_detail":null}`), &in))

	assert.True(t, in.Title.Set)
	assert.Equal(t, "Dusk", *in.Title.Value)
	assert.True(t, in.TypeDetail.Set)
	assert.Nil(t, in.TypeDetail.Value)
	assert.False(t, in.Description.Set)
	assert.False(t, in.Name.Set)
	assert.False(t, in.IsEmpty())

	assert.True(t, UpdateMediaInput{}.IsEmpty())
}

func TestCatalogFilter_Matches(t *testing.T) {
	assert.True(t, CatalogFilter{}.Matches(KindVideo))
	assert.True(t, FilterByKind(KindArtwork).Matches(KindArtwork))
	assert.False(t, FilterByKind(KindArtwork).Matches(KindVideo))
	assert.Equal(t, "all", CatalogFilter{}.String())
}

func TestErrorTaxonomy(t *testing.T) {
	err := &PersistError{Op: "delete", Err: ErrMediaNotFound}

	assert.True(t, IsPersistError(err))
	assert.ErrorIs(t, err, ErrMediaNotFound)
	assert.False(t, IsValidationError(err))
	assert.True(t, IsValidationError(NewValidationError("file too large: maximum size is %d MB", 10)))
}
