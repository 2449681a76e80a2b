// Package publications implements the publication catalogue: metadata records,
// their attached remote files, and the lifecycle that keeps the two consistent.
package publications

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/quire/internal/media"
)

// Categories lists the accepted publication categories.
var Categories = []string{"research", "article", "book", "conference", "journal"}

// Creator is the summary of the user who created a publication.
type Creator struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// Publication is a catalogue record and the references to its stored files.
type Publication struct {
	ID                uuid.UUID  `json:"id"`
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	Authors           []string   `json:"authors"`
	PublishDate       time.Time  `json:"publishDate"`
	Publisher         string     `json:"publisher"`
	Category          string     `json:"category"`
	Tags              []string   `json:"tags"`
	FileURL           *string    `json:"fileUrl,omitempty"`
	FilePublicID      *string    `json:"filePublicId,omitempty"`
	FileSize          *int64     `json:"fileSize,omitempty"`
	FileFormat        *string    `json:"fileFormat,omitempty"`
	FilePageCount     *int       `json:"filePageCount,omitempty"`
	Thumbnail         *string    `json:"thumbnail,omitempty"`
	ThumbnailPublicID *string    `json:"thumbnailPublicId,omitempty"`
	DownloadCount     int64      `json:"downloadCount"`
	IsPublished       bool       `json:"isPublished"`
	CreatedBy         *uuid.UUID `json:"createdBy"`
	Creator           *Creator   `json:"creator,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// Slot names an attachment position on a publication.
type Slot string

const (
	SlotFile      Slot = "file"
	SlotThumbnail Slot = "thumbnail"
)

// Kinds returns the media kinds a slot accepts. Nil accepts every supported kind.
func (s Slot) Kinds() []media.Kind {
	if s == SlotThumbnail {
		return []media.Kind{media.KindImage}
	}
	return nil
}

// PublicID returns the stored file id held in slot, or nil.
func (p *Publication) PublicID(s Slot) *string {
	if s == SlotThumbnail {
		return p.ThumbnailPublicID
	}
	return p.FilePublicID
}

// Attach records f in slot.
func (p *Publication) Attach(s Slot, f *media.File) {
	switch s {
	case SlotThumbnail:
		p.Thumbnail = &f.URL
		p.ThumbnailPublicID = &f.PublicID
	default:
		size := f.Size
		format := f.Format
		p.FileURL = &f.URL
		p.FilePublicID = &f.PublicID
		p.FileSize = &size
		p.FileFormat = &format
		p.FilePageCount = f.PageCount
	}
}

// Clear removes every field of slot.
func (p *Publication) Clear(s Slot) {
	switch s {
	case SlotThumbnail:
		p.Thumbnail = nil
		p.ThumbnailPublicID = nil
	default:
		p.FileURL = nil
		p.FilePublicID = nil
		p.FileSize = nil
		p.FileFormat = nil
		p.FilePageCount = nil
	}
}

func (p Publication) clone() Publication {
	p.Authors = slices.Clone(p.Authors)
	p.Tags = slices.Clone(p.Tags)
	return p
}

// Stats aggregates catalogue-wide counters.
type Stats struct {
	Total     int   `json:"totalPublications"`
	Downloads int64 `json:"totalDownloads"`
}

// Attachments carries the optional files submitted with a create or update.
type Attachments struct {
	File      *media.Upload
	Thumbnail *media.Upload
}

func (a Attachments) each(fn func(Slot, media.Upload) error) error {
	if a.File != nil {
		if err := fn(SlotFile, *a.File); err != nil {
			return err
		}
	}
	if a.Thumbnail != nil {
		if err := fn(SlotThumbnail, *a.Thumbnail); err != nil {
			return err
		}
	}
	return nil
}

// CreateCommand carries the data needed to create a publication.
type CreateCommand struct {
	Fields
	Attachments
	CreatedBy uuid.UUID
}

// UpdateCommand carries a partial change to an existing publication.
type UpdateCommand struct {
	Fields
	Attachments
}
