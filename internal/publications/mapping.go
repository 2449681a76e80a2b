package publications

import (
	"database/sql"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/quire/pkg/query"
	"github.com/JaimeStill/quire/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "publications", "p").
	Project("id", "ID").
	Project("title", "Title").
	Project("description", "Description").
	Project("authors", "Authors").
	Project("publish_date", "PublishDate").
	Project("publisher", "Publisher").
	Project("category", "Category").
	Project("tags", "Tags").
	Project("file_url", "FileURL").
	Project("file_public_id", "FilePublicID").
	Project("file_size", "FileSize").
	Project("file_format", "FileFormat").
	Project("file_page_count", "FilePageCount").
	Project("thumbnail", "Thumbnail").
	Project("thumbnail_public_id", "ThumbnailPublicID").
	Project("download_count", "DownloadCount").
	Project("is_published", "IsPublished").
	Project("created_by", "CreatedBy").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt").
	Join("public", "users", "u", "LEFT JOIN", "u.id = p.created_by").
	Project("name", "CreatorName").
	Project("email", "CreatorEmail")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

var slotColumns = map[Slot][]string{
	SlotFile:      {"file_url", "file_public_id", "file_size", "file_format", "file_page_count"},
	SlotThumbnail: {"thumbnail", "thumbnail_public_id"},
}

// Filters narrows a publication listing. Nil fields are ignored.
// Category matches exactly. Search is a case-insensitive literal substring
// matched against the title, the description, or any author.
type Filters struct {
	Category *string `json:"category,omitempty"`
	Search   *string `json:"search,omitempty"`
}

// Builder returns a query over published records matching f.
func (f Filters) Builder() *query.Builder {
	return query.
		NewBuilder(projection, defaultSort).
		WhereEquals("IsPublished", true).
		WhereEquals("Category", f.Category).
		WhereSearch(f.Search, query.Field("Title"), query.Field("Description"), query.Elements("Authors"))
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if c := strings.TrimSpace(values.Get("category")); c != "" {
		f.Category = &c
	}

	if s := values.Get("search"); s != "" {
		f.Search = &s
	}

	return f
}

func scanPublication(s repository.Scanner) (Publication, error) {
	var (
		p         Publication
		createdBy uuid.NullUUID
		name      sql.NullString
		email     sql.NullString
	)

	err := s.Scan(
		&p.ID,
		&p.Title,
		&p.Description,
		repository.TextArray(&p.Authors),
		&p.PublishDate,
		&p.Publisher,
		&p.Category,
		repository.TextArray(&p.Tags),
		&p.FileURL,
		&p.FilePublicID,
		&p.FileSize,
		&p.FileFormat,
		&p.FilePageCount,
		&p.Thumbnail,
		&p.ThumbnailPublicID,
		&p.DownloadCount,
		&p.IsPublished,
		&createdBy,
		&p.CreatedAt,
		&p.UpdatedAt,
		&name,
		&email,
	)
	if err != nil {
		return p, err
	}

	if createdBy.Valid {
		id := createdBy.UUID
		p.CreatedBy = &id
		if name.Valid {
			p.Creator = &Creator{ID: id, Name: name.String, Email: email.String}
		}
	}

	return p, nil
}
