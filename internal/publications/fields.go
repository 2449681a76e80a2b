package publications

import (
	"strings"
	"time"

	"github.com/JaimeStill/quire/pkg/validation"
)

// Fields is a set of metadata values. Nil members are left unchanged when
// applied, so the same type serves as a full create body and a partial patch.
type Fields struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Authors     *[]string `json:"authors,omitempty"`
	PublishDate *string   `json:"publishDate,omitempty"`
	Publisher   *string   `json:"publisher,omitempty"`
	Category    *string   `json:"category,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
	IsPublished *bool     `json:"isPublished,omitempty"`
}

// Apply merges f over p and validates the merged record.
// p is modified even when validation fails.
func (f Fields) Apply(p *Publication) error {
	if f.Title != nil {
		p.Title = strings.TrimSpace(*f.Title)
	}
	if f.Description != nil {
		p.Description = strings.TrimSpace(*f.Description)
	}
	if f.Authors != nil {
		p.Authors = compact(*f.Authors, false)
	}
	if f.PublishDate != nil {
		p.PublishDate, _ = ParseDate(*f.PublishDate)
	}
	if f.Publisher != nil {
		p.Publisher = strings.TrimSpace(*f.Publisher)
	}
	if f.Category != nil {
		p.Category = strings.TrimSpace(*f.Category)
	}
	if f.Tags != nil {
		p.Tags = compact(*f.Tags, true)
	}
	if f.IsPublished != nil {
		p.IsPublished = *f.IsPublished
	}
	if p.Authors == nil {
		p.Authors = []string{}
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}

	return Validate(p)
}

// Validate checks the metadata rules every stored publication satisfies.
func Validate(p *Publication) error {
	return validation.New().
		Required("title", p.Title, "Title is required").
		MaxLen("title", p.Title, 200, "Title cannot be more than 200 characters").
		Required("description", p.Description, "Description is required").
		MaxLen("description", p.Description, 1000, "Description cannot be more than 1000 characters").
		MinItems("authors", p.Authors, 1, "At least one author is required").
		Check(!p.PublishDate.IsZero(), "publishDate", "Valid publish date is required").
		Required("publisher", p.Publisher, "Publisher is required").
		OneOf("category", p.Category, Categories, "Invalid category").
		Err()
}

var dateLayouts = []string{time.DateOnly, time.RFC3339Nano}

// ParseDate accepts a calendar date or an RFC 3339 timestamp and returns the
// UTC calendar date it names.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// compact trims entries and drops blanks. With dedupe, repeated entries keep
// their first position only.
func compact(items []string, dedupe bool) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))

	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if dedupe {
			if _, ok := seen[item]; ok {
				continue
			}
			seen[item] = struct{}{}
		}
		out = append(out, item)
	}

	return out
}
