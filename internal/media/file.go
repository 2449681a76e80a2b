package media

import (
	"mime"
	"path"
	"strconv"
	"strings"
	"time"
)

// Kind classifies an upload by its content type.
type Kind string

const (
	KindImage    Kind = "image"
	KindDocument Kind = "document"
)

var documentFormats = map[string]string{
	"application/pdf":    "pdf",
	"application/msword": "doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": "docx",
}

// Upload is a file received from a client, buffered in memory.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// File describes a blob held by the remote file store.
type File struct {
	PublicID     string `json:"public_id"`
	URL          string `json:"url"`
	Format       string `json:"format"`
	Size         int64  `json:"size"`
	ContentType  string `json:"contentType"`
	PageCount    *int   `json:"pageCount,omitempty"`
	OriginalName string `json:"originalname"`
}

// Signature is a short-lived direct upload credential scoped to the storage folder.
type Signature struct {
	URL       string    `json:"url"`
	Container string    `json:"container"`
	Folder    string    `json:"folder"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Classify returns the kind and stored format for a content type.
// Images keep their subtype as format; documents map to pdf, doc or docx.
func Classify(contentType string) (Kind, string, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", "", ErrUnsupportedType
	}

	if subtype, ok := strings.CutPrefix(mediaType, "image/"); ok && subtype != "" {
		subtype, _, _ = strings.Cut(subtype, "+")
		if subtype == "jpeg" {
			subtype = "jpg"
		}
		return KindImage, subtype, nil
	}

	if format, ok := documentFormats[mediaType]; ok {
		return KindDocument, format, nil
	}

	return "", "", ErrUnsupportedType
}

// PublicID builds a storage key of the form folder/name-millis-suffix.format.
func PublicID(folder, filename, suffix, format string, at time.Time) string {
	millis := strconv.FormatInt(at.UnixMilli(), 10)
	return path.Join(folder, sanitize(filename)+"-"+millis+"-"+suffix+"."+format)
}

func sanitize(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	if ext := path.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}

	var sb strings.Builder
	dash := false
	for _, r := range strings.ToLower(base) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			sb.WriteRune(r)
			dash = false
		case !dash && sb.Len() > 0:
			sb.WriteByte('-')
			dash = true
		}
	}

	name := strings.TrimRight(sb.String(), "-")
	if len(name) > 64 {
		name = strings.TrimRight(name[:64], "-")
	}
	if name == "" {
		return "file"
	}
	return name
}
