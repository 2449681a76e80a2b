package media

import (
	"io"
	"mime/multipart"
	"net/http"
	"strings"
)

// FormUpload reads the first file part named key from a parsed multipart form.
// It returns nil when the part is absent.
func FormUpload(form *multipart.Form, key string) (*Upload, error) {
	headers := form.File[key]
	if len(headers) == 0 {
		return nil, nil
	}
	header := headers[0]

	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	return &Upload{
		Filename:    header.Filename,
		ContentType: detectContentType(header.Header.Get("Content-Type"), data),
		Data:        data,
	}, nil
}

func detectContentType(header string, data []byte) string {
	header = strings.TrimSpace(header)
	if header != "" && header != "application/octet-stream" {
		return header
	}
	return http.DetectContentType(data)
}
