package media_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/quire/internal/media"
	"github.com/JaimeStill/quire/pkg/lifecycle"
	"github.com/JaimeStill/quire/pkg/storage"
)

type fakeStore struct {
	blobs     map[string][]byte
	uploadErr error
	deleteErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{blobs: make(map[string][]byte)}
}

func (f *fakeStore) Start(lc *lifecycle.Coordinator) error { return nil }

func (f *fakeStore) Upload(ctx context.Context, key string, reader io.Reader, contentType string) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	f.blobs[key] = data
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, key string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.blobs[key]; !ok {
		return storage.ErrNotFound
	}
	delete(f.blobs, key)
	return nil
}

func (f *fakeStore) URL(key string) string {
	return "https://blobs.test/publications/" + key
}

func (f *fakeStore) SignUpload(ctx context.Context, ttl time.Duration) (*storage.Signature, error) {
	return &storage.Signature{
		URL:       "https://blobs.test/publications?sig=abc",
		Container: "publications",
		ExpiresAt: time.Now().Add(ttl),
	}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newSystem(t *testing.T, store storage.System, maxSize string) media.System {
	t.Helper()
	cfg := &media.Config{MaxFileSize: maxSize}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	return media.New(store, cfg, discardLogger())
}

func TestClassify(t *testing.T) {
	tests := []struct {
		contentType string
		wantKind    media.Kind
		wantFormat  string
		wantErr     bool
	}{
		{"image/png", media.KindImage, "png", false},
		{"image/jpeg", media.KindImage, "jpg", false},
		{"image/svg+xml", media.KindImage, "svg", false},
		{"application/pdf", media.KindDocument, "pdf", false},
		{"application/msword", media.KindDocument, "doc", false},
		{"application/vnd.openxmlformats-officedocument.wordprocessingml.document", media.KindDocument, "docx", false},
		{"application/pdf; charset=binary", media.KindDocument, "pdf", false},
		{"text/plain", "", "", true},
		{"application/zip", "", "", true},
		{"", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			kind, format, err := media.Classify(tt.contentType)
			if tt.wantErr {
				if !errors.Is(err, media.ErrUnsupportedType) {
					t.Fatalf("err = %v, want ErrUnsupportedType", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if kind != tt.wantKind || format != tt.wantFormat {
				t.Errorf("got (%s, %s), want (%s, %s)", kind, format, tt.wantKind, tt.wantFormat)
			}
		})
	}
}

func TestPublicID(t *testing.T) {
	at := time.UnixMilli(1700000000000)

	tests := []struct {
		name     string
		filename string
		want     string
	}{
		{"simple", "Report.pdf", "publications/report-1700000000000-abcd1234.pdf"},
		{"spaces and symbols", "My Great  Paper (v2).pdf", "publications/my-great-paper-v2-1700000000000-abcd1234.pdf"},
		{"path stripped", "../../etc/passwd", "publications/passwd-1700000000000-abcd1234.pdf"},
		{"windows path", `C:\docs\notes.pdf`, "publications/notes-1700000000000-abcd1234.pdf"},
		{"empty", "", "publications/file-1700000000000-abcd1234.pdf"},
		{"only symbols", "***.pdf", "publications/file-1700000000000-abcd1234.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := media.PublicID("publications", tt.filename, "abcd1234", "pdf", at)
			if got != tt.want {
				t.Errorf("PublicID = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStore(t *testing.T) {
	store := newFakeStore()
	sys := newSystem(t, store, "1KB")

	file, err := sys.Store(context.Background(), media.Upload{
		Filename:    "cover.png",
		ContentType: "image/png",
		Data:        []byte("png-bytes"),
	})
	if err != nil {
		t.Fatalf("Store: %v", err)
	}

	if !strings.HasPrefix(file.PublicID, "publications/cover-") || !strings.HasSuffix(file.PublicID, ".png") {
		t.Errorf("PublicID = %q", file.PublicID)
	}
	if file.URL != store.URL(file.PublicID) {
		t.Errorf("URL = %q", file.URL)
	}
	if file.Format != "png" || file.Size != 9 || file.OriginalName != "cover.png" {
		t.Errorf("unexpected file: %+v", file)
	}
	if file.PageCount != nil {
		t.Errorf("PageCount = %d, want nil for images", *file.PageCount)
	}
	if !bytes.Equal(store.blobs[file.PublicID], []byte("png-bytes")) {
		t.Error("blob content not stored")
	}
}

func TestStoreUnreadablePDFStillStored(t *testing.T) {
	store := newFakeStore()
	sys := newSystem(t, store, "1KB")

	file, err := sys.Store(context.Background(), media.Upload{
		Filename:    "broken.pdf",
		ContentType: "application/pdf",
		Data:        []byte("not really a pdf"),
	})
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if file.PageCount != nil {
		t.Errorf("PageCount = %d, want nil", *file.PageCount)
	}
	if _, ok := store.blobs[file.PublicID]; !ok {
		t.Error("blob not stored")
	}
}

func TestStoreValidation(t *testing.T) {
	tests := []struct {
		name    string
		upload  media.Upload
		kinds   []media.Kind
		wantErr error
	}{
		{"empty", media.Upload{ContentType: "image/png"}, nil, media.ErrEmptyFile},
		{"too large", media.Upload{ContentType: "image/png", Data: make([]byte, 2048)}, nil, media.ErrFileTooLarge},
		{"unsupported", media.Upload{ContentType: "text/plain", Data: []byte("x")}, nil, media.ErrUnsupportedType},
		{"thumbnail not image", media.Upload{ContentType: "application/pdf", Data: []byte("x")}, []media.Kind{media.KindImage}, media.ErrImageRequired},
		{"document required", media.Upload{ContentType: "image/png", Data: []byte("x")}, []media.Kind{media.KindDocument}, media.ErrUnsupportedType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			sys := newSystem(t, store, "1KB")

			if err := sys.Validate(tt.upload, tt.kinds...); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate err = %v, want %v", err, tt.wantErr)
			}

			_, err := sys.Store(context.Background(), tt.upload, tt.kinds...)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Store err = %v, want %v", err, tt.wantErr)
			}
			if len(store.blobs) != 0 {
				t.Error("nothing should be uploaded on validation failure")
			}
			if got := media.MapHTTPStatus(err); got != 400 {
				t.Errorf("status = %d, want 400", got)
			}
		})
	}
}

func TestStoreUploadFailure(t *testing.T) {
	store := newFakeStore()
	store.uploadErr = errors.New("connection reset")
	sys := newSystem(t, store, "1KB")

	_, err := sys.Store(context.Background(), media.Upload{
		Filename: "a.png", ContentType: "image/png", Data: []byte("x"),
	})
	if !errors.Is(err, media.ErrStorage) {
		t.Fatalf("err = %v, want ErrStorage", err)
	}
	if got := media.MapHTTPStatus(err); got != 502 {
		t.Errorf("status = %d, want 502", got)
	}
}

func TestDestroy(t *testing.T) {
	store := newFakeStore()
	sys := newSystem(t, store, "1KB")
	store.blobs["publications/a.png"] = []byte("x")

	if err := sys.Destroy(context.Background(), "publications/a.png"); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if len(store.blobs) != 0 {
		t.Error("blob should be removed")
	}

	err := sys.Destroy(context.Background(), "publications/a.png")
	if !errors.Is(err, media.ErrNotFound) {
		t.Errorf("second Destroy err = %v, want ErrNotFound", err)
	}
}

func TestDestroyStorageFailure(t *testing.T) {
	store := newFakeStore()
	store.deleteErr = errors.New("timeout")
	sys := newSystem(t, store, "1KB")

	err := sys.Destroy(context.Background(), "publications/a.png")
	if !errors.Is(err, media.ErrStorage) {
		t.Errorf("err = %v, want ErrStorage", err)
	}
}

func TestSignature(t *testing.T) {
	sys := newSystem(t, newFakeStore(), "1KB")

	sig, err := sys.Signature(context.Background())
	if err != nil {
		t.Fatalf("Signature: %v", err)
	}
	if sig.Folder != "publications" || sig.Container != "publications" {
		t.Errorf("unexpected signature: %+v", sig)
	}
	if time.Until(sig.ExpiresAt) <= 0 {
		t.Error("signature already expired")
	}
}

func TestConfigFinalize(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := &media.Config{}
		if err := cfg.Finalize(nil); err != nil {
			t.Fatalf("finalize: %v", err)
		}
		if cfg.MaxFileSizeBytes() != 10*1024*1024 {
			t.Errorf("MaxFileSizeBytes = %d", cfg.MaxFileSizeBytes())
		}
		if cfg.SignatureTTLDuration() != 15*time.Minute {
			t.Errorf("SignatureTTLDuration = %s", cfg.SignatureTTLDuration())
		}
	})

	t.Run("env overrides", func(t *testing.T) {
		t.Setenv("TEST_MEDIA_FOLDER", "/papers/")
		cfg := &media.Config{}
		if err := cfg.Finalize(&media.Env{Folder: "TEST_MEDIA_FOLDER"}); err != nil {
			t.Fatalf("finalize: %v", err)
		}
		if cfg.Folder != "papers" {
			t.Errorf("Folder = %q, want papers", cfg.Folder)
		}
	})

	t.Run("rejects traversal", func(t *testing.T) {
		cfg := &media.Config{Folder: "../escape"}
		if err := cfg.Finalize(nil); err == nil {
			t.Error("expected error")
		}
	})
}
