// Package storage provides blob storage operations with an Azure Blob Storage implementation.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/sas"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/service"

	"github.com/JaimeStill/quire/pkg/lifecycle"
)

// Signature is a short-lived credential granting create and write access to the container.
type Signature struct {
	URL       string    `json:"url"`
	Container string    `json:"container"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// System manages blob storage operations and lifecycle coordination.
type System interface {
	// Start registers a startup hook that initializes the storage container.
	Start(lc *lifecycle.Coordinator) error
	// Upload streams data to a blob at the given key with the specified content type.
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) error
	// Delete removes the blob at the given key. Returns ErrNotFound if the blob does not exist.
	Delete(ctx context.Context, key string) error
	// URL returns the retrievable address of the blob at key.
	URL(key string) string
	// SignUpload issues a container-scoped upload credential valid for ttl.
	SignUpload(ctx context.Context, ttl time.Duration) (*Signature, error)
}

type azure struct {
	client    *azblob.Client
	container string
	public    bool
	delegated bool
	logger    *slog.Logger
}

// New creates a storage system from the given configuration.
// It creates the Azure client but does not contact the service until Start is called.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	client, delegated, err := newClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	return &azure{
		client:    client,
		container: cfg.ContainerName,
		public:    cfg.PublicAccess,
		delegated: delegated,
		logger:    logger.With("system", "storage"),
	}, nil
}

func newClient(cfg *Config) (*azblob.Client, bool, error) {
	if cfg.ConnectionString != "" {
		client, err := azblob.NewClientFromConnectionString(cfg.ConnectionString, nil)
		return client, false, err
	}

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, false, err
	}

	client, err := azblob.NewClient(cfg.ServiceURL, cred, nil)
	return client, true, err
}

func (a *azure) Start(lc *lifecycle.Coordinator) error {
	a.logger.Info("starting storage system")

	lc.OnStartup("storage", func() error {
		var opts *azblob.CreateContainerOptions
		if a.public {
			opts = &azblob.CreateContainerOptions{
				Access: to.Ptr(container.PublicAccessTypeBlob),
			}
		}

		_, err := a.client.CreateContainer(lc.Context(), a.container, opts)
		if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
			a.logger.Error("storage container initialization failed", "error", err)
			return err
		}

		a.logger.Info("storage container ready", "container", a.container)
		return nil
	})

	return nil
}

func (a *azure) Upload(ctx context.Context, key string, reader io.Reader, contentType string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	opts := &azblob.UploadStreamOptions{
		HTTPHeaders: &blob.HTTPHeaders{
			BlobContentType: &contentType,
		},
	}

	_, err := a.client.UploadStream(ctx, a.container, key, reader, opts)
	if err != nil {
		return fmt.Errorf("upload blob %s: %w", key, err)
	}

	return nil
}

func (a *azure) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	_, err := a.client.DeleteBlob(ctx, a.container, key, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete blob %s: %w", key, err)
	}

	return nil
}

func (a *azure) URL(key string) string {
	return a.containerClient().NewBlobClient(key).URL()
}

func (a *azure) SignUpload(ctx context.Context, ttl time.Duration) (*Signature, error) {
	expiry := time.Now().UTC().Add(ttl)
	perms := sas.ContainerPermissions{Create: true, Write: true}

	if !a.delegated {
		u, err := a.containerClient().GetSASURL(perms, expiry, nil)
		if err != nil {
			return nil, fmt.Errorf("sign container: %w", err)
		}
		return &Signature{URL: u, Container: a.container, ExpiresAt: expiry}, nil
	}

	start := time.Now().UTC().Add(-5 * time.Minute)
	info := service.KeyInfo{
		Start:  to.Ptr(start.Format(sas.TimeFormat)),
		Expiry: to.Ptr(expiry.Format(sas.TimeFormat)),
	}

	udc, err := a.client.ServiceClient().GetUserDelegationCredential(ctx, info, nil)
	if err != nil {
		return nil, fmt.Errorf("get user delegation credential: %w", err)
	}

	params, err := sas.BlobSignatureValues{
		Protocol:      sas.ProtocolHTTPS,
		StartTime:     start,
		ExpiryTime:    expiry,
		Permissions:   perms.String(),
		ContainerName: a.container,
	}.SignWithUserDelegation(udc)
	if err != nil {
		return nil, fmt.Errorf("sign container: %w", err)
	}

	u := a.containerClient().URL() + "?" + params.Encode()
	return &Signature{URL: u, Container: a.container, ExpiresAt: expiry}, nil
}

func (a *azure) containerClient() *container.Client {
	return a.client.ServiceClient().NewContainerClient(a.container)
}

func validateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if strings.Contains(key, "..") {
		return ErrInvalidKey
	}
	return nil
}
