package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

type AzureStore struct {
	client    *azblob.Client
	container string
}

// NewAzure connects with a connection string when given, else with a shared key.
func NewAzure(ctx context.Context, connectionString, accountName, accountKey, container string) (*AzureStore, error) {
	var (
		client *azblob.Client
		err    error
	)
	if connectionString != "" {
		client, err = azblob.NewClientFromConnectionString(connectionString, nil)
	} else {
		var cred *azblob.SharedKeyCredential
		cred, err = azblob.NewSharedKeyCredential(accountName, accountKey)
		if err != nil {
			return nil, fmt.Errorf("azure credential: %w", err)
		}
		client, err = azblob.NewClientWithSharedKeyCredential(
			fmt.Sprintf("https://%s.blob.core.windows.net", accountName),
			cred,
			nil,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("azure client: %w", err)
	}

	if _, err := client.CreateContainer(ctx, container, nil); err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return nil, fmt.Errorf("azure container %s: %w", container, err)
	}
	return &AzureStore{client: client, container: container}, nil
}

func (s *AzureStore) Publish(ctx context.Context, key string, content []byte, contentType string) (string, error) {
	disposition := contentDisposition(key)
	_, err := s.client.UploadBuffer(ctx, s.container, key, content, &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{
			BlobContentType:        &contentType,
			BlobContentDisposition: &disposition,
		},
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(s.client.URL(), "/"), s.container, key), nil
}

func (s *AzureStore) Check(ctx context.Context) error {
	_, err := s.client.ServiceClient().NewContainerClient(s.container).GetProperties(ctx, nil)
	return err
}
