package storage

import (
	"context"
	"fmt"
	"os"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// AzurePublisher uploads artifacts to an Azure Blob Storage container.
type AzurePublisher struct {
	client      *azblob.Client
	target      Target
	accountName string
}

// NewAzurePublisher creates an AzurePublisher. Only account-key
// authentication is supported.
func NewAzurePublisher(t Target, creds Credentials) (*AzurePublisher, error) {
	if creds.AzureAccountName == "" || creds.AzureAccountKey == "" {
		return nil, fmt.Errorf("Azure account name and key are required")
	}

	sharedKeyCred, err := azblob.NewSharedKeyCredential(creds.AzureAccountName, creds.AzureAccountKey)
	if err != nil {
		return nil, fmt.Errorf("create shared key credential: %w", err)
	}

	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net", creds.AzureAccountName)
	client, err := azblob.NewClientWithSharedKeyCredential(serviceURL, sharedKeyCred, nil)
	if err != nil {
		return nil, fmt.Errorf("create Azure blob client: %w", err)
	}
	return &AzurePublisher{client: client, target: t, accountName: creds.AzureAccountName}, nil
}

// Location implements Publisher.
func (p *AzurePublisher) Location(key string) string {
	return fmt.Sprintf("https://%s.blob.core.windows.net/%s/%s", p.accountName, p.target.Bucket, p.target.Key(key))
}

// Put implements Publisher.
func (p *AzurePublisher) Put(ctx context.Context, key, localPath string) error {
	f, err := os.Open(localPath) //nolint:gosec // path is caller-controlled
	if err != nil {
		return fmt.Errorf("open artifact: %w", err)
	}
	defer f.Close() //nolint:errcheck

	if _, err := p.client.UploadFile(ctx, p.target.Bucket, p.target.Key(key), f, nil); err != nil {
		return fmt.Errorf("upload %s: %w", p.Location(key), err)
	}
	return nil
}
