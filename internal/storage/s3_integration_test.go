//go:build integration

package storage

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/portalworks/docportal/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newArchiveClient(ctx context.Context, t *testing.T) (*Client, func()) {
	t.Helper()
	rc := testutil.NewRustFSContainer(ctx, t)

	client, err := New(ctx, Config{
		Endpoint:  rc.Endpoint(),
		Region:    "us-east-1",
		AccessKey: testutil.S3AccessKey,
		SecretKey: testutil.S3SecretKey,
		Bucket:    "portal-archive-test",
		PathStyle: true,
	})
	require.NoError(t, err)
	require.NoError(t, client.EnsureBucket(ctx))

	return client, func() { rc.Terminate(ctx) }
}

func TestClient_UploadAndPresignDownload(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newArchiveClient(ctx, t)
	defer cleanup()

	key := "ingestion-20260101_000000-abcd1234/notes.txt"
	require.NoError(t, client.Upload(ctx, key, "text/plain", strings.NewReader("archived body")))

	url, err := client.PresignDownload(ctx, key)
	require.NoError(t, err)

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "archived body", string(body))
}

func TestClient_Delete(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newArchiveClient(ctx, t)
	defer cleanup()

	key := "session/to-delete.txt"
	require.NoError(t, client.Upload(ctx, key, "text/plain", strings.NewReader("x")))
	require.NoError(t, client.Delete(ctx, key))

	url, err := client.PresignDownload(ctx, key)
	require.NoError(t, err)
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestClient_EnsureBucketIdempotent(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newArchiveClient(ctx, t)
	defer cleanup()

	// Second call hits the HeadBucket fast path.
	assert.NoError(t, client.EnsureBucket(ctx))
}
