package files

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"innercircle/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalResolver(t *testing.T) {
	r := LocalResolver{}
	got, err := r.Resolve(context.Background(), "alice/beach day.jpg")
	require.NoError(t, err)
	assert.Equal(t, "/assets/alice/beach%20day.jpg", got)

	got, err = r.Resolve(context.Background(), "p1/x.jpg.thumbnail.jpg")
	require.NoError(t, err)
	assert.Equal(t, "/assets/p1/x.jpg.thumbnail.jpg", got)
}

func TestS3Resolver_Presign(t *testing.T) {
	client := s3.New(s3.Options{
		Region:       "us-east-1",
		Credentials:  credentials.NewStaticCredentialsProvider("AKIDEXAMPLE", "secret", ""),
		BaseEndpoint: aws.String("http://localhost:9000"),
		UsePathStyle: true,
	})
	r := newS3Resolver(client, "media", 0)

	raw, err := r.Resolve(context.Background(), "p1/clip.mp4")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.Equal(t, "/media/p1/clip.mp4", u.Path)
	assert.Equal(t, "86400", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
}

func TestNewResolver(t *testing.T) {
	r, err := NewResolver(context.Background(), &config.Config{FilesBackend: config.FilesBackendLocal})
	require.NoError(t, err)
	assert.IsType(t, LocalResolver{}, r)

	_, err = NewResolver(context.Background(), &config.Config{FilesBackend: "ftp"})
	assert.Error(t, err)

	_, err = NewS3Resolver(context.Background(), S3Options{})
	assert.Error(t, err)

	s3r, err := NewS3Resolver(context.Background(), S3Options{
		Bucket:          "media",
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "secret",
		URLTTL:          time.Hour,
	})
	require.NoError(t, err)
	raw, err := s3r.Resolve(context.Background(), "a.jpg")
	require.NoError(t, err)
	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "3600", u.Query().Get("X-Amz-Expires"))
}

func TestLocation(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{"alice/ProfilePicture.jpg", "alice/ProfilePicture.jpg", false},
		{"beach%20day.jpg", "beach day.jpg", false},
		{"../etc/passwd", "", true},
		{"a/../../etc/passwd", "", true},
		{"%2e%2e/secret", "", true},
		{"", "", true},
		{"%zz", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := Location(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPath)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocalStore_Path(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "p1"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "p1", "x.jpg"), []byte("jpg"), 0o644))

	store := NewLocalStore(root)

	got, err := store.Path("p1/x.jpg")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "p1", "x.jpg"), got)

	_, err = store.Path("p1/missing.jpg")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Path("p1")
	assert.ErrorIs(t, err, ErrNotFound, "directories are not served")

	_, err = store.Path("../outside.jpg")
	assert.ErrorIs(t, err, ErrInvalidPath)
}
