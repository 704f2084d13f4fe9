package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_Save(t *testing.T) {
	root := t.TempDir()
	s, err := NewLocalStorage(root, "/media/")
	require.NoError(t, err)

	stored, err := s.Save(context.Background(), "gallery", "Photo.PNG", strings.NewReader("png-bytes"), "image/png")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(stored.Path, "gallery/"))
	assert.True(t, strings.HasSuffix(stored.Path, ".png"))
	assert.Equal(t, "/media/"+stored.Path, stored.URL)

	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(stored.Path)))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
}

func TestLocalStorage_RejectsTraversal(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), "")
	require.NoError(t, err)

	stored, err := s.Save(context.Background(), "../../etc", "x.txt", strings.NewReader("x"), "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stored.Path, "etc/"), stored.Path)
}

type fakePutter struct {
	input *s3.PutObjectInput
	body  string
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	b, _ := io.ReadAll(in.Body)
	f.body = string(b)
	return &s3.PutObjectOutput{}, nil
}

func TestS3Storage_Save(t *testing.T) {
	putter := &fakePutter{}
	s := NewS3StorageWithClient(putter, "kolo-media", "https://cdn.example.com")

	stored, err := s.Save(context.Background(), "avatars", "me.jpg", strings.NewReader("jpg"), "image/jpeg")
	require.NoError(t, err)

	assert.Equal(t, "kolo-media", aws.ToString(putter.input.Bucket))
	assert.Equal(t, stored.Path, aws.ToString(putter.input.Key))
	assert.Equal(t, "image/jpeg", aws.ToString(putter.input.ContentType))
	assert.Equal(t, "jpg", putter.body)
	assert.Equal(t, "https://cdn.example.com/"+stored.Path, stored.URL)
}
