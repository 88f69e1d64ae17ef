package upload

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"maroctour/internal/database/dbtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type fakeAvatars struct {
	urls map[string]string
	err  error
}

func (f *fakeAvatars) SetAvatar(_ context.Context, userID, url string) error {
	if f.err != nil {
		return f.err
	}
	f.urls[userID] = url
	return nil
}

func setupTestService(t *testing.T) (*Service, *fakeAvatars) {
	t.Helper()
	db := dbtest.Open(t, &Upload{})
	avatars := &fakeAvatars{urls: map[string]string{}}
	svc := NewService(NewRepository(db), avatars, t.TempDir(), "", nil)
	svc.now = func() time.Time { return time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC) }
	return svc, avatars
}

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["file"][0]
}

func TestUploadAvatar(t *testing.T) {
	svc, avatars := setupTestService(t)
	ctx := context.Background()

	u, err := svc.UploadAvatar(ctx, "user-1", fileHeader(t, "moi.jpeg", append(append([]byte{}, pngHeader...), 1, 2, 3)))
	require.NoError(t, err)

	assert.Equal(t, "image/png", u.MimeType)
	assert.True(t, strings.HasPrefix(u.FileURL, "/static/uploads/avatar/2026/03/"), u.FileURL)
	assert.True(t, strings.HasSuffix(u.FileURL, ".png"))
	assert.Equal(t, u.FileURL, avatars.urls["user-1"])
	assert.Equal(t, "moi.jpeg", u.OriginalName)

	_, err = os.Stat(filepath.Join(svc.BaseDir(), u.FilePath))
	assert.NoError(t, err)

	list, err := svc.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestUploadAvatar_Rejects(t *testing.T) {
	svc, avatars := setupTestService(t)
	ctx := context.Background()

	_, err := svc.UploadAvatar(ctx, "user-1", fileHeader(t, "notes.png", []byte("just some text")))
	assert.ErrorIs(t, err, ErrInvalidMimeType)

	_, err = svc.UploadAvatar(ctx, "user-1", fileHeader(t, "empty.png", nil))
	assert.ErrorIs(t, err, ErrEmptyFile)

	big := append(append([]byte{}, pngHeader...), make([]byte, MaxAvatarSize)...)
	_, err = svc.UploadAvatar(ctx, "user-1", fileHeader(t, "big.png", big))
	assert.ErrorIs(t, err, ErrFileTooLarge)

	assert.Empty(t, avatars.urls)
}

func TestUploadAvatar_ProfileFailureRemovesFile(t *testing.T) {
	svc, avatars := setupTestService(t)
	avatars.err = errors.New("profile store down")

	_, err := svc.UploadAvatar(context.Background(), "user-1", fileHeader(t, "a.png", pngHeader))
	require.Error(t, err)

	entries, err := os.ReadDir(filepath.Join(svc.BaseDir(), "avatar", "2026", "03"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDelete(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	u, err := svc.UploadAvatar(ctx, "user-1", fileHeader(t, "a.png", pngHeader))
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, u.ID, "user-2"), ErrNotOwner)
	require.NoError(t, svc.Delete(ctx, u.ID, "user-1"))

	_, err = os.Stat(filepath.Join(svc.BaseDir(), u.FilePath))
	assert.True(t, os.IsNotExist(err))
	assert.ErrorIs(t, svc.Delete(ctx, u.ID, "user-1"), ErrUploadNotFound)
}
