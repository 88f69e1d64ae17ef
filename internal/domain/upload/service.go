package upload

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	MaxAvatarSize  = 5 * 1024 * 1024 // 5 MB
	UploadsBaseDir = "./uploads"
	StaticURLBase  = "/static/uploads"
)

// AllowedMimeTypes are the sniffed types accepted for avatars.
var AllowedMimeTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// AvatarSetter stores the public avatar URL on the user's profile.
type AvatarSetter interface {
	SetAvatar(ctx context.Context, userID, url string) error
}

// Service saves files to local disk and records them in the database.
type Service struct {
	repo       *Repository
	avatars    AvatarSetter
	baseDir    string
	staticBase string
	now        func() time.Time
	loggerf    func(format string, args ...interface{})
}

func NewService(repo *Repository, avatars AvatarSetter, baseDir, staticBase string, loggerf func(format string, args ...interface{})) *Service {
	if baseDir == "" {
		baseDir = UploadsBaseDir
	}
	if staticBase == "" {
		staticBase = StaticURLBase
	}
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{repo: repo, avatars: avatars, baseDir: baseDir, staticBase: staticBase, now: time.Now, loggerf: loggerf}
}

// BaseDir is the directory served under StaticBase.
func (s *Service) BaseDir() string    { return s.baseDir }
func (s *Service) StaticBase() string { return s.staticBase }

// UploadAvatar stores an image and points the user's profile at it.
func (s *Service) UploadAvatar(ctx context.Context, userID string, fh *multipart.FileHeader) (*Upload, error) {
	u, err := s.save(ctx, userID, PurposeAvatar, fh)
	if err != nil {
		return nil, err
	}
	if err := s.avatars.SetAvatar(ctx, userID, u.FileURL); err != nil {
		s.remove(u)
		return nil, err
	}
	s.loggerf("level=info msg=\"avatar updated\" user_id=%s upload_id=%s size=%d", userID, u.ID, u.Size)
	return u, nil
}

func (s *Service) save(ctx context.Context, userID, purpose string, fh *multipart.FileHeader) (*Upload, error) {
	if fh.Size == 0 {
		return nil, ErrEmptyFile
	}
	if fh.Size > MaxAvatarSize {
		return nil, ErrFileTooLarge
	}

	file, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	// sniff from the first 512 bytes, the extension is not trusted
	buf := make([]byte, 512)
	n, _ := file.Read(buf)
	mimeType := strings.Split(http.DetectContentType(buf[:n]), ";")[0]
	ext, ok := AllowedMimeTypes[mimeType]
	if !ok {
		return nil, ErrInvalidMimeType
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind upload: %w", err)
	}

	now := s.now()
	relDir := fmt.Sprintf("%s/%d/%02d", purpose, now.Year(), now.Month())
	if err := os.MkdirAll(filepath.Join(s.baseDir, relDir), 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	id := uuid.NewString()
	relPath := filepath.ToSlash(filepath.Join(relDir, id+ext))
	absPath := filepath.Join(s.baseDir, relPath)
	dst, err := os.Create(absPath)
	if err != nil {
		return nil, fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(dst, file); err != nil {
		_ = dst.Close()
		_ = os.Remove(absPath)
		return nil, fmt.Errorf("write file: %w", err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(absPath)
		return nil, fmt.Errorf("write file: %w", err)
	}

	u := &Upload{
		ID:           id,
		UserID:       userID,
		Purpose:      purpose,
		OriginalName: filepath.Base(fh.Filename),
		FilePath:     relPath,
		FileURL:      s.staticBase + "/" + relPath,
		MimeType:     mimeType,
		Size:         fh.Size,
		CreatedAt:    now,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		_ = os.Remove(absPath)
		return nil, fmt.Errorf("save upload record: %w", err)
	}
	return u, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]Upload, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Delete removes the file and its record. Only the owner may delete.
func (s *Service) Delete(ctx context.Context, id, userID string) error {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if u.UserID != userID {
		return ErrNotOwner
	}
	s.remove(u)
	return s.repo.Delete(ctx, id)
}

func (s *Service) remove(u *Upload) {
	// the file may already be gone
	_ = os.Remove(filepath.Join(s.baseDir, filepath.FromSlash(u.FilePath)))
}
