package service

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/Tomlord1122/todo-tracker/internal/auth"
	"github.com/Tomlord1122/todo-tracker/internal/domain"
	"github.com/Tomlord1122/todo-tracker/internal/logging"
	"github.com/Tomlord1122/todo-tracker/internal/repository"
	"github.com/Tomlord1122/todo-tracker/internal/schema"
)

// ProfileResponse is the wire representation of a profile.
type ProfileResponse struct {
	ID        string  `json:"id"`
	FullName  *string `json:"fullName"`
	AvatarURL *string `json:"avatarUrl"`
	CreatedAt string  `json:"createdAt"`
}

// AvatarStore persists avatar images and returns their public URL.
type AvatarStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// Avatar is an uploaded image as received from the client.
type Avatar struct {
	Filename    string
	ContentType string
	Data        []byte
}

type ProfileService interface {
	// GetOrCreate returns the caller's profile, creating it on first use
	// with the name carried by the session.
	GetOrCreate(ctx context.Context, s auth.Session) (*ProfileResponse, error)
	Update(ctx context.Context, s auth.Session, patch schema.ProfilePatch) (*ProfileResponse, error)
	UploadAvatar(ctx context.Context, s auth.Session, a Avatar) (*ProfileResponse, error)
}

type profileService struct {
	profiles repository.ProfileRepository
	users    repository.UserRepository
	store    AvatarStore
	maxBytes int64
	log      logging.Logger
	now      func() time.Time
}

// NewProfileService wires the profile use cases. store may be nil, in
// which case avatar uploads fail with ErrAvatarsDisabled.
func NewProfileService(
	profiles repository.ProfileRepository,
	users repository.UserRepository,
	store AvatarStore,
	maxAvatarBytes int64,
	log logging.Logger,
) ProfileService {
	return &profileService{
		profiles: profiles,
		users:    users,
		store:    store,
		maxBytes: maxAvatarBytes,
		log:      log,
		now:      time.Now,
	}
}

func (s *profileService) GetOrCreate(ctx context.Context, sess auth.Session) (*ProfileResponse, error) {
	p, err := s.ensure(ctx, sess)
	if err != nil {
		return nil, err
	}
	resp := toProfileResponse(*p)
	return &resp, nil
}

func (s *profileService) Update(ctx context.Context, sess auth.Session, patch schema.ProfilePatch) (*ProfileResponse, error) {
	if _, err := s.ensure(ctx, sess); err != nil {
		return nil, err
	}
	p, err := s.profiles.Update(ctx, sess.UserID, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	resp := toProfileResponse(*p)
	return &resp, nil
}

// UploadAvatar stores the image under "<userId>/<unix millis>.<ext>" and
// points the profile at it.
func (s *profileService) UploadAvatar(ctx context.Context, sess auth.Session, a Avatar) (*ProfileResponse, error) {
	if s.store == nil {
		return nil, ErrAvatarsDisabled
	}
	if s.maxBytes > 0 && int64(len(a.Data)) > s.maxBytes {
		return nil, ErrAvatarTooLarge
	}

	contentType := a.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(a.Data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, ErrAvatarType
	}

	key := fmt.Sprintf("%s/%d%s", sess.UserID, s.now().UnixMilli(), avatarExt(a.Filename, contentType))
	url, err := s.store.Put(ctx, key, contentType, a.Data)
	if err != nil {
		return nil, fmt.Errorf("upload avatar: %w", err)
	}
	s.log.Info(ctx, "avatar uploaded", "user_id", sess.UserID, "key", key, "bytes", len(a.Data))

	return s.Update(ctx, sess, schema.ProfilePatch{AvatarURL: &url})
}

func (s *profileService) ensure(ctx context.Context, sess auth.Session) (*domain.Profile, error) {
	p, err := s.profiles.Get(ctx, sess.UserID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	if err := s.users.Ensure(ctx, sess.UserID); err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	var fullName *string
	if name := sess.DisplayName(); name != "" {
		fullName = &name
	}
	p, err = s.profiles.Create(ctx, sess.UserID, fullName)
	if err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	s.log.Info(ctx, "profile created", "user_id", sess.UserID)
	return p, nil
}

// preferredExt names the extension used when the upload's own does not
// match its image type.
var preferredExt = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// avatarExt picks an extension registered for contentType. The uploaded
// file's extension is kept only when it is one of those.
func avatarExt(filename, contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	exts, _ := mime.ExtensionsByType(mediaType)
	if ext := strings.ToLower(path.Ext(filename)); slices.Contains(exts, ext) {
		return ext
	}
	if ext, ok := preferredExt[mediaType]; ok {
		return ext
	}
	if len(exts) > 0 {
		return exts[0]
	}
	return ""
}

func toProfileResponse(p domain.Profile) ProfileResponse {
	return ProfileResponse{
		ID:        p.ID,
		FullName:  p.FullName,
		AvatarURL: p.AvatarURL,
		CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}
