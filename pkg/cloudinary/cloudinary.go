package cloudinary

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/rs/zerolog"
)

// Config contains credentials required to talk to Cloudinary.
type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// Asset describes a stored media file.
type Asset struct {
	URL      string
	PublicID string
	Bytes    int
}

// Service stores course media in Cloudinary.
type Service struct {
	client *cloudinary.Cloudinary
	folder string
	logger zerolog.Logger
}

// New constructs a Cloudinary service instance.
func New(cfg Config, logger zerolog.Logger) (*Service, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("cloudinary credentials must be provided")
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &Service{
		client: cld,
		folder: cfg.Folder,
		logger: logger.With().Str("component", "cloudinary").Logger(),
	}, nil
}

// Store uploads the file into a per-kind subfolder ("image" or "audio") and returns the secure URL.
func (s *Service) Store(ctx context.Context, kind, name string, reader io.Reader) (Asset, error) {
	params := uploader.UploadParams{
		Folder:       Folder(s.folder, kind),
		PublicID:     PublicID(name, time.Now()),
		ResourceType: ResourceType(kind),
	}

	result, err := s.client.Upload.Upload(ctx, reader, params)
	if err != nil {
		return Asset{}, fmt.Errorf("failed to upload asset: %w", err)
	}
	if result.Error.Message != "" {
		return Asset{}, fmt.Errorf("cloudinary rejected asset: %s", result.Error.Message)
	}

	s.logger.Info().Str("public_id", result.PublicID).Str("kind", kind).Msg("media stored in cloudinary")
	return Asset{URL: result.SecureURL, PublicID: result.PublicID, Bytes: result.Bytes}, nil
}

// ResourceType maps a media kind onto Cloudinary's resource types. Audio lives under "video".
func ResourceType(kind string) string {
	switch kind {
	case "image":
		return "image"
	case "audio":
		return "video"
	default:
		return "auto"
	}
}

// Folder joins the configured root folder with the media kind.
func Folder(root, kind string) string {
	root = strings.Trim(root, "/")
	if kind == "" {
		return root
	}
	if root == "" {
		return kind
	}
	return root + "/" + kind
}

// PublicID derives a URL safe identifier from the original file name.
func PublicID(name string, now time.Time) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '-'
	}, base)

	base = strings.Trim(base, "-")
	if base == "" {
		base = "media"
	}

	return fmt.Sprintf("%s-%d", strings.ToLower(base), now.Unix())
}
