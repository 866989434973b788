package artifacts

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"admin-e2e/internal/application/port/output"
	"admin-e2e/internal/domain/entity"

	"github.com/disintegration/imaging"
)

var _ output.ArtifactStore = (*Store)(nil)

const (
	MaxWidth    = 1024
	jpegQuality = 75
)

// Normalize decodes a PNG or JPEG capture, scales it down to MaxWidth and
// re-encodes it as JPEG.
func Normalize(raw []byte) (*entity.Screenshot, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("image decode failed: %w", err)
	}

	if img.Bounds().Dx() > MaxWidth {
		img = imaging.Resize(img, MaxWidth, 0, imaging.Lanczos)
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("jpeg encode failed: %w", err)
	}

	return &entity.Screenshot{
		Data:   buf.Bytes(),
		Format: "jpeg",
		Width:  img.Bounds().Dx(),
		Height: img.Bounds().Dy(),
	}, nil
}

type Store struct {
	dir string
	now func() time.Time
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create artifacts dir: %w", err)
	}
	return &Store{dir: dir, now: time.Now}, nil
}

func (s *Store) SaveScreenshot(ctx context.Context, name string, shot *entity.Screenshot) (string, error) {
	if shot == nil || len(shot.Data) == 0 {
		return "", fmt.Errorf("empty screenshot")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ext := shot.Format
	if ext == "" || ext == "jpeg" {
		ext = "jpg"
	}
	filename := fmt.Sprintf("%s_%s.%s", s.now().Format("2006-01-02_15-04-05.000"), safeName(name), ext)
	path := filepath.Join(s.dir, filename)

	if err := os.WriteFile(path, shot.Data, 0644); err != nil {
		return "", fmt.Errorf("write screenshot: %w", err)
	}
	return path, nil
}

func safeName(s string) string {
	s = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		return '_'
	}, s)
	if s == "" {
		return "shot"
	}
	return s
}
