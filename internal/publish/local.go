package publish

import (
	"context"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// LocalPublisher copies rasters into a directory. URLs are built from
// BaseURL when set, otherwise they are file:// URLs.
type LocalPublisher struct {
	dir     string
	baseURL string
}

// NewLocal returns a publisher writing into dir, creating it if needed.
func NewLocal(dir, baseURL string) (*LocalPublisher, error) {
	if dir == "" {
		return nil, eris.New("publish: local dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "publish: create %s", dir)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "publish: resolve %s", dir)
	}
	return &LocalPublisher{dir: abs, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Publish copies file into the publish directory.
func (p *LocalPublisher) Publish(ctx context.Context, file string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := filepath.Base(file)
	dst := filepath.Join(p.dir, name)

	if err := copyFile(file, dst); err != nil {
		return "", eris.Wrapf(err, "publish: copy %s", name)
	}

	if p.baseURL != "" {
		return p.baseURL + "/" + url.PathEscape(name), nil
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(dst)}).String(), nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close() //nolint:errcheck

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
