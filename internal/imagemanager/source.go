package imagemanager

import (
	"context"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/aleister1102/ocrdiff/internal/common"
	"github.com/aleister1102/ocrdiff/internal/httpclient"
	"github.com/rs/zerolog"
)

// Source fetches the raw bytes of an image reference.
type Source interface {
	Fetch(ctx context.Context, ref string) ([]byte, error)
}

// RemoteSource fetches images over HTTP. Relative references resolve against
// BaseURL and configured headers (typically Authorization) are sent along.
type RemoteSource struct {
	client  *httpclient.HTTPClient
	baseURL *url.URL
	headers map[string]string
	logger  zerolog.Logger
}

// NewRemoteSource creates a remote source. baseURL may be empty when every
// reference is absolute.
func NewRemoteSource(client *httpclient.HTTPClient, baseURL string, headers map[string]string, logger zerolog.Logger) (*RemoteSource, error) {
	rs := &RemoteSource{
		client:  client,
		headers: headers,
		logger:  logger.With().Str("component", "RemoteImageSource").Logger(),
	}
	if baseURL != "" {
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, common.WrapErrorf(err, "invalid image base URL %q", baseURL)
		}
		rs.baseURL = u
	}
	return rs, nil
}

func (rs *RemoteSource) resolve(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", common.WrapErrorf(err, "invalid image URL %q", ref)
	}
	if u.IsAbs() {
		return u.String(), nil
	}
	if rs.baseURL == nil {
		return "", common.NewValidationError("url", ref, "relative image URL without a base URL")
	}
	return rs.baseURL.ResolveReference(u).String(), nil
}

// Fetch downloads the referenced image.
func (rs *RemoteSource) Fetch(ctx context.Context, ref string) ([]byte, error) {
	target, err := rs.resolve(ref)
	if err != nil {
		return nil, err
	}
	result, err := rs.client.FetchContent(httpclient.FetchContentInput{
		URL:     target,
		Headers: rs.headers,
		Context: ctx,
	})
	if err != nil {
		return nil, err
	}
	return result.Content, nil
}

// EmbeddedSource reads images from a file system and never performs network
// requests or sends credentials. References may be file:// URLs, absolute
// paths or paths relative to the file system root.
type EmbeddedSource struct {
	fsys     fs.FS
	maxBytes int64
}

// NewEmbeddedSource serves images from fsys.
func NewEmbeddedSource(fsys fs.FS, maxBytes int64) *EmbeddedSource {
	return &EmbeddedSource{fsys: fsys, maxBytes: maxBytes}
}

// NewDirSource serves images from a local directory.
func NewDirSource(dir string, maxBytes int64) *EmbeddedSource {
	return NewEmbeddedSource(os.DirFS(dir), maxBytes)
}

func (es *EmbeddedSource) resolve(ref string) (string, error) {
	p := ref
	if strings.HasPrefix(p, "file://") {
		u, err := url.Parse(p)
		if err != nil {
			return "", common.WrapErrorf(err, "invalid file URL %q", ref)
		}
		p = u.Path
	} else if u, err := url.Parse(p); err == nil && u.Scheme != "" && len(u.Scheme) > 1 {
		return "", common.NewValidationError("url", ref, "embedded image source does not fetch "+u.Scheme+" URLs")
	}
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	p = strings.TrimPrefix(path.Clean("/"+p), "/")
	if !fs.ValidPath(p) || p == "." {
		return "", common.NewValidationError("url", ref, "invalid embedded image path")
	}
	return p, nil
}

// Fetch reads the referenced file.
func (es *EmbeddedSource) Fetch(ctx context.Context, ref string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := es.resolve(ref)
	if err != nil {
		return nil, err
	}
	f, err := es.fsys.Open(p)
	if err != nil {
		return nil, common.WrapErrorf(err, "failed to open embedded image %s", p)
	}
	defer f.Close()

	var r io.Reader = f
	if es.maxBytes > 0 {
		r = io.LimitReader(f, es.maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, common.WrapErrorf(err, "failed to read embedded image %s", p)
	}
	if es.maxBytes > 0 && int64(len(data)) > es.maxBytes {
		return nil, common.NewError("embedded image %s exceeds %d bytes", p, es.maxBytes)
	}
	return data, nil
}
