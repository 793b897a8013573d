package imagemanager

import (
	"net/url"

	"github.com/aleister1102/ocrdiff/internal/config"
	"github.com/aleister1102/ocrdiff/internal/httpclient"
	"github.com/rs/zerolog"
)

// NewFromConfig builds a manager whose source matches the configured image
// mode. Remote mode reuses client and resolves relative references against
// the origin of the API base URL.
func NewFromConfig(imgCfg config.ImageConfig, apiCfg config.APIConfig, client *httpclient.HTTPClient, logger zerolog.Logger) (*Manager, error) {
	if imgCfg.Mode == config.ImageModeEmbedded {
		dir := imgCfg.LocalDir
		if dir == "" {
			dir = "."
		}
		return New(NewDirSource(dir, int64(imgCfg.MaxImageBytes)), logger), nil
	}

	var headers map[string]string
	if imgCfg.ForwardAuth && apiCfg.AuthToken != "" {
		headers = map[string]string{"Authorization": "Bearer " + apiCfg.AuthToken}
	}
	src, err := NewRemoteSource(client, originOf(apiCfg.BaseURL), headers, logger)
	if err != nil {
		return nil, err
	}
	return New(src, logger), nil
}

func originOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host + "/"
}
