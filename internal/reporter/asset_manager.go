package reporter

import (
	"fmt"
	"html/template"
	"io/fs"

	"github.com/rs/zerolog"
)

// AssetManager reads the embedded stylesheet and script into report pages
type AssetManager struct {
	logger zerolog.Logger
	assets fs.FS
}

// NewAssetManager creates a new AssetManager over the embedded assets
func NewAssetManager(logger zerolog.Logger) *AssetManager {
	return &AssetManager{
		logger: logger,
		assets: assetsFS,
	}
}

// EmbedAssetContent reads and returns one embedded asset
func (am *AssetManager) EmbedAssetContent(path string) (string, error) {
	data, err := fs.ReadFile(am.assets, path)
	if err != nil {
		am.logger.Error().Err(err).Str("asset", path).Msg("Failed to read embedded asset")
		return "", fmt.Errorf("failed to read embedded asset '%s': %w", path, err)
	}
	return string(data), nil
}

// EmbedAssetsIntoPageData embeds CSS and JS into page data
func (am *AssetManager) EmbedAssetsIntoPageData(pageData PageDataInterface) {
	cssContent, cssErr := am.EmbedAssetContent(EmbeddedCSSPath)
	if cssErr != nil {
		am.logger.Warn().Err(cssErr).Msg("Failed to embed CSS, report styling might be affected.")
	}
	pageData.SetCustomCSS(template.CSS(cssContent))

	jsContent, jsErr := am.EmbedAssetContent(EmbeddedJSPath)
	if jsErr != nil {
		am.logger.Warn().Err(jsErr).Msg("Failed to embed JS, report filtering might be affected.")
	}
	pageData.SetReportJs(template.JS(jsContent))
}

// PageDataInterface interface for setting assets into page data
type PageDataInterface interface {
	SetCustomCSS(template.CSS)
	SetReportJs(template.JS)
}
