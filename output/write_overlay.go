package output

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/landwatch/landwatch-analysis-api/internal/properties"
)

// WriteOverlayPNG saves a color-mapped overlay under the results directory.
// PNG keeps the alpha channel, which carries the no-data transparency.
func WriteOverlayPNG(img image.Image, name string) (string, error) {
	if !strings.HasSuffix(name, ".png") {
		name += ".png"
	}
	path := filepath.Join(properties.ResultsPath(), name)
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create results directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create PNG file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return "", fmt.Errorf("failed to encode PNG file: %w", err)
	}
	return path, nil
}
