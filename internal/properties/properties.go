package properties

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/caarlos0/env/v10"
)

// Config is the process-wide configuration, parsed from the environment
// once at startup. Nothing here is editable per request.
type Config struct {
	RootPath string `env:"ROOT_PATH" envDefault:"."`

	ProviderClientID     string `env:"PROVIDER_CLIENT_ID"`
	ProviderClientSecret string `env:"PROVIDER_CLIENT_SECRET"`
	ProviderTokenURL     string `env:"PROVIDER_TOKEN_URL"`
	ProviderProcessURL   string `env:"PROVIDER_PROCESS_URL" envDefault:"https://sh.dataspace.copernicus.eu/api/v1/process"`

	DiscordReportURL string `env:"DISCORD_REPORT_NOTIFICATION_URL"`
	DiscordErrorURL  string `env:"DISCORD_ERROR_NOTIFICATION_URL"`

	AnalysisWorkers int `env:"ANALYSIS_WORKERS" envDefault:"4"`
}

var (
	loadOnce sync.Once
	loaded   Config
	loadErr  error
)

// Load parses the environment once; later calls return the same snapshot.
func Load() (Config, error) {
	loadOnce.Do(func() {
		loadErr = env.Parse(&loaded)
	})
	return loaded, loadErr
}

// MustLoad is Load for main, where a broken environment is fatal.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid environment: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func RootPath() string {
	cfg, _ := Load()
	return cfg.RootPath
}

// RegionsPath is where the predefined region GeoJSON files live.
func RegionsPath() string {
	return filepath.Join(RootPath(), "data", "geojsons")
}

// ImagesPath is where downloaded clips are kept between runs.
func ImagesPath() string {
	return filepath.Join(RootPath(), "data", "images")
}

// ResultsPath is where overlays, CSV reports and GeoJSON results land.
func ResultsPath() string {
	return filepath.Join(RootPath(), "data", "result")
}
