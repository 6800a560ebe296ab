package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	OCR     OCRConfig     `yaml:"ocr" mapstructure:"ocr"`
	Arbiter ArbiterConfig `yaml:"arbiter" mapstructure:"arbiter"`
	Report  ReportConfig  `yaml:"report" mapstructure:"report"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// OCRConfig configures document text extraction. Provider selects the text
// layer reader; image OCR always goes through pdftoppm and tesseract.
type OCRConfig struct {
	Provider      string `yaml:"provider" mapstructure:"provider"`
	PdfToTextPath string `yaml:"pdftotext_path" mapstructure:"pdftotext_path"`
	PdfToPPMPath  string `yaml:"pdftoppm_path" mapstructure:"pdftoppm_path"`
	TesseractPath string `yaml:"tesseract_path" mapstructure:"tesseract_path"`
	TesseractLang string `yaml:"tesseract_lang" mapstructure:"tesseract_lang"`
	TessdataDir   string `yaml:"tessdata_dir" mapstructure:"tessdata_dir"`
	DPI           int    `yaml:"dpi" mapstructure:"dpi"`
	MinTextChars  int    `yaml:"min_text_chars" mapstructure:"min_text_chars"`
	MaxPages      int    `yaml:"max_pages" mapstructure:"max_pages"`
	TimeoutSecs   int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// ArbiterConfig configures field reconciliation.
type ArbiterConfig struct {
	EnergySavingsFloor int64  `yaml:"energy_savings_floor" mapstructure:"energy_savings_floor"`
	FieldsFile         string `yaml:"fields_file" mapstructure:"fields_file"`
}

// ReportConfig configures the output workbook.
type ReportConfig struct {
	OutputDir  string          `yaml:"output_dir" mapstructure:"output_dir"`
	SheetName  string          `yaml:"sheet_name" mapstructure:"sheet_name"`
	Signatures SignatureConfig `yaml:"signatures" mapstructure:"signatures"`
}

// SignatureConfig configures the signature crops embedded in the report.
type SignatureConfig struct {
	Enabled bool                    `yaml:"enabled" mapstructure:"enabled"`
	DPI     float64                 `yaml:"dpi" mapstructure:"dpi"`
	Regions map[string]RegionConfig `yaml:"regions" mapstructure:"regions"`
}

// RegionConfig is a page rectangle in page-size fractions. A negative page
// counts from the end, so -1 is the last page.
type RegionConfig struct {
	Page int     `yaml:"page" mapstructure:"page"`
	X0   float64 `yaml:"x0" mapstructure:"x0"`
	Y0   float64 `yaml:"y0" mapstructure:"y0"`
	X1   float64 `yaml:"x1" mapstructure:"x1"`
	Y1   float64 `yaml:"y1" mapstructure:"y1"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port              int      `yaml:"port" mapstructure:"port"`
	MaxUploadMB       int      `yaml:"max_upload_mb" mapstructure:"max_upload_mb"`
	MaxConcurrentRuns int      `yaml:"max_concurrent_runs" mapstructure:"max_concurrent_runs"`
	CORSOrigins       []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from .env, file and environment.
func Load() (*Config, error) {
	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CHECKS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("ocr.provider", "pdftotext")
	v.SetDefault("ocr.pdftotext_path", "pdftotext")
	v.SetDefault("ocr.pdftoppm_path", "pdftoppm")
	v.SetDefault("ocr.tesseract_path", "tesseract")
	v.SetDefault("ocr.tesseract_lang", "spa")
	v.SetDefault("ocr.tessdata_dir", "")
	v.SetDefault("ocr.dpi", 300)
	v.SetDefault("ocr.min_text_chars", 50)
	v.SetDefault("ocr.max_pages", 0)
	v.SetDefault("ocr.timeout_secs", 120)
	v.SetDefault("arbiter.energy_savings_floor", 500)
	v.SetDefault("arbiter.fields_file", "")
	v.SetDefault("report.output_dir", "data/output")
	v.SetDefault("report.sheet_name", "Checks")
	v.SetDefault("report.signatures.enabled", true)
	v.SetDefault("report.signatures.dpi", 150)
	v.SetDefault("report.signatures.regions", regionDefaults())
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.max_upload_mb", 200)
	v.SetDefault("server.max_concurrent_runs", 2)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// DefaultSignatureRegions covers the signature block at the foot of the last
// page of the contract and the self-declaration.
func DefaultSignatureRegions() map[string]RegionConfig {
	return map[string]RegionConfig{
		"contract":         {Page: -1, X0: 0.05, Y0: 0.65, X1: 0.95, Y1: 0.95},
		"self_declaration": {Page: -1, X0: 0.05, Y0: 0.60, X1: 0.95, Y1: 0.95},
	}
}

func regionDefaults() map[string]any {
	out := make(map[string]any)
	for kind, r := range DefaultSignatureRegions() {
		out[kind] = map[string]any{"page": r.Page, "x0": r.X0, "y0": r.Y0, "x1": r.X1, "y1": r.Y1}
	}
	return out
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

// Validate checks the settings a command mode depends on. Mode is "run" or
// "serve".
func (c *Config) Validate(mode string) error {
	var errs []string

	switch c.OCR.Provider {
	case "pdftotext", "native":
	default:
		errs = append(errs, "ocr.provider must be pdftotext or native")
	}
	if c.OCR.DPI <= 0 {
		errs = append(errs, "ocr.dpi must be > 0")
	}
	if c.OCR.MinTextChars < 0 {
		errs = append(errs, "ocr.min_text_chars must be >= 0")
	}
	if c.Arbiter.EnergySavingsFloor < 0 {
		errs = append(errs, "arbiter.energy_savings_floor must be >= 0")
	}
	for kind, r := range c.Report.Signatures.Regions {
		if r.X0 < 0 || r.Y0 < 0 || r.X1 > 1 || r.Y1 > 1 || r.X0 >= r.X1 || r.Y0 >= r.Y1 {
			errs = append(errs, "report.signatures.regions."+kind+" must be a rectangle within [0,1]")
		}
	}

	switch mode {
	case "run":
		if c.Report.OutputDir == "" {
			errs = append(errs, "report.output_dir is required")
		}
	case "serve":
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
		if c.Server.MaxUploadMB <= 0 {
			errs = append(errs, "server.max_upload_mb must be > 0")
		}
		if c.Server.MaxConcurrentRuns <= 0 {
			errs = append(errs, "server.max_concurrent_runs must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: invalid: %s", strings.Join(errs, "; "))
	}
	return nil
}
