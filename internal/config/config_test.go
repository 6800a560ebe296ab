package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "pdftotext", cfg.OCR.Provider)
	assert.Equal(t, "pdftotext", cfg.OCR.PdfToTextPath)
	assert.Equal(t, "pdftoppm", cfg.OCR.PdfToPPMPath)
	assert.Equal(t, "tesseract", cfg.OCR.TesseractPath)
	assert.Equal(t, "spa", cfg.OCR.TesseractLang)
	assert.Equal(t, 300, cfg.OCR.DPI)
	assert.Equal(t, 50, cfg.OCR.MinTextChars)
	assert.Equal(t, 0, cfg.OCR.MaxPages)
	assert.Equal(t, 120, cfg.OCR.TimeoutSecs)
	assert.Equal(t, int64(500), cfg.Arbiter.EnergySavingsFloor)
	assert.Empty(t, cfg.Arbiter.FieldsFile)
	assert.Equal(t, "data/output", cfg.Report.OutputDir)
	assert.Equal(t, "Checks", cfg.Report.SheetName)
	assert.True(t, cfg.Report.Signatures.Enabled)
	assert.InDelta(t, 150, cfg.Report.Signatures.DPI, 0.001)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 200, cfg.Server.MaxUploadMB)
	assert.Equal(t, 2, cfg.Server.MaxConcurrentRuns)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)

	require.Contains(t, cfg.Report.Signatures.Regions, "contract")
	contract := cfg.Report.Signatures.Regions["contract"]
	assert.Equal(t, -1, contract.Page)
	assert.InDelta(t, 0.65, contract.Y0, 0.001)
	assert.Contains(t, cfg.Report.Signatures.Regions, "self_declaration")
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
ocr:
  provider: native
  dpi: 200
log:
  level: debug
  format: console
server:
  port: 9090
report:
  signatures:
    enabled: false
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "native", cfg.OCR.Provider)
	assert.Equal(t, 200, cfg.OCR.DPI)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.False(t, cfg.Report.Signatures.Enabled)
	// Defaults still apply for unset values
	assert.Equal(t, "spa", cfg.OCR.TesseractLang)
	assert.Equal(t, "Checks", cfg.Report.SheetName)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("ocr: [unclosed"), 0644))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read file")
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
ocr:
  tesseract_path: /opt/tesseract
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("CHECKS_OCR_TESSERACT_PATH", "/usr/local/bin/tesseract")
	t.Setenv("CHECKS_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "/usr/local/bin/tesseract", cfg.OCR.TesseractPath)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chdirTemp(t)

	t.Setenv("CHECKS_SERVER_PORT", "3000")
	t.Setenv("CHECKS_ARBITER_ENERGY_SAVINGS_FLOOR", "750")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, int64(750), cfg.Arbiter.EnergySavingsFloor)
}

func TestLoadZeroFloor(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("arbiter:\n  energy_savings_floor: 0\n"), 0644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, int64(0), cfg.Arbiter.EnergySavingsFloor)
	assert.NoError(t, cfg.Validate("run"))
}

func TestLoadDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("CHECKS_OCR_PDFTOPPM_PATH=/env/pdftoppm\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("CHECKS_OCR_PDFTOPPM_PATH") }) //nolint:errcheck

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/env/pdftoppm", cfg.OCR.PdfToPPMPath)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.OCR.Provider = "pdftotext"
	cfg.OCR.DPI = 300
	cfg.OCR.MinTextChars = 50
	cfg.Arbiter.EnergySavingsFloor = 500
	cfg.Report.OutputDir = "data/output"
	cfg.Report.Signatures.Regions = DefaultSignatureRegions()
	cfg.Server.Port = 8080
	cfg.Server.MaxUploadMB = 200
	cfg.Server.MaxConcurrentRuns = 2
	return cfg
}

func TestValidate_Defaults(t *testing.T) {
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("run"))
	assert.NoError(t, cfg.Validate("serve"))
}

func TestValidate_Provider(t *testing.T) {
	cfg := validDefaults()
	cfg.OCR.Provider = "mistral"

	err := cfg.Validate("run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ocr.provider must be pdftotext or native")
}

func TestValidateRun_MissingOutputDir(t *testing.T) {
	cfg := validDefaults()
	cfg.Report.OutputDir = ""

	err := cfg.Validate("run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "report.output_dir is required")
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")

	// run does not care about the port
	assert.NoError(t, cfg.Validate("run"))
}

func TestValidateServe_ConcurrentRuns(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.MaxConcurrentRuns = 0

	err := cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.max_concurrent_runs must be > 0")
}

func TestValidate_Region(t *testing.T) {
	cfg := validDefaults()
	cfg.Report.Signatures.Regions["contract"] = RegionConfig{Page: -1, X0: 0.5, Y0: 0.2, X1: 0.4, Y1: 0.9}

	err := cfg.Validate("run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "report.signatures.regions.contract")
}

func TestValidate_NegativeFloor(t *testing.T) {
	cfg := validDefaults()
	cfg.Arbiter.EnergySavingsFloor = -1

	err := cfg.Validate("run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "energy_savings_floor")
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}
