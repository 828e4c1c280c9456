package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rohmanhakim/docs-harvester/internal/config"
	"github.com/rohmanhakim/docs-harvester/pkg/hashutil"
)

func TestWithDefault(t *testing.T) {
	cfg := config.WithDefault("inventory.yaml")

	if cfg == nil {
		t.Fatal("WithDefault() returned nil")
	}

	builtCfg, err := cfg.Build()
	if err != nil {
		t.Fatalf("should not have any error, got %v", err)
	}

	if builtCfg.InventoryPath() != "inventory.yaml" {
		t.Errorf("expected InventoryPath 'inventory.yaml', got %q", builtCfg.InventoryPath())
	}
	if builtCfg.OutputDir() != "output" {
		t.Errorf("expected OutputDir 'output', got %q", builtCfg.OutputDir())
	}
	if builtCfg.ReportsDir() != "reports" {
		t.Errorf("expected ReportsDir 'reports', got %q", builtCfg.ReportsDir())
	}
	if builtCfg.StartRow() != 0 || builtCfg.EndRow() != 0 {
		t.Errorf("expected unbounded row range, got %d-%d", builtCfg.StartRow(), builtCfg.EndRow())
	}

	// Verify run flags
	if builtCfg.Resume() {
		t.Error("expected Resume false")
	}
	if builtCfg.DryRun() {
		t.Error("expected DryRun false")
	}
	if !builtCfg.Render() {
		t.Error("expected Render true")
	}
	if builtCfg.HashAlgo() != hashutil.HashAlgoSHA256 {
		t.Errorf("expected HashAlgo sha256, got %s", builtCfg.HashAlgo())
	}

	// Verify numeric limits
	if builtCfg.Concurrency() != 4 {
		t.Errorf("expected Concurrency 4, got %d", builtCfg.Concurrency())
	}
	if builtCfg.LinkConcurrency() != 4 {
		t.Errorf("expected LinkConcurrency 4, got %d", builtCfg.LinkConcurrency())
	}
	if builtCfg.MaxLinksPerPage() != 15 {
		t.Errorf("expected MaxLinksPerPage 15, got %d", builtCfg.MaxLinksPerPage())
	}
	if builtCfg.MaxBodyBytes() != 100<<20 {
		t.Errorf("expected MaxBodyBytes 100MiB, got %d", builtCfg.MaxBodyBytes())
	}
	if builtCfg.MinTextChars() != 500 {
		t.Errorf("expected MinTextChars 500, got %d", builtCfg.MinTextChars())
	}

	// Verify durations
	if builtCfg.BaseDelay() != time.Second {
		t.Errorf("expected BaseDelay 1s, got %v", builtCfg.BaseDelay())
	}
	if builtCfg.Jitter() != 500*time.Millisecond {
		t.Errorf("expected Jitter 500ms, got %v", builtCfg.Jitter())
	}
	if builtCfg.Timeout() != 30*time.Second {
		t.Errorf("expected Timeout 30s, got %v", builtCfg.Timeout())
	}
	if builtCfg.BackoffMaxDuration() != 30*time.Second {
		t.Errorf("expected BackoffMaxDuration 30s, got %v", builtCfg.BackoffMaxDuration())
	}
	if builtCfg.MaxAttempt() != 3 {
		t.Errorf("expected MaxAttempt 3, got %d", builtCfg.MaxAttempt())
	}
	if builtCfg.BackoffMultiplier() != 2.0 {
		t.Errorf("expected BackoffMultiplier 2.0, got %f", builtCfg.BackoffMultiplier())
	}

	// Verify archive
	if builtCfg.ArchiveMaxVariants() != 3 {
		t.Errorf("expected ArchiveMaxVariants 3, got %d", builtCfg.ArchiveMaxVariants())
	}
	if builtCfg.ArchiveDirectURLs() != 3 {
		t.Errorf("expected ArchiveDirectURLs 3, got %d", builtCfg.ArchiveDirectURLs())
	}
	if hosts := builtCfg.AccessControlHosts(); len(hosts) != 1 || hosts[0] != "justice.gov" {
		t.Errorf("expected AccessControlHosts [justice.gov], got %v", hosts)
	}
	if builtCfg.ArchiveIndexURL() == "" || builtCfg.ArchiveSnapshotURL() == "" {
		t.Error("expected archive endpoints to have defaults")
	}

	// Verify backends
	if builtCfg.RecordBackend() != config.RecordBackendLocal {
		t.Errorf("expected RecordBackend local, got %q", builtCfg.RecordBackend())
	}
	if builtCfg.MirrorBackend() != config.MirrorBackendNone {
		t.Errorf("expected MirrorBackend none, got %q", builtCfg.MirrorBackend())
	}
}

func TestWithDefault_EmptyInventoryPath(t *testing.T) {
	_, err := config.WithDefault("  ").Build()

	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got: %v", err)
	}
}

func TestWithRowRange(t *testing.T) {
	cfg, err := config.WithDefault("inventory.yaml").WithRowRange(5, 10).Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.StartRow() != 5 || cfg.EndRow() != 10 {
		t.Errorf("expected rows 5-10, got %d-%d", cfg.StartRow(), cfg.EndRow())
	}
}

func TestWithRowRange_Inverted(t *testing.T) {
	_, err := config.WithDefault("inventory.yaml").WithRowRange(10, 5).Build()

	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got: %v", err)
	}
}

func TestWithRowRange_OpenEnded(t *testing.T) {
	cfg, err := config.WithDefault("inventory.yaml").WithRowRange(7, 0).Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.StartRow() != 7 || cfg.EndRow() != 0 {
		t.Errorf("expected rows 7-0, got %d-%d", cfg.StartRow(), cfg.EndRow())
	}
}

func TestWithConcurrency(t *testing.T) {
	cfg, _ := config.WithDefault("inventory.yaml").WithConcurrency(8).Build()
	if cfg.Concurrency() != 8 {
		t.Errorf("expected Concurrency 8, got %d", cfg.Concurrency())
	}

	_, err := config.WithDefault("inventory.yaml").WithConcurrency(0).Build()
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for zero concurrency, got: %v", err)
	}
}

func TestWithBaseDelay(t *testing.T) {
	delay := 3 * time.Second
	cfg, _ := config.WithDefault("inventory.yaml").WithBaseDelay(delay).Build()
	if cfg.BaseDelay() != delay {
		t.Errorf("expected BaseDelay %v, got %v", delay, cfg.BaseDelay())
	}
}

func TestWithRandomSeed(t *testing.T) {
	cfg, _ := config.WithDefault("inventory.yaml").WithRandomSeed(42).Build()
	if cfg.RandomSeed() != 42 {
		t.Errorf("expected RandomSeed 42, got %d", cfg.RandomSeed())
	}
}

func TestWithMaxAttempt(t *testing.T) {
	_, err := config.WithDefault("inventory.yaml").WithMaxAttempt(0).Build()
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for zero attempts, got: %v", err)
	}
}

func TestWithHashAlgo(t *testing.T) {
	cfg, err := config.WithDefault("inventory.yaml").WithHashAlgo("BLAKE3").Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HashAlgo() != hashutil.HashAlgoBLAKE3 {
		t.Errorf("expected blake3, got %s", cfg.HashAlgo())
	}

	_, err = config.WithDefault("inventory.yaml").WithHashAlgo("md5").Build()
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for md5, got: %v", err)
	}
}

func TestWithAccessControlHosts_ReturnsCopy(t *testing.T) {
	cfg, _ := config.WithDefault("inventory.yaml").WithAccessControlHosts([]string{"a.gov", "b.gov"}).Build()

	hosts := cfg.AccessControlHosts()
	hosts[0] = "changed"

	if cfg.AccessControlHosts()[0] != "a.gov" {
		t.Errorf("AccessControlHosts should not expose internal slice, got %v", cfg.AccessControlHosts())
	}
}

func TestWithRecordBackend(t *testing.T) {
	cfg, err := config.WithDefault("inventory.yaml").
		WithRecordBackend(config.RecordBackendFirestore, "my-project", "").
		Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.FirestoreProject() != "my-project" {
		t.Errorf("expected FirestoreProject my-project, got %q", cfg.FirestoreProject())
	}
	if cfg.FirestoreCollection() != "harvest_records" {
		t.Errorf("expected default collection to be kept, got %q", cfg.FirestoreCollection())
	}

	_, err = config.WithDefault("inventory.yaml").
		WithRecordBackend(config.RecordBackendFirestore, "", "").
		Build()
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig without project, got: %v", err)
	}

	_, err = config.WithDefault("inventory.yaml").
		WithRecordBackend("postgres", "", "").
		Build()
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for unknown backend, got: %v", err)
	}
}

func TestWithMirror(t *testing.T) {
	cfg, err := config.WithDefault("inventory.yaml").
		WithMirror(config.MirrorBackendMinio, "docs", "harvest").
		WithMinio("localhost:9000", "key", "secret", true).
		Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MirrorBucket() != "docs" || cfg.MirrorPrefix() != "harvest" {
		t.Errorf("unexpected mirror target %q/%q", cfg.MirrorBucket(), cfg.MirrorPrefix())
	}
	if cfg.MinioEndpoint() != "localhost:9000" || !cfg.MinioUseSSL() {
		t.Errorf("unexpected minio settings %q ssl=%v", cfg.MinioEndpoint(), cfg.MinioUseSSL())
	}

	_, err = config.WithDefault("inventory.yaml").
		WithMirror(config.MirrorBackendGCS, "", "").
		Build()
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig without bucket, got: %v", err)
	}

	_, err = config.WithDefault("inventory.yaml").
		WithMirror(config.MirrorBackendMinio, "docs", "").
		Build()
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig without minio endpoint, got: %v", err)
	}
}

func TestBuild(t *testing.T) {
	cfg, err := config.WithDefault("inventory.yaml").
		WithCrossRefPath("xref.yaml").
		WithOutputDir("/tmp/out").
		WithReportsDir("/tmp/reports").
		WithResume(true).
		WithDryRun(true).
		WithRender(false).
		WithMetricsFile("/tmp/metrics.prom").
		WithUserAgent("custom-agent").
		WithTimeout(5 * time.Second).
		WithMaxBodyBytes(1024).
		WithMinTextChars(100).
		Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.CrossRefPath() != "xref.yaml" {
		t.Errorf("expected CrossRefPath xref.yaml, got %q", cfg.CrossRefPath())
	}
	if cfg.OutputDir() != "/tmp/out" || cfg.ReportsDir() != "/tmp/reports" {
		t.Errorf("unexpected dirs %q %q", cfg.OutputDir(), cfg.ReportsDir())
	}
	if !cfg.Resume() || !cfg.DryRun() || cfg.Render() {
		t.Errorf("unexpected flags resume=%v dryRun=%v render=%v", cfg.Resume(), cfg.DryRun(), cfg.Render())
	}
	if cfg.MetricsFile() != "/tmp/metrics.prom" {
		t.Errorf("expected MetricsFile, got %q", cfg.MetricsFile())
	}
	if cfg.UserAgent() != "custom-agent" {
		t.Errorf("expected UserAgent custom-agent, got %q", cfg.UserAgent())
	}
	if cfg.Timeout() != 5*time.Second {
		t.Errorf("expected Timeout 5s, got %v", cfg.Timeout())
	}
	if cfg.MaxBodyBytes() != 1024 {
		t.Errorf("expected MaxBodyBytes 1024, got %d", cfg.MaxBodyBytes())
	}
	if cfg.MinTextChars() != 100 {
		t.Errorf("expected MinTextChars 100, got %d", cfg.MinTextChars())
	}
}

func TestWithConfigFile_FileDoesNotExist(t *testing.T) {
	_, err := config.WithConfigFile("/nonexistent/path/config.json")

	if err == nil {
		t.Fatal("expected error for non-existent file, got nil")
	}

	if !errors.Is(err, config.ErrFileDoesNotExist) {
		t.Errorf("expected ErrFileDoesNotExist, got: %v", err)
	}
}

func TestWithConfigFile_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.json")

	err := os.WriteFile(configPath, []byte("{invalid json content}"), 0644)
	if err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	_, err = config.WithConfigFile(configPath)

	if !errors.Is(err, config.ErrConfigParsingFail) {
		t.Errorf("expected ErrConfigParsingFail, got: %v", err)
	}
}

func TestWithConfigFile_ValidCompleteConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	err := os.WriteFile(configPath, []byte(completeConfigJson()), 0644)
	if err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	loadedConfig, err := config.WithConfigFile(configPath)
	if err != nil {
		t.Fatalf("unexpected error loading valid config: %v", err)
	}

	if loadedConfig.InventoryPath() != "data/inventory.yaml" {
		t.Errorf("unexpected InventoryPath: %q", loadedConfig.InventoryPath())
	}
	if loadedConfig.CrossRefPath() != "data/xref.yaml" {
		t.Errorf("unexpected CrossRefPath: %q", loadedConfig.CrossRefPath())
	}
	if loadedConfig.StartRow() != 2 || loadedConfig.EndRow() != 40 {
		t.Errorf("unexpected row range %d-%d", loadedConfig.StartRow(), loadedConfig.EndRow())
	}
	if !loadedConfig.Resume() {
		t.Error("expected Resume true")
	}
	if loadedConfig.Render() {
		t.Error("expected Render false")
	}
	if loadedConfig.HashAlgo() != hashutil.HashAlgoBLAKE3 {
		t.Errorf("expected blake3, got %s", loadedConfig.HashAlgo())
	}
	if loadedConfig.Concurrency() != 6 {
		t.Errorf("expected Concurrency 6, got %d", loadedConfig.Concurrency())
	}
	if loadedConfig.BaseDelay() != 2*time.Second {
		t.Errorf("expected BaseDelay 2s, got %v", loadedConfig.BaseDelay())
	}
	if loadedConfig.BackoffMultiplier() != 2.5 {
		t.Errorf("expected BackoffMultiplier 2.5, got %f", loadedConfig.BackoffMultiplier())
	}
	if hosts := loadedConfig.AccessControlHosts(); len(hosts) != 2 || hosts[1] != "usdoj.gov" {
		t.Errorf("unexpected AccessControlHosts: %v", hosts)
	}
	if loadedConfig.RecordBackend() != config.RecordBackendFirestore ||
		loadedConfig.FirestoreProject() != "harvest-prod" ||
		loadedConfig.FirestoreCollection() != "records" {
		t.Errorf("unexpected record backend %q %q %q",
			loadedConfig.RecordBackend(), loadedConfig.FirestoreProject(), loadedConfig.FirestoreCollection())
	}
	if loadedConfig.MirrorBackend() != config.MirrorBackendGCS || loadedConfig.MirrorBucket() != "harvest-mirror" {
		t.Errorf("unexpected mirror %q %q", loadedConfig.MirrorBackend(), loadedConfig.MirrorBucket())
	}
}

func TestWithConfigFile_PartialConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	partial := `{"inventoryPath": "inventory.yaml", "maxLinksPerPage": 5}`
	if err := os.WriteFile(configPath, []byte(partial), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	loadedConfig, err := config.WithConfigFile(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if loadedConfig.MaxLinksPerPage() != 5 {
		t.Errorf("expected MaxLinksPerPage 5, got %d", loadedConfig.MaxLinksPerPage())
	}
	// untouched fields keep their defaults
	if loadedConfig.Concurrency() != 4 {
		t.Errorf("expected default Concurrency 4, got %d", loadedConfig.Concurrency())
	}
	if !loadedConfig.Render() {
		t.Error("expected default Render true")
	}
	if loadedConfig.ArchiveMaxVariants() != 3 {
		t.Errorf("expected default ArchiveMaxVariants 3, got %d", loadedConfig.ArchiveMaxVariants())
	}
}

func TestWithConfigFile_EmptyJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte("{}"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	_, err := config.WithConfigFile(configPath)

	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for missing inventoryPath, got: %v", err)
	}
}

func completeConfigJson() string {
	return `
	{
    "inventoryPath": "data/inventory.yaml",
    "crossRefPath": "data/xref.yaml",
    "startRow": 2,
    "endRow": 40,
    "outputDir": "harvest",
    "reportsDir": "harvest-reports",
    "resume": true,
    "render": false,
    "hashAlgo": "blake3",
    "concurrency": 6,
    "linkConcurrency": 2,
    "maxLinksPerPage": 10,
    "baseDelay": 2000000000,
    "jitter": 1000000000,
    "randomSeed": 42,
    "maxAttempt": 5,
    "backoffInitialDuration": 200000000,
    "backoffMultiplier": 2.5,
    "backoffMaxDuration": 20000000000,
    "timeout": 10000000000,
    "userAgent": "harvest-bot",
    "maxBodyBytes": 1048576,
    "archiveMaxVariants": 2,
    "archiveDirectURLs": 2,
    "accessControlHosts": ["justice.gov", "usdoj.gov"],
    "minTextChars": 300,
    "recordBackend": "firestore",
    "firestoreProject": "harvest-prod",
    "firestoreCollection": "records",
    "mirrorBackend": "gcs",
    "mirrorBucket": "harvest-mirror",
    "mirrorPrefix": "2024"
	}
	`
}
