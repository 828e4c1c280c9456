package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rohmanhakim/docs-harvester/internal/build"
	"github.com/rohmanhakim/docs-harvester/pkg/hashutil"
)

const (
	RecordBackendLocal     = "local"
	RecordBackendFirestore = "firestore"

	MirrorBackendNone  = "none"
	MirrorBackendGCS   = "gcs"
	MirrorBackendMinio = "minio"
)

type Config struct {
	//===============
	// Input
	//===============
	// YAML inventory of references to resolve
	inventoryPath string
	// Optional YAML cross-reference catalog of known portal URLs
	crossRefPath string
	// 1-indexed inclusive row range. Zero means unbounded on that side.
	startRow int
	endRow   int

	//===============
	// Output
	//===============
	// Root directory; every reference gets <outputDir>/<refID>/
	outputDir string
	// Where run summaries and validation reports are written
	reportsDir string
	// Skip references whose stored record is already success
	resume bool
	// Whether the program will simulates what it would do without
	// actually performing any irreversible or side-effecting actions
	dryRun bool
	// Render accepted HTML pages to Markdown and print HTML
	render bool
	// Hash algorithm for artifact integrity hashes
	hashAlgo hashutil.HashAlgo
	// Optional Prometheus text-file path for run metrics
	metricsFile string

	//===============
	// Politeness
	//===============
	// Number of references resolved in parallel
	concurrency int
	// Sibling document links fetched in parallel for one page
	linkConcurrency int
	// Document links followed per page at most
	maxLinksPerPage int
	// Minimum, fixed waiting time you enforce between two HTTP requests to the same host.
	baseDelay time.Duration
	// Randomized variation added on top of the base delay.
	jitter time.Duration
	// Controls the random number generator
	randomSeed int64
	// maximum attempt during retry
	maxAttempt int
	// initial delay for backoff
	backoffInitialDuration time.Duration
	// multiplier during exponential backoff
	backoffMultiplier float64
	// capped maximum delay for backoff to stop exponential multiplication
	backoffMaxDuration time.Duration

	//===============
	// Fetch
	//===============
	// Maximum time of a single fetch request
	timeout time.Duration
	// User agent that will be used in the request header. In raw string
	userAgent string
	// Responses larger than this are refused
	maxBodyBytes int64

	//===============
	// Archive
	//===============
	archiveIndexURL    string
	archiveSnapshotURL string
	// Variants tried per reference
	archiveMaxVariants int
	// Direct URLs that seed the variants
	archiveDirectURLs int
	// Hosts whose appearance after a redirect means an access-control wall
	accessControlHosts []string

	//===============
	// Validation
	//===============
	minTextChars int

	//===============
	// Backends
	//===============
	recordBackend       string
	firestoreProject    string
	firestoreCollection string
	mirrorBackend       string
	mirrorBucket        string
	mirrorPrefix        string
	minioEndpoint       string
	minioAccessKey      string
	minioSecretKey      string
	minioUseSSL         bool
}

type configDTO struct {
	InventoryPath          string        `json:"inventoryPath"`
	CrossRefPath           string        `json:"crossRefPath,omitempty"`
	StartRow               int           `json:"startRow,omitempty"`
	EndRow                 int           `json:"endRow,omitempty"`
	OutputDir              string        `json:"outputDir,omitempty"`
	ReportsDir             string        `json:"reportsDir,omitempty"`
	Resume                 bool          `json:"resume,omitempty"`
	DryRun                 bool          `json:"dryRun,omitempty"`
	Render                 *bool         `json:"render,omitempty"`
	HashAlgo               string        `json:"hashAlgo,omitempty"`
	MetricsFile            string        `json:"metricsFile,omitempty"`
	Concurrency            int           `json:"concurrency,omitempty"`
	LinkConcurrency        int           `json:"linkConcurrency,omitempty"`
	MaxLinksPerPage        int           `json:"maxLinksPerPage,omitempty"`
	BaseDelay              time.Duration `json:"baseDelay,omitempty"`
	Jitter                 time.Duration `json:"jitter,omitempty"`
	RandomSeed             int64         `json:"randomSeed,omitempty"`
	MaxAttempt             int           `json:"maxAttempt,omitempty"`
	BackoffInitialDuration time.Duration `json:"backoffInitialDuration,omitempty"`
	BackoffMultiplier      float64       `json:"backoffMultiplier,omitempty"`
	BackoffMaxDuration     time.Duration `json:"backoffMaxDuration,omitempty"`
	Timeout                time.Duration `json:"timeout,omitempty"`
	UserAgent              string        `json:"userAgent,omitempty"`
	MaxBodyBytes           int64         `json:"maxBodyBytes,omitempty"`
	ArchiveIndexURL        string        `json:"archiveIndexURL,omitempty"`
	ArchiveSnapshotURL     string        `json:"archiveSnapshotURL,omitempty"`
	ArchiveMaxVariants     int           `json:"archiveMaxVariants,omitempty"`
	ArchiveDirectURLs      int           `json:"archiveDirectURLs,omitempty"`
	AccessControlHosts     []string      `json:"accessControlHosts,omitempty"`
	MinTextChars           int           `json:"minTextChars,omitempty"`
	RecordBackend          string        `json:"recordBackend,omitempty"`
	FirestoreProject       string        `json:"firestoreProject,omitempty"`
	FirestoreCollection    string        `json:"firestoreCollection,omitempty"`
	MirrorBackend          string        `json:"mirrorBackend,omitempty"`
	MirrorBucket           string        `json:"mirrorBucket,omitempty"`
	MirrorPrefix           string        `json:"mirrorPrefix,omitempty"`
	MinioEndpoint          string        `json:"minioEndpoint,omitempty"`
	MinioAccessKey         string        `json:"minioAccessKey,omitempty"`
	MinioSecretKey         string        `json:"minioSecretKey,omitempty"`
	MinioUseSSL            bool          `json:"minioUseSSL,omitempty"`
}

func newConfigFromDTO(dto configDTO) (Config, error) {
	cfg := WithDefault(dto.InventoryPath)

	// For other fields, only override if non-zero value is provided
	if dto.CrossRefPath != "" {
		cfg.crossRefPath = dto.CrossRefPath
	}
	if dto.StartRow != 0 {
		cfg.startRow = dto.StartRow
	}
	if dto.EndRow != 0 {
		cfg.endRow = dto.EndRow
	}
	if dto.OutputDir != "" {
		cfg.outputDir = dto.OutputDir
	}
	if dto.ReportsDir != "" {
		cfg.reportsDir = dto.ReportsDir
	}
	// booleans are taken as-is; false is their default
	cfg.resume = dto.Resume
	cfg.dryRun = dto.DryRun
	cfg.minioUseSSL = dto.MinioUseSSL
	// render defaults to true, so only an explicit value overrides it
	if dto.Render != nil {
		cfg.render = *dto.Render
	}
	if dto.HashAlgo != "" {
		cfg.hashAlgo = hashutil.HashAlgo(strings.ToLower(dto.HashAlgo))
	}
	if dto.MetricsFile != "" {
		cfg.metricsFile = dto.MetricsFile
	}
	if dto.Concurrency != 0 {
		cfg.concurrency = dto.Concurrency
	}
	if dto.LinkConcurrency != 0 {
		cfg.linkConcurrency = dto.LinkConcurrency
	}
	if dto.MaxLinksPerPage != 0 {
		cfg.maxLinksPerPage = dto.MaxLinksPerPage
	}
	if dto.BaseDelay != 0 {
		cfg.baseDelay = dto.BaseDelay
	}
	if dto.Jitter != 0 {
		cfg.jitter = dto.Jitter
	}
	if dto.RandomSeed != 0 {
		cfg.randomSeed = dto.RandomSeed
	}
	if dto.MaxAttempt != 0 {
		cfg.maxAttempt = dto.MaxAttempt
	}
	if dto.BackoffInitialDuration != 0 {
		cfg.backoffInitialDuration = dto.BackoffInitialDuration
	}
	if dto.BackoffMultiplier != 0 {
		cfg.backoffMultiplier = dto.BackoffMultiplier
	}
	if dto.BackoffMaxDuration != 0 {
		cfg.backoffMaxDuration = dto.BackoffMaxDuration
	}
	if dto.Timeout != 0 {
		cfg.timeout = dto.Timeout
	}
	if dto.UserAgent != "" {
		cfg.userAgent = dto.UserAgent
	}
	if dto.MaxBodyBytes != 0 {
		cfg.maxBodyBytes = dto.MaxBodyBytes
	}
	if dto.ArchiveIndexURL != "" {
		cfg.archiveIndexURL = dto.ArchiveIndexURL
	}
	if dto.ArchiveSnapshotURL != "" {
		cfg.archiveSnapshotURL = dto.ArchiveSnapshotURL
	}
	if dto.ArchiveMaxVariants != 0 {
		cfg.archiveMaxVariants = dto.ArchiveMaxVariants
	}
	if dto.ArchiveDirectURLs != 0 {
		cfg.archiveDirectURLs = dto.ArchiveDirectURLs
	}
	if len(dto.AccessControlHosts) > 0 {
		cfg.accessControlHosts = dto.AccessControlHosts
	}
	if dto.MinTextChars != 0 {
		cfg.minTextChars = dto.MinTextChars
	}
	if dto.RecordBackend != "" {
		cfg.recordBackend = dto.RecordBackend
	}
	if dto.FirestoreProject != "" {
		cfg.firestoreProject = dto.FirestoreProject
	}
	if dto.FirestoreCollection != "" {
		cfg.firestoreCollection = dto.FirestoreCollection
	}
	if dto.MirrorBackend != "" {
		cfg.mirrorBackend = dto.MirrorBackend
	}
	if dto.MirrorBucket != "" {
		cfg.mirrorBucket = dto.MirrorBucket
	}
	if dto.MirrorPrefix != "" {
		cfg.mirrorPrefix = dto.MirrorPrefix
	}
	if dto.MinioEndpoint != "" {
		cfg.minioEndpoint = dto.MinioEndpoint
	}
	if dto.MinioAccessKey != "" {
		cfg.minioAccessKey = dto.MinioAccessKey
	}
	if dto.MinioSecretKey != "" {
		cfg.minioSecretKey = dto.MinioSecretKey
	}

	return cfg.Build()
}

func WithConfigFile(path string) (Config, error) {
	_, err := os.Stat(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrFileDoesNotExist, err.Error())
	}
	configContent, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrReadConfigFail, err.Error())
	}
	cfgDTO := configDTO{}

	err = json.Unmarshal(configContent, &cfgDTO)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrConfigParsingFail, err.Error())
	}

	cfg, err := newConfigFromDTO(cfgDTO)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// WithDefault creates a new Config for the given inventory with default
// values for all other fields. inventoryPath is mandatory; Build reports it
// when empty.
func WithDefault(inventoryPath string) *Config {
	defaultConfig := Config{
		inventoryPath:          inventoryPath,
		outputDir:              "output",
		reportsDir:             "reports",
		render:                 true,
		hashAlgo:               hashutil.HashAlgoSHA256,
		concurrency:            4,
		linkConcurrency:        4,
		maxLinksPerPage:        15,
		baseDelay:              time.Second,
		jitter:                 time.Millisecond * 500,
		randomSeed:             time.Now().UnixNano(),
		maxAttempt:             3,
		backoffInitialDuration: time.Second,
		backoffMultiplier:      2.0,
		backoffMaxDuration:     30 * time.Second,
		timeout:                30 * time.Second,
		userAgent:              build.UserAgent(),
		maxBodyBytes:           100 << 20,
		archiveIndexURL:        "https://web.archive.org/cdx/search/cdx",
		archiveSnapshotURL:     "https://web.archive.org/web/",
		archiveMaxVariants:     3,
		archiveDirectURLs:      3,
		accessControlHosts:     []string{"justice.gov"},
		minTextChars:           500,
		recordBackend:          RecordBackendLocal,
		firestoreCollection:    "harvest_records",
		mirrorBackend:          MirrorBackendNone,
	}
	return &defaultConfig
}

func (c *Config) WithInventoryPath(path string) *Config {
	c.inventoryPath = path
	return c
}

func (c *Config) WithCrossRefPath(path string) *Config {
	c.crossRefPath = path
	return c
}

func (c *Config) WithRowRange(start int, end int) *Config {
	c.startRow = start
	c.endRow = end
	return c
}

func (c *Config) WithOutputDir(outputDir string) *Config {
	c.outputDir = outputDir
	return c
}

func (c *Config) WithReportsDir(reportsDir string) *Config {
	c.reportsDir = reportsDir
	return c
}

func (c *Config) WithResume(resume bool) *Config {
	c.resume = resume
	return c
}

func (c *Config) WithDryRun(dryRun bool) *Config {
	c.dryRun = dryRun
	return c
}

func (c *Config) WithRender(render bool) *Config {
	c.render = render
	return c
}

func (c *Config) WithHashAlgo(algo hashutil.HashAlgo) *Config {
	c.hashAlgo = algo
	return c
}

func (c *Config) WithMetricsFile(path string) *Config {
	c.metricsFile = path
	return c
}

func (c *Config) WithConcurrency(concurrency int) *Config {
	c.concurrency = concurrency
	return c
}

func (c *Config) WithLinkConcurrency(concurrency int) *Config {
	c.linkConcurrency = concurrency
	return c
}

func (c *Config) WithMaxLinksPerPage(n int) *Config {
	c.maxLinksPerPage = n
	return c
}

func (c *Config) WithBaseDelay(delay time.Duration) *Config {
	c.baseDelay = delay
	return c
}

func (c *Config) WithJitter(jitter time.Duration) *Config {
	c.jitter = jitter
	return c
}

func (c *Config) WithRandomSeed(seed int64) *Config {
	c.randomSeed = seed
	return c
}

func (c *Config) WithMaxAttempt(attempts int) *Config {
	c.maxAttempt = attempts
	return c
}

func (c *Config) WithBackoffInitialDuration(duration time.Duration) *Config {
	c.backoffInitialDuration = duration
	return c
}

func (c *Config) WithBackoffMultiplier(multiplier float64) *Config {
	c.backoffMultiplier = multiplier
	return c
}

func (c *Config) WithBackoffMaxDuration(duration time.Duration) *Config {
	c.backoffMaxDuration = duration
	return c
}

func (c *Config) WithTimeout(timeout time.Duration) *Config {
	c.timeout = timeout
	return c
}

func (c *Config) WithUserAgent(agent string) *Config {
	c.userAgent = agent
	return c
}

func (c *Config) WithMaxBodyBytes(n int64) *Config {
	c.maxBodyBytes = n
	return c
}

func (c *Config) WithArchiveIndexURL(u string) *Config {
	c.archiveIndexURL = u
	return c
}

func (c *Config) WithArchiveSnapshotURL(u string) *Config {
	c.archiveSnapshotURL = u
	return c
}

func (c *Config) WithArchiveMaxVariants(n int) *Config {
	c.archiveMaxVariants = n
	return c
}

func (c *Config) WithArchiveDirectURLs(n int) *Config {
	c.archiveDirectURLs = n
	return c
}

func (c *Config) WithAccessControlHosts(hosts []string) *Config {
	c.accessControlHosts = hosts
	return c
}

func (c *Config) WithMinTextChars(n int) *Config {
	c.minTextChars = n
	return c
}

func (c *Config) WithRecordBackend(backend string, firestoreProject string, firestoreCollection string) *Config {
	c.recordBackend = backend
	c.firestoreProject = firestoreProject
	if firestoreCollection != "" {
		c.firestoreCollection = firestoreCollection
	}
	return c
}

func (c *Config) WithMirror(backend string, bucket string, prefix string) *Config {
	c.mirrorBackend = backend
	c.mirrorBucket = bucket
	c.mirrorPrefix = prefix
	return c
}

func (c *Config) WithMinio(endpoint string, accessKey string, secretKey string, useSSL bool) *Config {
	c.minioEndpoint = endpoint
	c.minioAccessKey = accessKey
	c.minioSecretKey = secretKey
	c.minioUseSSL = useSSL
	return c
}

func (c *Config) Build() (Config, error) {
	if strings.TrimSpace(c.inventoryPath) == "" {
		return Config{}, fmt.Errorf("%w: inventoryPath cannot be empty", ErrInvalidConfig)
	}
	if c.startRow < 0 || c.endRow < 0 {
		return Config{}, fmt.Errorf("%w: row range cannot be negative", ErrInvalidConfig)
	}
	if c.endRow != 0 && c.startRow > c.endRow {
		return Config{}, fmt.Errorf("%w: startRow %d is after endRow %d", ErrInvalidConfig, c.startRow, c.endRow)
	}
	if c.concurrency < 1 || c.linkConcurrency < 1 {
		return Config{}, fmt.Errorf("%w: concurrency must be at least 1", ErrInvalidConfig)
	}
	if c.maxAttempt < 1 {
		return Config{}, fmt.Errorf("%w: maxAttempt must be at least 1", ErrInvalidConfig)
	}
	if c.maxBodyBytes <= 0 {
		return Config{}, fmt.Errorf("%w: maxBodyBytes must be positive", ErrInvalidConfig)
	}
	if c.archiveMaxVariants < 1 || c.archiveDirectURLs < 1 {
		return Config{}, fmt.Errorf("%w: archive limits must be at least 1", ErrInvalidConfig)
	}
	algo, err := hashutil.ParseHashAlgo(string(c.hashAlgo))
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrInvalidConfig, err.Error())
	}
	c.hashAlgo = algo

	switch c.recordBackend {
	case RecordBackendLocal:
	case RecordBackendFirestore:
		if c.firestoreProject == "" {
			return Config{}, fmt.Errorf("%w: firestoreProject is required for the firestore backend", ErrInvalidConfig)
		}
	default:
		return Config{}, fmt.Errorf("%w: unknown recordBackend %q", ErrInvalidConfig, c.recordBackend)
	}

	switch c.mirrorBackend {
	case MirrorBackendNone:
	case MirrorBackendGCS, MirrorBackendMinio:
		if c.mirrorBucket == "" {
			return Config{}, fmt.Errorf("%w: mirrorBucket is required for the %s mirror", ErrInvalidConfig, c.mirrorBackend)
		}
		if c.mirrorBackend == MirrorBackendMinio && c.minioEndpoint == "" {
			return Config{}, fmt.Errorf("%w: minioEndpoint is required for the minio mirror", ErrInvalidConfig)
		}
	default:
		return Config{}, fmt.Errorf("%w: unknown mirrorBackend %q", ErrInvalidConfig, c.mirrorBackend)
	}

	return *c, nil
}

func (c Config) InventoryPath() string {
	return c.inventoryPath
}

func (c Config) CrossRefPath() string {
	return c.crossRefPath
}

func (c Config) StartRow() int {
	return c.startRow
}

func (c Config) EndRow() int {
	return c.endRow
}

func (c Config) OutputDir() string {
	return c.outputDir
}

func (c Config) ReportsDir() string {
	return c.reportsDir
}

func (c Config) Resume() bool {
	return c.resume
}

func (c Config) DryRun() bool {
	return c.dryRun
}

func (c Config) Render() bool {
	return c.render
}

func (c Config) HashAlgo() hashutil.HashAlgo {
	return c.hashAlgo
}

func (c Config) MetricsFile() string {
	return c.metricsFile
}

func (c Config) Concurrency() int {
	return c.concurrency
}

func (c Config) LinkConcurrency() int {
	return c.linkConcurrency
}

func (c Config) MaxLinksPerPage() int {
	return c.maxLinksPerPage
}

func (c Config) BaseDelay() time.Duration {
	return c.baseDelay
}

func (c Config) Jitter() time.Duration {
	return c.jitter
}

func (c Config) RandomSeed() int64 {
	return c.randomSeed
}

func (c Config) MaxAttempt() int {
	return c.maxAttempt
}

func (c Config) BackoffInitialDuration() time.Duration {
	return c.backoffInitialDuration
}

func (c Config) BackoffMultiplier() float64 {
	return c.backoffMultiplier
}

func (c Config) BackoffMaxDuration() time.Duration {
	return c.backoffMaxDuration
}

func (c Config) Timeout() time.Duration {
	return c.timeout
}

func (c Config) UserAgent() string {
	return c.userAgent
}

func (c Config) MaxBodyBytes() int64 {
	return c.maxBodyBytes
}

func (c Config) ArchiveIndexURL() string {
	return c.archiveIndexURL
}

func (c Config) ArchiveSnapshotURL() string {
	return c.archiveSnapshotURL
}

func (c Config) ArchiveMaxVariants() int {
	return c.archiveMaxVariants
}

func (c Config) ArchiveDirectURLs() int {
	return c.archiveDirectURLs
}

func (c Config) AccessControlHosts() []string {
	hosts := make([]string, len(c.accessControlHosts))
	copy(hosts, c.accessControlHosts)
	return hosts
}

func (c Config) MinTextChars() int {
	return c.minTextChars
}

func (c Config) RecordBackend() string {
	return c.recordBackend
}

func (c Config) FirestoreProject() string {
	return c.firestoreProject
}

func (c Config) FirestoreCollection() string {
	return c.firestoreCollection
}

func (c Config) MirrorBackend() string {
	return c.mirrorBackend
}

func (c Config) MirrorBucket() string {
	return c.mirrorBucket
}

func (c Config) MirrorPrefix() string {
	return c.mirrorPrefix
}

func (c Config) MinioEndpoint() string {
	return c.minioEndpoint
}

func (c Config) MinioAccessKey() string {
	return c.minioAccessKey
}

func (c Config) MinioSecretKey() string {
	return c.minioSecretKey
}

func (c Config) MinioUseSSL() bool {
	return c.minioUseSSL
}
