package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rohmanhakim/docs-harvester/internal/config"
	"github.com/rohmanhakim/docs-harvester/internal/logger"
	"github.com/rohmanhakim/docs-harvester/pkg/hashutil"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	cfgFile       string
	inventoryPath string
	crossRefPath  string
	startRow      int
	endRow        int
	outputDir     string
	reportsDir    string
	resume        bool
	dryRun        bool
	noRender      bool
	concurrency   int
	userAgent     string
	timeout       time.Duration
	baseDelay     time.Duration
	jitter        time.Duration
	randomSeed    int64
	hashAlgo      string
	metricsFile   string
	recordBackend string
	firestoreProj string
	mirrorBackend string
	mirrorBucket  string
	mirrorPrefix  string
	verbose       bool
	logFormat     string
	logFile       string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "docs-harvester",
	Short: "Resolve and preserve documents listed in a reference inventory.",
	Long: `docs-harvester walks a YAML inventory of document references and, for each
one, tries the document portal, then the URLs listed in the inventory, then
the web archive, until it obtains a file that is a real document.

Every reference ends up with its own directory holding the accepted files and
a metadata.json record of every attempt, so the outcome can be audited later.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "config file path (e.g., /home/myuser/config.json)")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output-dir", "", "root directory holding one folder per reference")
	rootCmd.PersistentFlags().StringVar(&reportsDir, "reports-dir", "", "directory for run summaries and validation reports")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log output format: console or json")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also write JSON logs to this file")

	runCmd.Flags().StringVar(&inventoryPath, "inventory", "", "YAML inventory of references")
	runCmd.Flags().StringVar(&crossRefPath, "cross-ref", "", "YAML cross-reference catalog of portal URLs")
	runCmd.Flags().IntVar(&startRow, "start", 0, "first inventory row to process (1-indexed)")
	runCmd.Flags().IntVar(&endRow, "end", 0, "last inventory row to process (0 for no limit)")
	runCmd.Flags().BoolVar(&resume, "resume", false, "skip references whose stored record is already success")
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "preview references without fetching or writing")
	runCmd.Flags().BoolVar(&noRender, "no-render", false, "do not render accepted HTML pages to Markdown")
	runCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of references resolved in parallel")
	runCmd.Flags().StringVar(&userAgent, "user-agent", "", "user agent string for HTTP requests")
	runCmd.Flags().DurationVar(&timeout, "timeout", 0, "timeout for HTTP requests")
	runCmd.Flags().DurationVar(&baseDelay, "base-delay", 0, "base delay between HTTP requests to the same host")
	runCmd.Flags().DurationVar(&jitter, "jitter", 0, "random jitter added to base delay")
	runCmd.Flags().Int64Var(&randomSeed, "random-seed", 0, "seed for random number generation (0 for current time)")
	runCmd.Flags().StringVar(&hashAlgo, "hash-algo", "", "artifact hash algorithm: sha256 or blake3")
	runCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus text-format run metrics to this file")
	runCmd.Flags().StringVar(&recordBackend, "record-backend", "", "where records are stored: local or firestore")
	runCmd.Flags().StringVar(&firestoreProj, "firestore-project", "", "GCP project for the firestore record backend")
	runCmd.Flags().StringVar(&mirrorBackend, "mirror-backend", "", "object-store mirror: none, gcs or minio")
	runCmd.Flags().StringVar(&mirrorBucket, "mirror-bucket", "", "bucket receiving mirrored artifacts")
	runCmd.Flags().StringVar(&mirrorPrefix, "mirror-prefix", "", "object name prefix inside the mirror bucket")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(versionCmd)
}

// newLogger builds the process logger from the persistent logging flags.
// The returned closer releases the log file, if any.
func newLogger(stderr io.Writer) (zerolog.Logger, func() error, error) {
	level := "info"
	if verbose {
		level = "debug"
	}
	cfg := logger.Config{
		Level:  level,
		Pretty: logFormat != "json",
		Output: stderr,
	}
	closer := func() error { return nil }
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return zerolog.Logger{}, closer, fmt.Errorf("open log file: %w", err)
		}
		cfg.File = f
		closer = f.Close
	}
	return logger.New(cfg), closer, nil
}

// InitConfigWithError builds the run configuration from the config file when
// one is given, otherwise from the flags on top of the defaults.
func InitConfigWithError() (config.Config, error) {
	if cfgFile != "" {
		cfg, err := config.WithConfigFile(cfgFile)
		if err != nil {
			return cfg, fmt.Errorf("error initializing config from file: %w", err)
		}
		return cfg, nil
	}

	configBuilder := config.WithDefault(inventoryPath)

	// Override with CLI flag values where provided
	if crossRefPath != "" {
		configBuilder = configBuilder.WithCrossRefPath(crossRefPath)
	}

	if startRow > 0 || endRow > 0 {
		configBuilder = configBuilder.WithRowRange(startRow, endRow)
	}

	if outputDir != "" {
		configBuilder = configBuilder.WithOutputDir(outputDir)
	}

	if reportsDir != "" {
		configBuilder = configBuilder.WithReportsDir(reportsDir)
	}

	if resume {
		configBuilder = configBuilder.WithResume(resume)
	}

	if dryRun {
		configBuilder = configBuilder.WithDryRun(dryRun)
	}

	if noRender {
		configBuilder = configBuilder.WithRender(false)
	}

	if concurrency > 0 {
		configBuilder = configBuilder.WithConcurrency(concurrency)
	}

	if userAgent != "" {
		configBuilder = configBuilder.WithUserAgent(userAgent)
	}

	if timeout > 0 {
		configBuilder = configBuilder.WithTimeout(timeout)
	}

	if baseDelay > 0 {
		configBuilder = configBuilder.WithBaseDelay(baseDelay)
	}

	if jitter > 0 {
		configBuilder = configBuilder.WithJitter(jitter)
	}

	if randomSeed != 0 {
		configBuilder = configBuilder.WithRandomSeed(randomSeed)
	}

	if hashAlgo != "" {
		configBuilder = configBuilder.WithHashAlgo(hashutil.HashAlgo(hashAlgo))
	}

	if metricsFile != "" {
		configBuilder = configBuilder.WithMetricsFile(metricsFile)
	}

	if recordBackend != "" {
		configBuilder = configBuilder.WithRecordBackend(recordBackend, firestoreProj, "")
	}

	if mirrorBackend != "" {
		configBuilder = configBuilder.WithMirror(mirrorBackend, mirrorBucket, mirrorPrefix)
		configBuilder = configBuilder.WithMinio(
			os.Getenv("MINIO_ENDPOINT"),
			os.Getenv("MINIO_ACCESS_KEY"),
			os.Getenv("MINIO_SECRET_KEY"),
			os.Getenv("MINIO_USE_SSL") == "true",
		)
	}

	cfg, err := configBuilder.Build()
	if err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func ResetFlags() {
	cfgFile = ""
	inventoryPath = ""
	crossRefPath = ""
	startRow = 0
	endRow = 0
	outputDir = ""
	reportsDir = ""
	resume = false
	dryRun = false
	noRender = false
	concurrency = 0
	userAgent = ""
	timeout = 0
	baseDelay = 0
	jitter = 0
	randomSeed = 0
	hashAlgo = ""
	metricsFile = ""
	recordBackend = ""
	firestoreProj = ""
	mirrorBackend = ""
	mirrorBucket = ""
	mirrorPrefix = ""
	verbose = false
	logFormat = "console"
	logFile = ""
}

// Test helper functions to set flag values from tests
func SetConfigFileForTest(path string) {
	cfgFile = path
}

func SetInventoryPathForTest(path string) {
	inventoryPath = path
}

func SetCrossRefPathForTest(path string) {
	crossRefPath = path
}

func SetRowRangeForTest(start int, end int) {
	startRow = start
	endRow = end
}

func SetOutputDirForTest(dir string) {
	outputDir = dir
}

func SetReportsDirForTest(dir string) {
	reportsDir = dir
}

func SetResumeForTest(r bool) {
	resume = r
}

func SetDryRunForTest(dry bool) {
	dryRun = dry
}

func SetNoRenderForTest(n bool) {
	noRender = n
}

func SetConcurrencyForTest(conc int) {
	concurrency = conc
}

func SetBaseDelayForTest(delay time.Duration) {
	baseDelay = delay
}

func SetJitterForTest(j time.Duration) {
	jitter = j
}

func SetRandomSeedForTest(seed int64) {
	randomSeed = seed
}

func SetHashAlgoForTest(algo string) {
	hashAlgo = algo
}

func SetMetricsFileForTest(path string) {
	metricsFile = path
}

func SetRecordBackendForTest(backend string, project string) {
	recordBackend = backend
	firestoreProj = project
}

func SetMirrorForTest(backend string, bucket string, prefix string) {
	mirrorBackend = backend
	mirrorBucket = bucket
	mirrorPrefix = prefix
}
