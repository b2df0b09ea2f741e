package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/abdul-hamid-achik/httpspec/packages/core/config"
	"github.com/abdul-hamid-achik/httpspec/packages/http"
	"github.com/abdul-hamid-achik/httpspec/packages/output"
	"github.com/abdul-hamid-achik/httpspec/packages/suite"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

var runCmd = &cobra.Command{
	Use:   "run <file|directory>",
	Short: "Run suite files against a running service",
	Long: `Run the specs in YAML suite files. Directories are searched for
*.spec.yaml, *.spec.yml and *.spec.json files.

Examples:
  httpspec run users.spec.yaml
  httpspec run ./specs/ --base-url http://localhost:8080
  httpspec run ./specs/ --name "create*" --bail
  httpspec run ./specs/ --rate 5 --output junit --output-file report.xml
  httpspec run ./specs/ --watch`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCommand,
}

const (
	// WatchDebounceDelay is the debounce delay for file watch events
	WatchDebounceDelay = 300 * time.Millisecond
)

var (
	baseURLFlag    string
	configFlag     string
	envFileFlag    string
	varFlags       []string
	nameFlag       string
	verboseFlag    bool
	noColorFlag    bool
	outputFlag     string
	outputFileFlag string
	bailFlag       bool
	timeoutFlag    string
	rateFlag       float64
	watchFlag      bool
	proxyFlag      string
	insecureFlag   bool
)

func init() {
	runCmd.Flags().StringVarP(&baseURLFlag, "base-url", "u", getEnvString("HTTPSPEC_BASE_URL", ""), "Base URL of the service under test (env: HTTPSPEC_BASE_URL)")
	runCmd.Flags().StringVar(&configFlag, "config", getEnvString("HTTPSPEC_CONFIG", ""), "Path to config file (env: HTTPSPEC_CONFIG)")
	runCmd.Flags().StringVar(&envFileFlag, "env-file", getEnvString("HTTPSPEC_ENV_FILE", ""), "Path to .env file for variable interpolation (env: HTTPSPEC_ENV_FILE)")
	runCmd.Flags().StringArrayVar(&varFlags, "var", nil, "Set a variable (key=value), may be repeated")
	runCmd.Flags().StringVarP(&nameFlag, "name", "n", "", "Run only specs whose name matches the pattern")

	runCmd.Flags().BoolVarP(&verboseFlag, "verbose", "v", getEnvBool("HTTPSPEC_VERBOSE", false), "Verbose output (env: HTTPSPEC_VERBOSE)")
	runCmd.Flags().BoolVar(&noColorFlag, "no-color", getEnvBool("HTTPSPEC_NO_COLOR", false), "Disable colored output (env: HTTPSPEC_NO_COLOR)")
	runCmd.Flags().StringVarP(&outputFlag, "output", "o", getEnvString("HTTPSPEC_OUTPUT", ""), "Output format: "+strings.Join(output.Formats, ", ")+" (env: HTTPSPEC_OUTPUT)")
	runCmd.Flags().StringVar(&outputFileFlag, "output-file", getEnvString("HTTPSPEC_OUTPUT_FILE", ""), "Write output to file (default: stdout) (env: HTTPSPEC_OUTPUT_FILE)")

	runCmd.Flags().BoolVar(&bailFlag, "bail", getEnvBool("HTTPSPEC_BAIL", false), "Stop on first failure (env: HTTPSPEC_BAIL)")
	runCmd.Flags().StringVar(&timeoutFlag, "timeout", getEnvString("HTTPSPEC_TIMEOUT", ""), "Request timeout (e.g., 30s, 1m) (env: HTTPSPEC_TIMEOUT)")
	runCmd.Flags().Float64VarP(&rateFlag, "rate", "r", getEnvFloat("HTTPSPEC_RATE", 0), "Maximum requests per second, 0 for unlimited (env: HTTPSPEC_RATE)")
	runCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch files for changes and re-run specs")

	runCmd.Flags().StringVar(&proxyFlag, "proxy", getEnvString("HTTPSPEC_PROXY", ""), "Proxy URL for HTTP requests (env: HTTPSPEC_PROXY)")
	runCmd.Flags().BoolVarP(&insecureFlag, "insecure", "k", getEnvBool("HTTPSPEC_INSECURE", false), "Disable SSL certificate validation (env: HTTPSPEC_INSECURE)")

	_ = runCmd.RegisterFlagCompletionFunc("output", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return output.Formats, cobra.ShellCompDirectiveNoFileComp
	})
}

// flagConfig collects the settings given on the command line. Unset flags
// leave the config file values alone.
func flagConfig() (*config.Config, error) {
	c := &config.Config{
		BaseURL: baseURLFlag,
		Proxy:   proxyFlag,
		EnvFile: envFileFlag,
		Output:  outputFlag,
		Rate:    rateFlag,
	}
	if verboseFlag {
		c.Verbose = config.BoolPtr(true)
	}
	if noColorFlag {
		c.NoColor = config.BoolPtr(true)
	}
	if bailFlag {
		c.Bail = config.BoolPtr(true)
	}
	if insecureFlag {
		c.ValidateSSL = config.BoolPtr(false)
	}
	if timeoutFlag != "" {
		d, err := time.ParseDuration(timeoutFlag)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout value %q: %w (use format like 30s, 1m, 500ms)", timeoutFlag, err)
		}
		c.Timeout = int(d.Milliseconds())
	}
	if len(varFlags) > 0 {
		c.Variables = make(map[string]any, len(varFlags))
		for _, kv := range varFlags {
			k, v, ok := strings.Cut(kv, "=")
			if !ok || k == "" {
				return nil, fmt.Errorf("invalid --var %q (want key=value)", kv)
			}
			c.Variables[k] = v
		}
	}
	return c, nil
}

// session is everything one run of the selected files needs.
type session struct {
	cfg     *config.Config
	vars    map[string]any
	limiter *rate.Limiter
	out     io.Writer
	errOut  io.Writer
}

// summary totals one pass over the files.
type summary struct {
	passed, failed, skipped int
	parseErrors             int
	transportErrors         int
	duration                time.Duration
}

func (s summary) exitCode() int {
	switch {
	case s.parseErrors > 0:
		return ExitParseError
	case s.transportErrors > 0:
		return ExitNetworkError
	case s.failed > 0:
		return ExitTestFailure
	default:
		return ExitSuccess
	}
}

func runCommand(cmd *cobra.Command, args []string) error {
	fileCfg, err := config.LoadConfig(configFlag)
	if err != nil {
		return exitError(ExitConfigError, err)
	}
	flags, err := flagConfig()
	if err != nil {
		return exitError(ExitUsageError, err)
	}
	cfg := fileCfg.Merge(flags)

	mode, err := cfg.GetMode()
	if err != nil {
		return exitError(ExitConfigError, err)
	}
	if mode != http.LiveServer {
		return exitError(ExitConfigError, fmt.Errorf("mode %s needs an in-process application; the CLI runs against live services", mode))
	}

	vars := map[string]any{}
	if cfg.EnvFile != "" {
		dotenv, err := suite.LoadDotEnv(cfg.EnvFile)
		if err != nil {
			return exitError(ExitConfigError, err)
		}
		vars = dotenv
	}
	for k, v := range cfg.Variables {
		vars[k] = v
	}

	out := cmd.OutOrStdout()
	if outputFileFlag != "" {
		f, err := os.Create(outputFileFlag)
		if err != nil {
			return exitError(ExitConfigError, fmt.Errorf("cannot create output file: %w", err))
		}
		defer f.Close()
		out = f
	}

	files, err := collectFiles(args)
	if err != nil {
		return exitError(ExitUsageError, err)
	}
	if len(files) == 0 {
		return exitError(ExitUsageError, fmt.Errorf("no suite files found (looking for %s)", strings.Join(suiteSuffixes, ", ")))
	}

	s := &session{
		cfg:    cfg,
		vars:   vars,
		out:    out,
		errOut: cmd.ErrOrStderr(),
	}
	if cfg.Rate > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.Rate), 1)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := s.runFiles(ctx, files)
	if err != nil {
		return exitError(ExitConfigError, err)
	}

	if !watchFlag {
		if code := result.exitCode(); code != ExitSuccess {
			return exitError(code, nil)
		}
		return nil
	}

	return s.watch(ctx, cmd, args, files)
}

// runFiles runs every file and flushes a fresh formatter.
func (s *session) runFiles(ctx context.Context, files []string) (summary, error) {
	var sum summary

	formatter, err := output.New(s.cfg.Output, s.out, s.cfg.GetVerbose(), s.cfg.GetNoColor())
	if err != nil {
		return sum, err
	}

	start := time.Now()
	for _, file := range files {
		if ctx.Err() != nil {
			break
		}

		result, err := s.runFile(ctx, file)
		if err != nil {
			formatter.FormatError(err)
			sum.parseErrors++
			if s.cfg.GetBail() {
				break
			}
			continue
		}

		formatter.FormatResult(result)
		sum.passed += result.Passed
		sum.failed += result.Failed
		sum.skipped += len(result.Skipped)
		for _, r := range result.Results {
			if errors.Is(r.Error, http.ErrTransport) {
				sum.transportErrors++
			}
		}

		if s.cfg.GetBail() && result.Failed > 0 {
			break
		}
	}
	sum.duration = time.Since(start)

	if err := formatter.Flush(sum.duration); err != nil {
		return sum, fmt.Errorf("error writing output: %w", err)
	}
	return sum, nil
}

func (s *session) runFile(ctx context.Context, path string) (*suite.RunResult, error) {
	f, err := suite.ParseFile(path)
	if err != nil {
		return nil, err
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	baseURL := s.cfg.BaseURL
	if baseURL == "" {
		baseURL = f.BaseURL
	}
	if baseURL == "" {
		return nil, fmt.Errorf("%s: no base URL (set baseUrl in the file, the config, or --base-url)", path)
	}
	if err := http.ValidateURL(baseURL); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	opts := []suite.Option{
		suite.WithMode(http.LiveServer),
		suite.WithBail(s.cfg.GetBail()),
		suite.WithNameFilter(nameFlag),
		suite.WithVariables(s.vars),
	}
	if s.limiter != nil {
		opts = append(opts, suite.WithLimiter(s.limiter))
	}
	if s.cfg.GetVerbose() {
		logger := log.New(s.errOut, "", 0)
		opts = append(opts, suite.WithWarnFunc(func(format string, args ...any) {
			logger.Printf("warning: "+format, args...)
		}))
	}

	target := http.NewRemote(baseURL, s.cfg.ClientOptions()...)
	return suite.NewRunner(target, opts...).Run(ctx, f)
}

func (s *session) watch(ctx context.Context, cmd *cobra.Command, args, files []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	watchedDirs := make(map[string]bool)
	for _, file := range files {
		dir := filepath.Dir(file)
		if !watchedDirs[dir] {
			if err := watcher.Add(dir); err != nil {
				return fmt.Errorf("failed to watch %s: %w", dir, err)
			}
			watchedDirs[dir] = true
		}
	}
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			continue
		}
		_ = filepath.Walk(arg, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() && !watchedDirs[path] {
				_ = watcher.Add(path)
				watchedDirs[path] = true
			}
			return nil
		})
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "\nWatching for changes... (press Ctrl+C to stop)\n\n")

	rerun := make(chan string, 1)
	var debounceTimer *time.Timer
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !isSuiteFile(event.Name) && !isWatchedArg(event.Name, args) {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			name := event.Name
			debounceTimer = time.AfterFunc(WatchDebounceDelay, func() {
				select {
				case rerun <- name:
				default:
				}
			})

		case name := <-rerun:
			fmt.Fprintf(cmd.ErrOrStderr(), "\nFile changed: %s\nRe-running specs...\n\n", name)
			current, err := collectFiles(args)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
				continue
			}
			if _, err := s.runFiles(ctx, current); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "\nWatching for changes... (press Ctrl+C to stop)\n")

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "watcher error: %v\n", err)
		}
	}
}

// isWatchedArg reports whether path is one of the files named on the
// command line, which may lack a suite suffix.
func isWatchedArg(path string, args []string) bool {
	for _, arg := range args {
		if filepath.Clean(arg) == filepath.Clean(path) {
			return true
		}
	}
	return false
}
