package runner

import (
	"io"
	"math"
	"os"
	"regexp"
	"time"

	"github.com/hrekt/hrekt/common/customheader"
	"github.com/hrekt/hrekt/common/customlist"
	customport "github.com/hrekt/hrekt/common/customports"
	"github.com/hrekt/hrekt/common/fileutil"
	"github.com/hrekt/hrekt/common/httpx"
	"github.com/hrekt/hrekt/common/matcher"
	"github.com/hrekt/hrekt/common/ratelimit"
	"github.com/hrekt/hrekt/common/techdetect"
	"github.com/pkg/errors"
	"github.com/projectdiscovery/goflags"
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/gologger/formatter"
	"github.com/projectdiscovery/gologger/levels"
)

const (
	defaultConcurrency = 100
	defaultWorkers     = 1
	defaultTimeout     = 3
	defaultPorts       = "80,443"
)

// OnResultCallback is called for every emitted result
type OnResultCallback func(Result)

// Options contains configuration options for hrekt.
type Options struct {
	CustomHeaders       customheader.CustomHeaders
	Resolvers           customlist.CustomList
	InputTargetHost     goflags.StringSlice
	InputFile           string
	Output              string
	Ports               string
	RequestURI          string
	OutputMatchBody     string
	OutputMatchHeader   string
	HTTPProxy           string
	Rate                int
	Concurrency         int
	Workers             int
	Timeout             int
	MaxRedirects        int
	MaxResponseBodySize int
	ExtractTitle        bool
	StatusCode          bool
	TechDetect          bool
	FollowRedirects     bool
	ForceHTTPS          bool
	NoFallbackScheme    bool
	RandomAgent         bool
	Dedupe              bool
	JSONOutput          bool
	Silent              bool
	Version             bool
	Verbose             bool
	NoColor             bool
	Debug               bool
	ShowStatistics      bool

	// InputReader replaces stdin when set
	InputReader io.Reader
	// OnResult receives every emitted result, silent mode included
	OnResult OnResultCallback
	// TechDetector replaces the wappalyzer detector when set
	TechDetector techdetect.Detector

	customPorts customport.CustomPorts
	bodyRegex   *regexp.Regexp
	headerRegex *regexp.Regexp
	validated   bool
}

// RunConfig is the frozen view of validated options shared by every worker
type RunConfig struct {
	Rate                int
	Workers             int
	Concurrency         int
	Timeout             time.Duration
	Ports               customport.CustomPorts
	Path                string
	Match               matcher.Config
	TechDetect          bool
	FollowRedirects     bool
	MaxRedirects        int
	MaxResponseBodySize int64
	ForceHTTPS          bool
	NoFallbackScheme    bool
	RandomAgent         bool
	Dedupe              bool
	Silent              bool
	JSONOutput          bool
	NoColor             bool
	Output              string
	ShowStatistics      bool
}

// ParseOptions parses the command line options for application
func ParseOptions() *Options {
	options := &Options{}

	flagSet := goflags.NewFlagSet()
	flagSet.SetDescription(`hrekt is a fast HTTP/HTTPS prober reading hosts from stdin.`)

	flagSet.CreateGroup("input", "Input",
		flagSet.StringVar(&options.InputFile, "list", "", "input file containing hosts (glob allowed, default stdin)"),
		flagSet.BoolVarP(&options.Dedupe, "dedupe", "dd", false, "skip hosts already seen in the input"),
	)

	flagSet.CreateGroup("probes", "Probes",
		flagSet.StringVarP(&options.Ports, "ports", "p", defaultPorts, "ports to probe (eg 80,443,8000-8010,https:8443)"),
		flagSet.StringVarP(&options.RequestURI, "path", "x", "", "path appended to each url"),
		flagSet.BoolVarP(&options.ExtractTitle, "title", "i", false, "display page title"),
		flagSet.BoolVarP(&options.StatusCode, "status-code", "s", false, "display response status code"),
		flagSet.BoolVarP(&options.TechDetect, "tech-detect", "d", false, "display technologies based on wappalyzer fingerprints"),
	)

	flagSet.CreateGroup("filters", "Filters",
		flagSet.StringVarP(&options.OutputMatchBody, "body-regex", "b", "", "only show targets whose body matches the regex"),
		flagSet.StringVarP(&options.OutputMatchHeader, "header-regex", "h", "", "only show targets whose headers match the regex"),
	)

	flagSet.CreateGroup("rate-limit", "Rate-Limit",
		flagSet.IntVarP(&options.Rate, "rate", "r", ratelimit.DefaultRate, "maximum requests to send per second"),
		flagSet.IntVarP(&options.Concurrency, "concurrency", "c", defaultConcurrency, "concurrent probes per worker"),
		flagSet.IntVarP(&options.Workers, "workers", "w", defaultWorkers, "number of workers (multiplies concurrency)"),
	)

	flagSet.CreateGroup("configs", "Configurations",
		flagSet.IntVarP(&options.Timeout, "timeout", "t", defaultTimeout, "timeout in seconds for each request"),
		flagSet.BoolVarP(&options.FollowRedirects, "follow-redirects", "l", false, "follow http redirects"),
		flagSet.IntVarP(&options.MaxRedirects, "max-redirects", "mr", httpx.DefaultOptions.MaxRedirects, "max number of redirects to follow"),
		flagSet.BoolVarP(&options.ForceHTTPS, "force-https", "fh", false, "probe every port over https"),
		flagSet.BoolVarP(&options.NoFallbackScheme, "no-fallback-scheme", "nfs", false, "do not retry with the other scheme"),
		flagSet.IntVarP(&options.MaxResponseBodySize, "max-response-body-size", "rsz", int(httpx.DefaultOptions.MaxResponseBodySize), "max response body size to read (bytes)"),
		flagSet.BoolVarP(&options.RandomAgent, "random-agent", "ra", false, "use a random User-Agent for each request"),
		flagSet.VarP(&options.CustomHeaders, "header", "H", "custom http header to send (Name: Value)"),
		flagSet.StringVar(&options.HTTPProxy, "http-proxy", "", "http proxy to use (eg http://127.0.0.1:8080)"),
		flagSet.Var(&options.Resolvers, "resolvers", "list of resolvers (file or comma separated)"),
	)

	flagSet.CreateGroup("output", "Output",
		flagSet.StringVarP(&options.Output, "output", "o", "", "file to write output to"),
		flagSet.BoolVarP(&options.JSONOutput, "json", "j", false, "write output in JSONL(ines) format"),
		flagSet.BoolVarP(&options.NoColor, "no-color", "nc", false, "disable colors in cli output"),
	)

	flagSet.CreateGroup("debug", "Debug",
		flagSet.BoolVarP(&options.Silent, "silent", "q", false, "suppress per-result output (summary still logged)"),
		flagSet.BoolVarP(&options.Verbose, "verbose", "v", false, "verbose mode"),
		flagSet.BoolVar(&options.Debug, "debug", false, "show per-target failures"),
		flagSet.BoolVar(&options.ShowStatistics, "stats", false, "display scan statistics"),
		flagSet.BoolVar(&options.Version, "version", false, "display hrekt version"),
	)

	if err := flagSet.Parse(); err != nil {
		gologger.Fatal().Msgf("Could not parse flags: %s\n", err)
	}

	options.configureOutput()

	if !options.Silent {
		showBanner()
	}

	if options.Version {
		gologger.Info().Msgf("Current Version: %s\n", version)
		os.Exit(0)
	}

	if err := options.ValidateOptions(); err != nil {
		gologger.Fatal().Msgf("Program exiting: %s\n", err)
	}

	return options
}

// ValidateOptions checks the configuration before any probe starts
func (options *Options) ValidateOptions() error {
	if options.Ports == "" {
		options.Ports = defaultPorts
	}
	if options.Rate <= 0 {
		return errors.Errorf("rate must be positive, got %d", options.Rate)
	}
	if options.Workers <= 0 {
		return errors.Errorf("workers must be positive, got %d", options.Workers)
	}
	if options.Concurrency <= 0 {
		return errors.Errorf("concurrency must be positive, got %d", options.Concurrency)
	}
	if options.Timeout <= 0 {
		return errors.Errorf("timeout must be positive, got %d", options.Timeout)
	}
	if options.MaxRedirects < 0 {
		return errors.Errorf("max redirects cannot be negative, got %d", options.MaxRedirects)
	}
	if options.MaxResponseBodySize <= 0 || int64(options.MaxResponseBodySize) >= math.MaxInt64 {
		return errors.Errorf("max response body size must be positive and below %d, got %d", int64(math.MaxInt64), options.MaxResponseBodySize)
	}

	var err error
	if options.customPorts, err = customport.Parse(options.Ports); err != nil {
		return errors.Wrap(err, "invalid value for ports option")
	}
	if options.OutputMatchBody != "" {
		if options.bodyRegex, err = regexp.Compile(options.OutputMatchBody); err != nil {
			return errors.Wrap(err, "invalid value for body regex option")
		}
	}
	if options.OutputMatchHeader != "" {
		if options.headerRegex, err = regexp.Compile(options.OutputMatchHeader); err != nil {
			return errors.Wrap(err, "invalid value for header regex option")
		}
	}
	if options.InputFile != "" {
		if _, err := fileutil.ListFilesWithPattern(options.InputFile); err != nil {
			return errors.Wrap(err, "could not read input list")
		}
	}
	options.validated = true
	return nil
}

// RunConfig freezes validated options into the snapshot workers read
func (options *Options) RunConfig() (RunConfig, error) {
	if !options.validated {
		if err := options.ValidateOptions(); err != nil {
			return RunConfig{}, err
		}
	}
	return RunConfig{
		Rate:        options.Rate,
		Workers:     options.Workers,
		Concurrency: options.Concurrency,
		Timeout:     time.Duration(options.Timeout) * time.Second,
		Ports:       options.customPorts,
		Path:        options.RequestURI,
		Match: matcher.Config{
			BodyRegex:   options.bodyRegex,
			HeaderRegex: options.headerRegex,
			Path:        options.RequestURI,
			StatusCode:  options.StatusCode,
			Title:       options.ExtractTitle,
		},
		TechDetect:          options.TechDetect,
		FollowRedirects:     options.FollowRedirects,
		MaxRedirects:        options.MaxRedirects,
		MaxResponseBodySize: int64(options.MaxResponseBodySize),
		ForceHTTPS:          options.ForceHTTPS,
		NoFallbackScheme:    options.NoFallbackScheme,
		RandomAgent:         options.RandomAgent,
		Dedupe:              options.Dedupe,
		Silent:              options.Silent,
		JSONOutput:          options.JSONOutput,
		NoColor:             options.NoColor,
		Output:              options.Output,
		ShowStatistics:      options.ShowStatistics,
	}, nil
}

// configureOutput configures the output on the screen
func (options *Options) configureOutput() {
	// If the user desires verbose output, show verbose output
	if options.Verbose {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelVerbose)
	}
	if options.Debug {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelDebug)
	}
	if options.NoColor {
		gologger.DefaultLogger.SetFormatter(formatter.NewCLI(true))
	}
}
