package frontd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/strongdm/frontconf/internal/ambient"
	"github.com/strongdm/frontconf/internal/appconfig"
	"github.com/strongdm/frontconf/internal/frontend"
	"github.com/strongdm/frontconf/internal/httpserver"
	"github.com/strongdm/frontconf/internal/listen"
	"github.com/strongdm/frontconf/internal/openflag"
	"github.com/strongdm/frontconf/internal/telemetry/otel"
)

var (
	version       = "dev"
	buildDefaults appconfig.AuthConfig
)

// SetVersion records the binary version for logs.
func SetVersion(v string) {
	if v = strings.TrimSpace(v); v != "" {
		version = v
	}
}

// SetBuildDefaults installs the auth values compiled into the binary. They
// seed every store and are replaced as a group by any published config.
func SetBuildDefaults(cfg appconfig.AuthConfig) {
	buildDefaults = cfg
}

type stringFlag struct {
	value string
	set   bool
}

func (s *stringFlag) String() string {
	return s.value
}

func (s *stringFlag) Set(value string) error {
	s.value = value
	s.set = true
	return nil
}

type runtimeConfig struct {
	WebBind         string
	WebDisabled     bool
	DisplayURL      string
	DistDir         string
	ConfigPath      string
	EnvFile         string
	EnvPrefix       string
	APIURL          string
	UserHeader      string
	CSP             bool
	Open            bool
	TelemetryConfig otel.Config
}

// Main serves the front-end using the provided argv slice. When args is
// empty, os.Args is used.
func Main(args []string) error {
	if len(args) == 0 {
		args = os.Args
	}

	cfg, err := parseConfig(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if err := preFlight(cfg); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx, cfg)
}

// logEvent emits compact structured event logs: event=<name> key=value ...
func logEvent(event string, fields map[string]any) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("event=")
	b.WriteString(event)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, fields[k])
	}
	log.Print(b.String())
}

// parseConfig reads CLI flags and environment hints to build the runtime configuration.
func parseConfig(args []string) (*runtimeConfig, error) {
	name := commandName(args)
	fs := flag.NewFlagSet(name, flag.ContinueOnError)

	listenFlag := &stringFlag{}
	fs.Var(listenFlag, "listen", "Serve on the provided address (e.g. :8080, 127.0.0.1:8080). Blank disables serving.")
	fs.Var(listenFlag, "l", "Alias for --listen")

	distDir := fs.String("dist", envOr("FRONTCONF_DIST", ""), "Directory holding the built single-page app (default: bundled page)")
	configPath := fs.String("config", envOr("FRONTCONF_CONFIG", ""), "TOML or JSON file publishing appConfig (default: $FRONTCONF_HOME/config.toml)")
	envFile := fs.String("env-file", envOr("FRONTCONF_ENV_FILE", ""), "Dotenv file publishing appConfig variables")
	envPrefix := fs.String("env-prefix", envOr("FRONTCONF_ENV_PREFIX", ""), "Prefix for appConfig environment variables")
	apiURL := fs.String("api-url", envOr("FRONTCONF_API_URL", buildDefaults.APIURL), "API base URL; /api is appended")
	userHeader := fs.String("user-header", envOr("FRONTCONF_USER_HEADER", ""), "Trusted request header naming the active user, e.g. "+frontend.ProxyUserHeader+" behind an authenticating proxy (default: none)")
	csp := fs.Bool("csp", openflag.IsTruthy(os.Getenv("FRONTCONF_CSP")), "Send a nonce-based Content-Security-Policy with index.html")
	open := fs.Bool("open", openflag.Enabled(), "Open the served page in a browser")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s [flags]\n\n", name)
		fmt.Fprintf(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(fs.Output(), "\nEnvironment:\n  FRONTCONF_LISTEN   Default value for --listen\n  FRONTCONF_HOME     Directory holding config.toml\n  FRONTCONF_OPEN     Default value for --open\n  FRONTCONF_OTEL_METRICS, FRONTCONF_OTEL_TRACES  Enable telemetry\n")
	}

	var flagArgs []string
	if len(args) > 1 {
		flagArgs = args[1:]
	}
	if err := fs.Parse(flagArgs); err != nil {
		return nil, err
	}
	if len(fs.Args()) > 0 {
		return nil, fmt.Errorf("unexpected extra arguments: %v", fs.Args())
	}

	listenCfg := listen.Default()
	if listenFlag.set {
		parsed, err := listen.Parse(listenFlag.value)
		if err != nil {
			return nil, fmt.Errorf("parse --listen: %w", err)
		}
		listenCfg = parsed
	} else if raw, ok := os.LookupEnv("FRONTCONF_LISTEN"); ok {
		parsed, err := listen.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse FRONTCONF_LISTEN: %w", err)
		}
		listenCfg = parsed
	}

	cfg := &runtimeConfig{
		WebBind:         listenCfg.Address(),
		WebDisabled:     listenCfg.Disable,
		DisplayURL:      listenCfg.DisplayURL(),
		DistDir:         strings.TrimSpace(*distDir),
		ConfigPath:      strings.TrimSpace(*configPath),
		EnvFile:         strings.TrimSpace(*envFile),
		EnvPrefix:       strings.TrimSpace(*envPrefix),
		APIURL:          strings.TrimSpace(*apiURL),
		UserHeader:      strings.TrimSpace(*userHeader),
		CSP:             *csp,
		Open:            *open,
		TelemetryConfig: otel.LoadConfigFromEnv(),
	}
	if cfg.ConfigPath == "" {
		file, err := ambient.DefaultFile()
		if err != nil {
			return nil, err
		}
		cfg.ConfigPath = file.Path
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func preFlight(cfg *runtimeConfig) error {
	if cfg == nil {
		return fmt.Errorf("runtime configuration required")
	}
	if cfg.DistDir != "" {
		info, err := os.Stat(cfg.DistDir)
		if err != nil {
			return fmt.Errorf("dist directory: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("dist directory %s is not a directory", cfg.DistDir)
		}
		if _, err := os.Stat(filepath.Join(cfg.DistDir, "index.html")); err != nil {
			return fmt.Errorf("dist directory %s has no index.html: %w", cfg.DistDir, err)
		}
	}
	return nil
}

// newSource layers the environment over the configuration file.
func newSource(cfg *runtimeConfig) appconfig.Source {
	return ambient.Chain{
		ambient.Env{Prefix: cfg.EnvPrefix, DotenvPath: cfg.EnvFile},
		ambient.File{Path: cfg.ConfigPath},
	}
}

func newStore(cfg *runtimeConfig, rec appconfig.Recorder) *appconfig.Store {
	opts := []appconfig.Option{
		appconfig.WithSource(newSource(cfg)),
		appconfig.WithDefaults(buildDefaults),
		appconfig.WithLogger(slog.Default()),
	}
	if rec != nil {
		opts = append(opts, appconfig.WithRecorder(rec))
	}
	store := appconfig.New(opts...)
	store.SetAPIURL(cfg.APIURL)
	return store
}

func run(ctx context.Context, cfg *runtimeConfig) error {
	provider, err := otel.Setup(ctx, cfg.TelemetryConfig)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = provider.Shutdown(shutdownCtx)
	}()

	store := newStore(cfg, provider.Instruments())
	handler := newRouter(cfg, store, provider.Instruments())

	if cfg.WebDisabled {
		logEvent("frontend.disabled", map[string]any{"addr": ""})
		log.Printf("frontend disabled: no listen address configured (FRONTCONF_LISTEN empty)")
		return nil
	}

	server := httpserver.NewWebServer(cfg.WebBind, handler)
	logEvent("frontend.start", map[string]any{
		"addr":    cfg.WebBind,
		"config":  cfg.ConfigPath,
		"dist":    distLabel(cfg.DistDir),
		"version": version,
	})
	if cfg.Open {
		if err := listen.OpenURL(cfg.DisplayURL); err != nil {
			log.Printf("frontend: %v", err)
		}
	}

	if err := httpserver.Serve(ctx, server); err != nil {
		return fmt.Errorf("web server failed: %w", err)
	}
	logEvent("frontend.stop", map[string]any{"addr": cfg.WebBind})
	return nil
}

func distLabel(dir string) string {
	if dir == "" {
		return "bundled"
	}
	return dir
}

func rootFS(cfg *runtimeConfig) http.FileSystem {
	if cfg.DistDir != "" {
		return http.Dir(cfg.DistDir)
	}
	return http.FS(frontend.DefaultDist())
}

func commandName(args []string) string {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return "frontconf"
	}
	return filepath.Base(args[0])
}
