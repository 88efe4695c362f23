// Package main provides the CLI entry point for ainspire.
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/ainspire/pkg/adapters/ffmpegdecoder"
	"github.com/user/ainspire/pkg/adapters/filesink"
	"github.com/user/ainspire/pkg/adapters/ggrenderer"
	"github.com/user/ainspire/pkg/adapters/logger"
	"github.com/user/ainspire/pkg/adapters/mp4probe"
	"github.com/user/ainspire/pkg/adapters/nullsink"
	"github.com/user/ainspire/pkg/adapters/openaiclassifier"
	"github.com/user/ainspire/pkg/adapters/osfilesystem"
	"github.com/user/ainspire/pkg/adapters/prommetrics"
	"github.com/user/ainspire/pkg/adapters/smartprobe"
	"github.com/user/ainspire/pkg/adapters/sqlitestore"
	"github.com/user/ainspire/pkg/collection"
	"github.com/user/ainspire/pkg/config"
	"github.com/user/ainspire/pkg/locale"
	"github.com/user/ainspire/pkg/orchestrator"
	"github.com/user/ainspire/pkg/pipeline"
	"github.com/user/ainspire/pkg/ports"
	"github.com/user/ainspire/pkg/server"
	"github.com/user/ainspire/pkg/stages/classify"
	"github.com/user/ainspire/pkg/stages/sample"
	"github.com/user/ainspire/pkg/summarizer"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:    "ainspire",
		Usage:   l10n.T("Collect labeled reference frames from videos"),
		Version: version,
		Flags: []cli.Flag{
			&cli.PathFlag{Name: "config", Aliases: []string{"c"}, Usage: l10n.T("YAML configuration file"), Category: l10n.T("Configuration")},
			&cli.StringFlag{Name: "lang", Usage: l10n.T("Message language (en, ko)"), Category: l10n.T("Configuration")},
			&cli.StringFlag{Name: "log-level", Aliases: []string{"l"}, Usage: l10n.T("Log level (debug, info, warn, error)"), Category: l10n.T("Logging")},
			&cli.PathFlag{Name: "log-file", Usage: l10n.T("Also write JSON logs to this file"), Category: l10n.T("Logging")},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"Q"}, Usage: l10n.T("Suppress all log output"), Category: l10n.T("Logging")},
		},
		Commands: []*cli.Command{
			extractCommand(),
			serveCommand(),
			keyCommand(),
			filtersCommand(),
			{
				Name:  "version",
				Usage: l10n.T("Show version information"),
				Action: func(c *cli.Context) error {
					fmt.Println(l10n.F("ainspire version %s", version))
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func extractCommand() *cli.Command {
	return &cli.Command{
		Name:      "extract",
		Usage:     l10n.T("Extract and classify frames from videos"),
		ArgsUsage: l10n.T("VIDEO..."),
		Flags: []cli.Flag{
			&cli.Float64Flag{Name: "interval", Aliases: []string{"i"}, Usage: l10n.T("Seconds between captured frames (1-30)"), Category: l10n.T("Sampling")},
			&cli.IntFlag{Name: "quality", Aliases: []string{"q"}, Usage: l10n.T("JPEG quality of captured frames (1-100)"), Category: l10n.T("Sampling")},
			&cli.IntFlag{Name: "max-width", Usage: l10n.T("Downscale frames wider than this many pixels"), Category: l10n.T("Sampling")},
			&cli.StringFlag{Name: "ffmpeg-path", Usage: l10n.T("Path to ffmpeg (falls back to FFMPEG_PATH, then PATH)"), Category: l10n.T("Sampling")},
			&cli.StringFlag{Name: "model", Usage: l10n.T("Vision model used for classification"), Category: l10n.T("Classification")},
			&cli.PathFlag{Name: "out", Aliases: []string{"o"}, Value: collection.ExportFileName, Usage: l10n.T("Collection JSON file to write"), Category: l10n.T("Output")},
			&cli.PathFlag{Name: "import", Usage: l10n.T("Start from a previously exported collection"), Category: l10n.T("Output")},
			&cli.PathFlag{Name: "summary", Usage: l10n.T("Write a Markdown run summary (- for stdout)"), Category: l10n.T("Output")},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: l10n.T("Save every captured frame and classifier response"), Category: l10n.T("Debug")},
			&cli.PathFlag{Name: "debug-dir", Usage: l10n.T("Directory for debug output"), Category: l10n.T("Debug")},
		},
		Action: runExtract,
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: l10n.T("Serve the collection and pipeline over HTTP"),
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "listen", Usage: l10n.T("Address to listen on"), Category: l10n.T("Server")},
			&cli.StringFlag{Name: "ffmpeg-path", Usage: l10n.T("Path to ffmpeg (falls back to FFMPEG_PATH, then PATH)"), Category: l10n.T("Sampling")},
		},
		Action: runServe,
	}
}

func keyCommand() *cli.Command {
	return &cli.Command{
		Name:  "key",
		Usage: l10n.T("Manage the classifier API key"),
		Subcommands: []*cli.Command{
			{
				Name:      "set",
				Usage:     l10n.T("Store an API key"),
				ArgsUsage: l10n.T("KEY"),
				Action:    runKeySet,
			},
			{
				Name:   "clear",
				Usage:  l10n.T("Remove the stored API key"),
				Action: runKeyClear,
			},
			{
				Name:   "show",
				Usage:  l10n.T("Show the stored API key, masked"),
				Action: runKeyShow,
			},
		},
	}
}

func filtersCommand() *cli.Command {
	return &cli.Command{
		Name:      "filters",
		Usage:     l10n.T("List the filter options of a collection file"),
		ArgsUsage: l10n.T("COLLECTION.json"),
		Action:    runFilters,
	}
}

// loadConfig merges defaults, the config file, the environment and flags.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Defaults()
	if path := c.Path("config"); path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	} else {
		cfg.Language = locale.Detect()
	}
	cfg.ApplyEnv(os.Getenv)

	if c.IsSet("lang") {
		cfg.Language = c.String("lang")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("log-file") {
		cfg.LogFile = c.Path("log-file")
	}
	if c.IsSet("interval") {
		cfg.IntervalSeconds = c.Float64("interval")
	}
	if c.IsSet("quality") {
		cfg.JPEGQuality = c.Int("quality")
	}
	if c.IsSet("max-width") {
		cfg.MaxFrameWidth = c.Int("max-width")
	}
	if c.IsSet("ffmpeg-path") {
		cfg.FFmpegPath = c.String("ffmpeg-path")
	}
	if c.IsSet("model") {
		cfg.Classifier.Model = c.String("model")
	}
	if c.IsSet("listen") {
		cfg.Listen = c.String("listen")
	}
	if c.IsSet("debug") {
		cfg.Debug = c.Bool("debug")
	}
	if c.IsSet("debug-dir") {
		cfg.DebugDir = c.Path("debug-dir")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger creates the logger for cfg. The returned close function flushes
// the log file, if any.
func newLogger(c *cli.Context, cfg config.Config, loc *locale.Localizer) (ports.Logger, func() error, error) {
	if c.Bool("quiet") {
		return logger.NewNoop(), func() error { return nil }, nil
	}
	if cfg.LogFile != "" {
		l, closeFn, err := logger.NewFileLogger(cfg.LogFile, cfg.Level())
		if err != nil {
			return nil, nil, err
		}
		return l.WithTranslator(loc.F), closeFn, nil
	}
	return logger.NewConsole(cfg.Level()).WithTranslator(loc.F), func() error { return nil }, nil
}

// openCredentials opens the credential database. AINSPIRE_API_KEY, when
// set, takes precedence over the stored key.
func openCredentials(cfg config.Config) (*sqlitestore.Store, ports.CredentialStore, error) {
	db, err := sqlitestore.Open(cfg.CredentialDB)
	if err != nil {
		return nil, nil, fmt.Errorf("open credential store: %w", err)
	}
	var creds ports.CredentialStore = db.Credentials()
	if cfg.APIKey != "" {
		creds = newEnvCredentials(cfg.APIKey, creds)
	}
	return db, creds, nil
}

// session holds the adapters shared by extract and serve.
type session struct {
	cfg     config.Config
	loc     *locale.Localizer
	log     ports.Logger
	fs      ports.FileSystem
	creds   ports.CredentialStore
	metrics *prommetrics.Metrics
	orch    *orchestrator.Orchestrator
	closers []func() error
}

func (r *session) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
}

func newSession(c *cli.Context) (*session, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	loc := locale.MustNew(cfg.Language)

	log, closeLog, err := newLogger(c, cfg, loc)
	if err != nil {
		return nil, err
	}
	rt := &session{cfg: cfg, loc: loc, log: log, closers: []func() error{closeLog}}

	db, creds, err := openCredentials(cfg)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.closers = append(rt.closers, db.Close)
	rt.creds = creds

	// Create adapters
	fs := osfilesystem.New()
	rt.fs = fs
	renderer := ggrenderer.New()

	ffmpegPath, err := ffmpegdecoder.FindFFmpeg(cfg.FFmpegPath)
	if err != nil {
		rt.Close()
		return nil, err
	}
	var fallback ports.VideoProber
	if ffprobePath, err := ffmpegdecoder.FindFFprobe(ffmpegPath); err == nil {
		fallback = ffmpegdecoder.NewProber(ffprobePath)
	} else {
		log.Warn("ffprobe not found, only MP4 files can be probed: %v", err)
	}
	prober := smartprobe.New(mp4probe.New(), fallback, log)
	grabber, err := ffmpegdecoder.New(prober, ffmpegdecoder.Options{FFmpegPath: ffmpegPath})
	if err != nil {
		rt.Close()
		return nil, err
	}

	// Create debug sink
	var sink ports.DebugSink
	if cfg.Debug {
		if err := fs.MkdirAll(cfg.DebugDir); err != nil {
			rt.Close()
			return nil, fmt.Errorf("create debug directory: %w", err)
		}
		sink = filesink.New(cfg.DebugDir, fs)
	} else {
		sink = nullsink.New()
	}

	// Create stages
	sampler := sample.New(grabber, renderer, sink, log, cfg.SampleOptions())
	classifier := openaiclassifier.New(creds, openaiclassifier.Options{
		Model:   cfg.Classifier.Model,
		BaseURL: cfg.Classifier.BaseURL,
		Timeout: cfg.Classifier.Timeout(),
	}, log)
	classifyStage := classify.New(classifier, sink, log)

	rt.metrics = prommetrics.New()
	rt.orch = orchestrator.New(
		sampler,
		classifyStage,
		collection.NewStore(),
		creds,
		loc,
		rt.metrics,
		log,
		cfg.ToOrchestratorConfig(),
	)
	return rt, nil
}

func runExtract(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.Exit(l10n.T("No videos given"), 2)
	}

	rt, err := newSession(c)
	if err != nil {
		return err
	}
	defer rt.Close()
	loc, log, orch := rt.loc, rt.log, rt.orch

	if _, err := rt.creds.Load(c.Context); errors.Is(err, ports.ErrNoCredential) {
		return cli.Exit(loc.T(locale.MsgMissingAPIKey), 2)
	} else if err != nil {
		return err
	}

	if path := c.Path("import"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		n, err := orch.Store().Import(f)
		f.Close()
		if err != nil {
			return cli.Exit(importMessage(loc, err), 2)
		}
		log.Info("Imported %d image(s)", n)
	}

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	// The first interrupt stops extraction and lets queued frames finish;
	// the second aborts.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
			return
		}
		log.Warn("Interrupted, finishing queued frames (interrupt again to abort)...")
		orch.CancelVideos()
		select {
		case <-sigCh:
			log.Warn("Aborting")
			cancel()
		case <-ctx.Done():
		}
	}()

	orch.Start(ctx)
	defer orch.Shutdown()

	var sources []*pipeline.VideoSource
	for _, path := range c.Args().Slice() {
		if _, err := os.Stat(path); err != nil {
			log.Error("Cannot read %s: %v", path, err)
			continue
		}
		sources = append(sources, pipeline.NewVideoSource(
			filepath.Base(path), path, mime.TypeByExtension(strings.ToLower(filepath.Ext(path))), nil))
	}
	_, rejected := orch.Enqueue(sources...)
	for _, name := range rejected {
		log.Warn("%s", loc.F(locale.MsgNotAVideo, name))
	}

	go reportProgress(ctx, orch, log)

	if err := orch.Wait(ctx); err != nil {
		return fmt.Errorf("wait for pipeline: %w", err)
	}

	select {
	case alert := <-orch.Alerts():
		log.Error("%s", alert)
	default:
	}

	var buf bytes.Buffer
	if err := orch.Store().Export(&buf); err != nil {
		return err
	}
	out := c.Path("out")
	if err := rt.fs.WriteFile(out, buf.Bytes()); err != nil {
		return fmt.Errorf("write collection: %w", err)
	}
	log.Info("Collection of %d image(s) saved to %s", len(orch.Store().Images()), out)

	if path := c.Path("summary"); path != "" {
		w := summarizer.NewWriter(summarizer.NewMarkdownFormatter(summarizer.WithTranslator(loc.T)), rt.fs)
		if err := w.Write(path, orch.Report()); err != nil {
			return err
		}
		if path != summarizer.StdoutPath {
			log.Info("Summary saved to %s", path)
		}
	}

	if orch.LastError() != nil {
		return cli.Exit(loc.T(locale.MsgInvalidAPIKey), 3)
	}
	return nil
}

// reportProgress logs the status line whenever it changes.
func reportProgress(ctx context.Context, orch *orchestrator.Orchestrator, log ports.Logger) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	last := ""
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if msg := orch.StatusMessage(); msg != last {
				last = msg
				log.Info("%s", msg)
			}
		}
	}
}

func importMessage(loc *locale.Localizer, err error) string {
	if errors.Is(err, collection.ErrInvalidImport) {
		return loc.T(locale.MsgInvalidJSON)
	}
	return loc.T(locale.MsgJSONParseError)
}

func runServe(c *cli.Context) error {
	rt, err := newSession(c)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt.orch.Start(ctx)
	defer rt.orch.Shutdown()

	srv := server.New(rt.orch, rt.fs, rt.creds, rt.log, server.Options{Metrics: rt.metrics.Handler()})
	httpServer := srv.HTTPServer(rt.cfg.Listen)

	errCh := make(chan error, 1)
	go func() {
		rt.log.Info("Listening on %s", rt.cfg.Listen)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	rt.log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// keyStore opens only the credential database, without the pipeline.
func keyStore(c *cli.Context) (*sqlitestore.Store, *locale.Localizer, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, err
	}
	db, err := sqlitestore.Open(cfg.CredentialDB)
	if err != nil {
		return nil, nil, err
	}
	return db, locale.MustNew(cfg.Language), nil
}

func runKeySet(c *cli.Context) error {
	token := strings.TrimSpace(c.Args().First())
	if token == "" {
		return cli.Exit(l10n.T("Usage: ainspire key set KEY"), 2)
	}
	db, loc, err := keyStore(c)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Credentials().Save(c.Context, token); err != nil {
		return err
	}
	fmt.Println(loc.T(locale.MsgCredentialSaved))
	return nil
}

func runKeyClear(c *cli.Context) error {
	db, loc, err := keyStore(c)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Credentials().Clear(c.Context); err != nil {
		return err
	}
	fmt.Println(loc.T(locale.MsgCredentialCleared))
	return nil
}

func runKeyShow(c *cli.Context) error {
	db, loc, err := keyStore(c)
	if err != nil {
		return err
	}
	defer db.Close()

	token, err := db.Credentials().Load(c.Context)
	if errors.Is(err, ports.ErrNoCredential) {
		fmt.Println(loc.T(locale.MsgMissingAPIKey))
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Println(maskKey(token))
	return nil
}

// maskKey keeps the first three and last four characters of a key.
func maskKey(token string) string {
	if len(token) <= 8 {
		return strings.Repeat("*", len(token))
	}
	return token[:3] + strings.Repeat("*", len(token)-7) + token[len(token)-4:]
}

func runFilters(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit(l10n.T("Usage: ainspire filters COLLECTION.json"), 2)
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	loc := locale.MustNew(cfg.Language)

	f, err := os.Open(c.Args().First())
	if err != nil {
		return err
	}
	defer f.Close()

	images, err := collection.Decode(f)
	if err != nil {
		return cli.Exit(importMessage(loc, err), 2)
	}
	fmt.Print(formatFilters(loc, collection.OptionsFor(images)))
	return nil
}

// formatFilters renders one line per category with its labels.
func formatFilters(loc *locale.Localizer, opts collection.Options) string {
	var b strings.Builder
	for _, cat := range pipeline.Categories {
		labels, ok := opts[cat]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", loc.Category(cat), strings.Join(labels, ", "))
	}
	return b.String()
}
