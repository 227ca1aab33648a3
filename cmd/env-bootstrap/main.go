package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/BrianJOC/env-bootstrap/phases"
	"github.com/BrianJOC/env-bootstrap/phases/appname"
	"github.com/BrianJOC/env-bootstrap/phases/environments"
	"github.com/BrianJOC/env-bootstrap/phases/publish"
	"github.com/BrianJOC/env-bootstrap/phases/setuptype"
	"github.com/BrianJOC/env-bootstrap/pkg/phasedapp"
	"github.com/BrianJOC/env-bootstrap/pkg/phasedapp/bundles/bootstrap"
	"github.com/BrianJOC/env-bootstrap/pkg/topology"
	"github.com/BrianJOC/env-bootstrap/utils/config"
	"github.com/BrianJOC/env-bootstrap/utils/eventpayload"
	"github.com/BrianJOC/env-bootstrap/utils/registry"
)

type options struct {
	configPath string
	output     string
	format     string
	registry   string
	app        string
	setup      string
	headless   bool
	dryRun     bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "settings file (default ./"+config.FileName+")")
	flag.StringVar(&opts.output, "output", "", "write the payload to this file instead of stdout")
	flag.StringVar(&opts.format, "format", "", "payload format: yaml or json")
	flag.StringVar(&opts.registry, "registry", "", "YAML file with extra orchestrators and CI providers")
	flag.StringVar(&opts.app, "app", "", "application name; skips the first prompt")
	flag.StringVar(&opts.setup, "setup", "", "setup type: dev, dev-test, dev-test-prod or custom")
	flag.BoolVar(&opts.headless, "headless", false, "accept every default without starting the TUI (needs -app and a non-custom -setup)")
	flag.BoolVar(&opts.dryRun, "dry-run", false, "collect environments and print the summary without writing a payload")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts, os.Stdout); err != nil {
		log.Fatalf("env-bootstrap: %v", err)
	}
}

func run(ctx context.Context, opts options, stdout io.Writer) error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	cfg, err := config.Load(wd, opts.configPath)
	if err != nil {
		return err
	}
	applyFlags(&cfg, opts)

	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	reg := registry.Default()
	if cfg.RegistryFile != "" {
		if reg, err = registry.Load(cfg.RegistryFile); err != nil {
			return err
		}
	}

	// The TUI owns stdout while it runs, so stream output is buffered and
	// printed after it exits. Interactive runs emit only the final event.
	var payloadBuf bytes.Buffer
	writerOpts := []eventpayload.Option{eventpayload.WithFormat(cfg.Format)}
	if cfg.Output != "" {
		writerOpts = append(writerOpts, eventpayload.WithOutputPath(cfg.Output))
	}
	writer, err := eventpayload.NewWriter(&payloadBuf, writerOpts...)
	if err != nil {
		return err
	}

	var lines []string
	if opts.headless {
		lines, err = runHeadless(ctx, opts, cfg, reg, writer, logger)
	} else {
		lines, err = runInteractive(ctx, opts, reg, writer, logger)
	}
	if err != nil {
		return err
	}

	for _, line := range lines {
		fmt.Fprintln(stdout, line)
	}
	if payloadBuf.Len() > 0 {
		fmt.Fprintln(stdout)
		_, err = payloadBuf.WriteTo(stdout)
		return err
	}
	if cfg.Output != "" && !opts.dryRun {
		fmt.Fprintf(stdout, "\n%s payload written to %s\n", eventpayload.EventName, cfg.Output)
	}
	return nil
}

func applyFlags(cfg *config.Config, opts options) {
	if opts.output != "" {
		cfg.Output = opts.output
	}
	if opts.format != "" {
		cfg.Format = opts.format
	}
	if opts.registry != "" {
		cfg.RegistryFile = opts.registry
	}
}

func newLogger(cfg config.Config) (*slog.Logger, func(), error) {
	out := io.Discard
	closeFn := func() {}
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out = f
		closeFn = func() { _ = f.Close() }
	}
	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{Level: cfg.Level()})
	return slog.New(handler).With("service", "env-bootstrap"), closeFn, nil
}

func runInteractive(ctx context.Context, opts options, reg *registry.Registry, writer *eventpayload.Writer, logger *slog.Logger) ([]string, error) {
	list, err := bootstrap.Bundle(reg, writer.Deferred())
	if err != nil {
		return nil, err
	}
	if opts.dryRun {
		list = phasedapp.SelectPhases(list, phasedapp.Not(phasedapp.WithTag("output")))
	}

	app, err := phasedapp.New(
		phasedapp.WithTitle("Environment Bootstrap"),
		phasedapp.WithPhases(list...),
		phasedapp.WithSummary(bootstrap.Summary),
		phasedapp.WithManagerOptions(phases.WithObserver(phases.NewLogObserver(logger))),
		phasedapp.WithSeed(func(pc *phases.Context) {
			if opts.app != "" {
				appname.Seed(pc, opts.app)
			}
			if opts.setup != "" {
				setuptype.Seed(pc, topology.ParseSetupType(opts.setup))
			}
		}),
	)
	if err != nil {
		return nil, err
	}
	if err := app.Start(ctx); err != nil {
		return nil, fmt.Errorf("tui exited with error: %w", err)
	}

	result, runErr := app.Result()
	if errors.Is(runErr, phasedapp.ErrIncomplete) {
		logger.Info("wizard aborted")
		return nil, runErr
	}
	if runErr != nil {
		return nil, runErr
	}
	if err := emitEvent(ctx, writer, result); err != nil {
		return nil, err
	}
	return environments.Summary(result), nil
}

// emitEvent writes the event published into result. A restart replaces the
// phase context, so only the last completed run is written.
func emitEvent(ctx context.Context, writer *eventpayload.Writer, result *phases.Context) error {
	if result == nil {
		return nil
	}
	ev, ok := publish.EventFromContext(result)
	if !ok {
		return nil
	}
	return writer.Emit(ctx, ev)
}

func runHeadless(ctx context.Context, opts options, cfg config.Config, reg *registry.Registry, writer *eventpayload.Writer, logger *slog.Logger) ([]string, error) {
	if opts.app == "" {
		return nil, errors.New("-headless needs -app")
	}
	setup := topology.ParseSetupType(opts.setup)
	if setup == topology.SetupCustom {
		return nil, errors.New("-headless needs a non-custom -setup")
	}

	appCtx := phases.NewContext()
	appname.Seed(appCtx, opts.app)
	if err := appname.New().Run(ctx, appCtx); err != nil {
		return nil, err
	}
	app, err := appname.FromContext(appCtx)
	if err != nil {
		return nil, err
	}

	fallback := topology.FallbackFunc(func(topology.Category) (topology.Ref, error) {
		return topology.Ref(cfg.DefaultCI), nil
	})
	lookup := topology.LookupFunc(func(category topology.Category) (topology.Ref, bool, error) {
		item, ok := reg.Get(category, cfg.DefaultCI)
		return topology.Ref(item.ID), ok, nil
	})
	payload := topology.NewPayload()
	err = topology.AddDefaults(payload, app, setup, func(topology.CanonicalEnvironment) (topology.Ref, error) {
		return topology.Resolve(lookup, fallback, topology.CategoryCI)
	})
	if err != nil {
		return nil, err
	}
	payload.Finalize()
	logger.Info("headless payload built", "app", app, "setup", setup.Key(), "environments", payload.Len())

	if !opts.dryRun {
		if _, err := writer.Write(ctx, payload, app); err != nil {
			return nil, err
		}
	}
	var lines []string
	for line := range payload.Summarize() {
		lines = append(lines, line)
	}
	return lines, nil
}
