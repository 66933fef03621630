package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-gateway/component"
	"github.com/wippyai/wasm-gateway/engine"
	"github.com/wippyai/wasm-gateway/gateway"
	"github.com/wippyai/wasm-gateway/openapi"
)

var cli struct {
	Verbose bool `short:"v" help:"Enable debug logging."`

	Convert ConvertCmd `cmd:"" help:"Generate the OpenAPI document for a WIT interface."`
	Serve   ServeCmd   `cmd:"" help:"Serve a component's exports as JSON endpoints."`
	Explore ExploreCmd `cmd:"" help:"Call exported functions interactively."`
}

type DocsFlags struct {
	Title       string `help:"API title for the OpenAPI document."`
	APIVersion  string `name:"api-version" help:"API version for the OpenAPI document."`
	Description string `help:"API description for the OpenAPI document."`
}

func (f DocsFlags) config() openapi.Config {
	return openapi.Config{
		Title:       f.Title,
		Version:     f.APIVersion,
		Description: f.Description,
	}
}

type ConvertCmd struct {
	Wit    string `arg:"" type:"existingfile" help:"WIT interface description."`
	Output string `short:"o" type:"path" help:"Write the document here instead of stdout."`
	DocsFlags
}

func (c *ConvertCmd) Run(logger *zap.Logger) error {
	ifaces, err := parseWITFile(c.Wit)
	if err != nil {
		return err
	}

	// Conversion needs no runtime: every function binds to a stub so the
	// document covers the full export surface.
	stub := func(string, *component.Function) (engine.Callable, error) { return nil, nil }
	endpoints, err := gateway.BuildEndpoints(ifaces, stub, gateway.Options{}, logger)
	if err != nil {
		return err
	}

	doc := openapi.Build(gateway.Routes(endpoints), c.config())
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	out = append(out, '\n')

	if c.Output == "" {
		_, err = os.Stdout.Write(out)
		return err
	}
	return os.WriteFile(c.Output, out, 0o644)
}

type ServeCmd struct {
	Wit     string `arg:"" type:"existingfile" help:"WIT interface description."`
	Wasm    string `arg:"" type:"existingfile" help:"Compiled module implementing the interface."`
	Address string `default:"127.0.0.1" help:"Listen address."`
	Port    int    `default:"8080" help:"Listen port."`
	Swagger bool   `help:"Serve the interactive UI under /swagger/."`
	Strict  bool   `help:"Fail startup on path conflicts and unbindable functions."`
	DocsFlags
}

func (c *ServeCmd) Run(logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	endpoints, _, err := loadComponent(ctx, c.Wit, c.Wasm, c.Strict, logger)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", c.Address, c.Port)
	docs := c.config()
	docs.Servers = []string{"http://" + addr}

	d := gateway.NewDispatcher(engine.NewLease(), logger)
	srv := gateway.NewServer(endpoints, d, gateway.Config{
		Addr:    addr,
		Swagger: c.Swagger,
		Docs:    docs,
	}, logger)

	return srv.ListenAndServe(ctx)
}

type ExploreCmd struct {
	Wit  string `arg:"" type:"existingfile" help:"WIT interface description."`
	Wasm string `arg:"" type:"existingfile" help:"Compiled module implementing the interface."`
}

func (c *ExploreCmd) Run(logger *zap.Logger) error {
	return runExplorer(c.Wit, c.Wasm, logger)
}

// loadComponent parses the interface, loads the module, and binds every
// export.
func loadComponent(ctx context.Context, witPath, wasmPath string, strict bool, logger *zap.Logger) ([]gateway.Endpoint, *engine.CoreEngine, error) {
	ifaces, err := parseWITFile(witPath)
	if err != nil {
		return nil, nil, err
	}

	wasm, err := os.ReadFile(wasmPath)
	if err != nil {
		return nil, nil, fmt.Errorf("read module: %w", err)
	}

	eng := engine.NewCoreEngine(logger)
	if err := eng.Load(ctx, wasm); err != nil {
		return nil, nil, err
	}

	endpoints, err := gateway.BuildEndpoints(ifaces, eng.Bind, gateway.Options{Strict: strict}, logger)
	if err != nil {
		_ = eng.Close(ctx)
		return nil, nil, err
	}
	if len(endpoints) == 0 {
		_ = eng.Close(ctx)
		return nil, nil, fmt.Errorf("no bindable exports in %s", witPath)
	}
	return endpoints, eng, nil
}

func parseWITFile(path string) ([]component.Interface, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read interface: %w", err)
	}
	return component.Parse(string(src))
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("wasm-gateway"),
		kong.Description("Expose WebAssembly component exports as a JSON HTTP API."),
		kong.UsageOnError(),
	)

	var logger *zap.Logger
	var err error
	if cli.Verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx.FatalIfErrorf(ctx.Run(logger))
}
