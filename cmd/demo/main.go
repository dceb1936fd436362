// Command demo opens a window and renders the deferred PBR demo scene.
//
//	demo --config renderer.toml
//	demo --write-config renderer.toml   write the defaults and exit
//	demo --dry-run 3                    record three frames without a GPU
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"

	"deferred-renderer/core"
	"deferred-renderer/engine"
	"deferred-renderer/internal/nullgpu"
	"deferred-renderer/internal/opengl"
)

func main() {
	var (
		configPath  = flag.String("config", "renderer.toml", "TOML config file, watched for changes")
		writeConfig = flag.String("write-config", "", "write the default config to this file and exit")
		dryRun      = flag.Int("dry-run", 0, "record this many frames on the null device and exit")
	)
	flag.Parse()

	if *writeConfig != "" {
		if err := core.WriteConfig(*writeConfig, core.DefaultConfig()); err != nil {
			core.LogFatal("write config: %v", err)
		}
		core.LogInfo("wrote %s", *writeConfig)
		return
	}

	cfg, err := core.LoadConfig(*configPath)
	if err != nil {
		core.LogFatal("%v", err)
	}
	if !core.SetLogLevel(cfg.Log.Level) {
		core.LogWarn("unknown log level %q", cfg.Log.Level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *dryRun > 0 {
		if err := runDry(ctx, cfg, *dryRun); err != nil {
			core.LogFatal("%v", err)
		}
		return
	}
	if err := run(ctx, cfg, *configPath); err != nil {
		core.LogFatal("%v", err)
	}
}

func run(ctx context.Context, cfg core.Config, configPath string) error {
	window, err := core.NewWindow(cfg.Window)
	if err != nil {
		return err
	}
	defer window.Destroy()

	dev, err := opengl.New(window, window.Width, window.Height)
	if err != nil {
		return err
	}
	defer dev.Close()

	app, err := engine.NewApp(cfg, dev, window, engine.NewDeferredScene())
	if err != nil {
		return err
	}
	defer app.Close()
	window.SetHandler(app)
	defer window.SetHandler(nil)

	watcher, err := engine.WatchConfig(configPath)
	if err != nil {
		core.LogWarn("config hot reload disabled: %v", err)
	} else {
		defer watcher.Close()
		app.SetReloads(watcher.C)
	}

	return app.Run(ctx)
}

// runDry renders frames on the recording device and logs the pass order,
// which checks a config and the frame graph on machines without a GPU.
func runDry(ctx context.Context, cfg core.Config, frames int) error {
	dev := nullgpu.New(cfg.Window.Width, cfg.Window.Height)
	defer dev.Close()

	app, err := engine.NewApp(cfg, dev, engine.NewHeadless(cfg.Window.Width, cfg.Window.Height), engine.NewDeferredScene())
	if err != nil {
		return err
	}
	defer app.Close()

	app.FrameLimit = frames
	if err := app.Run(ctx); err != nil {
		return err
	}

	var order []string
	seen := make(map[string]bool)
	for _, name := range dev.PassOrder() {
		if !seen[name] {
			seen[name] = true
			order = append(order, name)
		}
	}
	core.LogInfo("dry run: %d frames, %d commands", dev.Presents(), len(dev.Commands))
	core.LogInfo("passes: %s", strings.Join(order, " > "))
	return nil
}
