package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/flanksource/commons/logger"
	"github.com/spf13/cobra"

	"github.com/hon2be/dom-to-image/client"
	"github.com/hon2be/dom-to-image/renderer"
	"github.com/hon2be/dom-to-image/server"
	"github.com/hon2be/dom-to-image/shutdown"
)

// Build information (set by goreleaser)
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	rootCmd := newRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var logFlags logger.Flags

	rootCmd := &cobra.Command{
		Use:   "dom-to-image",
		Short: "Render SVG documents to PNG/JPEG/WebP through a headless browser",
		Long: `dom-to-image rasterizes SVG markup by loading it into a headless
browsing engine, measuring the rendered extent and capturing a screenshot
sized exactly to it. It runs either as a one-shot converter or as the
fallback-rendering HTTP service used by clients whose native capture path
produces lower-fidelity output.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Configure(logFlags)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&logFlags.Level, "log-level", "info", "Set the default log level")
	flags.CountVarP(&logFlags.LevelCount, "loglevel", "v", "Increase logging level")
	flags.BoolVar(&logFlags.JsonLogs, "json-logs", false, "Print logs in json format to stderr")
	flags.BoolVar(&logFlags.LogToStderr, "log-to-stderr", true, "Log to stderr instead of stdout")

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newRenderCommand())
	rootCmd.AddCommand(newVersionCommand())
	return rootCmd
}

func newServeCommand() *cobra.Command {
	cfg := server.Config{Addr: ":3000", Driver: renderer.DefaultDriver}
	var configFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the fallback-rendering HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configFile != "" {
				fileCfg, err := server.LoadConfig(configFile)
				if err != nil {
					return err
				}
				merged := *fileCfg
				// Flags changed from their defaults win over file values.
				merged.Merge(flagOverrides(cmd, cfg))
				if merged.Addr == "" {
					merged.Addr = cfg.Addr
				}
				if merged.Driver == "" {
					merged.Driver = cfg.Driver
				}
				cfg = merged
			}

			srv := &http.Server{
				Addr: cfg.Addr,
				Handler: server.New(server.Options{
					Driver:   cfg.Driver,
					ExecPath: cfg.ExecPath,
					DebugDir: cfg.DebugDir,
					Version:  version,
				}).Handler(),
			}

			shutdown.AddHookWithPriority("http listener", shutdown.PriorityIngress, func() {
				if err := srv.Close(); err != nil {
					logger.Warnf("closing http server: %v", err)
				}
			})
			go shutdown.WaitForSignal()

			logger.Infof("dom-to-image %s listening on %s (driver=%s)", version, cfg.Addr, cfg.Driver)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&cfg.Addr, "addr", cfg.Addr, "Listen address")
	cmd.Flags().StringVar(&cfg.Driver, "driver", cfg.Driver,
		fmt.Sprintf("Engine driver (%s)", strings.Join(renderer.DriverNames(), ", ")))
	cmd.Flags().StringVar(&cfg.ExecPath, "exec-path", "", "Browser executable override")
	cmd.Flags().StringVar(&cfg.DebugDir, "debug-dir", "", "Dump render artifacts to this directory")
	cmd.Flags().StringVar(&configFile, "config", "", "YAML config file")
	return cmd
}

func flagOverrides(cmd *cobra.Command, cfg server.Config) server.Config {
	var overrides server.Config
	if cmd.Flags().Changed("addr") {
		overrides.Addr = cfg.Addr
	}
	if cmd.Flags().Changed("driver") {
		overrides.Driver = cfg.Driver
	}
	if cmd.Flags().Changed("exec-path") {
		overrides.ExecPath = cfg.ExecPath
	}
	if cmd.Flags().Changed("debug-dir") {
		overrides.DebugDir = cfg.DebugDir
	}
	return overrides
}

func newRenderCommand() *cobra.Command {
	var (
		format   string
		quality  float64
		scale    float64
		timeout  time.Duration
		driver   string
		execPath string
		output   string
		remote   string
	)

	cmd := &cobra.Command{
		Use:   "render <svg-file>",
		Short: "Convert one SVG file to a raster image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			svg := string(data)

			if output == "" {
				output = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + "." + format
			}

			if remote != "" {
				transport := &client.Transport{ServiceURL: remote}
				img, err := transport.Render(cmd.Context(), svg, client.RenderOptions{
					OutputType:        format,
					Quality:           quality,
					DeviceScaleFactor: scale,
				})
				if err != nil {
					return err
				}
				if err := os.WriteFile(output, img.Data, 0o644); err != nil {
					return err
				}
				logger.Infof("rendered %dx%d %s via %s -> %s", img.Width, img.Height, img.Format, remote, output)
				return nil
			}

			result, err := renderer.Render(cmd.Context(), svg, renderer.Options{
				OutputType:        format,
				Quality:           quality,
				DeviceScaleFactor: scale,
				Timeout:           timeout,
				Driver:            driver,
				ExecPath:          execPath,
				SavePath:          output,
			})
			if err != nil {
				return err
			}
			logger.Infof("rendered %dx%d %s -> %s", result.Width, result.Height, result.Format, result.SavedPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", renderer.FormatPNG, "Output format (png, jpeg, webp)")
	cmd.Flags().Float64Var(&quality, "quality", renderer.DefaultQuality, "JPEG quality in [0,1]")
	cmd.Flags().Float64Var(&scale, "scale", renderer.DefaultDeviceScaleFactor, "Device scale factor")
	cmd.Flags().DurationVar(&timeout, "timeout", renderer.DefaultTimeout, "Content-load timeout")
	cmd.Flags().StringVar(&driver, "driver", "", "Engine driver (default chrome)")
	cmd.Flags().StringVar(&execPath, "exec-path", "", "Browser executable override")
	cmd.Flags().StringVar(&output, "out", "", "Output file (default: input name with format extension)")
	cmd.Flags().StringVar(&remote, "remote", "", "Render through a running fallback service at this URL")
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("dom-to-image %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}
