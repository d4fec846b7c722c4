package cli

import (
	"fmt"
	"os"

	"go-guest-barcodes/internal/config"
	"go-guest-barcodes/internal/dependencies/clock"
	"go-guest-barcodes/internal/logger"
	"go-guest-barcodes/internal/scan"
	"go-guest-barcodes/internal/services"

	"github.com/spf13/cobra"
)

// Version is overridden at build time
var Version = "dev"

type rootOptions struct {
	configPath string
	logFile    string
	verbose    bool

	// clock is replaced in tests
	clock clock.Clock

	cfg *config.Config
	app *App
}

// App wires the services used by the commands
type App struct {
	Config   *config.Config
	Logger   *logger.StructuredLogger
	IDs      *services.IDService
	Barcodes *services.BarcodeService
	Batches  *services.BatchService
	Exporter *services.ExportService
	PDF      *services.PDFService
	Preview  *services.PreviewService
	Decoder  *scan.Decoder
	Clock    clock.Clock
}

func NewApp(cfg *config.Config, log *logger.StructuredLogger, clk clock.Clock) *App {
	ids := services.NewIDService(cfg.Prefixes)
	barcodes := services.NewBarcodeService(cfg.Barcode)
	exporter := services.NewExportService(log)

	return &App{
		Config:   cfg,
		Logger:   log,
		IDs:      ids,
		Barcodes: barcodes,
		Batches:  services.NewBatchService(ids, barcodes, cfg.Export.MaxGuests, clk, log),
		Exporter: exporter,
		PDF:      services.NewPDFService(exporter, cfg.Export),
		Preview:  services.NewPreviewService(cfg.Preview),
		Decoder:  scan.NewDecoder(),
		Clock:    clk,
	}
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(&rootOptions{clock: clock.New()})
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "guestcodes",
		Short: "Generate sequential guest barcodes",
		Long: `guestcodes generates one Code 128 barcode per guest of a category,
then exports the batch as a ZIP of PNG images, a printable multi-page PDF
or a preview sheet.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if opts.app != nil {
				return opts.app.Logger.Close()
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "guestcodes.json", "Config file path")
	rootCmd.PersistentFlags().StringVar(&opts.logFile, "log-file", "", "Log file path, overrides config (use stdout or stderr for console)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Debug logging")

	rootCmd.AddCommand(newGenerateCmd(opts))
	rootCmd.AddCommand(newVerifyCmd(opts))
	rootCmd.AddCommand(newConfigCmd(opts))

	return rootCmd
}

func (o *rootOptions) setup() error {
	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return err
	}
	if o.logFile != "" {
		cfg.Logging.File = o.logFile
	}
	if o.verbose {
		cfg.Logging.Level = "debug"
	}

	log, err := logger.NewStructuredLogger(logger.LoggerConfig{
		Level:        logger.ParseLevel(cfg.Logging.Level),
		Service:      "guestcodes",
		Version:      Version,
		OutputPath:   cfg.Logging.File,
		EnableCaller: cfg.Logging.Caller,
	})
	if err != nil {
		return err
	}

	o.cfg = cfg
	o.app = NewApp(cfg, log, o.clock)
	log.LogSystemEvent("Configuration loaded", map[string]interface{}{
		"config": o.configPath,
	})
	return nil
}

// runE logs a failed command and closes the log, since cobra skips the
// post-run hooks when RunE fails
func (o *rootOptions) runE(run func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := run(cmd, args)
		if err != nil && o.app != nil {
			o.app.Logger.Error("Command failed", err, map[string]interface{}{
				"command": cmd.CommandPath(),
			})
			_ = o.app.Logger.Close()
		}
		return err
	}
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
