package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"go-guest-barcodes/internal/models"
	"go-guest-barcodes/internal/services"

	"github.com/spf13/cobra"
)

type generateOptions struct {
	category    string
	room        string
	count       string
	date        string
	symbology   string
	zipPath     string
	pdfPath     string
	previewPath string
}

func newGenerateCmd(root *rootOptions) *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a batch of guest barcodes and export it",
		Long: `Generate one barcode per guest and export the batch.

Categories: regular, with-room, without-room, waterpark (or 0-3).
A room number is required for with-room guests and rejected otherwise.
Without --zip, --pdf or --preview a timestamped ZIP is written to the
configured output directory.`,
		Example: `  guestcodes generate --category with-room --room 204 --count 3
  guestcodes generate --category waterpark --count 20 --pdf waterpark.pdf --zip waterpark.zip`,
		Args: cobra.NoArgs,
		RunE: root.runE(func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, root, opts)
		}),
	}

	cmd.Flags().StringVarP(&opts.category, "category", "c", models.CategoryWithRoom.String(), "Guest category")
	cmd.Flags().StringVarP(&opts.room, "room", "r", "", "Room number (with-room only)")
	cmd.Flags().StringVarP(&opts.count, "count", "n", "", "Guest count")
	cmd.Flags().StringVar(&opts.date, "date", "", "Issue date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&opts.symbology, "symbology", "", "Symbology: code128 or qr (default from config)")
	cmd.Flags().StringVar(&opts.zipPath, "zip", "", "Write a ZIP archive of PNG images")
	cmd.Flags().StringVar(&opts.pdfPath, "pdf", "", "Write a printable multi-page PDF")
	cmd.Flags().StringVar(&opts.previewPath, "preview", "", "Write a PNG preview sheet")

	return cmd
}

func runGenerate(cmd *cobra.Command, root *rootOptions, opts *generateOptions) error {
	app := root.app
	if opts.symbology != "" {
		cfg := app.Config.Barcode
		cfg.Symbology = opts.symbology
		if cfg.Symbology != services.SymbologyCode128 && cfg.Symbology != services.SymbologyQR {
			return fmt.Errorf("%w: unsupported symbology %q", models.ErrInvalidInput, opts.symbology)
		}
		app.Barcodes = services.NewBarcodeService(cfg)
		app.Batches = services.NewBatchService(app.IDs, app.Barcodes, app.Config.Export.MaxGuests, app.Clock, app.Logger)
	}

	date, err := services.ParseDate(opts.date)
	if err != nil {
		return err
	}

	batch, err := app.Batches.Generate(services.GenerateRequest{
		Category:   opts.category,
		RoomNumber: opts.room,
		GuestCount: opts.count,
		Date:       date,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d barcodes generated successfully!\n", batch.Len())
	for _, payload := range batch.Payloads() {
		fmt.Fprintf(out, "  %s\n", payload)
	}

	zipPath := opts.zipPath
	if zipPath == "" && opts.pdfPath == "" && opts.previewPath == "" {
		name := fmt.Sprintf("%s_%s.zip", app.Config.Export.ArchivePrefix, app.Clock.Now().Format("20060102_150405"))
		zipPath = filepath.Join(app.Config.Export.OutputDir, name)
	}

	// Every output is built before the first file is written
	var outputs []output
	if zipPath != "" {
		data, err := app.Exporter.ToArchive(batch)
		if err != nil {
			return err
		}
		outputs = append(outputs, output{path: zipPath, data: data, label: "Archive"})
	}

	if opts.pdfPath != "" {
		layout := services.LayoutFromConfig(app.Config.Page)
		data, err := app.PDF.ToDocument(batch, layout, app.Config.Page.DPI)
		if err != nil {
			return err
		}
		pages := (batch.Len() + layout.Capacity() - 1) / layout.Capacity()
		outputs = append(outputs, output{path: opts.pdfPath, data: data, label: "Document", detail: fmt.Sprintf(" (%d pages)", pages)})
	}

	if opts.previewPath != "" {
		data, err := app.Preview.Sheet(batch)
		if err != nil {
			return err
		}
		outputs = append(outputs, output{path: opts.previewPath, data: data, label: "Preview"})
	}

	if err := writeOutputs(outputs); err != nil {
		return err
	}
	for _, o := range outputs {
		fmt.Fprintf(out, "%s written to %s%s\n", o.label, o.path, o.detail)
	}
	return nil
}

type output struct {
	path   string
	data   []byte
	label  string
	detail string
}

// writeOutputs writes every output, removing the ones already written if a later write fails
func writeOutputs(outputs []output) error {
	for i, o := range outputs {
		if err := services.WriteFile(o.path, o.data); err != nil {
			for _, written := range outputs[:i] {
				_ = os.Remove(written.path)
			}
			return err
		}
	}
	return nil
}
