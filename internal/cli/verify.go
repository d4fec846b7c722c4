package cli

import (
	"errors"
	"fmt"
	"os"

	"go-guest-barcodes/internal/models"
	"go-guest-barcodes/internal/monitoring"
	"go-guest-barcodes/internal/scan"

	"github.com/spf13/cobra"
)

func newVerifyCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <archive.zip>",
		Short: "Decode every barcode in an archive and check it matches its file name",
		Args:  cobra.ExactArgs(1),
		RunE: root.runE(func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("%w: %v", models.ErrIOFailure, err)
			}

			report, err := root.app.Decoder.VerifyArchive(data)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			tracker := monitoring.NewErrorTracker(0, root.app.Clock)
			for _, entry := range report.Entries {
				if entry.OK() {
					fmt.Fprintf(out, "OK    %s\n", entry.Name)
					continue
				}
				detail := entry.Error
				if detail == "" {
					detail = fmt.Sprintf("decoded %q", entry.Decoded)
				}
				fmt.Fprintf(out, "FAIL  %s: %s\n", entry.Name, detail)
			}
			for _, entry := range report.Failures() {
				captureFailure(tracker, entry)
			}

			failed := tracker.Total()
			root.app.Logger.LogBusinessEvent("Archive verified", "archive", "verify", map[string]interface{}{
				"path":     args[0],
				"entries":  len(report.Entries),
				"failures": failed,
			})
			if failed > 0 {
				for _, details := range tracker.GetErrors() {
					fmt.Fprintf(out, "%dx %s\n", details.Count, describe(details))
					root.app.Logger.Warn("Verification failure", map[string]interface{}{
						"component": details.Component,
						"operation": details.Operation,
						"error":     details.Error,
						"count":     details.Count,
						"entries":   details.Subjects,
					})
				}
				return fmt.Errorf("%d of %d barcodes did not match", failed, len(report.Entries))
			}
			fmt.Fprintf(out, "%d barcodes verified\n", len(report.Entries))
			return nil
		}),
	}
}

// captureFailure groups decode errors by cause and mismatches together
func captureFailure(tracker *monitoring.ErrorTracker, entry scan.EntryCheck) {
	if entry.Error != "" {
		tracker.CaptureBusinessError("scan", "decode", "Decode failed", entry.Name, errors.New(entry.Error), monitoring.HIGH, nil)
		return
	}
	tracker.CaptureBusinessError("scan", "verify", "Payload does not match file name", entry.Name, nil, monitoring.MEDIUM, map[string]interface{}{
		"decoded": entry.Decoded,
	})
}

func describe(details monitoring.ErrorDetails) string {
	if details.Error == "" {
		return details.Message
	}
	return details.Message + ": " + details.Error
}
