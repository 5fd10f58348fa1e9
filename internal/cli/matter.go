package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"oaresponse/internal/app"
	"oaresponse/internal/domain/services"
)

var (
	ingestUser         string
	ingestJurisdiction string
	ingestTitle        string

	reocrReextract bool

	exportFormat string
	exportOut    string

	opTimeout time.Duration
)

var uploadCmd = &cobra.Command{
	Use:   "upload <path>",
	Short: "Store a local PDF in the blob store and print its file_id",
	Long: `Stores the PDF under a fresh random key in the configured blob store.
Pass the printed file_id to ingest.

Example:
  oactl upload ./office-action.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		return withApp(ctx, func(a *app.App) error {
			result, err := a.Matters.Upload(ctx, &services.UploadRequest{
				Filename: filepath.Base(args[0]),
				Data:     data,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		})
	},
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <file-id>",
	Short: "Ingest an uploaded office action for a user",
	Long: `Downloads the PDF stored under file-id, runs OCR and extraction and
creates a matter owned by --user.

Example:
  oactl ingest 3f2a.../office-action.pdf --user 6a1e... --jurisdiction EPO`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		return withApp(ctx, func(a *app.App) error {
			result, err := a.Matters.Ingest(ctx, ingestUser, &services.IngestRequest{
				FileID:       args[0],
				Jurisdiction: ingestJurisdiction,
				Title:        ingestTitle,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		})
	},
}

var reocrCmd = &cobra.Command{
	Use:   "reocr <matter-id>",
	Short: "Re-run OCR on a matter's office action",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		return withApp(ctx, func(a *app.App) error {
			result, err := a.Matters.CleanupOCR(ctx, "", &services.CleanupOCRRequest{
				MatterID:  args[0],
				Reextract: reocrReextract,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		})
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <matter-id>",
	Short: "Render the latest draft of a matter to a file",
	Long: `Writes the latest draft as txt, md, html or pdf. The file name defaults
to the one the API would send.

Example:
  oactl export 0b6f... --format pdf --out ./responses`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		return withApp(ctx, func(a *app.App) error {
			file, err := a.Exports.Export(ctx, "", &services.ExportRequest{
				MatterID: args[0],
				Format:   exportFormat,
			})
			if err != nil {
				return err
			}
			path := exportPath(exportOut, file.Filename)
			if err := os.WriteFile(path, file.Body, 0644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		})
	},
}

var draftsCmd = &cobra.Command{
	Use:   "drafts <matter-id>",
	Short: "List every draft version of a matter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		return withApp(ctx, func(a *app.App) error {
			drafts, err := a.Drafts.ListDrafts(ctx, "", args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, drafts)
		})
	},
}

func init() {
	rootCmd.PersistentFlags().DurationVar(&opTimeout, "timeout", 5*time.Minute, "timeout for a single operation")

	ingestCmd.Flags().StringVar(&ingestUser, "user", "", "owner user ID (required)")
	ingestCmd.Flags().StringVar(&ingestJurisdiction, "jurisdiction", "USPTO", "USPTO, EPO or WIPO")
	ingestCmd.Flags().StringVar(&ingestTitle, "title", "", "matter title (defaults to the file name)")
	_ = ingestCmd.MarkFlagRequired("user")

	reocrCmd.Flags().BoolVar(&reocrReextract, "reextract", false, "rebuild the extraction from the new text")

	exportCmd.Flags().StringVar(&exportFormat, "format", "txt", "txt, md, html or pdf")
	exportCmd.Flags().StringVar(&exportOut, "out", ".", "output file or directory")

	rootCmd.AddCommand(uploadCmd, ingestCmd, reocrCmd, exportCmd, draftsCmd)
}

// exportPath resolves --out: an existing directory gets the default file name
func exportPath(out, filename string) string {
	if out == "" {
		return filename
	}
	if info, err := os.Stat(out); err == nil && info.IsDir() {
		return filepath.Join(out, filename)
	}
	return out
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
