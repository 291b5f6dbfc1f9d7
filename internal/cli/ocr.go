package cli

import (
	"encoding/json"
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/ironsheep/lenzu/internal/imaging"
	"github.com/spf13/cobra"
)

// ocrReport is the --json output of the ocr command.
type ocrReport struct {
	Backend      string   `json:"backend"`
	Lines        []string `json:"lines"`
	Text         string   `json:"text"`
	Translated   string   `json:"translated,omitempty"`
	OCRError     string   `json:"ocr_error,omitempty"`
	TranslateErr string   `json:"translate_error,omitempty"`
	Output       string   `json:"output,omitempty"`
}

func newOCRCommand(a *app) *cobra.Command {
	var (
		out      string
		region   string
		asJSON   bool
		platform bool
	)

	cmd := &cobra.Command{
		Use:   "ocr <image>",
		Short: "Recognize, convert and overlay the text of an image file",
		Long: `Runs the capture pipeline on an image file instead of the screen: OCR, then
the configured translator, then the overlay. The recognized and converted text is
printed; --out writes the composed image.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			img, err := imaging.LoadImage(args[0])
			if err != nil {
				return err
			}
			if region != "" {
				r, err := parseRegion(region)
				if err != nil {
					return err
				}
				if img, err = imaging.Crop(img, r.Add(img.Bounds().Min)); err != nil {
					return err
				}
			}

			st, err := buildStack(ctx, a.cfg, platform, a.log)
			if err != nil {
				return err
			}
			outcome := st.pipeline.Run(ctx, img)

			report := ocrReport{Backend: st.engine.Name(), Lines: outcome.OCR.Lines, Text: outcome.OCR.FullText}
			if outcome.OCRErr != nil {
				report.OCRError = outcome.OCRErr.Error()
			}
			if outcome.Translation != nil {
				report.Translated = outcome.Translation.Text
			}
			if outcome.TranslateErr != nil {
				report.TranslateErr = outcome.TranslateErr.Error()
			}

			if out != "" {
				if err := imaging.SaveImage(out, outcome.Display()); err != nil {
					return err
				}
				report.Output = out
			}

			if err := printReport(cmd, report, asJSON); err != nil {
				return err
			}
			if outcome.OCRErr != nil {
				return fmt.Errorf("recognition failed: %w", outcome.OCRErr)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "write the composed image to this file")
	cmd.Flags().StringVar(&region, "region", "", "only process x,y,width,height of the image")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	cmd.Flags().BoolVar(&platform, "platform-ocr", false, "use the operating system's OCR instead of tesseract")
	return cmd
}

func printReport(cmd *cobra.Command, r ocrReport, asJSON bool) error {
	w := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}

	fmt.Fprintf(w, "OCR (%s):\n%s\n", r.Backend, r.Text)
	if r.Translated != "" {
		fmt.Fprintf(w, "\nConverted:\n%s\n", r.Translated)
	}
	if r.Output != "" {
		fmt.Fprintf(w, "\nWrote %s\n", r.Output)
	}
	return nil
}

// parseRegion parses "x,y,width,height".
func parseRegion(s string) (image.Rectangle, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return image.Rectangle{}, fmt.Errorf("region %q: want x,y,width,height", s)
	}
	var n [4]int
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return image.Rectangle{}, fmt.Errorf("region %q: %w", s, err)
		}
		n[i] = v
	}
	if n[2] <= 0 || n[3] <= 0 {
		return image.Rectangle{}, fmt.Errorf("region %q: width and height must be positive", s)
	}
	return image.Rect(n[0], n[1], n[0]+n[2], n[1]+n[3]), nil
}
