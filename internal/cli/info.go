package cli

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/ironsheep/lenzu/internal/ocr"
	"github.com/spf13/cobra"
)

func newLangsCommand(a *app) *cobra.Command {
	var platform bool
	cmd := &cobra.Command{
		Use:   "langs",
		Short: "Initialize the OCR engine and translator and list their languages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := buildStack(cmd.Context(), a.cfg, platform, a.log)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "OCR        %-10s %s\n", st.engine.Name(), strings.Join(st.ocrLangs, ", "))
			fmt.Fprintf(w, "Translator %-10s %s\n", st.translator.Name(), strings.Join(st.trLangs, " -> "))
			return nil
		},
	}
	cmd.Flags().BoolVar(&platform, "platform-ocr", false, "use the operating system's OCR instead of tesseract")
	return cmd
}

func newVersionCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "lenzu %s\n", a.info.Version)
			fmt.Fprintf(w, "  Build time: %s\n", a.info.BuildTime)
			fmt.Fprintf(w, "  Git commit: %s\n", a.info.GitCommit)
			fmt.Fprintf(w, "  Platform:   %s/%s\n", runtime.GOOS, runtime.GOARCH)

			backend, err := ocr.ResolveBackend(ocrOptions(a.cfg, false, a.log))
			if err == nil {
				fmt.Fprintf(w, "  OCR:        %s\n", backend)
			}
			return nil
		},
	}
}
