package cli

import (
	"github.com/ironsheep/lenzu/internal/desktop"
	"github.com/ironsheep/lenzu/internal/logging"
	"github.com/ironsheep/lenzu/internal/magnifier"
	"github.com/spf13/cobra"
)

// runMagnifier opens the magnifier window and blocks until it closes.
func (a *app) runMagnifier(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	preferPlatform, err := cmd.Flags().GetBool("platform-ocr")
	if err != nil {
		return err
	}

	a.log.Info().Str("version", a.info.Version).Str("commit", a.info.GitCommit).Msg("lenzu starting")

	st, err := buildStack(ctx, a.cfg, preferPlatform, a.log)
	if err != nil {
		return err
	}

	w := a.cfg.Window
	host := desktop.NewHost(desktop.WindowOptions{Width: w.Width, Height: w.Height, TPS: w.TPS},
		logging.Component(a.log, "window"))

	machine := magnifier.NewMachine(magnifier.Deps{
		Cursor:   host,
		Monitors: desktop.NewMonitors(logging.Component(a.log, "monitors")),
		Display:  host,
		Capturer: desktop.ScreenGrabber{},
		Pipeline: st.pipeline,
	}, magnifier.Config{
		Magnify:       w.Magnify,
		HideOnCapture: w.HideOnCapture,
	}, logging.Component(a.log, "magnifier"))

	if err := host.Run(ctx, machine); err != nil {
		return err
	}
	a.log.Info().Msg("bye")
	return nil
}
