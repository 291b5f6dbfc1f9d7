// Package cli wires configuration, logging and the magnifier components into the
// lenzu command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/ironsheep/lenzu/internal/config"
	"github.com/ironsheep/lenzu/internal/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// BuildInfo is stamped in by the linker.
type BuildInfo struct {
	Version   string
	BuildTime string
	GitCommit string
}

// configKey is the flag annotation naming the config key a flag overrides.
const configKey = "lenzu_config_key"

// app is the state shared by all commands once PersistentPreRunE has run.
type app struct {
	info    BuildInfo
	cfgFile string
	stderr  io.Writer

	v   *viper.Viper
	cfg *config.Config
	log zerolog.Logger
}

// NewRootCommand builds the command tree.
func NewRootCommand(info BuildInfo) *cobra.Command {
	a := &app{info: info, stderr: os.Stderr}

	root := &cobra.Command{
		Use:   "lenzu",
		Short: "Cursor-following screen magnifier with Japanese OCR",
		Long: `lenzu follows the mouse cursor with a magnifying window. Press Space or
right-click to cycle through:

  free         magnify the area under the cursor
  move-window  magnify and drag the window along with the cursor
  capture      recognize the text once, convert it and overlay the result
  frozen       keep the result on screen

Escape quits.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		RunE:              a.runMagnifier,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.lenzu.toml)")
	configFlag(pf, "log-level", "log.level", "", "log level (trace, debug, info, warn, error)")
	configFlag(pf, "ocr-backend", "ocr.backend", "", "OCR backend: auto, tesseract or platform")
	configFlag(pf, "ocr-languages", "ocr.languages", "", "tesseract languages, e.g. jpn+jpn_vert, or auto")
	configFlag(pf, "translator", "translate.backend", "", "translator: kakasi, openai or none")
	configFlag(pf, "font", "overlay.font", "", "TrueType/OpenType font for the overlay")
	configFlag(pf, "dump-dir", "debug.dump_dir", "", "write raw and composed captures to this directory")

	root.Flags().Bool("platform-ocr", false, "use the operating system's OCR instead of tesseract")
	root.Flags().Int("magnify", 0, "zoom factor while following the cursor")
	annotate(root.Flags(), "magnify", "window.magnify")

	root.AddCommand(newOCRCommand(a), newLangsCommand(a), newVersionCommand(a))
	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute(ctx context.Context, info BuildInfo) int {
	root := NewRootCommand(info)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "lenzu: %v\n", err)
		return 1
	}
	return 0
}

func configFlag(fs *pflag.FlagSet, name, key, value, usage string) {
	fs.String(name, value, usage)
	annotate(fs, name, key)
}

func annotate(fs *pflag.FlagSet, name, key string) {
	if err := fs.SetAnnotation(name, configKey, []string{key}); err != nil {
		panic(err)
	}
}

// setup loads the configuration, applies flag overrides and builds the logger.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	v, err := config.NewViper(a.cfgFile)
	if err != nil {
		return err
	}
	a.v = v

	if err := bindFlags(cmd, v); err != nil {
		return err
	}

	cfg, err := config.Decode(v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	log, err := logging.New(cfg.Log.Level, a.stderr)
	if err != nil {
		return err
	}
	a.log = log
	if used := v.ConfigFileUsed(); used != "" {
		log.Debug().Str("file", used).Msg("config loaded")
	}
	return nil
}

// bindFlags reconciles annotated flags with viper. Flags given on the command line
// override the config; flags left alone show the configured value.
func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		keys, ok := f.Annotations[configKey]
		if !ok || len(keys) == 0 || bindErr != nil {
			return
		}
		key := keys[0]

		if f.Changed {
			v.Set(key, f.Value.String())
			return
		}
		if v.IsSet(key) {
			if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", v.Get(key))); err != nil {
				bindErr = fmt.Errorf("flag --%s from %s: %w", f.Name, key, err)
			}
		}
	})
	return bindErr
}
