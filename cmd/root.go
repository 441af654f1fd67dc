// cmd/root.go
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ColonelBlimp/textdump/internal/config"
	"github.com/ColonelBlimp/textdump/internal/loader"
	"github.com/ColonelBlimp/textdump/internal/render"
	"github.com/bmatcuk/doublestar"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "textdump [files...]",
	Short: "Print the fields of a serialized TextData record",
	Long: `Reads a serialized TextData record (a Java serialization stream, the
native TXDR format, or either one LZ4 compressed) and prints its
backgroundColor, fontStyle, textColor and thumbnail fields.

With no arguments the configured input file (java.bin) is read. Any
failure to read or decode a file is reported as a single
"Exception: ..." line.`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runDump,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags (override config file)
	rootCmd.PersistentFlags().StringP("format", "f", "text", "output format: "+strings.Join(config.Formats, ", "))
	rootCmd.PersistentFlags().StringP("bytes", "b", "base64", "blob encoding for text output: "+strings.Join(config.BytesEncodings, ", "))
	rootCmd.PersistentFlags().StringP("class", "c", "com.whatsapp.TextData", "expected Java class name")
	rootCmd.PersistentFlags().BoolP("debug", "D", false, "enable debug logging on stderr")
}

func initConfig() {
	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	bindFlags()
}

// bindFlags runs after config.Init so bindings survive viper.Reset.
func bindFlags() {
	flags := rootCmd.PersistentFlags()
	viper.BindPFlag("format", flags.Lookup("format"))
	viper.BindPFlag("bytes_encoding", flags.Lookup("bytes"))
	viper.BindPFlag("class_name", flags.Lookup("class"))
	viper.BindPFlag("debug", flags.Lookup("debug"))
}

func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func newLoader(settings *config.Settings, logger *slog.Logger) *loader.Loader {
	return loader.New(afero.NewOsFs(), loader.Options{
		ClassName:   settings.ClassName,
		StrictClass: settings.StrictClass,
		MaxBlobSize: settings.MaxBlobSize,
		Logger:      logger,
	})
}

func runDump(cmd *cobra.Command, args []string) error {
	settings, err := config.Get()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger := newLogger(cmd.ErrOrStderr(), settings.Debug)
	r, err := render.New(render.Options{Format: settings.Format, BytesEncoding: settings.BytesEncoding})
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	paths := expandInputs(args, settings.Input, logger)
	logger.Debug("starting dump", "inputs", len(paths), "format", settings.Format)

	l := newLoader(settings, logger)
	out := cmd.OutOrStdout()
	for i, path := range paths {
		if len(paths) > 1 {
			sep := ""
			if i > 0 {
				sep = "\n"
			}
			if _, err := fmt.Fprintf(out, "%s==> %s <==\n", sep, path); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
		}
		if err := l.Run(out, path, r); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	return nil
}

// expandInputs resolves glob arguments. A pattern that matches nothing
// is kept as given so it is reported as a missing file.
func expandInputs(args []string, fallback string, logger *slog.Logger) []string {
	if len(args) == 0 {
		return []string{fallback}
	}
	var paths []string
	for _, arg := range args {
		if !strings.ContainsAny(arg, "*?[{") {
			paths = append(paths, arg)
			continue
		}
		matches, err := doublestar.Glob(arg)
		if err != nil || len(matches) == 0 {
			logger.Debug("glob matched nothing", "pattern", arg, "error", err)
			paths = append(paths, arg)
			continue
		}
		paths = append(paths, matches...)
	}
	return paths
}
