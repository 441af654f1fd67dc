// cmd/convert.go
package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/ColonelBlimp/textdump/internal/config"
	"github.com/ColonelBlimp/textdump/internal/record"
	"github.com/ColonelBlimp/textdump/internal/textdata"
	"github.com/ColonelBlimp/textdump/internal/txdr"
	"github.com/pierrec/lz4"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var errUnknownTarget = errors.New("unknown target format")

var convertCmd = &cobra.Command{
	Use:   "convert <in> <out>",
	Short: "Re-encode a record as TXDR or a Java stream",
	Long: `Reads one record in any supported input format and writes it to <out>
in the native TXDR format (the default) or as a Java serialization
stream, optionally wrapped in an LZ4 frame.`,
	Args: cobra.ExactArgs(2),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringP("to", "t", "native", "target format: native or java")
	convertCmd.Flags().BoolP("compress", "z", false, "wrap the output in an LZ4 frame")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	settings, err := config.Get()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	to, _ := cmd.Flags().GetString("to")
	compress, _ := cmd.Flags().GetBool("compress")

	encode, err := encoderFor(to, settings)
	if err != nil {
		return err
	}

	logger := newLogger(cmd.ErrOrStderr(), settings.Debug)
	rec, err := newLoader(settings, logger).Load(args[0])
	if err != nil {
		return err
	}

	if err := writeRecord(afero.NewOsFs(), args[1], rec, encode, compress); err != nil {
		return fmt.Errorf("convert %s: %w", args[1], err)
	}
	logger.Info("converted record", "in", args[0], "out", args[1], "to", to, "compressed", compress)
	return nil
}

type encodeFunc func(io.Writer, record.Record) error

func encoderFor(target string, settings *config.Settings) (encodeFunc, error) {
	switch target {
	case "native":
		return txdr.Codec{MaxBlobSize: settings.MaxBlobSize}.Encode, nil
	case "java":
		return textdata.Codec{ClassName: settings.ClassName, Strict: true}.Encode, nil
	}
	return nil, fmt.Errorf("%w: %q (want native or java)", errUnknownTarget, target)
}

func writeRecord(fs afero.Fs, path string, rec record.Record, encode encodeFunc, compress bool) (err error) {
	f, err := fs.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if !compress {
		return encode(f, rec)
	}
	zw := lz4.NewWriter(f)
	if err := encode(zw, rec); err != nil {
		return err
	}
	return zw.Close()
}
