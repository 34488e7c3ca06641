// hieroglyph - keyed hieroglyph substitution CLI
//
// Usage:
//
//	hieroglyph encode --key K [text]        Encode text into a wire string
//	hieroglyph decode --key K [wire]        Decode a wire string
//	hieroglyph validate [wire]              Check a wire string for problems
//	hieroglyph alphabet                     Print the symbol table
//	hieroglyph frame encode --key K [file]  Encode lines into GS1-T cipher frames
//	hieroglyph frame decode --key K [file]  Decode GS1-T frames
//	hieroglyph version                      Print version info
//
// Text is read from the arguments, --file, or stdin.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Neumenon/hieroglyph/glyph"
	"github.com/Neumenon/hieroglyph/internal/config"
	"github.com/Neumenon/hieroglyph/internal/logging"
	"github.com/Neumenon/hieroglyph/session"
	"github.com/Neumenon/hieroglyph/stream"
)

const (
	version       = "0.2.0"
	formatVersion = "1"
)

// app carries state shared by all commands of one invocation.
type app struct {
	configPath string
	verbose    bool
	strategy   string
	verifyKey  bool

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "hieroglyph",
		Short: "Keyed hieroglyph substitution codec",
		Long: `hieroglyph maps text onto Egyptian hieroglyphs, tagging every symbol
with a symbol derived from a repeating key, and maps it back.

It is a toy substitution scheme, not encryption.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Config file (.yaml or .toml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")
	root.PersistentFlags().StringVar(&a.strategy, "strategy", "", "Segment strategy: terminated or compat (default from config)")
	root.PersistentFlags().BoolVar(&a.verifyKey, "verify-key", false, "Drop segments whose key symbol does not match")

	root.AddCommand(
		newEncodeCmd(a),
		newDecodeCmd(a),
		newValidateCmd(a),
		newAlphabetCmd(a),
		newFrameCmd(a),
		newVersionCmd(),
	)
	return root
}

// setup loads config, applies flag overrides and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("strategy") {
		if _, ok := glyph.ParseStrategy(a.strategy); !ok {
			return fmt.Errorf("unknown strategy %q", a.strategy)
		}
		cfg.Codec.Strategy = a.strategy
	}
	if cmd.Flags().Changed("verify-key") {
		cfg.Codec.VerifyKey = a.verifyKey
	}
	a.cfg = cfg

	logger, err := logging.NewWithWriter(logging.Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Verbose: a.verbose,
	}, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger
	return nil
}

// newSession builds a session from the loaded config.
func (a *app) newSession() (*session.Session, error) {
	codec, err := a.cfg.BuildCodec()
	if err != nil {
		return nil, err
	}
	return session.New(
		session.WithCodec(codec),
		session.WithLogger(a.logger),
		session.WithMaxMessage(a.cfg.Session.MaxMessage),
	), nil
}

// readInput returns the joined args, the contents of file, or stdin.
// One trailing line break is removed from file and stdin input.
func readInput(cmd *cobra.Command, args []string, file string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	var r io.Reader = cmd.InOrStdin()
	if file != "" && file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return "", fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		r = f
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	s := strings.TrimSuffix(string(data), "\n")
	return strings.TrimSuffix(s, "\r"), nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version info",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "hieroglyph %s (wire format v%s, GS1-T v%d)\n", version, formatVersion, stream.Version)
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
