package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newEncodeCmd(a *app) *cobra.Command {
	var key, file string

	cmd := &cobra.Command{
		Use:   "encode [text]",
		Short: "Encode text into a hieroglyph wire string",
		Long: `Encodes text under key. Letters, digits, space and the punctuation
! ? . , map to hieroglyphs; every other character passes through.

Example:
  hieroglyph encode --key stellar "we come in peace"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args, file)
			if err != nil {
				return err
			}
			s, err := a.newSession()
			if err != nil {
				return err
			}
			wire, err := s.Encrypt(cmd.Context(), text, key)
			if err != nil {
				return err
			}
			a.logger.Debug("encoded", zap.String("strategy", a.cfg.Codec.Strategy), zap.String("session", s.ID()))
			fmt.Fprintln(cmd.OutOrStdout(), wire)
			return nil
		},
	}
	cmd.Flags().StringVarP(&key, "key", "k", "", "Key (required)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read text from file ('-' for stdin)")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}

func newDecodeCmd(a *app) *cobra.Command {
	var key, file string
	var report bool

	cmd := &cobra.Command{
		Use:   "decode [wire]",
		Short: "Decode a hieroglyph wire string",
		Long: `Decodes a wire string under key. Segments that cannot be decoded are
skipped; --report lists them on stderr.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			wire, err := readInput(cmd, args, file)
			if err != nil {
				return err
			}
			codec, err := a.cfg.BuildCodec()
			if err != nil {
				return err
			}

			text, rep, err := codec.DecodeReport(wire, key)
			if err != nil {
				return err
			}
			if report {
				for _, d := range rep.Dropped {
					fmt.Fprintf(cmd.ErrOrStderr(), "dropped %s\n", d.Error())
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "%d segments, %d decoded, %d dropped\n",
					rep.Segments, rep.Decoded, len(rep.Dropped))
			}
			if text == "" {
				return fmt.Errorf("nothing decoded: wrong key or corrupted input")
			}
			a.logger.Debug("decoded", zap.Int("segments", rep.Segments), zap.Int("dropped", len(rep.Dropped)))
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
	cmd.Flags().StringVarP(&key, "key", "k", "", "Key (required)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read wire string from file ('-' for stdin)")
	cmd.Flags().BoolVar(&report, "report", false, "List dropped segments on stderr")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}

func newValidateCmd(a *app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "validate [wire]",
		Short: "Check a wire string for undecodable segments",
		RunE: func(cmd *cobra.Command, args []string) error {
			wire, err := readInput(cmd, args, file)
			if err != nil {
				return err
			}
			alphabet, err := a.cfg.BuildAlphabet()
			if err != nil {
				return err
			}

			res := alphabet.Validate(wire)
			out := cmd.OutOrStdout()
			for _, e := range res.Errors {
				fmt.Fprintf(out, "error: %s\n", e.Error())
			}
			for _, w := range res.Warnings {
				fmt.Fprintf(out, "warning: %s\n", w.Error())
			}
			if !res.Valid {
				return fmt.Errorf("invalid: %d of %d segments cannot be decoded", len(res.Errors), res.Segments)
			}
			fmt.Fprintf(out, "ok: %d segments\n", res.Segments)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read wire string from file ('-' for stdin)")
	return cmd
}

func newAlphabetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "alphabet",
		Short: "Print the symbol table and reserved tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			alphabet, err := a.cfg.BuildAlphabet()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, r := range alphabet.Chars() {
				sym, _ := alphabet.SymbolFor(r)
				fmt.Fprintf(out, "%q\t%s\t%s\n", r, sym, codepoints(sym))
			}
			tok := alphabet.Tokens()
			fmt.Fprintf(out, "marker\t%s\t%s\n", tok.Marker, codepoints(tok.Marker))
			fmt.Fprintf(out, "separator\t%s\t%s\n", tok.Separator, codepoints(tok.Separator))
			fmt.Fprintf(out, "default key\t%s\t%s\n", tok.DefaultKeySymbol, codepoints(tok.DefaultKeySymbol))
			return nil
		},
	}
}

func codepoints(s string) string {
	parts := make([]string, 0, len(s))
	for _, r := range s {
		parts = append(parts, fmt.Sprintf("U+%04X", r))
	}
	return strings.Join(parts, " ")
}
