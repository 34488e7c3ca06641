package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Neumenon/hieroglyph/stream"
)

func newFrameCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "frame",
		Short: "Read and write GS1-T cipher frames",
	}
	cmd.AddCommand(newFrameEncodeCmd(a), newFrameDecodeCmd(a))
	return cmd
}

func newFrameEncodeCmd(a *app) *cobra.Command {
	var key, file string
	var sid uint64

	cmd := &cobra.Command{
		Use:   "encode [text]",
		Short: "Encode each input line into a cipher frame",
		Long: `Encodes each non-empty input line under key and writes one cipher frame
per line. Frames carry a digest of the decodable plaintext; the last frame
is marked final. CRC and compression follow the stream config.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(cmd, args, file)
			if err != nil {
				return err
			}
			s, err := a.newSession()
			if err != nil {
				return err
			}
			codec, err := a.cfg.BuildCodec()
			if err != nil {
				return err
			}

			var lines []string
			for _, line := range strings.Split(input, "\n") {
				if line = strings.TrimSuffix(line, "\r"); line != "" {
					lines = append(lines, line)
				}
			}
			if len(lines) == 0 {
				return errors.New("no input lines")
			}

			var opts []stream.WriterOption
			if a.cfg.Stream.CRC {
				opts = append(opts, stream.WithCRC())
			}
			if a.cfg.Stream.CompressMin > 0 {
				opts = append(opts, stream.WithCompression(a.cfg.Stream.CompressMin))
			}
			w := stream.NewWriter(cmd.OutOrStdout(), opts...)

			for i, line := range lines {
				wire, err := s.Encrypt(cmd.Context(), line, key)
				if err != nil {
					return fmt.Errorf("line %d: %w", i+1, err)
				}
				f := &stream.Frame{
					Version: stream.Version,
					SID:     sid,
					Seq:     uint64(i),
					Kind:    stream.KindCipher,
					Payload: []byte(wire),
					Final:   i == len(lines)-1,
				}
				// The digest covers what the receiver will decode, which
				// differs from line for characters outside the alphabet.
				if expected, err := codec.Decode(wire, key); err == nil && expected != "" {
					digest := stream.PlaintextDigest(expected)
					f.Base = &digest
				}
				if err := w.WriteFrame(f); err != nil {
					return err
				}
			}
			a.logger.Debug("wrote frames", zap.Uint64("sid", sid), zap.Int("frames", len(lines)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&key, "key", "k", "", "Key (required)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read text from file ('-' for stdin)")
	cmd.Flags().Uint64Var(&sid, "sid", 1, "Stream id")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}

func newFrameDecodeCmd(a *app) *cobra.Command {
	var key string
	var noCRC bool

	cmd := &cobra.Command{
		Use:   "decode [file]",
		Short: "Decode GS1-T frames and print their text",
		Long: `Reads GS1-T frames, decodes cipher frames under key and checks them
against their digest. Plain frames are printed as is; err frames go to stderr.
Out-of-order frames are skipped with a warning.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open input: %w", err)
				}
				defer f.Close()
				in = f
			}

			codec, err := a.cfg.BuildCodec()
			if err != nil {
				return err
			}

			ropts := []stream.ReaderOption{stream.WithMaxPayload(a.cfg.Stream.MaxPayload)}
			if noCRC {
				ropts = append(ropts, stream.WithoutCRCVerification())
			}
			reader := stream.NewReader(in, ropts...)

			out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
			var frames, failed int

			h := stream.NewFrameHandler()
			h.OnCipher = func(f *stream.Frame) error {
				text, err := codec.Decode(string(f.Payload), key)
				if err != nil {
					return err
				}
				if text == "" {
					failed++
					fmt.Fprintf(errOut, "sid=%d seq=%d: nothing decoded\n", f.SID, f.Seq)
					return nil
				}
				if err := stream.VerifyPlaintext(f, text); err != nil {
					failed++
					fmt.Fprintf(errOut, "sid=%d seq=%d: %v\n", f.SID, f.Seq, err)
				}
				fmt.Fprintln(out, text)
				return nil
			}
			h.OnPlain = func(f *stream.Frame) error {
				fmt.Fprintln(out, string(f.Payload))
				return nil
			}
			h.OnErr = func(f *stream.Frame) error {
				fmt.Fprintf(errOut, "sid=%d seq=%d: error frame: %s\n", f.SID, f.Seq, f.Payload)
				return nil
			}
			h.OnFinal = func(sid uint64) error {
				a.logger.Debug("stream finished", zap.Uint64("sid", sid))
				return nil
			}
			h.OnSeqGap = func(gap *stream.SequenceError) error {
				a.logger.Warn("skipping out-of-order frame", zap.Error(gap))
				return nil
			}

			for {
				f, err := reader.Next()
				if err == io.EOF {
					break
				}
				if err != nil {
					return fmt.Errorf("frame %d: %w", frames, err)
				}
				frames++
				if err := h.Handle(f); err != nil {
					return fmt.Errorf("frame %d: %w", frames-1, err)
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d frames failed to decode or verify", failed, frames)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&key, "key", "k", "", "Key (required)")
	cmd.Flags().BoolVar(&noCRC, "no-verify-crc", false, "Skip CRC verification")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}
