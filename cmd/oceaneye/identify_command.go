package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"oceaneye/internal/digest"
	"oceaneye/internal/services"
)

func newIdentifyCommand(ctx *commandContext) *cobra.Command {
	var reencode bool
	var noHistory bool
	var output string

	cmd := &cobra.Command{
		Use:   "identify <image|->",
		Short: "Identify the fish in a photo",
		Long: "Hash an image and look the digest up in the catalog.\n" +
			"Exits 2 when the catalog has no matching fish.",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
				return errMissingImage
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(output)
			if err != nil {
				return err
			}
			data, err := readImage(cmd, args[0])
			if err != nil {
				return err
			}

			s, err := ctx.openStack(cmd, stackOptions{reencode: reencode, noHistory: noHistory})
			if err != nil {
				return err
			}
			defer s.Close()

			runCtx := services.WithSource(cmd.Context(), "cli")
			report := s.identifier.Identify(runCtx, data)
			return reportResult(cmd.OutOrStdout(), format, report, func(v any) error {
				return writeStructured(cmd, format, v)
			})
		},
	}

	cmd.Flags().BoolVar(&reencode, "reencode", false, "Re-encode the image as canonical PNG before hashing")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not record this identification")
	addOutputFlag(cmd, &output)
	return cmd
}

func newResolveCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "resolve <digest>",
		Short: "Look up a precomputed digest in the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(output)
			if err != nil {
				return err
			}
			d, err := digest.Parse(args[0])
			if err != nil {
				return services.Wrap(services.ErrValidation, "cli", "parse digest", "", err)
			}

			s, err := ctx.openStack(cmd, stackOptions{})
			if err != nil {
				return err
			}
			defer s.Close()

			runCtx := services.WithSource(cmd.Context(), "cli")
			report := s.identifier.IdentifyDigest(runCtx, d)
			return reportResult(cmd.OutOrStdout(), format, report, func(v any) error {
				return writeStructured(cmd, format, v)
			})
		},
	}

	addOutputFlag(cmd, &output)
	return cmd
}

// readImage loads path, or stdin when path is "-".
func readImage(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return data, nil
}
