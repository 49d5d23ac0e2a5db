package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"oceaneye/internal/digest"
	"oceaneye/internal/imaging"
	"oceaneye/internal/services"
)

type hashResult struct {
	Path      string           `json:"path" yaml:"path"`
	Bytes     int              `json:"bytes" yaml:"bytes"`
	Format    string           `json:"format,omitempty" yaml:"format,omitempty"`
	Width     int              `json:"width,omitempty" yaml:"width,omitempty"`
	Height    int              `json:"height,omitempty" yaml:"height,omitempty"`
	Algorithm digest.Algorithm `json:"algorithm" yaml:"algorithm"`
	Digest    digest.Digest    `json:"digest" yaml:"digest"`
	OCI       string           `json:"oci" yaml:"oci"`
	CID       string           `json:"cid" yaml:"cid"`
	Reencoded bool             `json:"reencoded" yaml:"reencoded"`
}

var hashColumns = []column{
	{header: "Image", maxWidth: 40},
	col("Size", alignRight),
	col("Format", alignLeft),
	col("Dimensions", alignRight),
	col("Digest", alignLeft),
	col("CID", alignLeft),
}

func newHashCommand(ctx *commandContext) *cobra.Command {
	var algorithm string
	var reencode bool
	var output string

	cmd := &cobra.Command{
		Use:   "hash <image>...",
		Short: "Print the digest of one or more images without contacting the catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(output)
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			name := cfg.Digest.Algorithm
			if algorithm != "" {
				name = algorithm
			}
			alg, err := digest.ParseAlgorithm(name)
			if err != nil {
				return services.Wrap(services.ErrValidation, "cli", "select algorithm", "", err)
			}
			hasher, err := digest.New(alg)
			if err != nil {
				return err
			}
			canonical := reencode || cfg.Digest.Reencode

			results := make([]hashResult, 0, len(args))
			for _, path := range args {
				result, err := hashImage(cmd, hasher, path, canonical)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				results = append(results, result)
			}

			if format != outputText {
				return writeStructured(cmd, format, results)
			}
			rows := make([][]string, 0, len(results))
			for _, r := range results {
				dims := ""
				if r.Width > 0 && r.Height > 0 {
					dims = fmt.Sprintf("%dx%d", r.Width, r.Height)
				}
				rows = append(rows, []string{r.Path, humanize.IBytes(uint64(r.Bytes)), r.Format, dims, r.OCI, r.CID})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(hashColumns, rows, nil))
			return nil
		},
	}

	cmd.Flags().StringVar(&algorithm, "algorithm", "", "Hash algorithm: sha256, sha3-256, or blake2b-256")
	cmd.Flags().BoolVar(&reencode, "reencode", false, "Re-encode each image as canonical PNG before hashing")
	addOutputFlag(cmd, &output)
	return cmd
}

func hashImage(cmd *cobra.Command, hasher *digest.Hasher, path string, reencode bool) (hashResult, error) {
	data, err := readImage(cmd, path)
	if err != nil {
		return hashResult{}, err
	}
	if reencode {
		data, err = imaging.Canonicalize(data)
		if err != nil {
			return hashResult{}, err
		}
	}
	d, err := hasher.Compute(data)
	if err != nil {
		return hashResult{}, err
	}
	cid, err := digest.ContentID(hasher.Algorithm(), d)
	if err != nil {
		return hashResult{}, err
	}
	result := hashResult{
		Path:      path,
		Bytes:     len(data),
		Algorithm: hasher.Algorithm(),
		Digest:    d,
		OCI:       digest.OCI(hasher.Algorithm(), d),
		CID:       cid,
		Reencoded: reencode,
	}
	// Non-image input still hashes; it just has no format.
	if info, err := imaging.Inspect(data); err == nil {
		result.Format = info.Format
		result.Width = info.Width
		result.Height = info.Height
	}
	return result, nil
}
