package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"oceaneye/internal/catalog"
	"oceaneye/internal/digest"
)

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the remote fish catalog",
	}
	cmd.AddCommand(newCatalogListCommand(ctx))
	cmd.AddCommand(newCatalogCheckCommand(ctx))
	return cmd
}

var catalogColumns = []column{
	col("Key", alignLeft),
	col("Name", alignLeft),
	col("Scientific", alignLeft),
	{header: "Habitat", maxWidth: 30},
	col("Size", alignRight),
	col("Status", alignLeft),
	col("Hash", alignLeft),
}

func newCatalogListCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every record in the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(output)
			if err != nil {
				return err
			}
			collection, err := fetchCatalog(cmd, ctx)
			if err != nil {
				return err
			}
			records := collection.Records()
			if format != outputText {
				return writeStructured(cmd, format, records)
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Catalog is empty")
				return nil
			}
			rows := make([][]string, 0, len(records))
			for _, r := range records {
				rows = append(rows, []string{
					r.Key,
					r.Name,
					r.ScientificName,
					r.Habitat,
					r.Size,
					displayStatus(r.ConservationStatus),
					digest.Digest(r.Digest).Short(),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(catalogColumns, rows, []string{"", fmt.Sprintf("%d records", len(records))}))
			return nil
		},
	}
	addOutputFlag(cmd, &output)
	return cmd
}

func newCatalogCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Fetch and strictly decode the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			collection, err := fetchCatalog(cmd, ctx)
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			colorize := shouldColorize(cmd.OutOrStdout())
			line := fmt.Sprintf("Catalog OK: %d records (%s)", collection.Len(), cfg.Catalog.URL)
			fmt.Fprintln(cmd.OutOrStdout(), colored(line, statusKindColor(statusOK), colorize))
			return nil
		},
	}
}

func fetchCatalog(cmd *cobra.Command, ctx *commandContext) (*catalog.Collection, error) {
	s, err := ctx.openStack(cmd, stackOptions{noHistory: true})
	if err != nil {
		return nil, err
	}
	defer s.Close()
	collection, err := s.client.Fetch(cmd.Context())
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	return collection, nil
}
