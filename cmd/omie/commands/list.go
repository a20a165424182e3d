package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/omie-client/internal/constants"
	"github.com/fivetwenty-io/omie-client/pkg/omie"
)

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	var (
		pageSize int
		maxPages int
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "list METHOD [KEY=VALUE...]",
		Short: "Fetch every page of a list method",
		Long: `Fetch all records of a paginated Omie method. Page parameters are set by
the client; other parameters are given as KEY=VALUE filters.

Example:
  omie list ListarEtapasPedido cEtapa=50 --page-size 200`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat()
			if err != nil {
				return err
			}

			desc, params, err := methodParams(args[0], args[1:])
			if err != nil {
				return err
			}

			if !desc.Paginated() {
				return fmt.Errorf("%s: %w (use omie call)", desc.Name, omie.ErrNotPaginated)
			}

			client, err := CreateClient()
			if err != nil {
				return err
			}

			opts := []omie.CallOption{omie.WithPageSize(pageSize), omie.WithMaxPages(maxPages)}
			if noCache {
				opts = append(opts, omie.WithoutCache())
			}

			records, err := client.GetAll(context.Background(), omie.ByDescriptor(desc), params, opts...)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			done, err := writeStructured(out, format, records)
			if done || err != nil {
				return err
			}

			err = recordsTable(out, records)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(out, "%d records\n", len(records))

			return nil
		},
	}

	cmd.Flags().IntVar(&pageSize, "page-size", constants.DefaultPageSize, "records per page")
	cmd.Flags().IntVar(&maxPages, "max-pages", 0, "stop after this many pages (0 for all)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the response cache")

	return cmd
}
