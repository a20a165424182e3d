package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/omie-client/pkg/omie"
)

// NewCallCommand creates the call command.
func NewCallCommand() *cobra.Command {
	var (
		noCache bool
		raw     bool
	)

	cmd := &cobra.Command{
		Use:   "call METHOD [KEY=VALUE...]",
		Short: "Call a method once",
		Long: `Call a single Omie method. Parameters are given as KEY=VALUE pairs and
are checked against the method's parameters before anything is sent.

Example:
  omie call ConsultarCategoria codigo=1.01.02`,
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

			client, err := CreateClient()
			if err != nil {
				return err
			}

			var opts []omie.CallOption
			if noCache {
				opts = append(opts, omie.WithoutCache())
			}

			ctx := context.Background()
			out := cmd.OutOrStdout()

			if raw {
				resp, err := client.GetRaw(ctx, omie.ByDescriptor(desc), params, opts...)
				if err != nil {
					return err
				}

				_, err = out.Write(resp.Body)
				if err == nil {
					_, err = fmt.Fprintln(out)
				}

				return err
			}

			record, err := client.Get(ctx, omie.ByDescriptor(desc), params, opts...)
			if err != nil {
				return err
			}

			done, err := writeStructured(out, format, record)
			if done || err != nil {
				return err
			}

			return recordTable(out, record)
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the response cache")
	cmd.Flags().BoolVar(&raw, "raw", false, "print the response body as received, without fault checks")

	return cmd
}

// methodParams resolves name in the built-in catalog and decodes the
// key=value arguments into its request type.
func methodParams(name string, args []string) (omie.MethodDescriptor, any, error) {
	desc, err := lookupMethod(name)
	if err != nil {
		return omie.MethodDescriptor{}, nil, err
	}

	values, err := ParseKeyValues(args)
	if err != nil {
		return omie.MethodDescriptor{}, nil, err
	}

	params, err := omie.DecodeValues(desc, values)
	if err != nil {
		return omie.MethodDescriptor{}, nil, err
	}

	return desc, params, nil
}
