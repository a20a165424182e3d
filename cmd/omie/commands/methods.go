package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/omie-client/internal/constants"
	"github.com/fivetwenty-io/omie-client/pkg/omie"
	"github.com/fivetwenty-io/omie-client/pkg/omie/methods"
)

// NewMethodsCommand creates the methods command group.
func NewMethodsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "methods",
		Aliases: []string{"method"},
		Short:   "Browse the method catalog",
		Long:    "List the Omie methods this client knows and the parameters they accept",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listMethods(cmd)
		},
	}

	cmd.AddCommand(newMethodsListCommand())
	cmd.AddCommand(newMethodsShowCommand())

	return cmd
}

func newMethodsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List methods",
		Long:  "List every method in the catalog with its path and pagination",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listMethods(cmd)
		},
	}
}

func listMethods(cmd *cobra.Command) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}

	descriptors := methods.Catalog().Descriptors()
	out := cmd.OutOrStdout()

	done, err := writeStructured(out, format, descriptors)
	if done || err != nil {
		return err
	}

	rows := make([][]string, 0, len(descriptors))
	for _, desc := range descriptors {
		rows = append(rows, []string{desc.Name, desc.Path, string(desc.Kind), strconv.FormatBool(desc.Paginated())})
	}

	return renderTable(out, []string{"Name", "Path", "Kind", "Paginated"}, rows)
}

func newMethodsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show METHOD",
		Short: "Show method parameters",
		Long:  "Display the parameters a method accepts and, for list methods, its pagination fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat()
			if err != nil {
				return err
			}

			desc, err := lookupMethod(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			done, err := writeStructured(out, format, desc)
			if done || err != nil {
				return err
			}

			_, _ = fmt.Fprintf(out, "%s (%s)\n", desc.Name, desc.Path)

			rows := make([][]string, 0, len(desc.Shape))
			for _, name := range desc.Shape.Fields() {
				spec := desc.Shape[name]
				rows = append(rows, []string{name, string(spec.Type), strconv.FormatBool(spec.Required)})
			}

			err = renderTable(out, []string{"Parameter", "Type", "Required"}, rows)
			if err != nil {
				return err
			}

			if desc.Paginated() {
				p := desc.Pagination
				_, _ = fmt.Fprintf(out, "Pagination: page=%s size=%s total=%s items=%s\n",
					p.PageNumberField, p.PageSizeField, p.TotalCountField, p.ArrayField)
			}

			return nil
		},
	}
}

func lookupMethod(name string) (omie.MethodDescriptor, error) {
	desc, ok := methods.Lookup(name)
	if !ok {
		return omie.MethodDescriptor{}, fmt.Errorf("%w: %s (see omie methods list)", constants.ErrMethodNotFound, name)
	}

	return desc, nil
}
