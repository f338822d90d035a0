package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/acemetillidie0001/obd-premium-apps/model"
	"github.com/acemetillidie0001/obd-premium-apps/pdp/engine"
	"github.com/acemetillidie0001/obd-premium-apps/service"
)

var matrixJSON bool

var matrixCmd = &cobra.Command{
	Use:   "matrix",
	Short: "Print the role permission matrix",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if matrixJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(engine.Rules())
		}
		return writeMatrix(cmd.OutOrStdout())
	},
}

func init() {
	matrixCmd.Flags().BoolVar(&matrixJSON, "json", false, "Print rules as JSON")
}

// writeMatrix prints one row per gated (app, action) pair with a column per role.
func writeMatrix(out io.Writer) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprint(w, "APP\tACTION\tPREMIUM")
	for _, role := range model.Roles {
		fmt.Fprintf(w, "\t%s", role)
	}
	fmt.Fprintln(w)

	for _, req := range engine.RouteRequirements() {
		fmt.Fprintf(w, "%s\t%s\t%s", req.App, req.Action, mark(service.IsPremiumApp(req.App)))
		for _, role := range model.Roles {
			fmt.Fprintf(w, "\t%s", mark(engine.Can(role, req.App, req.Action)))
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}

func mark(ok bool) string {
	if ok {
		return "yes"
	}
	return "-"
}
