package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/acemetillidie0001/obd-premium-apps/dao"
	"github.com/acemetillidie0001/obd-premium-apps/db"
)

var errFindings = errors.New("membership verification found orphaned rows")

var verifyCmd = &cobra.Command{
	Use:   "verify-memberships",
	Short: "Check the membership tables for orphaned joins",
	Long: `Runs every registered join check against Postgres concurrently and lists
the offending row ids. Exits non-zero when any check has findings.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := db.InitPostgres(); err != nil {
			return fmt.Errorf("failed to initialize Postgres: %w", err)
		}
		defer db.ClosePostgres()

		findings, err := dao.NewVerificationDAO(db.Postgres).Run(cmd.Context())
		if err != nil {
			return err
		}
		return reportFindings(cmd.OutOrStdout(), findings)
	},
}

func reportFindings(out io.Writer, findings []dao.Finding) error {
	if len(findings) == 0 {
		fmt.Fprintf(out, "ok: %d checks passed\n", len(dao.CheckNames()))
		return nil
	}
	for _, f := range findings {
		fmt.Fprintf(out, "FAIL %s (%d): %s\n", f.Check, len(f.IDs), strings.Join(f.IDs, ", "))
	}
	return errFindings
}
