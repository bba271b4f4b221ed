package commands

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/api-sage/bank-viewer/src/internal/adapter/repository/postgres"
	"github.com/api-sage/bank-viewer/src/internal/domain"
)

func newAuditCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "List recent sign-in attempts from the audit log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadDatabaseConfig()
			if err != nil {
				return err
			}
			if cfg.DatabaseDSN == "" {
				return errDatabaseNotConfigured
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			db, err := postgres.Open(ctx, cfg.DatabaseDSN)
			if err != nil {
				return err
			}
			defer db.Close()

			audits, err := postgres.NewExchangeAuditRepository(db).ListRecent(ctx, limit)
			if err != nil {
				return err
			}
			return writeAudits(cmd.OutOrStdout(), audits)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "number of entries to show")

	return cmd
}

func writeAudits(out io.Writer, audits []domain.ExchangeAudit) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tOUTCOME\tERROR\tTOKEN\tUSER")
	for _, a := range audits {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			a.CreatedAt.UTC().Format(time.RFC3339),
			a.Outcome,
			dash(a.ErrorKind),
			dash(a.TokenFingerprint),
			dash(a.ProviderUserID),
		)
	}
	return tw.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
