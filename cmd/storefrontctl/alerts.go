package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/storefront/internal/models"
	schedulerservice "github.com/magabrotheeeer/storefront/internal/services/scheduler"
	"github.com/magabrotheeeer/storefront/internal/services/snapshot"
)

var alertsJSON bool

// alertsCmd печатает то, что планировщик опубликовал бы в текущем проходе.
var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "List credential age alerts and expiring clients without publishing them",
	Args:  cobra.NoArgs,
	RunE:  runAlerts,
}

func init() {
	alertsCmd.Flags().BoolVar(&alertsJSON, "json", false, "print as JSON")
}

type alertsReport struct {
	Credentials []models.CredentialAlertMessage `json:"credentials"`
	Expiring    []models.ExpiringClientMessage  `json:"expiring"`
}

func runAlerts(cmd *cobra.Command, _ []string) error {
	now, err := clock(atFlag)
	if err != nil {
		return err
	}
	db, err := openStorage(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStorage(db, cmd.ErrOrStderr())

	snap, err := snapshot.Load(cmd.Context(), db, now())
	if err != nil {
		return err
	}
	report := alertsReport{
		Credentials: schedulerservice.CredentialAlerts(snap),
		Expiring:    schedulerservice.ExpiringClients(snap),
	}
	if alertsJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	return printAlerts(cmd.OutOrStdout(), report)
}

func printAlerts(w io.Writer, report alertsReport) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "credential alerts: %d\n", len(report.Credentials))
	for _, a := range report.Credentials {
		fmt.Fprintf(tw, "  %s\t%s\t%d days\t%d clients\t%s\n", a.Service, a.Email, a.AgeDays, a.AssignedTo, a.Alert)
	}

	fmt.Fprintf(tw, "expiring clients: %d\n", len(report.Expiring))
	for _, c := range report.Expiring {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%d days\n",
			c.PhoneNumber, c.ClientName, c.Service, c.Expiry.Format(time.DateOnly), c.DaysLeft)
	}
	return tw.Flush()
}
