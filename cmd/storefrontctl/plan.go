package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/storefront/internal/assignment"
	credentialssvc "github.com/magabrotheeeer/storefront/internal/services/credentials"
)

// planCmd печатает распределение учётных данных сервиса по клиентам.
var planCmd = &cobra.Command{
	Use:   "plan <service>",
	Short: "Show which clients receive each credential of a service",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlan,
}

func runPlan(cmd *cobra.Command, args []string) error {
	now, err := clock(atFlag)
	if err != nil {
		return err
	}
	db, err := openStorage(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStorage(db, cmd.ErrOrStderr())

	slots, err := credentialssvc.NewService(db, logger, now).Plan(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return printPlan(cmd.OutOrStdout(), args[0], slots)
}

func printPlan(w io.Writer, service string, slots []assignment.Slot) error {
	if len(slots) == 0 {
		_, err := fmt.Fprintf(w, "no visible credentials for %q\n", service)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tCREDENTIAL\tEMAIL\tCLIENTS\tPHONES\tALERT")
	for i, s := range slots {
		phones := make([]string, 0, len(s.Clients))
		for _, c := range s.Clients {
			phones = append(phones, c.Phone)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\n",
			i, s.Credential.ID, s.Credential.Email, len(s.Clients), strings.Join(phones, ","), s.Alert)
	}
	return tw.Flush()
}
