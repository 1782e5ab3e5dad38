package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/storefront/internal/lib/password"
)

var adminPassword string

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage admin accounts",
}

// adminCreateCmd создаёт или обновляет администратора.
var adminCreateCmd = &cobra.Command{
	Use:   "create <username>",
	Short: "Create an admin or replace its password",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdminCreate,
}

func init() {
	adminCreateCmd.Flags().StringVar(&adminPassword, "password", "", "admin password")
	_ = adminCreateCmd.MarkFlagRequired("password")
}

func runAdminCreate(cmd *cobra.Command, args []string) error {
	if adminPassword == "" {
		return errors.New("password must not be empty")
	}
	hash, err := password.GetHash(adminPassword)
	if err != nil {
		return err
	}

	db, err := openStorage(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStorage(db, cmd.ErrOrStderr())

	if err := db.SaveAdmin(cmd.Context(), args[0], hash); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "admin %q saved\n", args[0])
	return nil
}
