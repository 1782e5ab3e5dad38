package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/storefront/internal/models"
	credentialssvc "github.com/magabrotheeeer/storefront/internal/services/credentials"
)

var importPublishedAt string

// importCmd загружает учётные данные из файла строками email:senha.
var importCmd = &cobra.Command{
	Use:   "import <service> <file|->",
	Short: "Bulk import credentials for a service",
	Args:  cobra.ExactArgs(2),
	RunE:  runImport,
}

func init() {
	importCmd.Flags().StringVar(&importPublishedAt, "published-at", "", "publication date (YYYY-MM-DD), defaults to now")
}

func readSource(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		return string(b), err
	}
	b, err := os.ReadFile(path)
	return string(b), err
}

func runImport(cmd *cobra.Command, args []string) error {
	text, err := readSource(cmd, args[1])
	if err != nil {
		return err
	}
	now, err := clock(atFlag)
	if err != nil {
		return err
	}

	db, err := openStorage(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStorage(db, cmd.ErrOrStderr())

	n, err := credentialssvc.NewService(db, logger, now).BulkImport(cmd.Context(), models.DummyBulkCredentials{
		Service:     args[0],
		Text:        text,
		PublishedAt: importPublishedAt,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d credentials for %s\n", n, args[0])
	return nil
}
