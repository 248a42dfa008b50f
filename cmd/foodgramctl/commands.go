package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

func newRootCmd(openDB func() (*gorm.DB, error)) *cobra.Command {
	var (
		db      *gorm.DB
		catalog *service.CatalogService
	)

	rootCmd := &cobra.Command{
		Use:          "foodgramctl",
		Short:        "Foodgram catalog maintenance",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if db, err = openDB(); err != nil {
				return err
			}
			catalog = service.NewCatalogService(db)
			return nil
		},
	}

	importIngredientsCmd := &cobra.Command{
		Use:   "import-ingredients <file.json>",
		Short: "Bulk-load ingredients from a JSON array of {name, measurement_unit}",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in []types.IngredientInput
			if err := readJSON(args[0], &in); err != nil {
				return err
			}
			n, err := catalog.ImportIngredients(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d of %d ingredients\n", n, len(in))
			return nil
		},
	}

	importTagsCmd := &cobra.Command{
		Use:   "import-tags [file.json]",
		Short: "Create tags from a JSON array of {name, color, slug}, or the default meal tags",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := service.DefaultTags
			if len(args) == 1 {
				in = nil
				if err := readJSON(args[0], &in); err != nil {
					return err
				}
			}
			n, err := catalog.ImportTags(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d of %d tags\n", n, len(in))
			return nil
		},
	}

	removeDuplicatesCmd := &cobra.Command{
		Use:   "remove-duplicates",
		Short: "Delete ingredients sharing a name, keeping the oldest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := catalog.RemoveDuplicateIngredients(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d duplicate ingredients\n", n)
			return nil
		},
	}

	rootCmd.AddCommand(
		importIngredientsCmd,
		importTagsCmd,
		removeDuplicatesCmd,
		newSeedUsersCmd(func() *gorm.DB { return db }),
	)
	return rootCmd
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}
