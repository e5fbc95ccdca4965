package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xiaoying/sales-assistant/internal/infrastructure/db/jsonfile"
	"github.com/xiaoying/sales-assistant/internal/pkg/config"
)

var seedForce bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Write the sample customer data file",
	Long:  "Writes the sample customer record to DATA_FILE if the file does not exist. Use --force to overwrite existing data.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cmd.Context())
		if err != nil {
			return err
		}

		written, err := jsonfile.Seed(cfg.Store.DataFile, seedForce)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if !written {
			fmt.Fprintf(out, "%s already exists, use --force to overwrite\n", cfg.Store.DataFile)
			return nil
		}
		fmt.Fprintf(out, "seeded %s\n", cfg.Store.DataFile)
		return nil
	},
}

func init() {
	seedCmd.Flags().BoolVar(&seedForce, "force", false, "overwrite an existing data file")
}
