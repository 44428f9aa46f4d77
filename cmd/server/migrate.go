package main

import (
	"github.com/spf13/cobra"
)

type migrationRow struct {
	Version   int64  `json:"version"`
	Name      string `json:"name"`
	Applied   bool   `json:"applied"`
	AppliedAt string `json:"appliedAt,omitempty"`
}

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := openStore(cmd.Context(), cfg, true)
			if err != nil {
				return err
			}
			return st.Close()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := openStore(cmd.Context(), cfg, false)
			if err != nil {
				return err
			}
			defer st.Close()
			return st.MigrateDown(cmd.Context())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print the state of every migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := openStore(cmd.Context(), cfg, false)
			if err != nil {
				return err
			}
			defer st.Close()

			statuses, err := st.MigrationStatus(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([]migrationRow, 0, len(statuses))
			for _, s := range statuses {
				row := migrationRow{Version: s.Version, Name: s.Name, Applied: s.Applied}
				if s.Applied {
					row.AppliedAt = s.AppliedAt.UTC().Format("2006-01-02 15:04:05")
				}
				rows = append(rows, row)
			}
			return writeJSON(cmd.OutOrStdout(), rows)
		},
	})
	return cmd
}
