package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newSeedCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Ensure the default admin account exists",
		Long: `Creates or updates the admin account named by DEFAULT_ADMIN_USERNAME,
setting its password from DEFAULT_ADMIN_PASSWORD and display name from
DEFAULT_ADMIN_DISPLAY_NAME. The password is never printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := loadSettings(v)
			logger, err := newLogger(cmd.ErrOrStderr(), s.LogLevel, s.LogFormat)
			if err != nil {
				return err
			}

			rt, err := openService(cmd.Context(), s, logger)
			if err != nil {
				return err
			}
			defer rt.Close()

			user, err := seedAdmin(cmd.Context(), rt.engine, s, logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ensured user %s (%s)\n", user.Username, user.UserID)
			fmt.Fprintln(out, "password taken from DEFAULT_ADMIN_PASSWORD and not shown")
			return nil
		},
	}
}
