// Command consoleauth runs and administers the console login service.
//
//	consoleauth serve            start the HTTP API
//	consoleauth seed             ensure the default admin exists
//	consoleauth hash-password    print a stored hash for a password
//	consoleauth token issue      mint a session token
//	consoleauth token verify     check a session token
//	consoleauth loadtest         measure Authenticate and Login throughput
//
// Settings come from flags, then environment (JWT_SECRET, JWT_EXPIRES_IN,
// DEFAULT_ADMIN_USERNAME, DEFAULT_ADMIN_PASSWORD,
// DEFAULT_ADMIN_DISPLAY_NAME, REDIS_ADDR, ADDR), then an optional YAML
// config file.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds a fresh command tree with its own viper instance so
// tests can run commands in isolation.
func newRootCmd() *cobra.Command {
	v := viper.New()
	var cfgFile string

	cmd := &cobra.Command{
		Use:           "consoleauth",
		Short:         "Username/password login service issuing signed session tokens.",
		Version:       version,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return readConfigFile(v, cfgFile)
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file")
	bindSettings(cmd, v)

	cmd.AddCommand(newServeCmd(v))
	cmd.AddCommand(newSeedCmd(v))
	cmd.AddCommand(newHashPasswordCmd(v))
	cmd.AddCommand(newTokenCmd(v))
	cmd.AddCommand(newLoadtestCmd(v))

	return cmd
}
