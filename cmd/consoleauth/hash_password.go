package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/MrEthical07/consoleauth/password"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newHashPasswordCmd(_ *viper.Viper) *cobra.Command {
	var fromStdin bool

	cmd := &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a stored scrypt hash for a password",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var secret string
			switch {
			case fromStdin:
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password: %w", err)
				}
				secret = strings.TrimRight(line, "\r\n")
			case len(args) == 1:
				secret = args[0]
			}
			if secret == "" {
				return errors.New("password is required (argument or --stdin)")
			}

			hash, err := password.Derive(secret)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}

	cmd.Flags().BoolVar(&fromStdin, "stdin", false, "read the password from the first line of stdin")
	return cmd
}
