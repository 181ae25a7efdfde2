package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/MrEthical07/consoleauth/jwt"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newTokenCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue or inspect session tokens",
	}
	cmd.AddCommand(newTokenIssueCmd(v))
	cmd.AddCommand(newTokenVerifyCmd(v))
	return cmd
}

func signingSecret(v *viper.Viper) ([]byte, error) {
	s := loadSettings(v)
	if s.JWTSecret == "" {
		return nil, errMissingSecret
	}
	return []byte(s.JWTSecret), nil
}

func newTokenIssueCmd(v *viper.Viper) *cobra.Command {
	var (
		subject  string
		username string
		extra    []string
	)

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Mint a session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			secret, err := signingSecret(v)
			if err != nil {
				return err
			}
			if subject == "" {
				return errors.New("--sub is required")
			}

			claims := jwt.Claims{"sub": subject}
			if username != "" {
				claims["username"] = username
			}
			for _, kv := range extra {
				name, value, ok := strings.Cut(kv, "=")
				if !ok || name == "" {
					return fmt.Errorf("invalid --claim %q, want name=value", kv)
				}
				claims[name] = value
			}

			token, err := jwt.Issue(claims, secret, jwt.IssueOptions{ExpiresIn: loadSettings(v).JWTExpiresIn})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "sub", "", "subject (user ID)")
	cmd.Flags().StringVar(&username, "username", "", "username claim")
	cmd.Flags().StringArrayVar(&extra, "claim", nil, "extra string claim as name=value (repeatable)")
	return cmd
}

func newTokenVerifyCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <token>",
		Short: "Verify a session token and print its claims",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := signingSecret(v)
			if err != nil {
				return err
			}

			claims, err := jwt.Verify(strings.TrimSpace(args[0]), secret)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(claims)
		},
	}
}
