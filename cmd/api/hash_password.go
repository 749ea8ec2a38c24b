package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/songhub/backend/pkg/crypto"
	"github.com/spf13/cobra"
)

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password [password]",
	Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
	Long: `Print a bcrypt hash suitable for ADMIN_PASSWORD_HASH.

The password is taken from the first argument, or read from stdin when omitted:
  echo -n 'secret' | songhub hash-password`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _ := bootstrap()

		password := ""
		if len(args) == 1 {
			password = args[0]
		} else {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return errors.New("no password given")
			}
			password = strings.TrimRight(line, "\r\n")
		}
		if password == "" {
			return errors.New("password must not be empty")
		}

		hash, err := crypto.HashPassword(password, cfg.BcryptCost)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}
