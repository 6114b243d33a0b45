package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/hvaldivia/repuestos-analytics/internal/auth"
)

func newHashPasswordCommand() *cli.Command {
	return &cli.Command{
		Name:      "hash-password",
		Usage:     "Print the bcrypt hash for a password, for the users CSV",
		ArgsUsage: "<password>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("expected exactly one password argument")
			}

			hash, err := auth.HashPassword(c.Args().First())
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}

			fmt.Println(hash)
			return nil
		},
	}
}
