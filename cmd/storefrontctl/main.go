package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	env := &environment{}
	return &cli.App{
		Name:  "storefrontctl",
		Usage: "drive the storefront cart and catalog from a terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", EnvVars: []string{"STOREFRONT_EMAIL"}, Usage: "login email"},
			&cli.StringFlag{Name: "password", EnvVars: []string{"STOREFRONT_PASSWORD"}, Usage: "login password"},
			&cli.StringFlag{Name: "log-level", Value: "warn", Usage: "log level for diagnostic output"},
		},
		Before: func(c *cli.Context) error {
			return env.init(c)
		},
		After: func(*cli.Context) error {
			return env.close()
		},
		Commands: []*cli.Command{
			productsCommand(env),
			cartCommand(env),
			checkoutCommand(env),
			adminCommand(env),
			reconciliationCommand(env),
			remoteCommand(env),
		},
	}
}
