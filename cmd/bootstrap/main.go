package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

const (
	flagEnvFile  = "env-file"
	flagWriteEnv = "write-env"
)

func main() {
	app := cli.NewApp()
	app.Name = "bootstrap"
	app.Usage = "Create and seed the hosted database behind the auth gateway"
	app.Commands = []*cli.Command{
		{
			Name:  "create-database",
			Usage: "Create the database, import its schema, and create roles and the public key",
			Description: "Requires FAUNADB_ADMIN_KEY. Objects that already exist are " +
				"left untouched.",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  flagWriteEnv,
					Usage: "Write the new public key to the env file as FAUNADB_PUBLIC_KEY",
				},
				&cli.StringFlag{
					Name:  flagEnvFile,
					Usage: "The env file updated by --write-env",
					Value: ".env",
				},
			},
			Action: createDatabase,
		},
		{
			Name:        "seed",
			Usage:       "Create example users and todos",
			Description: "Requires FAUNADB_SERVER_KEY for the application database.",
			Action:      seed,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "\n%s %s\n", color.RedString("x"), err)
		os.Exit(1)
	}
}
