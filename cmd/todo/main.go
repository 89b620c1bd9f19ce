package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

const (
	flagEmail    = "email"
	flagPassword = "password"
	flagServer   = "server"
)

func main() {
	app := cli.NewApp()
	app.Name = "todo"
	app.Usage = "Manage your todos through the auth gateway"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    flagServer,
			Aliases: []string{"s"},
			Usage:   "The gateway's GraphQL endpoint",
			EnvVars: []string{"AUTHGATE_SERVER"},
			Value:   "http://localhost:8080/graphql",
		},
	}
	app.Commands = []*cli.Command{
		{
			Name:  "login",
			Usage: "Log in and keep the session for later commands",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     flagEmail,
					Aliases:  []string{"e"},
					Usage:    "Account email",
					Required: true,
				},
				&cli.StringFlag{
					Name:     flagPassword,
					Aliases:  []string{"p"},
					Usage:    "Account password",
					EnvVars:  []string{"AUTHGATE_PASSWORD"},
					Required: true,
				},
			},
			Action: login,
		},
		{
			Name:   "logout",
			Usage:  "End the session",
			Action: logout,
		},
		{
			Name:   "status",
			Usage:  "Show whether the saved session is still valid",
			Action: status,
		},
		{
			Name:   "list",
			Usage:  "List your todos",
			Action: list,
		},
		{
			Name:      "add",
			Usage:     "Create a todo",
			ArgsUsage: "TITLE",
			Action:    add,
		},
		{
			Name:      "done",
			Usage:     "Mark a todo completed",
			ArgsUsage: "TODO_ID",
			Action:    setCompleted(true),
		},
		{
			Name:      "undo",
			Usage:     "Mark a todo not completed",
			ArgsUsage: "TODO_ID",
			Action:    setCompleted(false),
		},
		{
			Name:      "rm",
			Usage:     "Delete a todo",
			ArgsUsage: "TODO_ID",
			Action:    remove,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "\n%s\n\n", err)
		os.Exit(1)
	}
}
