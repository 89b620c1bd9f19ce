package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/Tanmoy095/authgate/internal/pkg/logger"
	"github.com/Tanmoy095/authgate/internal/provision"
	"github.com/Tanmoy095/authgate/shared/config"
)

// consoleReporter prints provisioning progress with the +/o/- markers.
type consoleReporter struct {
	out io.Writer
}

func (r consoleReporter) Step(title string) {
	fmt.Fprintln(r.out, "\n"+color.CyanString(title))
}

func (r consoleReporter) Created(subject string) {
	fmt.Fprintf(r.out, "%s Created %s\n", color.GreenString("+"), subject)
}

func (r consoleReporter) Skipped(subject string) {
	fmt.Fprintf(r.out, "%s %s already exists.  Skipping...\n", color.BlueString("o"), subject)
}

func (r consoleReporter) Updated(subject string) {
	fmt.Fprintf(r.out, "%s Updated %s\n", color.BlueString("o"), subject)
}

func (r consoleReporter) Deleted(subject string) {
	fmt.Fprintf(r.out, "%s Deleted %s\n", color.RedString("-"), subject)
}

func createDatabase(c *cli.Context) error {
	if c.Args().Len() != 0 {
		return errors.New("create-database requires no arguments")
	}
	cfg, err := config.LoadProvisioning()
	if err != nil {
		return err
	}
	log, err := logger.New(false)
	if err != nil {
		return err
	}
	defer log.Sync() // nolint: errcheck

	fmt.Println(color.CyanString("Creating your FaunaDB Database..."))
	p := provision.New(provision.Config{
		AdminKey:       cfg.AdminKey,
		DatabaseName:   cfg.DatabaseName,
		FaunaEndpoint:  cfg.FaunaEndpoint,
		ImportEndpoint: cfg.ImportEndpoint,
		Reporter:       consoleReporter{out: os.Stdout},
		Logger:         log,
	})
	publicKey, err := p.CreateDatabase(c.Context)
	if err != nil {
		return err
	}
	fmt.Printf("%s Public client key: %s\n", color.YellowString("!"), color.YellowString(publicKey))

	if c.Bool(flagWriteEnv) {
		path := c.String(flagEnvFile)
		if err := provision.WriteEnv(path, map[string]string{"FAUNADB_PUBLIC_KEY": publicKey}); err != nil {
			return err
		}
		fmt.Printf("%s Wrote FAUNADB_PUBLIC_KEY to %s\n", color.BlueString("o"), path)
	}

	fmt.Println(color.GreenString("\nFauna Database schema has been created"))
	return nil
}

func seed(c *cli.Context) error {
	if c.Args().Len() != 0 {
		return errors.New("seed requires no arguments")
	}
	cfg, err := config.LoadSeed()
	if err != nil {
		return err
	}
	if err := provision.NewSeeder(cfg.ServerKey, cfg.FaunaEndpoint, nil, consoleReporter{out: os.Stdout}).Run(c.Context); err != nil {
		return err
	}
	fmt.Println(color.GreenString("\nCreated some Todo's"))
	return nil
}
