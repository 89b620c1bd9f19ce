// cmd/lambda/main.go
package main

import (
	"fmt"
	"os"

	awslambda "github.com/aws/aws-lambda-go/lambda"

	"github.com/Tanmoy095/authgate/internal/lambda"
	"github.com/Tanmoy095/authgate/internal/pkg/logger"
	"github.com/Tanmoy095/authgate/internal/server"
	"github.com/Tanmoy095/authgate/shared/config"
)

// The schema is built on the first invocation and reused while the
// function instance stays warm.
func main() {
	cfg, err := config.LoadGateway()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.Production())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	awslambda.Start(lambda.Adapt(server.FromConfig(cfg, log)))
}
