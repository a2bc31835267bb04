// Command signsniff reads traffic to and from the sign.
package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	cmd := &cobra.Command{
		Use:  "signsniff",
		Args: cobra.ExactArgs(0),
	}

	cmd.AddCommand(sniffCommand())
	cmd.AddCommand(dumpCommand())

	if err := cmd.Execute(); err != nil {
		log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
		log.Fatal().Err(err).Msg("signsniff failed")
	}
}
