// Command signd keeps a count on the sign.
package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	cmd := rootCommand()

	if err := cmd.Execute(); err != nil {
		log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
		log.Fatal().Err(err).Msg("signd failed")
	}
}

func rootCommand() *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:           "signd",
		Short:         "Drive the count shown on the sign",
		Args:          cobra.ExactArgs(0),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, &f, nil)
		},
	}
	f.register(cmd)

	cmd.AddCommand(fixedCommand(&f))
	cmd.AddCommand(targetCommand(&f))

	return cmd
}
