package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "figview",
		Short: "Turn photos into figure renders and inspect the result",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadConfig()
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().String("log-level", "", "log level (info, debug, warn, error)")
	root.PersistentFlags().String("endpoint", "", "base URL of the image-processing service")
	root.PersistentFlags().String("user", "", "user identifier; also sent as the API key")
	_ = viper.BindPFlag("app.log_level", root.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("endpoint.url", root.PersistentFlags().Lookup("endpoint"))
	_ = viper.BindPFlag("endpoint.api_key", root.PersistentFlags().Lookup("user"))

	root.AddCommand(newGenerateCommand())
	root.AddCommand(newViewCommand())
	root.AddCommand(newQuotaCommand())
	root.AddCommand(newStatusCommand())

	return root
}
