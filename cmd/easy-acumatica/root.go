package main

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	log = zerolog.Nop()

	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "easy-acumatica",
	Short: "Generate Go clients for contract-based endpoints",
	Long: `easy-acumatica connects to an Acumatica instance, downloads the
contract endpoint schema, and generates static Go model stubs from it.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := zerolog.InfoLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(level).
			With().Timestamp().Logger()

		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
			if err := viper.ReadInConfig(); err != nil {
				return err
			}
			log.Debug().Str("file", viper.ConfigFileUsed()).Msg("config loaded")
		}
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file with connection settings")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.PersistentFlags().String("url", "", "instance base URL")
	rootCmd.PersistentFlags().String("username", "", "login name")
	rootCmd.PersistentFlags().String("password", "", "login password")
	rootCmd.PersistentFlags().String("tenant", "", "tenant name")
	rootCmd.PersistentFlags().String("endpoint-name", "Default", "contract endpoint name")
	rootCmd.PersistentFlags().String("endpoint-version", "", "contract endpoint version (discovered when empty)")

	viper.SetEnvPrefix("acumatica")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	for _, name := range []string{"url", "username", "password", "tenant", "endpoint-name", "endpoint-version"} {
		if err := viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			panic(err)
		}
	}

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(endpointsCmd)
}
