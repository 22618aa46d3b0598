package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile    string
	appVersion string // set in Execute, used by serve for telemetry
)

// Execute creates the root command tree and runs it.
func Execute(version, commit, date string) error {
	appVersion = version
	rootCmd := newRootCmd(version, commit, date)
	return rootCmd.Execute()
}

func newRootCmd(version, commit, date string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tiendify",
		Short: "Back-office API for the Tiendify storefront",
		Long: `Tiendify serves the administration API behind the storefront back office:
product and category management, customer and order views, and the secret
keys that let services call the API without a browser session.

End-user sessions are validated against the shop's OpenID Connect provider;
service callers authenticate with bcrypt-hashed secret keys issued here.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./tiendify.yaml)")
	cmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory for the SQLite database (default: ~/.tiendify)")

	cobra.OnInitialize(initConfig)

	// Add subcommands
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newVersionCmd(version, commit, date))
	cmd.AddCommand(newKeyCmd())
	cmd.AddCommand(newDBCmd())
	cmd.AddCommand(newMCPCmd())

	return cmd
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("tiendify")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.tiendify")
	}

	viper.SetEnvPrefix("TIENDIFY")
	viper.AutomaticEnv()
	viper.ReadInConfig() // Ignore error - config file is optional
}
