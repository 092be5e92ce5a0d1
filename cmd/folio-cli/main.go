package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/folio/clientcli"
)

var (
	version = "dev"

	cfgFile     string
	profileName string
	endpoint    string
	username    string
	password    string
	jsonOutput  bool
	quiet       bool
)

var rootCmd = &cobra.Command{
	Use:     "folio-cli",
	Version: version,
	Short:   "Client for the folio gallery API",
	Long: `folio-cli - client for a folio photography portfolio server

Reading albums and the gallery needs no credentials. create-album, upload
and delete send the admin credentials when they are configured, for servers
that protect writes. status and debug always require them.

Connection settings come from, in increasing precedence: the profile in
~/.folio/config.yaml, FOLIO_ENDPOINT / FOLIO_ADMIN_USERNAME /
FOLIO_ADMIN_PASSWORD, and the command line flags.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.folio/config.yaml, env: FOLIO_CONFIG)")
	rootCmd.PersistentFlags().StringVarP(&profileName, "profile", "p", "", "profile to use (env: FOLIO_PROFILE)")
	rootCmd.PersistentFlags().StringVarP(&endpoint, "endpoint", "e", "", "server URL (default: http://localhost:3000, env: FOLIO_ENDPOINT)")
	rootCmd.PersistentFlags().StringVarP(&username, "username", "u", "", "admin username (env: FOLIO_ADMIN_USERNAME)")
	rootCmd.PersistentFlags().StringVar(&password, "password", "", "admin password (env: FOLIO_ADMIN_PASSWORD)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")

	rootCmd.AddCommand(configureCmd)
	rootCmd.AddCommand(albumsCmd)
	rootCmd.AddCommand(imagesCmd)
	rootCmd.AddCommand(galleryCmd)
	rootCmd.AddCommand(createAlbumCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(debugCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr *exitError
		if !errors.As(err, &exitErr) {
			_ = getFormatter().FormatError(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// getConfigPath resolves the profile file: flag, then FOLIO_CONFIG, then
// the default location.
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if p := clientcli.ConfigPathFromEnv(); p != "" {
		return p
	}
	return clientcli.DefaultConfigPath()
}

// buildConfig merges the profile, env vars and flags (flags take precedence).
func buildConfig() (*clientcli.Config, error) {
	var configs []*clientcli.Config

	name := profileName
	if name == "" {
		name = clientcli.ProfileFromEnv()
	}

	configPath := getConfigPath()
	if configPath != "" {
		file, err := clientcli.LoadConfigFile(configPath)
		switch {
		case err == nil:
			p, profileErr := file.GetProfile(name)
			if profileErr != nil && (name != "" || !errors.Is(profileErr, clientcli.ErrNoProfiles)) {
				return nil, profileErr
			}
			configs = append(configs, clientcli.ConfigFromProfile(p))
		case cfgFile != "" || name != "":
			// An explicit file or profile must exist.
			return nil, fmt.Errorf("load profile: %w", err)
		}
	}

	configs = append(configs,
		clientcli.ConfigFromEnv(),
		&clientcli.Config{Endpoint: endpoint, Username: username, Password: password},
	)

	return clientcli.MergeConfig(configs...), nil
}

// getFormatter returns the appropriate formatter based on flags.
func getFormatter() clientcli.Formatter {
	return clientcli.NewFormatter(jsonOutput, quiet)
}

// getClient creates and returns a configured client.
func getClient() (*clientcli.Client, error) {
	cfg, err := buildConfig()
	if err != nil {
		return nil, err
	}
	return clientcli.New(cfg)
}

// exitError is returned when we want to exit with a failure code after the
// command has already reported the problem.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}
