package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/sagarc03/folio/clientcli"
)

const connectionCheckTimeout = 5 * time.Second

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Manage server profiles",
	Long: `Manage server profiles in the configuration file.

A profile stores the endpoint of a folio server and, optionally, the admin
credentials and route prefix used for admin and protected write commands.
Switch between profiles with --profile or FOLIO_PROFILE.

Configuration is stored in ~/.folio/config.yaml`,
}

var configureListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configured profiles",
	Long: `List all profiles configured in the config file.

The default profile is marked with an asterisk (*).`,
	RunE: runConfigureList,
}

var configureAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add or update a profile",
	Long: `Add a profile interactively, or update an existing one.

You will be prompted for the endpoint URL, admin credentials (optional)
and the admin route prefix. Before saving, the server's health check is
called and, when credentials were given, they are tried against the admin
status endpoint.`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigureAdd,
}

var configureRemoveCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"rm"},
	Short:   "Remove a profile",
	Args:    cobra.ExactArgs(1),
	RunE:    runConfigureRemove,
}

var configureSetDefaultCmd = &cobra.Command{
	Use:   "set-default <name>",
	Short: "Set the default profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigureSetDefault,
}

var configureShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show profile details",
	Long: `Show details for a profile, or the default profile when no name is given.
Passwords are masked unless --show-secrets is set.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigureShow,
}

var showSecrets bool

func init() {
	configureCmd.AddCommand(configureListCmd, configureAddCmd, configureRemoveCmd,
		configureSetDefaultCmd, configureShowCmd)

	configureShowCmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "show passwords")
	configureListCmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "show passwords")
}

// loadProfiles reads the profile file. With allowMissing an absent file is
// an empty one.
func loadProfiles(allowMissing bool) (*clientcli.ConfigFile, string, error) {
	path := getConfigPath()

	cfg, err := clientcli.LoadConfigFile(path)
	if err != nil {
		if allowMissing && errors.Is(err, os.ErrNotExist) {
			return &clientcli.ConfigFile{}, path, nil
		}
		return nil, path, fmt.Errorf("load config: %w", err)
	}
	return cfg, path, nil
}

func runConfigureList(_ *cobra.Command, _ []string) error {
	cfg, _, err := loadProfiles(true)
	if err != nil {
		return err
	}

	if len(cfg.Profiles) == 0 {
		fmt.Println("No profiles configured.")
		fmt.Println("Run 'folio-cli configure add <name>' to create one.")
		return nil
	}

	defaultName := cfg.Profiles[0].Name
	if p, err := cfg.GetDefaultProfile(); err == nil {
		defaultName = p.Name
	}

	return getFormatter().FormatProfileList(os.Stdout, cfg.Profiles, defaultName, showSecrets)
}

// confirm asks a yes/no question. Any answer other than yes, including an
// aborted prompt, is a no.
func confirm(label string) bool {
	prompt := promptui.Prompt{Label: label, IsConfirm: true}
	_, err := prompt.Run()
	return err == nil
}

func validateEndpoint(input string) error {
	if input == "" {
		return errors.New("endpoint URL is required")
	}
	u, err := url.Parse(input)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("URL must start with http:// or https://")
	}
	if u.Host == "" {
		return errors.New("URL must include a host")
	}
	return nil
}

func validatePrefix(input string) error {
	if !strings.HasPrefix(input, "/") || input == "/" {
		return errors.New("prefix must start with / and name a path")
	}
	return nil
}

// promptProfile collects a profile's settings, starting from base.
func promptProfile(name string, base clientcli.Profile) (clientcli.Profile, error) {
	p := clientcli.Profile{Name: name}

	endpoint := base.Endpoint
	if endpoint == "" {
		endpoint = clientcli.DefaultEndpoint
	}
	endpoint, err := (&promptui.Prompt{
		Label:    "Endpoint URL",
		Default:  endpoint,
		Validate: validateEndpoint,
	}).Run()
	if err != nil {
		return p, err
	}
	p.Endpoint = strings.TrimSuffix(endpoint, "/")

	p.Username, err = (&promptui.Prompt{
		Label:   "Admin username (blank to skip)",
		Default: base.Username,
	}).Run()
	if err != nil {
		return p, err
	}

	if p.Username != "" {
		p.Password, err = (&promptui.Prompt{
			Label: "Admin password",
			Mask:  '*',
			Validate: func(input string) error {
				if input == "" {
					return errors.New("password is required when a username is set")
				}
				return nil
			},
		}).Run()
		if err != nil {
			return p, err
		}
	}

	prefix := base.AdminPrefix
	if prefix == "" {
		prefix = clientcli.DefaultAdminPrefix
	}
	prefix, err = (&promptui.Prompt{
		Label:    "Admin route prefix",
		Default:  prefix,
		Validate: validatePrefix,
	}).Run()
	if err != nil {
		return p, err
	}
	if prefix != clientcli.DefaultAdminPrefix {
		p.AdminPrefix = prefix
	}

	return p, nil
}

func runConfigureAdd(_ *cobra.Command, args []string) error {
	name := args[0]

	cfg, path, err := loadProfiles(true)
	if err != nil {
		return err
	}

	var base clientcli.Profile
	existing, _ := cfg.GetProfile(name)
	if existing != nil {
		if !confirm(fmt.Sprintf("Profile '%s' already exists. Update it", name)) {
			fmt.Println("Cancelled.")
			return nil
		}
		base = *existing
	}

	profile, err := promptProfile(name, base)
	if err != nil {
		return handlePromptError(err)
	}

	profile.Default = len(cfg.Profiles) == 0 || confirm("Set as default profile")

	if checkErr := checkProfile(profile); checkErr != nil {
		fmt.Printf("Warning: %v\n", checkErr)
		if !confirm("Save profile anyway") {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	if profile.Default {
		for i := range cfg.Profiles {
			cfg.Profiles[i].Default = false
		}
	}

	if existing != nil {
		err = cfg.UpdateProfile(profile)
	} else {
		err = cfg.AddProfile(profile)
	}
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}

	if err := cfg.Save(path); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	verb := "added"
	if existing != nil {
		verb = "updated"
	}
	fmt.Printf("Profile '%s' %s.\n", name, verb)
	if profile.Default {
		fmt.Println("Set as default profile.")
	}

	return nil
}

// checkProfile makes sure the server answers and, when the profile carries
// credentials, that the admin gate accepts them.
func checkProfile(p clientcli.Profile) error {
	client, err := clientcli.New(clientcli.ConfigFromProfile(&p), clientcli.WithTimeout(connectionCheckTimeout))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectionCheckTimeout)
	defer cancel()

	fmt.Print("Testing connection... ")
	if err := client.Health(ctx); err != nil {
		fmt.Println("FAILED")
		return fmt.Errorf("could not reach server: %w", err)
	}
	fmt.Println("OK")

	if p.Username == "" {
		return nil
	}

	fmt.Print("Checking admin credentials... ")
	if _, err := client.Status(ctx); err != nil {
		fmt.Println("FAILED")
		return fmt.Errorf("admin status check failed: %w", err)
	}
	fmt.Println("OK")

	return nil
}

func runConfigureRemove(_ *cobra.Command, args []string) error {
	name := args[0]

	cfg, path, err := loadProfiles(false)
	if err != nil {
		return err
	}

	if _, err := cfg.GetProfile(name); err != nil {
		return err
	}

	if !confirm(fmt.Sprintf("Remove profile '%s'", name)) {
		fmt.Println("Cancelled.")
		return nil
	}

	if err := cfg.RemoveProfile(name); err != nil {
		return fmt.Errorf("remove profile: %w", err)
	}

	if err := cfg.Save(path); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Printf("Profile '%s' removed.\n", name)
	return nil
}

func runConfigureSetDefault(_ *cobra.Command, args []string) error {
	cfg, path, err := loadProfiles(false)
	if err != nil {
		return err
	}

	if err := cfg.SetDefault(args[0]); err != nil {
		return err
	}

	if err := cfg.Save(path); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Printf("Default profile set to '%s'.\n", args[0])
	return nil
}

func runConfigureShow(_ *cobra.Command, args []string) error {
	cfg, _, err := loadProfiles(false)
	if err != nil {
		return err
	}

	name := ""
	if len(args) > 0 {
		name = args[0]
	}

	p, err := cfg.GetProfile(name)
	if err != nil {
		return err
	}

	// An empty name resolved to the default profile.
	isDefault := p.Default || name == ""

	return getFormatter().FormatProfileShow(os.Stdout, *p, isDefault, showSecrets)
}

func handlePromptError(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) {
		fmt.Println("\nCancelled.")
		os.Exit(0)
	}
	if errors.Is(err, promptui.ErrAbort) {
		fmt.Println("Cancelled.")
		return nil
	}
	return err
}
