package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage fiberctl configuration profiles",
	}
	cmd.AddCommand(newConfigViewCmd())
	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigUseCmd())
	return cmd
}

func newConfigViewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Show the current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := LoadUserConfig()
			if err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "No config file at %s\n", ConfigPath())
				return nil
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), cfg)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Current profile: %s\n", cfg.CurrentProfile)
			for name, p := range cfg.Profiles {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s: host=%s output=%s\n", name, p.Host, p.Output)
			}
			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	var host, output string
	cmd := &cobra.Command{
		Use:   "set PROFILE",
		Short: "Create or update a configuration profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadUserConfig()
			if err != nil {
				cfg = &UserConfig{CurrentProfile: args[0], Profiles: map[string]Profile{}}
			}
			p := cfg.Profiles[args[0]]
			if host != "" {
				p.Host = host
			}
			if output != "" {
				p.Output = output
			}
			cfg.Profiles[args[0]] = p
			if err := SaveUserConfig(cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved profile %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "Metaserver host URL")
	cmd.Flags().StringVar(&output, "output", "", "Default output format")
	return cmd
}

func newConfigUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use PROFILE",
		Short: "Switch the current profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadUserConfig()
			if err != nil {
				return fmt.Errorf("no config file: %w", err)
			}
			if _, ok := cfg.Profiles[args[0]]; !ok {
				return fmt.Errorf("profile %q not found", args[0])
			}
			cfg.CurrentProfile = args[0]
			if err := SaveUserConfig(cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Switched to profile %s\n", args[0])
			return nil
		},
	}
}
