package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/ukaji3/xltranslate-go/pkg/xltranslate/config"
	"github.com/ukaji3/xltranslate-go/pkg/xltranslate/credentials"
)

var providers = []string{config.ProviderOpenAI, config.ProviderAnthropic, config.ProviderGemini}

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage provider API keys",
		Long: `Manage the API keys stored in $XDG_DATA_HOME/xltranslate/auth.json.

Examples:
  xltranslate auth set --provider openai       Store an OpenAI key (read from stdin)
  xltranslate auth set --provider anthropic --key sk-ant-...
  xltranslate auth status                      Show where each key comes from
  xltranslate auth remove --provider openai    Remove a stored key`,
	}
	cmd.AddCommand(
		newAuthSetCmd(),
		newAuthStatusCmd(),
		newAuthRemoveCmd(),
	)
	return cmd
}

func validProvider(name string) error {
	for _, p := range providers {
		if p == name {
			return nil
		}
	}
	return fmt.Errorf("unknown provider %q (must be one of %s)", name, strings.Join(providers, ", "))
}

func newAuthSetCmd() *cobra.Command {
	var (
		provider   string
		key        string
		baseURL    string
		skipVerify bool
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Validate and store an API key",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validProvider(provider); err != nil {
				return err
			}
			if key == "" {
				fmt.Fprint(os.Stderr, "API key: ")
				scanner := bufio.NewScanner(os.Stdin)
				if !scanner.Scan() {
					return fmt.Errorf("no input received")
				}
				key = scanner.Text()
			}
			key = strings.TrimSpace(key)
			if key == "" {
				return fmt.Errorf("empty API key")
			}

			if !skipVerify {
				ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
				defer cancel()
				p, err := newProvider(ctx, config.ProviderConfig{Name: provider, Model: config.DefaultModel(provider)}, key, baseURL)
				if err != nil {
					return err
				}
				if err := p.ValidateKey(ctx); err != nil {
					return err
				}
			}

			if err := credentials.Set(provider, &credentials.Entry{Key: key, BaseURL: baseURL}); err != nil {
				return err
			}
			path, _ := credentials.FilePath()
			fmt.Printf("%s stored %s key %s in %s\n", okStyle.Render("✓"), provider, credentials.MaskKey(key), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&provider, "provider", config.ProviderOpenAI, "Provider: openai, anthropic, gemini")
	cmd.Flags().StringVar(&key, "key", "", "API key (default: read from stdin)")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "Custom API endpoint")
	cmd.Flags().BoolVar(&skipVerify, "no-verify", false, "Store the key without validating it")
	return cmd
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the API key each provider would use",
		Run: func(cmd *cobra.Command, args []string) {
			for _, p := range providers {
				key, source := credentials.Resolve(p, "")
				if key == "" {
					fmt.Printf("  %s%s\n", labelStyle.Render(p), warnStyle.Render("not configured"))
					continue
				}
				fmt.Printf("  %s%s (%s)\n", labelStyle.Render(p), valueStyle.Render(credentials.MaskKey(key)), source)
			}
		},
	}
}

func newAuthRemoveCmd() *cobra.Command {
	var provider string
	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove a stored API key",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validProvider(provider); err != nil {
				return err
			}
			if err := credentials.Remove(provider); err != nil {
				return err
			}
			fmt.Printf("%s removed %s key\n", okStyle.Render("✓"), provider)
			return nil
		},
	}
	cmd.Flags().StringVar(&provider, "provider", config.ProviderOpenAI, "Provider: openai, anthropic, gemini")
	return cmd
}
