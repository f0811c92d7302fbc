package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/newslens/internal/classifier"
	"github.com/ppiankov/newslens/internal/factcheck"
	"github.com/ppiankov/newslens/internal/llm"
	"github.com/ppiankov/newslens/internal/model"
	"github.com/ppiankov/newslens/internal/util"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage newslens configuration",
	Long: `Manage newslens configuration files and settings.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (NEWSLENS_*, e.g. NEWSLENS_LLM_MODEL; API keys
   also from GROQ_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY)
3. Config file (~/.newslens/config.yaml)
4. Defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.LLM.APIKey != "" {
			cfg.LLM.APIKey = "********"
		}

		if file := viper.ConfigFileUsed(); file != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "# config file: %s\n", file)
		} else {
			fmt.Fprintln(cmd.ErrOrStderr(), "# no config file found, showing defaults and environment")
		}
		if env := llm.APIKeyEnv(cfg.LLM.Provider); env != "" && os.Getenv(env) != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "# API key taken from %s\n", env)
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long:  `Create ~/.newslens/config.yaml (or the --config path) with every option at its default.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("find home directory: %w", err)
			}
			path = filepath.Join(home, ".newslens", "config.yaml")
		}

		if err := writeDefaultConfig(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
		return nil
	},
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the LLM provider and classifiers",
	Long: `Check that the configured LLM provider answers with the configured
credentials and that every classifier loads. The ensemble check needs
exactly four classifiers; with none configured it is disabled.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), configCheckTimeout)
		defer cancel()
		return checkConfig(ctx, cmd.OutOrStdout(), cfg)
	},
}

const configCheckTimeout = 15 * time.Second

// newProvider is replaced in tests
var newProvider = llm.NewProvider

var errConfigCheck = errors.New("configuration check failed")

// checkConfig reports provider reachability and classifier loading
func checkConfig(ctx context.Context, w io.Writer, cfg model.Config) error {
	ok, fail := color.GreenString("✓"), color.RedString("✗")
	failed := false

	provider, err := newProvider(llm.ResolveEnv(llm.ConfigFromModel(cfg.LLM)))
	switch {
	case err != nil:
		failed = true
		fmt.Fprintf(w, "%s llm: %v\n", fail, err)
	case provider.IsAvailable(ctx):
		fmt.Fprintf(w, "%s llm: %s (%s) reachable\n", ok, provider.Name(), cfg.LLM.Model)
	default:
		failed = true
		fmt.Fprintf(w, "%s llm: %s (%s) not reachable\n", fail, provider.Name(), cfg.LLM.Model)
	}

	transport := util.NewTransport(cfg.LLM.HTTPProxy, cfg.LLM.HTTPSProxy, cfg.LLM.NoProxy)
	registry, err := classifier.Load(cfg.Classifiers, transport)
	switch {
	case err != nil:
		failed = true
		fmt.Fprintf(w, "%s classifiers: %v\n", fail, err)
	case registry.Len() == 0:
		fmt.Fprintf(w, "%s classifiers: none configured, ensemble check disabled\n", color.YellowString("!"))
	case registry.Len() != factcheck.EnsembleSize:
		failed = true
		fmt.Fprintf(w, "%s classifiers: ensemble needs %d, got %d %v\n", fail, factcheck.EnsembleSize, registry.Len(), registry.Names())
	default:
		fmt.Fprintf(w, "%s classifiers: %v\n", ok, registry.Names())
	}

	if failed {
		return errConfigCheck
	}
	return nil
}

const configHeader = `# newslens configuration
#
# Priority: CLI flags > NEWSLENS_* environment variables > this file > defaults.
# Keep API keys in the environment (GROQ_API_KEY, OPENAI_API_KEY,
# ANTHROPIC_API_KEY) rather than here.
#
# The ensemble check needs exactly four classifiers, for example:
#
# classifiers:
#   - name: lr
#     kind: linear
#     path: ~/.newslens/models/lr.json
#   - name: rf
#     kind: remote
#     url: http://localhost:8000/predict/rf
#     timeout: 10

`

// writeDefaultConfig refuses to overwrite an existing file
func writeDefaultConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, append([]byte(configHeader), data...), 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configCheckCmd)
}
