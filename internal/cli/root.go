// Package cli implements the newslens command line.
package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/newslens/internal/model"
	"github.com/ppiankov/newslens/internal/pipeline"
	"github.com/ppiankov/newslens/internal/server"
)

// Version is set at build time with -ldflags "-X .../internal/cli.Version=..."
var Version = "dev"

var (
	cfgFile string
	verbose bool
)

// newAnalyzer builds the service behind every command. Tests replace it.
var newAnalyzer = func(cfg model.Config) (server.Analyzer, error) {
	svc, err := pipeline.Build(cfg)
	if err != nil {
		return nil, err
	}
	return svc, nil
}

var rootCmd = &cobra.Command{
	Use:   "newslens",
	Short: "newslens - summaries, questions and fake-news checks for long text and videos",
	Long: `newslens turns long text or a video transcript into a structured HTML
summary, answers questions about that summary, and checks content for
signs of fake news.

Two fake-news checks are available:
  - an LLM analysis whose fake verdicts are kept only when confident
  - a four-classifier ensemble, gated on the year its training data covers

Run "newslens serve" for the HTTP API or use the one-shot commands.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "newslens %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.newslens/config.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	flags.String("provider", "", "LLM provider (groq, openai, anthropic, ollama)")
	flags.String("model", "", "LLM model name")
	flags.String("log-format", "", "log format (console, json, auto)")

	_ = viper.BindPFlag("llm.provider", flags.Lookup("provider"))
	_ = viper.BindPFlag("llm.model", flags.Lookup("model"))
	_ = viper.BindPFlag("log.format", flags.Lookup("log-format"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig layers defaults, the config file and NEWSLENS_* variables
func initConfig() {
	if err := setDefaults(viper.GetViper(), model.DefaultConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading defaults: %v\n", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".newslens"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("NEWSLENS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
		}
	}
}

// setDefaults registers every leaf of cfg as a viper default so that
// AutomaticEnv can resolve NEWSLENS_SECTION_KEY for all of them
func setDefaults(v *viper.Viper, cfg model.Config) error {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	tree := map[string]any{}
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return err
	}

	var walk func(prefix string, node map[string]any)
	walk = func(prefix string, node map[string]any) {
		for k, val := range node {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			if child, ok := val.(map[string]any); ok {
				walk(key, child)
				continue
			}
			v.SetDefault(key, val)
		}
	}
	walk("", tree)
	return nil
}

// loadConfig resolves the effective configuration
func loadConfig() (model.Config, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (model.Config, error) {
	cfg := model.DefaultConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the process logger and installs it as the fallback
// for zerolog.Ctx
func newLogger(cfg model.LogConfig, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	if verbose {
		level = zerolog.DebugLevel
	}

	var w io.Writer = out
	switch strings.ToLower(cfg.Format) {
	case "json":
	case "console":
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	default:
		if f, ok := out.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
			w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
		}
	}

	logger := zerolog.New(w).Level(level).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &logger
	return logger
}

// setup loads config and logging for a command
func setup() (model.Config, zerolog.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return cfg, zerolog.Nop(), err
	}
	return cfg, newLogger(cfg.Log, os.Stderr), nil
}

// readInput reads a file argument, or stdin when it is "-" or absent
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, cmd.InOrStdin()); err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return buf.String(), nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return string(data), nil
}
