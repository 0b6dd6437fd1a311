package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/roblaszczak/go-cleanarch/cleanarch"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type archConfig struct {
	Version           int      `yaml:"version"`
	Root              string   `yaml:"root"`
	IgnoreTests       bool     `yaml:"ignore_tests"`
	IgnorePackages    []string `yaml:"ignore_packages"`
	SharedModules     []string `yaml:"shared_modules"`
	AllowedViolations []string `yaml:"allow_violations"`
	Aliases           struct {
		Domain         []string `yaml:"domain"`
		Application    []string `yaml:"application"`
		Interfaces     []string `yaml:"interfaces"`
		Infrastructure []string `yaml:"infrastructure"`
	} `yaml:"aliases"`
}

var (
	defaultDomainAliases         = []string{"domain", "aggregates"}
	defaultApplicationAliases    = []string{"services", "permissions"}
	defaultInterfacesAliases     = []string{"presentation"}
	defaultInfrastructureAliases = []string{"infrastructure"}
)

func newArchCmd() *cobra.Command {
	var (
		configPath string
		debug      bool
	)
	cmd := &cobra.Command{
		Use:   "arch",
		Short: "Check the clean architecture layering of modules/",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadArchConfig(configPath)
			if err != nil {
				return withCode(exitUsage, fmt.Errorf("read config: %w", err))
			}
			root, err := filepath.Abs(cfg.Root)
			if err != nil {
				return withCode(exitUsage, err)
			}
			if debug {
				cleanarch.Log.SetOutput(os.Stderr)
			}

			validator := cleanarch.NewValidator(cfg.layers())
			ok, errs, err := validator.Validate(root, cfg.IgnoreTests, cfg.IgnorePackages)
			if err != nil {
				return withCode(exitArch, fmt.Errorf("go-cleanarch: %w", err))
			}
			violations := filterViolations(errs, cfg)
			if ok || len(violations) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "architecture check passed")
				return nil
			}
			for _, v := range violations {
				fmt.Fprintln(cmd.ErrOrStderr(), v.Error())
			}
			return withCode(exitArch, errors.New("architecture check failed"))
		},
	}
	cmd.Flags().StringVar(&configPath, "config", ".gocleanarch.yml", "go-cleanarch configuration file")
	cmd.Flags().BoolVar(&debug, "debug", false, "print go-cleanarch debug output")
	return cmd
}

func loadArchConfig(path string) (*archConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &archConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.Root == "" {
		cfg.Root = "."
	}
	return cfg, nil
}

func (c *archConfig) layers() map[string]cleanarch.Layer {
	aliases := map[string]cleanarch.Layer{}
	applyAliases(aliases, c.Aliases.Domain, defaultDomainAliases, cleanarch.LayerDomain)
	applyAliases(aliases, c.Aliases.Application, defaultApplicationAliases, cleanarch.LayerApplication)
	applyAliases(aliases, c.Aliases.Interfaces, defaultInterfacesAliases, cleanarch.LayerInterfaces)
	applyAliases(aliases, c.Aliases.Infrastructure, defaultInfrastructureAliases, cleanarch.LayerInfrastructure)
	return aliases
}

func applyAliases(dst map[string]cleanarch.Layer, custom, defaults []string, layer cleanarch.Layer) {
	candidates := defaults
	if len(custom) > 0 {
		candidates = custom
	}
	for _, alias := range candidates {
		if alias != "" {
			dst[alias] = layer
		}
	}
}

var crossModulePattern = regexp.MustCompile(`between ([\w-]+) and ([\w-]+) modules`)

func filterViolations(errs []cleanarch.ValidationError, cfg *archConfig) []cleanarch.ValidationError {
	shared := make(map[string]struct{}, len(cfg.SharedModules))
	for _, m := range cfg.SharedModules {
		if m = strings.TrimSpace(m); m != "" {
			shared[m] = struct{}{}
		}
	}

	out := make([]cleanarch.ValidationError, 0, len(errs))
	for _, e := range errs {
		msg := e.Error()
		if m := crossModulePattern.FindStringSubmatch(msg); len(m) == 3 {
			_, left := shared[m[1]]
			_, right := shared[m[2]]
			if left || right {
				continue
			}
		}
		if allowedViolation(msg, cfg.AllowedViolations) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func allowedViolation(msg string, patterns []string) bool {
	for _, p := range patterns {
		if p != "" && strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
