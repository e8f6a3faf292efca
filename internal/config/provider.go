package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/nuclifi/nuclifi-deployer/internal/domain/config"
)

// Provider creates RuntimeConfig for Wire dependency injection
func Provider(v *viper.Viper) (*config.RuntimeConfig, error) {
	projectRoot := v.GetString("project_root")
	if projectRoot == "" {
		var err error
		projectRoot, err = FindProjectRoot()
		if err != nil {
			return nil, fmt.Errorf("failed to find project root: %w", err)
		}
	}

	// .env must be loaded before any secret is read from the environment
	if err := loadEnvFiles(projectRoot); err != nil {
		return nil, err
	}

	cfg := &config.RuntimeConfig{
		ProjectRoot:    projectRoot,
		DataDir:        filepath.Join(projectRoot, ".nuclifi"),
		DeploymentsDir: filepath.Join(projectRoot, "deployments"),
		ABIDir:         filepath.Join(projectRoot, "deployments", "abis"),
		Debug:          v.GetBool("debug"),
		NonInteractive: v.GetBool("non_interactive"),
		Timeout:        v.GetDuration("timeout"),
		ConfirmTimeout: v.GetDuration("confirm_timeout"),
	}

	foundryConfig, rawEndpoints, err := loadFoundryConfig(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to load foundry config: %w", err)
	}
	cfg.FoundryConfig = foundryConfig
	cfg.ArtifactDirs = artifactDirs(projectRoot, foundryConfig)

	if networkName := v.GetString("network"); networkName != "" {
		resolver := NewNetworkResolver(foundryConfig, rawEndpoints, v.GetString("infura_project_id"), v.GetString("etherscan_api_key"))
		network, err := resolver.Resolve(networkName)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve network %s: %w", networkName, err)
		}
		cfg.Network = network
	}

	// a missing key only matters to commands that sign; a malformed one is
	// always an error
	if key := v.GetString("private_key"); key != "" {
		credential, err := ParseCredential(key)
		if err != nil {
			return nil, err
		}
		cfg.Credential = credential
	}

	return cfg, nil
}

// ProvideNetworkResolver creates a NetworkResolver for Wire dependency injection
func ProvideNetworkResolver(v *viper.Viper, cfg *config.RuntimeConfig) (*NetworkResolver, error) {
	_, rawEndpoints, err := loadFoundryConfig(cfg.ProjectRoot)
	if err != nil {
		return nil, err
	}
	return NewNetworkResolver(cfg.FoundryConfig, rawEndpoints, v.GetString("infura_project_id"), v.GetString("etherscan_api_key")), nil
}

// FindProjectRoot walks up from the current directory to the first directory
// holding foundry.toml or a hardhat config. Falls back to the current
// directory.
func FindProjectRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	markers := []string{"foundry.toml", "hardhat.config.ts", "hardhat.config.js"}
	dir := cwd
	for {
		for _, marker := range markers {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return cwd, nil
		}
		dir = parent
	}
}

// SetupViper creates and configures a viper instance
func SetupViper(projectRoot string, cmd *cobra.Command) *viper.Viper {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(projectRoot, ".nuclifi"))

	v.SetEnvPrefix("NUCLIFI")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	// secrets keep their conventional unprefixed names
	_ = v.BindEnv("private_key", "PRIVATE_KEY")
	_ = v.BindEnv("etherscan_api_key", "ETHERSCAN_API_KEY")
	_ = v.BindEnv("infura_project_id", "INFURA_PROJECT_ID")

	v.SetDefault("network", "goerli")
	v.SetDefault("timeout", "0")
	v.SetDefault("confirm_timeout", "5m")
	v.SetDefault("debug", false)
	v.SetDefault("non_interactive", false)
	v.SetDefault("project_root", projectRoot)

	// Try to read config file (ignore error if not found)
	_ = v.ReadInConfig()

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if err := v.BindPFlag(key, f); err != nil {
			panic(err)
		}
	})

	return v
}
