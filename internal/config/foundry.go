package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/nuclifi/nuclifi-deployer/internal/domain/config"
)

// envVarPattern matches ${VAR_NAME} patterns in TOML values
var envVarPattern = regexp.MustCompile(`^\$\{([A-Za-z_][A-Za-z0-9_]*)\}$`)

// foundryTOML represents the raw foundry.toml structure
type foundryTOML struct {
	RpcEndpoints map[string]string               `toml:"rpc_endpoints"`
	Etherscan    map[string]map[string]string    `toml:"etherscan"`
	Profile      map[string]config.ProfileConfig `toml:"profile"`
}

// DetectEnvVar checks if a raw TOML value is a simple ${VAR_NAME} reference.
func DetectEnvVar(rawValue string) (string, bool) {
	matches := envVarPattern.FindStringSubmatch(rawValue)
	if len(matches) == 2 {
		return matches[1], true
	}
	return "", false
}

// GenerateEnvVarName returns the conventional env var name for a network's
// RPC URL: sepolia -> SEPOLIA_RPC_URL.
func GenerateEnvVarName(networkName string) string {
	name := strings.ToUpper(networkName)
	name = strings.NewReplacer("-", "_", ".", "_").Replace(name)
	return name + "_RPC_URL"
}

// loadEnvFiles loads .env and .env.local. Variables already present in the
// process environment win.
func loadEnvFiles(projectRoot string) error {
	envFiles := []string{
		filepath.Join(projectRoot, ".env"),
		filepath.Join(projectRoot, ".env.local"),
	}

	for _, envFile := range envFiles {
		if _, err := os.Stat(envFile); err != nil {
			continue
		}
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("failed to load %s: %w", filepath.Base(envFile), err)
		}
	}
	return nil
}

// loadFoundryConfig parses foundry.toml, expanding ${VAR} references. A
// project without foundry.toml gets an empty config.
func loadFoundryConfig(projectRoot string) (*config.FoundryConfig, map[string]string, error) {
	cfg := &config.FoundryConfig{
		Profile:      make(map[string]config.ProfileConfig),
		RpcEndpoints: make(map[string]string),
		Etherscan:    make(map[string]config.EtherscanConfig),
	}

	foundryPath := filepath.Join(projectRoot, "foundry.toml")
	var raw foundryTOML
	if _, err := toml.DecodeFile(foundryPath, &raw); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, map[string]string{}, nil
		}
		return nil, nil, fmt.Errorf("failed to parse foundry.toml: %w", err)
	}

	for name, url := range raw.RpcEndpoints {
		cfg.RpcEndpoints[name] = os.ExpandEnv(url)
	}

	for network, ethConfig := range raw.Etherscan {
		cfg.Etherscan[network] = config.EtherscanConfig{
			Key: os.ExpandEnv(ethConfig["key"]),
			URL: os.ExpandEnv(ethConfig["url"]),
		}
	}

	for name, profile := range raw.Profile {
		cfg.Profile[name] = profile
	}

	if raw.RpcEndpoints == nil {
		raw.RpcEndpoints = map[string]string{}
	}
	return cfg, raw.RpcEndpoints, nil
}

// artifactDirs returns the build output directories to search for compiled
// contracts: forge's out dir first, then hardhat's artifacts.
func artifactDirs(projectRoot string, foundry *config.FoundryConfig) []string {
	out := "out"
	if profile, ok := foundry.Profile["default"]; ok && profile.OutPath != "" {
		out = profile.OutPath
	}
	return []string{
		filepath.Join(projectRoot, out),
		filepath.Join(projectRoot, "artifacts"),
	}
}
