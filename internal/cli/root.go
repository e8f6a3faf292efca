package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/nuclifi/nuclifi-deployer/internal/adapters/progress"
	"github.com/nuclifi/nuclifi-deployer/internal/app"
	"github.com/nuclifi/nuclifi-deployer/internal/config"
	"github.com/nuclifi/nuclifi-deployer/internal/usecase"
)

// contextKey is the type for context keys
type contextKey string

const (
	// appKey is the context key for the app instance
	appKey contextKey = "app"
)

// session releases what InitApp acquired. close is safe to call more than
// once and before the app was built.
type session struct {
	cleanup func()
}

func (s *session) close() {
	if s.cleanup != nil {
		s.cleanup()
		s.cleanup = nil
	}
}

// Execute runs the root command. The app is released whether the command
// succeeded or not.
func Execute() error {
	return run(newRootCmd())
}

func run(cmd *cobra.Command, s *session) error {
	defer s.close()
	return cmd.Execute()
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd, _ := newRootCmd()
	return rootCmd
}

func newRootCmd() (*cobra.Command, *session) {
	s := &session{}

	rootCmd := &cobra.Command{
		Use:   "nuclifi-deploy",
		Short: "Deploy and wire the Nuclifi protocol contracts",
		Long: `nuclifi-deploy deploys the Nuclifi protocol contracts to an EVM network,
records their addresses in deployments/<network>.json, verifies their sources on
the network's block explorer and wires them together.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Skip for help/version commands
			if skipsApp(cmd) {
				return nil
			}

			projectRoot, _ := cmd.Flags().GetString("project-root")
			if projectRoot == "" {
				var err error
				projectRoot, err = config.FindProjectRoot()
				if err != nil {
					return err
				}
			}

			v := config.SetupViper(projectRoot, cmd)

			appInstance, appCleanup, err := app.InitApp(v, newProgressSink(v.GetBool("debug"), v.GetBool("non_interactive")))
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}
			s.cleanup = appCleanup

			// Store app in context
			ctx := context.WithValue(cmd.Context(), appKey, appInstance)

			// Optional overall deadline, off unless NUCLIFI_TIMEOUT is set
			if appInstance.Config.Timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, appInstance.Config.Timeout)
				s.cleanup = func() {
					cancel()
					appCleanup()
				}
			}

			cmd.SetContext(ctx)
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug output")
	rootCmd.PersistentFlags().Bool("non-interactive", false, "Disable interactive prompts")
	rootCmd.PersistentFlags().StringP("network", "n", "", "Network to use (e.g., goerli, sepolia, localhost)")
	rootCmd.PersistentFlags().String("project-root", "", "Project directory (defaults to the nearest directory with foundry.toml)")

	// Add command groups
	rootCmd.AddGroup(&cobra.Group{
		ID:    "main",
		Title: "Main Commands",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "management",
		Title: "Management Commands",
	})

	// Main commands
	deployCmd := NewDeployCmd()
	deployCmd.GroupID = "main"
	rootCmd.AddCommand(deployCmd)

	verifyCmd := NewVerifyCmd()
	verifyCmd.GroupID = "main"
	rootCmd.AddCommand(verifyCmd)

	showCmd := NewShowCmd()
	showCmd.GroupID = "main"
	rootCmd.AddCommand(showCmd)

	// Management commands
	plansCmd := NewPlansCmd()
	plansCmd.GroupID = "management"
	rootCmd.AddCommand(plansCmd)

	exportCmd := NewExportABIsCmd()
	exportCmd.GroupID = "management"
	rootCmd.AddCommand(exportCmd)

	networksCmd := NewNetworksCmd()
	networksCmd.GroupID = "management"
	rootCmd.AddCommand(networksCmd)

	// Version command
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd, s
}

// skipsApp reports whether cmd runs without project configuration
func skipsApp(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "version", "help", "completion", "__complete":
		return true
	}
	return false
}

// newProgressSink picks the spinner on a terminal and stays silent otherwise,
// leaving the structured log as the only output.
func newProgressSink(debug, nonInteractive bool) usecase.ProgressSink {
	if debug || nonInteractive || !isatty.IsTerminal(os.Stderr.Fd()) {
		return usecase.NopProgress{}
	}
	return progress.NewSpinnerSink()
}

// useColor reports whether output should be colored
func useColor(cmd *cobra.Command) bool {
	if os.Getenv("NO_COLOR") != "" || os.Getenv("CI") == "true" {
		return false
	}
	if f, ok := cmd.OutOrStdout().(*os.File); ok {
		return isatty.IsTerminal(f.Fd())
	}
	return false
}

// getApp retrieves the app instance from the command context
func getApp(cmd *cobra.Command) (*app.App, error) {
	appInstance := cmd.Context().Value(appKey)
	if appInstance == nil {
		return nil, fmt.Errorf("app not initialized")
	}

	app, ok := appInstance.(*app.App)
	if !ok {
		return nil, fmt.Errorf("invalid app instance")
	}

	return app, nil
}
