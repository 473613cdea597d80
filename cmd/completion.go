package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// detectShell auto-detects the current shell from environment
func detectShell() string {
	shell := os.Getenv("SHELL")
	shellLower := strings.ToLower(shell)

	if strings.Contains(shellLower, "fish") {
		return "fish"
	}
	if strings.Contains(shellLower, "zsh") {
		return "zsh"
	}
	if strings.Contains(shellLower, "pwsh") || strings.Contains(shellLower, "powershell") {
		return "powershell"
	}
	return "bash"
}

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate a shell completion script for rivanna-resource.

Without an argument the shell is taken from $SHELL (bash if unknown).
Partition names are completed from the configured partition list.`,
	Example: `  source <(rivanna-resource completion bash)
  rivanna-resource completion zsh > "${fpath[1]}/_rivanna-resource"
  rivanna-resource completion fish > ~/.config/fish/completions/rivanna-resource.fish`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		shell := detectShell()
		if len(args) > 0 {
			shell = args[0]
		}

		// Completions list long options only
		saved := stripShortFlagShorthands(cmd.Root())
		defer restoreShortFlagShorthands(cmd.Root(), saved)

		out := cmd.OutOrStdout()
		switch shell {
		case "bash":
			return cmd.Root().GenBashCompletionV2(out, true)
		case "zsh":
			return cmd.Root().GenZshCompletion(out)
		case "fish":
			return cmd.Root().GenFishCompletion(out, true)
		case "powershell":
			return cmd.Root().GenPowerShellCompletionWithDesc(out)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}

// visitCommandFlags calls fn for every flag reachable from root.
func visitCommandFlags(root *cobra.Command, fn func(*pflag.Flag)) {
	root.LocalFlags().VisitAll(fn)
	root.PersistentFlags().VisitAll(fn)
	root.InheritedFlags().VisitAll(fn)
	for _, child := range root.Commands() {
		visitCommandFlags(child, fn)
	}
}

// stripShortFlagShorthands clears every flag shorthand under root and returns
// the cleared values keyed by flag name.
func stripShortFlagShorthands(root *cobra.Command) map[string]string {
	saved := make(map[string]string)
	visitCommandFlags(root, func(f *pflag.Flag) {
		if f.Shorthand != "" {
			saved[f.Name] = f.Shorthand
			f.Shorthand = ""
		}
	})
	return saved
}

func restoreShortFlagShorthands(root *cobra.Command, saved map[string]string) {
	visitCommandFlags(root, func(f *pflag.Flag) {
		if old, ok := saved[f.Name]; ok {
			f.Shorthand = old
		}
	})
}
