package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/secretsproxy/secrets-cli/internal/config"
)

// NewCompletionCommand creates the completion command for generating shell completions.
func NewCompletionCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for secrets.

To load completions in the current shell:

  bash:  source <(secrets completion bash)
  zsh:   source <(secrets completion zsh)
  fish:  secrets completion fish | source

To install them permanently:

  bash:  secrets completion bash > /etc/bash_completion.d/secrets
  zsh:   secrets completion zsh > "${fpath[1]}/_secrets"
  fish:  secrets completion fish > ~/.config/fish/completions/secrets.fish

PowerShell users can add the output of 'secrets completion powershell'
to their profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}

	return cmd
}
