package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/buildsync/pkg/imports"
)

// installerPrograms are offered when completing --installer.
var installerPrograms = []string{"yarn", "npm", "pnpm"}

// completionCommand prints a completion script for the requested shell.
// Besides subcommands it completes --installer with known package managers
// and --file with source files the import scanner reads.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Print a shell completion script for buildsync.

Once loaded, the shell completes subcommands and flags, for example:

  $ buildsync sync --installer <TAB>     yarn  npm  pnpm
  $ buildsync sync --file src/<TAB>      only ` + strings.Join(imports.Extensions, " ") + ` files
  $ buildsync cache <TAB>                clear  path

Bash:
  $ source <(buildsync completion bash)
  $ buildsync completion bash > /etc/bash_completion.d/buildsync

Zsh (with compinit enabled):
  $ buildsync completion zsh > "${fpath[1]}/_buildsync"

Fish:
  $ buildsync completion fish > ~/.config/fish/completions/buildsync.fish

PowerShell:
  PS> buildsync completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			root := cmd.Root()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(out, true)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(out)
			}
			return fmt.Errorf("unsupported shell %q", args[0])
		},
	}
}

// completeEngineFlags wires value completion for flags registered by
// engineFlags and the --file flag of sync.
func completeEngineFlags(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("installer",
		cobra.FixedCompletions(installerPrograms, cobra.ShellCompDirectiveNoFileComp))
	if cmd.Flags().Lookup("file") != nil {
		exts := make([]string, len(imports.Extensions))
		for i, e := range imports.Extensions {
			exts[i] = strings.TrimPrefix(e, ".")
		}
		_ = cmd.MarkFlagFilename("file", exts...)
	}
}
