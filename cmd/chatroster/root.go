package chatroster

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func init() {
	// windows only
	cobra.MousetrapHelpText = ""

	rootCmd.PersistentFlags().BoolVar(&Debug, "debug", false, "debug")
	rootCmd.PersistentFlags().StringVarP(&ConfigPath, "config", "c", "", "config file, defaults to ./chatroster.yaml")
	rootCmd.PersistentPreRun = initLog

	rootCmd.AddCommand(serveCmd, listCmd, membersCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Err(err).Msg("command execution failed")
	}
}

var rootCmd = &cobra.Command{
	Use:   "chatroster",
	Short: "chatroster",
	Long:  `chatroster searches the chatrooms of a chatlog account and resolves their members`,
	Example: `chatroster serve
chatroster list --keyword golang --page 2
chatroster members 12345678@chatroom`,
	Args: cobra.NoArgs,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	Run: Serve,
}
