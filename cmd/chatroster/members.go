package chatroster

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ysy950803/chatroster/internal/roster"
	"github.com/ysy950803/chatroster/internal/rosterd"
)

var membersPageSize int

func init() {
	membersCmd.Flags().IntVarP(&membersPageSize, "page-size", "s", 0, "page size the lookup window is derived from")
}

var membersCmd = &cobra.Command{
	Use:   "members <chatroom>",
	Short: "resolve and print the members of a chatroom",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		m, err := rosterd.Load(ConfigPath)
		if err != nil {
			log.Err(err).Msg("failed to load chatroster")
			return
		}
		defer m.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		list, err := m.Members(ctx, args[0], membersPageSize, func(rep roster.WindowReport) {
			log.Info().Int("start", rep.Start).Int("end", rep.End).Int("resolved", rep.Resolved).Msg("window done")
		})
		if list == nil {
			log.Err(err).Msg("failed to list chatroom members")
			return
		}
		if err != nil {
			log.Warn().Err(err).Int("pending", list.Pending()).Msg("member resolution stopped early")
		}

		out := cmd.OutOrStdout()
		for _, e := range list.Entries() {
			if e.IsPlaceholder() {
				fmt.Fprintf(out, "%s\n", e.ID)
				continue
			}
			name := e.Member.DisplayName
			if name == "" {
				name = e.Member.NickName
			}
			fmt.Fprintf(out, "%s\t%s\n", e.Member.UserName, name)
		}
	},
}
