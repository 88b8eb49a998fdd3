package chatroster

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ysy950803/chatroster/internal/rosterd"
)

var (
	listKeyword  string
	listPage     int
	listPageSize int
)

func init() {
	listCmd.Flags().StringVarP(&listKeyword, "keyword", "k", "", "nickname keyword")
	listCmd.Flags().IntVarP(&listPage, "page", "p", 1, "page index, from 1")
	listCmd.Flags().IntVarP(&listPageSize, "page-size", "s", 0, "page size, defaults to roster.page_size")
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "print one page of chatrooms",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		m, err := rosterd.Load(ConfigPath)
		if err != nil {
			log.Err(err).Msg("failed to load chatroster")
			return
		}
		defer m.Close()

		v, err := m.List(context.Background(), listKeyword, listPage, listPageSize)
		if err != nil {
			log.Err(err).Msg("failed to list chatrooms")
			return
		}

		out := cmd.OutOrStdout()
		for _, c := range v.Items {
			fmt.Fprintf(out, "%s\t%s\n", c.UserName, c.DisplayName())
		}
		fmt.Fprintf(out, "-- page %d, %d per page, %d total\n", v.Query.PageIndex, v.Query.PageSize, v.Total)
	},
}
