package chatroster

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ysy950803/chatroster/internal/rosterd"
)

var serveAddr string

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "http listen address, overrides http_addr")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "serve the chatroom roster over HTTP and MCP",
	Args:  cobra.NoArgs,
	Run:   Serve,
}

func Serve(cmd *cobra.Command, args []string) {
	m, err := rosterd.Load(ConfigPath)
	if err != nil {
		log.Err(err).Msg("failed to load chatroster")
		return
	}
	if serveAddr != "" {
		if err := m.SetHTTPAddr(serveAddr); err != nil {
			log.Err(err).Msg("invalid listen address")
			return
		}
	}
	if err := m.Serve(context.Background()); err != nil {
		log.Err(err).Msg("failed to serve chatroster")
	}
}
