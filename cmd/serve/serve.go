package serve

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/synthscan/synthscan/cmd"
	"github.com/synthscan/synthscan/config"
	"github.com/synthscan/synthscan/constants"
	"github.com/synthscan/synthscan/server"
)

var (
	flagAddr    string
	flagConfig  string
	flagVerbose bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the detection HTTP server",
	Long: `Run the detection HTTP server.

Endpoints:
  POST /api/v1/detect        analyze one uploaded image or video
  POST /api/v1/detect/batch  analyze up to 10 files (fast mode)
  GET  /api/v1/health        health check`,
	RunE: serve,
}

func init() {
	cmd.RootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&flagAddr, "addr", "l", "",
		"Listen address. Default "+constants.DEFAULT_LISTEN_ADDR+` or env `+constants.ENV_LISTEN_ADDR)
	serveCmd.Flags().StringVarP(&flagConfig, "config", "c", "", constants.HELP_CONFIG_FLAG)
	serveCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "Verbose (debug) logging")
}

func serve(cmd *cobra.Command, args []string) error {
	if flagVerbose {
		log.SetLevel(log.DebugLevel)
	}
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	addr := flagAddr
	if addr == "" {
		addr = os.Getenv(constants.ENV_LISTEN_ADDR)
	}
	if addr == "" {
		addr = constants.DEFAULT_LISTEN_ADDR
	}
	return server.New(cfg).ListenAndServe(addr)
}
