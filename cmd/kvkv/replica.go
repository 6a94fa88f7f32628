package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abrasumente233/kvkv/internal/config"
	"github.com/abrasumente233/kvkv/internal/logging"
	"github.com/abrasumente233/kvkv/internal/replica"
)

func newReplicaCmd() *cobra.Command {
	var (
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "replica",
		Short: "run a kvkv replica: serves reads and participates in two-phase commit for writes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFile(cfgFile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if cmd.Flags().Changed("host") {
				cfg.Host = host
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}

			log := logging.New(cfg.LogLevel, nil)
			addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

			s := replica.NewServer(addr, log)

			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			go func() {
				<-sigChan
				log.Info().Msg("shutting down replica")
				ln.Close()
				s.Close()
			}()

			runErr := s.Run(ln)
			s.Close()
			return runErr
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "port to listen on for the master (config default 6399)")
	cmd.Flags().StringVar(&host, "host", "", "host to bind to (config default 127.0.0.1)")

	return cmd
}
