package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/abrasumente233/kvkv/internal/config"
	"github.com/abrasumente233/kvkv/internal/logging"
	"github.com/abrasumente233/kvkv/internal/master"
)

func newMasterCmd() *cobra.Command {
	var (
		port             int
		host             string
		replicaAddresses []string
		phaseTimeoutMS   int
		reconnectMS      int
	)

	cmd := &cobra.Command{
		Use:   "master",
		Short: "run the kvkv master: accepts clients and coordinates replicas via two-phase commit",
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
			if cmd.Flags().Changed("replica-addresses") {
				cfg.ReplicaAddresses = replicaAddresses
			}
			if cmd.Flags().Changed("phase-timeout-ms") {
				cfg.PhaseTimeoutMS = phaseTimeoutMS
			}
			if cmd.Flags().Changed("reconnect-interval-ms") {
				cfg.ReconnectIntervalMS = reconnectMS
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}

			if len(cfg.ReplicaAddresses) == 0 {
				return fmt.Errorf("master: at least one replica address is required (--replica-addresses or config's replica_addresses)")
			}

			log := logging.New(cfg.LogLevel, nil)

			m := master.NewMaster(
				cfg.ReplicaAddresses,
				time.Duration(cfg.PhaseTimeoutMS)*time.Millisecond,
				time.Duration(cfg.ReconnectIntervalMS)*time.Millisecond,
				log,
			)

			addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			go func() {
				<-sigChan
				log.Info().Msg("shutting down master")
				ln.Close()
				m.Close()
			}()

			runErr := make(chan error, 1)
			go func() { runErr <- m.Run() }()

			if err := master.ListenAndServe(ln, m, log); err != nil {
				log.Info().Err(err).Msg("client listener stopped")
			}
			return <-runErr
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "port to listen on for clients (config default 6399)")
	cmd.Flags().StringVar(&host, "host", "", "host to bind to (config default 127.0.0.1)")
	cmd.Flags().StringSliceVar(&replicaAddresses, "replica-addresses", nil, "comma-separated replica host:port addresses, in id order")
	cmd.Flags().IntVar(&phaseTimeoutMS, "phase-timeout-ms", 0, "per-replica deadline for each 2PC phase, in milliseconds")
	cmd.Flags().IntVar(&reconnectMS, "reconnect-interval-ms", 0, "delay between replica reconnect attempts, in milliseconds")

	return cmd
}
