package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/topdown/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the topdown SSH server",
	Long: `Start an SSH server that runs the terminal demo for each connection.

Each SSH connection gets its own session with the scene menu and its own
engine. Scores are stored per-server (all users share the same leaderboard).

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.topdown/host_key

Examples:
  topdown serve                           # Listen on :23234 with auto-generated key
  topdown serve --ssh :2222               # Listen on port 2222
  topdown serve --host-key ./my_host_key  # Use specific host key
  topdown serve --db ./scores.db          # Use specific database

Users can connect with:
  ssh localhost -p 23234`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(os.Stderr, cfg)

	srvCfg := tui.DefaultSSHServerConfig()
	srvCfg.DBPath = dbPath(cfg)
	srvCfg.IdleTimeout = time.Duration(flagIdleTimeout) * time.Minute
	srvCfg.Engine = engineConfig(cfg)
	srvCfg.Assets = os.DirFS(filepath.Clean(cfg.Assets.Root))
	srvCfg.Logger = logger
	if cfg.SSH.Addr != "" {
		srvCfg.Address = cfg.SSH.Addr
	}
	if cmd.Flags().Changed("ssh") {
		srvCfg.Address = flagSSHAddr
	}
	srvCfg.HostKeyPath = cfg.SSH.HostKey
	if flagHostKey != "" {
		srvCfg.HostKeyPath = flagHostKey
	}

	server, err := tui.NewSSHServer(srvCfg)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, p, err := net.SplitHostPort(srvCfg.Address); err == nil {
		fmt.Printf("Connect with: ssh localhost -p %s\n", p)
	}
	fmt.Println("Press Ctrl+C to stop")

	return server.ListenAndServe(ctx)
}
