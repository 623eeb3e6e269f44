package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/snakesim/internal/config"
	"github.com/vovakirdan/snakesim/internal/platform/tui"
	"github.com/vovakirdan/snakesim/internal/storage"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the SSH server",
	Long: `Start an SSH server that lets users connect and play with the keyboard.

Each SSH connection gets its own independent game on the configured board.
Finished games are recorded in the server's run ledger as agent "human".

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, uses serve.host_key, generating it on first start

Examples:
  snakesim serve                           # Listen on serve.host:serve.port
  snakesim serve --ssh :2222               # Listen on port 2222
  snakesim serve --host-key ./my_host_key  # Use specific host key

Users can connect with:
  ssh localhost -p 2323`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (host:port, default from config)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (default from config)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg).WithPrefix("snakesim-ssh")

	srvCfg, err := sshConfig(cfg)
	if err != nil {
		return err
	}

	var saver tui.RunSaver
	store, err := storage.Open(cfg.Storage.DBPath)
	if err != nil {
		logger.Warn("could not open run ledger", "err", err)
	} else {
		defer store.Close()
		saver = store
	}

	server, err := tui.NewSSHServer(srvCfg, saver, logger)
	if err != nil {
		return fmt.Errorf("cannot create server: %w", err)
	}

	fmt.Printf("Starting snakesim SSH server on %s\n", server.Addr())
	fmt.Println("Press Ctrl+C to stop")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return server.ListenAndServe(ctx)
}

// sshConfig builds the server configuration from the config file and flags.
func sshConfig(cfg config.Config) (tui.SSHServerConfig, error) {
	addr := flagSSHAddr
	if addr == "" {
		addr = net.JoinHostPort(cfg.Serve.Host, strconv.Itoa(cfg.Serve.Port))
	}
	hostKey := flagHostKey
	if hostKey == "" {
		var err error
		hostKey, err = config.ExpandHome(cfg.Serve.HostKey)
		if err != nil {
			return tui.SSHServerConfig{}, err
		}
	}

	return tui.SSHServerConfig{
		Address:     addr,
		HostKeyPath: hostKey,
		IdleTimeout: time.Duration(flagIdleTimeout) * time.Minute,
		Grid:        cfg.GridSize(),
		Game:        cfg.GameOptions(),
		BaseTick:    cfg.Play.BaseTick,
	}, nil
}
