package db

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/mockhub/mockhub-console/internal/appconfig"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// Tunnel forwards a local port to a database host through an SSH bastion.
type Tunnel struct {
	client   *ssh.Client
	listener net.Listener
	remote   string
	log      *zerolog.Logger
}

// sshClient creates a new SSH client
func sshClient(cfg appconfig.TunnelConfig, log *zerolog.Logger) (*ssh.Client, error) {
	key, err := os.ReadFile(cfg.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read private key: %w", err)
	}

	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("unable to parse private key: %w", err)
	}

	hostKeyCallback := ssh.InsecureIgnoreHostKey()
	if cfg.KnownHostsPath != "" {
		hostKeyCallback, err = knownhosts.New(cfg.KnownHostsPath)
		if err != nil {
			return nil, fmt.Errorf("unable to load known hosts: %w", err)
		}
	} else {
		log.Warn().Str("host", cfg.SSHHost).Msg("No known hosts file configured, host key is not verified")
	}

	// Define the SSH client configuration
	sshConfig := &ssh.ClientConfig{
		User: cfg.SSHUser,
		Auth: []ssh.AuthMethod{
			ssh.PublicKeys(signer),
		},
		HostKeyCallback: hostKeyCallback,
		Timeout:         5 * time.Second,
	}

	// Connect to the SSH server
	return ssh.Dial("tcp", net.JoinHostPort(cfg.SSHHost, cfg.SSHPort), sshConfig)
}

// OpenTunnel connects to the bastion and starts forwarding connections made
// to the local port.
func OpenTunnel(cfg appconfig.TunnelConfig, log *zerolog.Logger) (*Tunnel, error) {
	client, err := sshClient(cfg, log)
	if err != nil {
		log.Error().Err(err).Str("host", cfg.SSHHost).Msg("Failed to open SSH connection")
		return nil, err
	}

	// Listen on the local port
	listener, err := net.Listen("tcp", net.JoinHostPort("localhost", cfg.LocalPort))
	if err != nil {
		client.Close()
		return nil, err
	}

	t := &Tunnel{
		client:   client,
		listener: listener,
		remote:   net.JoinHostPort(cfg.RemoteHost, cfg.RemotePort),
		log:      log,
	}
	go t.forward()

	log.Info().Str("local", listener.Addr().String()).Str("remote", t.remote).Msg("SSH tunnel started")
	return t, nil
}

// Addr is the local address the tunnel listens on.
func (t *Tunnel) Addr() string {
	return t.listener.Addr().String()
}

func (t *Tunnel) Close() error {
	err := t.listener.Close()
	if cerr := t.client.Close(); err == nil {
		err = cerr
	}
	return err
}

// forward accepts local connections until the listener is closed
func (t *Tunnel) forward() {
	for {
		localConn, err := t.listener.Accept()
		if errors.Is(err, net.ErrClosed) {
			return
		}
		if err != nil {
			t.log.Warn().Err(err).Msg("Failed to accept local connection")
			continue
		}

		// Open a connection to the remote host
		remoteConn, err := t.client.Dial("tcp", t.remote)
		if err != nil {
			t.log.Error().Err(err).Str("remote", t.remote).Msg("Failed to connect to remote host")
			localConn.Close()
			continue
		}

		go pipe(localConn, remoteConn)
	}
}

// pipe copies in both directions and closes both ends once either side
// is done.
func pipe(local, remote net.Conn) {
	defer local.Close()
	defer remote.Close()

	go io.Copy(remote, local)
	io.Copy(local, remote)
}
