package source

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// Config SFTP drop where the POS writes its daily exports
type Config struct {
	Username   string
	PrivateKey string
	HostKey    string // authorized_keys line; empty accepts any host key
	Server     string // host:port
	Timeout    time.Duration
}

// Client SFTP session
type Client struct {
	ssh  *ssh.Client
	sftp *sftp.Client
}

// New dials the server and opens the SFTP subsystem
func New(cfg Config) (*Client, error) {
	clientConfig, err := sshConfig(cfg)
	if err != nil {
		return nil, err
	}

	conn, err := ssh.Dial("tcp", cfg.Server, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", cfg.Server, err)
	}

	client, err := sftp.NewClient(conn)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to start sftp session: %w", err)
	}

	return &Client{ssh: conn, sftp: client}, nil
}

func sshConfig(cfg Config) (*ssh.ClientConfig, error) {
	if cfg.Username == "" || cfg.Server == "" {
		return nil, errors.New("sftp server and username are required")
	}

	signer, err := ssh.ParsePrivateKey([]byte(cfg.PrivateKey))
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	hostKeyCallback := ssh.InsecureIgnoreHostKey()
	if cfg.HostKey != "" {
		hostKey, _, _, _, err := ssh.ParseAuthorizedKey([]byte(cfg.HostKey))
		if err != nil {
			return nil, fmt.Errorf("failed to parse host key: %w", err)
		}
		hostKeyCallback = ssh.FixedHostKey(hostKey)
	}

	return &ssh.ClientConfig{
		User:            cfg.Username,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: hostKeyCallback,
		Timeout:         cfg.Timeout,
	}, nil
}

// Close ends the session
func (c *Client) Close() error {
	sftpErr := c.sftp.Close()
	sshErr := c.ssh.Close()
	if sftpErr != nil {
		return sftpErr
	}
	return sshErr
}

// Download reads a remote file into memory
func (c *Client) Download(remotePath string) ([]byte, error) {
	f, err := c.sftp.Open(remotePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", remotePath, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", remotePath, err)
	}
	return data, nil
}

// Latest path of the newest spreadsheet in dir
func (c *Client) Latest(dir string) (string, error) {
	entries, err := c.sftp.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to list %s: %w", dir, err)
	}

	name, ok := PickLatest(entries)
	if !ok {
		return "", fmt.Errorf("no spreadsheet found in %s", dir)
	}
	return path.Join(dir, name), nil
}

// PickLatest name of the most recently modified csv/xls/xlsx file
func PickLatest(entries []os.FileInfo) (string, bool) {
	var files []os.FileInfo
	for _, e := range entries {
		if e.IsDir() || !IsSpreadsheet(e.Name()) {
			continue
		}
		files = append(files, e)
	}
	if len(files) == 0 {
		return "", false
	}

	sort.SliceStable(files, func(i, j int) bool {
		if !files[i].ModTime().Equal(files[j].ModTime()) {
			return files[i].ModTime().After(files[j].ModTime())
		}
		return files[i].Name() > files[j].Name()
	})
	return files[0].Name(), true
}

// IsSpreadsheet reports whether name has a supported extension
func IsSpreadsheet(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".csv", ".xls", ".xlsx":
		return true
	}
	return false
}
