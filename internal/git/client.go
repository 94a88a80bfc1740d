package git

import (
	"fmt"
	"os"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
	"github.com/hashicorp/go-hclog"
	crssh "golang.org/x/crypto/ssh"

	"github.com/a4blue/sarb/pkg/shared/config"
	"github.com/a4blue/sarb/pkg/shared/files"
)

// Environment variables holding git credentials.
const (
	EnvUsername       = "SARB_GIT_USERNAME"
	EnvToken          = "SARB_GIT_TOKEN"
	EnvSSHKeyPassword = "SARB_SSH_KEY_PASSWORD"
)

// Client wraps an opened repository together with logging, authentication
// and timeout settings.
type Client struct {
	logger       hclog.Logger
	repo         *git.Repository
	root         string
	auth         transport.AuthMethod
	timeout      time.Duration
	fetchMissing bool
}

// Authenticator defines an interface for different authentication methods.
type Authenticator interface {
	SetupAuth(settings config.History, logger hclog.Logger) (transport.AuthMethod, error)
	ValidateConfig(settings config.History) error
}

// SSHKeyAuthenticator provides SSH key-based authentication.
type SSHKeyAuthenticator struct{}

// SSHAgentAuthenticator provides SSH agent-based authentication.
type SSHAgentAuthenticator struct{}

// HTTPAuthenticator provides HTTP basic authentication from environment variables.
type HTTPAuthenticator struct{}

// SetupAuth configures SSH key authentication.
func (s *SSHKeyAuthenticator) SetupAuth(settings config.History, logger hclog.Logger) (transport.AuthMethod, error) {
	logger.Debug("setting up SSH key authentication")

	sshKeyPath, err := files.ExpandPath(settings.SSHKey)
	if err != nil {
		logger.Error("failed to expand SSH key path", "path", settings.SSHKey, "error", err)
		return nil, err
	}

	auth, err := ssh.NewPublicKeysFromFile("git", sshKeyPath, os.Getenv(EnvSSHKeyPassword))
	if err != nil {
		logger.Error("failed to set up SSH key authentication", "error", err)
		return nil, err
	}
	auth.HostKeyCallbackHelper = ssh.HostKeyCallbackHelper{
		HostKeyCallback: hostKeyCallback(logger),
	}
	return auth, nil
}

// ValidateConfig validates the configuration for SSHKeyAuthenticator.
func (s *SSHKeyAuthenticator) ValidateConfig(settings config.History) error {
	if settings.SSHKey == "" {
		return fmt.Errorf("ssh_key is required for SSHKeyAuthenticator")
	}
	return nil
}

// SetupAuth configures SSH agent authentication.
func (s *SSHAgentAuthenticator) SetupAuth(settings config.History, logger hclog.Logger) (transport.AuthMethod, error) {
	logger.Debug("setting up SSH agent authentication")

	auth, err := ssh.NewSSHAgentAuth("git")
	if err != nil {
		logger.Error("failed to set up SSH agent authentication", "error", err)
		return nil, err
	}
	auth.HostKeyCallbackHelper = ssh.HostKeyCallbackHelper{
		HostKeyCallback: hostKeyCallback(logger),
	}
	return auth, nil
}

// ValidateConfig validates the configuration for SSHAgentAuthenticator.
func (s *SSHAgentAuthenticator) ValidateConfig(settings config.History) error {
	return nil
}

// SetupAuth configures HTTP basic authentication.
func (h *HTTPAuthenticator) SetupAuth(settings config.History, logger hclog.Logger) (transport.AuthMethod, error) {
	logger.Debug("setting up HTTP authentication")

	return &http.BasicAuth{
		Username: os.Getenv(EnvUsername),
		Password: os.Getenv(EnvToken),
	}, nil
}

// ValidateConfig validates the configuration for HTTPAuthenticator.
func (h *HTTPAuthenticator) ValidateConfig(settings config.History) error {
	if os.Getenv(EnvToken) == "" {
		return fmt.Errorf("%s is required for HTTPAuthenticator", EnvToken)
	}
	return nil
}

// hostKeyCallback verifies against ~/.ssh/known_hosts when it exists and
// otherwise accepts any host key.
func hostKeyCallback(logger hclog.Logger) crssh.HostKeyCallback {
	if cb, err := ssh.NewKnownHostsCallback(); err == nil {
		return cb
	}
	logger.Warn("known_hosts not available, host keys are not verified")
	return crssh.InsecureIgnoreHostKey()
}

// getAuthenticator returns the appropriate Authenticator based on the authentication type.
func getAuthenticator(authType string) (Authenticator, error) {
	switch authType {
	case "ssh-key":
		return &SSHKeyAuthenticator{}, nil
	case "ssh-agent":
		return &SSHAgentAuthenticator{}, nil
	case "http":
		return &HTTPAuthenticator{}, nil
	default:
		return nil, fmt.Errorf("unknown auth type: %s", authType)
	}
}

// New opens the repository containing projectRoot. Authentication is only set
// up when fetching missing commits is enabled.
func New(logger hclog.Logger, globalConfig *config.Config, projectRoot string) (*Client, error) {
	if globalConfig == nil {
		globalConfig = &config.Config{}
	}

	root, err := findGitRepositoryPath(projectRoot)
	if err != nil {
		return nil, err
	}

	repo, err := git.PlainOpen(root)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository %q: %w", root, err)
	}

	client := &Client{
		logger:       logger,
		repo:         repo,
		root:         root,
		timeout:      config.HistoryTimeout(globalConfig),
		fetchMissing: globalConfig.History.FetchMissing,
	}

	authType := config.SetThen(globalConfig.History.AuthType, config.DefaultAuthType)
	if client.fetchMissing && authType != "none" {
		authenticator, err := getAuthenticator(authType)
		if err != nil {
			logger.Error("unsupported authentication type", "error", err)
			return nil, fmt.Errorf("unsupported authentication type: %w", err)
		}
		if err := authenticator.ValidateConfig(globalConfig.History); err != nil {
			logger.Error("invalid configuration", "error", err)
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
		client.auth, err = authenticator.SetupAuth(globalConfig.History, logger)
		if err != nil {
			logger.Error("failed to set up Git authentication", "error", err)
			return nil, fmt.Errorf("failed to set up Git authentication: %w", err)
		}
	}

	return client, nil
}
