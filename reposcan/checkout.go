package reposcan

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/hairizuanbinnoorazman/ui-testgen/logger"
)

var (
	// ErrRepoNotFound is returned when a location is neither an existing
	// directory nor a clonable git URL.
	ErrRepoNotFound = errors.New("repository not found")

	// ErrCloneFailed is returned when git clone exits unsuccessfully.
	ErrCloneFailed = errors.New("git clone failed")
)

// Config controls where and how remote repositories are cloned.
type Config struct {
	WorkDir      string
	CloneTimeout time.Duration
	CloneDepth   int
}

// DefaultConfig returns clone settings for a shallow checkout in the OS temp dir.
func DefaultConfig() Config {
	return Config{
		WorkDir:      os.TempDir(),
		CloneTimeout: 120 * time.Second,
		CloneDepth:   1,
	}
}

// Scanner reads UI selectors and automation steps from repositories.
type Scanner struct {
	config Config
	logger logger.Logger
}

// NewScanner creates a new repository scanner.
func NewScanner(cfg Config, log logger.Logger) *Scanner {
	return &Scanner{config: cfg, logger: log}
}

// Checkout is a repository available on the local filesystem.
type Checkout struct {
	Dir       string
	temporary bool
}

// Close removes the checkout if it was cloned.
func (c *Checkout) Close() error {
	if !c.temporary {
		return nil
	}
	return os.RemoveAll(c.Dir)
}

func isRemote(location string) bool {
	for _, prefix := range []string{"https://", "http://", "ssh://", "git://", "file://", "git@"} {
		if strings.HasPrefix(location, prefix) {
			return true
		}
	}
	return false
}

// Checkout resolves location to a directory. Existing local directories are
// used in place; git URLs are cloned into a temporary directory that the
// caller must Close.
func (s *Scanner) Checkout(ctx context.Context, location string) (*Checkout, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, fmt.Errorf("%w: empty location", ErrRepoNotFound)
	}

	if info, err := os.Stat(location); err == nil {
		if !info.IsDir() {
			return nil, fmt.Errorf("%w: %s is not a directory", ErrRepoNotFound, location)
		}
		return &Checkout{Dir: location}, nil
	}

	if !isRemote(location) {
		return nil, fmt.Errorf("%w: %s", ErrRepoNotFound, location)
	}

	dir, err := os.MkdirTemp(s.config.WorkDir, "reposcan-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create clone directory: %w", err)
	}

	if err := s.clone(ctx, location, dir); err != nil {
		os.RemoveAll(dir)
		return nil, err
	}

	return &Checkout{Dir: dir, temporary: true}, nil
}

func (s *Scanner) clone(ctx context.Context, url, destPath string) error {
	if s.config.CloneTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.CloneTimeout)
		defer cancel()
	}

	args := []string{"clone", "--quiet"}
	if s.config.CloneDepth > 0 {
		args = append(args, "--depth", fmt.Sprintf("%d", s.config.CloneDepth))
	}
	args = append(args, url, destPath)

	start := time.Now()
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	output, err := cmd.CombinedOutput()
	if err != nil {
		s.logger.Error(ctx, "git clone failed", map[string]interface{}{
			"url":    url,
			"error":  err.Error(),
			"output": strings.TrimSpace(string(output)),
		})
		return fmt.Errorf("%w: %v: %s", ErrCloneFailed, err, strings.TrimSpace(string(output)))
	}

	s.logger.Info(ctx, "cloned repository", map[string]interface{}{
		"url":         url,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return nil
}
