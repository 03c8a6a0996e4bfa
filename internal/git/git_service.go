package git

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/thomas-vilte/issuels/internal/errors"
	"github.com/thomas-vilte/issuels/internal/regex"
)

const defaultRemote = "origin"

// RemoteInfo describes the repository a git remote points at.
type RemoteInfo struct {
	Host     string
	Owner    string
	Repo     string
	Provider string
}

type GitService struct{}

func NewGitService() *GitService {
	return &GitService{}
}

// RepoRoot returns the absolute path of the repository containing dir.
func (s *GitService) RepoRoot(ctx context.Context, dir string) (string, error) {
	output, err := s.run(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", errors.ErrGetRepoRoot.WithError(err).WithContext("dir", dir)
	}
	return output, nil
}

// RemoteInfo parses the origin remote of the repository containing dir.
func (s *GitService) RemoteInfo(ctx context.Context, dir string) (*RemoteInfo, error) {
	url, err := s.run(ctx, dir, "remote", "get-url", defaultRemote)
	if err != nil {
		return nil, errors.ErrGetRepoURL.WithError(err).WithContext("dir", dir)
	}
	return parseRepoURL(url)
}

func (s *GitService) run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	var stderr strings.Builder
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%w: %s", err, msg)
		}
		return "", err
	}
	return strings.TrimSpace(string(output)), nil
}

func parseRepoURL(url string) (*RemoteInfo, error) {
	var matches []string
	if regex.SSHRepo.MatchString(url) {
		matches = regex.SSHRepo.FindStringSubmatch(url)
	} else if regex.HTTPSRepo.MatchString(url) {
		matches = regex.HTTPSRepo.FindStringSubmatch(url)
	}

	if len(matches) >= 4 {
		return &RemoteInfo{
			Host:     matches[1],
			Owner:    matches[2],
			Repo:     strings.TrimSuffix(matches[3], ".git"),
			Provider: detectProvider(matches[1]),
		}, nil
	}

	return nil, errors.ErrExtractRepoInfo.WithContext("url", url)
}

func detectProvider(host string) string {
	if strings.Contains(host, "github") {
		return "github"
	}
	if strings.Contains(host, "gitlab") {
		return "gitlab"
	}
	return "unknown"
}
