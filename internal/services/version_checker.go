package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/go-github/v80/github"
	"golang.org/x/mod/semver"

	"github.com/thomas-vilte/issuels/internal/cache"
	"github.com/thomas-vilte/issuels/internal/logger"
)

const (
	releaseOwner     = "thomas-vilte"
	releaseRepo      = "issuels"
	checkTimeout     = 2 * time.Second
	latestReleaseKey = "latest-release"
)

type ReleasesService interface {
	GetLatestRelease(ctx context.Context, owner, repo string) (*github.RepositoryRelease, *github.Response, error)
}

// VersionChecker compares the running version with the latest GitHub release.
type VersionChecker struct {
	currentVersion string
	releases       ReleasesService
	cache          *cache.Cache
}

type latestRelease struct {
	Tag string `json:"tag"`
	URL string `json:"url"`
}

// NewVersionChecker builds a checker. c may be nil, then every check hits
// the network.
func NewVersionChecker(currentVersion string, releases ReleasesService, c *cache.Cache) *VersionChecker {
	if releases == nil {
		releases = github.NewClient(nil).Repositories
	}
	return &VersionChecker{
		currentVersion: currentVersion,
		releases:       releases,
		cache:          c,
	}
}

// Latest returns the newest release tag and its page, and whether it is
// newer than the running version.
func (v *VersionChecker) Latest(ctx context.Context) (tag, url string, newer bool, err error) {
	release, err := v.latest(ctx)
	if err != nil {
		return "", "", false, err
	}
	return release.Tag, release.URL, v.IsUpdateAvailable(release.Tag), nil
}

func (v *VersionChecker) latest(ctx context.Context) (latestRelease, error) {
	if v.cache != nil {
		if raw, found, err := v.cache.Get(latestReleaseKey); err == nil && found {
			var cached latestRelease
			if err := json.Unmarshal(raw, &cached); err == nil && cached.Tag != "" {
				return cached, nil
			}
		}
	}

	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	release, _, err := v.releases.GetLatestRelease(ctx, releaseOwner, releaseRepo)
	if err != nil {
		return latestRelease{}, err
	}
	latest := latestRelease{Tag: release.GetTagName(), URL: release.GetHTMLURL()}

	if v.cache != nil {
		if err := v.cache.Set(latestReleaseKey, latest); err != nil {
			logger.Debug(ctx, "could not cache latest release", "error", err)
		}
	}
	return latest, nil
}

// IsUpdateAvailable reports whether latest is newer than the running version.
func (v *VersionChecker) IsUpdateAvailable(latest string) bool {
	current := v.currentVersion
	if !strings.HasPrefix(current, "v") {
		current = "v" + current
	}
	if !strings.HasPrefix(latest, "v") {
		latest = "v" + latest
	}

	if !semver.IsValid(current) || !semver.IsValid(latest) {
		return current != latest
	}

	return semver.Compare(latest, current) > 0
}
