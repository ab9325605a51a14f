package pkg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const DefaultNPMRegistry = "https://registry.npmjs.org"

const maxRegistryRequests = 8

// PackageMeta is the subset of a registry packument needed to resolve versions.
type PackageMeta struct {
	Name     string                     `json:"name"`
	DistTags map[string]string          `json:"dist-tags"`
	Versions map[string]json.RawMessage `json:"versions"`
}

type RegistryClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewRegistryClient(baseURL string) *RegistryClient {
	if baseURL == "" {
		baseURL = DefaultNPMRegistry
	}
	return &RegistryClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *RegistryClient) FetchPackageMeta(ctx context.Context, name string) (*PackageMeta, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/"+url.PathEscape(name), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: registry returned %s", name, resp.Status)
	}

	var meta PackageMeta
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return &meta, nil
}

// ResolveVersion picks the version npm would install for rangeOrTag: the
// latest dist-tag for "", "latest" and "*", otherwise the highest published
// version satisfying the semver range.
func ResolveVersion(meta *PackageMeta, rangeOrTag string) (string, error) {
	switch rangeOrTag {
	case "", "latest", "*":
		latest, ok := meta.DistTags["latest"]
		if !ok {
			return "", fmt.Errorf("%s has no latest dist-tag", meta.Name)
		}
		return latest, nil
	}

	constraint, err := semver.NewConstraint(rangeOrTag)
	if err != nil {
		return "", err
	}

	var versions []*semver.Version
	for ver := range meta.Versions {
		v, err := semver.NewVersion(ver)
		if err == nil {
			versions = append(versions, v)
		}
	}
	sort.Sort(semver.Collection(versions))

	for i := len(versions) - 1; i >= 0; i-- {
		if constraint.Check(versions[i]) {
			return versions[i].Original(), nil
		}
	}
	return "", fmt.Errorf("no published version of %s satisfies %s", meta.Name, rangeOrTag)
}

// VerifyDependencies checks that every spec resolves to a published version.
// All failures are reported together, in spec order.
func VerifyDependencies(ctx context.Context, log *zap.Logger, client *RegistryClient, specs []DependencySpec) error {
	failures := make([]error, len(specs))

	var eg errgroup.Group
	eg.SetLimit(maxRegistryRequests)
	for i, spec := range specs {
		i, spec := i, spec
		eg.Go(func() error {
			meta, err := client.FetchPackageMeta(ctx, spec.Name)
			if err != nil {
				failures[i] = fmt.Errorf("%s: %w", spec, err)
				return nil
			}
			version, err := ResolveVersion(meta, spec.Range)
			if err != nil {
				failures[i] = fmt.Errorf("%s: %w", spec, err)
				return nil
			}
			log.Debug("Resolved dependency", zap.String("package", spec.String()), zap.String("version", version))
			return nil
		})
	}
	_ = eg.Wait()

	return errors.Join(failures...)
}
