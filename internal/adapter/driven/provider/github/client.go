// Package github implements the ProviderClient port using the go-github
// library.
package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"

	"github.com/ericfisherdev/mywrap/internal/domain/model"
	"github.com/ericfisherdev/mywrap/internal/domain/port/driven"
)

// Provider is the identity this adapter is registered under.
const Provider = "github"

// Compile-time interface satisfaction check.
var _ driven.ProviderClient = (*Client)(nil)

// Client implements the ProviderClient port against the GitHub REST API.
// Tokens are per user and arrive at Fetch time, so the underlying go-github
// client is built per call with the transport stack:
//  1. httpcache (ETag-based conditional request caching, scoped to one
//     fetch so cached responses never cross users)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github (GitHub REST API client with token auth)
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
}

// NewClient creates a Client against api.github.com.
func NewClient() *Client {
	return &Client{}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and
// base URL. This constructor is intended for testing, allowing injection of
// an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}

	return &Client{httpClient: httpClient, baseURL: u}, nil
}

// Provider returns the stable provider identity.
func (c *Client) Provider() string { return Provider }

func (c *Client) apiClient(accessToken string) *gh.Client {
	if c.httpClient != nil {
		client := gh.NewClient(c.httpClient).WithAuthToken(accessToken)
		client.BaseURL = c.baseURL
		return client
	}

	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	return gh.NewClient(rateLimitClient).WithAuthToken(accessToken)
}

// Fetch retrieves the authenticated user's coding activity for the period:
// repositories (stars, languages, most recently pushed repo) and the commit
// count for the year via commit search. The activity scalar is commits.
func (c *Client) Fetch(ctx context.Context, accessToken string, period int) (model.ProviderRecord, error) {
	client := c.apiClient(accessToken)

	user, _, err := client.Users.Get(ctx, "")
	if err != nil {
		return model.ProviderRecord{}, &driven.UpstreamError{Provider: Provider, Err: fmt.Errorf("get user: %w", err)}
	}
	login := user.GetLogin()

	repos, err := c.listRepos(ctx, client)
	if err != nil {
		return model.ProviderRecord{}, &driven.UpstreamError{Provider: Provider, Err: err}
	}

	query := fmt.Sprintf("author:%s committer-date:%d-01-01..%d-12-31", login, period, period)
	search, _, err := client.Search.Commits(ctx, query, &gh.SearchOptions{
		ListOptions: gh.ListOptions{PerPage: 1},
	})
	if err != nil {
		return model.ProviderRecord{}, &driven.UpstreamError{Provider: Provider, Err: fmt.Errorf("search commits: %w", err)}
	}
	commits := search.GetTotal()

	var totalStars int
	topRepo := ""
	languages := []string{}
	seenLang := map[string]bool{}
	for i, repo := range repos {
		if i == 0 {
			topRepo = repo.GetName()
		}
		totalStars += repo.GetStargazersCount()
		if lang := repo.GetLanguage(); lang != "" && !seenLang[lang] && len(languages) < 3 {
			seenLang[lang] = true
			languages = append(languages, lang)
		}
	}

	return model.ProviderRecord{
		Provider: Provider,
		Metrics: map[string]any{
			"username":    login,
			"commits":     commits,
			"top_repo":    topRepo,
			"languages":   languages,
			"total_stars": totalStars,
		},
		Activity: float64(commits),
	}, nil
}

// listRepos retrieves the authenticated user's repositories, most recently
// pushed first. Pagination is handled automatically.
func (c *Client) listRepos(ctx context.Context, client *gh.Client) ([]*gh.Repository, error) {
	opts := &gh.RepositoryListByAuthenticatedUserOptions{
		Sort: "pushed",
		ListOptions: gh.ListOptions{
			PerPage: 100,
		},
	}

	var allRepos []*gh.Repository
	for {
		repos, resp, err := client.Repositories.ListByAuthenticatedUser(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("listing repositories (page %d): %w", opts.Page, err)
		}

		allRepos = append(allRepos, repos...)

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allRepos, nil
}
