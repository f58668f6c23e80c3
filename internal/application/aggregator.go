// Package application contains use-case orchestration services.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ericfisherdev/mywrap/internal/domain/model"
	"github.com/ericfisherdev/mywrap/internal/domain/port/driven"
	"github.com/ericfisherdev/mywrap/internal/vault"
)

// ErrNoConnections indicates the user has no connected providers at all.
// It is the only per-user condition that fails Generate wholesale.
var ErrNoConnections = errors.New("no connected providers")

// Aggregator fans out concurrent per-provider fetches, isolates individual
// failures, and folds the surviving records into one wrap with a derived
// summary. It never persists anything; that belongs to WrapService.
type Aggregator struct {
	creds       driven.CredentialStore
	vault       *vault.Vault
	clients     map[string]driven.ProviderClient
	weights     map[string]ProviderWeight
	priority    []string
	timeout     time.Duration
	concurrency int
	logger      *slog.Logger
}

// NewAggregator creates an Aggregator. clients are registered under their
// own Provider() identity; weights and priority are usually
// DefaultWeights and DefaultPriority.
func NewAggregator(
	creds driven.CredentialStore,
	v *vault.Vault,
	clients []driven.ProviderClient,
	weights map[string]ProviderWeight,
	priority []string,
	timeout time.Duration,
	concurrency int,
	logger *slog.Logger,
) *Aggregator {
	registry := make(map[string]driven.ProviderClient, len(clients))
	for _, c := range clients {
		registry[c.Provider()] = c
	}

	if concurrency < 1 {
		concurrency = 1
	}

	return &Aggregator{
		creds:       creds,
		vault:       v,
		clients:     registry,
		weights:     weights,
		priority:    priority,
		timeout:     timeout,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Generate builds the aggregated wrap for (userID, period). Per-provider
// failures (unsupported identity, missing or undecryptable credential,
// upstream error, timeout) drop that provider from the result and never
// abort the run; Generate fails only when the user has zero connections or
// the connection listing itself fails.
func (a *Aggregator) Generate(ctx context.Context, userID string, period int) (model.AggregatedWrap, error) {
	providers, err := a.creds.ListProviders(ctx, userID)
	if err != nil {
		return model.AggregatedWrap{}, fmt.Errorf("list connections for %s: %w", userID, err)
	}
	if len(providers) == 0 {
		return model.AggregatedWrap{}, ErrNoConnections
	}

	start := time.Now()

	var mu sync.Mutex
	records := make(map[string]model.ProviderRecord)

	// Fan-out. Every unit settles on its own; failures are logged and
	// isolated, so no unit returns an error and no unit cancels another.
	// Wait is the fan-in barrier.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for _, provider := range providers {
		g.Go(func() error {
			rec, ok := a.fetchOne(gctx, userID, provider, period)
			if ok {
				mu.Lock()
				records[provider] = rec
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	summary := a.summarize(records)

	a.logger.Info("wrap generated",
		"user_id", userID,
		"period", period,
		"connected", len(providers),
		"succeeded", len(records),
		"duration", time.Since(start).Round(time.Millisecond),
	)

	return model.AggregatedWrap{
		UserID:      userID,
		Period:      period,
		Providers:   records,
		Summary:     summary,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

// fetchOne runs one provider unit: resolve the adapter, load and decrypt
// the credential, fetch under the per-provider timeout. Returns false when
// the provider must be omitted from the wrap.
func (a *Aggregator) fetchOne(ctx context.Context, userID, provider string, period int) (model.ProviderRecord, bool) {
	client, ok := a.clients[provider]
	if !ok {
		// Distinct from an upstream failure: the connection exists but this
		// build has no adapter for it.
		a.logger.Warn("unsupported provider, skipping",
			"user_id", userID, "provider", provider)
		return model.ProviderRecord{}, false
	}

	cred, err := a.creds.Get(ctx, userID, provider)
	if err != nil {
		a.logger.Error("credential load failed",
			"user_id", userID, "provider", provider, "error", err)
		return model.ProviderRecord{}, false
	}
	if cred == nil {
		a.logger.Error("credential row vanished during aggregation",
			"user_id", userID, "provider", provider)
		return model.ProviderRecord{}, false
	}

	token, err := a.vault.Decrypt(cred.AccessToken)
	if err != nil {
		// ErrAuthenticationFailed here means key mismatch or tampering, a
		// security-relevant signal; keep it visible in the log.
		a.logger.Error("credential decrypt failed",
			"user_id", userID, "provider", provider, "error", err)
		return model.ProviderRecord{}, false
	}

	fctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	rec, err := client.Fetch(fctx, token, period)
	if err != nil {
		a.logger.Error("provider fetch failed",
			"user_id", userID, "provider", provider, "error", err)
		return model.ProviderRecord{}, false
	}

	return rec, true
}

// summarize computes the derived summary from the surviving records. The
// merge is commutative: completion order of the fetches never changes the
// outcome.
func (a *Aggregator) summarize(records map[string]model.ProviderRecord) model.DerivedSummary {
	var totalMinutes float64
	contributions := make(map[string]float64, len(records))
	for provider, rec := range records {
		minutes := rec.Activity * a.weights[provider].MinutesPerUnit
		contributions[provider] = minutes
		totalMinutes += minutes
	}

	// Walk providers in fixed priority order; strictly-greater comparison
	// means the earlier provider keeps the top spot on an exact tie.
	var top string
	best := -1.0
	for _, provider := range a.rankedProviders(contributions) {
		if c, ok := contributions[provider]; ok && c > best {
			best = c
			top = provider
		}
	}

	category := top
	if w, ok := a.weights[top]; ok && w.Category != "" {
		category = w.Category
	}

	return model.DerivedSummary{
		TotalHours:  int(totalMinutes / 60),
		TopCategory: category,
		TopProvider: top,
	}
}

// rankedProviders returns the priority list followed by any providers not
// on it, in lexical order, so ranking stays deterministic as new adapters
// appear.
func (a *Aggregator) rankedProviders(contributions map[string]float64) []string {
	ranked := make([]string, 0, len(a.priority)+len(contributions))
	seen := make(map[string]bool, len(a.priority))
	for _, p := range a.priority {
		ranked = append(ranked, p)
		seen[p] = true
	}

	var extra []string
	for p := range contributions {
		if !seen[p] {
			extra = append(extra, p)
		}
	}
	sort.Strings(extra)

	return append(ranked, extra...)
}
