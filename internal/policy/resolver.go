// Package policy implements the sharing-policy resolution engine: given a
// group and a resolution pass, it decides which owners' records are visible,
// under what display identity, and with what temporal filtering.
package policy

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"example.com/healthshare/internal/domain"
)

const defaultQueryPageSize = 100

// DefaultTotalsWindow is the trailing window used by the self-aggregation
// pass when the caller does not supply one.
const DefaultTotalsWindow = 24 * time.Hour

// OwnerView is one owner's itemized contribution to a shared group view.
// Records is empty, never nil, for an owner with nothing visible.
type OwnerView struct {
	OwnerID     string
	DisplayName string
	Records     []domain.HealthRecord
}

// OwnerTotals is one owner's per-type value sums for the self view.
type OwnerTotals struct {
	OwnerID     string
	DisplayName string
	Totals      map[domain.RecordType]float64
}

// Option configures optional resolver behaviour.
type Option func(*Resolver)

// WithLogger overrides the logger used to report skipped fetches.
func WithLogger(logger *log.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// WithClock overrides the time source, used by tests to pin the default
// aggregation window.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		r.now = now
	}
}

// WithQueryPageSize overrides the record-store page size used while
// draining an owner's records.
func WithQueryPageSize(size int) Option {
	return func(r *Resolver) {
		if size > 0 {
			r.pageSize = size
		}
	}
}

// Resolver fans out over a group's owners and applies each owner's sharing
// settings. All store access goes through the injected adapters; the
// resolver holds no mutable state of its own.
type Resolver struct {
	profiles domain.ProfileStore
	settings domain.SettingsStore
	records  domain.RecordStore
	logger   *log.Logger
	now      func() time.Time
	pageSize int
}

// NewResolver constructs a Resolver over the three store adapters.
func NewResolver(profiles domain.ProfileStore, settings domain.SettingsStore, records domain.RecordStore, opts ...Option) *Resolver {
	r := &Resolver{
		profiles: profiles,
		settings: settings,
		records:  records,
		logger:   log.New(log.Writer(), "[policy] ", log.LstdFlags),
		now:      time.Now,
		pageSize: defaultQueryPageSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveShared produces the itemized shared view for a group: one OwnerView
// per profile matching (groupID, role), in store order. Owners whose
// per-type fetches fail are reported through a *PartialFailure returned
// alongside the successful views. A discovery failure aborts the whole call;
// caller cancellation discards partial results and returns the context
// error.
func (r *Resolver) ResolveShared(ctx context.Context, groupID string, role domain.Role) ([]OwnerView, error) {
	start := r.now()

	owners, err := r.profiles.ProfilesByGroupAndRole(ctx, groupID, role)
	if err != nil {
		recordResolution(passShared, outcomeFailed, r.now().Sub(start))
		return nil, fmt.Errorf("owner discovery: %w", err)
	}

	type slot struct {
		view     *OwnerView
		failures []FetchFailure
	}
	slots := make([]slot, len(owners))

	g, gctx := errgroup.WithContext(ctx)
	for i, profile := range owners {
		g.Go(func() error {
			settings, fail, err := r.loadSettings(gctx, groupID, profile.ID)
			if err != nil {
				return err
			}
			if fail != nil {
				slots[i] = slot{failures: []FetchFailure{*fail}}
				return nil
			}

			byType, failures, err := r.fetchOwnerRecords(gctx, profile.ID, settings.VisibleTypes(), nil)
			if err != nil {
				return err
			}

			view := &OwnerView{
				OwnerID:     profile.ID,
				DisplayName: settings.ResolveDisplayName(profile),
				Records:     []domain.HealthRecord{},
			}
			for _, t := range settings.VisibleTypes() {
				view.Records = append(view.Records, FilterExpired(byType[t], settings.DeletionDate)...)
			}
			slots[i] = slot{view: view, failures: failures}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		recordResolution(passShared, outcomeFailed, r.now().Sub(start))
		return nil, err
	}

	views := make([]OwnerView, 0, len(owners))
	var failures []FetchFailure
	for _, s := range slots {
		if s.view != nil {
			views = append(views, *s.view)
		}
		failures = append(failures, s.failures...)
	}

	if len(failures) > 0 {
		r.logFailures(failures)
		recordResolution(passShared, outcomePartial, r.now().Sub(start))
		return views, &PartialFailure{Failures: failures}
	}
	recordResolution(passShared, outcomeOK, r.now().Sub(start))
	return views, nil
}

// loadSettings resolves the owner's settings document, synthesizing the
// open-by-default policy when none is stored. A store error becomes a
// FetchFailure for that owner rather than aborting the pass.
func (r *Resolver) loadSettings(ctx context.Context, groupID, ownerID string) (domain.SharingSettings, *FetchFailure, error) {
	stored, err := r.settings.Settings(ctx, ownerID, groupID)
	if err != nil {
		if ctx.Err() != nil {
			return domain.SharingSettings{}, nil, ctx.Err()
		}
		return domain.SharingSettings{}, &FetchFailure{OwnerID: ownerID, Err: fmt.Errorf("settings: %w", err)}, nil
	}
	if stored == nil {
		return domain.DefaultSettings(ownerID, groupID), nil, nil
	}
	return *stored, nil, nil
}

// fetchOwnerRecords drains the record store for each visible type
// concurrently. Per-type errors are collected, not propagated; only
// cancellation stops the fan-out.
func (r *Resolver) fetchOwnerRecords(ctx context.Context, ownerID string, types []domain.RecordType, rng *domain.TimeRange) (map[domain.RecordType][]domain.HealthRecord, []FetchFailure, error) {
	results := make([][]domain.HealthRecord, len(types))
	errs := make([]error, len(types))

	g, gctx := errgroup.WithContext(ctx)
	for i, t := range types {
		g.Go(func() error {
			records, err := r.queryAll(gctx, ownerID, t, rng)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				errs[i] = err
				return nil
			}
			results[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	byType := make(map[domain.RecordType][]domain.HealthRecord, len(types))
	var failures []FetchFailure
	for i, t := range types {
		if errs[i] != nil {
			failures = append(failures, FetchFailure{OwnerID: ownerID, Type: t, Err: errs[i]})
			continue
		}
		byType[t] = results[i]
	}
	return byType, failures, nil
}

func (r *Resolver) queryAll(ctx context.Context, ownerID string, t domain.RecordType, rng *domain.TimeRange) ([]domain.HealthRecord, error) {
	var (
		out    []domain.HealthRecord
		cursor *domain.Cursor
	)
	for {
		page, next, err := r.records.QueryRecords(ctx, ownerID, t, rng, cursor, r.pageSize)
		if err != nil {
			return nil, err
		}
		out = append(out, page...)
		if next == nil {
			return out, nil
		}
		cursor = next
	}
}

func (r *Resolver) logFailures(failures []FetchFailure) {
	for _, f := range failures {
		recordFetchFailure()
		r.logger.Printf("fetch skipped: %s", f)
	}
}
