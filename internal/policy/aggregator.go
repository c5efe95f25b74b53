package policy

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"example.com/healthshare/internal/domain"
)

// ResolveSelfTotals runs the self-aggregation pass: owners with role self in
// the group, with itemized records reduced to per-type value sums over the
// window. A zero-valued window defaults to the trailing 24 hours from a
// single instant taken once per call, so every owner's totals are comparable.
// Every visible type appears in the totals map, summing to 0.0 when no
// records match. The retention cutoff is not applied here: owners always see
// their own data in full.
func (r *Resolver) ResolveSelfTotals(ctx context.Context, groupID string, window domain.TimeRange) ([]OwnerTotals, error) {
	start := r.now()

	if window.End.IsZero() {
		end := r.now().UTC()
		window = domain.TimeRange{Start: end.Add(-DefaultTotalsWindow), End: end}
	}

	owners, err := r.profiles.ProfilesByGroupAndRole(ctx, groupID, domain.RoleSelf)
	if err != nil {
		recordResolution(passSelfTotals, outcomeFailed, r.now().Sub(start))
		return nil, fmt.Errorf("owner discovery: %w", err)
	}

	type slot struct {
		totals   *OwnerTotals
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

			types := settings.VisibleTypes()
			byType, failures, err := r.fetchOwnerRecords(gctx, profile.ID, types, &window)
			if err != nil {
				return err
			}

			totals := &OwnerTotals{
				OwnerID:     profile.ID,
				DisplayName: settings.ResolveDisplayName(profile),
				Totals:      make(map[domain.RecordType]float64, len(types)),
			}
			for _, t := range types {
				sum := 0.0
				for _, rec := range byType[t] {
					sum += rec.Value
				}
				totals.Totals[t] = sum
			}
			slots[i] = slot{totals: totals, failures: failures}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		recordResolution(passSelfTotals, outcomeFailed, r.now().Sub(start))
		return nil, err
	}

	out := make([]OwnerTotals, 0, len(owners))
	var failures []FetchFailure
	for _, s := range slots {
		if s.totals != nil {
			out = append(out, *s.totals)
		}
		failures = append(failures, s.failures...)
	}

	if len(failures) > 0 {
		r.logFailures(failures)
		recordResolution(passSelfTotals, outcomePartial, r.now().Sub(start))
		return out, &PartialFailure{Failures: failures}
	}
	recordResolution(passSelfTotals, outcomeOK, r.now().Sub(start))
	return out, nil
}
