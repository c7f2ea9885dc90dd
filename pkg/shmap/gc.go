package shmap

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/yndnr/shmap-go/internal/keyspace"
	"github.com/yndnr/shmap-go/internal/namelock"
	"github.com/yndnr/shmap-go/internal/shm"
)

// SweepOptions controls one GC sweep.
type SweepOptions struct {
	// DryRun classifies entries and reports planned removals without
	// removing anything.
	DryRun bool
}

// Removal describes one planned or performed removal.
type Removal struct {
	Name   string       `json:"name" yaml:"name"`
	Key    string       `json:"key,omitempty" yaml:"key,omitempty"`
	Reason RemoveReason `json:"reason" yaml:"reason"`
}

// SkippedEntry is an entry the sweep left alone.
type SkippedEntry struct {
	Name   string `json:"name" yaml:"name"`
	Reason string `json:"reason" yaml:"reason"`
}

// SweepReport summarizes a sweep.
type SweepReport struct {
	Live     []string       `json:"live" yaml:"live"`
	Removed  []Removal      `json:"removed" yaml:"removed"`
	Planned  []Removal      `json:"planned,omitempty" yaml:"planned,omitempty"`
	Skipped  []SkippedEntry `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Failed   int            `json:"failed" yaml:"failed"`
	DryRun   bool           `json:"dry_run" yaml:"dry_run"`
	Duration time.Duration  `json:"duration" yaml:"duration"`
}

// skipInGrace is the skip reason for a value whose metadata may still be
// on its way.
const skipInGrace = "value without metadata inside grace window"

// entrySet groups the directory entries of one key.
type entrySet struct {
	value, metadata, lock *shm.Entry
}

// plan is the outcome of classifying a directory snapshot.
type plan struct {
	live    []string
	remove  []Removal
	skipped []SkippedEntry
}

// metaLookup returns the metadata of a value name, nil when it is absent.
type metaLookup func(name string) (*Metadata, error)

// classify decides the fate of every key in entries. It performs no I/O
// beyond lookup, holds no locks and keeps no state between calls.
func classify(entries []shm.Entry, lookup metaLookup, now time.Time, grace time.Duration) plan {
	sets := make(map[string]*entrySet)
	for i := range entries {
		e := &entries[i]
		name := keyspace.DataName(e.Name)
		set, ok := sets[name]
		if !ok {
			set = &entrySet{}
			sets[name] = set
		}
		switch keyspace.Classify(e.Name) {
		case keyspace.KindValue:
			set.value = e
		case keyspace.KindMetadata:
			set.metadata = e
		case keyspace.KindLock:
			set.lock = e
		}
	}

	names := make([]string, 0, len(sets))
	for name := range sets {
		names = append(names, name)
	}
	sort.Strings(names)

	old := func(e *shm.Entry) bool {
		return now.Sub(e.ModTime) > grace
	}

	var p plan
	for _, name := range names {
		set := sets[name]

		switch {
		case set.value != nil:
			var meta *Metadata
			if set.metadata != nil {
				m, err := lookup(name)
				if err != nil {
					p.skipped = append(p.skipped, SkippedEntry{Name: name, Reason: err.Error()})
					continue
				}
				meta = m
			}
			switch {
			case meta == nil && old(set.value):
				p.remove = append(p.remove, Removal{Name: name, Reason: RemoveOrphanValue})
			case meta == nil:
				p.skipped = append(p.skipped, SkippedEntry{Name: name, Reason: skipInGrace})
			case meta.Expired(now):
				p.remove = append(p.remove, Removal{Name: name, Key: meta.Key, Reason: RemoveExpired})
			default:
				p.live = append(p.live, meta.Key)
			}

		case set.metadata != nil:
			if old(set.metadata) {
				p.remove = append(p.remove, Removal{Name: name, Reason: RemoveOrphanMetadata})
			}

		case set.lock != nil:
			if old(set.lock) {
				p.remove = append(p.remove, Removal{Name: name, Reason: RemoveOrphanLock})
			}
		}
	}

	sort.Strings(p.live)
	return p
}

// Sweep reconciles the directory: expired keys and orphans older than the
// grace window are removed, everything else is left alone. Failures on single
// entries are logged and counted; only a failed directory listing or a
// cancelled ctx fails the sweep.
func (s *Store) Sweep(ctx context.Context, opts SweepOptions) (*SweepReport, error) {
	start := time.Now()

	entries, err := s.dir.List()
	if err != nil {
		return nil, translateErr(err)
	}

	owned := entries[:0]
	for _, e := range entries {
		if s.ns.Owns(e.Name) {
			owned = append(owned, e)
		}
	}

	p := classify(owned, s.loadMetadata, s.now(), s.grace)

	report := &SweepReport{
		Live:    p.live,
		Skipped: p.skipped,
		DryRun:  opts.DryRun,
	}
	for _, sk := range p.skipped {
		if sk.Reason == skipInGrace {
			s.log.Debug("sweep skipped entry", "name", sk.Name, "reason", sk.Reason)
			continue
		}
		s.log.Warn("sweep skipped unreadable metadata", "name", sk.Name, "error", sk.Reason)
	}

	if opts.DryRun {
		report.Planned = p.remove
	} else if err := s.execute(ctx, p.remove, report); err != nil {
		return nil, err
	}

	if report.Live == nil {
		report.Live = []string{}
	}
	report.Duration = time.Since(start)
	s.metrics.Sweep(report.Duration, len(report.Live))

	s.log.Debug("sweep finished",
		"dir", s.dir.Root(),
		"namespace", s.ns.Prefix(),
		"live", len(report.Live),
		"removed", len(report.Removed),
		"planned", len(report.Planned),
		"skipped", len(report.Skipped),
		"failed", report.Failed,
		"duration", report.Duration,
	)
	return report, nil
}

// execute performs planned removals with bounded concurrency and pacing.
func (s *Store) execute(ctx context.Context, removals []Removal, report *SweepReport) error {
	if len(removals) == 0 {
		return nil
	}

	limit := rate.Inf
	if s.gcRate > 0 {
		limit = rate.Limit(s.gcRate)
	}
	limiter := rate.NewLimiter(limit, s.gcConcurrency)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.gcConcurrency)

	var mu sync.Mutex
	for _, r := range removals {
		r := r
		if err := limiter.Wait(gctx); err != nil {
			break
		}
		g.Go(func() error {
			done, err := s.reap(gctx, r)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				report.Failed++
				s.log.Error("sweep removal failed", "name", r.Name, "reason", r.Reason, "error", err)
			case done:
				report.Removed = append(report.Removed, r)
			}
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(report.Removed, func(i, j int) bool {
		return report.Removed[i].Name < report.Removed[j].Name
	})
	return ctx.Err()
}

// reap removes one planned entry through the normal removal path. The
// decision is checked again under the key lock, so a key re-created since
// the snapshot survives.
func (s *Store) reap(ctx context.Context, r Removal) (bool, error) {
	done := false
	err := s.withLock(ctx, r.Name, func(g *namelock.Guard) error {
		ok, err := s.stillEligible(r)
		if err != nil || !ok {
			return err
		}
		done = true
		return s.unlinkAll(r.Name, g)
	})
	if err != nil {
		return false, translateErr(err)
	}
	if done {
		s.metrics.Remove(r.Reason)
	}
	return done, nil
}

func (s *Store) stillEligible(r Removal) (bool, error) {
	value, valueExists, err := s.stat(r.Name)
	if err != nil {
		return false, err
	}
	_, metaExists, err := s.stat(keyspace.MetadataName(r.Name))
	if err != nil {
		return false, err
	}

	now := s.now()
	switch r.Reason {
	case RemoveExpired:
		meta, err := s.loadMetadata(r.Name)
		if err != nil {
			return false, err
		}
		return meta != nil && meta.Expired(now), nil
	case RemoveOrphanValue:
		return valueExists && !metaExists && now.Sub(value.ModTime) > s.grace, nil
	case RemoveOrphanMetadata:
		return !valueExists && metaExists, nil
	case RemoveOrphanLock:
		return !valueExists && !metaExists, nil
	default:
		return false, nil
	}
}

func (s *Store) stat(name string) (shm.Entry, bool, error) {
	e, err := s.dir.Stat(keyspace.ObjectName(name))
	switch {
	case err == nil:
		return e, true, nil
	case errors.Is(err, shm.ErrNotFound):
		return shm.Entry{}, false, nil
	default:
		return shm.Entry{}, false, err
	}
}
