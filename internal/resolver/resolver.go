// Package resolver turns the area ids referenced by a page of meters into addresses.
package resolver

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/ANIKETSHETTY47/meters-dashboard/internal/domain"
)

var ErrMissingID = errors.New("address has no id")

// AreaLookup is the upstream call the resolver needs.
type AreaLookup interface {
	Areas(ctx context.Context, id string) ([]domain.Address, error)
}

// Sink receives every accepted address.
type Sink interface {
	Put(a domain.Address)
}

// Outcome reports what happened for one requested area id.
type Outcome struct {
	ID       string
	Stored   int
	Rejected int
	Err      error
}

type Resolver struct {
	lookup AreaLookup
	log    zerolog.Logger
}

func New(lookup AreaLookup, logger zerolog.Logger) *Resolver {
	return &Resolver{lookup: lookup, log: logger}
}

// Resolve looks up each distinct id one request at a time. A failed lookup is recorded
// in that id's outcome and the batch moves on; a cancelled context marks the rest of
// the batch with the context error.
func (r *Resolver) Resolve(ctx context.Context, ids []string, sink Sink) []Outcome {
	unique := UniqueIDs(ids)
	out := make([]Outcome, len(unique))

	for i, id := range unique {
		out[i].ID = id
		if err := ctx.Err(); err != nil {
			for j := i; j < len(unique); j++ {
				out[j] = Outcome{ID: unique[j], Err: err}
			}
			r.log.Warn().Err(err).Int("skipped", len(unique)-i).Msg("address resolution cancelled")
			break
		}

		addresses, err := r.lookup.Areas(ctx, id)
		if err != nil {
			out[i].Err = err
			r.log.Error().Err(err).Str("area_id", id).Msg("fetch address failed")
			continue
		}

		for _, a := range addresses {
			if a.ID == "" {
				out[i].Rejected++
				r.log.Error().Err(ErrMissingID).Str("area_id", id).Msg("address rejected")
				continue
			}
			sink.Put(a)
			out[i].Stored++
		}
		r.log.Debug().Str("area_id", id).Int("stored", out[i].Stored).Msg("address resolved")
	}
	return out
}

// UniqueIDs drops empty and repeated ids, keeping first-seen order.
func UniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Failed returns the outcomes that carry an error.
func Failed(outcomes []Outcome) []Outcome {
	var out []Outcome
	for _, o := range outcomes {
		if o.Err != nil {
			out = append(out, o)
		}
	}
	return out
}
