package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/nerrad567/emotionalsongs-core/internal/decode"
	"github.com/nerrad567/emotionalsongs-core/internal/infrastructure/database"
	"github.com/nerrad567/emotionalsongs-core/internal/infrastructure/logging"
	"github.com/nerrad567/emotionalsongs-core/internal/query"
	"github.com/nerrad567/emotionalsongs-core/internal/schema"
)

const (
	// maxResolveAttempts bounds lookup/insert rounds when inserts keep conflicting.
	maxResolveAttempts = 3

	// idTick and maxIDWaits bound how long a retry waits for the generator
	// to move past an ID that was already taken.
	idTick     = time.Millisecond
	maxIDWaits = 5
)

// ResidenceResolver finds the residence with a given natural key or creates it.
//
// Concurrent resolutions of the same key in one process share a single
// lookup/insert. Across processes the UNIQUE constraint on the natural key
// rejects the second insert, which is then answered by re-reading.
type ResidenceResolver struct {
	q       Querier
	dialect query.Dialect
	ids     IDGenerator
	logger  *logging.Logger
	group   singleflight.Group
}

// NewResidenceResolver creates a resolver. A nil logger discards output.
func NewResidenceResolver(q Querier, d query.Dialect, ids IDGenerator, logger *logging.Logger) *ResidenceResolver {
	if logger == nil {
		logger = logging.Discard()
	}
	return &ResidenceResolver{q: q, dialect: d, ids: ids, logger: logger}
}

type resolution struct {
	residence Residence
	created   bool
}

// Resolve returns the stored residence matching res's natural key, inserting
// res under a new ID when none exists. created reports whether this call (or
// the resolution it joined) inserted the row. res.ID is ignored.
//
// The shared lookup/insert is detached from any single caller's
// cancellation. Each caller stops waiting when its own ctx ends; the shared
// work still completes for the callers that remain.
func (r *ResidenceResolver) Resolve(ctx context.Context, res Residence) (Residence, bool, error) {
	if err := res.validate(); err != nil {
		return Residence{}, false, err
	}
	if err := ctx.Err(); err != nil {
		return Residence{}, false, err
	}

	shared := context.WithoutCancel(ctx)
	ch := r.group.DoChan(res.NaturalKey().String(), func() (any, error) {
		return r.resolve(shared, res)
	})

	select {
	case <-ctx.Done():
		return Residence{}, false, ctx.Err()
	case out := <-ch:
		if out.Err != nil {
			return Residence{}, false, out.Err
		}
		v := out.Val.(resolution)
		return v.residence, v.created, nil
	}
}

func (r *ResidenceResolver) resolve(ctx context.Context, res Residence) (resolution, error) {
	var taken string
	for attempt := 1; attempt <= maxResolveAttempts; attempt++ {
		found, ok, err := r.lookup(ctx, res.NaturalKey())
		if err != nil {
			return resolution{}, err
		}
		if ok {
			return resolution{residence: found}, nil
		}

		id, err := r.freshID(ctx, taken)
		if err != nil {
			return resolution{}, err
		}
		res.ID = id
		stmt, args := query.Insert(r.dialect, res.Attributes())
		_, err = r.q.ExecContext(ctx, stmt, args...)
		if err == nil {
			return resolution{residence: res, created: true}, nil
		}
		if !database.IsUniqueViolation(err) {
			return resolution{}, fmt.Errorf("inserting residence: %w", err)
		}

		// Either another writer created the same key, or the generated ID is
		// taken. The next lookup tells which; remember the ID for the latter.
		taken = res.ID
		r.logger.Debug("residence insert conflicted, re-reading",
			"attempt", attempt,
			"residence_id", res.ID,
		)
	}
	return resolution{}, fmt.Errorf("resolving residence after %d attempts: %w", maxResolveAttempts, ErrIDCollision)
}

// freshID returns a generated ID different from taken. Time-based generators
// repeat within a millisecond, so it waits up to maxIDWaits ticks for the
// clock to move and then gives up, returning the repeated ID.
func (r *ResidenceResolver) freshID(ctx context.Context, taken string) (string, error) {
	id := r.ids.NewID()
	for wait := 0; id == taken && wait < maxIDWaits; wait++ {
		timer := time.NewTimer(idTick)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}
		id = r.ids.NewID()
	}
	return id, nil
}

// lookup finds a residence whose natural key matches exactly.
func (r *ResidenceResolver) lookup(ctx context.Context, key ResidenceKey) (Residence, bool, error) {
	src := query.From(schema.Residence, "r")
	stmt := r.dialect.Rebind(query.Project(src).Select(
		"FROM residence r WHERE " + query.AllEqual(src, schema.ResidenceNaturalKey()...) + " LIMIT 1",
	))

	found, err := first(ctx, r.q, stmt,
		[]any{key.Street, key.CivicNumber, key.CouncilName, key.ProvinceName},
		errNoResidence,
		func(cur decode.Cursor) (Residence, error) {
			attrs, err := decode.Table(cur, schema.Residence)
			if err != nil {
				return Residence{}, err
			}
			return NewResidence(attrs)
		})
	if errors.Is(err, errNoResidence) {
		return Residence{}, false, nil
	}
	if err != nil {
		return Residence{}, false, fmt.Errorf("looking up residence: %w", err)
	}
	return found, true, nil
}
