package catalog

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/nerrad567/emotionalsongs-core/internal/decode"
	"github.com/nerrad567/emotionalsongs-core/internal/query"
	"github.com/nerrad567/emotionalsongs-core/internal/schema"
)

// Dependent names a child table loaded by parent key after the primary rows.
type Dependent struct {
	Table   schema.Table
	Key     schema.Column
	OrderBy []schema.Column
}

var (
	albumImages = Dependent{
		Table:   schema.AlbumImage,
		Key:     schema.AlbumImageAlbumID,
		OrderBy: []schema.Column{schema.AlbumImageSize},
	}
	playlistSongs = Dependent{
		Table:   schema.PlaylistSong,
		Key:     schema.PlaylistSongPlaylistID,
		OrderBy: []schema.Column{schema.PlaylistSongSongID},
	}
)

const dependentAlias = "d"

func (dep Dependent) source() query.Source {
	return query.From(dep.Table, dependentAlias)
}

func (dep Dependent) projection() query.Projection {
	return query.Project(dep.source())
}

// statement renders the dependent SELECT with where as its filter.
func (dep Dependent) statement(where string, keyFirst bool) string {
	src := dep.source()
	order := make([]string, 0, len(dep.OrderBy)+1)
	if keyFirst {
		order = append(order, src.Col(dep.Key))
	}
	for _, c := range dep.OrderBy {
		order = append(order, src.Col(c))
	}
	tail := "FROM " + string(dep.Table) + " " + dependentAlias + " WHERE " + where
	if len(order) > 0 {
		tail += " ORDER BY " + strings.Join(order, ", ")
	}
	return dep.projection().Select(tail)
}

func (dep Dependent) decodeRow(cur decode.Cursor) (decode.Attributes, error) {
	res, err := decode.Projected(cur, dep.projection())
	if err != nil {
		return decode.Attributes{}, fmt.Errorf("decoding %s: %w", dep.Table, err)
	}
	attrs, _ := res.Table(dep.Table)
	return attrs, nil
}

// FetchStrategy loads the dependent rows of many parents.
// The result maps each parent key to its rows; parents without rows may be absent.
type FetchStrategy interface {
	Fetch(ctx context.Context, q Querier, d query.Dialect, dep Dependent, keys []string) (map[string][]decode.Attributes, error)
	Name() string
}

// Fetch strategy names as used in configuration.
const (
	FetchPerEntity = "per_entity"
	FetchBatched   = "batched"
)

// FetchStrategyFor returns the strategy for a configured name.
func FetchStrategyFor(name string, parallelism int) (FetchStrategy, error) {
	switch name {
	case FetchPerEntity, "":
		return PerEntity{Parallelism: parallelism}, nil
	case FetchBatched:
		return Batched{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFetchStrategy, name)
	}
}

// PerEntity issues one query per parent key. Up to Parallelism queries run
// at once; each writes only its own parent's slot.
type PerEntity struct {
	Parallelism int
}

// Name implements FetchStrategy.
func (PerEntity) Name() string { return FetchPerEntity }

// Fetch implements FetchStrategy.
func (s PerEntity) Fetch(ctx context.Context, q Querier, d query.Dialect, dep Dependent, keys []string) (map[string][]decode.Attributes, error) {
	keys = distinct(keys)
	results := make([][]decode.Attributes, len(keys))
	stmt := d.Rebind(dep.statement(dep.source().Col(dep.Key)+" = ?", false))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, s.Parallelism))
	for i, key := range keys {
		g.Go(func() error {
			rows, err := collect(gctx, q, stmt, []any{key}, dep.decodeRow)
			if err != nil {
				return fmt.Errorf("fetching %s for %s: %w", dep.Table, key, err)
			}
			results[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string][]decode.Attributes, len(keys))
	for i, key := range keys {
		if len(results[i]) > 0 {
			out[key] = results[i]
		}
	}
	return out, nil
}

// defaultBatchChunk keeps IN lists well under every driver's parameter limit.
const defaultBatchChunk = 500

// Batched issues one IN query per chunk of parent keys and distributes the
// rows by key.
type Batched struct {
	// ChunkSize bounds the keys per query. Zero means 500.
	ChunkSize int
}

// Name implements FetchStrategy.
func (Batched) Name() string { return FetchBatched }

// Fetch implements FetchStrategy.
func (b Batched) Fetch(ctx context.Context, q Querier, d query.Dialect, dep Dependent, keys []string) (map[string][]decode.Attributes, error) {
	keys = distinct(keys)
	out := make(map[string][]decode.Attributes, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	size := b.ChunkSize
	if size <= 0 {
		size = defaultBatchChunk
	}
	for chunk := range slices.Chunk(keys, size) {
		stmt, args, err := d.In(dep.statement(dep.source().Col(dep.Key)+" IN (?)", true), chunk)
		if err != nil {
			return nil, err
		}
		rows, err := collect(ctx, q, stmt, args, dep.decodeRow)
		if err != nil {
			return nil, fmt.Errorf("fetching %s: %w", dep.Table, err)
		}
		for _, attrs := range rows {
			r := attrs.Reader()
			key := r.String(dep.Key)
			if err := r.Err(); err != nil {
				return nil, fmt.Errorf("reading %s key: %w", dep.Table, err)
			}
			out[key] = append(out[key], attrs)
		}
	}
	return out, nil
}

// fetchDependents loads and builds the dependents of keys with strategy.
func fetchDependents[D any](ctx context.Context, strategy FetchStrategy, q Querier, d query.Dialect,
	dep Dependent, keys []string, build func(decode.Attributes) (D, error)) (map[string][]D, error) {
	if len(keys) == 0 {
		return map[string][]D{}, nil
	}
	raw, err := strategy.Fetch(ctx, q, d, dep, keys)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]D, len(raw))
	for key, rows := range raw {
		for _, attrs := range rows {
			v, err := build(attrs)
			if err != nil {
				return nil, err
			}
			out[key] = append(out[key], v)
		}
	}
	return out, nil
}

// distinct returns keys without duplicates, first occurrence order kept.
func distinct(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
