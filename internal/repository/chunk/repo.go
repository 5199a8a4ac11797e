// Package chunk stores document chunks as Valkey hashes behind an HNSW index.
package chunk

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/google/uuid"

	"github.com/kailas-cloud/docinsight/internal/db"
	domchunk "github.com/kailas-cloud/docinsight/internal/domain/chunk"
	"github.com/kailas-cloud/docinsight/internal/domain/filter"
	"github.com/kailas-cloud/docinsight/internal/metrics"
)

// Hash field names.
const (
	FieldContent    = "__content"
	FieldVector     = "__vector"
	FieldSource     = filter.SourceField
	FieldPage       = "page"
	FieldStartIndex = "start_index"
)

// sourceSeparator splits TAG values. Filenames may contain commas, the default separator.
const sourceSeparator = "|"

var returnFields = []string{FieldContent, FieldSource, FieldPage, FieldStartIndex}

// store is the consumer interface for chunk storage (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchList(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error)
}

// Config describes the index layout.
type Config struct {
	KeyPrefix       string // global prefix, e.g. "docinsight:"
	IndexName       string
	Dimensions      int
	HNSWM           int
	HNSWEFConstruct int
}

// Repo reads and writes chunks.
type Repo struct {
	store     store
	cfg       Config
	keyPrefix string
	indexName string
	newID     func() string
}

// New creates a chunk repository.
func New(s store, cfg Config) *Repo {
	return &Repo{
		store:     s,
		cfg:       cfg,
		keyPrefix: cfg.KeyPrefix + "chunk:",
		indexName: cfg.KeyPrefix + cfg.IndexName + ":idx",
		newID:     uuid.NewString,
	}
}

// EnsureIndex creates the vector index when it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) (created bool, err error) {
	exists, err := r.store.IndexExists(ctx, r.indexName)
	if err != nil {
		return false, fmt.Errorf("check index %s: %w", r.indexName, err)
	}
	if exists {
		return false, nil
	}

	def, err := db.NewIndex(r.indexName).
		Prefix(r.keyPrefix).
		Tag(FieldSource, sourceSeparator, true).
		Numeric(FieldPage).
		VectorHNSW(FieldVector, "vector", r.cfg.Dimensions, db.DistanceCosine, r.cfg.HNSWM, r.cfg.HNSWEFConstruct).
		Build()
	if err != nil {
		return false, fmt.Errorf("build index definition: %w", err)
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return false, nil // created concurrently
		}
		return false, fmt.Errorf("create index %s: %w", r.indexName, err)
	}
	return true, nil
}

// Put writes one hash per chunk. vectors[i] belongs to chunks[i].
func (r *Repo) Put(ctx context.Context, chunks []domchunk.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunk/vector count mismatch: %d != %d", len(chunks), len(vectors))
	}
	if len(chunks) == 0 {
		return nil
	}

	items := make([]db.HashSetItem, len(chunks))
	for i, c := range chunks {
		items[i] = db.HashSetItem{
			Key: r.keyPrefix + r.newID(),
			Fields: map[string]string{
				FieldContent:    c.Text,
				FieldSource:     c.Source,
				FieldPage:       strconv.Itoa(c.Page),
				FieldStartIndex: strconv.Itoa(c.StartIndex),
				FieldVector:     encodeVector(vectors[i]),
			},
		}
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("write %d chunks: %w", len(items), err)
	}
	metrics.ChunksIndexedTotal.Add(float64(len(items)))
	return nil
}

// Search returns the k nearest chunks to vector that satisfy f, closest first.
func (r *Repo) Search(ctx context.Context, vector []float32, k int, f filter.Expression) ([]domchunk.Hit, error) {
	res, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.indexName,
		Filters:      f,
		Vector:       vector,
		K:            k,
		ReturnFields: returnFields,
	})
	if err != nil {
		return nil, fmt.Errorf("search chunks: %w", err)
	}

	hits := make([]domchunk.Hit, 0, len(res.Entries))
	for _, e := range res.Entries {
		hits = append(hits, domchunk.Hit{
			Chunk: fromFields(e.Fields),
			Score: e.Score,
			Rank:  len(hits) + 1,
		})
	}
	return hits, nil
}

// List returns every stored chunk matching f in key order.
func (r *Repo) List(ctx context.Context, f filter.Expression) ([]domchunk.Chunk, error) {
	res, err := r.list(ctx, f, returnFields)
	if err != nil {
		return nil, err
	}
	out := make([]domchunk.Chunk, 0, len(res.Entries))
	for _, e := range res.Entries {
		out = append(out, fromFields(e.Fields))
	}
	return out, nil
}

// Sources returns the distinct source filenames, sorted.
func (r *Repo) Sources(ctx context.Context) ([]string, error) {
	res, err := r.list(ctx, filter.Expression{}, []string{FieldSource})
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, e := range res.Entries {
		s := e.Fields[FieldSource]
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out, nil
}

func (r *Repo) list(ctx context.Context, f filter.Expression, fields []string) (*db.SearchResult, error) {
	res, err := r.store.SearchList(ctx, &db.ListQuery{
		IndexName:    r.indexName,
		KeyPrefix:    r.keyPrefix,
		Filters:      f,
		ReturnFields: fields,
	})
	if err != nil {
		return nil, fmt.Errorf("list chunks: %w", err)
	}
	return res, nil
}

// fromFields rebuilds a chunk from hash fields. Unparseable numbers read as 0.
func fromFields(m map[string]string) domchunk.Chunk {
	page, _ := strconv.Atoi(m[FieldPage])
	start, _ := strconv.Atoi(m[FieldStartIndex])
	return domchunk.Chunk{
		Text:       m[FieldContent],
		Source:     m[FieldSource],
		Page:       page,
		StartIndex: start,
	}
}

func encodeVector(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
