package valkey

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/docinsight/internal/db"
	"github.com/kailas-cloud/docinsight/internal/domain/filter"
)

// SearchKNN runs a KNN vector similarity search via FT.SEARCH.
// Entries come back ordered by descending similarity.
func (s *Store) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if len(q.Vector) == 0 {
		return nil, fmt.Errorf("vector is required")
	}
	if q.K <= 0 {
		return nil, fmt.Errorf("k must be positive")
	}

	knnPart := fmt.Sprintf("[KNN %d @vector $BLOB]", q.K)
	queryStr := "*=>" + knnPart
	if filterStr := knnPrefilter(q.Filters); filterStr != "" {
		queryStr = filterStr + "=>" + knnPart
	}

	args := []string{q.IndexName, queryStr}
	if len(q.ReturnFields) > 0 {
		args = append(args, "RETURN", strconv.Itoa(len(q.ReturnFields)+1))
		args = append(args, q.ReturnFields...)
		args = append(args, "__vector_score")
	}
	args = append(args,
		"LIMIT", "0", strconv.Itoa(q.K),
		"PARAMS", "2", "BLOB", vectorToBytes(q.Vector),
		"DIALECT", "2",
	)

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	res, err := parseKNNResult(raw)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(res.Entries, func(i, j int) bool {
		return res.Entries[i].Score > res.Entries[j].Score
	})
	return res, nil
}

// SearchList enumerates hashes under q.KeyPrefix in key order.
// valkey-search only answers KNN queries, so listing walks the keyspace with SCAN
// and applies q.Filters in-process.
func (s *Store) SearchList(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error) {
	if q.KeyPrefix == "" {
		return nil, fmt.Errorf("key prefix is required")
	}
	if q.Offset < 0 {
		return nil, fmt.Errorf("offset must not be negative")
	}

	keys, err := s.Scan(ctx, q.KeyPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan for list: %w", err)
	}
	sort.Strings(keys)

	fields := fetchFields(q)
	matched := make([]db.SearchEntry, 0, len(keys))
	for start := 0; start < len(keys); start += listBatchSize {
		end := min(start+listBatchSize, len(keys))
		rows, err := s.hmgetMulti(ctx, keys[start:end], fields)
		if err != nil {
			return nil, err
		}
		for i, row := range rows {
			if len(row) == 0 || !q.Filters.Matches(row) {
				continue // deleted between SCAN and fetch, or filtered out
			}
			matched = append(matched, db.SearchEntry{Key: keys[start+i], Fields: project(row, q.ReturnFields)})
		}
	}

	total := len(matched)
	if q.Offset >= total {
		return &db.SearchResult{Total: total}, nil
	}
	end := total
	if q.Limit > 0 && q.Offset+q.Limit < total {
		end = q.Offset + q.Limit
	}
	return &db.SearchResult{Total: total, Entries: matched[q.Offset:end]}, nil
}

const listBatchSize = 200

// fetchFields is the union of returned fields and fields the filter needs.
// Nil means every field.
func fetchFields(q *db.ListQuery) []string {
	if len(q.ReturnFields) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(q.ReturnFields))
	out := make([]string, 0, len(q.ReturnFields)+2)
	add := func(f string) {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	for _, f := range q.ReturnFields {
		add(f)
	}
	for _, c := range q.Filters.Must() {
		add(c.Key())
	}
	for _, c := range q.Filters.Should() {
		add(c.Key())
	}
	return out
}

func project(row map[string]string, fields []string) map[string]string {
	if len(fields) == 0 {
		return row
	}
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		if v, ok := row[f]; ok {
			out[f] = v
		}
	}
	return out
}

// hmgetMulti reads the given fields (or all fields when nil) for each key in one round-trip.
func (s *Store) hmgetMulti(ctx context.Context, keys, fields []string) ([]map[string]string, error) {
	if len(fields) == 0 {
		return s.HGetAllMulti(ctx, keys)
	}

	cmds := make(rueidis.Commands, len(keys))
	for i, key := range keys {
		cmds[i] = s.b().Hmget().Key(key).Field(fields...).Build()
	}

	out := make([]map[string]string, len(keys))
	for i, res := range s.client.DoMulti(ctx, cmds...) {
		vals, err := res.ToArray()
		if err != nil {
			return nil, &db.Error{Op: db.OpHGetAll, Err: fmt.Errorf("key %s: %w", keys[i], err)}
		}
		row := make(map[string]string, len(fields))
		for j, v := range vals {
			if j >= len(fields) {
				break
			}
			if str, err := v.ToString(); err == nil {
				row[fields[j]] = str
			}
		}
		out[i] = row
	}
	return out, nil
}

// --- Result parsing ---

func parseKNNResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return &db.SearchResult{}, nil
	}

	entries := make([]db.SearchEntry, 0, total)
	// 2-stride: [total, key1, fields1, key2, fields2, ...]
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		fields, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}

		entry := db.SearchEntry{Key: key, Fields: parseFieldPairs(fields)}

		// __vector_score is cosine distance; expose similarity.
		if scoreStr, ok := entry.Fields["__vector_score"]; ok {
			if d, err := strconv.ParseFloat(scoreStr, 64); err == nil {
				entry.Score = 1.0 - d
			}
			delete(entry.Fields, "__vector_score")
		}

		entries = append(entries, entry)
	}

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

// --- Filter building ---

// buildFilter translates filter.Expression into an FT.SEARCH pre-filter query string.
// Must conditions are ANDed; should conditions form one OR group.
func buildFilter(expr filter.Expression) string {
	if expr.IsEmpty() {
		return ""
	}

	parts := make([]string, 0, len(expr.Must())+1)
	for _, cond := range expr.Must() {
		parts = append(parts, buildTagFilter(cond.Key(), cond.Match()))
	}

	if should := expr.Should(); len(should) > 0 {
		alts := make([]string, 0, len(should))
		for _, cond := range should {
			alts = append(alts, buildTagFilter(cond.Key(), cond.Match()))
		}
		parts = append(parts, "("+strings.Join(alts, " | ")+")")
	}

	return strings.Join(parts, " ")
}

// knnPrefilter returns the filter as one parenthesized group, the form KNN
// queries require. A lone OR group is already parenthesized by buildFilter.
func knnPrefilter(expr filter.Expression) string {
	f := buildFilter(expr)
	if f == "" || len(expr.Must()) == 0 {
		return f
	}
	return "(" + f + ")"
}

func buildTagFilter(key, value string) string {
	return fmt.Sprintf("@%s:{%s}", key, tagEscaper.Replace(value))
}

var tagEscaper = strings.NewReplacer(
	`\`, `\\`,
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"[", "\\[",
	"]", "\\]",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	"|", "\\|",
	"/", "\\/",
	" ", "\\ ",
)

func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
