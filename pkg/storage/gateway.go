// Package storage is the bounded-concurrency gateway to the wide-column
// store (C6): a session plus a cache of prepared statements, insert/read
// operations guarded by a circuit breaker, per spec §4.4.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gocql/gocql"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"github.com/soundprediction/graphsvc/pkg/graphdoc"
	"github.com/soundprediction/graphsvc/pkg/row"
	"github.com/soundprediction/graphsvc/pkg/utils"
)

// Config configures the storage gateway's connection and concurrency bound.
type Config struct {
	ConnectionURL     string
	Datacenter        string
	SchemaFile        string
	ConcurrencyLimit  int
	CircuitBreakerCfg CircuitBreakerConfig
}

// CircuitBreakerConfig mirrors the teacher's pkg/nlp circuit breaker
// settings, applied here to the storage transport instead of an LLM client.
type CircuitBreakerConfig struct {
	Enabled     bool
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
	TripRatio   float64
}

// Gateway is the storage session shared immutably across the process once
// constructed at startup (spec §5 "Shared mutable state").
type Gateway struct {
	session          *gocql.Session
	queries          map[string]string
	concurrencyLimit int
	breaker          *gobreaker.CircuitBreaker
}

// Open establishes a session to the cluster, applies the schema file,
// awaits schema agreement, and returns a ready-to-use Gateway. Compression
// is LZ4, matching spec §4.4.
func Open(cfg Config) (*Gateway, error) {
	cluster := gocql.NewCluster(cfg.ConnectionURL)
	cluster.Compressor = &gocql.LZ4Compressor{}
	cluster.Keyspace = "graph"
	cluster.Consistency = gocql.Quorum
	if cfg.Datacenter != "" {
		cluster.HostFilter = gocql.DataCentreHostFilter(cfg.Datacenter)
	}

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("storage: failed to establish session: %w", err)
	}
	slog.Info("storage: connection established")

	if cfg.SchemaFile != "" {
		if err := LoadSchema(session, cfg.SchemaFile); err != nil {
			session.Close()
			return nil, fmt.Errorf("storage: failed to load schema: %w", err)
		}
		slog.Info("storage: schema loaded successfully")
	}

	limit := cfg.ConcurrencyLimit
	if limit <= 0 {
		limit = utils.GetSemaphoreLimit()
	}

	gw := &Gateway{
		session:          session,
		queries:          logicalQueries,
		concurrencyLimit: limit,
		breaker:          newBreaker(cfg.CircuitBreakerCfg),
	}
	return gw, nil
}

func newBreaker(cfg CircuitBreakerConfig) *gobreaker.CircuitBreaker {
	if !cfg.Enabled {
		cfg = CircuitBreakerConfig{Enabled: true, MaxRequests: 1, Interval: 0, Timeout: 0}
	}
	tripRatio := cfg.TripRatio
	if tripRatio <= 0 {
		tripRatio = 0.6
	}
	st := gobreaker.Settings{
		Name:        "storage-gateway",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= tripRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			if to == gobreaker.StateOpen {
				slog.Warn("storage: circuit breaker tripped", "from", from.String(), "to", to.String())
			}
		},
	}
	return gobreaker.NewCircuitBreaker(st)
}

// Close releases the underlying session.
func (g *Gateway) Close() {
	g.session.Close()
}

// Ping performs a lightweight liveness probe used by the health endpoint.
func (g *Gateway) Ping(ctx context.Context) error {
	_, err := g.breaker.Execute(func() (interface{}, error) {
		var now time.Time
		return nil, g.session.Query(healthProbeQuery).WithContext(ctx).Scan(&now)
	})
	return err
}

// InsertRows fires all inserts under a bounded concurrency budget. Each
// individual row failure is logged and recorded; the call itself only
// fails if every row fails or the executor cannot run at all — per spec
// §4.4/§7, ingestion is best-effort.
func (g *Gateway) InsertRows(ctx context.Context, rows []row.Row) error {
	if len(rows) == 0 {
		return nil
	}

	executor := utils.NewRowInsertExecutor(g.concurrencyLimit)
	fns := make([]func() error, len(rows))
	for i, r := range rows {
		r := r
		fns[i] = func() error { return g.insertRow(ctx, r) }
	}

	results := executor.Execute(ctx, fns...)
	failures := 0
	for i, err := range results {
		if err != nil {
			failures++
			slog.Error("storage: row insert failed", "index", i, "id", rows[i].ID, "error", err)
		}
	}
	if failures == len(rows) {
		return fmt.Errorf("storage: all %d row inserts failed", failures)
	}
	return nil
}

func (g *Gateway) insertRow(ctx context.Context, r row.Row) error {
	_, err := g.breaker.Execute(func() (interface{}, error) {
		tags := make([][2]string, 0, len(r.Tags))
		for _, t := range r.Tags {
			tags = append(tags, [2]string{t.Kind, t.Value})
		}
		return nil, g.session.Query(
			g.queries["insert_node_query"],
			r.ID, string(r.Direction), r.Relation, r.RelatesTo, r.Name,
			r.IngestionID, r.Path, r.NodeType, tags,
		).WithContext(ctx).Exec()
	})
	return err
}

// Node is the assembled read-side view of a self-row, optionally enriched
// with its tags and relation edges.
type Node struct {
	UUID        uuid.UUID
	IngestionID string
	Name        string
	Path        string
	Type        string
	Tags        []graphdoc.Tag
	Relations   []NodeRelation
}

// NodeRelation is one edge row attached to a node read via GetNode.
type NodeRelation struct {
	Type       string
	Outbound   bool
	TargetName string
	RelatesTo  string
}

// ErrNotFound is returned by nothing in this package directly; GetNode and
// ScanEdges instead return (nil, nil) / (nil, nil) on a not-found partition,
// per spec §7 ("not-found... never an error"). It is kept for callers that
// prefer to compare against a sentinel.
var ErrNotFound = errors.New("storage: node not found")

// GetNode selects from one partition using the predicate spec §4.4
// describes: minimal self-row columns when neither flag is set, self-row
// plus tags, or the whole partition when relations are requested. It
// returns (nil, nil) when the self-row is absent and only returns an error
// on transport/decode failure.
func (g *Gateway) GetNode(ctx context.Context, id uuid.UUID, includeTags, includeRelations bool) (*Node, error) {
	if !includeTags && !includeRelations {
		return g.getNodeMinimal(ctx, id)
	}

	query := g.queries["get_node_with_tags_query"]
	if includeRelations {
		query = g.queries["get_node_with_relations_query"]
	}

	iterResult, err := g.breaker.Execute(func() (interface{}, error) {
		iter := g.session.Query(query, id).WithContext(ctx).Iter()
		rows, err := scanPartitionRows(iter)
		if cerr := iter.Close(); cerr != nil && err == nil {
			err = cerr
		}
		return rows, err
	})
	if err != nil {
		return nil, fmt.Errorf("storage: get_node failed: %w", err)
	}

	rows := iterResult.([]partitionRow)
	if len(rows) == 0 {
		return nil, nil
	}

	self := rows[0]
	node := &Node{
		UUID:        id,
		IngestionID: self.ingestionID,
		Name:        self.name,
		Path:        self.path,
		Type:        self.nodeType,
	}
	if includeTags {
		node.Tags = self.tags
	}
	if includeRelations {
		for _, r := range rows[1:] {
			node.Relations = append(node.Relations, NodeRelation{
				Type:       r.relation,
				Outbound:   r.direction == string(row.DirectionOut),
				TargetName: r.name,
				RelatesTo:  r.relatesTo,
			})
		}
	}
	return node, nil
}

// minimalRow is the narrow self-row projection get_node_minimal_query scans
// into: just enough columns to answer GetNode(id, false, false).
type minimalRow struct {
	name        string
	nodeType    string
	ingestionID string
	found       bool
}

// getNodeMinimal issues the minimal-columns self-row read (spec §4.4's
// predicate (a)) for the includeTags=false, includeRelations=false case. A
// not-found row is translated to a zero-value result inside the breaker
// closure so an absent partition never counts as a transport failure.
func (g *Gateway) getNodeMinimal(ctx context.Context, id uuid.UUID) (*Node, error) {
	iterResult, err := g.breaker.Execute(func() (interface{}, error) {
		var mr minimalRow
		var idCol uuid.UUID
		err := g.session.Query(g.queries["get_node_minimal_query"], id).
			WithContext(ctx).
			Scan(&idCol, &mr.name, &mr.nodeType, &mr.ingestionID)
		if err == gocql.ErrNotFound {
			return minimalRow{}, nil
		}
		mr.found = err == nil
		return mr, err
	})
	if err != nil {
		return nil, fmt.Errorf("storage: get_node failed: %w", err)
	}

	mr := iterResult.(minimalRow)
	if !mr.found {
		return nil, nil
	}
	return &Node{
		UUID:        id,
		IngestionID: mr.ingestionID,
		Name:        mr.name,
		Type:        mr.nodeType,
	}, nil
}

// ScanRow is one row from a partition scan: the minimal edge-row projection
// used by the traversal engine.
type ScanRow struct {
	Direction string
	Relation  string
	RelatesTo string
	Name      string
	NodeType  string
}

// ScanEdges performs the partition read described in spec §4.4: the
// self-row (direction="", relation="") sorts first, followed by the
// filtered edge slice. relationKind may be empty to select all relations
// in the given direction.
func (g *Gateway) ScanEdges(ctx context.Context, id uuid.UUID, direction string, relationKind string) ([]ScanRow, error) {
	var query string
	var args []interface{}
	if relationKind != "" {
		query = g.queries["scan_by_direction_and_relation_query"]
		args = []interface{}{id, direction, relationKind}
	} else {
		query = g.queries["scan_by_direction_query"]
		args = []interface{}{id, direction}
	}

	result, err := g.breaker.Execute(func() (interface{}, error) {
		iter := g.session.Query(query, args...).WithContext(ctx).Iter()
		var out []ScanRow
		var sr ScanRow
		var idCol uuid.UUID
		for iter.Scan(&idCol, &sr.Direction, &sr.Relation, &sr.RelatesTo, &sr.Name, &sr.NodeType) {
			out = append(out, sr)
		}
		return out, iter.Close()
	})
	if err != nil {
		return nil, fmt.Errorf("storage: scan_edges failed: %w", err)
	}
	return result.([]ScanRow), nil
}

// partitionRow is the internal wide-projection scan target for GetNode.
type partitionRow struct {
	direction   string
	relation    string
	relatesTo   string
	name        string
	ingestionID string
	path        string
	nodeType    string
	tags        []graphdoc.Tag
}

func scanPartitionRows(iter *gocql.Iter) ([]partitionRow, error) {
	var out []partitionRow
	for {
		var idCol uuid.UUID
		var pr partitionRow
		var rawTags [][2]string
		ok := iter.Scan(&idCol, &pr.direction, &pr.relation, &pr.relatesTo, &pr.name,
			&pr.ingestionID, &pr.path, &pr.nodeType, &rawTags)
		if !ok {
			break
		}
		for _, t := range rawTags {
			pr.tags = append(pr.tags, graphdoc.Tag{Kind: t[0], Value: t[1]})
		}
		out = append(out, pr)
	}
	return out, nil
}
