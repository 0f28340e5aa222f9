// Package search is the secondary full-text indexing path described in
// spec §1: it mirrors flattened self-rows into an Elasticsearch index for
// keyword + tag search, grounded on original_source/src/elastic/elastic.rs
// and elastic/model.rs. Indexing is best-effort and never fails ingestion —
// consistent with spec §7's "ingestion is best-effort" policy. It is not
// asynchronous: the orchestrator indexes a file's self-rows inside that
// file's task, after its rows are inserted, and the task waits for it.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	elastic "gopkg.in/olivere/elastic.v5"

	"github.com/soundprediction/graphsvc/pkg/config"
	"github.com/soundprediction/graphsvc/pkg/graphdoc"
	"github.com/soundprediction/graphsvc/pkg/row"
)

// indexName is the fixed logical index this service indexes nodes into,
// matching elastic.rs's "NodeIndex".
const indexName = "nodeindex"

// Tag is the indexed shape of a graphdoc.Tag, field-renamed to match
// elastic/model.rs's IndexNode.Tag ("type" instead of "kind").
type Tag struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// IndexNode is the document body stored per node, a direct port of
// elastic/model.rs's IndexNode.
type IndexNode struct {
	UUID     string `json:"uuid"`
	Name     string `json:"name"`
	NodeType string `json:"type"`
	Tags     []Tag  `json:"tags"`
}

// Indexer mirrors self-rows into Elasticsearch. A nil *Indexer (or one
// constructed with Enabled=false) is a valid no-op so callers never need to
// branch on whether search is configured.
type Indexer struct {
	client  *elastic.Client
	enabled bool
	cfg     config.SearchConfig
}

// New connects to the Elasticsearch cluster at cfg.URL and ensures the node
// index exists, mirroring ElasticService::initialize. When cfg.Enabled is
// false it returns a disabled Indexer without attempting a connection.
func New(ctx context.Context, cfg config.SearchConfig) (*Indexer, error) {
	if !cfg.Enabled {
		return &Indexer{enabled: false, cfg: cfg}, nil
	}

	opts := []elastic.ClientOptionFunc{
		elastic.SetURL(cfg.URL),
		elastic.SetSniff(false),
	}
	if cfg.User != "" {
		opts = append(opts, elastic.SetBasicAuth(cfg.User, cfg.Password))
	}

	client, err := elastic.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("search: failed to connect to elasticsearch: %w", err)
	}

	idx := &Indexer{client: client, enabled: true, cfg: cfg}
	if err := idx.ensureIndex(ctx); err != nil {
		return nil, err
	}
	return idx, nil
}

// ensureIndex creates the node index with its mapping if it does not
// already exist, a direct port of ElasticService::create_index with
// overwrite=false (the only IndexConfig the original registers).
func (idx *Indexer) ensureIndex(ctx context.Context) error {
	exists, err := idx.client.IndexExists(indexName).Do(ctx)
	if err != nil {
		return fmt.Errorf("search: failed to check index existence: %w", err)
	}
	if exists {
		slog.Info("search: index already exists, skipping creation", "index", indexName)
		return nil
	}

	slog.Info("search: creating index", "index", indexName)
	_, err = idx.client.CreateIndex(indexName).BodyJson(idx.mapping()).Do(ctx)
	if err != nil {
		return fmt.Errorf("search: failed to create index: %w", err)
	}
	return nil
}

// mapping is a direct port of get_node_index_mapping in elastic.rs.
func (idx *Indexer) mapping() map[string]interface{} {
	return map[string]interface{}{
		"settings": map[string]interface{}{
			"index.number_of_shards":   idx.cfg.NumShards,
			"index.number_of_replicas": 0,
			"index.refresh_interval":   idx.cfg.RefreshInterval,
		},
		"mappings": map[string]interface{}{
			"_source": map[string]interface{}{
				"enabled": idx.cfg.SourceEnabled,
			},
			"dynamic": "strict",
			"properties": map[string]interface{}{
				"type": map[string]interface{}{
					"analyzer": "english",
					"type":     "text",
				},
				"name": map[string]interface{}{
					"analyzer": "english",
					"type":     "text",
					"fields": map[string]interface{}{
						"keyword": map[string]interface{}{"type": "keyword"},
					},
				},
				"uuid": map[string]interface{}{
					"type":  "text",
					"index": "false",
				},
				"tags": map[string]interface{}{
					"type": "nested",
					"properties": map[string]interface{}{
						"type": map[string]interface{}{
							"analyzer": "english",
							"type":     "text",
						},
						"value": map[string]interface{}{
							"analyzer": "english",
							"type":     "text",
							"fields": map[string]interface{}{
								"keyword": map[string]interface{}{"type": "keyword"},
							},
						},
					},
				},
			},
		},
	}
}

// IndexSelfRows extracts the self-row of every node in rows and indexes
// each one. Failures are logged and swallowed one document at a time, the
// same best-effort policy spec §7 applies to row inserts — a flaky search
// cluster must never fail an ingest request.
func (idx *Indexer) IndexSelfRows(ctx context.Context, rows []row.Row) {
	if idx == nil || !idx.enabled {
		return
	}
	for _, r := range rows {
		if !r.IsSelfRow() {
			continue
		}
		if err := idx.indexOne(ctx, r); err != nil {
			slog.Error("search: failed to index node", "id", r.ID, "error", err)
		}
	}
}

func (idx *Indexer) indexOne(ctx context.Context, r row.Row) error {
	doc := IndexNode{
		UUID:     r.ID.String(),
		Name:     r.Name,
		NodeType: r.NodeType,
		Tags:     toIndexTags(r.Tags),
	}
	_, err := idx.client.Index().
		Index(indexName).
		Type("_doc").
		Id(r.ID.String()).
		BodyJson(doc).
		Do(ctx)
	return err
}

func toIndexTags(tags []graphdoc.Tag) []Tag {
	out := make([]Tag, len(tags))
	for i, t := range tags {
		out[i] = Tag{Type: t.Kind, Value: t.Value}
	}
	return out
}

// Search performs a keyword + tag query against the node index: a match
// query over name/type plus a nested query over tags.value, combined with
// should clauses so either surface can match.
func (idx *Indexer) Search(ctx context.Context, query string) ([]IndexNode, error) {
	if idx == nil || !idx.enabled {
		return nil, nil
	}

	nameQuery := elastic.NewMatchQuery("name", query)
	typeQuery := elastic.NewMatchQuery("type", query)
	tagQuery := elastic.NewNestedQuery("tags", elastic.NewMatchQuery("tags.value", query))

	boolQuery := elastic.NewBoolQuery().Should(nameQuery, typeQuery, tagQuery)

	result, err := idx.client.Search().Index(indexName).Query(boolQuery).Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("search: query failed: %w", err)
	}

	nodes := make([]IndexNode, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		var n IndexNode
		if err := unmarshalHit(hit, &n); err != nil {
			slog.Warn("search: failed to decode hit", "id", hit.Id, "error", err)
			continue
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func unmarshalHit(hit *elastic.SearchHit, into *IndexNode) error {
	if hit.Source == nil {
		return fmt.Errorf("search: hit %s has no _source", hit.Id)
	}
	return json.Unmarshal(*hit.Source, into)
}
