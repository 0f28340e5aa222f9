package storage

// CQL statement bodies for the graph.nodes wide-column table, grounded on
// original_source/src/db/syclla.rs. gocql prepares and caches statements
// internally keyed on the query string, so the "prepared statement cache"
// the original built by hand is represented here as a map from a lowercase
// logical name to its CQL text — the logical-name lookup the original
// exposed, backed by gocql's own prepare cache underneath.
const (
	insertNodeQuery = `INSERT INTO graph.nodes
		(id, direction, relation, relates_to, name, ingestion_id, path, node_type, tags)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	getNodeMinimalQuery = `SELECT id, name, node_type, ingestion_id FROM graph.nodes
		WHERE id = ? AND direction = '' AND relation = ''`

	getNodeWithTagsQuery = `SELECT id, direction, relation, relates_to, name, ingestion_id, path, node_type, tags
		FROM graph.nodes WHERE id = ? AND direction = '' AND relation = ''`

	getNodeWithRelationsQuery = `SELECT id, direction, relation, relates_to, name, ingestion_id, path, node_type, tags
		FROM graph.nodes WHERE id = ?`

	scanByDirectionQuery = `SELECT id, direction, relation, relates_to, name, node_type
		FROM graph.nodes WHERE id = ? AND direction IN ('', ?)`

	scanByDirectionAndRelationQuery = `SELECT id, direction, relation, relates_to, name, node_type
		FROM graph.nodes WHERE id = ? AND direction IN ('', ?) AND relation IN ('', ?)`

	healthProbeQuery = `SELECT now() FROM system.local`
)

// logicalQueries maps the lowercase logical names the gateway exposes to
// their CQL text, built once at construction.
var logicalQueries = map[string]string{
	"insert_node_query":                   insertNodeQuery,
	"get_node_minimal_query":              getNodeMinimalQuery,
	"get_node_with_tags_query":            getNodeWithTagsQuery,
	"get_node_with_relations_query":       getNodeWithRelationsQuery,
	"scan_by_direction_query":             scanByDirectionQuery,
	"scan_by_direction_and_relation_query": scanByDirectionAndRelationQuery,
}
