package storage

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gocql/gocql"
)

// schemaAgreementTimeout bounds how long LoadSchema waits for all nodes in
// the cluster to agree on the applied DDL, per spec §4.4/§5.
const schemaAgreementTimeout = 10 * time.Second

// readQueriesFromSchema splits a .cql file into individual statements on
// literal ";" bytes, trimming whitespace and dropping empty fragments. This
// is a direct port of original_source/src/db/syclla.rs::read_queries_from_schema
// — no quote- or comment-awareness, so a semicolon inside a string literal
// in the schema file would incorrectly split a statement. The original has
// the same limitation; schema files in this system are hand-written DDL
// without such literals.
func readQueriesFromSchema(schemaPath string) ([]string, error) {
	data, err := os.ReadFile(schemaPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	var queries []string
	for _, part := range strings.Split(string(data), ";") {
		q := strings.TrimSpace(part)
		if len(q) > 1 {
			queries = append(queries, q+";")
		}
	}
	return queries, nil
}

// LoadSchema applies every statement in schemaPath to the cluster and waits
// for schema agreement before returning.
func LoadSchema(session *gocql.Session, schemaPath string) error {
	queries, err := readQueriesFromSchema(schemaPath)
	if err != nil {
		return err
	}
	for _, q := range queries {
		if err := session.Query(q).Exec(); err != nil {
			return fmt.Errorf("failed to run schema statement %q: %w", q, err)
		}
	}
	return awaitSchemaAgreement(session, schemaAgreementTimeout)
}

// awaitSchemaAgreement polls the cluster metadata until every host reports
// the same schema version, or timeout elapses.
func awaitSchemaAgreement(session *gocql.Session, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		if session.Closed() {
			return fmt.Errorf("session closed while awaiting schema agreement")
		}
		ctx, cancel := context.WithDeadline(context.Background(), deadline)
		err := session.AwaitSchemaAgreement(ctx)
		cancel()
		if err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("timed out after %s waiting for schema agreement", timeout)
		}
		time.Sleep(100 * time.Millisecond)
	}
}
