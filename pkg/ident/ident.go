// Package ident derives deterministic node identifiers from an ingestion id
// and a node path. It is the sole owner of the UUIDv5 namespace used across
// the storage layer.
package ident

import "github.com/google/uuid"

// Namespace is the fixed UUIDv5 namespace all node identifiers are derived
// under. It is not a standard RFC 4122 namespace; it is specific to this
// service so that identifiers never collide with UUIDs minted elsewhere.
var Namespace = uuid.UUID{
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
}

// NodeID derives the deterministic identifier for a node at path within the
// given ingestion. Two calls with the same (ingestionID, path) always return
// the same UUID; different inputs return distinct UUIDs with overwhelming
// probability.
func NodeID(ingestionID, path string) uuid.UUID {
	return uuid.NewSHA1(Namespace, []byte(ingestionID+"/"+path))
}
