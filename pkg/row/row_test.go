package row

import (
	"testing"

	"github.com/soundprediction/graphsvc/pkg/graphdoc"
	"github.com/soundprediction/graphsvc/pkg/ident"
)

func TestBuildEdgeIndexProducesBothDirections(t *testing.T) {
	relations := []graphdoc.Relation{
		{Kind: "linksTo", Source: []string{"a"}, Target: []string{"b"}},
	}
	idx := BuildEdgeIndex("i", relations)

	out, ok := idx["/a"]
	if !ok || len(out) != 1 || !out[0].Outbound || out[0].Kind != "linksTo" {
		t.Fatalf("expected one outbound linksTo edge at /a, got %+v", idx["/a"])
	}
	if out[0].PeerName != "b" {
		t.Fatalf("expected peer name b, got %s", out[0].PeerName)
	}
	if out[0].PeerIDText != ident.NodeID("i", "/b").String() {
		t.Fatalf("peer id text mismatch")
	}

	in, ok := idx["/b"]
	if !ok || len(in) != 1 || in[0].Outbound || in[0].Kind != "linksTo" {
		t.Fatalf("expected one inbound linksTo edge at /b, got %+v", idx["/b"])
	}
	if in[0].PeerName != "a" {
		t.Fatalf("expected peer name a, got %s", in[0].PeerName)
	}
}

func TestBuildEdgeIndexEmptyPathFallsBackToDefault(t *testing.T) {
	relations := []graphdoc.Relation{
		{Kind: "k", Source: []string{}, Target: []string{"x"}},
	}
	idx := BuildEdgeIndex("i", relations)
	out := idx[""]
	if len(out) != 1 || out[0].PeerName != "x" {
		t.Fatalf("unexpected outbound entry at empty path: %+v", out)
	}
	in := idx["/x"]
	if len(in) != 1 || in[0].PeerName != "default" {
		t.Fatalf("expected peer name 'default' for empty source path, got %+v", in)
	}
}

func TestBuildEdgeIndexPreservesInsertionOrderAndDuplicates(t *testing.T) {
	relations := []graphdoc.Relation{
		{Kind: "k1", Source: []string{"a"}, Target: []string{"b"}},
		{Kind: "k2", Source: []string{"a"}, Target: []string{"c"}},
	}
	idx := BuildEdgeIndex("i", relations)
	out := idx["/a"]
	if len(out) != 2 || out[0].Kind != "k1" || out[1].Kind != "k2" {
		t.Fatalf("expected insertion order k1,k2 at /a, got %+v", out)
	}
}
