package ir

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainNode    = "renderplan/node/v1"
	DomainFixture = "renderplan/fixture/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) [sha256.Size]byte {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	var sum [sha256.Size]byte
	copy(sum[:], h.Sum(nil))
	return sum
}

// PipelineIdentity derives the identity of an exit node from its name.
// Names are NFC normalized first, so visually equal names agree.
// The result is never zero, as zero marks an empty node.
func PipelineIdentity(name string) uint64 {
	sum := hashWithDomain(DomainNode, []byte(norm.NFC.String(name)))
	id := binary.BigEndian.Uint64(sum[:8])
	if id == 0 {
		id = 1
	}
	return id
}

// FixtureHash computes the content hash of a fixture. Two fixtures hash
// equal iff their canonical forms are identical; map ordering and Unicode
// normalization do not matter.
func FixtureHash(f *FixtureSpec) (string, error) {
	canonical, err := MarshalCanonical(f.canonical())
	if err != nil {
		return "", fmt.Errorf("FixtureHash: failed to marshal: %w", err)
	}
	sum := hashWithDomain(DomainFixture, canonical)
	return hex.EncodeToString(sum[:]), nil
}

// MustFixtureHash is like FixtureHash but panics on error.
func MustFixtureHash(f *FixtureSpec) string {
	h, err := FixtureHash(f)
	if err != nil {
		panic(err)
	}
	return h
}

func (f *FixtureSpec) canonical() map[string]any {
	nodes := make([]any, len(f.Nodes))
	for i, n := range f.Nodes {
		nodes[i] = map[string]any{
			"name":          n.Name,
			"mark":          n.Mark,
			"kind":          n.Kind,
			"runtime":       n.Runtime,
			"prerequisites": append([]string{}, n.Prerequisites...),
		}
	}
	segments := make([]any, len(f.Segments))
	for i, s := range f.Segments {
		exits := make(map[string]string, len(s.Exits))
		for k, v := range s.Exits {
			exits[k] = v
		}
		segments[i] = map[string]any{
			"start": s.Start,
			"after": s.After,
			"exits": exits,
		}
	}
	return map[string]any{
		"name": f.Name,
		"timings": map[string]any{
			"frame_rate":     f.Timings.FrameRate,
			"origin":         f.Timings.Origin,
			"urgency":        f.Timings.Urgency,
			"delivery":       f.Timings.Delivery,
			"engine_latency": f.Timings.EngineLatency,
			"output_latency": f.Timings.OutputLatency,
		},
		"ports":    append([]string{}, f.Ports...),
		"nodes":    nodes,
		"segments": segments,
	}
}
