// Package ids generates identifiers for flows and nodes.
package ids

import (
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/dukex/docflow/pkg/models"
	"github.com/oklog/ulid"
)

// Generator produces identifiers that are unique within a session.
type Generator interface {
	NewID() string
}

// ULID generates lexically sortable identifiers made of a millisecond timestamp
// followed by a monotonic random suffix.
type ULID struct {
	mu      sync.Mutex
	entropy io.Reader
	now     func() time.Time
}

// New returns a ULID generator seeded from crypto/rand.
func New() *ULID {
	return &ULID{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
}

// NewID returns a fresh identifier.
func (g *ULID) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	return ulid.MustNew(ulid.Timestamp(g.now()), g.entropy).String()
}

var defaultGenerator = New()

// Generate returns a fresh identifier from the package generator.
func Generate() string {
	return defaultGenerator.NewID()
}

// AssignNodeIDs returns copies of nodes carrying fresh ids, in the same order.
func AssignNodeIDs(gen Generator, nodes []models.Node) []models.Node {
	assigned := make([]models.Node, len(nodes))
	for i, node := range nodes {
		node.ID = gen.NewID()
		assigned[i] = node
	}

	return assigned
}
