// Package id provides ULID generation for agent-side identifiers.
//
// ULIDs are used for everything the agent mints itself: HTTP request ids,
// evaluation ids that tie log lines of one navigation together, and bridge
// command ids that correlate a tab command with the extension's ack.
// Prefixes keep them readable in logs (req_*, eval_*, cmd_*).
//
// The per-installation client identity is a UUID and lives in package identity.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// RequestID identifies an inbound HTTP request
type RequestID string

// EvaluationID identifies one navigation guard evaluation
type EvaluationID string

// CommandID identifies a command sent over the extension bridge
type CommandID string

const (
	RequestPrefix    = "req"
	EvaluationPrefix = "eval"
	CommandPrefix    = "cmd"
)

// Generator generates ULIDs with optional prefixes
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the singleton generator instance
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a new ULID generator
func NewGenerator() *Generator {
	return &Generator{
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// NewGeneratorWithEntropy creates a generator with custom entropy source.
// Useful for testing with deterministic entropy.
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{
		entropy: entropy,
	}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.Generate().String())
}

// NewRequestID generates a new request ID
func NewRequestID() RequestID {
	return RequestID(Default().GenerateWithPrefix(RequestPrefix))
}

// NewEvaluationID generates a new evaluation ID
func NewEvaluationID() EvaluationID {
	return EvaluationID(Default().GenerateWithPrefix(EvaluationPrefix))
}

// NewCommandID generates a new bridge command ID
func NewCommandID() CommandID {
	return CommandID(Default().GenerateWithPrefix(CommandPrefix))
}

func (id RequestID) String() string    { return string(id) }
func (id EvaluationID) String() string { return string(id) }
func (id CommandID) String() string    { return string(id) }

// IsValid checks if a (possibly prefixed) ID carries a valid ULID
func IsValid(id string) bool {
	_, err := Parse(id)
	return err == nil
}

// Parse parses a ULID string, ignoring any prefix
func Parse(id string) (ulid.ULID, error) {
	if i := strings.LastIndexByte(id, '_'); i >= 0 {
		id = id[i+1:]
	}
	return ulid.Parse(id)
}

// Timestamp extracts the timestamp from an ID
func Timestamp(id string) (time.Time, error) {
	parsed, err := Parse(id)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()), nil
}
