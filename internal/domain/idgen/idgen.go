// Package idgen provides the unique id sources used for assessment records
// and editing sessions.
package idgen

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nuid"
	hashids "github.com/speps/go-hashids"
)

// Strategy names accepted by New.
const (
	StrategyUUID   = "uuid"
	StrategyNUID   = "nuid"
	StrategyHashID = "hashid"
)

const (
	defaultHashIDSalt      = "assessor record ids"
	defaultHashIDMinLength = 8
)

// Generator returns a fresh id on every call. Implementations never repeat
// an id within a process.
type Generator interface {
	NewID() string
}

// Func adapts a plain function to Generator.
type Func func() string

// NewID calls f.
func (f Func) NewID() string { return f() }

// UUID generates random (version 4) UUIDs.
type UUID struct{}

// NewID returns a new UUID string.
func (UUID) NewID() string { return uuid.NewString() }

// NUID generates NATS-style unique ids: short, URL-safe and fast.
type NUID struct {
	mu sync.Mutex
	n  *nuid.NUID
}

// NewNUID creates a NUID generator with its own random prefix.
func NewNUID() *NUID {
	return &NUID{n: nuid.New()}
}

// NewID returns the next NUID. A zero NUID falls back to the package-level
// locked sequence.
func (g *NUID) NewID() string {
	if g.n == nil {
		return nuid.Next()
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.n.Next()
}

// HashID encodes a process epoch and a monotonic counter as a short hashid.
type HashID struct {
	h       *hashids.HashID
	epoch   int64
	counter atomic.Int64
}

// NewHashID creates a hashid generator. An empty salt falls back to a fixed default.
func NewHashID(salt string) (*HashID, error) {
	hd := hashids.NewData()
	hd.Salt = salt
	if hd.Salt == "" {
		hd.Salt = defaultHashIDSalt
	}
	hd.MinLength = defaultHashIDMinLength
	h, err := hashids.NewWithData(hd)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHashID, err)
	}
	return &HashID{h: h, epoch: time.Now().Unix()}, nil
}

// NewID returns the next hashid. Encoding two non-negative integers cannot
// fail, so an error here means the generator itself is broken.
func (g *HashID) NewID() string {
	n := g.counter.Add(1)
	id, err := g.h.EncodeInt64([]int64{g.epoch, n})
	if err != nil {
		panic(fmt.Errorf("%w: %v", ErrHashID, err))
	}
	return id
}

// New builds the generator named by strategy. Strategy names are case-insensitive.
func New(strategy, salt string) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(strategy)) {
	case "", StrategyUUID:
		return UUID{}, nil
	case StrategyNUID:
		return NewNUID(), nil
	case StrategyHashID:
		g, err := NewHashID(salt)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}
}
