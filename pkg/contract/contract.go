// Package contract defines a model's feature contract and the
// case-insensitive matching of supplied columns against it. Matching is a
// pure function over its inputs; callers decide whether an unresolved
// contract fails the request.
package contract

import (
	"fmt"
	"strings"
)

// FeatureContract is the ordered set of column names a model requires.
// Identity is case-insensitive and whitespace-trimmed; the declared
// casing is canonical and is what error messages and matrix ordering use.
type FeatureContract struct {
	names      []string
	normalized map[string]int // normalized name -> position in names
}

// New builds a contract from the declared feature names. Names that
// collide after normalization are rejected: the contract would be
// ambiguous.
func New(names []string) (*FeatureContract, error) {
	c := &FeatureContract{
		names:      make([]string, len(names)),
		normalized: make(map[string]int, len(names)),
	}
	copy(c.names, names)
	for i, name := range names {
		key := Normalize(name)
		if key == "" {
			return nil, fmt.Errorf("contract feature %d is empty", i)
		}
		if _, dup := c.normalized[key]; dup {
			return nil, fmt.Errorf("contract features collide after normalization: %q", name)
		}
		c.normalized[key] = i
	}
	return c, nil
}

// Normalize is the single definition of column identity: trim whitespace,
// lower-case.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Names returns the contract's canonical feature order.
func (c *FeatureContract) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Len returns the number of required features.
func (c *FeatureContract) Len() int { return len(c.names) }

// Resolution maps every contract feature to the supplied column that
// satisfies it. Missing lists unmatched contract features in canonical
// order and casing; Extra lists supplied columns (original casing, first
// occurrence) that match no contract feature.
type Resolution struct {
	ByFeature map[string]string
	Missing   []string
	Extra     []string
}

// OK reports whether every contract feature was matched.
func (r Resolution) OK() bool { return len(r.Missing) == 0 }

// Resolve matches supplied column names against the contract. The first
// supplied column to match a feature wins; duplicate supplied columns are
// not themselves an error.
func (c *FeatureContract) Resolve(columns []string) Resolution {
	res := Resolution{ByFeature: make(map[string]string, len(c.names))}
	matched := make(map[string]struct{}, len(columns))
	for _, col := range columns {
		key := Normalize(col)
		idx, ok := c.normalized[key]
		if !ok {
			res.Extra = append(res.Extra, col)
			continue
		}
		canonical := c.names[idx]
		if _, taken := matched[key]; taken {
			continue // first match wins
		}
		matched[key] = struct{}{}
		res.ByFeature[canonical] = col
	}
	for _, name := range c.names {
		if _, ok := res.ByFeature[name]; !ok {
			res.Missing = append(res.Missing, name)
		}
	}
	return res
}
