// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package tokenmap holds the legacy to canonical identifier table.
package tokenmap

import (
	"sort"
	"strings"

	"gitlab.com/tozd/go/errors"
)

var (
	ErrEmptyToken     = errors.Base("legacy token is empty")
	ErrDuplicateToken = errors.Base("legacy token is duplicated")
)

// 🔄 Mapping is a single legacy -> canonical pair
type Mapping struct {
	Legacy    string `json:"legacy" yaml:"legacy"`
	Canonical string `json:"canonical" yaml:"canonical"`
}

// 🗺️ Map is an immutable, ordered legacy -> canonical table
type Map struct {
	mappings []Mapping
	index    map[string]string
	sorted   []string
}

// 🏭 New builds a Map, keeping declaration order for listing and
// computing the longest-first order used for matching.
func New(mappings []Mapping) (*Map, error) {
	m := &Map{
		mappings: make([]Mapping, 0, len(mappings)),
		index:    make(map[string]string, len(mappings)),
	}

	for i, mp := range mappings {
		if mp.Legacy == "" {
			return nil, errors.Errorf("mapping %d: %w", i, ErrEmptyToken)
		}
		if _, ok := m.index[mp.Legacy]; ok {
			return nil, errors.Errorf("mapping %d (%q): %w", i, mp.Legacy, ErrDuplicateToken)
		}
		m.index[mp.Legacy] = mp.Canonical
		m.mappings = append(m.mappings, mp)
		m.sorted = append(m.sorted, mp.Legacy)
	}

	// stable keeps declaration order between tokens of equal length
	sort.SliceStable(m.sorted, func(i, j int) bool {
		return len(m.sorted[i]) > len(m.sorted[j])
	})

	return m, nil
}

// MustNew is New for compiled-in tables.
func MustNew(mappings []Mapping) *Map {
	m, err := New(mappings)
	if err != nil {
		panic(err)
	}
	return m
}

// Lookup returns the canonical identifier for a legacy token.
func (m *Map) Lookup(legacy string) (string, bool) {
	c, ok := m.index[legacy]
	return c, ok
}

// Tokens returns the legacy tokens, longest first.
func (m *Map) Tokens() []string {
	out := make([]string, len(m.sorted))
	copy(out, m.sorted)
	return out
}

// Mappings returns the pairs in declaration order.
func (m *Map) Mappings() []Mapping {
	out := make([]Mapping, len(m.mappings))
	copy(out, m.mappings)
	return out
}

// Len is the number of legacy tokens.
func (m *Map) Len() int {
	return len(m.mappings)
}

// ContainsLegacy reports whether any legacy token occurs in text.
func (m *Map) ContainsLegacy(text string) bool {
	for _, tok := range m.sorted {
		if strings.Contains(text, tok) {
			return true
		}
	}
	return false
}
