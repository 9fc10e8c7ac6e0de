// Geoscope - Visitor Geolocation Fusion and Risk Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoscope

package cache

import (
	"strings"
)

// KeywordMatcher reports whether a text contains any of a fixed set of
// keywords, case-insensitively. It is an Aho-Corasick automaton, so one
// pass over the text checks every keyword: O(n + m + z) for text length n,
// total keyword length m and z matches.
//
// A matcher is immutable after construction and safe for concurrent use.
//
//	m := NewKeywordMatcher([]string{"hosting", "cloud", "datacenter"})
//	m.MatchFirst("DigitalOcean Cloud LLC") // "cloud", true
type KeywordMatcher struct {
	root     *acNode
	keywords []string
}

type acNode struct {
	children map[rune]*acNode
	failure  *acNode
	// output holds indices of keywords ending here, including those
	// inherited through the failure link.
	output []int
}

func newACNode() *acNode {
	return &acNode{children: make(map[rune]*acNode)}
}

// NewKeywordMatcher builds a matcher. Keywords are trimmed and lowercased;
// empty ones and duplicates are dropped.
func NewKeywordMatcher(keywords []string) *KeywordMatcher {
	m := &KeywordMatcher{root: newACNode()}

	seen := make(map[string]struct{}, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		m.insert(len(m.keywords), k)
		m.keywords = append(m.keywords, k)
	}

	m.buildFailureLinks()
	return m
}

func (m *KeywordMatcher) insert(index int, keyword string) {
	node := m.root
	for _, ch := range keyword {
		next := node.children[ch]
		if next == nil {
			next = newACNode()
			node.children[ch] = next
		}
		node = next
	}
	node.output = append(node.output, index)
}

// buildFailureLinks walks the trie breadth first so that every node's
// failure target is already final when the node is processed.
func (m *KeywordMatcher) buildFailureLinks() {
	queue := make([]*acNode, 0, len(m.root.children))
	for _, child := range m.root.children {
		child.failure = m.root
		queue = append(queue, child)
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for ch, child := range current.children {
			queue = append(queue, child)

			fail := current.failure
			for fail != nil && fail.children[ch] == nil {
				fail = fail.failure
			}
			if fail == nil {
				child.failure = m.root
				continue
			}
			child.failure = fail.children[ch]
			child.output = append(child.output, child.failure.output...)
		}
	}
}

// MatchFirst returns the first keyword found in text, scanning left to right.
func (m *KeywordMatcher) MatchFirst(text string) (string, bool) {
	if len(m.keywords) == 0 || text == "" {
		return "", false
	}

	node := m.root
	for _, ch := range strings.ToLower(text) {
		for node != m.root && node.children[ch] == nil {
			node = node.failure
		}
		if next := node.children[ch]; next != nil {
			node = next
		}
		if len(node.output) > 0 {
			return m.keywords[node.output[0]], true
		}
	}
	return "", false
}

// Contains reports whether text contains any keyword.
func (m *KeywordMatcher) Contains(text string) bool {
	_, ok := m.MatchFirst(text)
	return ok
}

// Len returns the number of distinct keywords.
func (m *KeywordMatcher) Len() int {
	return len(m.keywords)
}
