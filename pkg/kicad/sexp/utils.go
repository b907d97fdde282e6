// Package sexp provides navigation and extraction helpers over parsed
// S-expression trees, shared by the schematic model builder and tools.
package sexp

import (
	"fmt"
	"strconv"

	"github.com/OpenTraceLab/csn/pkg/kicad/sexp/kicadsexp"
)

// FindNode returns the first child list whose head atom equals key.
// Example: FindNode(symbol, "at") finds (at 100 50 0).
func FindNode(s kicadsexp.Sexp, key string) (kicadsexp.Sexp, bool) {
	if s == nil || s.IsLeaf() {
		return nil, false
	}

	for _, item := range SexpToSlice(s) {
		if item == nil || item.IsLeaf() {
			continue
		}
		if sym, ok := item.Head().(kicadsexp.Symbol); ok && string(sym) == key {
			return item, true
		}
	}

	return nil, false
}

// FindAllNodes returns all child lists whose head atom equals key.
func FindAllNodes(s kicadsexp.Sexp, key string) []kicadsexp.Sexp {
	var results []kicadsexp.Sexp

	if s == nil || s.IsLeaf() {
		return results
	}

	for _, item := range SexpToSlice(s) {
		if item == nil || item.IsLeaf() {
			continue
		}
		if sym, ok := item.Head().(kicadsexp.Symbol); ok && string(sym) == key {
			results = append(results, item)
		}
	}

	return results
}

// GetValue returns the second element of a (key value) child list.
// Returns false when the key is absent or the value is not an atom.
func GetValue(s kicadsexp.Sexp, key string) (string, bool) {
	node, found := FindNode(s, key)
	if !found {
		return "", false
	}
	val, err := GetString(node, 1)
	if err != nil {
		return "", false
	}
	return val, true
}

// HasNode reports whether a child list with the given head key exists,
// or the key appears as a bare flag atom (e.g. the power marker).
func HasNode(s kicadsexp.Sexp, key string) bool {
	if s == nil || s.IsLeaf() {
		return false
	}
	for _, item := range SexpToSlice(s) {
		if item == nil {
			continue
		}
		if item.IsLeaf() {
			if sym, ok := item.(kicadsexp.Symbol); ok && string(sym) == key {
				return true
			}
			continue
		}
		if sym, ok := item.Head().(kicadsexp.Symbol); ok && string(sym) == key {
			return true
		}
	}
	return false
}

// GetString extracts the atom at the given index in a list.
// Index 0 is the key, 1 is the first value, etc.
func GetString(s kicadsexp.Sexp, index int) (string, error) {
	if s == nil || s.IsLeaf() {
		return "", fmt.Errorf("expected list, got leaf")
	}

	items := SexpToSlice(s)
	if index < 0 || index >= len(items) {
		return "", fmt.Errorf("index %d out of bounds (length %d)", index, len(items))
	}

	if sym, ok := items[index].(kicadsexp.Symbol); ok {
		return string(sym), nil
	}

	return "", fmt.Errorf("expected atom at index %d, got %T", index, items[index])
}

// GetFloat extracts a float64 value at the given index
func GetFloat(s kicadsexp.Sexp, index int) (float64, error) {
	str, err := GetString(s, index)
	if err != nil {
		return 0, err
	}

	val, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse float %q: %w", str, err)
	}

	return val, nil
}

// GetInt extracts an int value at the given index
func GetInt(s kicadsexp.Sexp, index int) (int, error) {
	str, err := GetString(s, index)
	if err != nil {
		return 0, err
	}

	val, err := strconv.Atoi(str)
	if err != nil {
		return 0, fmt.Errorf("failed to parse int %q: %w", str, err)
	}

	return val, nil
}

// GetNodeName returns the head atom of a list (the node type/name).
func GetNodeName(s kicadsexp.Sexp) (string, error) {
	if s == nil {
		return "", fmt.Errorf("nil expression")
	}
	if s.IsLeaf() {
		if sym, ok := s.(kicadsexp.Symbol); ok {
			return string(sym), nil
		}
		return "", fmt.Errorf("expected symbol leaf")
	}

	if sym, ok := s.Head().(kicadsexp.Symbol); ok {
		return string(sym), nil
	}

	return "", fmt.Errorf("expected symbol at head of list")
}

// SexpToSlice converts an s-expression list to a Go slice.
func SexpToSlice(s kicadsexp.Sexp) []kicadsexp.Sexp {
	if s == nil || s.IsLeaf() {
		return nil
	}

	list, ok := s.(*kicadsexp.List)
	if !ok {
		return nil
	}

	items := make([]kicadsexp.Sexp, 0, list.Len())
	for i := 0; i < list.Len(); i++ {
		items = append(items, list.Get(i))
	}
	return items
}
