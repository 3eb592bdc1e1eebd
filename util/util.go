package util

import (
	"encoding/json"
	"path/filepath"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
)

func ToJson(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		log.Printf("ToJson error: %v", err)
		return ""
	}
	return string(b)
}

func ToPrettyJson(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Printf("ToJson error: %v", err)
		return ""
	}
	return string(b)
}

// Keys returns the sorted keys of a map.
func Keys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// UniqueSlice removes duplicates, keeping first-seen order.
func UniqueSlice[T comparable](s []T) []T {
	seen := make(map[T]bool, len(s))
	out := make([]T, 0, len(s))
	for _, v := range s {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// Recognize "*.txt" style glob args, return parsed filenames.
// Args without glob meta chars (or without matches) pass through as is.
func ParseFilenameArgs(args ...string) []string {
	names := []string{}
	for _, arg := range args {
		if !strings.ContainsAny(arg, "*?[") {
			names = append(names, arg)
			continue
		}
		matches, err := filepath.Glob(arg)
		if err != nil || len(matches) == 0 {
			names = append(names, arg)
			continue
		}
		sort.Strings(matches)
		names = append(names, matches...)
	}
	return UniqueSlice(names)
}
