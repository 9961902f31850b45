// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

package database

import (
	"strings"

	"github.com/goccy/go-json"
)

// ParseTags coerces a stored tags value into a clean slice.
//
// Accepted shapes: a JSON array (`["辣","荤菜"]`), a JSON string holding an
// encoded array (`"[\"辣\"]"`), or a plain comma separated list (`辣, 荤菜`).
// Entries are trimmed and empty ones dropped. The result is never nil.
func ParseTags(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{}
	}

	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err == nil {
		return cleanTags(list)
	}

	var encoded string
	if err := json.Unmarshal([]byte(raw), &encoded); err == nil {
		return ParseTags(encoded)
	}

	return cleanTags(strings.Split(raw, ","))
}

// encodeTags is the storage form written by every catalog write.
func encodeTags(tags []string) string {
	data, err := json.Marshal(cleanTags(tags))
	if err != nil {
		return "[]"
	}
	return string(data)
}

func cleanTags(in []string) []string {
	out := make([]string, 0, len(in))
	for _, t := range in {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
