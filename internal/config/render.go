package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const tomlHeader = "# medic configuration (TOML)\n"

// group splits options into top-level keys and [section] tables, keeping
// first-seen section order.
type group struct {
	top      []ConfigOption
	sections map[string][]ConfigOption
	order    []string
}

func groupOptions(opts []ConfigOption) group {
	g := group{sections: make(map[string][]ConfigOption)}
	for _, o := range opts {
		section, key, ok := strings.Cut(o.Key, ".")
		if !ok {
			g.top = append(g.top, o)
			continue
		}
		if _, seen := g.sections[section]; !seen {
			g.order = append(g.order, section)
		}
		g.sections[section] = append(g.sections[section], ConfigOption{Key: key, Default: o.Default, Comment: o.Comment})
	}
	return g
}

func (g group) lines() []string {
	var out []string
	for _, o := range g.top {
		out = append(out, optionLines(o)...)
	}
	for _, section := range g.order {
		out = append(out, "["+section+"]")
		for _, o := range g.sections[section] {
			out = append(out, optionLines(o)...)
		}
	}
	return out
}

// RenderDefaultTOML renders a TOML config with defaults from GetConfigOptions.
func RenderDefaultTOML() string {
	return tomlHeader + strings.Join(groupOptions(GetConfigOptions()).lines(), "\n") + "\n"
}

// UpdateTOML adds missing defaults to an existing TOML document and
// comments out keys that are no longer recognised. Missing keys land in
// their existing table when there is one.
func UpdateTOML(existing string) (string, bool) {
	known := make(map[string]bool)
	for _, o := range GetConfigOptions() {
		known[o.Key] = true
	}

	seen := make(map[string]bool)
	// ends maps a table name to the index just past its last line; "" is
	// the top-level region before the first header.
	ends := map[string]int{}
	section := ""
	changed := false
	var out []string
	for _, line := range strings.Split(existing, "\n") {
		trim := strings.TrimSpace(line)
		switch {
		case trim == "" || strings.HasPrefix(trim, "#"):
			out = append(out, line)
			continue
		case strings.HasPrefix(trim, "[") && strings.HasSuffix(trim, "]"):
			section = strings.TrimSpace(trim[1 : len(trim)-1])
			out = append(out, line)
			ends[section] = len(out)
			continue
		}
		key, ok := parseTOMLKey(line)
		if !ok {
			out = append(out, line)
			continue
		}
		if section != "" {
			key = section + "." + key
		}
		seen[key] = true
		if !known[key] {
			indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
			out = append(out, indent+"# OUTDATED: option removed from config schema", indent+"# "+strings.TrimLeft(line, " \t"))
			changed = true
		} else {
			out = append(out, line)
		}
		ends[section] = len(out)
	}

	var missing []ConfigOption
	for _, o := range GetConfigOptions() {
		if !seen[o.Key] {
			missing = append(missing, o)
		}
	}
	if len(missing) == 0 {
		return strings.Join(out, "\n"), changed
	}

	g := groupOptions(missing)
	type insert struct {
		at    int
		lines []string
	}
	var inserts []insert
	var appended []string
	if len(g.top) > 0 {
		at, ok := ends[""]
		if !ok {
			at = 0
		}
		inserts = append(inserts, insert{at, groupLines(g.top, "")})
	}
	for _, name := range g.order {
		if at, ok := ends[name]; ok {
			inserts = append(inserts, insert{at, groupLines(g.sections[name], "")})
			continue
		}
		appended = append(appended, groupLines(g.sections[name], name)...)
	}
	sort.SliceStable(inserts, func(i, j int) bool { return inserts[i].at < inserts[j].at })
	// Apply from the bottom so earlier indexes stay valid.
	for i := len(inserts) - 1; i >= 0; i-- {
		in := inserts[i]
		out = append(out[:in.at], append(in.lines, out[in.at:]...)...)
	}
	if len(appended) > 0 {
		out = append(out, "")
		out = append(out, appended...)
	}
	return strings.Join(out, "\n"), true
}

func groupLines(opts []ConfigOption, table string) []string {
	out := []string{"# Added by config update"}
	if table != "" {
		out = []string{"# Added by config update", "[" + table + "]"}
	}
	for _, o := range opts {
		out = append(out, optionLines(o)...)
	}
	return out
}

func parseTOMLKey(line string) (string, bool) {
	key, _, ok := strings.Cut(line, "=")
	if !ok {
		return "", false
	}
	key = strings.TrimSpace(key)
	if key == "" || strings.ContainsAny(key[:1], "[\"'") {
		return "", false
	}
	return key, true
}

func optionLines(o ConfigOption) []string {
	var out []string
	if o.Comment != "" {
		out = append(out, "# "+o.Comment)
	}
	return append(out, o.Key+" = "+tomlValue(o.Default), "")
}

func tomlValue(v any) string {
	switch x := v.(type) {
	case string:
		return strconv.Quote(x)
	case []string:
		q := make([]string, len(x))
		for i, s := range x {
			q[i] = strconv.Quote(s)
		}
		return "[" + strings.Join(q, ", ") + "]"
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
