package export

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// writeJSON writes a single pretty-printed array of nested records.
// Non-ASCII characters are preserved literally.
func (e *Exporter) writeJSON(records []map[string]any) error {
	f, err := os.Create(e.path)
	if err != nil {
		return fmt.Errorf("create json file: %w", err)
	}
	defer f.Close()

	buffer := bufio.NewWriter(f)
	encoder := json.NewEncoder(buffer)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")

	if records == nil {
		records = []map[string]any{}
	}
	if err := encoder.Encode(records); err != nil {
		return fmt.Errorf("encode json records: %w", err)
	}
	if err := buffer.Flush(); err != nil {
		return fmt.Errorf("flush json writer: %w", err)
	}
	return f.Close()
}

// writeJSONL writes one compact nested record per line.
func (e *Exporter) writeJSONL(records []map[string]any) error {
	f, err := os.Create(e.path)
	if err != nil {
		return fmt.Errorf("create jsonl file: %w", err)
	}
	defer f.Close()

	buffer := bufio.NewWriter(f)
	encoder := json.NewEncoder(buffer)
	encoder.SetEscapeHTML(false)

	for _, record := range records {
		if err := encoder.Encode(record); err != nil {
			return fmt.Errorf("encode jsonl record: %w", err)
		}
	}
	if err := buffer.Flush(); err != nil {
		return fmt.Errorf("flush jsonl writer: %w", err)
	}
	return f.Close()
}

// writeCSV writes a header row of the sorted key union, then one row per
// record. Keys missing from a record render as empty cells. An empty
// record set still produces the (empty) header row.
func (e *Exporter) writeCSV(records []map[string]any) error {
	f, err := os.Create(e.path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	header := collectKeys(records)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, record := range records {
		flat := Flatten(record)
		row := make([]string, len(header))
		for i, column := range header {
			row[i] = cellString(flat[column])
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv records: %w", err)
	}
	return f.Close()
}

// writeHTML writes a minimal standalone document with a single table.
func (e *Exporter) writeHTML(records []map[string]any) error {
	header := collectKeys(records)

	lines := []string{
		"<!DOCTYPE html>",
		"<html>",
		"<head>",
		"<meta charset='utf-8'>",
		"<title>Profile Search Results</title>",
		"<style>",
		"table { border-collapse: collapse; width: 100%; }",
		"th, td { border: 1px solid #ddd; padding: 8px; font-family: sans-serif; font-size: 14px; }",
		"th { background-color: #f2f2f2; text-align: left; }",
		"</style>",
		"</head>",
		"<body>",
		"<h1>Profile Search Results</h1>",
		"<table>",
		"<thead>",
		"<tr>",
	}

	for _, column := range header {
		lines = append(lines, "<th>"+escapeHTML(column)+"</th>")
	}
	lines = append(lines, "</tr>", "</thead>", "<tbody>")

	for _, record := range records {
		flat := Flatten(record)
		lines = append(lines, "<tr>")
		for _, column := range header {
			lines = append(lines, "<td>"+escapeHTML(cellString(flat[column]))+"</td>")
		}
		lines = append(lines, "</tr>")
	}

	lines = append(lines, "</tbody>", "</table>", "</body>", "</html>")

	return writeLines(e.path, lines)
}

// writeXML writes a <profiles> root with one <profile> element per record.
// Flattened keys become element tags; keys are sanitized since dot paths
// and arbitrary source keys are not valid XML names.
func (e *Exporter) writeXML(records []map[string]any) error {
	lines := []string{"<?xml version='1.0' encoding='UTF-8'?>", "<profiles>"}

	for _, record := range records {
		flat := Flatten(record)
		keys := make([]string, 0, len(flat))
		for key := range flat {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		lines = append(lines, "  <profile>")
		for _, key := range keys {
			tag := sanitizeTag(key)
			lines = append(lines, "    <"+tag+">"+escapeXML(cellString(flat[key]))+"</"+tag+">")
		}
		lines = append(lines, "  </profile>")
	}

	lines = append(lines, "</profiles>")

	return writeLines(e.path, lines)
}

func writeLines(path string, lines []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	buffer := bufio.NewWriter(f)
	for i, line := range lines {
		if i > 0 {
			if err := buffer.WriteByte('\n'); err != nil {
				return fmt.Errorf("write line: %w", err)
			}
		}
		if _, err := buffer.WriteString(line); err != nil {
			return fmt.Errorf("write line: %w", err)
		}
	}
	if err := buffer.Flush(); err != nil {
		return fmt.Errorf("flush writer: %w", err)
	}
	return f.Close()
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

func escapeHTML(text string) string {
	return htmlEscaper.Replace(text)
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func escapeXML(text string) string {
	return xmlEscaper.Replace(text)
}

// sanitizeTag coerces an arbitrary key into a safe XML element name.
func sanitizeTag(tag string) string {
	var b strings.Builder
	b.Grow(len(tag))
	for _, r := range tag {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	safe := b.String()
	if safe == "" {
		return "field"
	}
	if safe[0] >= '0' && safe[0] <= '9' {
		return "f_" + safe
	}
	return safe
}
