// Package main provides a standalone packet export tool: it dumps a
// filtered range of the packets table to CSV or JSON directly via
// pgx/v5, for operators who want data outside the read API, grounded on
// the teacher's weather-backup tool.
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type exportFormat string

const (
	formatCSV  exportFormat = "csv"
	formatJSON exportFormat = "json"
)

type options struct {
	dsn    string
	format exportFormat
	output string
	sender string
	typ    string
	from   string
	to     string
}

func main() {
	var opts options
	var formatStr string

	flag.StringVar(&opts.dsn, "dsn", "", "Postgres connection string (required)")
	flag.StringVar(&formatStr, "format", "csv", "Export format: csv or json")
	flag.StringVar(&opts.output, "output", "packets_export", "Output file base name (extension added automatically)")
	flag.StringVar(&opts.sender, "sender", "", "Optional sender callsign filter (exact match on sender_callsign or sender_base)")
	flag.StringVar(&opts.typ, "type", "", "Optional packet type filter")
	flag.StringVar(&opts.from, "from", "", "Optional ISO8601 lower bound on received_at")
	flag.StringVar(&opts.to, "to", "", "Optional ISO8601 upper bound on received_at")
	flag.Parse()

	if opts.dsn == "" {
		log.Fatal("-dsn is required")
	}

	switch exportFormat(formatStr) {
	case formatCSV, formatJSON:
		opts.format = exportFormat(formatStr)
	default:
		log.Fatalf("invalid format: %s (must be csv or json)", formatStr)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, opts.dsn)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("failed to ping database: %v", err)
	}

	query, args := buildQuery(opts)

	var count int64
	switch opts.format {
	case formatCSV:
		count, err = exportCSV(ctx, pool, query, args, opts.output+".csv")
	case formatJSON:
		count, err = exportJSON(ctx, pool, query, args, opts.output+".json")
	}
	if err != nil {
		log.Fatalf("export failed: %v", err)
	}

	log.Printf("exported %d packets", count)
}

func buildQuery(opts options) (string, []interface{}) {
	query := "SELECT * FROM packets WHERE 1=1"
	var args []interface{}

	if opts.sender != "" {
		args = append(args, opts.sender)
		query += fmt.Sprintf(" AND (sender_callsign = $%d OR sender_base = $%d)", len(args), len(args))
	}
	if opts.typ != "" {
		args = append(args, opts.typ)
		query += fmt.Sprintf(" AND type = $%d", len(args))
	}
	if opts.from != "" {
		args = append(args, opts.from)
		query += fmt.Sprintf(" AND received_at >= $%d", len(args))
	}
	if opts.to != "" {
		args = append(args, opts.to)
		query += fmt.Sprintf(" AND received_at <= $%d", len(args))
	}
	query += " ORDER BY received_at DESC, id DESC"

	return query, args
}

func exportCSV(ctx context.Context, pool *pgxpool.Pool, query string, args []interface{}, filename string) (int64, error) {
	file, err := os.Create(filename)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	fieldDescs := rows.FieldDescriptions()
	columns := make([]string, len(fieldDescs))
	for i, fd := range fieldDescs {
		columns[i] = string(fd.Name)
	}
	if err := writer.Write(columns); err != nil {
		return 0, fmt.Errorf("failed to write headers: %w", err)
	}

	var count int64
	for rows.Next() {
		values, err := pgx.RowToMap(rows)
		if err != nil {
			return count, fmt.Errorf("failed to scan row: %w", err)
		}

		record := make([]string, len(columns))
		for i, col := range columns {
			if val, ok := values[col]; ok && val != nil {
				record[i] = fmt.Sprintf("%v", val)
			}
		}
		if err := writer.Write(record); err != nil {
			return count, fmt.Errorf("failed to write record: %w", err)
		}
		count++
	}

	return count, rows.Err()
}

func exportJSON(ctx context.Context, pool *pgxpool.Pool, query string, args []interface{}, filename string) (int64, error) {
	file, err := os.Create(filename)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := file.WriteString("[\n"); err != nil {
		return 0, err
	}

	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("  ", "  ")

	var count int64
	first := true
	for rows.Next() {
		values, err := pgx.RowToMap(rows)
		if err != nil {
			return count, fmt.Errorf("failed to scan row: %w", err)
		}
		if !first {
			if _, err := file.WriteString(",\n"); err != nil {
				return count, err
			}
		}
		first = false
		if err := encoder.Encode(values); err != nil {
			return count, fmt.Errorf("failed to write record: %w", err)
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return count, err
	}

	_, err = file.WriteString("]\n")
	return count, err
}
