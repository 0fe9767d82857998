// Package report formats benchmark results into comparison tables.
package report

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/user/blobbench/bench"
)

const tableWidth = 100

// Options selects which server labels play the candidate and baseline
// roles when computing the speedup column.
type Options struct {
	Candidate string
	Baseline  string
}

// Generate writes the grouped comparison table for the given results:
// a section per operation kind, one row per (size, concurrency)
// combination in ascending order, one ops/s + MB/s column pair per
// server label in order of first appearance, and a speedup column for
// rows where both the candidate and the baseline have results.
func Generate(w io.Writer, results []bench.Result, opts Options) error {
	if len(results) == 0 {
		return fmt.Errorf("no results to report")
	}

	servers := serverOrder(results)
	sizes := sortedSizes(results)
	clients := sortedClients(results)

	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", tableWidth))
	fmt.Fprintln(w, "BENCHMARK RESULTS")
	fmt.Fprintln(w, strings.Repeat("=", tableWidth))

	for _, op := range []bench.Op{bench.OpWrite, bench.OpRead} {
		fmt.Fprintf(w, "\n%s Operations\n", strings.ToUpper(string(op)))
		fmt.Fprintln(w, strings.Repeat("-", tableWidth))

		header := fmt.Sprintf("%-12s %-10s", "Blob Size", "Clients")
		for _, s := range servers {
			header += fmt.Sprintf(" %-18s %-15s", s+" ops/s", s+" MB/s")
		}

		if len(servers) == 2 {
			header += fmt.Sprintf(" %-10s", "Speedup")
		}

		fmt.Fprintln(w, header)
		fmt.Fprintln(w, strings.Repeat("-", tableWidth))

		for _, size := range sizes {
			for _, nc := range clients {
				if row, ok := renderRow(results, op, size, nc, servers, opts); ok {
					fmt.Fprintln(w, row)
				}
			}
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", tableWidth))

	return nil
}

// renderRow builds one table row. Rows with no results at all (a
// combination no pass produced) are suppressed; rows with a single
// server simply omit the speedup cell.
func renderRow(
	results []bench.Result,
	op bench.Op,
	size int64,
	clients int,
	servers []string,
	opts Options,
) (string, bool) {
	row := fmt.Sprintf("%-12s %-10d", FormatSize(size), clients)

	found := make(map[string]bench.Result, len(servers))

	for _, s := range servers {
		r, ok := lookup(results, op, size, clients, s)
		if !ok {
			continue
		}

		found[s] = r
		row += fmt.Sprintf(" %14.1f     %11.2f    ", r.OpsPerSec, r.MBPerSec)
	}

	if len(found) == 0 {
		return "", false
	}

	cand, haveCand := found[opts.Candidate]
	base, haveBase := found[opts.Baseline]

	if haveCand && haveBase {
		row += fmt.Sprintf(" %6.2fx", cand.OpsPerSec/base.OpsPerSec)
	}

	return row, true
}

func lookup(
	results []bench.Result,
	op bench.Op,
	size int64,
	clients int,
	serverLabel string,
) (bench.Result, bool) {
	for _, r := range results {
		if r.Operation == op && r.BlobSize == size &&
			r.Clients == clients && r.Server == serverLabel {
			return r, true
		}
	}

	return bench.Result{}, false
}

// serverOrder returns the distinct server labels in order of first
// appearance, which keeps column order stable across runs.
func serverOrder(results []bench.Result) []string {
	var order []string

	seen := make(map[string]bool)
	for _, r := range results {
		if !seen[r.Server] {
			seen[r.Server] = true
			order = append(order, r.Server)
		}
	}

	return order
}

func sortedSizes(results []bench.Result) []int64 {
	var sizes []int64

	seen := make(map[int64]bool)
	for _, r := range results {
		if !seen[r.BlobSize] {
			seen[r.BlobSize] = true
			sizes = append(sizes, r.BlobSize)
		}
	}

	slices.Sort(sizes)

	return sizes
}

func sortedClients(results []bench.Result) []int {
	var clients []int

	seen := make(map[int]bool)
	for _, r := range results {
		if !seen[r.Clients] {
			seen[r.Clients] = true
			clients = append(clients, r.Clients)
		}
	}

	slices.Sort(clients)

	return clients
}

// FormatSize renders a byte count with a magnitude-based unit suffix,
// truncating the division rather than rounding.
func FormatSize(size int64) string {
	switch {
	case size >= 1<<20:
		return fmt.Sprintf("%dMB", size/(1<<20))
	case size >= 1024:
		return fmt.Sprintf("%dKB", size/1024)
	default:
		return fmt.Sprintf("%dB", size)
	}
}
