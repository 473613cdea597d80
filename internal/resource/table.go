package resource

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Table column headers
const (
	NodeHeader      = "Node"
	PartitionHeader = "Partition"
	CPUsHeader      = "Available CPUs"
	MemoryHeader    = "Available Memory (GB)"
	GPUsHeader      = "Available GPUs"
	GPUTypeHeader   = "GPU Type"
)

// columnGap is the number of spaces between columns.
const columnGap = 3

// TableOptions controls optional table features.
type TableOptions struct {
	ShowPartition bool                // Prepend the partition column
	StyleHeader   func(string) string // Decorates header cells (e.g. bold); nil for plain
}

type column struct {
	header     string
	alignRight bool
	value      func(NodeRecord) string
}

func tableColumns(opts TableOptions) []column {
	cols := []column{
		{header: NodeHeader, value: func(r NodeRecord) string { return r.Node }},
	}
	if opts.ShowPartition {
		cols = append(cols, column{header: PartitionHeader, value: func(r NodeRecord) string { return r.Partition }})
	}
	return append(cols,
		column{header: CPUsHeader, alignRight: true, value: NodeRecord.FormatCPUs},
		column{header: MemoryHeader, alignRight: true, value: NodeRecord.FormatMemory},
		column{header: GPUsHeader, alignRight: true, value: NodeRecord.FormatGPUs},
		column{header: GPUTypeHeader, value: NodeRecord.FormatGPUType},
	)
}

// RenderTable writes records as an aligned text table. Nothing is written for
// an empty slice.
func RenderTable(w io.Writer, records []NodeRecord, opts TableOptions) error {
	if len(records) == 0 {
		return nil
	}

	cols := tableColumns(opts)
	cells := make([][]string, len(records))
	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = runewidth.StringWidth(c.header)
	}
	for r, rec := range records {
		cells[r] = make([]string, len(cols))
		for i, c := range cols {
			v := c.value(rec)
			cells[r][i] = v
			if vw := runewidth.StringWidth(v); vw > widths[i] {
				widths[i] = vw
			}
		}
	}

	// Header cells are padded before styling so escape codes don't skew widths.
	header := make([]string, len(cols))
	for i, c := range cols {
		h := pad(c.header, widths[i], c.alignRight, i == len(cols)-1)
		if opts.StyleHeader != nil {
			h = opts.StyleHeader(h)
		}
		header[i] = h
	}
	if err := writeRow(w, header); err != nil {
		return err
	}

	for _, row := range cells {
		line := make([]string, len(cols))
		for i, c := range cols {
			line[i] = pad(row[i], widths[i], c.alignRight, i == len(cols)-1)
		}
		if err := writeRow(w, line); err != nil {
			return err
		}
	}
	return nil
}

func pad(s string, width int, alignRight bool, last bool) string {
	if alignRight {
		return runewidth.FillLeft(s, width)
	}
	if last {
		return s
	}
	return runewidth.FillRight(s, width)
}

func writeRow(w io.Writer, cells []string) error {
	_, err := fmt.Fprintln(w, strings.Join(cells, strings.Repeat(" ", columnGap)))
	return err
}
