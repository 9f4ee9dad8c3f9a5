package main

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/pterm/pterm"

	"cyclerc/pkg/memory"
	"cyclerc/pkg/sim"
)

// heapReport is the --json form of the statistics
type heapReport struct {
	Live    int          `json:"live"`
	Stats   memory.Stats `json:"stats"`
	Objects []objectInfo `json:"objects"`
}

type objectInfo struct {
	Name  string `json:"name"`
	Alive bool   `json:"alive"`
}

func buildReport(m *sim.Machine) heapReport {
	r := heapReport{Live: m.Live(), Stats: m.Stats()}
	for _, name := range m.Objects() {
		r.Objects = append(r.Objects, objectInfo{Name: name, Alive: m.Alive(name)})
	}
	return r
}

// report prints the heap statistics as JSON or as a table
func report(w io.Writer, opts *options, m *sim.Machine) error {
	r := buildReport(m)
	if opts.jsonOut {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(r)
	}
	if opts.quiet {
		return nil
	}

	s := r.Stats
	data := pterm.TableData{
		{"counter", "value"},
		{"live", fmt.Sprint(r.Live)},
		{"allocated", fmt.Sprint(s.Allocated)},
		{"freed", fmt.Sprint(s.Freed)},
		{"destroyed", fmt.Sprint(s.Destroyed)},
		{"adoptions", fmt.Sprint(s.Adoptions)},
		{"detections", fmt.Sprint(s.Detections)},
		{"detections aborted", fmt.Sprint(s.DetectionsAborted)},
		{"cycles collected", fmt.Sprint(s.CyclesCollected)},
		{"cycle cells collected", fmt.Sprint(s.CycleCellsCollected)},
	}
	return pterm.DefaultTable.WithRightAlignment(true).
		WithHasHeader(true).WithWriter(w).WithData(data).Render()
}
