package main

import (
	"io"
	"runtime"
	"sort"
	"text/template"
	"time"

	"github.com/plus3/weft/ecs"
)

type Report struct {
	// Configuration
	Duration time.Duration
	Entities int
	Systems  int

	// Results
	TotalUpdates  int64
	TotalTime     time.Duration
	FinalEntities int
	FinalActive   int
	UpdateTime    Stats
	SystemLines   []SystemLine
	MemStatsStart runtime.MemStats
	MemStatsEnd   runtime.MemStats
}

type Stats struct {
	Min     time.Duration
	Max     time.Duration
	Avg     time.Duration
	Samples []time.Duration
}

type SystemLine struct {
	Name   string
	Calls  int64
	Avg    time.Duration
	Max    time.Duration
	Errors int64
}

func (s *Stats) Finalize() {
	if len(s.Samples) == 0 {
		return
	}

	var total time.Duration
	s.Min = s.Samples[0]
	s.Max = s.Samples[0]

	for _, sample := range s.Samples {
		if sample < s.Min {
			s.Min = sample
		}
		if sample > s.Max {
			s.Max = sample
		}
		total += sample
	}
	s.Avg = total / time.Duration(len(s.Samples))
}

func (r *Report) CollectSystemStats(orch *ecs.Orchestrator) {
	stats := orch.ExecutionStats()
	for name, s := range stats {
		r.SystemLines = append(r.SystemLines, SystemLine{
			Name:   name,
			Calls:  s.CallCount,
			Avg:    s.AvgTime,
			Max:    s.MaxTime,
			Errors: s.ErrorCount,
		})
	}
	sort.Slice(r.SystemLines, func(i, j int) bool {
		return r.SystemLines[i].Name < r.SystemLines[j].Name
	})
}

func (r *Report) Generate(w io.Writer) error {
	const reportTemplate = `
# ECS Stress Test Report

## Test Configuration
- **Run Duration:** {{.Duration}}
- **Initial Entities:** {{.Entities}}
- **Systems:** {{.Systems}}

## Performance Results
- **Total Updates:** {{.TotalUpdates}}
- **Total Test Time:** {{.TotalTime}}
- **Final Entities:** {{.FinalEntities}} ({{.FinalActive}} active)
- **Update Time (Frame):**
  - **Avg:** {{.UpdateTime.Avg}}
  - **Min:** {{.UpdateTime.Min}}
  - **Max:** {{.UpdateTime.Max}}

## Per-System Stats
{{range .SystemLines}}- **{{.Name}}**: calls={{.Calls}} avg={{.Avg}} max={{.Max}} errors={{.Errors}}
{{end}}
## Memory Usage (Raw Bytes)
- Heap Alloc:     {{.MemStatsStart.HeapAlloc}} (start) -> {{.MemStatsEnd.HeapAlloc}} (end) -> delta: {{bsub .MemStatsEnd.HeapAlloc .MemStatsStart.HeapAlloc}}
- Total Alloc:    {{.MemStatsStart.TotalAlloc}} (start) -> {{.MemStatsEnd.TotalAlloc}} (end) -> delta: {{bsub .MemStatsEnd.TotalAlloc .MemStatsStart.TotalAlloc}}
- Sys Memory:     {{.MemStatsStart.Sys}} (start) -> {{.MemStatsEnd.Sys}} (end) -> delta: {{bsub .MemStatsEnd.Sys .MemStatsStart.Sys}}
- Num GC:         {{.MemStatsStart.NumGC}} (start) -> {{.MemStatsEnd.NumGC}} (end) -> delta: {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}}
`

	fm := template.FuncMap{
		"bsub": func(a, b uint64) int64 {
			return int64(a) - int64(b)
		},
		"usub": func(a, b uint32) uint32 {
			return a - b
		},
	}

	tmpl, err := template.New("report").Funcs(fm).Parse(reportTemplate)
	if err != nil {
		return err
	}

	return tmpl.Execute(w, r)
}
