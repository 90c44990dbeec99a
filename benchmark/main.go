// Package main provides a performance benchmarking tool for the gridthreat CLI.
// It generates synthetic grids of increasing size, then measures score and count
// runs against snapshot files and against a SQLite snapshot store, treating the
// first successful run as cold and averaging the rest as warm, and writes CSV
// output for performance analysis and documentation.
//
// Prerequisites:
// - gridthreat binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory to write generated snapshots and the benchmark store to
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/huangsam/gridthreat/internal/snapshot"
	"github.com/huangsam/gridthreat/schema"
)

// BenchmarkResult holds the result of a benchmark run (file average, cold store run and average of warm store runs).
type BenchmarkResult struct {
	Grid     string
	Command  string
	FileTime string
	ColdTime string
	WarmTime string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir   string
	Timeout   time.Duration
	FileRuns  int
	StoreRuns int
	GridSides []int // Edge length in cells of each generated cube grid
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		WorkDir:   os.Args[1],
		Timeout:   2 * time.Minute,
		FileRuns:  3,
		StoreRuns: 4,
		GridSides: []int{8, 16, 32, 48},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the gridthreat binary exists and the work dir is writable.
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("gridthreat"); err != nil {
		return fmt.Errorf("gridthreat binary not found in PATH")
	}
	return os.MkdirAll(config.WorkDir, 0o755)
}

// cubeSnapshot builds a solid cube grid with a device on every fourth cell of its top layer.
func cubeSnapshot(side int) schema.Snapshot {
	last := side - 1
	half := float64(side) * 1.25
	snap := schema.Snapshot{
		Self: 1,
		Structures: []schema.StructureRecord{{
			ID:     1,
			Name:   fmt.Sprintf("cube-%d", side),
			Size:   schema.LargeGrid,
			Static: true,
			Bounds: schema.BoundsRecord{Min: [3]float64{-half, -half, -half}, Max: [3]float64{half, half, half}},
			Fill:   []schema.CellRange{{From: [3]int{0, 0, 0}, To: [3]int{last, last, last}}},
		}},
	}

	types := []string{"RadioAntenna", "Reactor", "CargoContainer", "Assembler", "Thrust", "LargeGatlingTurret"}
	id := schema.BlockID(1)
	for x := 0; x < side; x += 2 {
		for z := 0; z < side; z += 2 {
			rec := schema.BlockRecord{
				ID:        id,
				Structure: 1,
				Type:      types[int(id)%len(types)],
				Position:  [3]int{x, last, z},
			}
			switch rec.Type {
			case "Reactor":
				rec.MaxOutput = 15
			case "CargoContainer", "Assembler", "LargeGatlingTurret":
				rec.Inventory = &schema.Inventory{Current: 0.25, Max: 1}
			}
			snap.Blocks = append(snap.Blocks, rec)
			id++
		}
	}
	return snap
}

// runBenchmarks executes all benchmark tests across the generated grids.
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult
	storePath := filepath.Join(config.WorkDir, "benchmark.db")
	_ = os.Remove(storePath)

	fmt.Printf("Starting benchmark: %d grids, %v timeout, file: %d runs, store: %d runs\n",
		len(config.GridSides), config.Timeout, config.FileRuns, config.StoreRuns)

	for _, side := range config.GridSides {
		name := fmt.Sprintf("cube-%d", side)
		path := filepath.Join(config.WorkDir, name+".yaml.zst")
		if err := snapshot.WriteFile(path, cubeSnapshot(side)); err != nil {
			fmt.Printf("Skipping %s: %v\n", name, err)
			continue
		}

		importCmd := exec.Command("gridthreat", "snapshot", "import", path,
			"--snapshot-backend", "sqlite", "--snapshot-db-connect", storePath)
		if output, err := importCmd.CombinedOutput(); err != nil {
			fmt.Printf("Skipping %s: import failed: %v\nOutput: %s\n", name, err, string(output))
			continue
		}

		fmt.Printf("Benchmarking %s\n", name)
		for _, command := range []string{"score", "count"} {
			results = append(results, runBenchmarkSuite(config, name, path, storePath, command))
		}
	}

	return results
}

// runBenchmarkSuite runs both file and store benchmarks for a command.
func runBenchmarkSuite(config BenchmarkConfig, name, path, storePath, command string) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", command, name)

	runPhase := func(args []string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, args, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avgTime = fmt.Sprintf("%.3fs", sum/float64(len(times)))
		}
		return cold, avgTime
	}

	// Phase 1: Snapshot file runs
	_, fileAvg := runPhase([]string{command, path}, config.FileRuns, "File")

	// Phase 2: Snapshot store runs
	coldTime, warmAvg := runPhase([]string{command, name, "--snapshot-backend", "sqlite", "--snapshot-db-connect", storePath},
		config.StoreRuns, "Store")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  File average: %s, Cold time: %s, Warm average: %s\n", fileAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Grid:     name,
		Command:  command,
		FileTime: fileAvg,
		ColdTime: coldTimeStr,
		WarmTime: warmAvg,
	}
}

// runBenchmark executes a gridthreat command multiple times and returns the cold time and warm times.
func runBenchmark(config BenchmarkConfig, args []string, numRuns int) (coldTime float64, warmTimes []float64) {
	var times []float64
	for range numRuns {
		start := time.Now()

		cmd := exec.Command("gridthreat", args...)

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output ends with the runtime trailer.
func isSuccess(output []byte) bool {
	return strings.Contains(string(output), "Runtime:") && strings.Contains(string(output), "instrs")
}

// saveResults writes benchmark results to a timestamped CSV file.
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("gridthreat_benchmark_%s.csv", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"grid", "cmd", "file_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, result := range results {
		if err := writer.Write([]string{result.Grid, result.Command, result.FileTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary.
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")

	printCommandSummary(results, "score", "Score:")
	printCommandSummary(results, "count", "Count:")
}

// printCommandSummary displays results for a specific command type.
func printCommandSummary(results []BenchmarkResult, command, title string) {
	fmt.Printf("%s\n", title)
	for _, result := range results {
		if result.Command == command {
			fmt.Printf("  %-10s: File: %s, Cold: %s, Warm: %s\n", result.Grid, result.FileTime, result.ColdTime, result.WarmTime)
		}
	}
}
