package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/martin-neuhaeusser/smartace/internal/config"
	"github.com/martin-neuhaeusser/smartace/internal/config/scenario"
	"github.com/martin-neuhaeusser/smartace/internal/diag"
	"github.com/martin-neuhaeusser/smartace/internal/fixtures"
	"github.com/martin-neuhaeusser/smartace/internal/pipeline"
)

func main() {
	fixtureName := flag.String("fixture", "wallet", "name of the registered source-AST fixture to translate")
	scenarioPath := flag.String("scenario", "", "path to a YAML or inline scenario file (omit for full-source mode)")
	outPath := flag.String("o", "", "output path (default: stdout)")
	flag.Parse()

	contracts, ok := fixtures.Registry[*fixtureName]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown fixture %q\n", *fixtureName)
		os.Exit(1)
	}

	s, err := loadScenario(*scenarioPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read scenario: %v\n", err)
		os.Exit(1)
	}

	cfg, err := s.ToEmitConfig()
	if err != nil {
		reportFatal(err)
	}

	start := time.Now()
	out, err := pipeline.Run(contracts, s.Model, cfg)
	if err != nil {
		reportFatal(err)
	}
	elapsed := formatDuration(time.Since(start))

	if *outPath == "" {
		fmt.Print(out)
	} else if err := os.WriteFile(*outPath, []byte(out), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write output: %v\n", err)
		os.Exit(1)
	}

	color.Green("Translated %s in %s", *fixtureName, elapsed)
}

// loadScenario reads a scenario file in either the YAML or inline-DSL
// form (by extension), or returns the empty (full-source) scenario when
// no path is given.
func loadScenario(path string) (*config.Scenario, error) {
	if path == "" {
		return &config.Scenario{}, nil
	}
	if strings.HasSuffix(path, ".scenario") {
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return scenario.ParseString(path, string(src))
	}
	return config.Load(path)
}

// reportFatal prints spec.md §7's single-line fatal diagnostic and exits
// non-zero, matching the teacher CLI's color-coded error reporting
// (cmd/kanso-cli/main.go's caret-style formatter, narrowed here to the
// one-error-at-a-time shape this pipeline's error type actually carries).
func reportFatal(err error) {
	if de, ok := diag.As(err); ok {
		color.Red("error: %s", de.Error())
	} else {
		color.Red("error: %v", err)
	}
	os.Exit(1)
}

func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Second:
		return fmt.Sprintf("%.2fs", d.Seconds())
	case d >= time.Millisecond:
		return fmt.Sprintf("%.1fms", float64(d.Nanoseconds())/1_000_000.0)
	case d >= time.Microsecond:
		return fmt.Sprintf("%.1fμs", float64(d.Nanoseconds())/1_000.0)
	default:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	}
}
