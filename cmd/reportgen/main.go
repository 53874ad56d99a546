// Command reportgen renders a ground check task into a PDF.
//
//	reportgen <input.json> <output.pdf>
//
// It exits non-zero with diagnostics on stderr when rendering fails.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spge/groundcheck/internal/groundcheck"
	"github.com/spge/groundcheck/internal/logger"
	"github.com/spge/groundcheck/internal/pdfreport"
	"go.uber.org/zap"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintln(os.Stderr, "usage: reportgen <input.json> <output.pdf>")
		os.Exit(2)
	}

	log, err := logger.NewCLI(os.Getenv("APP_ENV"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(os.Args[1], os.Args[2]); err != nil {
		log.Error("report generation failed",
			zap.String("input", os.Args[1]),
			zap.String("output", os.Args[2]),
			zap.Error(err))
		os.Exit(1)
	}
	log.Info("report generated", zap.String("output", os.Args[2]))
}

func run(inputPath, outputPath string) error {
	raw, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	var task groundcheck.Task
	if err := json.Unmarshal(raw, &task); err != nil {
		return fmt.Errorf("failed to parse task: %w", err)
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	if err := pdfreport.Generate(&task, out, time.Now()); err != nil {
		out.Close()
		os.Remove(outputPath)
		return err
	}
	return out.Close()
}
