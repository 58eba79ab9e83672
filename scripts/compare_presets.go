// compare_presets.go - Compare output from the cleaning presets
//
// Usage: go run scripts/compare_presets.go <file>
//
// Example:
//   go run scripts/compare_presets.go testdata/word-paste.html

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/virtual-educator/moodleclean/pkg/cleaner"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run scripts/compare_presets.go <file>")
		os.Exit(1)
	}

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
	raw := string(data)

	presets := []struct {
		name string
		cfg  *cleaner.Config
	}{
		{"minimal", cleaner.PresetMinimal()},
		{"default", cleaner.DefaultConfig()},
		{"strict", cleaner.PresetStrict()},
	}

	fmt.Printf("Input: %s (%d bytes)\n\n", os.Args[1], len(raw))

	for _, p := range presets {
		c := cleaner.New(p.cfg)
		result := c.CleanWithStats(raw)

		fmt.Println(strings.Repeat("=", 60))
		fmt.Printf("Preset: %s\n", p.name)
		fmt.Println(strings.Repeat("=", 60))
		fmt.Print(result.Stats.String())
		if result.HasWarnings() {
			for _, w := range result.Warnings {
				fmt.Println("warning:", w.String())
			}
		}
		fmt.Println()

		preview := result.Content
		if len(preview) > 500 {
			preview = preview[:500] + "..."
		}
		fmt.Println(preview)
		fmt.Println()
	}
}
