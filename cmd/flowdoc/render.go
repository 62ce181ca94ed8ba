package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rendis/flowdoc/internal/render"
	"github.com/rendis/flowdoc/pkg/schema"
)

// runRender renders a flow definition from a JSON file without touching the
// store. Useful for previewing artifacts before defining the flow over MCP.
func runRender(args []string) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	flowPath := fs.String("flow", "", "path to a flow definition JSON file (required)")
	catalogPath := fs.String("catalog", "", "path to a catalog JSON file (optional)")
	format := fs.String("format", "document", "output format: prompt, document, sequence, topology, matrix, json, image")
	outDir := fs.String("out", "", "write the artifact into this directory instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *flowPath == "" {
		return fmt.Errorf("-flow is required")
	}

	flow, err := readFlow(*flowPath)
	if err != nil {
		return err
	}

	var catalog *schema.Catalog
	if *catalogPath != "" {
		if catalog, err = readCatalog(*catalogPath); err != nil {
			return err
		}
	}

	renderer := render.NewRenderer(catalog)

	if *format == "image" {
		if *outDir == "" {
			return fmt.Errorf("-out is required for the image format")
		}
		png, imgErr := renderer.TopologyImage(flow)
		if imgErr != nil {
			return imgErr
		}
		name := strings.TrimSuffix(render.SuggestedFilename(flow, render.FormatTopology), ".mmd") + ".png"
		return writeArtifact(*outDir, name, png)
	}

	parsed, err := render.ParseFormat(*format)
	if err != nil {
		return err
	}
	out, err := renderer.Render(flow, parsed)
	if err != nil {
		return err
	}

	if *outDir != "" {
		return writeArtifact(*outDir, render.SuggestedFilename(flow, parsed), []byte(out))
	}
	fmt.Print(out)
	if !strings.HasSuffix(out, "\n") {
		fmt.Println()
	}
	return nil
}

func readFlow(path string) (*schema.Flow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read flow file: %w", err)
	}
	var flow schema.Flow
	if err := json.Unmarshal(data, &flow); err != nil {
		return nil, fmt.Errorf("parse flow file: %w", err)
	}
	return &flow, nil
}

func readCatalog(path string) (*schema.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	var catalog schema.Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parse catalog file: %w", err)
	}
	return &catalog, nil
}

func writeArtifact(dir, name string, data []byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	fmt.Printf("written: %s (%d bytes)\n", path, len(data))
	return nil
}
