package mcp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/rendis/flowdoc/internal/exporter"
	"github.com/rendis/flowdoc/internal/render"
	"github.com/rendis/flowdoc/internal/store"
	"github.com/rendis/flowdoc/pkg/schema"
)

// handleRender renders a stored or inline flow in the requested format.
func (s *FlowdocServer) handleRender(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	format, err := req.RequireString("format")
	if err != nil {
		return mcp.NewToolResultError("format is required"), nil
	}

	flow, flowErr := s.resolveFlow(ctx, req)
	if flowErr != nil {
		return mcp.NewToolResultError(flowErr.Error()), nil
	}

	catalog, catErr := s.loadCatalog(ctx)
	if catErr != nil {
		return mcp.NewToolResultError(fmt.Sprintf("catalog load failed: %v", catErr)), nil
	}
	renderer := render.NewRenderer(catalog)

	// The PNG topology image is the one format outside the text pipeline.
	if format == "image" {
		png, imgErr := renderer.TopologyImage(flow)
		if imgErr != nil {
			return mcp.NewToolResultError(fmt.Sprintf("image render failed: %v", imgErr)), nil
		}
		return mcp.NewToolResultText(base64.StdEncoding.EncodeToString(png)), nil
	}

	parsed, parseErr := render.ParseFormat(format)
	if parseErr != nil {
		return mcp.NewToolResultError(parseErr.Error()), nil
	}
	out, renderErr := renderer.Render(flow, parsed)
	if renderErr != nil {
		return mcp.NewToolResultError(fmt.Sprintf("render failed: %v", renderErr)), nil
	}
	return mcp.NewToolResultText(out), nil
}

// handleDefineFlow validates and stores a flow definition.
func (s *FlowdocServer) handleDefineFlow(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	flowRaw := mcp.ParseStringMap(req, "flow", nil)
	if flowRaw == nil {
		return mcp.NewToolResultError("flow is required"), nil
	}

	flow, err := decodeFlow(flowRaw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid flow: %v", err)), nil
	}

	catalog, catErr := s.loadCatalog(ctx)
	if catErr != nil {
		return mcp.NewToolResultError(fmt.Sprintf("catalog load failed: %v", catErr)), nil
	}

	result := s.validator.ValidateFlow(flow, catalog)
	if !result.Valid() {
		return marshalResult(map[string]any{
			"stored":   false,
			"errors":   result.Errors,
			"warnings": result.Warnings,
		})
	}

	if saveErr := s.store.SaveFlow(ctx, store.NewFlowRecord(flow)); saveErr != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to store flow: %v", saveErr)), nil
	}

	return marshalResult(map[string]any{
		"stored":   true,
		"flow_id":  flow.ID,
		"warnings": result.Warnings,
	})
}

// handleCatalog gets or replaces the service catalog.
func (s *FlowdocServer) handleCatalog(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	action, err := req.RequireString("action")
	if err != nil {
		return mcp.NewToolResultError("action is required"), nil
	}

	switch action {
	case "get":
		record, getErr := s.store.GetCatalog(ctx)
		if getErr != nil {
			return mcp.NewToolResultError(fmt.Sprintf("catalog load failed: %v", getErr)), nil
		}
		return marshalResult(map[string]any{
			"revision": record.Revision,
			"catalog":  record.Definition,
		})

	case "set":
		catalogRaw := mcp.ParseStringMap(req, "catalog", nil)
		if catalogRaw == nil {
			return mcp.NewToolResultError("catalog is required for set"), nil
		}
		catalog, decErr := decodeCatalog(catalogRaw)
		if decErr != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid catalog: %v", decErr)), nil
		}

		result := s.validator.ValidateCatalog(catalog)
		if !result.Valid() {
			return marshalResult(map[string]any{
				"stored": false,
				"errors": result.Errors,
			})
		}

		record := &store.CatalogRecord{Definition: catalog}
		if saveErr := s.store.SaveCatalog(ctx, record); saveErr != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to store catalog: %v", saveErr)), nil
		}
		return marshalResult(map[string]any{
			"stored":   true,
			"revision": record.Revision,
		})

	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown action: %s", action)), nil
	}
}

// handleQuery lists flows matching the column filter and selector expression.
func (s *FlowdocServer) handleQuery(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter := mcp.ParseStringMap(req, "filter", nil)
	selectorExpr := req.GetString("selector", "")

	ff := store.FlowFilter{
		Limit: extractInt(filter, "limit", 50),
	}
	if status, ok := filter["status"].(string); ok && status != "" {
		fs := schema.FlowStatus(status)
		ff.Status = &fs
	}
	if priority, ok := filter["priority"].(string); ok && priority != "" {
		fp := schema.FlowPriority(priority)
		ff.Priority = &fp
	}
	if domainID, ok := filter["domain_id"].(string); ok {
		ff.DomainID = domainID
	}

	records, listErr := s.store.ListFlows(ctx, ff)
	if listErr != nil {
		return mcp.NewToolResultError(fmt.Sprintf("query failed: %v", listErr)), nil
	}

	catalog, catErr := s.loadCatalog(ctx)
	if catErr != nil {
		return mcp.NewToolResultError(fmt.Sprintf("catalog load failed: %v", catErr)), nil
	}

	flows := make([]*schema.Flow, 0, len(records))
	for _, r := range records {
		flows = append(flows, r.Definition)
	}
	matched, selErr := s.selector.Select(ctx, flows, catalog, selectorExpr)
	if selErr != nil {
		return mcp.NewToolResultError(fmt.Sprintf("selector failed: %v", selErr)), nil
	}

	summaries := make([]map[string]any, 0, len(matched))
	for _, f := range matched {
		summaries = append(summaries, map[string]any{
			"id":        f.ID,
			"name":      f.Name,
			"status":    f.Status,
			"priority":  f.Priority,
			"domain_id": f.DomainID,
			"steps":     len(f.Steps),
		})
	}
	return marshalResult(map[string]any{
		"flows": summaries,
		"count": len(summaries),
	})
}

// handleExport runs or schedules a batch export.
func (s *FlowdocServer) handleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if jobID := req.GetString("job_id", ""); jobID != "" {
		run, runErr := s.exporter.RunJob(ctx, jobID)
		if runErr != nil {
			return mcp.NewToolResultError(fmt.Sprintf("export job failed: %v", runErr)), nil
		}
		return marshalResult(run)
	}

	formats, fmtErr := parseFormats(req.GetString("formats", ""))
	if fmtErr != nil {
		return mcp.NewToolResultError(fmtErr.Error()), nil
	}
	outputDir := req.GetString("output_dir", "")
	if outputDir == "" {
		return mcp.NewToolResultError("output_dir is required"), nil
	}
	selectorExpr := req.GetString("selector", "")

	// A cron expression turns the request into a stored job for the scheduler.
	if cronExpr := req.GetString("cron", ""); cronExpr != "" {
		names := make([]string, len(formats))
		for i, f := range formats {
			names[i] = string(f)
		}
		job := &store.ExportJob{
			ID:             uuid.New().String(),
			Name:           req.GetString("name", "export-"+time.Now().UTC().Format("20060102-150405")),
			Selector:       selectorExpr,
			Formats:        names,
			OutputDir:      outputDir,
			CronExpression: cronExpr,
			Enabled:        true,
		}
		if createErr := s.store.CreateExportJob(ctx, job); createErr != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to create export job: %v", createErr)), nil
		}
		return marshalResult(map[string]any{
			"scheduled": true,
			"job_id":    job.ID,
			"name":      job.Name,
		})
	}

	count, expErr := s.exporter.Export(ctx, selectorExpr, formats, exporter.NewDirSink(outputDir))
	if expErr != nil {
		return mcp.NewToolResultError(fmt.Sprintf("export failed: %v", expErr)), nil
	}
	return marshalResult(map[string]any{
		"exported":   count,
		"output_dir": outputDir,
	})
}

// --- Internal helpers ---

// resolveFlow returns the stored flow for flow_id, or decodes the inline flow object.
func (s *FlowdocServer) resolveFlow(ctx context.Context, req mcp.CallToolRequest) (*schema.Flow, error) {
	if flowID := req.GetString("flow_id", ""); flowID != "" {
		record, err := s.store.GetFlow(ctx, flowID)
		if err != nil {
			return nil, fmt.Errorf("flow lookup failed: %w", err)
		}
		return record.Definition, nil
	}

	flowRaw := mcp.ParseStringMap(req, "flow", nil)
	if flowRaw == nil {
		return nil, fmt.Errorf("one of flow_id or flow is required")
	}
	flow, err := decodeFlow(flowRaw)
	if err != nil {
		return nil, fmt.Errorf("invalid flow: %w", err)
	}
	return flow, nil
}

// loadCatalog returns the latest catalog revision, or nil when none is stored.
func (s *FlowdocServer) loadCatalog(ctx context.Context) (*schema.Catalog, error) {
	record, err := s.store.GetCatalog(ctx)
	if err != nil {
		var ferr *schema.FlowdocError
		if errors.As(err, &ferr) && ferr.Code == schema.ErrCodeNotFound {
			return nil, nil
		}
		return nil, err
	}
	return record.Definition, nil
}

// decodeFlow converts a parsed JSON object into a Flow.
func decodeFlow(raw map[string]any) (*schema.Flow, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var flow schema.Flow
	if err := json.Unmarshal(data, &flow); err != nil {
		return nil, err
	}
	return &flow, nil
}

// decodeCatalog converts a parsed JSON object into a Catalog.
func decodeCatalog(raw map[string]any) (*schema.Catalog, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var catalog schema.Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, err
	}
	return &catalog, nil
}

// parseFormats splits a comma-separated format list and validates each entry.
func parseFormats(s string) ([]render.Format, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("formats is required")
	}
	var formats []render.Format
	for _, part := range strings.Split(s, ",") {
		format, err := render.ParseFormat(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		formats = append(formats, format)
	}
	return formats, nil
}

// extractInt safely extracts an integer from a filter map.
func extractInt(filter map[string]any, key string, defaultVal int) int {
	if filter == nil {
		return defaultVal
	}
	v, ok := filter[key]
	if !ok {
		return defaultVal
	}
	switch val := v.(type) {
	case float64:
		return int(val)
	case int:
		return val
	case string:
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

// marshalResult converts a value to a JSON text tool result.
func marshalResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultJSON(json.RawMessage(data))
}
