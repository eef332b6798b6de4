package server

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"

	"github.com/ironsheep/labeldb/internal/annotation"
	"github.com/ironsheep/labeldb/internal/chart"
	"github.com/ironsheep/labeldb/internal/errors"
	"github.com/ironsheep/labeldb/internal/imaging"
	"github.com/ironsheep/labeldb/internal/pipeline"
	"github.com/ironsheep/labeldb/internal/showcase"
	"github.com/ironsheep/labeldb/internal/stats"
	"github.com/ironsheep/labeldb/internal/store"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "dataset_stats", "annotation_crop").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.log.Warn("tool failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Pipeline
	case "dataset_ingest":
		return s.handleDatasetIngest(ctx)
	case "dataset_clean":
		return s.handleDatasetClean(ctx)
	case "dataset_process":
		return s.handleDatasetProcess(ctx)

	// Inspection
	case "dataset_stats":
		return s.handleDatasetStats(ctx)
	case "class_distribution":
		return s.handleClassDistribution(ctx, args)
	case "annotation_showcase":
		return s.handleAnnotationShowcase(ctx, args)
	case "annotation_crop":
		return s.handleAnnotationCrop(ctx, args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// unmarshalArgs decodes optional arguments; an absent object leaves a zero.
func unmarshalArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	return json.Unmarshal(args, v)
}

func (s *Server) newPipeline() (*pipeline.Pipeline, error) {
	if err := s.settings.RequireDatabase(); err != nil {
		return nil, err
	}
	return pipeline.New(s.fs, s.settings.Paths.DatasetRoot, s.settings.Paths.DatabasePath, s.log), nil
}

func (s *Server) openStore() (*store.Store, error) {
	if err := s.settings.RequireDatabase(); err != nil {
		return nil, err
	}
	return store.Open(s.settings.Paths.DatabasePath, s.log)
}

// === Pipeline Handlers ===

func (s *Server) handleDatasetIngest(ctx context.Context) (interface{}, error) {
	p, err := s.newPipeline()
	if err != nil {
		return nil, err
	}
	s.runMu.Lock()
	defer s.runMu.Unlock()

	res, err := p.Ingest(ctx)
	if err != nil {
		return nil, err
	}
	// label files may have been replaced together with their images
	s.cache.Clear()
	return res, nil
}

func (s *Server) handleDatasetClean(ctx context.Context) (interface{}, error) {
	p, err := s.newPipeline()
	if err != nil {
		return nil, err
	}
	s.runMu.Lock()
	defer s.runMu.Unlock()

	return p.Clean(ctx)
}

func (s *Server) handleDatasetProcess(ctx context.Context) (interface{}, error) {
	p, err := s.newPipeline()
	if err != nil {
		return nil, err
	}
	s.runMu.Lock()
	defer s.runMu.Unlock()

	res, err := p.Process(ctx)
	if res != nil && res.Ingest != nil {
		s.cache.Clear()
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// === Inspection Handlers ===

func (s *Server) handleDatasetStats(ctx context.Context) (interface{}, error) {
	st, err := s.openStore()
	if err != nil {
		return nil, err
	}
	defer st.Close()

	return stats.Summarize(ctx, st)
}

type classDistributionArgs struct {
	IncludeImage *bool `json:"include_image"`
}

type classDistributionResult struct {
	*chart.Result
	ImageBase64 string `json:"image_base64,omitempty"`
	MimeType    string `json:"mime_type,omitempty"`
}

func (s *Server) handleClassDistribution(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a classDistributionArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}

	st, err := s.openStore()
	if err != nil {
		return nil, err
	}
	defer st.Close()

	counts, err := st.ClassCounts(ctx)
	if err != nil {
		return nil, err
	}
	out := classDistributionResult{Result: chart.Summarize("", counts)}
	if a.IncludeImage != nil && !*a.IncludeImage {
		return out, nil
	}

	opts, err := s.chartOptions()
	if err != nil {
		return nil, err
	}
	img, err := chart.Render(counts, opts)
	if err != nil {
		return nil, err
	}
	encoded, err := imaging.EncodePNG(img)
	if err != nil {
		return nil, fmt.Errorf("failed to encode chart: %w", err)
	}
	out.ImageBase64 = encoded
	out.MimeType = "image/png"
	return out, nil
}

func (s *Server) chartOptions() (chart.Options, error) {
	bar, err := imaging.ParseColor(s.settings.Output.BarColor)
	if err != nil {
		return chart.Options{}, errors.New(err).
			Category(errors.CategoryConfiguration).
			Context("key", "Output.bar_color").
			Build()
	}
	return chart.Options{BarColor: bar}, nil
}

func (s *Server) showcaseOptions() (showcase.Options, error) {
	c, err := imaging.ParseColor(s.settings.Output.BoxColor)
	if err != nil {
		return showcase.Options{}, errors.New(err).
			Category(errors.CategoryConfiguration).
			Context("key", "Output.box_color").
			Build()
	}
	return showcase.Options{BoxColor: c, Thickness: s.settings.Output.BoxWidth}, nil
}

type annotationShowcaseArgs struct {
	Seed *uint64 `json:"seed"`
}

type imageResult struct {
	*showcase.Result
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

func (s *Server) handleAnnotationShowcase(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a annotationShowcaseArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	opts, err := s.showcaseOptions()
	if err != nil {
		return nil, err
	}
	if a.Seed != nil {
		opts.Rand = rand.New(rand.NewPCG(*a.Seed, *a.Seed))
	}

	sc := showcase.New(s.settings.Paths.DatasetRoot, s.cache, s.log)
	if err := sc.CheckRoot(); err != nil {
		return nil, err
	}

	st, err := s.openStore()
	if err != nil {
		return nil, err
	}
	defer st.Close()

	picked, err := showcase.Pick(ctx, st, opts.Rand)
	if err != nil {
		return nil, err
	}
	img, res, err := sc.Draw(picked, opts)
	if err != nil {
		return nil, err
	}
	encoded, err := imaging.EncodePNG(img)
	if err != nil {
		return nil, fmt.Errorf("failed to encode showcase: %w", err)
	}
	return imageResult{Result: res, ImageBase64: encoded, MimeType: "image/png"}, nil
}

type annotationCropArgs struct {
	Index   int     `json:"index"`
	Padding int     `json:"padding"`
	Scale   float64 `json:"scale"`
}

type annotationCropResult struct {
	Annotation annotation.Annotation `json:"annotation"`
	ImagePath  string                `json:"image_path"`
	*imaging.CropResult
}

func (s *Server) handleAnnotationCrop(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a annotationCropArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Index < 0 || a.Padding < 0 {
		return nil, errors.Newf("index and padding must be non-negative").
			Category(errors.CategoryValidation).
			Context("index", a.Index).
			Context("padding", a.Padding).
			Build()
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}

	st, err := s.openStore()
	if err != nil {
		return nil, err
	}
	defer st.Close()

	ann, err := st.CleanedAt(ctx, a.Index)
	if err != nil {
		return nil, err
	}

	sc := showcase.New(s.settings.Paths.DatasetRoot, s.cache, s.log)
	path, err := sc.ResolveImage(ann)
	if err != nil {
		return nil, err
	}
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	crop, err := imaging.CropBox(img, ann.PixelBox(bounds.Dx(), bounds.Dy()), a.Padding, a.Scale)
	if err != nil {
		return nil, err
	}
	return annotationCropResult{Annotation: ann, ImagePath: path, CropResult: crop}, nil
}

type imageDimensionsArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageDimensionsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}
