package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"os"
	"strings"

	"github.com/ironsheep/matrix-tools-mcp/internal/errors"
	"github.com/ironsheep/matrix-tools-mcp/internal/heatmap"
	"github.com/ironsheep/matrix-tools-mcp/internal/imaging"
	"github.com/ironsheep/matrix-tools-mcp/internal/literal"
	"github.com/ironsheep/matrix-tools-mcp/internal/matrix"
	"github.com/ironsheep/matrix-tools-mcp/internal/video"
)

// DefaultPlotTitle is reported when a plot is rendered without a title.
const DefaultPlotTitle = "Matrix Plot"

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "matrix_from_image", "matrix_plot").
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
// Bad arguments return -32602; every other tool failure returns -32000 with
// the error code and message in the error data.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.logger.Debug("tool failed", "tool", params.Name, "err", err)
		return s.toolError(req.ID, err)
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
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "matrix_from_image":
		return s.handleMatrixFromImage(args)
	case "matrix_from_video":
		return s.handleMatrixFromVideo(args)
	case "matrix_plot":
		return s.handleMatrixPlot(args)
	case "matrix_parse":
		return s.handleMatrixParse(args)
	case "matrix_color_scales":
		return s.handleColorScales()
	default:
		return nil, errors.New(errors.CodeInvalidInput, "unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message string, data interface{}) *MCPResponse {
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

// toolErrorData is the data member of a failed tools/call.
type toolErrorData struct {
	Code    errors.Code `json:"code,omitempty"`
	Message string      `json:"message"`
}

// toolError maps a tool failure to a JSON-RPC error by its code.
func (s *Server) toolError(id interface{}, err error) *MCPResponse {
	code := errors.CodeOf(err)
	data := toolErrorData{Code: code, Message: err.Error()}
	if code == errors.CodeInvalidInput {
		return s.errorResponse(id, -32602, "Invalid params", data)
	}
	return s.errorResponse(id, -32000, "Tool execution failed", data)
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs unmarshals tool arguments into v. Missing arguments leave v
// at its zero value.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(bytes.TrimSpace(args)) == 0 {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return errors.Wrap(errors.CodeInvalidInput, err, "invalid arguments")
	}
	return nil
}

// loadMedia returns the bytes named by exactly one of path or encoded.
// encoded may be plain base64 or a data URL.
func (s *Server) loadMedia(kind, path, encoded string) ([]byte, error) {
	limit := s.cfg.UploadLimitBytes

	switch {
	case path != "" && encoded != "":
		return nil, errors.New(errors.CodeInvalidInput, "give either path or %s_base64, not both", kind)
	case path != "":
		info, err := os.Stat(path)
		if err != nil {
			return nil, errors.Wrap(errors.CodeInvalidInput, err, "cannot read %s", kind)
		}
		if limit > 0 && info.Size() > limit {
			return nil, errors.New(errors.CodeInvalidInput, "%s is %d bytes; the limit is %d", kind, info.Size(), limit)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(errors.CodeInvalidInput, err, "cannot read %s", kind)
		}
		return data, nil
	case encoded != "":
		if i := strings.Index(encoded, ";base64,"); i >= 0 && strings.HasPrefix(encoded, "data:") {
			encoded = encoded[i+len(";base64,"):]
		}
		if limit > 0 && int64(base64.StdEncoding.DecodedLen(len(encoded))) > limit+2 {
			return nil, errors.New(errors.CodeInvalidInput, "%s upload exceeds the %d byte limit", kind, limit)
		}
		data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
		if err != nil {
			return nil, errors.Wrap(errors.CodeInvalidInput, err, "%s_base64 is not valid base64", kind)
		}
		return data, nil
	default:
		return nil, errors.New(errors.CodeInvalidInput, "Please choose a %s to upload: give path or %s_base64.", kind, kind)
	}
}

// processError prefixes a media failure with "Failed to process <kind>"
// and keeps its code. Uncoded failures are DECODE_ERROR.
func processError(kind string, err error) error {
	code := errors.CodeOf(err)
	if code == "" {
		code = errors.CodeDecode
	}
	return errors.Wrap(code, err, "Failed to process %s", kind)
}

// rawText returns a JSON scalar as text, so "3" and 3 read the same.
func rawText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// === Image ===

// matrixFromImageArgs are the matrix_from_image arguments.
type matrixFromImageArgs struct {
	Path         string `json:"path"`
	ImageBase64  string `json:"image_base64"`
	VariableName string `json:"variable_name"`
	Rescale      *bool  `json:"rescale"`
	Filter       string `json:"filter"`
}

// MatrixResult is one formatted matrix.
type MatrixResult struct {
	Label    string `json:"label,omitempty"`
	Variable string `json:"variable"`
	Rows     int    `json:"rows"`
	Cols     int    `json:"cols"`
	Literal  string `json:"literal"`
}

// ImageResult is returned by matrix_from_image.
type ImageResult struct {
	MatrixResult
	Source imaging.ImageInfo `json:"source"`
}

// handleMatrixFromImage samples one still image and formats it as a literal.
func (s *Server) handleMatrixFromImage(args json.RawMessage) (interface{}, error) {
	var a matrixFromImageArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	name := a.VariableName
	if name == "" {
		name = s.cfg.Literal.DefaultVariable
	}
	if !literal.ValidIdentifier(name) {
		return nil, errors.New(errors.CodeInvalidInput, "variable name %q is not a valid identifier", name)
	}

	data, err := s.loadMedia("image", a.Path, a.ImageBase64)
	if err != nil {
		return nil, err
	}
	img, info, err := imaging.DecodeBytes(data)
	if err != nil {
		return nil, processError("image", err)
	}

	m, err := s.images.SampleImage(img, s.sampleSpec(a.Rescale, a.Filter))
	if err != nil {
		return nil, processError("image", err)
	}
	result, err := formatMatrix(m, name, "")
	if err != nil {
		return nil, err
	}
	return ImageResult{MatrixResult: result, Source: *info}, nil
}

// sampleSpec overlays per-call options on the configured sampling spec.
func (s *Server) sampleSpec(rescale *bool, filter string) imaging.SampleSpec {
	spec := s.images.Spec()
	if rescale != nil {
		spec.Rescale = *rescale
	}
	if filter != "" {
		spec.Filter = filter
	}
	return spec
}

// formatMatrix formats m as name and describes its shape.
func formatMatrix(m *matrix.Matrix, name, label string) (MatrixResult, error) {
	text, err := literal.Format(m, name)
	if err != nil {
		return MatrixResult{}, err
	}
	rows, cols := m.Dims()
	return MatrixResult{
		Label:    label,
		Variable: name,
		Rows:     rows,
		Cols:     cols,
		Literal:  text,
	}, nil
}

// === Video ===

// matrixFromVideoArgs are the matrix_from_video arguments. The policy
// fields accept numbers or numeric strings.
type matrixFromVideoArgs struct {
	Path        string          `json:"path"`
	VideoBase64 string          `json:"video_base64"`
	FrameSkip   json.RawMessage `json:"frame_skip"`
	MaxFrames   json.RawMessage `json:"max_frames"`
}

// VideoResult is returned by matrix_from_video.
type VideoResult struct {
	Policy  video.Policy   `json:"policy"`
	Count   int            `json:"frame_count"`
	Frames  []MatrixResult `json:"frames"`
	Message string         `json:"message,omitempty"`
}

// handleMatrixFromVideo samples the frames a video policy selects. A video
// with no readable frames is a result with a message, not an error.
func (s *Server) handleMatrixFromVideo(args json.RawMessage) (interface{}, error) {
	var a matrixFromVideoArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	data, err := s.loadMedia("video", a.Path, a.VideoBase64)
	if err != nil {
		return nil, err
	}

	policy := video.ParsePolicy(rawText(a.FrameSkip), rawText(a.MaxFrames), s.cfg.Video)
	matrices, err := s.videos.Sample(bytes.NewReader(data), s.images.Spec(), policy)
	if err != nil {
		return nil, processError("video", err)
	}

	result := VideoResult{
		Policy: policy,
		Count:  len(matrices),
		Frames: make([]MatrixResult, 0, len(matrices)),
	}
	if len(matrices) == 0 {
		result.Message = video.NoFramesMessage
		return result, nil
	}
	for i, m := range matrices {
		n := i + 1
		frame, err := formatMatrix(m, video.FrameVariable(s.cfg.Literal.FramePrefix, n), video.FrameLabel(n))
		if err != nil {
			return nil, err
		}
		result.Frames = append(result.Frames, frame)
	}
	return result, nil
}

// === Plot ===

// matrixPlotArgs are the matrix_plot arguments.
type matrixPlotArgs struct {
	MatrixText string          `json:"matrix_text"`
	Title      string          `json:"title"`
	VMin       json.RawMessage `json:"vmin"`
	VMax       json.RawMessage `json:"vmax"`
	Cmap       string          `json:"cmap"`
	Colorbar   *bool           `json:"colorbar"`
	CellSize   int             `json:"cell_size"`
}

// PlotResult is returned by matrix_plot.
type PlotResult struct {
	Title     string  `json:"title"`
	Scale     string  `json:"scale"`
	VMin      float64 `json:"vmin"`
	VMax      float64 `json:"vmax"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	PNGBase64 string  `json:"png_base64"`
}

// handleMatrixPlot renders a matrix literal as a base64 PNG heatmap.
func (s *Server) handleMatrixPlot(args json.RawMessage) (interface{}, error) {
	var a matrixPlotArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if strings.TrimSpace(a.MatrixText) == "" {
		return nil, errors.New(errors.CodeInvalidInput, "Paste a matrix definition to generate a plot.")
	}

	m, err := literal.Parse(a.MatrixText)
	if err != nil {
		return nil, err
	}
	vmin, err := literal.ParseOptionalFloat(rawText(a.VMin), "vmin")
	if err != nil {
		return nil, err
	}
	vmax, err := literal.ParseOptionalFloat(rawText(a.VMax), "vmax")
	if err != nil {
		return nil, err
	}

	spec := s.renderer.DefaultSpec()
	spec.Title = strings.TrimSpace(a.Title)
	spec.VMin, spec.VMax = vmin, vmax
	if a.Cmap != "" {
		spec.Scale = a.Cmap
	}
	if a.Colorbar != nil {
		spec.Colorbar = *a.Colorbar
	}
	if a.CellSize > 0 {
		spec.CellSize = a.CellSize
	}

	lo, hi, err := heatmap.ResolveBounds(m, vmin, vmax)
	if err != nil {
		return nil, err
	}
	img, err := s.renderer.RenderImage(m, spec)
	if err != nil {
		return nil, err
	}
	png, err := heatmap.EncodePNG(img)
	if err != nil {
		return nil, err
	}

	scale, _ := heatmap.LookupScale(spec.Scale)
	title := spec.Title
	if title == "" {
		title = DefaultPlotTitle
	}
	return PlotResult{
		Title:     title,
		Scale:     scale.Name,
		VMin:      lo,
		VMax:      hi,
		Width:     img.Bounds().Dx(),
		Height:    img.Bounds().Dy(),
		PNGBase64: base64.StdEncoding.EncodeToString(png),
	}, nil
}

// === Parse ===

// matrixParseArgs are the matrix_parse arguments.
type matrixParseArgs struct {
	MatrixText   string `json:"matrix_text"`
	VariableName string `json:"variable_name"`
}

// ParseResult is returned by matrix_parse.
type ParseResult struct {
	MatrixResult
	Values   [][]float64 `json:"values"`
	Min      float64     `json:"min"`
	Max      float64     `json:"max"`
	Integral bool        `json:"integral"`
}

// handleMatrixParse validates a literal and returns its values in
// canonical form.
func (s *Server) handleMatrixParse(args json.RawMessage) (interface{}, error) {
	var a matrixParseArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	m, err := literal.Parse(a.MatrixText)
	if err != nil {
		return nil, err
	}

	name := a.VariableName
	if name == "" {
		name = s.cfg.Literal.DefaultVariable
	}
	result, err := formatMatrix(m, name, "")
	if err != nil {
		return nil, err
	}
	lo, hi := m.Bounds()
	return ParseResult{
		MatrixResult: result,
		Values:       m.Rows(),
		Min:          lo,
		Max:          hi,
		Integral:     m.IsIntegral(),
	}, nil
}

// === Color scales ===

// handleColorScales lists the color scales and the configured default.
func (s *Server) handleColorScales() (interface{}, error) {
	return map[string]interface{}{
		"scales":  heatmap.Scales(),
		"default": s.cfg.Plot.DefaultScale,
	}, nil
}
