package server

import (
	"github.com/ironsheep/matrix-tools-mcp/internal/config"
	"github.com/ironsheep/matrix-tools-mcp/internal/heatmap"
)

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// stringProp is a JSON schema string property.
func stringProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

// numberOrString accepts 3, "3" and "".
func numberOrString(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        []string{"number", "string"},
		"description": description,
	}
}

// scaleNames lists the color scale names for the cmap enum.
func scaleNames() []string {
	scales := heatmap.Scales()
	names := make([]string, len(scales))
	for i, s := range scales {
		names[i] = s.Name
	}
	return names
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name: "matrix_from_image",
			Description: "Convert an image into a 50x50 grayscale intensity matrix and return it as a literal " +
				"like `M = [[...], ...]`. Values are 0-255. Give either a file path or base64 image data.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":          stringProp("Absolute path to the image file (PNG, JPEG, GIF, BMP, TIFF, WebP)"),
					"image_base64":  stringProp("Image bytes as base64 or a data URL, instead of path"),
					"variable_name": stringProp("Variable name in the literal. Default M"),
					"rescale": map[string]interface{}{
						"type":        "boolean",
						"description": "Stretch the sampled intensities onto 0-255. Default true",
						"default":     true,
					},
					"filter": map[string]interface{}{
						"type":        "string",
						"description": "Resampling filter. Default area",
						"enum":        []string{config.FilterArea, config.FilterBilinear, config.FilterBicubic},
					},
				},
			},
		},
		{
			Name: "matrix_from_video",
			Description: "Sample frames of a video (MP4, AVI, WebM, MOV, animated GIF, MJPEG) into 50x50 intensity " +
				"matrices named M_001, M_002, ... Every frame_skip-th frame is kept, up to max_frames.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":         stringProp("Absolute path to the video file"),
					"video_base64": stringProp("Video bytes as base64 or a data URL, instead of path"),
					"frame_skip":   numberOrString("Keep every Nth decoded frame, starting with the first. Default 1"),
					"max_frames":   numberOrString("Maximum matrices to return, 1-25. Default 10"),
				},
			},
		},
		{
			Name: "matrix_plot",
			Description: "Render a matrix literal as a heatmap PNG (base64). Values outside vmin..vmax take the " +
				"end colors of the scale.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"matrix_text": stringProp("Matrix literal, e.g. M = [[0, 128], [255, 64]]"),
					"title":       stringProp("Title drawn above the plot"),
					"vmin":        numberOrString("Value mapped to the low end of the scale. Default: matrix minimum"),
					"vmax":        numberOrString("Value mapped to the high end of the scale. Default: matrix maximum"),
					"cmap": map[string]interface{}{
						"type":        "string",
						"description": "Color scale. Unknown names render in gray",
						"enum":        scaleNames(),
						"default":     heatmap.DefaultScale,
					},
					"colorbar": map[string]interface{}{
						"type":        "boolean",
						"description": "Draw a color scale bar with the value range",
						"default":     true,
					},
					"cell_size": map[string]interface{}{
						"type":        "integer",
						"description": "Pixel size of one matrix cell. Default fits the plot into 500 pixels",
					},
				},
				"required": []string{"matrix_text"},
			},
		},
		{
			Name:        "matrix_parse",
			Description: "Parse a matrix literal and return its dimensions, values and canonical form.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"matrix_text":   stringProp("Matrix literal, e.g. M = [[1, 2], [3, 4]]"),
					"variable_name": stringProp("Variable name for the canonical literal. Default M"),
				},
				"required": []string{"matrix_text"},
			},
		},
		{
			Name:        "matrix_color_scales",
			Description: "List the color scales matrix_plot accepts.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
