package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	"google.golang.org/genai"

	"github.com/jmylchreest/spraydex/internal/colour"
	"github.com/jmylchreest/spraydex/internal/image"
	"github.com/jmylchreest/spraydex/internal/swatch"
	"github.com/jmylchreest/spraydex/pkg/plugin"
)

const (
	// DefaultGenAIModel is used when no model is configured.
	DefaultGenAIModel = "gemini-2.5-flash"

	// BackendGeminiAPI and BackendVertexAI select the Gen AI backend.
	BackendGeminiAPI = "gemini-api"
	BackendVertexAI  = "vertex-ai"

	analysePrompt = "Describe the colours of this image as a swatch report. " +
		"Fill each field with a #rrggbb hex colour, or leave it empty if the image has no such colour: " +
		"dominant, vibrant, darkVibrant, lightVibrant, muted, darkMuted, lightMuted, primary, secondary, background, detail."
)

// contentGenerator is the part of *genai.Models the analyzer uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GenAIConfig configures a GenAIAnalyzer.
type GenAIConfig struct {
	Model   string
	Backend string
	// APIKey defaults to $GOOGLE_API_KEY for the Gemini API backend.
	APIKey string
}

// GenAIAnalyzer asks a Gemini model for a swatch report.
type GenAIAnalyzer struct {
	cfg       GenAIConfig
	logger    hclog.Logger
	generator contentGenerator
}

// NewGenAIAnalyzer creates a GenAIAnalyzer. The client is created lazily on
// the first Analyse call.
func NewGenAIAnalyzer(cfg GenAIConfig, logger hclog.Logger) *GenAIAnalyzer {
	if cfg.Model == "" {
		cfg.Model = DefaultGenAIModel
	}
	if cfg.Backend == "" {
		cfg.Backend = BackendGeminiAPI
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &GenAIAnalyzer{cfg: cfg, logger: logger}
}

// GetMetadata implements plugin.Analyzer.
func (a *GenAIAnalyzer) GetMetadata() plugin.PluginInfo {
	return metadata("genai", "Swatch report from a Google Gemini model")
}

// Analyse implements plugin.Analyzer. Channels the model fills with anything
// other than a hex colour are dropped.
func (a *GenAIAnalyzer) Analyse(ctx context.Context, req plugin.AnalyseRequest) (swatch.Report, error) {
	mimeType := image.MIMEType(req.ImagePath)
	if mimeType == "" {
		return swatch.Report{}, fmt.Errorf("unsupported image type: %s", req.ImagePath)
	}
	data, err := image.ReadImageFile(req.ImagePath)
	if err != nil {
		return swatch.Report{}, err
	}

	generator, err := a.clientSetup(ctx)
	if err != nil {
		return swatch.Report{}, err
	}

	model := a.cfg.Model
	if m, ok := req.PluginArgs["model"].(string); ok && m != "" {
		model = m
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(data, mimeType),
			genai.NewPartFromText(analysePrompt),
		}, genai.RoleUser),
	}
	genConfig := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   reportSchema(),
		Temperature:      genai.Ptr[float32](0),
	}

	a.logger.Debug("calling GenerateContent", "model", model, "image", req.ImagePath, "bytes", len(data))
	response, err := generator.GenerateContent(ctx, model, contents, genConfig)
	if err != nil {
		return swatch.Report{}, fmt.Errorf("content generation failed: %w", err)
	}

	return parseModelReport(response.Text(), a.logger)
}

func (a *GenAIAnalyzer) clientSetup(ctx context.Context) (contentGenerator, error) {
	if a.generator != nil {
		return a.generator, nil
	}

	clientConfig := &genai.ClientConfig{}
	if a.cfg.Backend == BackendVertexAI {
		clientConfig.Backend = genai.BackendVertexAI
	} else {
		clientConfig.Backend = genai.BackendGeminiAPI
	}

	if clientConfig.Backend == genai.BackendGeminiAPI {
		apiKey := a.cfg.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("GOOGLE_API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("GOOGLE_API_KEY environment variable is required\nGet one at: https://aistudio.google.com/api-keys")
		}
		clientConfig.APIKey = apiKey
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gen AI client: %w", err)
	}
	a.generator = client.Models
	return a.generator, nil
}

func reportSchema() *genai.Schema {
	props := make(map[string]*genai.Schema)
	for _, name := range swatch.ChannelNames() {
		props[name] = &genai.Schema{
			Type:        genai.TypeString,
			Description: "hex colour #rrggbb for the " + name + " swatch",
		}
	}
	return &genai.Schema{Type: genai.TypeObject, Properties: props}
}

// parseModelReport decodes a model answer. Unknown fields and non-hex values
// are ignored rather than rejected.
func parseModelReport(text string, logger hclog.Logger) (swatch.Report, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimSuffix(strings.TrimSpace(strings.TrimPrefix(text, "```")), "```")

	var raw map[string]string
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return swatch.Report{}, fmt.Errorf("failed to parse model response: %w", err)
	}

	clean := make(map[string]string, len(raw))
	for _, name := range swatch.ChannelNames() {
		v := strings.TrimSpace(raw[name])
		if v == "" {
			continue
		}
		if !colour.IsValidHex(v) {
			logger.Warn("dropping invalid channel from model", "channel", name, "value", v)
			continue
		}
		clean[name] = v
	}

	data, err := json.Marshal(clean)
	if err != nil {
		return swatch.Report{}, err
	}
	var report swatch.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return swatch.Report{}, err
	}
	return report, nil
}
