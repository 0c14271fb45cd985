package vertex

import (
	"context"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"github.com/rotisserie/eris"

	"kujang-advisor/api/internal/ai"
)

// DefaultLocation is the region the service has always been deployed against.
const DefaultLocation = "us-central1"

// Engine calls a Gemini model hosted on Vertex AI. Credentials come from
// Application Default Credentials.
type Engine struct {
	Project  string
	Location string
	Model    string
	cl       *genai.Client
}

func New(ctx context.Context, project, location, model string) (*Engine, error) {
	project = strings.TrimSpace(project)
	if project == "" {
		return nil, eris.New("vertex: project id is empty")
	}
	if strings.TrimSpace(location) == "" {
		location = DefaultLocation
	}
	cl, err := genai.NewClient(ctx, project, location)
	if err != nil {
		return nil, eris.Wrapf(err, "vertex: create client for %s/%s", project, location)
	}
	return &Engine{
		Project:  project,
		Location: location,
		Model:    strings.TrimSpace(model),
		cl:       cl,
	}, nil
}

func (e *Engine) Name() string { return "vertex" }

func (e *Engine) Close() error { return e.cl.Close() }

func (e *Engine) Generate(ctx context.Context, req ai.Request) (string, error) {
	m := e.cl.GenerativeModel(e.Model)
	if m == nil {
		return "", eris.New("vertex: model is nil")
	}
	m.SetTemperature(req.Temperature)
	if req.JSON {
		m.GenerationConfig.ResponseMIMEType = "application/json"
		m.GenerationConfig.ResponseSchema = toSchema(req.Schema)
	}

	resp, err := m.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return "", eris.Wrap(err, "vertex: generate content")
	}
	txt := firstText(resp)
	if strings.TrimSpace(txt) == "" {
		return "", eris.New("vertex: empty response")
	}
	return txt, nil
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func toSchema(s *ai.Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:        toType(s.Type),
		Description: s.Description,
		Required:    s.Required,
		Items:       toSchema(s.Items),
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for k, v := range s.Properties {
			out.Properties[k] = toSchema(v)
		}
	}
	return out
}

func toType(t ai.Type) genai.Type {
	switch t {
	case ai.TypeString:
		return genai.TypeString
	case ai.TypeNumber:
		return genai.TypeNumber
	case ai.TypeInteger:
		return genai.TypeInteger
	case ai.TypeBoolean:
		return genai.TypeBoolean
	case ai.TypeArray:
		return genai.TypeArray
	case ai.TypeObject:
		return genai.TypeObject
	default:
		return genai.TypeUnspecified
	}
}
