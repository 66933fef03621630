package openapi

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/wippyai/wasm-gateway/component"
	"github.com/wippyai/wasm-gateway/schema"
)

// Defaults used when Config leaves the corresponding field empty.
const (
	DefaultTitle       = "WASM Component API"
	DefaultDescription = "OpenAPI definition of a WASM component."
	DefaultVersion     = "1.0"
)

// Config carries the document metadata.
type Config struct {
	Title       string
	Description string
	Version     string

	// Servers lists the base URLs the API is reachable at. Serve mode
	// fills in its listen address; document generation without a server
	// leaves it empty and the entry is omitted.
	Servers []string
}

// Route is one registered endpoint: its HTTP path and the function it
// invokes.
type Route struct {
	Fn   *component.Function
	Path string
}

// Document is an OpenAPI 3.0.3 description of the exposed endpoints.
type Document struct {
	OpenAPI string   `json:"openapi"`
	Info    Info     `json:"info"`
	Servers []Server `json:"servers,omitempty"`
	Paths   Paths    `json:"paths"`
}

type Server struct {
	URL string `json:"url"`
}

type Info struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Version     string `json:"version"`
}

// Paths preserves registration order when marshaled, unlike a map.
type Paths []PathEntry

type PathEntry struct {
	Path string
	Item PathItem
}

func (p Paths) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, e := range p {
		if i > 0 {
			b.WriteByte(',')
		}
		key, err := json.Marshal(e.Path)
		if err != nil {
			return nil, err
		}
		b.Write(key)
		b.WriteByte(':')
		item, err := json.Marshal(e.Item)
		if err != nil {
			return nil, err
		}
		b.Write(item)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

type PathItem struct {
	Post *Operation `json:"post,omitempty"`
}

type Operation struct {
	OperationID string              `json:"operationId"`
	Summary     string              `json:"summary,omitempty"`
	Description string              `json:"description,omitempty"`
	RequestBody *RequestBody        `json:"requestBody,omitempty"`
	Responses   map[string]Response `json:"responses"`
}

type RequestBody struct {
	Required bool             `json:"required"`
	Content  map[string]Media `json:"content"`
}

type Media struct {
	Schema *schema.Node `json:"schema,omitempty"`
}

type Response struct {
	Description string           `json:"description"`
	Content     map[string]Media `json:"content,omitempty"`
}

// Build derives the OpenAPI document for the given routes, in order. Each
// route becomes one POST operation whose request and response schemas are
// mapped from the function signature.
func Build(routes []Route, cfg Config) *Document {
	doc := &Document{
		OpenAPI: "3.0.3",
		Info: Info{
			Title:       cfg.Title,
			Description: cfg.Description,
			Version:     cfg.Version,
		},
		Paths: make(Paths, 0, len(routes)),
	}
	if doc.Info.Title == "" {
		doc.Info.Title = DefaultTitle
	}
	if doc.Info.Description == "" {
		doc.Info.Description = DefaultDescription
	}
	if doc.Info.Version == "" {
		doc.Info.Version = DefaultVersion
	}
	for _, u := range cfg.Servers {
		doc.Servers = append(doc.Servers, Server{URL: u})
	}

	for _, r := range routes {
		doc.Paths = append(doc.Paths, PathEntry{
			Path: r.Path,
			Item: PathItem{Post: operation(r)},
		})
	}
	return doc
}

func operation(r Route) *Operation {
	op := &Operation{
		OperationID: operationID(r.Path),
		Summary:     r.Fn.Summary(),
		Description: r.Fn.Description(),
		Responses: map[string]Response{
			"200": okResponse(r.Fn.Results),
			"400": {
				Description: "Request body does not match the parameter types",
				Content:     jsonMedia(errorSchema()),
			},
			"500": {
				Description: "Invocation failed",
				Content:     jsonMedia(errorSchema()),
			},
		},
	}

	if len(r.Fn.Params) > 0 {
		props := make(map[string]*schema.Node, len(r.Fn.Params))
		required := make([]string, 0, len(r.Fn.Params))
		for _, p := range r.Fn.Params {
			props[p.Name] = schema.Map(p.Type)
			required = append(required, p.Name)
		}
		closed := false
		op.RequestBody = &RequestBody{
			Required: true,
			Content: jsonMedia(&schema.Node{
				Type:                 "object",
				Properties:           props,
				Required:             required,
				AdditionalProperties: &closed,
			}),
		}
	}
	return op
}

func okResponse(res component.Results) Response {
	switch {
	case res.Anon != nil:
		return Response{
			Description: "Function result",
			Content:     jsonMedia(schema.Map(res.Anon)),
		}
	case len(res.Named) > 0:
		props := make(map[string]*schema.Node, len(res.Named))
		required := make([]string, 0, len(res.Named))
		for _, p := range res.Named {
			props[p.Name] = schema.Map(p.Type)
			required = append(required, p.Name)
		}
		closed := false
		return Response{
			Description: "Function results",
			Content: jsonMedia(&schema.Node{
				Type:                 "object",
				Properties:           props,
				Required:             required,
				AdditionalProperties: &closed,
			}),
		}
	default:
		return Response{
			Description: "Function returned nothing",
			Content:     jsonMedia(&schema.Node{Type: "null"}),
		}
	}
}

func errorSchema() *schema.Node {
	closed := false
	return &schema.Node{
		Type: "object",
		Properties: map[string]*schema.Node{
			"error": {
				Type: "object",
				Properties: map[string]*schema.Node{
					"kind":    {Type: "string"},
					"message": {Type: "string"},
				},
				Required:             []string{"kind", "message"},
				AdditionalProperties: &closed,
			},
		},
		Required: []string{"error"},
	}
}

func jsonMedia(s *schema.Node) map[string]Media {
	return map[string]Media{"application/json": {Schema: s}}
}

// operationID turns "/root/add" into "root.add". The namespace is kept in
// the id because operation ids must be unique across the document and two
// interfaces may export the same function name.
func operationID(path string) string {
	return strings.ReplaceAll(strings.Trim(path, "/"), "/", ".")
}
