package protocol

import (
	"encoding/json"
	"fmt"
)

// Content is one element of a tools/call result payload. The variant set is
// open: servers must pass through content kinds they do not recognize, so
// unknown types decode to OpaqueContent instead of failing.
type Content interface {
	contentType() string
}

// TextContent is the plain-text variant.
type TextContent struct {
	Text string
}

func (TextContent) contentType() string { return "text" }

func (c TextContent) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}{Type: "text", Text: c.Text})
}

// ImageContent carries a base64-encoded image payload.
type ImageContent struct {
	MimeType string
	Data     string
}

func (ImageContent) contentType() string { return "image" }

func (c ImageContent) MarshalJSON() ([]byte, error) {
	return json.Marshal(binaryWire{Type: "image", MimeType: c.MimeType, Data: c.Data})
}

// AudioContent carries a base64-encoded audio payload.
type AudioContent struct {
	MimeType string
	Data     string
}

func (AudioContent) contentType() string { return "audio" }

func (c AudioContent) MarshalJSON() ([]byte, error) {
	return json.Marshal(binaryWire{Type: "audio", MimeType: c.MimeType, Data: c.Data})
}

// ResourceContent references a resource by URI, optionally inlining text.
type ResourceContent struct {
	URI  string
	Text string
}

func (ResourceContent) contentType() string { return "resource" }

func (c ResourceContent) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
		URI  string `json:"uri"`
		Text string `json:"text,omitempty"`
	}{Type: "resource", URI: c.URI, Text: c.Text})
}

// OpaqueContent is any well-formed content object whose type the server does
// not understand. It is serialized verbatim.
type OpaqueContent map[string]any

func (c OpaqueContent) contentType() string {
	t, _ := c["type"].(string)
	return t
}

type binaryWire struct {
	Type     string `json:"type"`
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

// DecodeContent parses one content item, dispatching on its type tag.
// Unrecognized tags yield OpaqueContent; a missing tag is an error.
func DecodeContent(data []byte) (Content, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decode content item: %w", err)
	}

	switch probe.Type {
	case "":
		return nil, fmt.Errorf("content item missing type field")
	case "text":
		var w struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("decode text content: %w", err)
		}
		return TextContent{Text: w.Text}, nil
	case "image", "audio":
		var w binaryWire
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("decode %s content: %w", probe.Type, err)
		}
		if probe.Type == "image" {
			return ImageContent{MimeType: w.MimeType, Data: w.Data}, nil
		}
		return AudioContent{MimeType: w.MimeType, Data: w.Data}, nil
	case "resource":
		var w struct {
			URI  string `json:"uri"`
			Text string `json:"text"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("decode resource content: %w", err)
		}
		return ResourceContent{URI: w.URI, Text: w.Text}, nil
	default:
		var raw map[string]any
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode %s content: %w", probe.Type, err)
		}
		return OpaqueContent(raw), nil
	}
}
