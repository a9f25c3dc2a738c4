package server

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func (s *Server) onHover(_ *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	t, ok := s.lookup(params.TextDocument.URI, params.Position)
	if !ok {
		return nil, nil
	}
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: t.markdown,
		},
	}, nil
}

func (s *Server) onDefinition(_ *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	t, ok := s.lookup(params.TextDocument.URI, params.Position)
	if !ok || t.file == "" {
		return nil, nil
	}

	line := protocol.UInteger(0)
	if t.line > 0 {
		line = protocol.UInteger(t.line - 1)
	}
	pos := protocol.Position{Line: line, Character: 0}
	return []protocol.Location{{
		URI:   documentURI(t.file),
		Range: protocol.Range{Start: pos, End: pos},
	}}, nil
}
