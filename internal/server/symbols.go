package server

import (
	"slices"
	"strings"

	"github.com/shinyvision/phpreflect/internal/source"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// onWorkspaceSymbol lists indexed classes whose short or qualified name
// contains the query, case-insensitively.
func (s *Server) onWorkspaceSymbol(_ *glsp.Context, params *protocol.WorkspaceSymbolParams) ([]protocol.SymbolInformation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.workspace == nil {
		return nil, nil
	}

	query := strings.ToLower(params.Query)
	var symbols []protocol.SymbolInformation
	for _, class := range s.workspace.Broker.Reflector().Classes() {
		if query != "" && !strings.Contains(strings.ToLower(class.Name), query) {
			continue
		}
		line := protocol.UInteger(0)
		if class.StartLine > 0 {
			line = protocol.UInteger(class.StartLine - 1)
		}
		pos := protocol.Position{Line: line}
		symbol := protocol.SymbolInformation{
			Name: class.ShortName(),
			Kind: symbolKind(class.Kind),
			Location: protocol.Location{
				URI:   documentURI(class.FileName),
				Range: protocol.Range{Start: pos, End: pos},
			},
		}
		if ns := class.Namespace(); ns != "" {
			symbol.ContainerName = &ns
		}
		symbols = append(symbols, symbol)
	}
	slices.SortFunc(symbols, func(a, b protocol.SymbolInformation) int {
		return strings.Compare(qualifiedSymbol(a), qualifiedSymbol(b))
	})
	return symbols, nil
}

func qualifiedSymbol(symbol protocol.SymbolInformation) string {
	if symbol.ContainerName == nil {
		return symbol.Name
	}
	return qualify(*symbol.ContainerName, symbol.Name)
}

func symbolKind(kind source.ClassKind) protocol.SymbolKind {
	switch kind {
	case source.KindInterface:
		return protocol.SymbolKindInterface
	case source.KindEnum:
		return protocol.SymbolKindEnum
	case source.KindTrait:
		// LSP has no trait kind
		return protocol.SymbolKindStruct
	default:
		return protocol.SymbolKindClass
	}
}
