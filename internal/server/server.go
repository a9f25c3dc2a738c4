package server

import (
	"fmt"
	"sync"

	"github.com/shinyvision/phpreflect/internal/broker"
	"github.com/shinyvision/phpreflect/internal/config"
	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"
)

const lsName = "phpreflect"

var version = "0.1.0"

var logger = commonlog.GetLoggerf("phpreflect.server")

// Server is the language server. The broker is not safe for concurrent use,
// so every request that reaches it holds mu.
type Server struct {
	mu         sync.Mutex
	config     *config.Config
	configPath string
	workspace  *broker.Workspace
	docs       map[protocol.DocumentUri]string
	h          protocol.Handler
}

// NewServer creates a new server. cfg may be nil. A non-empty configPath is
// the file given on the command line; it is read again against the root the
// client reports instead of looking for phpreflect.yaml there.
func NewServer(cfg *config.Config, configPath string) *Server {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	s := &Server{
		config:     cfg,
		configPath: configPath,
		docs:       make(map[protocol.DocumentUri]string),
	}
	s.h = protocol.Handler{
		Initialize:             s.initialize,
		Initialized:            s.initialized,
		Shutdown:               s.shutdown,
		SetTrace:               s.setTrace,
		TextDocumentDidOpen:    s.didOpen,
		TextDocumentDidChange:  s.didChange,
		TextDocumentDidClose:   s.didClose,
		TextDocumentHover:      s.onHover,
		TextDocumentDefinition: s.onDefinition,
		WorkspaceSymbol:        s.onWorkspaceSymbol,
	}
	return s
}

// Run runs the language server over stdio.
func (s *Server) Run() error {
	server := glspserver.NewServer(&s.h, lsName, false)
	return server.RunStdio()
}

func (s *Server) initialize(_ *glsp.Context, params *protocol.InitializeParams) (any, error) {
	caps := s.h.CreateServerCapabilities()
	openClose := true
	change := protocol.TextDocumentSyncKindIncremental
	caps.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: &openClose,
		Change:    &change,
	}
	caps.HoverProvider = true
	caps.DefinitionProvider = true
	caps.WorkspaceSymbolProvider = true

	root := ""
	if params.RootURI != nil {
		root = documentPath(*params.RootURI)
	} else if len(params.WorkspaceFolders) > 0 {
		root = documentPath(params.WorkspaceFolders[0].URI)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if root != "" {
		cfg, err := config.Load(s.configPath, root)
		if err != nil {
			logger.Warningf("could not load config for %s: %v", root, err)
		} else {
			s.config = cfg
		}
	}

	if params.InitializationOptions != nil {
		if m, ok := params.InitializationOptions.(map[string]any); ok {
			if vdp, ok := m["vendor_dir"]; ok {
				if str, ok := vdp.(string); ok && str != "" {
					s.config.VendorDir = str
				}
			}
			if paths, ok := m["paths"].([]any); ok {
				var list []string
				for _, v := range paths {
					if str, ok := v.(string); ok && str != "" {
						list = append(list, str)
					}
				}
				if len(list) > 0 {
					s.config.Paths = list
				}
			}
		}
	}

	ws, err := broker.OpenWorkspace(s.config)
	if err != nil {
		return nil, fmt.Errorf("open workspace: %w", err)
	}
	s.workspace = ws
	logger.Infof("workspace %s: %d source paths, %d psr-4 prefixes", s.config.WorkspaceRoot, len(s.config.Paths), len(s.config.Psr4))

	return protocol.InitializeResult{
		Capabilities: caps,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &version,
		},
	}, nil
}

func (s *Server) initialized(_ *glsp.Context, _ *protocol.InitializedParams) error { return nil }

func (s *Server) shutdown(_ *glsp.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.workspace == nil {
		return nil
	}
	err := s.workspace.Close()
	s.workspace = nil
	return err
}

func (s *Server) setTrace(_ *glsp.Context, p *protocol.SetTraceParams) error {
	protocol.SetTraceValue(p.Value)
	return nil
}

func (s *Server) didOpen(_ *glsp.Context, p *protocol.DidOpenTextDocumentParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setDocument(p.TextDocument.URI, p.TextDocument.Text)
	return nil
}

func (s *Server) didChange(_ *glsp.Context, p *protocol.DidChangeTextDocumentParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	text, ok := s.docs[p.TextDocument.URI]
	if !ok {
		return nil
	}
	for _, c := range p.ContentChanges {
		switch ch := c.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			text = ch.Text
		case protocol.TextDocumentContentChangeEvent:
			start := ch.Range.Start.IndexIn(text)
			end := ch.Range.End.IndexIn(text)
			if start >= 0 && end >= start && end <= len(text) {
				text = text[:start] + ch.Text + text[end:]
			}
		}
	}
	s.setDocument(p.TextDocument.URI, text)
	return nil
}

func (s *Server) didClose(_ *glsp.Context, p *protocol.DidCloseTextDocumentParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.docs, p.TextDocument.URI)
	if s.workspace != nil {
		path := documentPath(p.TextDocument.URI)
		s.workspace.Store.Close(path)
		if err := s.workspace.Broker.ReloadFile(path); err != nil {
			logger.Warningf("reload %s: %v", path, err)
		}
	}
	return nil
}

// setDocument keeps the text and re-indexes it so lookups see unsaved edits,
// including classes and members the edit declares.
func (s *Server) setDocument(uri protocol.DocumentUri, text string) {
	s.docs[uri] = text
	if s.workspace == nil {
		return
	}
	path := documentPath(uri)
	if err := s.workspace.Broker.UpdateSource(path, []byte(text)); err != nil {
		logger.Warningf("update %s: %v", path, err)
	}
}

// lookup resolves the reference under the cursor. Unresolvable references
// are logged at debug level and reported as nothing found.
func (s *Server) lookup(uri protocol.DocumentUri, pos protocol.Position) (target, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.workspace == nil {
		return target{}, false
	}
	path := documentPath(uri)
	doc, err := s.workspace.Store.Get(path)
	if err != nil {
		logger.Warningf("load %s: %v", path, err)
		return target{}, false
	}
	ref, ok := referenceAt(doc, pos)
	if !ok {
		return target{}, false
	}
	t, err := resolveReference(s.workspace.Broker, doc, ref)
	if err != nil {
		logger.Debugf("%s at %s:%d: %v", ref.name, path, pos.Line+1, err)
		return target{}, false
	}
	return t, true
}
