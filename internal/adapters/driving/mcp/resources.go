package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/rawrepo-update/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for rawrepo resources.
	uriScheme = "rawrepo://"

	queueLimit = 100
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "queue",
		Name:        "queue",
		Description: "Pending change signals, oldest first",
		MIMEType:    "application/json",
	}, s.handleQueueResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "records/{agency}/{id}",
		Name:        "record-content",
		Description: "Stored MarcXchange content of a physical record",
		MIMEType:    "application/xml",
	}, s.handleRecordResource)
}

// handleQueueResource returns the pending change signals.
func (s *Server) handleQueueResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Records == nil {
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     "[]",
			}},
		}, nil
	}

	jobs, err := s.ports.Records.Queue(ctx, queueLimit)
	if err != nil {
		return nil, fmt.Errorf("listing queue: %w", err)
	}

	type jobInfo struct {
		Record   string `json:"record"`
		Provider string `json:"provider"`
		MimeType string `json:"mime_type"`
		QueuedAt string `json:"queued_at"`
	}

	infos := make([]jobInfo, len(jobs))
	for i, job := range jobs {
		infos[i] = jobInfo{
			Record:   job.RecordID.String(),
			Provider: job.Provider,
			MimeType: string(job.MimeType),
			QueuedAt: job.QueuedAt.UTC().Format("2006-01-02T15:04:05Z"),
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling queue: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleRecordResource returns the stored content of a record.
func (s *Server) handleRecordResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Records == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	id, ok := extractRecordID(req.Params.URI)
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	view, err := s.ports.Records.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting record %s: %w", id, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/xml",
			Text:     string(view.Record.Content),
		}},
	}, nil
}

// extractRecordID extracts the key from a URI like rawrepo://records/{agency}/{id}.
func extractRecordID(uri string) (domain.RecordID, bool) {
	const prefix = uriScheme + "records/"

	rest, ok := strings.CutPrefix(uri, prefix)
	if !ok {
		return domain.RecordID{}, false
	}
	agency, id, ok := strings.Cut(rest, "/")
	if !ok || id == "" || strings.Contains(id, "/") {
		return domain.RecordID{}, false
	}
	agencyID, err := strconv.Atoi(agency)
	if err != nil || agencyID <= 0 {
		return domain.RecordID{}, false
	}
	return domain.NewRecordID(id, agencyID), true
}
