package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/rawrepo-update/internal/adapters/driven/codec/marcxchange"
	"github.com/custodia-labs/rawrepo-update/internal/core/domain"
)

// UpdateInput is the input schema for the update_record tool.
type UpdateInput struct {
	Record  string `json:"record" jsonschema:"MarcXchange XML holding one record or a collection"`
	UserID  string `json:"user_id,omitempty" jsonschema:"user id passed to the rules"`
	GroupID string `json:"group_id,omitempty" jsonschema:"group id passed to the rules"`
}

// UpdateOutput is the output schema for the update_record tool.
type UpdateOutput struct {
	Updated []string `json:"updated"`
	Count   int      `json:"count"`
}

// RecordInput addresses one physical record.
type RecordInput struct {
	ID     string `json:"id" jsonschema:"bibliographic record id (field 001a)"`
	Agency int    `json:"agency" jsonschema:"owning agency id (use 191919 for common records)"`
}

// RecordOutput is the output schema for the fetch_record tool.
type RecordOutput struct {
	ID       string   `json:"id"`
	Agency   int      `json:"agency"`
	Type     string   `json:"type"`
	MimeType string   `json:"mime_type"`
	Deleted  bool     `json:"deleted"`
	Fields   []string `json:"fields,omitempty"`
}

// RelationsOutput is the output schema for the record_relations tool.
type RelationsOutput struct {
	From     []string `json:"from"`
	Children []string `json:"children"`
	Siblings []string `json:"siblings"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "update_record",
		Description: "Run MarcXchange records through the update flow and store the result",
	}, s.handleUpdate)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "fetch_record",
		Description: "Fetch a stored physical record with its decoded fields",
	}, s.handleFetch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "record_relations",
		Description: "List the parent, children and enrichments linked to a stored record",
	}, s.handleRelations)
}

// handleUpdate handles the update_record tool invocation.
// Updating stops at the first failing record.
func (s *Server) handleUpdate(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input UpdateInput,
) (*mcp.CallToolResult, UpdateOutput, error) {
	reader := marcxchange.NewReader(strings.NewReader(input.Record))
	output := UpdateOutput{Updated: []string{}}
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, output, fmt.Errorf("reading record %d: %w", output.Count+1, err)
		}
		if err := s.ports.Update.UpdateRecord(ctx, rec, input.UserID, input.GroupID); err != nil {
			return nil, output, err
		}
		output.Updated = append(output.Updated, rec.RecordID())
		output.Count++
	}
	if output.Count == 0 {
		return nil, output, fmt.Errorf("no records in input: %w", domain.ErrInvalidInput)
	}
	return nil, output, nil
}

// handleFetch handles the fetch_record tool invocation.
func (s *Server) handleFetch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RecordInput,
) (*mcp.CallToolResult, RecordOutput, error) {
	if s.ports.Records == nil {
		return nil, RecordOutput{}, errRecordsUnavailable
	}

	view, err := s.ports.Records.Get(ctx, domain.NewRecordID(input.ID, input.Agency))
	if err != nil {
		return nil, RecordOutput{}, err
	}

	output := RecordOutput{
		ID:       view.Record.ID.BibliographicRecordID,
		Agency:   view.Record.ID.AgencyID,
		Type:     string(view.Type),
		MimeType: string(view.Record.MimeType),
		Deleted:  view.Record.Deleted,
	}
	if view.Marc != nil {
		for _, f := range view.Marc.Fields {
			output.Fields = append(output.Fields, f.String())
		}
	}
	return nil, output, nil
}

// handleRelations handles the record_relations tool invocation.
func (s *Server) handleRelations(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RecordInput,
) (*mcp.CallToolResult, RelationsOutput, error) {
	if s.ports.Records == nil {
		return nil, RelationsOutput{}, errRecordsUnavailable
	}

	view, err := s.ports.Records.Relations(ctx, domain.NewRecordID(input.ID, input.Agency))
	if err != nil {
		return nil, RelationsOutput{}, err
	}
	return nil, RelationsOutput{
		From:     keys(view.From),
		Children: keys(view.Children),
		Siblings: keys(view.Siblings),
	}, nil
}

func keys(ids []domain.RecordID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
