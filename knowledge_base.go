package omnidim

import (
	"context"
	"strings"
)

// KnowledgeBaseService manages PDF documents agents can consult.
type KnowledgeBaseService struct {
	client *Client
}

// List returns every file in the account's knowledge base.
func (s *KnowledgeBaseService) List(ctx context.Context) (*Response, error) {
	return s.client.Get(ctx, "knowledge_base/list", nil)
}

// Create uploads a PDF. fileData is the base64-encoded file content.
func (s *KnowledgeBaseService) Create(ctx context.Context, fileData, filename string) (*Response, error) {
	if !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return nil, validationErrorf("filename", "only PDF files are supported, got %q", filename)
	}
	return s.client.Post(ctx, "knowledge_base/create", map[string]any{
		"file":     fileData,
		"filename": filename,
	})
}

// CanUpload asks whether a file of fileSize bytes fits the account quota.
// An empty fileType means "pdf".
func (s *KnowledgeBaseService) CanUpload(ctx context.Context, fileSize int64, fileType string) (*Response, error) {
	if fileSize < 0 {
		return nil, validationErrorf("file_size", "must not be negative, got %d", fileSize)
	}
	if fileType == "" {
		fileType = "pdf"
	}
	return s.client.Post(ctx, "knowledge_base/can_upload", map[string]any{
		"file_size": fileSize,
		"file_type": fileType,
	})
}

// Delete removes a file from the knowledge base.
func (s *KnowledgeBaseService) Delete(ctx context.Context, fileID int) (*Response, error) {
	if err := positiveID("file_id", fileID); err != nil {
		return nil, err
	}
	return s.client.Post(ctx, "knowledge_base/delete", map[string]any{"file_id": fileID})
}

// Attach makes files available to an agent. whenToUse tells the agent when
// to consult them; an empty string is sent as null.
func (s *KnowledgeBaseService) Attach(ctx context.Context, fileIDs []int, agentID int, whenToUse string) (*Response, error) {
	if err := positiveIDs("file_ids", fileIDs); err != nil {
		return nil, err
	}
	if err := positiveID("agent_id", agentID); err != nil {
		return nil, err
	}
	var when any
	if whenToUse != "" {
		when = whenToUse
	}
	return s.client.Post(ctx, "knowledge_base/attach", map[string]any{
		"file_ids":    fileIDs,
		"agent_id":    agentID,
		"when_to_use": when,
	})
}

// Detach removes files from an agent. The files stay in the knowledge base.
func (s *KnowledgeBaseService) Detach(ctx context.Context, fileIDs []int, agentID int) (*Response, error) {
	if err := positiveIDs("file_ids", fileIDs); err != nil {
		return nil, err
	}
	if err := positiveID("agent_id", agentID); err != nil {
		return nil, err
	}
	return s.client.Post(ctx, "knowledge_base/detach", map[string]any{
		"file_ids": fileIDs,
		"agent_id": agentID,
	})
}
