// Package s3 provides the "s3_upload" node type, which uploads files to
// pre-signed S3 URLs.
package s3

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/vk/nodegrid/internal/ctxlog"
	"github.com/vk/nodegrid/internal/nodedef"
	"github.com/vk/nodegrid/internal/registry"
)

//go:embed manifest.hcl
var manifest []byte

// Module implements the registry.Module interface for this package.
type Module struct {
	// Client performs the uploads. Nil means http.DefaultClient.
	Client *http.Client
}

// Input holds the decoded inputs of one upload.
type Input struct {
	SourcePath string
	UploadURL  string
}

func decodeInput(in map[string]any) (*Input, error) {
	input := &Input{}
	input.SourcePath, _ = in["source_path"].(string)
	input.UploadURL, _ = in["upload_url"].(string)
	if input.SourcePath == "" || input.UploadURL == "" {
		return nil, errors.New("source_path and upload_url must be non-empty strings")
	}
	return input, nil
}

func (m *Module) client() *http.Client {
	if m.Client == nil {
		return http.DefaultClient
	}
	return m.Client
}

// S3Upload PUTs the file at "source_path" to "upload_url" and emits the
// uploaded size on the "uploaded" event.
func (m *Module) S3Upload(ctx context.Context, in map[string]any, rt nodedef.Runtime) (map[string]any, error) {
	input, err := decodeInput(in)
	if err != nil {
		return nil, err
	}
	logger := ctxlog.FromContext(ctx).With("action", "upload")

	file, err := os.Open(input.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open source file '%s': %w", input.SourcePath, err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to get file stats for '%s': %w", input.SourcePath, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, input.UploadURL, file)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 upload request: %w", err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(input.SourcePath))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = stat.Size()

	logger.Info("Uploading file to S3", "source", input.SourcePath, "size", stat.Size(), "contentType", contentType)

	resp, err := m.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute S3 upload request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("S3 upload failed with status: %s", resp.Status)
	}

	logger.Info("Successfully uploaded file", "status", resp.Status)
	rt.Emit(ctx, "uploaded", float64(stat.Size()))

	return map[string]any{
		"success": true,
		"status":  resp.Status,
	}, nil
}

// Register registers the node type and its process with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterType("s3_upload", registry.Builtin("s3_upload", manifest))
	r.RegisterProcess("S3Upload", m.S3Upload)
}
