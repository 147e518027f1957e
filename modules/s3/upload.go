package s3

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/specialistvlad/gridbind/internal/ctyconv"
	"github.com/specialistvlad/gridbind/internal/schema"
	"github.com/specialistvlad/gridbind/internal/unit"
	"github.com/zclconf/go-cty/cty"
)

// SessionKey is the resource key the s3_upload op expects its session under.
const SessionKey = "session"

// UploadConfig is the configuration of an s3_upload op.
type UploadConfig struct {
	SourcePath  string  `cty:"source_path"`
	UploadURL   string  `cty:"upload_url"`
	ContentType *string `cty:"content_type"`
}

// Upload returns the s3_upload op, which PUTs a local file to an object URL.
func Upload() *unit.Op {
	s := schema.New(schema.Object(map[string]*schema.Field{
		"source_path":  schema.String().Describe("Local file to upload."),
		"upload_url":   schema.String().Describe("Object URL, absolute or relative to the session endpoint."),
		"content_type": schema.String().AsOptional().Describe("Defaults to the type implied by the file extension."),
	}))
	return unit.NewOp("s3_upload", upload, unit.WithSchema(s))
}

// upload contains the logic for uploading a file to an object URL.
func upload(ctx context.Context, oc *unit.OpContext) (cty.Value, error) {
	logger := oc.Logger.With("action", "upload")

	var cfg UploadConfig
	if err := ctyconv.Decode(oc.Config, &cfg); err != nil {
		return cty.NilVal, fmt.Errorf("decoding s3_upload config: %w", err)
	}
	sess, err := unit.ResourceAs[*S3Session](oc, SessionKey)
	if err != nil {
		return cty.NilVal, err
	}
	target, err := sess.resolve(cfg.UploadURL)
	if err != nil {
		return cty.NilVal, err
	}

	file, err := os.Open(cfg.SourcePath)
	if err != nil {
		return cty.NilVal, fmt.Errorf("failed to open source file '%s': %w", cfg.SourcePath, err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return cty.NilVal, fmt.Errorf("failed to get file stats for '%s': %w", cfg.SourcePath, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, target.String(), file)
	if err != nil {
		return cty.NilVal, fmt.Errorf("failed to create S3 upload request: %w", err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(cfg.SourcePath))
	if cfg.ContentType != nil {
		contentType = *cfg.ContentType
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = stat.Size()

	logger.Info("Uploading file to S3", "source", cfg.SourcePath, "size", stat.Size(), "contentType", contentType, "region", sess.Region)

	resp, err := sess.Client.Do(req)
	if err != nil {
		return cty.NilVal, fmt.Errorf("failed to execute S3 upload request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return cty.NilVal, fmt.Errorf("S3 upload failed with status: %s", resp.Status)
	}

	logger.Info("Successfully uploaded file", "status", resp.Status)

	return cty.ObjectVal(map[string]cty.Value{
		"success": cty.BoolVal(true),
		"status":  cty.StringVal(resp.Status),
		"size":    cty.NumberIntVal(stat.Size()),
	}), nil
}
