package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Convert runs the pipeline and writes the audio to outputPath. The file
// appears atomically: audio goes to a temp file in the target directory
// first and is renamed into place only on success, so a failed conversion
// never leaves a partial output behind.
func (p *Pipeline) Convert(ctx context.Context, input, outputPath string) (Result, error) {
	data, res, err := p.Run(ctx, input)
	if err != nil {
		return Result{}, err
	}

	if err := writeFileAtomic(outputPath, data); err != nil {
		return Result{}, err
	}

	res.OutputPath = outputPath

	p.logger().Info("conversion finished",
		"output", res.OutputPath,
		"bytes", len(data),
		"chunks", res.ChunkCount,
		"chunked", res.UsedChunking)

	return res, nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tmp := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(path), uuid.NewString()))
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("finalize output: %w", err)
	}

	return nil
}
