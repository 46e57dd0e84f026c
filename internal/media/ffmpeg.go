package media

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Runner executes an external media tool and returns its stdout. It exists
// so tests can run the pipeline without ffmpeg installed.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs tools through os/exec.
type ExecRunner struct{}

// NewExecRunner returns a Runner backed by os/exec.
func NewExecRunner() ExecRunner {
	return ExecRunner{}
}

// Run executes name with args, returning stdout. Stderr is folded into the
// error because ffmpeg reports its diagnostics there.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", name, err, previewStderr(stderr.Bytes()))
	}
	return stdout.Bytes(), nil
}

func previewStderr(out []byte) string {
	const limit = 300
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return strings.TrimSpace(string(out))
}

// normalize transcodes the input into mono 16 kHz low-bitrate mp3. This
// bounds the size of long recordings before any duration decision and feeds
// the upstream a single input format regardless of source container.
func (p *Pipeline) normalize(ctx context.Context, inputPath, outputPath string) error {
	_, err := p.runner.Run(ctx, "ffmpeg",
		"-y", "-i", inputPath,
		"-ar", "16000", "-ac", "1", "-b:a", "48k",
		outputPath)
	if err != nil {
		return fmt.Errorf("normalize media: %w", err)
	}
	return nil
}

// probeDuration returns the duration of the file in seconds.
func (p *Pipeline) probeDuration(ctx context.Context, path string) (float64, error) {
	out, err := p.runner.Run(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path)
	if err != nil {
		return 0, fmt.Errorf("probe duration: %w", err)
	}
	duration, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("probe duration: parse %q: %w", strings.TrimSpace(string(out)), err)
	}
	return duration, nil
}

// segment splits the normalized file into consecutive fixed-length pieces
// without re-encoding. pattern must contain a %03d placeholder.
func (p *Pipeline) segment(ctx context.Context, inputPath, pattern string) error {
	_, err := p.runner.Run(ctx, "ffmpeg",
		"-i", inputPath,
		"-f", "segment",
		"-segment_time", strconv.Itoa(SegmentSeconds),
		"-c", "copy",
		pattern)
	if err != nil {
		return fmt.Errorf("segment media: %w", err)
	}
	return nil
}
