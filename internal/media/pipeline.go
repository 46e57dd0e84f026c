// Package media turns an inbound media file into a transcript: it normalizes
// the audio, splits long recordings into fixed-length segments, transcribes
// each piece in order, and concatenates the results. Every temporary artifact
// is removed when a job concludes, whatever the outcome.
package media

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// SegmentSeconds is the long-media threshold and the fixed segment length.
// Recordings at or below it go upstream as a single file.
const SegmentSeconds = 1800

// Transcriber performs one transcription call. An empty language means
// auto-detect.
type Transcriber interface {
	Transcribe(ctx context.Context, filePath, language string) (string, error)
}

// Job describes one inbound media file. The caller owns InputPath and
// removes it after the job concludes.
type Job struct {
	InputPath string
	Language  string
}

// Pipeline orchestrates normalize, probe, segment, and transcribe.
type Pipeline struct {
	transcriber  Transcriber
	runner       Runner
	downloadsDir string
	logger       *slog.Logger
}

// NewPipeline builds a Pipeline writing its temporary artifacts under
// downloadsDir.
func NewPipeline(log *slog.Logger, transcriber Transcriber, runner Runner, downloadsDir string) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		transcriber:  transcriber,
		runner:       runner,
		downloadsDir: downloadsDir,
		logger:       log.With(slog.String("component", "media")),
	}
}

// Process runs the whole job and returns the final transcript. Any
// transcoding, probing, segmentation, or upstream failure aborts the job and
// discards partial results; ErrEmptyTranscript reports an upstream success
// that recognized nothing.
func (p *Pipeline) Process(ctx context.Context, job Job) (string, error) {
	normalized := filepath.Join(p.downloadsDir, uuid.NewString()+".mp3")
	created := []string{normalized}
	defer func() {
		for _, path := range created {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				p.logger.Warn("remove temp file failed", slog.String("path", path), slog.Any("error", err))
			}
		}
	}()

	if err := p.normalize(ctx, job.InputPath, normalized); err != nil {
		return "", err
	}
	duration, err := p.probeDuration(ctx, normalized)
	if err != nil {
		return "", err
	}
	p.logger.Info("media normalized",
		slog.Float64("duration_s", duration),
		slog.String("language", job.Language))

	var text string
	if duration > SegmentSeconds {
		segments, err := p.splitSegments(ctx, normalized)
		created = append(created, segments...)
		if err != nil {
			return "", err
		}
		text, err = p.transcribeSegments(ctx, segments, job.Language)
		if err != nil {
			return "", err
		}
	} else {
		text, err = p.transcriber.Transcribe(ctx, normalized, job.Language)
		if err != nil {
			return "", err
		}
	}

	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyTranscript
	}
	return text, nil
}

// splitSegments cuts the normalized file into fixed-length pieces and
// returns their paths in ascending time order. Paths created before a
// failure are still returned so the caller can clean them up.
func (p *Pipeline) splitSegments(ctx context.Context, normalized string) ([]string, error) {
	base := strings.TrimSuffix(filepath.Base(normalized), ".mp3")
	pattern := filepath.Join(p.downloadsDir, "chunk_"+base+"_%03d.mp3")
	if err := p.segment(ctx, normalized, pattern); err != nil {
		return p.globSegments(base), err
	}
	segments := p.globSegments(base)
	if len(segments) == 0 {
		return nil, fmt.Errorf("segment media: no segments produced")
	}
	return segments, nil
}

func (p *Pipeline) globSegments(base string) []string {
	matches, err := filepath.Glob(filepath.Join(p.downloadsDir, "chunk_"+base+"_*.mp3"))
	if err != nil {
		return nil
	}
	// The %03d suffix makes lexical order the time order.
	sort.Strings(matches)
	return matches
}

// transcribeSegments transcribes each piece in ascending time order and
// joins the non-empty results with a single separating space. Order matters:
// transcript continuity depends on it.
func (p *Pipeline) transcribeSegments(ctx context.Context, segments []string, language string) (string, error) {
	var parts []string
	for _, segment := range segments {
		piece, err := p.transcriber.Transcribe(ctx, segment, language)
		if err != nil {
			return "", err
		}
		if piece != "" {
			parts = append(parts, piece)
		}
	}
	return strings.Join(parts, " "), nil
}
