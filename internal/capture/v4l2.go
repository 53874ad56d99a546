package capture

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// DefaultFrameCommand grabs one PNG frame from a V4L2 node onto stdout.
// {device}, {width} and {height} are substituted before running.
var DefaultFrameCommand = []string{
	"ffmpeg", "-loglevel", "error", "-f", "v4l2", "-i", "{device}",
	"-frames:v", "1", "-f", "image2pipe", "-vcodec", "png", "-",
}

// V4L2Device is a Linux video node. Opening holds the node read/write for
// the lifetime of the stream; frames are grabbed by an external command.
type V4L2Device struct {
	Path    string
	Command []string
}

func (d *V4L2Device) Open(ctx context.Context, c Constraints) (Stream, error) {
	f, err := os.OpenFile(d.Path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	cmd := d.Command
	if len(cmd) == 0 {
		cmd = DefaultFrameCommand
	}
	return &v4l2Stream{file: f, path: d.Path, command: cmd, constraints: c}, nil
}

type v4l2Stream struct {
	file        *os.File
	path        string
	command     []string
	constraints Constraints
}

func (s *v4l2Stream) Frame(ctx context.Context) (image.Image, error) {
	args := make([]string, len(s.command))
	for i, a := range s.command {
		a = strings.ReplaceAll(a, "{device}", s.path)
		a = strings.ReplaceAll(a, "{width}", strconv.Itoa(s.constraints.Width))
		a = strings.ReplaceAll(a, "{height}", strconv.Itoa(s.constraints.Height))
		args[i] = a
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("frame grab failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	img, _, err := image.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame: %w", err)
	}
	return img, nil
}

func (s *v4l2Stream) Close() error {
	return s.file.Close()
}
