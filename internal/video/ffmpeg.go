package video

import (
	"bytes"
	"image"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/ironsheep/matrix-tools-mcp/internal/errors"
)

// ffmpegSource decodes arbitrary containers by running ffmpeg and reading
// its stdout as an MJPEG stream. The input is spooled to a temp file so
// ffmpeg can seek, which MP4 and MOV require.
type ffmpegSource struct {
	frames *mjpegSource
	cmd    *exec.Cmd
	stderr bytes.Buffer
	input  string
	count  int
	done   bool
}

// ffmpegArgs asks for the first video stream re-encoded as high quality
// JPEG frames on stdout.
func ffmpegArgs(input string) []string {
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-nostdin",
		"-i", input,
		"-map", "0:v:0",
		"-f", "image2pipe",
		"-c:v", "mjpeg",
		"-q:v", "2",
		"pipe:1",
	}
}

// openFFmpeg spools data to a temp file and starts ffmpeg on it. The temp
// file is removed if ffmpeg cannot be started.
func openFFmpeg(data []byte, ffmpegPath string) (_ *ffmpegSource, err error) {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	bin, err := exec.LookPath(ffmpegPath)
	if err != nil {
		return nil, errors.Wrap(errors.CodeDecode, err, "no decoder available for this container")
	}

	tmp, err := os.CreateTemp("", "matrix-video-*")
	if err != nil {
		return nil, errors.Wrap(errors.CodeDecode, err, "failed to spool video")
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()
	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return nil, errors.Wrap(errors.CodeDecode, err, "failed to spool video")
	}
	if err = tmp.Close(); err != nil {
		return nil, errors.Wrap(errors.CodeDecode, err, "failed to spool video")
	}

	s := &ffmpegSource{input: tmp.Name()}
	s.cmd = exec.Command(bin, ffmpegArgs(tmp.Name())...)
	s.cmd.Stderr = &s.stderr
	stdout, err := s.cmd.StdoutPipe()
	if err != nil {
		return nil, errors.Wrap(errors.CodeDecode, err, "failed to start ffmpeg")
	}
	if err = s.cmd.Start(); err != nil {
		return nil, errors.Wrap(errors.CodeDecode, err, "failed to start ffmpeg")
	}
	s.frames = newMJPEGSource(stdout, nil)
	return s, nil
}

func (s *ffmpegSource) Next() (image.Image, error) {
	if s.done {
		return nil, io.EOF
	}

	img, err := s.frames.Next()
	if err == nil {
		s.count++
		return img, nil
	}
	if err != io.EOF {
		return nil, err
	}

	s.done = true
	if waitErr := s.cmd.Wait(); waitErr != nil && s.count == 0 {
		return nil, errors.Wrap(errors.CodeDecode, waitErr, "failed to open video: %s", s.reason())
	}
	return nil, io.EOF
}

// reason returns ffmpeg's first error line.
func (s *ffmpegSource) reason() string {
	line, _, _ := strings.Cut(strings.TrimSpace(s.stderr.String()), "\n")
	if line == "" {
		return "no decodable video stream"
	}
	return line
}

func (s *ffmpegSource) Close() error {
	if !s.done {
		s.done = true
		if s.cmd.Process != nil {
			s.cmd.Process.Kill()
		}
		s.cmd.Wait()
	}
	s.frames.Close()

	if s.input == "" {
		return nil
	}
	input := s.input
	s.input = ""
	if err := os.Remove(input); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
