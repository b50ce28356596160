package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

// InputDevice opens a stream of raw pcm16 frames in the requested format
type InputDevice interface {
	Name() string
	Open(ctx context.Context, format Format) (io.ReadCloser, error)
}

// OutputDevice plays an encoded audio file to completion
type OutputDevice interface {
	Name() string
	PlayFile(ctx context.Context, path string) error
}

// expandCommand splits a command template into argv and substitutes
// {placeholders} inside each field.
func expandCommand(template string, vars map[string]string) ([]string, error) {
	fields := strings.Fields(template)
	if len(fields) == 0 {
		return nil, errors.New("empty command")
	}
	for i, field := range fields {
		for key, value := range vars {
			field = strings.ReplaceAll(field, "{"+key+"}", value)
		}
		fields[i] = field
	}
	return fields, nil
}

// CommandInput records from the microphone through an external program
// (arecord, sox, ffmpeg) that writes raw pcm16 to stdout.
type CommandInput struct {
	Command string // e.g. "arecord -q -t raw -f S16_LE -r {rate} -c {channels}"
}

// NewCommandInput creates an input device from a command template
func NewCommandInput(command string) *CommandInput {
	return &CommandInput{Command: command}
}

func (d *CommandInput) Name() string {
	if fields := strings.Fields(d.Command); len(fields) > 0 {
		return fields[0]
	}
	return "command-input"
}

// Open starts the recording program. The process lives until the stream is closed.
func (d *CommandInput) Open(ctx context.Context, format Format) (io.ReadCloser, error) {
	argv, err := expandCommand(d.Command, map[string]string{
		"rate":     strconv.Itoa(format.SampleRate),
		"channels": strconv.Itoa(format.Channels),
	})
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to attach stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", argv[0], err)
	}
	return &commandStream{cmd: cmd, stdout: stdout, stderr: &stderr}, nil
}

type commandStream struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr *bytes.Buffer
	once   sync.Once
	err    error
}

func (s *commandStream) Read(p []byte) (int, error) {
	return s.stdout.Read(p)
}

// Close stops the recording program and reaps it
func (s *commandStream) Close() error {
	s.once.Do(func() {
		if s.cmd.Process != nil {
			_ = s.cmd.Process.Kill()
		}
		err := s.cmd.Wait()
		var exitErr *exec.ExitError
		if err != nil && !errors.As(err, &exitErr) {
			s.err = err
		}
	})
	return s.err
}

// CommandOutput plays files through an external program such as ffplay or afplay
type CommandOutput struct {
	Command string // e.g. "ffplay -nodisp -autoexit -loglevel quiet {file}"
}

// NewCommandOutput creates an output device from a command template
func NewCommandOutput(command string) *CommandOutput {
	return &CommandOutput{Command: command}
}

func (d *CommandOutput) Name() string {
	if fields := strings.Fields(d.Command); len(fields) > 0 {
		return fields[0]
	}
	return "command-output"
}

// PlayFile blocks until the player exits or ctx is cancelled
func (d *CommandOutput) PlayFile(ctx context.Context, path string) error {
	template := d.Command
	if !strings.Contains(template, "{file}") {
		template += " {file}"
	}
	argv, err := expandCommand(template, map[string]string{"file": path})
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if msg := strings.TrimSpace(string(output)); msg != "" {
			return fmt.Errorf("%s failed: %w: %s", argv[0], err, msg)
		}
		return fmt.Errorf("%s failed: %w", argv[0], err)
	}
	return nil
}
