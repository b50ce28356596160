// Package console is the line-oriented terminal front end of the companion.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/lexiqai/voice-companion/internal/orchestrator"
	"github.com/lexiqai/voice-companion/internal/session"
)

// Driver is the conversation the console steers
type Driver interface {
	ChooseTopic(ctx context.Context, topic string) (string, error)
	NewTopic(ctx context.Context, topic string) (string, error)
	StartCapture(ctx context.Context) error
	StopCapture(ctx context.Context) (*session.Turn, error)
	SubmitText(ctx context.Context, text string) (*session.Turn, error)
	SpeechInput() bool
	Quit()
}

// Console reads commands from in and writes the conversation to out
type Console struct {
	in      io.Reader
	out     io.Writer
	persona string
	logger  zerolog.Logger

	mu    sync.Mutex // Serializes writes to out
	lines chan string
	done  chan struct{}
}

// New creates a console. It also serves as the orchestrator's Display.
func New(in io.Reader, out io.Writer, persona string, logger zerolog.Logger) *Console {
	if persona == "" {
		persona = "ADAM"
	}
	return &Console{
		in:      in,
		out:     out,
		persona: persona,
		logger:  logger.With().Str("component", "console").Logger(),
	}
}

// ShowReply prints an assistant reply
func (c *Console) ShowReply(text string) {
	c.printf("\n%s %s\n", personaStyle.Render(c.persona+":"), text)
}

// ShowTranscript echoes what the transcriber heard
func (c *Console) ShowTranscript(text string) {
	c.printf("%s\n", transcriptStyle.Render("You said: "+text))
}

// Run drives the menu loop until the user quits, input ends or ctx is done
func (c *Console) Run(ctx context.Context, d Driver) error {
	c.lines = make(chan string)
	c.done = make(chan struct{})
	go c.readLines(c.lines, c.done)
	defer close(c.done)
	defer d.Quit()

	c.printf("%s\n", titleStyle.Render(fmt.Sprintf("👋 Hello! I'm %s, your friendly AI companion!", c.persona)))
	c.printf("\nWhat would you like to talk about today?\n")
	if !c.chooseFirstTopic(ctx, d) {
		return ctx.Err()
	}

	for {
		c.printMenu()
		choice, ok := c.prompt(ctx, "\nEnter your choice: ")
		if !ok {
			return ctx.Err()
		}

		switch strings.ToLower(choice) {
		case "q":
			c.printf("\n%s It was great talking with you! Take care!\n", personaStyle.Render(c.persona+":"))
			return nil
		case "1":
			if !d.SpeechInput() {
				c.printError("Speech input is not available. Try typing instead.")
				continue
			}
			c.printf("You are now in 'Speak' mode. Press Enter to start or stop speaking.\n")
			if !c.speakMode(ctx, d) {
				return ctx.Err()
			}
		case "2":
			c.printf("You are now in 'Type' mode. Press Enter to send your message.\n")
			if !c.typeMode(ctx, d) {
				return ctx.Err()
			}
		case "3":
			c.printf("\nWhat would you like to talk about?\n")
			topic, ok := c.prompt(ctx, "Enter new topic: ")
			if !ok {
				return ctx.Err()
			}
			if _, err := d.NewTopic(ctx, topic); err != nil {
				c.report(err)
			}
		default:
			c.printError("Invalid choice. Please try again.")
		}
	}
}

func (c *Console) chooseFirstTopic(ctx context.Context, d Driver) bool {
	for {
		topic, ok := c.prompt(ctx, "Enter a topic: ")
		if !ok {
			return false
		}
		if _, err := d.ChooseTopic(ctx, topic); err != nil {
			c.report(err)
			continue
		}
		return true
	}
}

// speakMode toggles recording with Enter. It returns false when input ends.
func (c *Console) speakMode(ctx context.Context, d Driver) bool {
	for {
		line, ok := c.prompt(ctx, "Press Enter to record (type 'q' to leave speak mode): ")
		if !ok {
			return false
		}
		if strings.EqualFold(line, "q") {
			return true
		}

		if err := d.StartCapture(ctx); err != nil {
			c.report(err)
			continue
		}
		c.printf("%s\n", recordingStyle.Render("🎤 Recording... Press Enter again to stop."))
		_, ok = c.prompt(ctx, "")

		c.printf("%s\n", dimStyle.Render("Processing your message..."))
		if _, err := d.StopCapture(ctx); err != nil {
			c.report(err)
		}
		if !ok {
			return false
		}
	}
}

// typeMode sends each line as a message. It returns false when input ends.
func (c *Console) typeMode(ctx context.Context, d Driver) bool {
	for {
		line, ok := c.prompt(ctx, "\nYour message (type 'q' to leave type mode): ")
		if !ok {
			return false
		}
		if strings.EqualFold(line, "q") {
			return true
		}
		if _, err := d.SubmitText(ctx, line); err != nil {
			c.report(err)
		}
	}
}

// report prints a short diagnostic for a failed operation
func (c *Console) report(err error) {
	c.logger.Debug().Err(err).Msg("Operation failed")

	switch {
	case errors.Is(err, orchestrator.ErrEmptyTopic), errors.Is(err, session.ErrEmptyTopic):
		c.printError("Topic cannot be empty. Please try again.")
	case errors.Is(err, orchestrator.ErrEmptyInput):
		c.printError("Message cannot be empty. Please try again.")
	case errors.Is(err, orchestrator.ErrNoAudio):
		c.printError("No audio was recorded. Please try again.")
	case errors.Is(err, orchestrator.ErrEmptyTranscript):
		c.printError("I didn't catch that. Please try again.")
	case errors.Is(err, session.ErrSessionFull):
		c.printError("This conversation is full. Choose 3 to start a new topic.")
	default:
		c.printError(fmt.Sprintf("Something went wrong: %v", err))
	}
}

func (c *Console) printMenu() {
	c.printf("\nSelect your mode:\n")
	for _, item := range [][2]string{
		{"1", "Speak (record your responses)"},
		{"2", "Type your responses"},
		{"3", "Start a new topic"},
		{"q", "End conversation"},
	} {
		c.printf("%s - %s\n", menuKeyStyle.Render(item[0]), item[1])
	}
}

func (c *Console) printError(msg string) {
	c.printf("%s\n", errorStyle.Render(msg))
}

func (c *Console) printf(format string, args ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

// prompt prints label and waits for the next line
func (c *Console) prompt(ctx context.Context, label string) (string, bool) {
	if label != "" {
		c.printf("%s", label)
	}
	select {
	case <-ctx.Done():
		return "", false
	case line, ok := <-c.lines:
		return strings.TrimSpace(line), ok
	}
}

// readLines feeds input lines to Run until input ends or Run returns.
// A read already blocked on input still finishes before the goroutine exits.
func (c *Console) readLines(lines chan<- string, done <-chan struct{}) {
	defer close(lines)
	scanner := bufio.NewScanner(c.in)
	for scanner.Scan() {
		select {
		case lines <- scanner.Text():
		case <-done:
			return
		}
	}
	if err := scanner.Err(); err != nil {
		c.logger.Warn().Err(err).Msg("Input read failed")
	}
}
