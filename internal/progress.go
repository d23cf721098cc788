package internal

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	progressStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// ShowProgress runs fn while a spinner with message is shown on stderr. Off
// a terminal the message is logged instead. fn receives ctx and should
// return once it is cancelled.
func ShowProgress(ctx context.Context, message string, fn func(ctx context.Context) error) error {
	if !isTerminal(os.Stderr) {
		LogInfo("%s", message)
		return fn(ctx)
	}
	return showProgressSpinner(ctx, os.Stderr, message, fn)
}

func showProgressSpinner(ctx context.Context, w io.Writer, message string, fn func(ctx context.Context) error) error {
	stop := make(chan struct{})
	spinnerDone := make(chan struct{})

	go func() {
		defer close(spinnerDone)
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			case <-ticker.C:
				frame := spinnerFrames[i%len(spinnerFrames)]
				_, _ = fmt.Fprintf(w, "\r%s %s", progressStyle.Render(frame), message)
			}
		}
	}()

	err := fn(ctx)
	close(stop)
	<-spinnerDone

	if err != nil {
		_, _ = fmt.Fprintf(w, "\r%s %s\n", errorStyle.Render("✗"), message)
		return err
	}
	_, _ = fmt.Fprintf(w, "\r%s %s\n", successStyle.Render("✓"), message)
	return nil
}

// isTerminal checks if the writer is a terminal
func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		stat, err := f.Stat()
		if err != nil {
			return false
		}
		return (stat.Mode() & os.ModeCharDevice) != 0
	}
	return false
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	if isTerminal(os.Stdout) {
		fmt.Printf("%s %s\n", successStyle.Render("✓"), message)
	} else {
		fmt.Println(message)
	}
}

// PrintError prints an error message
func PrintError(message string) {
	if isTerminal(os.Stderr) {
		fmt.Fprintf(os.Stderr, "%s %s\n", errorStyle.Render("✗"), message)
	} else {
		fmt.Fprintf(os.Stderr, "%s\n", message)
	}
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	if isTerminal(os.Stdout) {
		fmt.Printf("%s %s\n", progressStyle.Render("ℹ"), message)
	} else {
		fmt.Println(message)
	}
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	if isTerminal(os.Stderr) {
		fmt.Fprintf(os.Stderr, "%s %s\n", warningStyle.Render("⚠"), message)
	} else {
		fmt.Fprintf(os.Stderr, "WARNING: %s\n", message)
	}
}
