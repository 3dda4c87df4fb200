// Command notepad is a CLI client for the notes API.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/and161185/notepad/internal/errs"
	"github.com/and161185/notepad/internal/model"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fail(os.Stderr, err)
		os.Exit(1)
	}
}

// ---- output ----

type noteView struct {
	ID      string `json:"id" yaml:"id"`
	Title   string `json:"title" yaml:"title"`
	Content string `json:"content" yaml:"content"`
	Date    string `json:"date,omitempty" yaml:"date,omitempty"`
}

func viewOf(n model.Note) noteView {
	v := noteView{ID: n.ID, Title: n.Title, Content: n.Content}
	if !n.Date.IsZero() {
		v.Date = n.Date.UTC().Format(time.RFC3339)
	}
	return v
}

func viewsOf(notes []model.Note) []noteView {
	out := make([]noteView, 0, len(notes))
	for _, n := range notes {
		out = append(out, viewOf(n))
	}
	return out
}

func printJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// printAs writes v as JSON or YAML.
func printAs(w io.Writer, format string, v any) error {
	switch format {
	case "", "json":
		printJSON(w, v)
		return nil
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: unknown output format %q", errs.ErrValidation, format)
	}
}

func fail(w io.Writer, err error) {
	fmt.Fprintf(w, "error: %s\n", errs.UserMessage(err))
}
