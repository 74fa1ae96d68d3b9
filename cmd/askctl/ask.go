package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"interview-assistant/internal/assistant"
	"interview-assistant/internal/pdftext"
	"interview-assistant/internal/render"
)

type askOptions struct {
	snippet bool
	pdfOut  string
	fromPDF string
	userID  string
}

func newAskCmd() *cobra.Command {
	var opts askOptions
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Answer a technical question as a numbered list",
		Example: `  askctl ask "What is a Python decorator?" --snippet
  askctl ask --from-pdf questions.pdf --pdf answer.pdf`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd, args, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.snippet, "snippet", false, "Include a short code example when relevant")
	cmd.Flags().StringVar(&opts.pdfOut, "pdf", "", "Also write the answer to this PDF file")
	cmd.Flags().StringVar(&opts.fromPDF, "from-pdf", "", "Read the question from a PDF file")
	cmd.Flags().StringVar(&opts.userID, "user", "", "Record the answer in this user's history")
	return cmd
}

func runAsk(cmd *cobra.Command, args []string, opts askOptions) error {
	question, err := questionFrom(args, opts.fromPDF)
	if err != nil {
		return err
	}

	deps, err := buildDeps(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to build dependencies: %w", err)
	}
	defer deps.Close()

	res, err := deps.Assistant.Ask(cmd.Context(), assistant.Request{
		Question:    question,
		UserID:      opts.userID,
		WithSnippet: opts.snippet,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !res.Technical {
		fmt.Fprintln(out, res.Points[0])
		return nil
	}
	printAnswer(out, res)

	if opts.pdfOut != "" {
		if err := savePDF(opts.pdfOut, res); err != nil {
			return err
		}
		fmt.Fprintf(out, "\nSaved PDF to %s\n", opts.pdfOut)
	}
	return nil
}

func questionFrom(args []string, fromPDF string) (string, error) {
	switch {
	case fromPDF != "" && len(args) > 0:
		return "", errors.New("pass a question or --from-pdf, not both")
	case fromPDF != "":
		text, err := pdftext.ExtractFile(fromPDF)
		if err != nil {
			return "", fmt.Errorf("failed to read question from %s: %w", fromPDF, err)
		}
		return text, nil
	case len(args) == 0:
		return "", errors.New("a question is required")
	default:
		return strings.Join(args, " "), nil
	}
}

func printAnswer(w io.Writer, res assistant.Result) {
	var meta []string
	if res.Topic != "" {
		meta = append(meta, "Topic: "+res.Topic)
	}
	if res.Language != "" {
		meta = append(meta, "Language: "+res.Language)
	}
	if len(meta) > 0 {
		fmt.Fprintf(w, "%s\n\n", strings.Join(meta, " | "))
	}
	printPoints(w, res.Points)
	if res.Snippet != "" {
		fmt.Fprintf(w, "\n%s\n", res.Snippet)
	}
}

func printPoints(w io.Writer, points []string) {
	for i, p := range points {
		fmt.Fprintf(w, "%d. %s\n", i+1, p)
	}
}

func savePDF(path string, res assistant.Result) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return render.PDF(f, render.Document{
		Question: res.Question,
		Points:   res.Points,
		Snippet:  res.Snippet,
		Topic:    res.Topic,
		Language: res.Language,
	})
}
