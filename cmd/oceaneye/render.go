package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"oceaneye/internal/catalog"
	"oceaneye/internal/identification"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiBold   = "\x1b[1m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	fieldLabelWidth = 12
	fieldIndent     = "  "
	placeholderName = "Fish Information"
)

func shouldColorize(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func colored(text, color string, colorize bool) string {
	if !colorize || color == "" {
		return text
	}
	return color + text + ansiReset
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	case statusInfo:
		return ansiBlue
	default:
		return ""
	}
}

func outcomeKind(outcome identification.Outcome) statusKind {
	switch outcome {
	case identification.OutcomeFound:
		return statusOK
	case identification.OutcomeNotFound, identification.OutcomeEncodingError:
		return statusWarn
	case identification.OutcomeDecodeError, identification.OutcomeTransportError:
		return statusError
	default:
		return statusInfo
	}
}

var titleCaser = cases.Title(language.English)

// displayStatus title-cases a conservation status such as "least concern".
func displayStatus(status string) string {
	status = strings.TrimSpace(status)
	if status == "" {
		return status
	}
	return titleCaser.String(strings.ToLower(status))
}

func fieldLine(label, value string) string {
	return fmt.Sprintf("%s%-*s %s", fieldIndent, fieldLabelWidth, label+":", value)
}

// renderReport formats a settled identification for a terminal.
func renderReport(report identification.Report, colorize bool) string {
	var b strings.Builder
	if report.Found() {
		writeRecord(&b, *report.Record, colorize)
	} else {
		b.WriteString(colored(placeholderName, ansiBold, colorize))
		b.WriteByte('\n')
		advice := report.Advice()
		if msg := advice.Message(); msg != "" {
			b.WriteString(fieldIndent)
			b.WriteString(colored(msg, statusKindColor(outcomeKind(report.Outcome)), colorize))
			b.WriteByte('\n')
		}
		if detail := advice.Detail(); detail != "" {
			b.WriteString(fieldIndent)
			b.WriteString(detail)
			b.WriteByte('\n')
		}
	}
	outcome := colored(string(report.Outcome), statusKindColor(outcomeKind(report.Outcome)), colorize)
	b.WriteString(fieldLine("Outcome", outcome))
	b.WriteByte('\n')
	if report.Digest != "" {
		b.WriteString(fieldLine("Digest", report.Digest.String()))
		b.WriteByte('\n')
	}
	if msg := report.ErrorMessage(); msg != "" {
		b.WriteString(fieldLine("Error", msg))
		b.WriteByte('\n')
	}
	return b.String()
}

func writeRecord(b *strings.Builder, record catalog.Record, colorize bool) {
	b.WriteString(colored(record.Name, ansiBold, colorize))
	b.WriteByte('\n')
	b.WriteString(fieldLine("Scientific", record.ScientificName))
	b.WriteByte('\n')
	b.WriteString(fieldLine("Habitat", record.Habitat))
	b.WriteByte('\n')
	b.WriteString(fieldLine("Size", record.Size))
	b.WriteByte('\n')
	b.WriteString(fieldLine("Status", displayStatus(record.ConservationStatus)))
	b.WriteByte('\n')
}

// reportResult prints report in format and maps a miss to exit status 2.
func reportResult(out io.Writer, format outputFormat, report identification.Report, write func(any) error) error {
	if format == outputText {
		if _, err := io.WriteString(out, renderReport(report, shouldColorize(out))); err != nil {
			return err
		}
	} else if err := write(report.View()); err != nil {
		return err
	}
	switch {
	case report.Found():
		return nil
	case report.Outcome == identification.OutcomeNotFound:
		return errNotFound
	default:
		return &exitError{code: 1}
	}
}
