package formatter

import (
	"bytes"
	"fmt"
	"path"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/hellenic-development/psd-extractor/pkg/extractor"
	"github.com/hellenic-development/psd-extractor/pkg/imager"
	"github.com/hellenic-development/psd-extractor/pkg/psd"
)

// ToMarkdown renders an export run as a markdown report: a summary line, the exported
// files (linked relative to imageDir), skipped layers, failures and, when tree is non-nil,
// the document's layer hierarchy.
func ToMarkdown(docName string, result *imager.ExportResult, tree []*extractor.NodeDescription, imageDir string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Layer Export - %s\n\n", docName))
	sb.WriteString(fmt.Sprintf("Exported **%d** of %d attempted layer(s).\n\n", result.Exported(), result.Attempted))

	if len(result.Assets) > 0 {
		sb.WriteString("## Exported Layers\n\n")
		sb.WriteString("| Layer | Group | File | Size |\n")
		sb.WriteString("|-------|-------|------|------|\n")
		for _, a := range result.Assets {
			file := a.FileName()
			link := file
			if imageDir != "" {
				link = path.Join(imageDir, file)
			}
			group := a.Path.String()
			if group == "" {
				group = "-"
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | [`%s`](%s) | %s |\n",
				escapeCell(a.LayerName), escapeCell(group), file, link, humanSize(a.Size)))
		}
		sb.WriteString("\n")
	}

	if len(result.Skipped) > 0 {
		sb.WriteString("## Skipped\n\n")
		for _, s := range result.Skipped {
			sb.WriteString(fmt.Sprintf("- `%s`: %s\n", s.Name, s.Reason))
		}
		sb.WriteString("\n")
	}

	if len(result.Failures) > 0 {
		sb.WriteString("## Failures\n\n")
		for _, f := range result.Failures {
			sb.WriteString(fmt.Sprintf("- `%s`: %v\n", f.Name, f.Err))
		}
		sb.WriteString("\n")
	}

	if tree != nil {
		sb.WriteString("## Layer Tree\n\n")
		for _, nd := range tree {
			writeNode(&sb, nd, 0)
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func writeNode(sb *strings.Builder, nd *extractor.NodeDescription, depth int) {
	indent := strings.Repeat("  ", depth)

	var flags []string
	if !nd.Visible {
		flags = append(flags, "hidden")
	}
	if nd.Kind == psd.KindLayer && nd.Width > 0 {
		flags = append(flags, fmt.Sprintf("%dx%d", nd.Width, nd.Height))
	}
	if nd.ExportedFile != "" {
		flags = append(flags, "`"+nd.ExportedFile+"`")
	}

	label := nd.Name
	if nd.Kind == psd.KindGroup {
		label = "**" + label + "/**"
	}
	if len(flags) > 0 {
		label += " (" + strings.Join(flags, ", ") + ")"
	}
	sb.WriteString(fmt.Sprintf("%s- %s\n", indent, label))

	for _, child := range nd.Children {
		writeNode(sb, child, depth+1)
	}
}

// ToHTML converts a markdown report into an HTML fragment.
func ToHTML(markdown string) (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))

	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return buf.String(), nil
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func humanSize(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
