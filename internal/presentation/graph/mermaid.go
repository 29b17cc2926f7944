package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/splash/pkg/domain"
)

const (
	startID  = "start"
	hiddenID = "hidden"
)

// GenerateMermaid produces a Mermaid flowchart of the loading sequence.
// Steps are drawn in catalog order between a start and a hidden terminal:
// - Terminals: ((Circle))
// - Fault-prone step: [[Subroutine]] with a dotted retry loop
// - Default: [Rectangle]
// When snap is not nil its flags are applied as overlay styles.
func GenerateMermaid(catalog domain.Catalog, faultStep int, snap *domain.Snapshot) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	fmt.Fprintf(&sb, "    %s((\"%s\"))\n", startID, startID)

	prev := startID
	for i, d := range catalog.Descriptors() {
		id := stepID(d)

		opener, closer := "[", "]"
		if i == faultStep {
			opener, closer = "[[", "]]"
		}

		label := escape(d.Label)
		if d.Icon != "" {
			label = fmt.Sprintf("%s <br/> %s", label, escape(d.Icon))
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", id, opener, label, closer)
		fmt.Fprintf(&sb, "    %s --> %s\n", prev, id)
		if i == faultStep {
			fmt.Fprintf(&sb, "    %s -. ⚡ retry .-> %s\n", id, id)
		}
		prev = id
	}

	fmt.Fprintf(&sb, "    %s((\"%s\"))\n", hiddenID, hiddenID)
	fmt.Fprintf(&sb, "    %s --> %s\n", prev, hiddenID)
	fmt.Fprintf(&sb, "    %s -. timeout .-> %s\n", startID, hiddenID)

	if snap != nil {
		writeOverlay(&sb, catalog, snap)
	}
	return sb.String()
}

func writeOverlay(sb *strings.Builder, catalog domain.Catalog, snap *domain.Snapshot) {
	sb.WriteString("\n    %% Overlay Styles\n")
	// Force black text (color:#000) so labels stay readable on light and dark themes
	sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
	sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
	sb.WriteString("    classDef errored fill:#ffcdd2,stroke:#c62828,stroke-width:2px,color:#000;\n")

	fmt.Fprintf(sb, "    class %s visited;\n", startID)
	for i, step := range snap.Steps {
		if i >= catalog.Len() {
			break
		}
		id := stepID(catalog.At(i))
		switch {
		case step.Errored:
			fmt.Fprintf(sb, "    class %s errored;\n", id)
		case step.Completed:
			fmt.Fprintf(sb, "    class %s visited;\n", id)
		}
	}

	switch {
	case !snap.Visible:
		fmt.Fprintf(sb, "    class %s current;\n", hiddenID)
	case snap.CurrentIndex < catalog.Len():
		fmt.Fprintf(sb, "    class %s current;\n", stepID(catalog.At(snap.CurrentIndex)))
	}
}

func stepID(d domain.StepDescriptor) string {
	return fmt.Sprintf("step_%d", d.ID)
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
