package cfg

import (
	"bytes"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
)

// PrintDot writes sub and every subroutine it references as a GraphViz
// digraph. Each subroutine is drawn as a cluster; edge subroutines are
// listed in the label of the edge carrying them.
func PrintDot(w io.Writer, sub *Subroutine) {
	fmt.Fprint(w, "digraph mgraph {\n\tmode=\"heir\";\n\tsplines=\"ortho\";\n")

	seen := map[*Subroutine]bool{}
	queue := []*Subroutine{sub}
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		if seen[s] {
			continue
		}
		seen[s] = true
		printCluster(w, s)
		queue = append(queue, s.UsedSubroutines()...)
	}
	fmt.Fprint(w, "}\n")
}

func printCluster(w io.Writer, s *Subroutine) {
	fmt.Fprintf(w, "\n\tsubgraph cluster_%d {\n\t\tlabel=%q;\n", s.id, s.String())
	for _, b := range s.blocks {
		fmt.Fprintf(w, "\t\t%q [label=%q];\n", nodeName(b), blockLabel(b))
	}
	for _, b := range s.blocks {
		for _, e := range s.succ[b] {
			label := e.Tag.String()
			if subs := s.EdgeSubroutines(e.From, e.To); len(subs) > 0 {
				names := make([]string, len(subs))
				for i, es := range subs {
					names[i] = fmt.Sprintf("%s SR%d", es.Tag, es.Subroutine.id)
				}
				label += " [" + strings.Join(names, ", ") + "]"
			}
			fmt.Fprintf(w, "\t\t%q -> %q [label=%q];\n", nodeName(e.From), nodeName(e.To), label)
		}
	}
	fmt.Fprint(w, "\t}\n")
}

func nodeName(b *Block) string {
	return fmt.Sprintf("SR%d:B%d", b.sub.id, b.Index)
}

func blockLabel(b *Block) string {
	var sb strings.Builder
	sb.WriteString(b.String())
	for _, l := range b.labels {
		fmt.Fprintf(&sb, "\n%s: %s", l, b.sub.code.Decode(l))
	}
	return sb.String()
}

// RenderToGraphVizFile renders dot source with the GraphViz dot binary.
// The output format follows the file extension and defaults to svg.
func RenderToGraphVizFile(data []byte, output string) error {
	format := strings.TrimPrefix(filepath.Ext(output), ".")
	if format == "" {
		format = "svg"
	}
	cmd := exec.Command("dot", "-T"+format, "-o", output)
	cmd.Stdin = bytes.NewReader(data)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("running dot: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}
