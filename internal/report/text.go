package report

import (
	"bufio"
	"io"
)

// WriteText writes the listing didump prints: the source followed by each
// component name and its properties, indented by a tab.
func WriteText(w io.Writer, d *Dump) error {
	bw := bufio.NewWriter(w)
	for _, s := range d.Sources {
		bw.WriteString(s.Source + ":\n")
		for _, e := range s.Components {
			bw.WriteString(e.Name + "\n")
			for _, k := range sortedKeys(e.Properties) {
				bw.WriteString("\t" + k + "=" + e.Properties[k] + "\n")
			}
			bw.WriteString("\n")
		}
	}
	return bw.Flush()
}

// WriteDefinition writes one source in the .didef format.
func WriteDefinition(w io.Writer, s Source) error {
	bw := bufio.NewWriter(w)
	writeDefinition(bw, s)
	return bw.Flush()
}

// WriteRepository writes every source in the .direp format, which is the
// concatenation of their definitions.
func WriteRepository(w io.Writer, d *Dump) error {
	bw := bufio.NewWriter(w)
	for _, s := range d.Sources {
		writeDefinition(bw, s)
	}
	return bw.Flush()
}

func writeDefinition(bw *bufio.Writer, s Source) {
	bw.WriteString("(" + s.Source + ")\n")
	for _, e := range s.Components {
		bw.WriteString("[" + e.Name + "]\n")
		for _, k := range sortedKeys(e.Properties) {
			bw.WriteString(k + "=" + e.Properties[k] + "\n")
		}
		bw.WriteString("\n")
	}
}
