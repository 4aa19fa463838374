package report

import (
	"io"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// WriteHCL renders d as HCL: one source block per source, holding one
// component block per component.
func WriteHCL(w io.Writer, d *Dump) error {
	f := hclwrite.NewEmptyFile()
	body := f.Body()
	body.SetAttributeValue("run_id", cty.StringVal(d.RunID))

	for _, s := range d.Sources {
		body.AppendNewline()
		src := body.AppendNewBlock("source", []string{s.Source}).Body()
		for i, e := range s.Components {
			if i > 0 {
				src.AppendNewline()
			}
			c := src.AppendNewBlock("component", []string{e.Name}).Body()
			c.SetAttributeValue("id", cty.NumberIntVal(e.ID))
			c.SetAttributeValue("type", cty.StringVal(e.Type))
			if len(e.Properties) > 0 {
				props := make(map[string]cty.Value, len(e.Properties))
				for k, v := range e.Properties {
					props[k] = cty.StringVal(v)
				}
				c.SetAttributeValue("properties", cty.MapVal(props))
			}
		}
	}

	_, err := f.WriteTo(w)
	return err
}
