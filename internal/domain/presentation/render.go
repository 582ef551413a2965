package presentation

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

var cardTemplate = template.Must(template.New("card.html.tmpl").Funcs(template.FuncMap{
	"selects": func(c *Controls) []*Select {
		var out []*Select
		for _, s := range []*Select{c.Mode, c.Profile} {
			if s != nil {
				out = append(out, s)
			}
		}
		return out
	},
}).ParseFS(templateFS, "templates/card.html.tmpl"))

// RenderHTML writes the card as a standalone HTML page. The page follows
// /ws and swaps in the pushed markup.
func RenderHTML(w io.Writer, v View) error {
	return cardTemplate.ExecuteTemplate(w, "card", v)
}

// RenderFace writes only the inner markup of the card.
func RenderFace(w io.Writer, v View) error {
	return cardTemplate.ExecuteTemplate(w, "face", v)
}

// RenderText writes a terminal friendly version of the card.
func RenderText(w io.Writer, v View) error {
	var b strings.Builder
	switch v.Status {
	case StatusUnconfigured, StatusEmpty:
		fmt.Fprintf(&b, "%s\n%s\n", v.Name, v.Message)
		_, err := io.WriteString(w, b.String())
		return err
	}

	power := ""
	if v.Power {
		power = " [off]"
		if v.Active {
			power = " [on]"
		}
	}
	fmt.Fprintf(&b, "%s%s\n", v.Name, power)
	if v.Device != "" {
		fmt.Fprintf(&b, "Device: %s\n", v.Device)
	}
	fmt.Fprintf(&b, "Mode: %s\n", v.Mode.Label)
	fmt.Fprintf(&b, "Temperature: %s %s\n", v.CurrentTempLabel(), v.TargetTempLabel())
	if v.Profile != nil {
		fmt.Fprintln(&b, v.Profile.String())
	}
	if v.Weight != nil {
		fmt.Fprintln(&b, v.Weight.String())
	}
	if c := v.Controls; c != nil {
		for _, s := range []*Select{c.Mode, c.Profile} {
			if s == nil {
				continue
			}
			opts := make([]string, 0, len(s.Options))
			for _, o := range s.Options {
				if o.Selected {
					opts = append(opts, "*"+o.Value)
				} else {
					opts = append(opts, o.Value)
				}
			}
			fmt.Fprintf(&b, "%s: %s\n", s.Label, strings.Join(opts, ", "))
		}
		if n := c.TargetTemp; n != nil {
			fmt.Fprintf(&b, "%s: %s (%g-%g, step %g)\n", n.Label, n.Value, n.Min, n.Max, n.Step)
		}
		if len(c.Buttons) > 0 {
			labels := make([]string, 0, len(c.Buttons))
			for _, btn := range c.Buttons {
				labels = append(labels, btn.Label)
			}
			fmt.Fprintf(&b, "Actions: %s\n", strings.Join(labels, ", "))
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
