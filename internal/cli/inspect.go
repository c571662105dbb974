package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/traitforge/pkg/configure"
	"github.com/matzehuels/traitforge/pkg/dna"
	"github.com/matzehuels/traitforge/pkg/errors"
	"github.com/matzehuels/traitforge/pkg/scene"
)

// inspectCommand creates the inspect command. Without arguments it prints
// how often each slot value occurs in the set; with an id it prints the
// scene configuration that vector produces.
func (c *CLI) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [id]",
		Short: "Show DNA set statistics or the configuration of one vector",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			in, err := c.loadInputs(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				printSummary(in)
				return nil
			}
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return errors.New(errors.ErrCodeInvalidInput, "id %q is not a number", args[0])
			}
			out, err := c.describe(in, id)
			if err != nil {
				return err
			}
			fmt.Print(out)
			return nil
		},
	}
}

// printSummary prints one table row per slot with the number of vectors
// holding each value.
func printSummary(in *inputs) {
	sum := dna.Summarize(in.set, in.bank)

	width := 0
	for _, s := range dna.Slots() {
		width = max(width, len(sum.Counts[s]))
	}
	headers := []string{"Slot"}
	for v := range width {
		headers = append(headers, strconv.Itoa(v))
	}

	var rows [][]string
	for _, s := range dna.Slots() {
		row := []string{s.String()}
		for v := range width {
			cell := ""
			if v < len(sum.Counts[s]) {
				cell = strconv.Itoa(sum.Counts[s][v])
			}
			row = append(row, cell)
		}
		rows = append(rows, row)
	}

	fmt.Println(styleTitle.Render(in.cfg.DNAFile))
	printSetStats(sum.Size, sum.Capacity, sum.Coverage())
	fmt.Println(newTable(headers, rows).Render())
}

// describe configures a copy of the scene with vector id and renders the
// result as text.
func (c *CLI) describe(in *inputs, id int) (string, error) {
	v, err := in.set.At(id)
	if err != nil {
		return "", err
	}
	conf := configure.New(in.scene.Clone(), in.colors, c.Logger)
	if err := conf.Apply(v); err != nil {
		return "", err
	}
	st := conf.Scene().Snapshot()

	var b strings.Builder
	b.WriteString(styleTitle.Render(fmt.Sprintf("#%d", id)) + " " + styleValue.Render(v.String()) + "\n\n")

	visible := st.Visible()
	var rows [][]string
	for _, g := range st.Parts {
		rows = append(rows, []string{g.Name, strings.Join(visible[g.Name], ", ")})
	}
	rows = append(rows, []string{"Body", strings.Join(st.Body.Materials, ", ")})
	if pair, err := in.colors.Pair(v[dna.Color]); err == nil {
		rows = append(rows, []string{"Color", swatch(pair.First.Hex()) + " " + swatch(pair.Second.Hex())})
	}
	if e, err := in.colors.Entry(v[dna.Color]); err == nil {
		rows = append(rows, []string{"Combination", fmt.Sprintf("%d: %s / %s", v[dna.Color], e.Color1, e.Color2)})
	}
	b.WriteString(newTable([]string{"Part", "Shown"}, rows).Render())
	b.WriteString("\n")

	var mats [][]string
	for _, name := range usedMaterials(st) {
		m, ok := st.Material(name)
		if !ok || len(m.Hex) == 0 {
			continue
		}
		var stops []string
		for _, h := range m.Hex {
			stops = append(stops, swatch(h))
		}
		mats = append(mats, []string{m.Name, strings.Join(stops, " ")})
	}
	if len(mats) > 0 {
		b.WriteString(newTable([]string{"Material", "Ramp"}, mats).Render())
		b.WriteString("\n")
	}
	return b.String(), nil
}

// usedMaterials lists the materials assigned to the body and to visible
// objects, in first-use order.
func usedMaterials(st scene.State) []string {
	var names []string
	seen := map[string]bool{}
	var walk func(o scene.ObjectState)
	walk = func(o scene.ObjectState) {
		for _, m := range o.Materials {
			if m != "" && !seen[m] {
				seen[m] = true
				names = append(names, m)
			}
		}
		for _, ch := range o.Children {
			walk(ch)
		}
	}
	walk(st.Body)
	for _, g := range st.Parts {
		for _, v := range g.Variants {
			if !v.Visible {
				continue
			}
			for _, o := range v.Objects {
				walk(o)
			}
		}
	}
	return names
}
