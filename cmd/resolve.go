package cmd

import (
	"fmt"
	"strings"

	"github.com/jwalton/gchalk"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/minepkg/propack/internals/commands"
	"github.com/minepkg/propack/internals/runtime"
	"github.com/minepkg/propack/pkg/combination"
	"github.com/minepkg/propack/pkg/itemmodel"
	"github.com/minepkg/propack/pkg/rpath"
)

func init() {
	runner := &resolveRunner{}
	cmd := commands.New(&cobra.Command{
		Use:   "resolve <pack.propack> <item> <model>",
		Short: "Shows which mesh and custom model data an item stack gets",
		Example: `
  propack resolve build/swords.propack diamond_sword fancy:item/sword --element gem --element hilt
  propack resolve build/hats.propack leather_helmet fancy:hat/hat --slot hat=red`,
		Args: cobra.ExactArgs(3),
	}, runner)

	cmd.Flags().StringArrayVarP(&runner.elements, "element", "e", nil, "Selected element of a combined item model")
	cmd.Flags().StringArrayVarP(&runner.slots, "slot", "s", nil, "Selected slot entry of a slot item model as slot=entry")

	rootCmd.AddCommand(cmd.Command)
}

type resolveRunner struct {
	elements []string
	slots    []string
}

func (r *resolveRunner) RunE(cmd *cobra.Command, args []string) error {
	res, err := runtime.LoadResources(args[0])
	if err != nil {
		return &commands.CliError{Text: "could not load " + args[0], Help: err.Error(), Err: err}
	}
	item, err := rpath.Parse(args[1])
	if err != nil {
		return err
	}
	model, err := rpath.Parse(args[2])
	if err != nil {
		return err
	}
	sel, err := r.selection()
	if err != nil {
		return err
	}

	log := newLogger()
	defer log.Sync()
	resolver, err := runtime.NewResolver(runtime.NewStore(res), runtime.Options{
		Logger:        log,
		Debug:         viper.GetBool("patchdebug"),
		ServerVersion: viper.GetString("serverversion"),
	})
	if err != nil {
		return err
	}
	result, err := resolver.Lookup(item, model, sel)
	if err != nil {
		return &commands.CliError{
			Text:        fmt.Sprintf("%s can not be resolved", model),
			Help:        err.Error(),
			Err:         err,
			Suggestions: suggestions(res, model),
		}
	}

	fmt.Printf("%s %s\n", gchalk.Bold("model:"), result.Model.Path())
	fmt.Printf("%s  %s\n", gchalk.Bold("mesh:"), result.Mesh)
	fmt.Printf("%s   %d\n", gchalk.Bold("cmd:"), result.CustomModelData)
	if p, ok := resolver.Patch(item.String(), model.String(), sel); ok && !p.ItemModel.IsZero() {
		fmt.Printf("%s  %s\n", gchalk.Bold("item model:"), p.ItemModel)
	}
	return nil
}

func (r *resolveRunner) selection() (itemmodel.Selection, error) {
	sel := itemmodel.Selection{Elements: r.elements}
	if len(r.slots) != 0 {
		sel.Slots = combination.Selection{}
	}
	for _, s := range r.slots {
		slot, entry, ok := strings.Cut(s, "=")
		if !ok {
			return sel, fmt.Errorf("invalid slot %q, use slot=entry", s)
		}
		sel.Slots[slot] = entry
	}
	return sel, nil
}

// suggestions lists what the model accepts
func suggestions(res *runtime.Resources, model rpath.Path) []string {
	v, ok := res.Model(model)
	if !ok {
		return nil
	}
	switch m := v.(type) {
	case *itemmodel.Combined:
		return []string{"Available elements: " + strings.Join(m.Elements(), ", ")}
	case *itemmodel.Slotted:
		out := []string{}
		for _, slot := range m.Slots() {
			out = append(out, fmt.Sprintf("Slot %s: %s", slot.Name, strings.Join(slot.Entries, ", ")))
		}
		return out
	}
	return nil
}
