package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jwalton/gchalk"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/minepkg/propack/internals/commands"
	"github.com/minepkg/propack/pkg/manifest"
	"github.com/minepkg/propack/pkg/meshmap"
)

func init() {
	runner := &mappingRunner{}
	cmd := commands.New(&cobra.Command{
		Use:   "mapping <pack.propack>",
		Short: "Prints the custom model data ids of a built pack",
		Args:  cobra.ExactArgs(1),
	}, runner)

	cmd.Flags().StringVarP(&runner.format, "format", "f", "table", "Output format: table, json or yaml")

	rootCmd.AddCommand(cmd.Command)
}

type mappingRunner struct {
	format string
}

func (m *mappingRunner) RunE(cmd *cobra.Command, args []string) error {
	p, err := manifest.ReadPack(args[0])
	if err != nil {
		return &commands.CliError{Text: "could not load " + args[0], Help: err.Error(), Err: err}
	}

	switch m.format {
	case "table":
		printMappingTable(p.Mapping)
	case "json":
		out, err := json.MarshalIndent(p.Mapping, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(mappingTree(p.Mapping))
	default:
		return &commands.CliError{
			Text:        fmt.Sprintf("unknown format %q", m.format),
			Suggestions: []string{"Use one of table, json or yaml"},
		}
	}
	return nil
}

// mappingTree returns item -> mesh -> id with string keys
func mappingTree(mapping *meshmap.Mapping) map[string]map[string]int {
	out := map[string]map[string]int{}
	for _, item := range mapping.Items() {
		meshes := map[string]int{}
		for _, e := range mapping.Entries(item) {
			meshes[e.Mesh.String()] = e.ID
		}
		out[item.String()] = meshes
	}
	return out
}

func printMappingTable(mapping *meshmap.Mapping) {
	if mapping.Len() == 0 {
		logger.Info("No meshes are mapped")
		return
	}
	for _, item := range mapping.Items() {
		fmt.Println(gchalk.Bold(item.String()))
		for _, e := range mapping.Entries(item) {
			fmt.Printf("  %s %s\n", gchalk.Cyan(fmt.Sprintf("%6d", e.ID)), e.Mesh)
		}
	}
}
