package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stixforge/stixforge/internal/catalog"
)

func newCatalogCmd() *cobra.Command {
	var namespace string

	cmd := &cobra.Command{
		Use:   "catalog [selector...]",
		Short: "List known extraction types, or resolve selectors against the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				resolved, err := catalog.Default.Resolve(args)
				if err != nil {
					return err
				}
				for _, id := range resolved {
					fmt.Println(id)
				}
				return nil
			}

			for _, ns := range catalog.Default.Namespaces {
				if namespace != "" && ns.Name != namespace {
					continue
				}
				fmt.Printf("%s: %s\n", ns.Name, ns.Description)
				for _, id := range ns.Extractions {
					fmt.Printf("  %s\n", id)
				}
			}
			if namespace != "" && catalog.Default.Namespace(namespace) == nil {
				return fmt.Errorf("unknown namespace %q", namespace)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&namespace, "namespace", "n", "", "limit listing to one namespace")
	return cmd
}
