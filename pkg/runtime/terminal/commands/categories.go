package commands

import (
	"github.com/spf13/cobra"

	"github.com/de-tools/compliance-atlas/pkg/services/config"
)

type CategoriesCmd struct {
	globals    *Globals
	provider   string
	categories string
}

func NewCategoriesCmd(globals *Globals) *cobra.Command {
	cc := &CategoriesCmd{globals: globals}
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Print the effective category map in INI form",
		RunE:  cc.run,
	}

	cmd.Flags().StringVar(&cc.provider, "provider", "", "Category preset (aws or gcp)")
	cmd.Flags().StringVar(&cc.categories, "categories", "", "INI file overriding the category map")

	return cmd
}

func (cc *CategoriesCmd) run(cmd *cobra.Command, _ []string) error {
	cfg, err := cc.globals.LoadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("provider") {
		cfg.Provider = cc.provider
	}
	if cmd.Flags().Changed("categories") {
		cfg.Categories = cc.categories
	}

	ac, err := cfg.AnnotationConfig()
	if err != nil {
		return err
	}
	return config.WriteCategories(cmd.OutOrStdout(), ac.Categories)
}
