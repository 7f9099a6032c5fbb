package config

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/de-tools/compliance-atlas/pkg/models/domain"
)

// ServicesKey lists the service titles of a category section
const ServicesKey = "services"

// LoadCategories reads a category map from an INI file, one section per category:
//
//	[Compute]
//	services = EC2, Lambda, Auto Scaling
func LoadCategories(path string) (domain.CategoryMap, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return domain.CategoryMap{}, &domain.ConfigurationError{Op: "categories", Err: fmt.Errorf("failed to read %s: %w", path, err)}
	}

	var categories []domain.Category
	for _, section := range cfg.Sections() {
		if section.Name() == ini.DefaultSection && len(section.Keys()) == 0 {
			continue
		}

		var services []string
		for _, s := range strings.Split(section.Key(ServicesKey).String(), ",") {
			if s = strings.TrimSpace(s); s != "" {
				services = append(services, s)
			}
		}
		categories = append(categories, domain.Category{Name: section.Name(), Services: services})
	}

	cm, err := domain.NewCategoryMap(categories)
	if err != nil {
		return domain.CategoryMap{}, &domain.ConfigurationError{Op: "categories", Err: err}
	}
	return cm, nil
}

// WriteCategories renders the category map in the format LoadCategories reads
func WriteCategories(w io.Writer, cm domain.CategoryMap) error {
	cfg := ini.Empty()
	for _, c := range cm.Categories() {
		section, err := cfg.NewSection(c.Name)
		if err != nil {
			return fmt.Errorf("failed to add category %s: %w", c.Name, err)
		}
		if _, err := section.NewKey(ServicesKey, strings.Join(c.Services, ", ")); err != nil {
			return fmt.Errorf("failed to add services of %s: %w", c.Name, err)
		}
	}
	_, err := cfg.WriteTo(w)
	return err
}
