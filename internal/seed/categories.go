package seed

import (
	_ "embed"
	"fmt"

	"tribune/internal/models"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

//go:embed categories.yml
var categoriesYAML []byte

type categoryFixture struct {
	Categories []struct {
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
	} `yaml:"categories"`
}

// Categories ensures the built-in category set exists. Existing categories
// are matched by name and left alone, so the call is idempotent and safe
// during runtime bootstrap.
func Categories(db *gorm.DB) ([]*models.Category, error) {
	var fixture categoryFixture
	if err := yaml.Unmarshal(categoriesYAML, &fixture); err != nil {
		return nil, fmt.Errorf("parse category fixture: %w", err)
	}

	out := make([]*models.Category, 0, len(fixture.Categories))
	for _, c := range fixture.Categories {
		category := &models.Category{Name: c.Name, Description: c.Description}
		err := db.Where("name = ?", c.Name).FirstOrCreate(category).Error
		if err != nil {
			return nil, fmt.Errorf("ensure category %q: %w", c.Name, err)
		}
		out = append(out, category)
	}
	return out, nil
}
