// ABOUTME: Reads recipe definitions from YAML or JSON files for import
// ABOUTME: Accepts a single recipe document or a document with a recipes list

package recipefile

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/markalston/recipe-scaler/internal/client"
)

type ingredientDoc struct {
	Name   string  `yaml:"name"`
	Weight *int    `yaml:"weight"`
	Value  *string `yaml:"value"`
}

type recipeDoc struct {
	Name        string          `yaml:"name"`
	Ingredients []ingredientDoc `yaml:"ingredients"`
}

type fileDoc struct {
	recipeDoc `yaml:",inline"`
	Recipes   []recipeDoc `yaml:"recipes"`
}

// Load reads every recipe in the file at path
func Load(path string) ([]client.Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading recipe file: %w", err)
	}
	recipes, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return recipes, nil
}

// Parse decodes recipes from YAML (JSON is accepted as a YAML subset) and
// validates each one
func Parse(data []byte) ([]client.Recipe, error) {
	var doc fileDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing recipe file: %w", err)
	}

	docs := doc.Recipes
	if doc.Name != "" || len(doc.Ingredients) > 0 {
		docs = append([]recipeDoc{doc.recipeDoc}, docs...)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no recipes found")
	}

	recipes := make([]client.Recipe, 0, len(docs))
	seen := make(map[string]bool, len(docs))
	for i, d := range docs {
		r, err := d.toRecipe()
		if err != nil {
			return nil, fmt.Errorf("recipe %d: %w", i+1, err)
		}
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("recipe %d: %w", i+1, err)
		}
		if seen[r.Name] {
			return nil, fmt.Errorf("recipe %d: duplicate name %q", i+1, r.Name)
		}
		seen[r.Name] = true
		recipes = append(recipes, r)
	}
	return recipes, nil
}

func (d recipeDoc) toRecipe() (client.Recipe, error) {
	r := client.Recipe{
		Name:        strings.TrimSpace(d.Name),
		Ingredients: make([]client.Ingredient, 0, len(d.Ingredients)),
	}
	for _, ing := range d.Ingredients {
		name := strings.TrimSpace(ing.Name)
		switch {
		case ing.Weight != nil && ing.Value != nil:
			return client.Recipe{}, fmt.Errorf("ingredient %q has both weight and value", name)
		case ing.Value != nil:
			r.Ingredients = append(r.Ingredients, client.Freeform(name, strings.TrimSpace(*ing.Value)))
		case ing.Weight != nil:
			r.Ingredients = append(r.Ingredients, client.Weight(name, *ing.Weight))
		default:
			return client.Recipe{}, fmt.Errorf("ingredient %q has no weight or value", name)
		}
	}
	return r, nil
}
