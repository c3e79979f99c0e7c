// Package seed loads starter dishes and menus from YAML.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"

	"menu-planner/internal/model"
	"menu-planner/internal/service"
)

// File is the seed document.
//
//	dishes:
//	  - type: first
//	    name: {en: Salad, es: Ensalada, ca: Amanida}
//	menus:
//	  - name: {en: Weekday, es: Diario, ca: Diari}
//	    description: {en: Quick lunch}
type File struct {
	Dishes []Dish `yaml:"dishes"`
	Menus  []Menu `yaml:"menus"`
}

type Dish struct {
	Type string              `yaml:"type"`
	Name model.LocalizedText `yaml:"name"`
}

type Menu struct {
	Name        model.LocalizedText `yaml:"name"`
	Description model.LocalizedText `yaml:"description"`
}

// Result counts what Apply did.
type Result struct {
	Dishes  int
	Menus   int
	Skipped int
}

// Parse decodes a seed document, rejecting unknown keys.
func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	return &f, nil
}

// LoadFile reads and parses a seed file.
func LoadFile(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed: %w", err)
	}
	defer fh.Close()
	return Parse(fh)
}

// Apply creates the dishes and menus of f for user. Entries whose English name already
// exists are skipped, so a file can be applied more than once.
func Apply(ctx context.Context, f *File, user *model.Account, dishes *service.DishService, menus *service.MenuService) (Result, error) {
	var res Result

	existingDishes, err := dishes.List(ctx, user)
	if err != nil {
		return res, err
	}
	seen := make(map[string]bool, len(existingDishes))
	for _, d := range existingDishes {
		seen[key(d.Name)] = true
	}
	for i, d := range f.Dishes {
		if seen[key(d.Name)] {
			res.Skipped++
			continue
		}
		if _, err := dishes.Create(ctx, user, service.DishInput{Name: d.Name, Type: model.Course(d.Type)}); err != nil {
			return res, fmt.Errorf("dish #%d: %w", i+1, err)
		}
		seen[key(d.Name)] = true
		res.Dishes++
	}

	existingMenus, err := menus.List(ctx, user)
	if err != nil {
		return res, err
	}
	seen = make(map[string]bool, len(existingMenus))
	for _, m := range existingMenus {
		seen[key(m.Name)] = true
	}
	for i, m := range f.Menus {
		if seen[key(m.Name)] {
			res.Skipped++
			continue
		}
		if _, err := menus.Create(ctx, user, service.MenuInput{Name: m.Name, Description: m.Description}); err != nil {
			return res, fmt.Errorf("menu #%d: %w", i+1, err)
		}
		seen[key(m.Name)] = true
		res.Menus++
	}

	return res, nil
}

func key(name model.LocalizedText) string {
	return cases.Fold().String(strings.TrimSpace(name.En))
}
