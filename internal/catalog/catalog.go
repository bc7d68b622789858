// Package catalog loads the restaurant layout: tables, menu categories,
// menu items with their modifiers, and the starting staff roster.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/cboy-pos/api/internal/auth"
	"github.com/cboy-pos/api/internal/enum"
	"github.com/cboy-pos/api/internal/pos"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed layout.yaml
var defaultLayout []byte

var (
	ErrNoTables        = errors.New("layout has no tables")
	ErrDuplicateID     = errors.New("duplicate id")
	ErrUnknownCategory = errors.New("unknown category")
	ErrUnknownModifier = errors.New("unknown modifier")
	ErrInvalidPrice    = errors.New("invalid price")
)

// --- YAML document ---

type document struct {
	Tables     []tableDoc             `yaml:"tables"`
	Categories []categoryDoc          `yaml:"categories"`
	Modifiers  map[string]modifierDoc `yaml:"modifiers"`
	Menu       []menuItemDoc          `yaml:"menu"`
	Staff      []staffDoc             `yaml:"staff"`
}

type tableDoc struct {
	ID       string `yaml:"id"`
	Number   int    `yaml:"number"`
	Capacity int    `yaml:"capacity"`
}

type categoryDoc struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Icon  string `yaml:"icon"`
	Color string `yaml:"color"`
}

type modifierDoc struct {
	Name  string `yaml:"name"`
	Price string `yaml:"price"`
}

type menuItemDoc struct {
	ID              string   `yaml:"id"`
	Name            string   `yaml:"name"`
	Description     string   `yaml:"description"`
	Price           string   `yaml:"price"`
	Category        string   `yaml:"category"`
	Available       *bool    `yaml:"available"`
	PreparationTime int      `yaml:"preparation_time"`
	Modifiers       []string `yaml:"modifiers"`
}

type staffDoc struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Role string `yaml:"role"`
	Pin  string `yaml:"pin"`
}

// Catalog is a parsed layout. Menu data is read-only once loaded.
type Catalog struct {
	Tables     []pos.Table
	Categories []pos.Category
	Menu       []pos.MenuItem

	staff []staffDoc
	items map[string]int
}

// Load reads the layout at path, or the built-in layout when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Parse(defaultLayout)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layout: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML layout.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	if len(doc.Tables) == 0 {
		return nil, ErrNoTables
	}

	c := &Catalog{items: make(map[string]int, len(doc.Menu))}

	seenTables := map[int]bool{}
	for _, t := range doc.Tables {
		if seenTables[t.Number] {
			return nil, fmt.Errorf("table %d: %w", t.Number, ErrDuplicateID)
		}
		seenTables[t.Number] = true
		id := t.ID
		if id == "" {
			id = fmt.Sprintf("t%d", t.Number)
		}
		c.Tables = append(c.Tables, pos.Table{ID: id, Number: t.Number, Capacity: t.Capacity, Status: enum.TableStatusAvailable})
	}
	sort.Slice(c.Tables, func(i, j int) bool { return c.Tables[i].Number < c.Tables[j].Number })

	categories := map[string]bool{}
	for _, cat := range doc.Categories {
		if categories[cat.ID] {
			return nil, fmt.Errorf("category %q: %w", cat.ID, ErrDuplicateID)
		}
		categories[cat.ID] = true
		c.Categories = append(c.Categories, pos.Category{ID: cat.ID, Name: cat.Name, Icon: cat.Icon, Color: cat.Color})
	}

	modifiers := make(map[string]pos.Modifier, len(doc.Modifiers))
	for id, m := range doc.Modifiers {
		price, err := parsePrice(m.Price)
		if err != nil {
			return nil, fmt.Errorf("modifier %q: %w", id, err)
		}
		modifiers[id] = pos.Modifier{ID: id, Name: m.Name, Price: price}
	}

	for _, m := range doc.Menu {
		if _, dup := c.items[m.ID]; dup {
			return nil, fmt.Errorf("menu item %q: %w", m.ID, ErrDuplicateID)
		}
		if !categories[m.Category] {
			return nil, fmt.Errorf("menu item %q: %w %q", m.ID, ErrUnknownCategory, m.Category)
		}
		price, err := parsePrice(m.Price)
		if err != nil {
			return nil, fmt.Errorf("menu item %q: %w", m.ID, err)
		}
		item := pos.MenuItem{
			ID:              m.ID,
			Name:            m.Name,
			Description:     m.Description,
			Price:           price,
			Category:        m.Category,
			IsAvailable:     m.Available == nil || *m.Available,
			PreparationTime: m.PreparationTime,
		}
		for _, modID := range m.Modifiers {
			mod, ok := modifiers[modID]
			if !ok {
				return nil, fmt.Errorf("menu item %q: %w %q", m.ID, ErrUnknownModifier, modID)
			}
			item.Modifiers = append(item.Modifiers, mod)
		}
		c.items[m.ID] = len(c.Menu)
		c.Menu = append(c.Menu, item)
	}

	c.staff = doc.Staff
	return c, nil
}

func parsePrice(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidPrice, s)
	}
	return d, nil
}

// Item returns the menu item with the given id.
func (c *Catalog) Item(id string) (pos.MenuItem, bool) {
	i, ok := c.items[id]
	if !ok {
		return pos.MenuItem{}, false
	}
	return c.Menu[i], true
}

// Modifiers resolves modifier ids against the ones offered for item, in the
// order given. Unknown ids are rejected.
func (c *Catalog) Modifiers(item pos.MenuItem, ids []string) ([]pos.Modifier, error) {
	out := make([]pos.Modifier, 0, len(ids))
	for _, id := range ids {
		found := false
		for _, m := range item.Modifiers {
			if m.ID == id {
				out = append(out, m)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w %q for %s", ErrUnknownModifier, id, item.ID)
		}
	}
	return out, nil
}

// ItemsInCategory returns the menu items of one category, or all of them
// when category is empty.
func (c *Catalog) ItemsInCategory(category string) []pos.MenuItem {
	if category == "" {
		return c.Menu
	}
	var out []pos.MenuItem
	for _, m := range c.Menu {
		if m.Category == category {
			out = append(out, m)
		}
	}
	return out
}

// Roster returns the seed staff with PINs hashed.
func (c *Catalog) Roster() ([]pos.Staff, error) {
	out := make([]pos.Staff, 0, len(c.staff))
	seen := map[string]bool{}
	for _, s := range c.staff {
		if seen[s.ID] {
			return nil, fmt.Errorf("staff %q: %w", s.ID, ErrDuplicateID)
		}
		seen[s.ID] = true
		if !enum.IsRole(s.Role) {
			return nil, fmt.Errorf("staff %q: %w", s.ID, pos.ErrInvalidRole)
		}
		hash, err := auth.HashPin(s.Pin)
		if err != nil {
			return nil, fmt.Errorf("staff %q: %w", s.ID, err)
		}
		out = append(out, pos.Staff{ID: s.ID, Name: pos.NormalizeName(s.Name), Role: s.Role, Pin: hash})
	}
	return out, nil
}

// InitialState builds the startup snapshot from the layout.
func (c *Catalog) InitialState() (pos.State, error) {
	roster, err := c.Roster()
	if err != nil {
		return pos.State{}, err
	}
	return pos.NewState(c.Tables, roster), nil
}

// ListCategories returns the menu categories in layout order.
func (c *Catalog) ListCategories() []pos.Category {
	return c.Categories
}
