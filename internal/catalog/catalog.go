package catalog

import (
	"encoding/json"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/KirkDiggler/dungeon-run-discord/internal/domain/dungeon"
)

// Catalog holds every dungeon definition, loaded once at startup and
// read-only afterward
type Catalog struct {
	definitions []*dungeon.Definition
	byID        map[string]*dungeon.Definition
}

// Load reads dungeon definitions from the given JSON file. A missing or
// unparseable file degrades to an empty catalog: no dungeons become
// enqueable, but the bot stays up.
func Load(path string) *Catalog {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("dungeon catalog unavailable at %s: %v", path, err)
		return New(nil)
	}

	var defs []*dungeon.Definition
	if err := json.Unmarshal(data, &defs); err != nil {
		log.Printf("failed to parse dungeon catalog %s: %v", path, err)
		return New(nil)
	}

	return New(defs)
}

// New builds a catalog from in-memory definitions
func New(defs []*dungeon.Definition) *Catalog {
	c := &Catalog{
		definitions: defs,
		byID:        make(map[string]*dungeon.Definition, len(defs)),
	}
	for _, d := range defs {
		c.byID[strings.ToLower(d.ID)] = d
	}
	return c
}

// All returns every definition
func (c *Catalog) All() []*dungeon.Definition {
	return c.definitions
}

// Len returns the number of loaded definitions
func (c *Catalog) Len() int {
	return len(c.definitions)
}

// Get looks a dungeon up by id or name, case-insensitively
func (c *Catalog) Get(idOrName string) *dungeon.Definition {
	key := strings.ToLower(strings.TrimSpace(idOrName))
	if key == "" {
		return nil
	}
	if d, ok := c.byID[key]; ok {
		return d
	}
	for _, d := range c.definitions {
		if strings.EqualFold(d.Name, idOrName) {
			return d
		}
	}
	return nil
}

// BestFor returns the highest-minLevel dungeon the level qualifies for
func (c *Catalog) BestFor(level int) *dungeon.Definition {
	eligible := make([]*dungeon.Definition, 0, len(c.definitions))
	for _, d := range c.definitions {
		if level >= d.MinLevel {
			eligible = append(eligible, d)
		}
	}
	if len(eligible) == 0 {
		return nil
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].MinLevel > eligible[j].MinLevel
	})
	return eligible[0]
}
