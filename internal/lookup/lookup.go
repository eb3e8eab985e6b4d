// Package lookup serves the static client and task catalogues.
package lookup

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Client is a billable client an entry can be booked against.
type Client struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// Task is a kind of work an entry records.
type Task struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// Catalog is a read-only id→name mapping for clients and tasks.
type Catalog struct {
	clients     []Client
	tasks       []Task
	clientNames map[string]string
	taskNames   map[string]string
}

type catalogFile struct {
	Clients []Client `yaml:"clients"`
	Tasks   []Task   `yaml:"tasks"`
}

// Parse builds a Catalog from YAML. Ids must be non-empty and unique per list.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	c := &Catalog{
		clients:     f.Clients,
		tasks:       f.Tasks,
		clientNames: make(map[string]string, len(f.Clients)),
		taskNames:   make(map[string]string, len(f.Tasks)),
	}
	for _, cl := range f.Clients {
		if cl.ID == "" {
			return nil, fmt.Errorf("parse catalog: client %q has no id", cl.Name)
		}
		if _, dup := c.clientNames[cl.ID]; dup {
			return nil, fmt.Errorf("parse catalog: duplicate client id %q", cl.ID)
		}
		c.clientNames[cl.ID] = cl.Name
	}
	for _, t := range f.Tasks {
		if t.ID == "" {
			return nil, fmt.Errorf("parse catalog: task %q has no id", t.Name)
		}
		if _, dup := c.taskNames[t.ID]; dup {
			return nil, fmt.Errorf("parse catalog: duplicate task id %q", t.ID)
		}
		c.taskNames[t.ID] = t.Name
	}
	return c, nil
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
)

// Default returns the embedded catalogue. It panics if the embedded file is malformed.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(defaultCatalog)
		if err != nil {
			panic(err)
		}
		defaultCat = c
	})
	return defaultCat
}

// Clients returns the clients in catalogue order.
func (c *Catalog) Clients() []Client { return append([]Client(nil), c.clients...) }

// Tasks returns the tasks in catalogue order.
func (c *Catalog) Tasks() []Task { return append([]Task(nil), c.tasks...) }

// ClientName resolves id, falling back to the id itself when unknown.
func (c *Catalog) ClientName(id string) string {
	if n, ok := c.clientNames[id]; ok {
		return n
	}
	return id
}

// TaskName resolves id, falling back to the id itself when unknown.
func (c *Catalog) TaskName(id string) string {
	if n, ok := c.taskNames[id]; ok {
		return n
	}
	return id
}
