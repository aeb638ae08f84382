package stubapi

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrNotFound возвращается, когда документа с таким _id нет
var ErrNotFound = errors.New("not found")

// Document is one stored record in the remote service's wire shape.
type Document map[string]any

func (d Document) clone() Document {
	cp := make(Document, len(d))
	for k, v := range d {
		cp[k] = v
	}
	return cp
}

// collection хранит документы и порядок вставки
type collection struct {
	order []string
	byID  map[string]Document
}

// Documents is an in-memory, Mongo-style document store: each document gets
// a generated `_id` and collections list in insertion order.
type Documents struct {
	mu    sync.RWMutex
	colls map[string]*collection
	newID func() string
}

func NewDocuments() *Documents {
	return &Documents{
		colls: make(map[string]*collection),
		newID: func() string { return uuid.NewString() },
	}
}

func (d *Documents) coll(name string) *collection {
	c, ok := d.colls[name]
	if !ok {
		c = &collection{byID: make(map[string]Document)}
		d.colls[name] = c
	}
	return c
}

// Insert stores doc under a fresh _id and returns the stored copy.
func (d *Documents) Insert(name string, doc Document) Document {
	d.mu.Lock()
	defer d.mu.Unlock()
	cp := doc.clone()
	id := d.newID()
	cp["_id"] = id
	c := d.coll(name)
	c.order = append(c.order, id)
	c.byID[id] = cp
	return cp.clone()
}

// Seed stores docs as given, keeping any _id they carry. Used to load
// fixtures in the looser shapes real servers return.
func (d *Documents) Seed(name string, docs ...Document) {
	d.mu.Lock()
	defer d.mu.Unlock()
	c := d.coll(name)
	for _, doc := range docs {
		cp := doc.clone()
		id, _ := cp["_id"].(string)
		if id == "" {
			id = d.newID()
			cp["_id"] = id
		}
		if _, exists := c.byID[id]; !exists {
			c.order = append(c.order, id)
		}
		c.byID[id] = cp
	}
}

func (d *Documents) List(name string) []Document {
	d.mu.RLock()
	defer d.mu.RUnlock()
	c, ok := d.colls[name]
	if !ok {
		return []Document{}
	}
	out := make([]Document, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id].clone())
	}
	return out
}

func (d *Documents) Get(name, id string) (Document, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	c, ok := d.colls[name]
	if !ok {
		return nil, ErrNotFound
	}
	doc, ok := c.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return doc.clone(), nil
}

// Replace overwrites the document's fields; the _id is preserved.
func (d *Documents) Replace(name, id string, doc Document) (Document, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, ok := d.colls[name]
	if !ok {
		return nil, ErrNotFound
	}
	if _, ok := c.byID[id]; !ok {
		return nil, ErrNotFound
	}
	cp := doc.clone()
	cp["_id"] = id
	c.byID[id] = cp
	return cp.clone(), nil
}

func (d *Documents) Delete(name, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, ok := d.colls[name]
	if !ok {
		return ErrNotFound
	}
	if _, ok := c.byID[id]; !ok {
		return ErrNotFound
	}
	delete(c.byID, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}
