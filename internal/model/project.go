package model

import "sort"

// Project owns the reflection tree for one conversion run. The registry maps
// stable IDs to reflections; IDs are dense and assigned in registration
// order, so walking ascending IDs replays construction order.
type Project struct {
	Root   *Reflection
	byID   map[int]*Reflection
	nextID int
}

// NewProject creates an empty project whose root reflection carries the
// given name.
func NewProject(name string) *Project {
	p := &Project{byID: make(map[int]*Reflection)}
	p.Root = &Reflection{Name: name, Kind: KindProject}
	p.register(p.Root)
	return p
}

func (p *Project) register(r *Reflection) {
	r.ID = p.nextID
	p.byID[r.ID] = r
	p.nextID++
}

// NewChild registers a reflection of the given kind under parent and returns
// it.
func (p *Project) NewChild(parent *Reflection, name string, kind Kind) *Reflection {
	r := &Reflection{Name: name, Kind: kind, Parent: parent}
	p.register(r)
	parent.Children = append(parent.Children, r)
	return r
}

// ByID returns the reflection with the given ID, or nil after removal.
func (p *Project) ByID(id int) *Reflection {
	return p.byID[id]
}

// Remove detaches the reflection and its whole subtree from the project.
func (p *Project) Remove(r *Reflection) {
	if r == nil || r == p.Root {
		return
	}
	if parent := r.Parent; parent != nil {
		kept := parent.Children[:0]
		for _, c := range parent.Children {
			if c != r {
				kept = append(kept, c)
			}
		}
		parent.Children = kept
	}
	p.forget(r)
}

func (p *Project) forget(r *Reflection) {
	delete(p.byID, r.ID)
	for _, c := range r.Children {
		p.forget(c)
	}
}

// Walk visits every registered reflection in ascending ID order.
func (p *Project) Walk(visit func(*Reflection)) {
	ids := make([]int, 0, len(p.byID))
	for id := range p.byID {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		visit(p.byID[id])
	}
}

// Len returns the number of registered reflections, the root included.
func (p *Project) Len() int {
	return len(p.byID)
}
