package rel

import (
	"sort"
	"sync"

	"github.com/featurebasedb/rel/logger"
)

// Registry holds named relations, commands, and mappers. It is an explicit
// value constructed once at startup and passed by reference into whatever
// composes pipelines — there is no package-level registry. Registration
// normally happens during single-threaded bootstrap, but the registry is
// safe for concurrent use regardless.
type Registry struct {
	mu        sync.RWMutex
	relations map[string]*Relation
	commands  map[string]*Command
	mappers   map[string]*Mapper
	log       logger.Logger
}

// NewRegistry returns an empty registry. A nil log defaults to
// logger.NopLogger.
func NewRegistry(log logger.Logger) *Registry {
	if log == nil {
		log = logger.NopLogger
	}
	return &Registry{
		relations: make(map[string]*Relation),
		commands:  make(map[string]*Command),
		mappers:   make(map[string]*Mapper),
		log:       log,
	}
}

// RegisterRelation adds r under its name; a duplicate name is rejected.
func (g *Registry) RegisterRelation(r *Relation) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.relations[r.Name()]; ok {
		return NewErrRelationExists(r.Name())
	}
	g.relations[r.Name()] = r
	g.log.Debugf("registered relation %s", r.Name())
	return nil
}

// Relation returns the named relation.
func (g *Registry) Relation(name string) (*Relation, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	r, ok := g.relations[name]
	if !ok {
		return nil, NewErrRelationDoesNotExist(name)
	}
	return r, nil
}

// RegisterCommand adds c under its name; a duplicate name is rejected.
func (g *Registry) RegisterCommand(c *Command) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.commands[c.Name()]; ok {
		return NewErrCommandExists(c.Name())
	}
	g.commands[c.Name()] = c
	g.log.Debugf("registered command %s", c.Name())
	return nil
}

// Command returns the named command.
func (g *Registry) Command(name string) (*Command, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	c, ok := g.commands[name]
	if !ok {
		return nil, NewErrCommandDoesNotExist(name)
	}
	return c, nil
}

// RegisterMapper adds m under its name; a duplicate name is rejected.
func (g *Registry) RegisterMapper(m *Mapper) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.mappers[m.Name()]; ok {
		return NewErrMapperExists(m.Name())
	}
	g.mappers[m.Name()] = m
	g.log.Debugf("registered mapper %s", m.Name())
	return nil
}

// Mapper returns the named mapper.
func (g *Registry) Mapper(name string) (*Mapper, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	m, ok := g.mappers[name]
	if !ok {
		return nil, NewErrMapperDoesNotExist(name)
	}
	return m, nil
}

// RelationNames returns the registered relation names, sorted.
func (g *Registry) RelationNames() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]string, 0, len(g.relations))
	for name := range g.relations {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
