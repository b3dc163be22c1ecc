package geometry

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"unicode"

	"github.com/jinzhu/copier"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"viz-engine/internal/math3d"
)

// UnknownConceptError is returned by Lookup for names that match no concept or alias.
// Describe recovers from it by returning the default concept.
type UnknownConceptError struct {
	Name string
}

func (e *UnknownConceptError) Error() string {
	return fmt.Sprintf("geometry: unknown concept %q", e.Name)
}

// Generator builds the primitive list of one concept. It must be pure.
type Generator struct {
	Build func() []Primitive
	// Spin is an optional whole-model rotation.
	Spin *Animation
}

type entry struct {
	id      ConceptID
	aliases []string
	gen     Generator
}

// Library maps concept names and aliases to generators and caches their descriptions.
// It is safe for concurrent use.
type Library struct {
	mu       sync.RWMutex
	entries  map[ConceptID]*entry
	index    map[string]ConceptID
	cache    map[ConceptID]Description
	fallback ConceptID
}

// NewLibrary returns a library with every built-in concept registered and
// DefaultConcept as the fallback.
func NewLibrary() *Library {
	l := NewEmptyLibrary(DefaultConcept)
	registerBuiltins(l)
	return l
}

// NewEmptyLibrary returns a library with no concepts. fallback must be registered before
// Describe is called with an unknown name.
func NewEmptyLibrary(fallback ConceptID) *Library {
	return &Library{
		entries:  make(map[ConceptID]*entry),
		index:    make(map[string]ConceptID),
		cache:    make(map[ConceptID]Description),
		fallback: fallback,
	}
}

// Register adds a concept under its canonical id and any number of aliases.
// Registering an existing id replaces it.
func (l *Library) Register(id ConceptID, aliases []string, gen Generator) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[id] = &entry{id: id, aliases: aliases, gen: gen}
	delete(l.cache, id)
	l.index[normalize(string(id))] = id
	for _, a := range aliases {
		l.index[normalize(a)] = id
	}
}

// normalize folds case and collapses punctuation and whitespace runs to single spaces,
// so "atomic-structure", "ATOMIC  structure" and "Atomic Structure" match.
func normalize(name string) string {
	folded := cases.Fold().String(name)
	fields := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(fields, " ")
}

// Lookup resolves a name or alias to its canonical id.
func (l *Library) Lookup(name string) (ConceptID, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if _, ok := l.entries[ConceptID(name)]; ok {
		return ConceptID(name), nil
	}
	if id, ok := l.index[normalize(name)]; ok {
		return id, nil
	}
	return "", &UnknownConceptError{Name: name}
}

// Describe returns the description for name. Unknown names yield the fallback concept's
// description with Fallback set and Requested holding the original name. The result is a
// private copy the caller may modify.
func (l *Library) Describe(name string) Description {
	id, err := l.Lookup(name)
	fallback := false
	var unknown *UnknownConceptError
	if errors.As(err, &unknown) {
		id, fallback = l.fallback, true
	}

	d := l.describe(id)
	var out Description
	if err := copier.CopyWithOption(&out, &d, copier.Option{DeepCopy: true}); err != nil {
		panic(fmt.Errorf("geometry: copy description: %w", err))
	}
	if fallback || name != string(id) {
		out.Requested = name
	}
	out.Fallback = fallback
	return out
}

// describe returns the cached description for a registered id, generating it on first use.
func (l *Library) describe(id ConceptID) Description {
	l.mu.RLock()
	d, ok := l.cache[id]
	e := l.entries[id]
	l.mu.RUnlock()
	if ok {
		return d
	}
	if e == nil {
		panic(fmt.Errorf("geometry: concept %q is not registered", id))
	}

	d = Description{
		Concept:    id,
		Title:      string(id),
		Primitives: e.gen.Build(),
	}
	if e.gen.Spin != nil {
		spin := *e.gen.Spin
		d.Spin = &spin
	}
	d.Bounds()

	l.mu.Lock()
	l.cache[id] = d
	l.mu.Unlock()
	return d
}

// Concepts returns the canonical ids, sorted.
func (l *Library) Concepts() []ConceptID {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ids := make([]ConceptID, 0, len(l.entries))
	for id := range l.entries {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Aliases returns the aliases registered for id.
func (l *Library) Aliases(id ConceptID) []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if e, ok := l.entries[id]; ok {
		return slices.Clone(e.aliases)
	}
	return nil
}

// Fallback returns the concept used for unknown names.
func (l *Library) Fallback() ConceptID {
	return l.fallback
}

// Warm generates and validates every concept using up to workers goroutines.
func (l *Library) Warm(ctx context.Context, workers int) error {
	if workers < 1 {
		workers = 1
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, id := range l.Concepts() {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return Validate(l.describe(id))
		})
	}
	return g.Wait()
}

// Validate checks that a description is non-empty and every primitive is well formed.
func Validate(d Description) error {
	if len(d.Primitives) == 0 {
		return fmt.Errorf("geometry: %s: no primitives", d.Concept)
	}
	for i, p := range d.Primitives {
		if !slices.Contains(Kinds, p.Kind) {
			return fmt.Errorf("geometry: %s: primitive %d: unknown kind %q", d.Concept, i, p.Kind)
		}
		if !p.Position.IsFinite() || !p.Size.IsFinite() || !p.Axis.IsFinite() {
			return fmt.Errorf("geometry: %s: primitive %d (%s): non-finite geometry", d.Concept, i, p.Group)
		}
		if a := p.Animation; a != nil && (a.PeriodMs <= 0 || !math3d.IsFinite(a.Amplitude) || !math3d.IsFinite(a.Phase)) {
			return fmt.Errorf("geometry: %s: primitive %d (%s): invalid %s animation", d.Concept, i, p.Group, a.Rule)
		}
	}
	return nil
}

// DisplayName title-cases a free-form subject label for display, e.g. "high school biology".
func DisplayName(label string) string {
	return cases.Title(language.English).String(strings.Join(strings.Fields(label), " "))
}
