package completion

import (
	"context"
	"log/slog"
)

// SampleKey is the key of the example entry added to empty open-ended maps
// when sample mode is on.
const SampleKey = "Sample"

// Options controls how far completion reaches into open-ended structures.
type Options struct {
	// AddSample adds one synthesized entry keyed SampleKey to an absent
	// additionalProperties map.
	AddSample bool
	// AddItem synthesizes one element for an absent array governed by items.
	// When false, items schemas are treated as leaves.
	AddItem bool
}

// Stats describes what a completion run added.
type Stats struct {
	Added int // number of data nodes synthesized, containers included
}

// Engine completes documents against schemas.
// An Engine holds no per-run state and is safe for concurrent use.
type Engine struct {
	opts   Options
	logger *slog.Logger
}

// New creates an engine with the given options.
// If logger is nil, slog.Default() is used.
func New(opts Options, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{opts: opts, logger: logger}
}

// Options returns the engine's options.
func (e *Engine) Options() Options {
	return e.opts
}

// Complete merges every value s requires into doc and returns the result.
// doc is treated as present even when nil. A null is kept where s describes
// a leaf and replaced where s describes an object, map or array. Other
// present values are never replaced. Mappings in doc are updated in place.
func (e *Engine) Complete(s *Schema, doc any) (any, error) {
	out, _, err := e.CompleteWithStats(s, doc, true)
	return out, err
}

// Generate builds a fresh document satisfying s.
func (e *Engine) Generate(s *Schema) (any, error) {
	out, _, err := e.CompleteWithStats(s, nil, false)
	return out, err
}

// CompleteWithStats is Complete with explicit presence. When present is
// false, doc is ignored and a new document is synthesized.
func (e *Engine) CompleteWithStats(s *Schema, doc any, present bool) (any, Stats, error) {
	if s == nil {
		return nil, Stats{}, ErrNilSchema
	}
	w := &walker{engine: e}
	out, err := w.complete(s, "", doc, present)
	if err != nil {
		return nil, Stats{}, err
	}
	return out, w.stats, nil
}

// walker carries the state of one completion run.
type walker struct {
	engine *Engine
	stats  Stats
}

func (w *walker) complete(s *Schema, path string, target any, present bool) (any, error) {
	kind := s.Kind(w.engine.opts.AddItem)
	w.engine.logger.LogAttrs(context.Background(), slog.LevelDebug, "completing node",
		slog.String("path", displayPath(path)),
		slog.String("kind", kind.String()),
		slog.Bool("present", present),
	)

	// A null leaf is a value and stays. A null container has no data to
	// keep and is built like an absent one.
	if present && target == nil && kind != KindLeaf {
		present = false
	}
	if !present {
		w.stats.Added++
	}

	switch kind {
	case KindObject:
		return w.completeObject(s, path, target, present)
	case KindOpenMap:
		return w.completeOpenMap(s, path, target, present)
	case KindArray:
		return w.completeArray(s, path, target, present)
	default:
		if present {
			return target, nil
		}
		return Synthesize(s), nil
	}
}

func (w *walker) completeObject(s *Schema, path string, target any, present bool) (any, error) {
	m, err := w.targetMapping(path, target, present)
	if err != nil {
		return nil, err
	}

	for _, name := range s.Required {
		child, ok := s.Property(name)
		if !ok {
			return nil, &SchemaError{Path: childPath(path, name), Msg: "required property " + name + " has no definition in properties"}
		}
		current, exists := m.get(name)
		completed, err := w.complete(child, childPath(path, name), current, exists)
		if err != nil {
			return nil, err
		}
		m.set(name, completed)
	}
	return m.value(), nil
}

func (w *walker) completeOpenMap(s *Schema, path string, target any, present bool) (any, error) {
	if !present && w.engine.opts.AddSample {
		w.engine.logger.Debug("adding sample entry", slog.String("path", displayPath(path)))
		m := newMapping()
		sample, err := w.complete(s.AdditionalProperties, childPath(path, SampleKey), nil, false)
		if err != nil {
			return nil, err
		}
		m.set(SampleKey, sample)
		return m.value(), nil
	}

	m, err := w.targetMapping(path, target, present)
	if err != nil {
		return nil, err
	}
	for _, key := range m.keys() {
		current, _ := m.get(key)
		completed, err := w.complete(s.AdditionalProperties, childPath(path, key), current, true)
		if err != nil {
			return nil, err
		}
		m.set(key, completed)
	}
	return m.value(), nil
}

func (w *walker) completeArray(s *Schema, path string, target any, present bool) (any, error) {
	if present {
		if _, ok := target.([]any); !ok {
			return nil, &TypeMismatchError{Path: path, Want: "sequence", Got: shapeOf(target)}
		}
		return target, nil
	}
	item, err := w.complete(s.Items, childPath(path, "0"), nil, false)
	if err != nil {
		return nil, err
	}
	return []any{item}, nil
}

// targetMapping returns the mapping to complete in place, creating one when
// the target is absent.
func (w *walker) targetMapping(path string, target any, present bool) (mapping, error) {
	if !present {
		return newMapping(), nil
	}
	m, ok := asMapping(target)
	if !ok {
		return nil, &TypeMismatchError{Path: path, Want: "mapping", Got: shapeOf(target)}
	}
	return m, nil
}
