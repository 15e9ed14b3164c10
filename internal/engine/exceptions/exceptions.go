// Package exceptions holds the declared predicates that mark an
// otherwise-matching occurrence as acceptable. Predicates are pure:
// the same violation and file always yield the same answer, regardless
// of run order.
package exceptions

import (
	"github.com/dscomply/dscomply/internal/config"
	"github.com/dscomply/dscomply/internal/engine/finding"
	"github.com/dscomply/dscomply/internal/pathglob"
)

// Registry is an immutable collection of exception predicates, loaded
// once at startup.
type Registry struct {
	paths      []pathException
	semantics  []semanticException
	primitives []pathException
}

type pathException struct {
	glob   string
	reason string
}

type semanticException struct {
	attribute string
	values    map[string]bool
	reason    string
}

// NewRegistry builds a registry from validated exception configuration.
func NewRegistry(cfgs []config.Exception) *Registry {
	reg := &Registry{}
	for i := range cfgs {
		cfg := &cfgs[i]
		switch cfg.Kind {
		case config.ExceptionPath:
			reg.paths = append(reg.paths, pathException{glob: cfg.Glob, reason: cfg.Reason})
		case config.ExceptionPrimitive:
			reg.primitives = append(reg.primitives, pathException{glob: cfg.Glob, reason: cfg.Reason})
		case config.ExceptionSemantic:
			values := make(map[string]bool, len(cfg.Values))
			for _, v := range cfg.Values {
				values[v] = true
			}
			reg.semantics = append(reg.semantics, semanticException{
				attribute: cfg.Attribute,
				values:    values,
				reason:    cfg.Reason,
			})
		}
	}
	return reg
}

// IsExcepted reports whether the violation is acceptable and, if so,
// the declared reason. Path predicates match the file; semantic
// predicates match a closed set of literal attribute values on the
// matched element.
func (r *Registry) IsExcepted(v *finding.Violation) (bool, string) {
	for i := range r.paths {
		if pathglob.Match(r.paths[i].glob, v.Span.FilePath) {
			return true, r.paths[i].reason
		}
	}

	if v.Element != nil {
		for i := range r.semantics {
			sem := &r.semantics[i]
			value, ok := v.Element.LiteralAttr(sem.attribute)
			if ok && sem.values[value] {
				return true, sem.reason
			}
		}
	}

	return false, ""
}

// DefinesPrimitive reports whether the file implements a wrapped
// primitive itself. Such files are not excepted; their violations are
// classified manual-only instead.
func (r *Registry) DefinesPrimitive(path string) bool {
	for i := range r.primitives {
		if pathglob.Match(r.primitives[i].glob, path) {
			return true
		}
	}
	return false
}
