// Package driver applies the conversion passes to a parsed file set in
// their fixed order (spec.md §4.5): Package & class elaboration first,
// then Logic conversion. Each pass receives the full description list and
// returns a replacement; the first fatal error aborts the run.
package driver

import (
	log "github.com/sirupsen/logrus"

	"sv2v/pkg/ast"
	"sv2v/pkg/convert/logic"
	"sv2v/pkg/convert/pkgelab"
)

// Pass is one whole-file-set conversion.
type Pass struct {
	Name    string
	Convert func([]ast.Description) ([]ast.Description, error)
}

// Passes returns the conversion pipeline in application order. The order
// is load-bearing: Logic conversion assumes packages and classes are
// already flattened away, so elaboration must run first.
func Passes() []Pass {
	return []Pass{
		{Name: "package-elaboration", Convert: pkgelab.Convert},
		{Name: "logic-conversion", Convert: logic.Convert},
	}
}

// Run applies every pass in order, logging per-pass progress at debug
// level, and returns the converted descriptions or the first fatal error.
func Run(descs []ast.Description) ([]ast.Description, error) {
	for _, pass := range Passes() {
		log.WithFields(log.Fields{
			"pass":         pass.Name,
			"descriptions": len(descs),
		}).Debug("running conversion pass")

		converted, err := pass.Convert(descs)
		if err != nil {
			log.WithFields(log.Fields{"pass": pass.Name}).Debug("conversion pass failed")
			return nil, err
		}

		descs = converted
	}

	return descs, nil
}
