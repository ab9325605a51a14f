package pkg

import "fmt"

const TSConfigFileName = "tsconfig.json"

type CompilerOption struct {
	Key   string
	Value any
}

// CompilerOptionOverrides emit ESM declarations under dist/ for rollup to
// pick up. Order is the order new keys are appended in.
var CompilerOptionOverrides = []CompilerOption{
	{"jsx", "react-jsx"},
	{"module", "ESNext"},
	{"declaration", true},
	{"declarationDir", "types"},
	{"sourceMap", true},
	{"outDir", "dist"},
	{"moduleResolution", "node"},
	{"allowSyntheticDefaultImports", true},
	{"emitDeclarationOnly", true},
	{"noEmit", false},
}

// PatchTSConfig merges CompilerOptionOverrides into compilerOptions one key
// at a time. Existing keys are overwritten where they stand; other options
// and top-level fields are left alone.
func PatchTSConfig(path string) error {
	doc, err := LoadDocument(path)
	if err != nil {
		return err
	}
	if err := doc.RequireObject("compilerOptions"); err != nil {
		return err
	}

	for _, opt := range CompilerOptionOverrides {
		if err := doc.Set("compilerOptions."+opt.Key, opt.Value); err != nil {
			return err
		}
	}

	if err := ValidateTSConfig(doc.Bytes()); err != nil {
		return err
	}
	if err := doc.Save(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
