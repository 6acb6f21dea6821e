package medicamentsparser

import (
	"path/filepath"
)

// MedicamentsParser reads the committed source files of a data directory.
type MedicamentsParser struct {
	dir string
}

// NewMedicamentsParser creates a parser over the given data directory
func NewMedicamentsParser(dir string) *MedicamentsParser {
	return &MedicamentsParser{dir: dir}
}

// Dir returns the data directory the parser reads from
func (p *MedicamentsParser) Dir() string {
	return p.dir
}

// Path returns the committed location of a source file
func (p *MedicamentsParser) Path(src Source) string {
	return filepath.Join(p.dir, src.File)
}
