// AngelaMos | 2026
// file.go

package catalog

import (
	"context"
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// FileSource reads a static YAML catalog of the form
//
//	resources:
//	  - id: cam-lobby
//	    title: Lobby camera
//	    type: camera
//	    plan_required: pro
//
// The file is re-read on every fetch so edits show up on the next session.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) FetchCatalog(ctx context.Context) ([]Resource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(s.path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load catalog file: %w", err)
	}

	var records []Record
	if err := k.Unmarshal("resources", &records); err != nil {
		return nil, fmt.Errorf("decode catalog file: %w", err)
	}

	return FromRecords(records), nil
}

var _ Source = (*FileSource)(nil)
