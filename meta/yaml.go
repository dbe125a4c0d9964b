package meta

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// LoadYAML decodes entity definitions of the form
//
//	entities:
//	  - name: Post
//	    fields:
//	      - {name: id, primaryKey: true}
//	      - {name: title}
//	    relations:
//	      - {name: category, kind: belongs_to, target: Category}
func LoadYAML(r io.Reader) ([]Entity, error) {
	var doc struct {
		Entities []Entity `yaml:"entities"`
	}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("meta: decode yaml: %w", err)
	}
	return doc.Entities, nil
}
