package layout

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/wasm-printnf/errors"
)

// FieldConfig is one field of a layout file. Type is a scalar kind name or
// the name of a struct defined earlier.
type FieldConfig struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
	Ref  bool   `yaml:"ref,omitempty"`
}

// StructConfig is one struct of a layout file.
type StructConfig struct {
	Name      string        `yaml:"name"`
	Transform string        `yaml:"transform,omitempty"`
	Fields    []FieldConfig `yaml:"fields"`
}

// FileConfig is the top level of a layout file.
type FileConfig struct {
	Structs []StructConfig `yaml:"structs"`
}

// LoadConfig reads struct definitions from YAML and registers them in order.
//
//	structs:
//	  - name: Particle
//	    fields:
//	      - {name: pos, type: Vec2}
//	      - {name: color, type: Color_RGBa, ref: true}
//	      - {name: label, type: zstring}
func LoadConfig(r io.Reader, reg *Registry) ([]*Struct, error) {
	var file FileConfig
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "cannot parse layout file")
	}

	var built []*Struct
	for _, sc := range file.Structs {
		s, err := sc.build(reg)
		if err != nil {
			return built, err
		}
		if err := reg.Register(s); err != nil {
			return built, err
		}
		built = append(built, s)
	}
	return built, nil
}

func (sc StructConfig) build(reg *Registry) (*Struct, error) {
	if sc.Name == "" {
		return nil, errors.InvalidInput(errors.PhaseConfig, "struct without a name")
	}
	b := NewBuilder(sc.Name)
	for _, fc := range sc.Fields {
		if kind, err := ParseKind(fc.Type); err == nil {
			if fc.Ref {
				b.Ref(fc.Name, kind)
			} else {
				b.Field(fc.Name, kind)
			}
			continue
		}
		nested, ok := reg.Lookup(fc.Type)
		if !ok {
			return nil, errors.New(errors.PhaseConfig, errors.KindNotFound).
				Path(sc.Name, fc.Name).
				Detail("unknown field type %q", fc.Type).
				Build()
		}
		if fc.Ref {
			b.RefStruct(fc.Name, nested)
		} else {
			b.Nested(fc.Name, nested)
		}
	}
	if sc.Transform != "" {
		b.Transform(sc.Transform)
	}
	return b.Build()
}
