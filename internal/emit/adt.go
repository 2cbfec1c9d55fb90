package emit

import (
	"fmt"
	"io"

	"github.com/martin-neuhaeusser/smartace/internal/srcast"
	"github.com/martin-neuhaeusser/smartace/internal/target"
	"github.com/martin-neuhaeusser/smartace/internal/types"
)

// printForwardDecls is C10 pass 1: one forward declaration per nominal
// type, innermost-first (spec.md §4.10).
func (p *Printer) printForwardDecls(w io.Writer, order []nominal) error {
	for _, n := range order {
		name, err := p.nominalName(n)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(w, (&target.CStructDecl{Name: name}).String()+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// printDefinitions is C10 pass 2: full struct bodies, innermost-first so
// every by-value embedded field type is already complete (spec.md §4.10).
func (p *Printer) printDefinitions(w io.Writer, order []nominal) error {
	for _, n := range order {
		def, err := p.nominalDef(n)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(w, def.String()); err != nil {
			return err
		}
	}
	return nil
}

func (p *Printer) nominalName(n nominal) (string, error) {
	switch n.kind {
	case nominalStruct:
		return p.Types.StructName(n.strct), nil
	case nominalContract:
		return p.Types.ContractName(n.contract), nil
	case nominalMap:
		return fmt.Sprintf("Map_%d", n.mapEntry.ID), nil
	default:
		return "", fmt.Errorf("emit: unknown nominal kind %d", n.kind)
	}
}

func (p *Printer) nominalDef(n nominal) (*target.CStructDef, error) {
	switch n.kind {
	case nominalStruct:
		return p.structDef(n.strct)
	case nominalContract:
		return p.contractDef(n.contract)
	case nominalMap:
		return p.mapDef(n.mapEntry)
	default:
		return nil, fmt.Errorf("emit: unknown nominal kind %d", n.kind)
	}
}

func (p *Printer) structDef(s *srcast.StructDecl) (*target.CStructDef, error) {
	fields := make([]target.CField, 0, len(s.Fields))
	for _, f := range s.Fields {
		typeName, err := p.fieldTypeName(f.Type)
		if err != nil {
			return nil, err
		}
		fields = append(fields, target.CField{Type: typeName, Name: "user_" + f.Name})
	}
	return &target.CStructDef{Name: p.Types.StructName(s), Fields: fields}, nil
}

// contractDef builds a contract's struct body: the two ambient fields
// every modeled contract carries (`user_address`, its own assigned
// identity -- spec.md §4.8's cast-to-address path reads this field
// directly; `model_balance`, the running balance the payable pre-amble
// and `_pay`/`_pay_use_rv` update) plus one `user_<name>` field per
// declared state variable.
func (p *Printer) contractDef(c *srcast.ContractDecl) (*target.CStructDef, error) {
	fields := []target.CField{
		{Type: "sol_address_t", Name: "user_address"},
		{Type: "sol_uint256_t", Name: "model_balance"},
	}
	for _, v := range c.State {
		typeName, err := p.fieldTypeName(v.Type)
		if err != nil {
			return nil, err
		}
		fields = append(fields, target.CField{Type: typeName, Name: "user_" + v.Name})
	}
	return &target.CStructDef{Name: p.Types.ContractName(c), Fields: fields}, nil
}

// mapDef builds a map struct's "remembered-single-cell" bookkeeping
// (spec.md §4.10): `m_set` (has any key been latched yet), one `m_curr<i>`
// field per key position (the latched key tuple), `d_` (the latched
// value), and `d_nd` (the single frozen symbolic value every non-latched
// key reads as -- spec.md §4.11's "sound over-approximation of an
// infinite map").
func (p *Printer) mapDef(m *types.MapEntry) (*target.CStructDef, error) {
	fields := []target.CField{{Type: "int", Name: "m_set"}}
	for i, kt := range m.KeyTypes {
		typeName, err := p.fieldTypeName(kt)
		if err != nil {
			return nil, err
		}
		fields = append(fields, target.CField{Type: typeName, Name: fmt.Sprintf("m_curr%d", i)})
	}
	valType, err := p.fieldTypeName(m.ValueType)
	if err != nil {
		return nil, err
	}
	fields = append(fields, target.CField{Type: valType, Name: "d_"}, target.CField{Type: valType, Name: "d_nd"})
	return &target.CStructDef{Name: fmt.Sprintf("Map_%d", m.ID), Fields: fields}, nil
}

// fieldTypeName is the embedded-field analogue of Types.GetName: nominal
// types (struct/contract/map) are embedded by value as `struct <Name>`
// (spec.md §4.2's allocation graph already guarantees this embedding
// graph is acyclic -- that is precisely what C2's cycle check exists to
// rule out), everything else uses the plain scalar vocabulary.
func (p *Printer) fieldTypeName(t srcast.Type) (string, error) {
	switch tt := t.(type) {
	case *srcast.MappingType:
		name, err := p.Types.GetName(tt)
		if err != nil {
			return "", err
		}
		return "struct " + name, nil
	case *srcast.StructDeclType:
		name, err := p.Types.GetName(tt)
		if err != nil {
			return "", err
		}
		return "struct " + name, nil
	case *srcast.ContractDeclType:
		name, err := p.Types.GetName(tt)
		if err != nil {
			return "", err
		}
		return "struct " + name, nil
	default:
		return p.Types.GetName(t)
	}
}
