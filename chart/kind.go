package chart

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind selects one of the chart types.
type Kind uint8

const (
	KindLine Kind = iota
	KindBar
	KindTriState
	KindDiscrete
	KindBullet
	KindPie
	KindBox
	numKinds
)

// ErrUnknownKind is returned when a chart type name is not recognized.
var ErrUnknownKind = errors.New("unknown chart type")

var kindNames = [numKinds]string{
	KindLine:     "line",
	KindBar:      "bar",
	KindTriState: "tristate",
	KindDiscrete: "discrete",
	KindBullet:   "bullet",
	KindPie:      "pie",
	KindBox:      "box",
}

// Kinds lists every supported chart type.
func Kinds() []Kind {
	out := make([]Kind, numKinds)
	for i := range out {
		out[i] = Kind(i)
	}
	return out
}

func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
	return kindNames[k]
}

// Valid reports whether k names a supported chart type.
func (k Kind) Valid() bool { return k < numKinds }

// ParseKind maps a type name such as "line" or "bullet" to its Kind.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == s {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

func (k *Kind) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := ParseKind(node.Value)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

func (k Kind) MarshalYAML() (any, error) {
	return k.String(), nil
}
