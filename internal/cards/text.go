package cards

import (
	"fmt"
	"strings"
)

func (n Number) MarshalText() ([]byte, error) {
	if !n.Valid() {
		return nil, fmt.Errorf("invalid number %d", int(n))
	}
	return []byte(n.String()), nil
}

func (n *Number) UnmarshalText(b []byte) error {
	i, err := lookup(numberNames[:], b, "number")
	if err != nil {
		return err
	}
	*n = Number(i) + One
	return nil
}

func (s Shape) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid shape %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Shape) UnmarshalText(b []byte) error {
	i, err := lookup(shapeNames[:], b, "shape")
	if err != nil {
		return err
	}
	*s = Shape(i)
	return nil
}

func (c Color) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid color %d", int(c))
	}
	return []byte(c.String()), nil
}

func (c *Color) UnmarshalText(b []byte) error {
	i, err := lookup(colorNames[:], b, "color")
	if err != nil {
		return err
	}
	*c = Color(i)
	return nil
}

func (s Shading) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid shading %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Shading) UnmarshalText(b []byte) error {
	i, err := lookup(shadingNames[:], b, "shading")
	if err != nil {
		return err
	}
	*s = Shading(i)
	return nil
}

// lookup matches names case-insensitively; "1"/"2"/"3" are accepted for numbers.
func lookup(names []string, b []byte, kind string) (int, error) {
	v := strings.ToUpper(strings.TrimSpace(string(b)))
	for i, name := range names {
		if v == name {
			return i, nil
		}
	}
	if kind == "number" {
		switch v {
		case "1":
			return 0, nil
		case "2":
			return 1, nil
		case "3":
			return 2, nil
		}
	}
	return 0, fmt.Errorf("unknown %s %q", kind, string(b))
}
