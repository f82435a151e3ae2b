package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Noise is the raw cluster index of a point that is not density-reachable
// from any core point.
const Noise = -1

type ZoneKind uint8

const (
	ZoneOutlier ZoneKind = iota
	ZoneFlat
	ZoneSub
)

// Zone is the final geographic label of a customer:
// Flat(index) | Sub(parent, subindex) | Outlier.
type Zone struct {
	Kind   ZoneKind
	Parent int
	Sub    int
}

var Outlier = Zone{Kind: ZoneOutlier}

func Flat(index int) Zone { return Zone{Kind: ZoneFlat, Parent: index} }

func Sub(parent, subindex int) Zone { return Zone{Kind: ZoneSub, Parent: parent, Sub: subindex} }

func (z Zone) IsOutlier() bool { return z.Kind == ZoneOutlier }

// Code is the machine label used in tables and vehicle ids: "2", "0_3", "outlier".
func (z Zone) Code() string {
	switch z.Kind {
	case ZoneFlat:
		return strconv.Itoa(z.Parent)
	case ZoneSub:
		return fmt.Sprintf("%d_%d", z.Parent, z.Sub)
	default:
		return "outlier"
	}
}

// Label is the human readable zone name.
// Parents map to letters A..W in index order; X is reserved for outliers.
func (z Zone) Label() string {
	switch z.Kind {
	case ZoneOutlier:
		return "Zone X"
	case ZoneFlat:
		if l, ok := zoneLetter(z.Parent); ok {
			return fmt.Sprintf("Zone %c", l)
		}
	case ZoneSub:
		if l, ok := zoneLetter(z.Parent); ok {
			return fmt.Sprintf("Zone %c%d", l, z.Sub+1)
		}
	}
	return fmt.Sprintf("Zone ? (%s)", z.Code())
}

func (z Zone) String() string { return z.Code() }

func zoneLetter(index int) (rune, bool) {
	if index < 0 || index >= 'X'-'A' {
		return 0, false
	}
	return rune('A' + index), true
}

// ParseZone reads a zone code back from storage or an API payload.
func ParseZone(code string) (Zone, error) {
	code = strings.TrimSpace(code)
	switch code {
	case "outlier", "noise", "-1":
		return Outlier, nil
	}

	parent, sub, isSub := strings.Cut(code, "_")
	p, err := strconv.Atoi(parent)
	if err != nil || p < 0 {
		return Zone{}, fmt.Errorf("parse zone %q: invalid parent index", code)
	}
	if !isSub {
		return Flat(p), nil
	}

	s, err := strconv.Atoi(sub)
	if err != nil || s < 0 {
		return Zone{}, fmt.Errorf("parse zone %q: invalid sub index", code)
	}
	return Sub(p, s), nil
}

// RawLabel renders a raw cluster index, "noise" for Noise.
func RawLabel(cluster int) string {
	if cluster == Noise {
		return "noise"
	}
	return strconv.Itoa(cluster)
}
