package config

import (
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/charmap"
)

// Charmap of free-form text stored inside binary model files (80 byte stl
// header). Most exporters write Windows-1252 there.
var headerCharmap = charmap.Windows1252

// "Windows 1251", "windows-1251" and "WINDOWS1251" name same charmap
func encodingKey(name string) string {
	return strings.NewReplacer(" ", "", "-", "", "_", "").Replace(strings.ToLower(name))
}

func charmaps() []*charmap.Charmap {
	result := make([]*charmap.Charmap, 0, len(charmap.All))
	for _, enc := range charmap.All {
		if cm, ok := enc.(*charmap.Charmap); ok {
			result = append(result, cm)
		}
	}
	return result
}

func SetEncoding(name string) error {
	key := encodingKey(name)
	for _, cm := range charmaps() {
		if encodingKey(cm.String()) == key {
			headerCharmap = cm
			return nil
		}
	}
	return errors.Errorf("Unknown stl header encoding %q", name)
}

func ListEncodings() []string {
	cms := charmaps()
	list := make([]string, len(cms))
	for i, cm := range cms {
		list[i] = cm.String()
	}
	return list
}

func GetEncoding() *charmap.Charmap {
	return headerCharmap
}
