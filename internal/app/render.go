package app

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/dave/jennifer/jen"
	"github.com/specialistvlad/pyslotgen/internal/pyimpl"
)

// generatedMarker starts the header of every generated file.
const generatedMarker = "// Code generated by pyslotgen"

// GeneratedFile is one rendered Go file.
type GeneratedFile struct {
	Path    string
	Gate    string
	Content []byte
}

// fileBuilder collects the declarations of one output file.
type fileBuilder struct {
	gate   string
	crates []string
	decls  []jen.Code
}

func (b *fileBuilder) addCrate(crate string) {
	for _, c := range b.crates {
		if c == crate {
			return
		}
	}
	b.crates = append(b.crates, crate)
}

// renderManifest groups the units of every surviving block by build gate and
// renders one file per gate. The unconditional file also holds the default
// slots of class blocks.
func renderManifest(res *manifestResult, suffix string) ([]GeneratedFile, error) {
	if res.manifest == nil {
		return nil, nil
	}

	builders := []*fileBuilder{{}}
	byGate := map[string]*fileBuilder{"": builders[0]}
	for _, br := range res.blocks {
		if br.exp == nil {
			continue
		}
		for _, u := range br.exp.Units {
			b, ok := byGate[u.Gate]
			if !ok {
				b = &fileBuilder{gate: u.Gate}
				byGate[u.Gate] = b
				builders = append(builders, b)
			}
			b.addCrate(br.exp.Crate)
			b.decls = append(b.decls, u.Decls...)
		}
	}
	for _, cr := range res.classes {
		builders[0].addCrate(cr.crate)
		builders[0].decls = append(builders[0].decls, cr.decls...)
	}

	fsInfo := res.manifest.FSInformation
	base := filepath.Join(fsInfo.Dir(), fsInfo.Stem()+suffix)
	usedTags := make(map[string]bool)

	var out []GeneratedFile
	for _, b := range builders {
		if len(b.decls) == 0 {
			continue
		}
		path := base + ".go"
		if b.gate != "" {
			path = base + "." + uniqueTag(gateTag(b.gate), usedTags) + ".go"
		}
		content, err := renderFile(res.manifest.Package, filepath.Base(res.path), b)
		if err != nil {
			return nil, fmt.Errorf("failed to render %s: %w", path, err)
		}
		out = append(out, GeneratedFile{Path: path, Gate: b.gate, Content: content})
	}
	return out, nil
}

func renderFile(pkg, source string, b *fileBuilder) ([]byte, error) {
	f := jen.NewFile(pkg)
	f.HeaderComment(generatedMarker + " from " + source + ". DO NOT EDIT.")
	if b.gate != "" {
		f.HeaderComment("//go:build " + b.gate)
	}
	// Only one crate can own the alias; any other keeps its default name.
	if len(b.crates) > 0 {
		f.ImportAlias(b.crates[0], pyimpl.PackageAlias)
	}
	for _, d := range b.decls {
		f.Add(d)
	}

	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// gateTag derives a file name component from a build constraint. The result
// is placed after a dot, where the go tool does not look for implicit
// GOOS and GOARCH constraints.
func gateTag(gate string) string {
	r := strings.NewReplacer("&&", " and ", "||", " or ", "!", " not ")
	fields := strings.FieldsFunc(r.Replace(gate), func(c rune) bool {
		return !unicode.IsLetter(c) && !unicode.IsDigit(c) && c != '_'
	})
	if len(fields) == 0 {
		return "gated"
	}
	return strings.ToLower(strings.Join(fields, "_"))
}

func uniqueTag(tag string, used map[string]bool) string {
	candidate := tag
	for i := 2; used[candidate]; i++ {
		candidate = fmt.Sprintf("%s_%d", tag, i)
	}
	used[candidate] = true
	return candidate
}
