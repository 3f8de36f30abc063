// Package obj imports Wavefront obj geometry. Materials are ignored.
package obj

import (
	"io"
	"io/fs"
	"io/ioutil"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"

	"github.com/mogaika/meshprobe/importer"
)

const (
	TOKEN_NUMBER = iota
	TOKEN_REF
	TOKEN_WORD
	TOKEN_NEWLINE
)

var lexer *lexmachine.Lexer

func init() {
	lexer = lexmachine.NewLexer()
	lexer.Add([]byte(`[\+\-]?([0-9]+\.?[0-9]*|\.[0-9]+)([eE][\+\-]?[0-9]+)?`), getToken(TOKEN_NUMBER))
	lexer.Add([]byte(`\-?[0-9]+/\-?[0-9]*(/\-?[0-9]*)?`), getToken(TOKEN_REF))
	lexer.Add([]byte(`[^ \t\r\n#\\]+`), getToken(TOKEN_WORD))
	lexer.Add([]byte(`(\n|\r)+`), getToken(TOKEN_NEWLINE))
	lexer.Add([]byte(`#[^\n]*`), skip)
	lexer.Add([]byte(`\\(\r)?\n`), skip)
	lexer.Add([]byte(`( |\t)+`), skip)
	if err := lexer.Compile(); err != nil {
		panic(err)
	}

	importer.SetHandler(".obj", Import)
}

func getToken(tokenType int) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(tokenType, string(m.Bytes), m), nil
	}
}

func skip(scan *lexmachine.Scanner, match *machines.Match) (interface{}, error) {
	return nil, nil
}

type corner struct {
	v, vt, vn int
}

type parser struct {
	vs  []importer.Position
	vcs []importer.Color
	vts []importer.UV
	vns []importer.Normal

	haveColors bool
	meshes     []*importer.SourceMesh
	current    *importer.SourceMesh
	// uvs of current mesh are collected lazily, because first face can lack them
	currentHasUV bool
}

func Import(name string, r *io.SectionReader, _ fs.FS) (*importer.Asset, error) {
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read")
	}
	meshes, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return &importer.Asset{Name: name, Meshes: meshes}, nil
}

func Parse(text []byte) ([]*importer.SourceMesh, error) {
	scanner, err := lexer.Scanner(text)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to create lexer scanner")
	}

	p := &parser{}
	line := make([]*lexmachine.Token, 0, 8)
	for itok, err, eos := scanner.Next(); !eos; itok, err, eos = scanner.Next() {
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to parse token")
		}
		tok := itok.(*lexmachine.Token)
		if tok.Type == TOKEN_NEWLINE {
			if err := p.statement(line); err != nil {
				return nil, err
			}
			line = line[:0]
		} else {
			line = append(line, tok)
		}
	}
	if err := p.statement(line); err != nil {
		return nil, err
	}
	p.finishMesh()
	return p.meshes, nil
}

func (p *parser) numbers(args []*lexmachine.Token, min, max int) ([]float32, error) {
	if len(args) < min || len(args) > max {
		return nil, errors.Errorf("Expected %d..%d numbers, got %d", min, max, len(args))
	}
	result := make([]float32, len(args))
	for i, tok := range args {
		if tok.Type != TOKEN_NUMBER {
			return nil, errors.Errorf("Expected number, got %q", tok.Lexeme)
		}
		f, err := strconv.ParseFloat(string(tok.Lexeme), 32)
		if err != nil {
			return nil, errors.Wrapf(err, "Invalid number %q", tok.Lexeme)
		}
		result[i] = float32(f)
	}
	return result, nil
}

func (p *parser) statement(line []*lexmachine.Token) error {
	if len(line) == 0 {
		return nil
	}
	head := line[0]
	if head.Type != TOKEN_WORD {
		return errors.Errorf("line %d: unexpected %q at line start", head.StartLine, head.Lexeme)
	}
	args := line[1:]

	switch string(head.Lexeme) {
	case "v":
		n, err := p.numbers(args, 3, 7)
		if err != nil {
			return errors.Wrapf(err, "line %d", head.StartLine)
		}
		p.vs = append(p.vs, importer.Position{n[0], n[1], n[2]})
		// "v x y z r g b" and "v x y z w r g b" carry vertex colors
		var c importer.Color
		switch len(n) {
		case 6:
			c, p.haveColors = importer.Color{n[3], n[4], n[5], 1}, true
		case 7:
			c, p.haveColors = importer.Color{n[4], n[5], n[6], 1}, true
		default:
			c = importer.Color{0, 0, 0, 1}
		}
		p.vcs = append(p.vcs, c)
	case "vt":
		n, err := p.numbers(args, 1, 3)
		if err != nil {
			return errors.Wrapf(err, "line %d", head.StartLine)
		}
		uv := importer.UV{n[0], 0}
		if len(n) > 1 {
			uv[1] = n[1]
		}
		p.vts = append(p.vts, uv)
	case "vn":
		n, err := p.numbers(args, 3, 3)
		if err != nil {
			return errors.Wrapf(err, "line %d", head.StartLine)
		}
		p.vns = append(p.vns, importer.Normal{n[0], n[1], n[2]})
	case "f":
		if len(args) < 3 {
			return errors.Errorf("line %d: face with %d vertices", head.StartLine, len(args))
		}
		corners := make([]corner, len(args))
		for i, tok := range args {
			c, err := p.corner(tok)
			if err != nil {
				return errors.Wrapf(err, "line %d", head.StartLine)
			}
			corners[i] = c
		}
		p.face(corners)
	case "o", "g":
		p.finishMesh()
		p.current = &importer.SourceMesh{Name: joinLexemes(args)}
	}
	// other statements (usemtl, mtllib, s, l, p, ...) do not affect geometry
	return nil
}

func joinLexemes(toks []*lexmachine.Token) string {
	parts := make([]string, len(toks))
	for i, tok := range toks {
		parts[i] = string(tok.Lexeme)
	}
	return strings.Join(parts, " ")
}

// resolve converts 1-based (or negative relative) index to 0-based.
// Empty index returns -1.
func resolve(s string, length int) (int, error) {
	if s == "" {
		return -1, nil
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.Wrapf(err, "Invalid index %q", s)
	}
	if i < 0 {
		i += length
	} else {
		i--
	}
	if i < 0 || i >= length {
		return 0, errors.Errorf("Index %q out of range (%d elements)", s, length)
	}
	return i, nil
}

func (p *parser) corner(tok *lexmachine.Token) (c corner, err error) {
	parts := strings.Split(string(tok.Lexeme)+"//", "/")
	if tok.Type != TOKEN_REF && tok.Type != TOKEN_NUMBER || parts[0] == "" {
		return c, errors.Errorf("Invalid face vertex %q", tok.Lexeme)
	}
	if c.v, err = resolve(parts[0], len(p.vs)); err != nil {
		return
	}
	if c.vt, err = resolve(parts[1], len(p.vts)); err != nil {
		return
	}
	c.vn, err = resolve(parts[2], len(p.vns))
	return
}

func (p *parser) face(corners []corner) {
	if p.current == nil {
		p.current = &importer.SourceMesh{}
	}
	m := p.current

	haveUV := true
	for _, c := range corners {
		if c.vt < 0 {
			haveUV = false
		}
	}
	if haveUV && !p.currentHasUV {
		// backfill zero uvs for triangles added before
		m.UVs = make([]importer.UV, len(m.Positions))
		p.currentHasUV = true
	}

	for i := 1; i < len(corners)-1; i++ {
		tri := [3]corner{corners[0], corners[i], corners[i+1]}
		var pos [3]importer.Position
		var nrm [3]importer.Normal
		for j, c := range tri {
			pos[j] = p.vs[c.v]
			if c.vn >= 0 {
				nrm[j] = p.vns[c.vn]
			}
		}
		m.AddTriangle(pos, nrm)

		for _, c := range tri {
			m.Colors = append(m.Colors, p.vcs[c.v])
			if p.currentHasUV {
				var uv importer.UV
				if c.vt >= 0 {
					uv = p.vts[c.vt]
				}
				m.UVs = append(m.UVs, uv)
			}
		}
	}
}

func (p *parser) finishMesh() {
	if p.current == nil {
		return
	}
	if len(p.current.Positions) != 0 {
		if !p.haveColors {
			p.current.Colors = nil
		}
		p.meshes = append(p.meshes, p.current)
	}
	p.current = nil
	p.currentHasUV = false
}
